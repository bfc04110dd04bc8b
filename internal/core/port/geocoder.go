package port

import (
	"context"

	"github.com/Phaust94/oto-parser/internal/core/domain"
)

// GeocoderPort - поиск приблизительных координат по адресной строке.
// nil означает "ничего не нашлось", дообогащение тогда молча пропускается.
type GeocoderPort interface {
	Geocode(ctx context.Context, address string) *domain.LatLon
}
