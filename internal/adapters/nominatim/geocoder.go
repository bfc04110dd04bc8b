package nominatim

import (
	"context"
	"encoding/json"
	"log"
	"net/url"

	"github.com/Phaust94/oto-parser/internal/core/domain"
	"github.com/Phaust94/oto-parser/internal/core/port"
)

const searchURL = "https://nominatim.openstreetmap.org/search"

// Geocoder реализует GeocoderPort поверх публичного Nominatim.
// Запросы идут через общий транспорт конвейера - его лимиты вежливости
// накрывают и геокодирование.
type Geocoder struct {
	fetcher port.FetcherPort
}

// NewGeocoder создает новый экземпляр геокодера.
func NewGeocoder(fetcher port.FetcherPort) *Geocoder {
	return &Geocoder{fetcher: fetcher}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode ищет координаты по адресной строке. Любой сбой или пустая
// выдача - nil: дообогащение опционально и не должно ронять конвейер.
func (g *Geocoder) Geocode(ctx context.Context, address string) *domain.LatLon {
	query := url.Values{}
	query.Set("q", address)
	query.Set("format", "jsonv2")
	query.Set("limit", "1")

	raw := g.fetcher.Fetch(ctx, searchURL+"?"+query.Encode())
	if raw == nil {
		return nil
	}

	var results []searchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		log.Printf("Nominatim: failed to parse response for '%s': %v\n", address, err)
		return nil
	}
	if len(results) == 0 || results[0].Lat == "" || results[0].Lon == "" {
		return nil
	}
	return &domain.LatLon{Lat: results[0].Lat, Lon: results[0].Lon}
}
