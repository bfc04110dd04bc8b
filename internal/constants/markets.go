package constants

import (
	"fmt"
	"strings"

	"github.com/Phaust94/oto-parser/internal/core/domain"
)

// MarketSpec - статическая часть конфигурации рынка: опорная точка,
// поисковые URL с зашитой сортировкой новейшие-первыми и пороги правил
// отбора. Динамическая часть (чат, треды, бюджеты страниц) приходит
// из окружения и сшивается с этой на старте приложения.
type MarketSpec struct {
	Name string

	AnchorLat float64
	AnchorLon float64

	OtodomSearchURL string
	OLXSearchURL    string

	MaxTotalRent  float64
	MaxDistanceKm float64

	DashboardURL string
}

// Markets - все поддерживаемые рынки, ключ - значение переменной CITY.
var Markets = map[string]MarketSpec{
	"warsaw": {
		Name:      "Warszawa",
		AnchorLat: 52.23182630705096,
		AnchorLon: 21.00591455254282,
		OtodomSearchURL: "https://www.otodom.pl/pl/wyniki/wynajem/mieszkanie/mazowieckie/warszawa/warszawa/warszawa" +
			"?limit=72&by=LATEST&direction=DESC&viewType=listing",
		OLXSearchURL: "https://www.olx.pl/nieruchomosci/mieszkania/wynajem/warszawa/" +
			"?search%5Border%5D=created_at%3Adesc",
		MaxTotalRent:  6700,
		MaxDistanceKm: 7,
		DashboardURL:  "https://metabase.phaust.top/dashboard/2-warsaw-apartments",
	},
	"krakow": {
		Name:      "Kraków",
		AnchorLat: 50.06196857618123,
		AnchorLon: 19.938187263875268,
		OtodomSearchURL: "https://www.otodom.pl/pl/wyniki/wynajem/mieszkanie/malopolskie/krakow/krakow/krakow" +
			"?limit=72&by=LATEST&direction=DESC&viewType=listing",
		OLXSearchURL: "https://www.olx.pl/nieruchomosci/mieszkania/wynajem/krakow/" +
			"?search%5Border%5D=created_at%3Adesc",
		MaxTotalRent:  2500,
		MaxDistanceKm: 5,
		DashboardURL:  "https://metabase.phaust.top/dashboard/3-krakow-apartments",
	},
}

// MarketByName находит спецификацию рынка по значению CITY.
func MarketByName(city string) (MarketSpec, error) {
	spec, ok := Markets[strings.ToLower(city)]
	if !ok {
		return MarketSpec{}, fmt.Errorf("unknown market '%s'", city)
	}
	return spec, nil
}

// SearchURLs собирает карту поисковых URL по площадкам.
func (s MarketSpec) SearchURLs() map[domain.Source]string {
	return map[domain.Source]string{
		domain.SourceOtodom: s.OtodomSearchURL,
		domain.SourceOLX:    s.OLXSearchURL,
	}
}
