package otodom

import (
	"context"
	"fmt"

	"github.com/Phaust94/oto-parser/internal/core/domain"
	"github.com/Phaust94/oto-parser/internal/core/port"
)

const detailBaseURL = "https://www.otodom.pl/pl/oferta/"

// Adapter отвечает за все взаимодействия с площадкой Otodom:
// загрузку и разбор поисковой выдачи, страниц объявлений и
// площадко-специфичную часть AI-контракта. Данные страницы лежат
// в JSON-бандле гидратации script#__NEXT_DATA__.
type Adapter struct {
	fetcher   port.FetcherPort
	searchURL string
	market    domain.MarketConfig
}

// NewAdapter создает новый экземпляр адаптера. searchURL берется из
// конфигурации рынка и уже содержит фильтры и сортировку новейшие-первыми.
func NewAdapter(fetcher port.FetcherPort, market domain.MarketConfig) *Adapter {
	return &Adapter{
		fetcher:   fetcher,
		searchURL: market.SearchURLs[domain.SourceOtodom],
		market:    market,
	}
}

// Source возвращает тег площадки.
func (a *Adapter) Source() domain.Source {
	return domain.SourceOtodom
}

// FetchSearchPage грузит страницу выдачи. Площадка нумерует страницы
// с единицы, сдвиг с нулевой нумерации делается здесь.
func (a *Adapter) FetchSearchPage(ctx context.Context, pageIndex int) []byte {
	url := fmt.Sprintf("%s&page=%d", a.searchURL, pageIndex+1)
	return a.fetcher.Fetch(ctx, url)
}

// DetailURL собирает адрес страницы объявления из его slug.
func (a *Adapter) DetailURL(slug string, _ string) string {
	return detailBaseURL + slug
}

// FetchDetail грузит страницу объявления.
func (a *Adapter) FetchDetail(ctx context.Context, detailURL string) []byte {
	return a.fetcher.Fetch(ctx, detailURL)
}
