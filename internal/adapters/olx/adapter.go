package olx

import (
	"context"
	"fmt"

	"github.com/Phaust94/oto-parser/internal/core/domain"
	"github.com/Phaust94/oto-parser/internal/core/port"
)

const detailBaseURL = "https://www.olx.pl/d/oferta/"

// Adapter отвечает за все взаимодействия с площадкой OLX.
// В отличие от Otodom, данные выдачи лежат в JSON-LD разметке
// страницы, а параметры объявления - прямо в тексте карточки.
type Adapter struct {
	fetcher   port.FetcherPort
	searchURL string
	maxPages  int
}

// NewAdapter создает новый экземпляр адаптера. Площадка жестко
// ограничивает глубину выдачи, запросы за ее пределы не выполняются.
func NewAdapter(fetcher port.FetcherPort, market domain.MarketConfig) *Adapter {
	return &Adapter{
		fetcher:   fetcher,
		searchURL: market.SearchURLs[domain.SourceOLX],
		maxPages:  market.PageBudget[domain.SourceOLX],
	}
}

// Source возвращает тег площадки.
func (a *Adapter) Source() domain.Source {
	return domain.SourceOLX
}

// FetchSearchPage грузит страницу выдачи; нумерация площадки с единицы.
// За верхней границей страниц возвращается nil без запроса.
func (a *Adapter) FetchSearchPage(ctx context.Context, pageIndex int) []byte {
	page := pageIndex + 1
	if a.maxPages > 0 && page > a.maxPages {
		return nil
	}
	url := fmt.Sprintf("%s&page=%d", a.searchURL, page)
	return a.fetcher.Fetch(ctx, url)
}

// DetailURL собирает адрес страницы объявления из его slug.
func (a *Adapter) DetailURL(slug string, _ string) string {
	return detailBaseURL + slug + ".html"
}

// FetchDetail грузит страницу объявления.
func (a *Adapter) FetchDetail(ctx context.Context, detailURL string) []byte {
	return a.fetcher.Fetch(ctx, detailURL)
}
