package olx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Phaust94/oto-parser/internal/core/domain"
)

// --- структуры разбора JSON-LD выдачи ---

type ldProduct struct {
	Type   string `json:"@type"`
	Offers struct {
		Offers []ldOffer `json:"offers"`
	} `json:"offers"`
}

type ldOffer struct {
	URL   string      `json:"url"`
	Name  string      `json:"name"`
	Price json.Number `json:"price"`
}

// ParseSearchPage разбирает JSON-LD блок выдачи в список сводок.
// Выдача подмешивает офферы с других доменов группы - они
// пропускаются, их страницы этим адаптером не разбираются.
func (a *Adapter) ParseSearchPage(raw []byte) ([]domain.ListingSummary, error) {
	product, err := findProductLD(raw)
	if err != nil {
		return nil, fmt.Errorf("olx search: %w", err)
	}

	summaries := make([]domain.ListingSummary, 0, len(product.Offers.Offers))
	for _, offer := range product.Offers.Offers {
		if !strings.Contains(offer.URL, "olx.pl") {
			continue
		}
		s, err := offer.toSummary()
		if err != nil {
			log.Printf("OLX: skipping malformed offer: %v\n", err)
			continue
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (o ldOffer) toSummary() (domain.ListingSummary, error) {
	id, slug, err := keyFromOfferURL(o.URL)
	if err != nil {
		return domain.ListingSummary{}, err
	}

	s := domain.ListingSummary{
		ID:     id,
		Source: domain.SourceOLX,
		Title:  o.Name,
		Slug:   slug,
	}
	if price, err := o.Price.Float64(); err == nil && price > 0 {
		s.RentPrice = &price
	}
	return s, nil
}

// keyFromOfferURL выводит идентификатор и slug из адреса оффера.
// Slug - последний сегмент пути без расширения; стабильный
// идентификатор - его последние два дефисных куска (CIDxxx-IDyyy).
func keyFromOfferURL(url string) (id, slug string, err error) {
	trimmed := strings.TrimSuffix(url, "/")
	segments := strings.Split(trimmed, "/")
	last := segments[len(segments)-1]
	slug = strings.TrimSuffix(last, ".html")
	if slug == "" {
		return "", "", fmt.Errorf("offer url without slug: %s", url)
	}

	parts := strings.Split(slug, "-")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("offer slug without id parts: %s", slug)
	}
	id = strings.Join(parts[len(parts)-2:], "-")
	return id, slug, nil
}

// findProductLD достает из страницы JSON-LD блок типа Product.
// Отсутствие блока - ошибка на выдаче, но маркер снятого объявления
// на карточке; обе трактовки у вызывающих сторон.
func findProductLD(raw []byte) (*ldProduct, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var product *ldProduct
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var candidate ldProduct
		if err := json.Unmarshal([]byte(sel.Text()), &candidate); err != nil {
			return true
		}
		if candidate.Type == "Product" {
			product = &candidate
			return false
		}
		return true
	})
	if product == nil {
		return nil, fmt.Errorf("product metadata not found")
	}
	return product, nil
}
