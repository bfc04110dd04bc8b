package olx

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Phaust94/oto-parser/internal/core/domain"
)

// Параметры карточки площадка рендерит текстом "Метка: значение".
var (
	floorRe   = regexp.MustCompile(`Poziom:\s*(-?\d+)`)
	depositRe = regexp.MustCompile(`Kaucja:\s*([\d\s]+\d)`)
)

// ParseDetail разбирает карточку объявления. Отсутствие Product-блока
// JSON-LD на карточке означает снятое объявление. Координат площадка
// не отдает - они дописываются позже геокодированием улицы
// из AI-извлечения.
func (a *Adapter) ParseDetail(raw []byte, listingID string) (*domain.ListingDetail, *domain.GoneMarker, error) {
	if _, err := findProductLD(raw); err != nil {
		return nil, &domain.GoneMarker{ID: listingID, Source: domain.SourceOLX}, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("olx detail: parse html: %w", err)
	}

	pageText := strings.Join(strings.Fields(doc.Text()), " ")
	detail := domain.ListingDetail{
		ID:              listingID,
		Source:          domain.SourceOLX,
		DescriptionLong: extractDescription(doc, pageText),
		// Карточка целиком: структурированного payload-а у площадки нет,
		// добивочному AI-проходу доступен только этот текст.
		RawInfo: pageText,
	}

	if m := floorRe.FindStringSubmatch(pageText); m != nil {
		if floor, err := strconv.Atoi(m[1]); err == nil {
			detail.Floor = &floor
		}
	}
	if m := depositRe.FindStringSubmatch(pageText); m != nil {
		digits := strings.ReplaceAll(m[1], " ", "")
		if deposit, err := strconv.Atoi(digits); err == nil {
			detail.Deposit = &deposit
		}
	}

	return &detail, nil, nil
}

// extractDescription берет блок описания карточки; если разметка
// поменялась и блока нет, в описание идет текст страницы целиком,
// чтобы AI-извлечению было с чем работать.
func extractDescription(doc *goquery.Document, pageText string) string {
	text := doc.Find(`div[data-cy="ad_description"]`).Text()
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return pageText
	}
	return text
}
