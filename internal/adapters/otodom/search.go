package otodom

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Phaust94/oto-parser/internal/core/domain"
)

// Формат даты создания объявления в бандле гидратации.
const createdOnLayout = "2006-01-02 15:04:05"

// roomsNumberMap переводит перечисление площадки в число комнат.
var roomsNumberMap = map[string]int{
	"ONE":   1,
	"TWO":   2,
	"THREE": 3,
	"FOUR":  4,
	"FIVE":  5,
	"SIX":   6,
}

// --- структуры разбора JSON поисковой выдачи ---

type searchEnvelope struct {
	Props struct {
		PageProps struct {
			Data struct {
				SearchAds struct {
					Items []searchItem `json:"items"`
				} `json:"searchAds"`
			} `json:"data"`
		} `json:"pageProps"`
	} `json:"props"`
}

type searchItem struct {
	ID                 json.Number `json:"id"`
	Title              string      `json:"title"`
	Slug               string      `json:"slug"`
	TotalPrice         *priceTag   `json:"totalPrice"`
	RentPrice          *priceTag   `json:"rentPrice"`
	AreaInSquareMeters *float64    `json:"areaInSquareMeters"`
	RoomsNumber        string      `json:"roomsNumber"`
	DateCreated        string      `json:"dateCreated"`
	Location           struct {
		Address struct {
			Street *struct {
				Name   string `json:"name"`
				Number string `json:"number"`
			} `json:"street"`
		} `json:"address"`
		ReverseGeocoding struct {
			Locations []struct {
				FullName string `json:"fullName"`
			} `json:"locations"`
		} `json:"reverseGeocoding"`
	} `json:"location"`
}

type priceTag struct {
	Value float64 `json:"value"`
}

// ParseSearchPage разбирает страницу выдачи в список сводок.
// Последняя запись страницы - вкрапленное продвигаемое объявление
// не из текущей выдачи, она отбрасывается. Битая запись пропускается;
// ошибка возвращается только когда не разбирается страница целиком.
func (a *Adapter) ParseSearchPage(raw []byte) ([]domain.ListingSummary, error) {
	payload, err := extractNextData(raw)
	if err != nil {
		return nil, fmt.Errorf("otodom search: %w", err)
	}

	var envelope searchEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("otodom search: unmarshal hydration payload: %w", err)
	}

	items := envelope.Props.PageProps.Data.SearchAds.Items
	if len(items) > 0 {
		items = items[:len(items)-1]
	}

	summaries := make([]domain.ListingSummary, 0, len(items))
	for _, item := range items {
		s, err := item.toSummary()
		if err != nil {
			log.Printf("Otodom: skipping malformed search item: %v\n", err)
			continue
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (item searchItem) toSummary() (domain.ListingSummary, error) {
	id := item.ID.String()
	if id == "" {
		return domain.ListingSummary{}, fmt.Errorf("search item without id")
	}

	s := domain.ListingSummary{
		ID:     id,
		Source: domain.SourceOtodom,
		Title:  item.Title,
		Slug:   item.Slug,
		AreaM2: item.AreaInSquareMeters,
	}

	// totalPrice - арендная ставка, rentPrice - административная плата
	// (czynsz); имена площадки обманчивы.
	if item.TotalPrice != nil {
		s.RentPrice = &item.TotalPrice.Value
	}
	if item.RentPrice != nil {
		s.AdministrativePrice = &item.RentPrice.Value
	}

	if rooms, ok := roomsNumberMap[item.RoomsNumber]; ok {
		s.Rooms = &rooms
	}

	if street := item.Location.Address.Street; street != nil {
		name := street.Name
		s.Street = &name
		if street.Number != "" {
			number := street.Number
			s.StreetNumber = &number
		}
	}

	// Геоцепочка идет от крупного к мелкому: последний элемент -
	// самый точный район, предпоследний - на уровень выше.
	locations := item.Location.ReverseGeocoding.Locations
	if len(locations) > 0 {
		district := firstNameSegment(locations[len(locations)-1].FullName)
		s.DistrictSpecific = &district
	}
	if len(locations) > 1 {
		district := firstNameSegment(locations[len(locations)-2].FullName)
		s.District = &district
	}

	if item.DateCreated != "" {
		created, err := time.Parse(createdOnLayout, item.DateCreated)
		if err == nil {
			s.CreatedOn = &created
		}
	}

	return s, nil
}

// firstNameSegment отрезает от полного имени локации хвост
// "..., город, воеводство".
func firstNameSegment(fullName string) string {
	if idx := strings.Index(fullName, ","); idx >= 0 {
		return strings.TrimSpace(fullName[:idx])
	}
	return strings.TrimSpace(fullName)
}

// extractNextData достает JSON-бандл гидратации из HTML страницы.
func extractNextData(raw []byte) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	text := doc.Find("script#__NEXT_DATA__").Text()
	if text == "" {
		return nil, fmt.Errorf("hydration script not found")
	}
	return []byte(text), nil
}
