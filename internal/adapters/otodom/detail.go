package otodom

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Phaust94/oto-parser/internal/core/domain"
)

// Снятое объявление площадка не отдает 404-м: страница тихо
// перерисовывается в поисковую выдачу, это видно по маршруту бандла.
const goneRoute = "/pl/wyniki/[[...searchingCriteria]]"

type detailEnvelope struct {
	Page  string `json:"page"`
	Props struct {
		PageProps struct {
			Ad json.RawMessage `json:"ad"`
		} `json:"pageProps"`
	} `json:"props"`
}

type detailAd struct {
	Target         map[string]any `json:"target"`
	Description    string         `json:"description"`
	TopInformation []struct {
		Label  string   `json:"label"`
		Values []string `json:"values"`
	} `json:"topInformation"`
	Location struct {
		Coordinates struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"coordinates"`
	} `json:"location"`
}

// ParseDetail разбирает страницу объявления. Маршрут поисковой выдачи
// вместо карточки означает снятое объявление - возвращается GoneMarker.
func (a *Adapter) ParseDetail(raw []byte, listingID string) (*domain.ListingDetail, *domain.GoneMarker, error) {
	payload, err := extractNextData(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("otodom detail: %w", err)
	}

	var envelope detailEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, nil, fmt.Errorf("otodom detail: unmarshal hydration payload: %w", err)
	}
	if envelope.Page == goneRoute {
		return nil, &domain.GoneMarker{ID: listingID, Source: domain.SourceOtodom}, nil
	}
	if len(envelope.Props.PageProps.Ad) == 0 {
		return nil, nil, fmt.Errorf("otodom detail: ad payload not found")
	}

	var ad detailAd
	if err := json.Unmarshal(envelope.Props.PageProps.Ad, &ad); err != nil {
		return nil, nil, fmt.Errorf("otodom detail: unmarshal ad: %w", err)
	}

	detail := domain.ListingDetail{
		ID:              listingID,
		Source:          domain.SourceOtodom,
		DescriptionLong: stripHTML(ad.Description),
		// Весь payload карточки сохраняется как есть: из него же
		// собирается AI-промпт, и он доступен добивочному проходу.
		RawInfo: string(envelope.Props.PageProps.Ad),
	}

	if floor, ok := parseFloorTag(targetString(ad.Target, "Floor_no")); ok {
		detail.Floor = &floor
	}
	if total, ok := targetInt(ad.Target, "Building_floors_num"); ok {
		detail.FloorsTotal = &total
	}
	if deposit, ok := targetInt(ad.Target, "Deposit"); ok {
		detail.Deposit = &deposit
	}
	for _, extra := range targetStrings(ad.Target, "Extras_types") {
		switch extra {
		case "air_conditioning":
			detail.HasAC = true
		case "lift":
			detail.HasLift = true
		}
	}
	if windows := targetString(ad.Target, "Windows_type"); windows != "" {
		detail.Windows = &windows
	}

	for _, info := range ad.TopInformation {
		if info.Label == "free_from" && len(info.Values) > 0 {
			v := info.Values[0]
			detail.AvailableFrom = &v
		}
	}

	coords := ad.Location.Coordinates
	if coords.Latitude != 0 || coords.Longitude != 0 {
		detail.Latitude = strconv.FormatFloat(coords.Latitude, 'f', -1, 64)
		detail.Longitude = strconv.FormatFloat(coords.Longitude, 'f', -1, 64)
		detail.DistanceFromCenterKm = a.market.DistanceFromAnchor(coords.Latitude, coords.Longitude)
	}

	return &detail, nil, nil
}

// parseFloorTag переводит тег этажа площадки в число:
// цокольный - -1, первый (ground) - 0, дальше floor_N.
func parseFloorTag(tag string) (int, bool) {
	switch tag {
	case "":
		return 0, false
	case "cellar":
		return -1, true
	case "ground_floor":
		return 0, true
	}
	n, err := strconv.Atoi(strings.TrimPrefix(tag, "floor_"))
	if err != nil {
		return 0, false
	}
	return n, true
}

// --- хелперы чтения target-полей ---
// Площадка отдает значения то строкой, то числом, то списком из одного
// элемента; приводим без паники на каждом варианте.

func targetString(target map[string]any, key string) string {
	switch v := target[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		if len(v) == 0 {
			return ""
		}
		if s, ok := v[0].(string); ok {
			return s
		}
		return ""
	default:
		return ""
	}
}

func targetStrings(target map[string]any, key string) []string {
	list, ok := target[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func targetInt(target map[string]any, key string) (int, bool) {
	s := targetString(target, key)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Некоторые числовые поля приходят с дробной частью.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, false
		}
		return int(f), true
	}
	return n, true
}

// stripHTML сводит HTML-описание к плоскому тексту с
// нормализованными пробелами.
func stripHTML(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(html)))
	if err != nil {
		return html
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
