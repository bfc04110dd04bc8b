package domain

import "fmt"

// MarketConfig - явная конфигурация одного рынка (города): опорная точка,
// правила отбора и каналы доставки. Передается в компоненты значением,
// никакого глобального состояния.
type MarketConfig struct {
	Name string

	AnchorLat float64
	AnchorLon float64

	SearchURLs map[Source]string
	PageBudget map[Source]int

	// Правила проверяются по порядку, первое сработавшее определяет
	// тред доставки уведомления.
	Rules []EligibilityRule

	ChatID         string
	StatusThreadID int

	DashboardURL string
}

// DistanceFromAnchor считает удаление точки от центра рынка.
func (m MarketConfig) DistanceFromAnchor(lat, lon float64) float64 {
	return Haversine(m.AnchorLat, m.AnchorLon, lat, lon)
}

// EligibilityRule - рыночное правило пригодности объявления к уведомлению.
// MaxDistanceKm == 0 означает вариант правила без дистанционной отсечки.
type EligibilityRule struct {
	Name string

	MinRoomsExclusive int
	MaxTotalRent      float64
	MaxDistanceKm     float64

	ThreadID int
}

// Matches проверяет кандидата против правила. Решение детерминировано
// набором полей кандидата; поле ручного решения отфильтровано еще
// на уровне выборки из хранилища.
func (r EligibilityRule) Matches(c NotifyCandidate) bool {
	roomsOK := (c.Rooms != nil && *c.Rooms > r.MinRoomsExclusive) ||
		(c.KitchenCombined != nil && !*c.KitchenCombined)
	if !roomsOK {
		return false
	}

	if c.RentPrice == nil || c.TotalRent() >= r.MaxTotalRent {
		return false
	}

	// Явный запрет на животных отсекает, неизвестность - нет.
	if c.AllowedWithPets != nil && !*c.AllowedWithPets {
		return false
	}

	if r.MaxDistanceKm > 0 {
		if c.DistanceKm <= 0 || c.DistanceKm > r.MaxDistanceKm {
			return false
		}
	}

	return true
}

// NotifyCandidate - строка выборки кандидатов на уведомление:
// сводка, детали и AI-атрибуты одного объявления, сшитые хранилищем.
type NotifyCandidate struct {
	ID     string
	Source Source

	Title string
	Slug  string

	RentPrice           *float64
	AdministrativePrice *float64

	AreaM2 *float64
	Rooms  *int

	District         *string
	DistrictSpecific *string

	Latitude   string
	Longitude  string
	DistanceKm float64

	AllowedWithPets  *bool
	AvailabilityDate *string
	BedroomNumber    *int
	KitchenCombined  *bool
	OccasionalLease  *bool
}

// TotalRent - полная месячная стоимость: аренда плюс административная плата.
func (c NotifyCandidate) TotalRent() float64 {
	var total float64
	if c.RentPrice != nil {
		total += *c.RentPrice
	}
	if c.AdministrativePrice != nil {
		total += *c.AdministrativePrice
	}
	return total
}

// Key возвращает составной ключ кандидата.
func (c NotifyCandidate) Key() ListingKey {
	return ListingKey{Source: c.Source, ID: c.ID}
}

func (k ListingKey) String() string {
	return fmt.Sprintf("%s/%s", k.Source, k.ID)
}
