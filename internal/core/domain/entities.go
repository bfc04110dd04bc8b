package domain

import "time"

// Source определяет площадку, с которой собрано объявление.
type Source string

const (
	SourceOtodom Source = "otodom"
	SourceOLX    Source = "olx"
)

// ListingKey - составной ключ объявления: идентификатор уникален
// только в пределах своей площадки.
type ListingKey struct {
	Source Source
	ID     string
}

// ListingSummary - запись из страницы поисковой выдачи.
// Поля-указатели опциональны: nil означает "площадка значение не отдала",
// и такое поле при сохранении не затирает уже известное значение.
type ListingSummary struct {
	ID     string
	Source Source

	Title string
	Slug  string

	RentPrice           *float64
	AdministrativePrice *float64

	AreaM2 *float64
	Rooms  *int

	Street       *string
	StreetNumber *string

	District         *string
	DistrictSpecific *string

	CreatedOn *time.Time
}

// Key возвращает составной ключ записи.
func (s ListingSummary) Key() ListingKey {
	return ListingKey{Source: s.Source, ID: s.ID}
}

// ListingDetail - результат разбора страницы самого объявления.
// Создается один раз; наличие записи подавляет повторный обход.
type ListingDetail struct {
	ID     string
	Source Source

	// Этаж: 0 - первый (ground), -1 - цокольный.
	Floor       *int
	FloorsTotal *int

	Deposit *int
	HasAC   bool
	HasLift bool
	Windows *string

	AvailableFrom *string

	DescriptionLong string

	// Исходный payload площадки, для последующих повторных разборов.
	RawInfo string

	// Координаты хранятся строками в десятичных градусах;
	// пустая строка - координат у площадки не было.
	Latitude  string
	Longitude string

	DistanceFromCenterKm float64
}

// Key возвращает составной ключ записи.
func (d ListingDetail) Key() ListingKey {
	return ListingKey{Source: d.Source, ID: d.ID}
}

// GoneMarker - отметка "объявление снято". Взаимоисключает ListingDetail
// как разрешенное состояние; обратного перехода gone -> detail нет.
type GoneMarker struct {
	ID     string
	Source Source
}

// AIFacts - структурированные атрибуты, извлеченные моделью из описания.
// UpdatedAt остается nil, пока извлечение не завершилось успешно,
// этим признаком пользуется добивочный AI-проход.
type AIFacts struct {
	ID     string
	Source Source

	AllowedWithPets               *bool
	AvailabilityDate              *string
	BedroomNumber                 *int
	KitchenCombinedWithLivingRoom *bool
	OccasionalLease               *bool

	// Поля, осмысленные только для OLX-схемы.
	Street  *string
	Deposit *float64

	UpdatedAt *time.Time
}

// AISchemaField описывает одно поле схемы структурированного извлечения.
// Схема - данные конфигурации, а не тип: каждая площадка отдает свой набор.
type AISchemaField struct {
	Name        string
	Type        string // boolean | string | integer | number
	Description string
}

// BacklogItem - объявление, ожидающее обхода страницы деталей.
type BacklogItem struct {
	ID   string
	Slug string
}

// AIBacklogItem - объявление с разобранными деталями, но без успешного
// AI-извлечения. Тексты берутся из хранилища, страница повторно не качается.
type AIBacklogItem struct {
	ID              string
	Slug            string
	RawInfo         string
	DescriptionLong string
	AIUpdatedAt     *time.Time
}

// LatLon - пара координат от сервиса геокодирования.
type LatLon struct {
	Lat string
	Lon string
}

// RunStats - итоговые счетчики одного запуска.
type RunStats struct {
	Processed  int
	Alive      int
	Dead       int
	FinishedAt time.Time
}
