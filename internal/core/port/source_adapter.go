package port

import (
	"context"

	"github.com/Phaust94/oto-parser/internal/core/domain"
)

// SourceAdapterPort объединяет все операции над одной площадкой:
// загрузку и разбор поисковой выдачи и страниц объявлений плюс
// площадко-специфичную часть AI-контракта. Реализация выбирается
// по тегу domain.Source, без цепочек наследования.
type SourceAdapterPort interface {
	Source() domain.Source

	// FetchSearchPage грузит страницу выдачи. pageIndex нумеруется с нуля,
	// сдвиг под нумерацию площадки - забота адаптера. За верхней границей
	// страниц адаптера и при сбое транспорта возвращается nil.
	FetchSearchPage(ctx context.Context, pageIndex int) []byte

	// ParseSearchPage тотален по отдельным записям: битая запись
	// пропускается. Ошибка возвращается только когда не разбирается
	// страница целиком - тогда обход площадки прерывается.
	ParseSearchPage(raw []byte) ([]domain.ListingSummary, error)

	// DetailURL собирает адрес страницы объявления.
	DetailURL(slug string, listingID string) string

	// FetchDetail грузит страницу объявления; nil означает
	// "страница недоступна" и выше всегда трактуется как GoneMarker.
	FetchDetail(ctx context.Context, detailURL string) []byte

	// ParseDetail распознает площадко-специфичный маркер снятого
	// объявления и возвращает GoneMarker вместо ошибки.
	ParseDetail(raw []byte, listingID string) (*domain.ListingDetail, *domain.GoneMarker, error)

	// AIPrompt собирает текст запроса к модели из выбранного для площадки
	// поля деталей (сырой payload либо текст описания).
	AIPrompt(detail domain.ListingDetail) string

	// AISchema - схема структурированного извлечения этой площадки.
	AISchema() []domain.AISchemaField

	// ParseAIResult разбирает ответ модели в AIFacts.
	ParseAIResult(raw []byte, listingID string) (domain.AIFacts, error)
}
