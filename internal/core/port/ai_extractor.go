package port

import (
	"context"
	"errors"

	"github.com/Phaust94/oto-parser/internal/core/domain"
)

// ErrAIQuotaExhausted - различимый сигнал исчерпания квоты модели.
// Проверяется через errors.Is; политика повтора живет в use case.
var ErrAIQuotaExhausted = errors.New("ai quota exhausted")

// AIRequest - один запрос структурированного извлечения.
// Схема передается данными конфигурации, своя у каждой площадки.
type AIRequest struct {
	Prompt string
	Schema []domain.AISchemaField
	Model  string
}

// AIExtractorPort - коллаборатор text -> structured fields.
// Возвращает сырой JSON по переданной схеме; разбор в AIFacts -
// забота адаптера площадки.
type AIExtractorPort interface {
	Extract(ctx context.Context, req AIRequest) ([]byte, error)
}
