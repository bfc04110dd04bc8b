package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/Phaust94/oto-parser/internal/core/domain"
	"github.com/Phaust94/oto-parser/internal/core/port"
)

// BackfillAIUseCase - добивочный AI-проход: по объявлениям с уже
// разобранными деталями, но без успешного извлечения, повторно гонит
// сохраненный текст через модель. Страница объявления не перекачивается -
// извлечение отвязано от обхода и возобновляемо само по себе.
type BackfillAIUseCase struct {
	adapter port.SourceAdapterPort
	storage port.ListingStoragePort
	ai      port.AIExtractorPort
	models  AIModelConfig

	pause func()
	sleep func(time.Duration)
	now   func() time.Time
}

// NewBackfillAIUseCase создает новый экземпляр use case.
func NewBackfillAIUseCase(
	adapter port.SourceAdapterPort,
	storage port.ListingStoragePort,
	ai port.AIExtractorPort,
	models AIModelConfig,
) *BackfillAIUseCase {
	return &BackfillAIUseCase{
		adapter: adapter,
		storage: storage,
		ai:      ai,
		models:  models,
		pause: func() {
			time.Sleep(time.Duration(rand.Intn(1000)) * time.Millisecond)
		},
		sleep: time.Sleep,
		now:   time.Now,
	}
}

// Execute обрабатывает AI-бэклог площадки и возвращает затронутые ключи.
func (uc *BackfillAIUseCase) Execute(ctx context.Context) ([]domain.ListingKey, error) {
	source := uc.adapter.Source()
	items, err := uc.storage.MissingAI(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("backfill ai: backlog query for source '%s': %w", source, err)
	}
	log.Printf("BackfillAI: source '%s': %d listings lack AI facts\n", source, len(items))

	var touched []domain.ListingKey
	for _, item := range items {
		// Уже извлеченное повторно в модель не отправляется.
		if item.AIUpdatedAt != nil {
			continue
		}
		key := domain.ListingKey{Source: source, ID: item.ID}

		// Минимальная деталь, чтобы адаптер сам выбрал поле для промпта.
		detail := domain.ListingDetail{
			ID:              item.ID,
			Source:          source,
			RawInfo:         item.RawInfo,
			DescriptionLong: item.DescriptionLong,
		}
		facts, err := uc.extractFacts(ctx, detail)
		if err != nil {
			log.Printf("BackfillAI: extraction failed for %s: %v. Leaving for a later pass.\n", key, err)
			continue
		}
		if err := uc.storage.SaveAIFacts(ctx, facts); err != nil {
			log.Printf("BackfillAI: failed to save AI facts for %s: %v\n", key, err)
			continue
		}
		touched = append(touched, key)
		uc.pause()
	}
	return touched, nil
}

func (uc *BackfillAIUseCase) extractFacts(ctx context.Context, detail domain.ListingDetail) (domain.AIFacts, error) {
	req := port.AIRequest{
		Prompt: uc.adapter.AIPrompt(detail),
		Schema: uc.adapter.AISchema(),
		Model:  uc.models.Primary,
	}

	raw, err := uc.ai.Extract(ctx, req)
	if err != nil {
		if errors.Is(err, port.ErrAIQuotaExhausted) {
			uc.sleep(60 * time.Second)
		} else {
			uc.sleep(1 * time.Second)
			req.Model = uc.models.Fallback
		}
		raw, err = uc.ai.Extract(ctx, req)
		if err != nil {
			return domain.AIFacts{}, err
		}
	}

	facts, err := uc.adapter.ParseAIResult(raw, detail.ID)
	if err != nil {
		return domain.AIFacts{}, fmt.Errorf("parse ai result: %w", err)
	}
	now := uc.now().UTC()
	facts.UpdatedAt = &now
	return facts, nil
}
