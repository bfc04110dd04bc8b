package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"time"

	"github.com/Phaust94/oto-parser/internal/core/domain"
	"github.com/Phaust94/oto-parser/internal/core/port"
)

// AIModelConfig - пара моделей извлечения: основная и удешевленный
// запасной вариант на случай не-квотной ошибки.
type AIModelConfig struct {
	Primary  string
	Fallback string
}

// ProcessMissingDetailsUseCase добирает детали по объявлениям без
// разрешенного состояния: качает страницу, разбирает ее в ListingDetail
// либо GoneMarker, сохраняет и сразу запускает AI-извлечение.
type ProcessMissingDetailsUseCase struct {
	adapter port.SourceAdapterPort
	storage port.ListingStoragePort
	ai      port.AIExtractorPort
	// Геокодер есть только у площадок без координат в выдаче (OLX).
	geocoder port.GeocoderPort
	market   domain.MarketConfig
	models   AIModelConfig

	pause func()
	sleep func(time.Duration)
	now   func() time.Time
}

// NewProcessMissingDetailsUseCase создает новый экземпляр use case.
// geocoder может быть nil - тогда гео-дообогащение не выполняется.
func NewProcessMissingDetailsUseCase(
	adapter port.SourceAdapterPort,
	storage port.ListingStoragePort,
	ai port.AIExtractorPort,
	geocoder port.GeocoderPort,
	market domain.MarketConfig,
	models AIModelConfig,
) *ProcessMissingDetailsUseCase {
	return &ProcessMissingDetailsUseCase{
		adapter:  adapter,
		storage:  storage,
		ai:       ai,
		geocoder: geocoder,
		market:   market,
		models:   models,
		pause: func() {
			time.Sleep(time.Duration(rand.Intn(1000)) * time.Millisecond)
		},
		sleep: time.Sleep,
		now:   time.Now,
	}
}

// Execute обрабатывает весь бэклог площадки. Возвращает ключи всех
// затронутых объявлений; ошибка одного объявления прогон не прерывает.
func (uc *ProcessMissingDetailsUseCase) Execute(ctx context.Context) ([]domain.ListingKey, error) {
	source := uc.adapter.Source()
	items, err := uc.storage.MissingDetails(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("process details: backlog query for source '%s': %w", source, err)
	}
	log.Printf("ProcessDetails: source '%s': %d listings lack details\n", source, len(items))

	touched := make([]domain.ListingKey, 0, len(items))
	for _, item := range items {
		key := domain.ListingKey{Source: source, ID: item.ID}
		uc.processOne(ctx, key, item)
		touched = append(touched, key)
		uc.pause()
	}
	return touched, nil
}

func (uc *ProcessMissingDetailsUseCase) processOne(ctx context.Context, key domain.ListingKey, item domain.BacklogItem) {
	detailURL := uc.adapter.DetailURL(item.Slug, item.ID)
	raw := uc.adapter.FetchDetail(ctx, detailURL)
	if raw == nil {
		// Недоступная страница всегда означает снятое объявление.
		if err := uc.storage.SaveGone(ctx, domain.GoneMarker{ID: item.ID, Source: key.Source}); err != nil {
			log.Printf("ProcessDetails: failed to mark %s gone: %v\n", key, err)
		}
		return
	}

	detail, gone, err := uc.adapter.ParseDetail(raw, item.ID)
	if err != nil {
		log.Printf("ProcessDetails: failed to parse detail for %s: %v. Skipping.\n", key, err)
		return
	}
	if gone != nil {
		if err := uc.storage.SaveGone(ctx, *gone); err != nil {
			log.Printf("ProcessDetails: failed to mark %s gone: %v\n", key, err)
		}
		return
	}

	if err := uc.storage.SaveDetail(ctx, *detail); err != nil {
		log.Printf("ProcessDetails: failed to save detail for %s: %v\n", key, err)
		return
	}

	if detail.DescriptionLong == "" {
		return
	}
	facts, err := uc.extractFacts(ctx, *detail)
	if err != nil {
		// Объявление остается без AIFacts, его подберет добивочный проход.
		log.Printf("ProcessDetails: AI extraction failed for %s: %v. Leaving for backfill.\n", key, err)
		return
	}
	if err := uc.storage.SaveAIFacts(ctx, facts); err != nil {
		log.Printf("ProcessDetails: failed to save AI facts for %s: %v\n", key, err)
		return
	}

	uc.augmentCoordinates(ctx, key, *detail, facts)
}

// extractFacts выполняет извлечение с политикой повтора: на исчерпании
// квоты - длинная выдержка и повтор той же моделью, на прочих ошибках -
// короткая выдержка и одна попытка запасной моделью. Второй сбой
// не ретраится.
func (uc *ProcessMissingDetailsUseCase) extractFacts(ctx context.Context, detail domain.ListingDetail) (domain.AIFacts, error) {
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

// augmentCoordinates разрешает приблизительные координаты по улице
// из AI-извлечения, когда площадка координат не отдала. Дистанция
// от центра пересчитывается только здесь.
func (uc *ProcessMissingDetailsUseCase) augmentCoordinates(ctx context.Context, key domain.ListingKey, detail domain.ListingDetail, facts domain.AIFacts) {
	if uc.geocoder == nil || facts.Street == nil || detail.Latitude != "" {
		return
	}

	// Номер дома извлечение не отдает, берем первый.
	address := fmt.Sprintf("%s 1, %s", *facts.Street, uc.market.Name)
	loc := uc.geocoder.Geocode(ctx, address)
	if loc == nil {
		return
	}
	lat, errLat := strconv.ParseFloat(loc.Lat, 64)
	lon, errLon := strconv.ParseFloat(loc.Lon, 64)
	if errLat != nil || errLon != nil {
		return
	}

	dist := uc.market.DistanceFromAnchor(lat, lon)
	if err := uc.storage.PatchCoordinates(ctx, key, loc.Lat, loc.Lon, dist); err != nil {
		log.Printf("ProcessDetails: failed to patch coordinates for %s: %v\n", key, err)
	}
}
