package port

import (
	"context"

	"github.com/Phaust94/oto-parser/internal/core/domain"
)

// ListingStoragePort - контракт построчного хранилища объявлений.
// Все Save* - идемпотентные upsert-ы со слиянием: непустые поля новой
// записи перекрывают старые, опущенные не затирают уже сохраненное.
type ListingStoragePort interface {
	SaveSummary(ctx context.Context, s domain.ListingSummary) error
	SaveDetail(ctx context.Context, d domain.ListingDetail) error
	SaveGone(ctx context.Context, g domain.GoneMarker) error
	SaveAIFacts(ctx context.Context, f domain.AIFacts) error

	// SummaryExists - проверка присутствия по ключу, опора
	// эвристики остановки обхода.
	SummaryExists(ctx context.Context, key domain.ListingKey) (bool, error)

	// MissingDetails - объявления площадки без разрешенного состояния
	// деталей (нет ни ListingDetail, ни GoneMarker).
	MissingDetails(ctx context.Context, source domain.Source) ([]domain.BacklogItem, error)

	// MissingAI - объявления с деталями (не gone), у которых AI-извлечение
	// еще не завершалось успешно (updated_at пуст либо строки нет).
	MissingAI(ctx context.Context, source domain.Source) ([]domain.AIBacklogItem, error)

	// AliveListings - все объявления площадки, не помеченные снятыми.
	AliveListings(ctx context.Context, source domain.Source) ([]domain.BacklogItem, error)

	// PatchCoordinates дописывает координаты и пересчитанную дистанцию
	// в уже сохраненные детали (гео-дообогащение OLX).
	PatchCoordinates(ctx context.Context, key domain.ListingKey, lat, lon string, distanceKm float64) error

	// NotifyCandidates возвращает из затронутых за прогон ключей те строки,
	// где детали разрешены и не gone, а ручное решение еще не принято.
	NotifyCandidates(ctx context.Context, keys []domain.ListingKey) ([]domain.NotifyCandidate, error)
}
