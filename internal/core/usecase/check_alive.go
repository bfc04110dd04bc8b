package usecase

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/Phaust94/oto-parser/internal/core/domain"
	"github.com/Phaust94/oto-parser/internal/core/port"
)

// CheckAliveUseCase перепроверяет живость ранее собранных объявлений:
// недоступная страница означает снятое объявление. Никакого
// AI-переизвлечения здесь не происходит.
type CheckAliveUseCase struct {
	adapter port.SourceAdapterPort
	storage port.ListingStoragePort

	pause func()
}

// NewCheckAliveUseCase создает новый экземпляр use case.
func NewCheckAliveUseCase(
	adapter port.SourceAdapterPort,
	storage port.ListingStoragePort,
) *CheckAliveUseCase {
	return &CheckAliveUseCase{
		adapter: adapter,
		storage: storage,
		pause: func() {
			time.Sleep(time.Duration(rand.Intn(3000)) * time.Millisecond)
		},
	}
}

// Execute проверяет все не помеченные снятыми объявления площадки.
// Возвращает подтвержденно живые и свежепомеченные снятыми ключи.
func (uc *CheckAliveUseCase) Execute(ctx context.Context) (alive, dead []domain.ListingKey, err error) {
	source := uc.adapter.Source()
	items, err := uc.storage.AliveListings(ctx, source)
	if err != nil {
		return nil, nil, fmt.Errorf("check alive: backlog query for source '%s': %w", source, err)
	}
	log.Printf("CheckAlive: source '%s': checking %d listings\n", source, len(items))

	for _, item := range items {
		key := domain.ListingKey{Source: source, ID: item.ID}
		raw := uc.adapter.FetchDetail(ctx, uc.adapter.DetailURL(item.Slug, item.ID))
		if raw == nil {
			if saveErr := uc.storage.SaveGone(ctx, domain.GoneMarker{ID: item.ID, Source: source}); saveErr != nil {
				log.Printf("CheckAlive: failed to mark %s gone: %v\n", key, saveErr)
				continue
			}
			dead = append(dead, key)
		} else {
			alive = append(alive, key)
		}
		uc.pause()
	}

	log.Printf("CheckAlive: source '%s': alive %d, dead %d\n", source, len(alive), len(dead))
	return alive, dead, nil
}
