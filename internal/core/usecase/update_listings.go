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

// UpdateListingsUseCase обходит поисковую выдачу площадки страница за
// страницей, пока не встретит страницу без единого нового объявления.
// Выдача отсортирована новейшие-первыми (сортировка зашита в поисковый URL
// рынка), поэтому полностью знакомая страница означает, что дальше
// нового тоже нет.
type UpdateListingsUseCase struct {
	adapter    port.SourceAdapterPort
	storage    port.ListingStoragePort
	pageBudget int

	// Пауза между страницами; подменяется в тестах.
	pause func()
}

// NewUpdateListingsUseCase создает новый экземпляр use case.
func NewUpdateListingsUseCase(
	adapter port.SourceAdapterPort,
	storage port.ListingStoragePort,
	pageBudget int,
) *UpdateListingsUseCase {
	return &UpdateListingsUseCase{
		adapter:    adapter,
		storage:    storage,
		pageBudget: pageBudget,
		// Выдержка как политика вежливости к площадке, не корректности.
		pause: func() {
			time.Sleep(10*time.Second + time.Duration(rand.Intn(1000))*time.Millisecond)
		},
	}
}

// Execute выполняет обход. Возвращает, была ли последняя осмотренная
// страница полностью избыточной, и ключи всех вставленных за обход
// новых объявлений.
func (uc *UpdateListingsUseCase) Execute(ctx context.Context) (bool, []domain.ListingKey, error) {
	source := uc.adapter.Source()
	var newKeys []domain.ListingKey
	allPresent := false

	for page := 0; page < uc.pageBudget; page++ {
		raw := uc.adapter.FetchSearchPage(ctx, page)
		if len(raw) == 0 {
			// Верхняя граница страниц адаптера либо сбой транспорта:
			// трактуем как конец выдачи.
			log.Printf("UpdateListings: source '%s' returned empty payload for page %d, stopping\n", source, page)
			allPresent = true
			break
		}

		summaries, err := uc.adapter.ParseSearchPage(raw)
		if err != nil {
			// Целиком неразбираемая страница - повод прервать площадку,
			// иначе молча потеряем все.
			return false, newKeys, fmt.Errorf("update listings: source '%s' page %d unparsable: %w", source, page, err)
		}
		if len(summaries) == 0 {
			// Пустая страница - конец выдачи, вакуумно "все знакомо".
			allPresent = true
			break
		}

		allPresent = true
		for _, s := range summaries {
			present, err := uc.storage.SummaryExists(ctx, s.Key())
			if err != nil {
				log.Printf("UpdateListings: presence check failed for %s: %v. Skipping listing.\n", s.Key(), err)
				continue
			}
			if !present {
				allPresent = false
			}

			// Upsert в любом случае: обновляет изменчивые поля
			// (цену, заголовок) у уже известных объявлений.
			if err := uc.storage.SaveSummary(ctx, s); err != nil {
				log.Printf("UpdateListings: failed to save summary %s: %v. Continuing.\n", s.Key(), err)
				continue
			}
			if !present {
				newKeys = append(newKeys, s.Key())
			}
		}

		log.Printf("UpdateListings: source '%s' page %d: %d summaries, all present: %t\n", source, page, len(summaries), allPresent)
		if allPresent {
			break
		}
		uc.pause()
	}

	log.Printf("UpdateListings: finished for source '%s'. New listings: %d\n", source, len(newKeys))
	return allPresent, newKeys, nil
}
