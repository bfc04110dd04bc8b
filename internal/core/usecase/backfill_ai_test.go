package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/Phaust94/oto-parser/internal/core/domain"
)

func newBackfillUC(adapter *fakeAdapter, storage *fakeStorage, ai *fakeAI) *BackfillAIUseCase {
	uc := NewBackfillAIUseCase(adapter, storage, ai, testModels)
	uc.pause = noPause
	uc.sleep = noSleep
	uc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return uc
}

func TestBackfillSkipsAlreadyExtracted(t *testing.T) {
	done := time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC)
	adapter := &fakeAdapter{}
	storage := newFakeStorage()
	storage.aiBacklog = []domain.AIBacklogItem{
		{ID: "id-1", Slug: "apt-1", DescriptionLong: "opis", AIUpdatedAt: &done},
		{ID: "id-2", Slug: "apt-2", DescriptionLong: "opis"},
	}
	ai := &fakeAI{result: []byte("{}")}

	uc := newBackfillUC(adapter, storage, ai)
	touched, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ai.calls != 1 {
		t.Errorf("already extracted listing must not hit the model, got %d calls", ai.calls)
	}
	if len(touched) != 1 || touched[0].ID != "id-2" {
		t.Errorf("expected only id-2 touched, got %v", touched)
	}
	if _, ok := storage.aiFacts[domain.ListingKey{Source: domain.SourceOtodom, ID: "id-1"}]; ok {
		t.Error("extracted listing must not be re-saved")
	}
}

func TestBackfillPromptBuiltFromStoredText(t *testing.T) {
	adapter := &fakeAdapter{}
	storage := newFakeStorage()
	storage.aiBacklog = []domain.AIBacklogItem{
		{ID: "id-1", Slug: "apt-1", RawInfo: `{"ad":1}`, DescriptionLong: "stored description"},
	}
	ai := &fakeAI{result: []byte("{}")}

	uc := newBackfillUC(adapter, storage, ai)
	if _, err := uc.Execute(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Страница не перекачивается: промпт собран из сохраненного текста.
	facts, ok := storage.aiFacts[domain.ListingKey{Source: domain.SourceOtodom, ID: "id-1"}]
	if !ok {
		t.Fatal("expected AI facts to be saved")
	}
	if facts.UpdatedAt == nil {
		t.Error("backfilled facts must carry an extraction timestamp")
	}
	if len(adapter.detailPages) != 0 {
		t.Error("backfill must not fetch detail pages")
	}
}
