package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/Phaust94/oto-parser/internal/core/domain"
	"github.com/Phaust94/oto-parser/internal/core/port"
)

func notifyMarket() domain.MarketConfig {
	m := testMarket
	m.ChatID = "-100123"
	m.StatusThreadID = 7
	m.DashboardURL = "https://metabase.example.test/dashboard/3"
	m.Rules = []domain.EligibilityRule{
		{Name: "close", MinRoomsExclusive: 3, MaxTotalRent: 6700, MaxDistanceKm: 7, ThreadID: 11},
		{Name: "no-distance", MinRoomsExclusive: 3, MaxTotalRent: 6700, ThreadID: 12},
	}
	return m
}

func eligibleCandidate() domain.NotifyCandidate {
	return domain.NotifyCandidate{
		ID:               "id-1",
		Source:           domain.SourceOtodom,
		Title:            "Przestronne 4 pokoje",
		Slug:             "apt-1",
		RentPrice:        ptr(4500.0),
		AdministrativePrice: ptr(700.0),
		AreaM2:           ptr(78.5),
		Rooms:            ptr(4),
		DistrictSpecific: ptr("Mokotów"),
		Latitude:         "52.19",
		Longitude:        "21.02",
		DistanceKm:       4.2,
	}
}

func newNotifyUC(storage *fakeStorage, messenger *fakeMessenger) *NotifyUseCase {
	adapters := map[domain.Source]port.SourceAdapterPort{
		domain.SourceOtodom: &fakeAdapter{source: domain.SourceOtodom},
	}
	return NewNotifyUseCase(storage, messenger, notifyMarket(), adapters)
}

func TestNotifyRoutesByFirstMatchingRule(t *testing.T) {
	near := eligibleCandidate()
	far := eligibleCandidate()
	far.ID = "id-2"
	far.DistanceKm = 15.0

	storage := newFakeStorage()
	storage.candidates = []domain.NotifyCandidate{near, far}
	messenger := &fakeMessenger{}

	uc := newNotifyUC(storage, messenger)
	if err := uc.Execute(context.Background(), []domain.ListingKey{near.Key(), far.Key()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(messenger.sent) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(messenger.sent))
	}
	if messenger.sent[0].threadID != 11 {
		t.Errorf("near candidate must go to the distance thread, got %d", messenger.sent[0].threadID)
	}
	if messenger.sent[1].threadID != 12 {
		t.Errorf("far candidate must fall through to the no-distance thread, got %d", messenger.sent[1].threadID)
	}
}

func TestNotifySkipsIneligibleCandidates(t *testing.T) {
	pricey := eligibleCandidate()
	pricey.RentPrice = ptr(9000.0)

	noPets := eligibleCandidate()
	noPets.ID = "id-2"
	noPets.AllowedWithPets = ptr(false)

	smallNoKitchenInfo := eligibleCandidate()
	smallNoKitchenInfo.ID = "id-3"
	smallNoKitchenInfo.Rooms = ptr(2)

	storage := newFakeStorage()
	storage.candidates = []domain.NotifyCandidate{pricey, noPets, smallNoKitchenInfo}
	messenger := &fakeMessenger{}

	uc := newNotifyUC(storage, messenger)
	if err := uc.Execute(context.Background(), []domain.ListingKey{pricey.Key()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messenger.sent) != 0 {
		t.Errorf("ineligible candidates must not produce alerts, got %d", len(messenger.sent))
	}
}

func TestNotifySeparateKitchenOverridesRoomCount(t *testing.T) {
	c := eligibleCandidate()
	c.Rooms = ptr(2)
	c.KitchenCombined = ptr(false)

	storage := newFakeStorage()
	storage.candidates = []domain.NotifyCandidate{c}
	messenger := &fakeMessenger{}

	uc := newNotifyUC(storage, messenger)
	if err := uc.Execute(context.Background(), []domain.ListingKey{c.Key()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messenger.sent) != 1 {
		t.Fatalf("a small flat with a separate kitchen must still alert, got %d", len(messenger.sent))
	}
}

func TestNotifyMessageContainsKeyLinks(t *testing.T) {
	c := eligibleCandidate()
	storage := newFakeStorage()
	storage.candidates = []domain.NotifyCandidate{c}
	messenger := &fakeMessenger{}

	uc := newNotifyUC(storage, messenger)
	if err := uc.Execute(context.Background(), []domain.ListingKey{c.Key()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := messenger.sent[0].html
	for _, want := range []string{
		"https://example.test/apt-1/id-1",
		"https://www.google.com/maps/dir/",
		"52.19,21.02",
		"https://metabase.example.test/dashboard/3?listing_id=id-1",
		"Price: 5200",
		"District: Mokotów",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("alert message missing %q:\n%s", want, html)
		}
	}
}

func TestNotifyNoTouchedKeysIsNoop(t *testing.T) {
	storage := newFakeStorage()
	storage.candidates = []domain.NotifyCandidate{eligibleCandidate()}
	messenger := &fakeMessenger{}

	uc := newNotifyUC(storage, messenger)
	if err := uc.Execute(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messenger.sent) != 0 {
		t.Errorf("a run without touched listings must not alert, got %d", len(messenger.sent))
	}
}

func TestNotifyStatusMessages(t *testing.T) {
	messenger := &fakeMessenger{}
	uc := newNotifyUC(newFakeStorage(), messenger)

	if err := uc.SendRunStatus(context.Background(), 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := uc.SendLivenessStatus(context.Background(), 30, 12); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(messenger.sent) != 2 {
		t.Fatalf("expected 2 status messages, got %d", len(messenger.sent))
	}
	for _, m := range messenger.sent {
		if m.threadID != 7 {
			t.Errorf("status messages must go to the status thread, got %d", m.threadID)
		}
	}
	if !strings.Contains(messenger.sent[0].html, "Parsed ads: 42") {
		t.Errorf("unexpected run status body: %s", messenger.sent[0].html)
	}
	if !strings.Contains(messenger.sent[1].html, "Dead ads: 12") {
		t.Errorf("unexpected liveness status body: %s", messenger.sent[1].html)
	}
}
