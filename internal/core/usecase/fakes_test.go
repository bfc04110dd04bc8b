package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Phaust94/oto-parser/internal/core/domain"
	"github.com/Phaust94/oto-parser/internal/core/port"
)

// fakeAdapter - скриптуемая реализация SourceAdapterPort для тестов.
type fakeAdapter struct {
	source domain.Source

	searchPages [][]domain.ListingSummary
	detailPages map[string][]byte

	parseDetailFn func(raw []byte, listingID string) (*domain.ListingDetail, *domain.GoneMarker, error)
	aiFacts       domain.AIFacts
	aiParseErr    error
}

func (f *fakeAdapter) Source() domain.Source {
	if f.source == "" {
		return domain.SourceOtodom
	}
	return f.source
}

func (f *fakeAdapter) FetchSearchPage(_ context.Context, pageIndex int) []byte {
	if pageIndex >= len(f.searchPages) {
		return nil
	}
	// Непустой маркер, содержимое подставит ParseSearchPage.
	return []byte(fmt.Sprintf("page-%d", pageIndex))
}

func (f *fakeAdapter) ParseSearchPage(raw []byte) ([]domain.ListingSummary, error) {
	var idx int
	if _, err := fmt.Sscanf(string(raw), "page-%d", &idx); err != nil {
		return nil, err
	}
	return f.searchPages[idx], nil
}

func (f *fakeAdapter) DetailURL(slug, listingID string) string {
	return "https://example.test/" + slug + "/" + listingID
}

func (f *fakeAdapter) FetchDetail(_ context.Context, detailURL string) []byte {
	return f.detailPages[detailURL]
}

func (f *fakeAdapter) ParseDetail(raw []byte, listingID string) (*domain.ListingDetail, *domain.GoneMarker, error) {
	if f.parseDetailFn != nil {
		return f.parseDetailFn(raw, listingID)
	}
	return &domain.ListingDetail{ID: listingID, Source: f.Source(), DescriptionLong: string(raw)}, nil, nil
}

func (f *fakeAdapter) AIPrompt(detail domain.ListingDetail) string {
	return "prompt: " + detail.DescriptionLong
}

func (f *fakeAdapter) AISchema() []domain.AISchemaField {
	return []domain.AISchemaField{{Name: "allowed_with_pets", Type: "boolean"}}
}

func (f *fakeAdapter) ParseAIResult(_ []byte, listingID string) (domain.AIFacts, error) {
	if f.aiParseErr != nil {
		return domain.AIFacts{}, f.aiParseErr
	}
	facts := f.aiFacts
	facts.ID = listingID
	facts.Source = f.Source()
	return facts, nil
}

// fakeStorage - реализация ListingStoragePort поверх map-ов в памяти.
type fakeStorage struct {
	summaries map[domain.ListingKey]domain.ListingSummary
	details   map[domain.ListingKey]domain.ListingDetail
	gone      map[domain.ListingKey]bool
	aiFacts   map[domain.ListingKey]domain.AIFacts

	detailBacklog []domain.BacklogItem
	aiBacklog     []domain.AIBacklogItem
	aliveBacklog  []domain.BacklogItem
	candidates    []domain.NotifyCandidate

	patched map[domain.ListingKey]domain.LatLon

	existsErr error
	saveErr   error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		summaries: make(map[domain.ListingKey]domain.ListingSummary),
		details:   make(map[domain.ListingKey]domain.ListingDetail),
		gone:      make(map[domain.ListingKey]bool),
		aiFacts:   make(map[domain.ListingKey]domain.AIFacts),
		patched:   make(map[domain.ListingKey]domain.LatLon),
	}
}

func (f *fakeStorage) SaveSummary(_ context.Context, s domain.ListingSummary) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.summaries[s.Key()] = s
	return nil
}

func (f *fakeStorage) SaveDetail(_ context.Context, d domain.ListingDetail) error {
	f.details[d.Key()] = d
	return nil
}

func (f *fakeStorage) SaveGone(_ context.Context, g domain.GoneMarker) error {
	f.gone[domain.ListingKey{Source: g.Source, ID: g.ID}] = true
	return nil
}

func (f *fakeStorage) SaveAIFacts(_ context.Context, facts domain.AIFacts) error {
	f.aiFacts[domain.ListingKey{Source: facts.Source, ID: facts.ID}] = facts
	return nil
}

func (f *fakeStorage) SummaryExists(_ context.Context, key domain.ListingKey) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.summaries[key]
	return ok, nil
}

func (f *fakeStorage) MissingDetails(_ context.Context, _ domain.Source) ([]domain.BacklogItem, error) {
	return f.detailBacklog, nil
}

func (f *fakeStorage) MissingAI(_ context.Context, _ domain.Source) ([]domain.AIBacklogItem, error) {
	return f.aiBacklog, nil
}

func (f *fakeStorage) AliveListings(_ context.Context, _ domain.Source) ([]domain.BacklogItem, error) {
	return f.aliveBacklog, nil
}

func (f *fakeStorage) PatchCoordinates(_ context.Context, key domain.ListingKey, lat, lon string, _ float64) error {
	f.patched[key] = domain.LatLon{Lat: lat, Lon: lon}
	return nil
}

func (f *fakeStorage) NotifyCandidates(_ context.Context, _ []domain.ListingKey) ([]domain.NotifyCandidate, error) {
	return f.candidates, nil
}

// fakeAI - скриптуемый AIExtractorPort: отдает ошибки по порядку вызовов,
// затем успешный ответ, и протоколирует модель каждого запроса.
type fakeAI struct {
	errs   []error
	result []byte

	calls  int
	models []string
}

func (f *fakeAI) Extract(_ context.Context, req port.AIRequest) ([]byte, error) {
	f.calls++
	f.models = append(f.models, req.Model)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.result, nil
}

// fakeMessenger протоколирует отправленные сообщения.
type fakeMessenger struct {
	sent []sentMessage
	err  error
}

type sentMessage struct {
	chatID   string
	threadID int
	html     string
}

func (f *fakeMessenger) Send(_ context.Context, chatID string, threadID int, html string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, threadID: threadID, html: html})
	return nil
}

// fakeGeocoder отдает одну и ту же точку на любой запрос.
type fakeGeocoder struct {
	loc   *domain.LatLon
	asked []string
}

func (f *fakeGeocoder) Geocode(_ context.Context, address string) *domain.LatLon {
	f.asked = append(f.asked, address)
	return f.loc
}

func noPause()              {}
func noSleep(time.Duration) {}

func ptr[T any](v T) *T { return &v }
