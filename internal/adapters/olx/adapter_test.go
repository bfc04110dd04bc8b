package olx

import (
	"context"
	"strings"
	"testing"

	"github.com/Phaust94/oto-parser/internal/core/domain"
)

type stubFetcher struct {
	urls []string
	body []byte
}

func (s *stubFetcher) Fetch(_ context.Context, url string) []byte {
	s.urls = append(s.urls, url)
	return s.body
}

func testAdapter(fetcher *stubFetcher) *Adapter {
	market := domain.MarketConfig{
		Name: "Warszawa",
		SearchURLs: map[domain.Source]string{
			domain.SourceOLX: "https://www.olx.pl/nieruchomosci/mieszkania/wynajem/warszawa/?search[order]=created_at:desc",
		},
		PageBudget: map[domain.Source]int{domain.SourceOLX: 25},
	}
	return NewAdapter(fetcher, market)
}

const searchLD = `{
	"@type": "Product",
	"offers": {
		"@type": "AggregateOffer",
		"offers": [
			{"url": "https://www.olx.pl/d/oferta/mieszkanie-3-pokojowe-mokotow-CID3-ID18abc.html", "name": "Mieszkanie 3 pokojowe", "price": 4200},
			{"url": "https://www.otodom.pl/pl/oferta/cross-promoted-ID99", "name": "Cross promoted", "price": 5000},
			{"url": "https://www.olx.pl/d/oferta/kawalerka-wola-CID3-ID29xyz.html", "name": "Kawalerka", "price": 2600}
		]
	}
}`

func wrapLD(payload string) []byte {
	return []byte(`<html><body><script type="application/ld+json">` + payload + `</script></body></html>`)
}

func TestFetchSearchPageRespectsDepthBound(t *testing.T) {
	fetcher := &stubFetcher{body: []byte("ok")}
	a := testAdapter(fetcher)

	if got := a.FetchSearchPage(context.Background(), 25); got != nil {
		t.Error("pages beyond the depth bound must not be fetched")
	}
	if len(fetcher.urls) != 0 {
		t.Errorf("no request must be made beyond the bound, got %v", fetcher.urls)
	}

	a.FetchSearchPage(context.Background(), 24)
	if len(fetcher.urls) != 1 || !strings.HasSuffix(fetcher.urls[0], "&page=25") {
		t.Errorf("page 24 must map to site page 25, got %v", fetcher.urls)
	}
}

func TestParseSearchPageSkipsForeignOffers(t *testing.T) {
	a := testAdapter(&stubFetcher{})

	summaries, err := a.ParseSearchPage(wrapLD(searchLD))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("foreign-domain offer must be skipped, got %d summaries", len(summaries))
	}

	s := summaries[0]
	if s.ID != "CID3-ID18abc" {
		t.Errorf("unexpected id: %s", s.ID)
	}
	if s.Slug != "mieszkanie-3-pokojowe-mokotow-CID3-ID18abc" {
		t.Errorf("unexpected slug: %s", s.Slug)
	}
	if s.Source != domain.SourceOLX {
		t.Errorf("unexpected source: %s", s.Source)
	}
	if s.RentPrice == nil || *s.RentPrice != 4200 {
		t.Errorf("unexpected price: %+v", s.RentPrice)
	}
}

func TestDetailURLRoundTripsSlug(t *testing.T) {
	a := testAdapter(&stubFetcher{})
	got := a.DetailURL("kawalerka-wola-CID3-ID29xyz", "CID3-ID29xyz")
	want := "https://www.olx.pl/d/oferta/kawalerka-wola-CID3-ID29xyz.html"
	if got != want {
		t.Errorf("DetailURL = %s, want %s", got, want)
	}
}

func TestParseDetailGoneWithoutProductBlock(t *testing.T) {
	a := testAdapter(&stubFetcher{})
	raw := []byte(`<html><body><h1>Ogłoszenie nie jest już dostępne</h1></body></html>`)

	detail, gone, err := a.ParseDetail(raw, "CID3-ID18abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail != nil {
		t.Error("gone listing must not produce a detail")
	}
	if gone == nil || gone.ID != "CID3-ID18abc" || gone.Source != domain.SourceOLX {
		t.Errorf("unexpected gone marker: %+v", gone)
	}
}

func TestParseDetailExtractsTextParams(t *testing.T) {
	a := testAdapter(&stubFetcher{})
	raw := []byte(`<html><body>
		<script type="application/ld+json">{"@type":"Product","offers":{"offers":[]}}</script>
		<p>Poziom: 4</p>
		<p>Kaucja: 4 500</p>
		<div data-cy="ad_description">Przytulna   kawalerka na Woli, dostępna od zaraz.</div>
	</body></html>`)

	detail, gone, err := a.ParseDetail(raw, "CID3-ID29xyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gone != nil {
		t.Fatal("live listing must not produce a gone marker")
	}

	if detail.Floor == nil || *detail.Floor != 4 {
		t.Errorf("unexpected floor: %+v", detail.Floor)
	}
	if detail.Deposit == nil || *detail.Deposit != 4500 {
		t.Errorf("unexpected deposit: %+v", detail.Deposit)
	}
	if detail.DescriptionLong != "Przytulna kawalerka na Woli, dostępna od zaraz." {
		t.Errorf("unexpected description: %q", detail.DescriptionLong)
	}
	if detail.Latitude != "" || detail.Longitude != "" {
		t.Error("olx listings carry no native coordinates")
	}
	if detail.RawInfo == "" {
		t.Error("page text must be preserved for later extraction passes")
	}
}

func TestParseAIResultWithExtras(t *testing.T) {
	a := testAdapter(&stubFetcher{})
	raw := []byte(`{"allowed_with_pets":null,"street":"Marszałkowska","deposit":3000}`)

	facts, err := a.ParseAIResult(raw, "CID3-ID18abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if facts.Street == nil || *facts.Street != "Marszałkowska" {
		t.Errorf("unexpected street: %+v", facts.Street)
	}
	if facts.Deposit == nil || *facts.Deposit != 3000 {
		t.Errorf("unexpected deposit: %+v", facts.Deposit)
	}
	if facts.AllowedWithPets != nil {
		t.Errorf("null field must stay nil, got %+v", facts.AllowedWithPets)
	}
}
