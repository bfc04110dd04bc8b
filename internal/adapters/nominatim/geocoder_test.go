package nominatim

import (
	"context"
	"strings"
	"testing"
)

type stubFetcher struct {
	lastURL string
	body    []byte
}

func (s *stubFetcher) Fetch(_ context.Context, url string) []byte {
	s.lastURL = url
	return s.body
}

func TestGeocodeParsesFirstResult(t *testing.T) {
	fetcher := &stubFetcher{body: []byte(`[{"lat":"52.2297","lon":"21.0122","display_name":"Marszałkowska, Warszawa"}]`)}
	g := NewGeocoder(fetcher)

	loc := g.Geocode(context.Background(), "Marszałkowska 1, Warszawa")
	if loc == nil {
		t.Fatal("expected a location")
	}
	if loc.Lat != "52.2297" || loc.Lon != "21.0122" {
		t.Errorf("unexpected location: %+v", loc)
	}
	for _, want := range []string{"format=jsonv2", "limit=1", "q=Marsza"} {
		if !strings.Contains(fetcher.lastURL, want) {
			t.Errorf("request url missing %q: %s", want, fetcher.lastURL)
		}
	}
}

func TestGeocodeEmptyResult(t *testing.T) {
	g := NewGeocoder(&stubFetcher{body: []byte(`[]`)})
	if loc := g.Geocode(context.Background(), "nowhere"); loc != nil {
		t.Errorf("empty search must yield nil, got %+v", loc)
	}
}

func TestGeocodeTransportFailure(t *testing.T) {
	g := NewGeocoder(&stubFetcher{})
	if loc := g.Geocode(context.Background(), "anywhere"); loc != nil {
		t.Errorf("transport failure must yield nil, got %+v", loc)
	}
}
