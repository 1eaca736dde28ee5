package geocoding

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/photo-memories/internal/geo"
)

type fakeBackend struct {
	calls  int
	places map[string]*Place
	err    error
}

func (f *fakeBackend) Reverse(_ context.Context, c geo.Coordinate) (*Place, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.places[cacheKey(c)], nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestPlaceString(t *testing.T) {
	tests := []struct {
		place Place
		want  string
	}{
		{Place{City: "Paris", Country: "France"}, "Paris, France"},
		{Place{City: "Paris"}, "Paris"},
		{Place{Country: "France"}, "France"},
		{Place{}, ""},
	}
	for _, tt := range tests {
		if got := tt.place.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.place, got, tt.want)
		}
	}
}

func TestReverseGeocodeDetails_CachesByRoundedCoordinate(t *testing.T) {
	backend := &fakeBackend{places: map[string]*Place{
		"48.857,2.352": {City: "Paris", Country: "France"},
	}}
	svc := NewService(backend, quietLogger(), nil)
	ctx := context.Background()

	first := svc.ReverseGeocodeDetails(ctx, geo.Coordinate{Lat: 48.8566, Lng: 2.3522})
	// Rounds to the same 3-decimal key
	second := svc.ReverseGeocodeDetails(ctx, geo.Coordinate{Lat: 48.8571, Lng: 2.3518})

	if first.City != "Paris" || second.City != "Paris" {
		t.Errorf("expected Paris twice, got %q and %q", first.City, second.City)
	}
	if backend.calls != 1 {
		t.Errorf("expected 1 backend call, got %d", backend.calls)
	}
	if svc.CacheSize() != 1 {
		t.Errorf("expected cache size 1, got %d", svc.CacheSize())
	}
}

func TestReverseGeocodeDetails_FailureIsEmptyAndNotCached(t *testing.T) {
	backend := &fakeBackend{err: errors.New("network down")}
	svc := NewService(backend, quietLogger(), nil)
	ctx := context.Background()
	c := geo.Coordinate{Lat: 1, Lng: 1}

	if got := svc.ReverseGeocodeDetails(ctx, c); !got.IsEmpty() {
		t.Errorf("expected empty place, got %+v", got)
	}
	svc.ReverseGeocodeDetails(ctx, c)

	if backend.calls != 2 {
		t.Errorf("expected failures to bypass cache, got %d calls", backend.calls)
	}
}

func TestReverseGeocodeDetails_NoResult(t *testing.T) {
	svc := NewService(&fakeBackend{}, quietLogger(), nil)
	if got := svc.ReverseGeocode(context.Background(), geo.Coordinate{}); got != "" {
		t.Errorf("expected empty summary, got %q", got)
	}
}

func TestReverseGeocodeDetails_NormalizesNames(t *testing.T) {
	backend := &fakeBackend{places: map[string]*Place{
		"47.377,8.542": {City: " Zu\u0308rich ", Country: "Switzerland"},
	}}
	svc := NewService(backend, quietLogger(), nil)

	got := svc.ReverseGeocodeDetails(context.Background(), geo.Coordinate{Lat: 47.3769, Lng: 8.5417})

	if got.City != "Z\u00fcrich" {
		t.Errorf("expected composed Zürich, got %q", got.City)
	}
}

func TestNominatim_Reverse(t *testing.T) {
	var gotUA, gotLat string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			http.NotFound(w, r)
			return
		}
		gotUA = r.Header.Get("User-Agent")
		gotLat = r.URL.Query().Get("lat")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"address": {"town": "Český Krumlov", "country": "Czechia"}}`))
	}))
	defer server.Close()

	n, err := NewNominatim(server.URL, "photo-memories-test", "en", 100)
	if err != nil {
		t.Fatalf("NewNominatim failed: %v", err)
	}

	place, err := n.Reverse(context.Background(), geo.Coordinate{Lat: 48.8127, Lng: 14.3175})
	if err != nil {
		t.Fatalf("Reverse failed: %v", err)
	}
	if place == nil {
		t.Fatal("expected place, got nil")
	}
	if place.City != "Český Krumlov" {
		t.Errorf("expected town as city, got %q", place.City)
	}
	if place.Country != "Czechia" {
		t.Errorf("expected Czechia, got %q", place.Country)
	}
	if gotUA != "photo-memories-test" {
		t.Errorf("expected User-Agent header, got %q", gotUA)
	}
	if gotLat != "48.812700" {
		t.Errorf("expected lat 48.812700, got %q", gotLat)
	}
}

func TestNominatim_ErrorFieldMeansNoResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "Unable to geocode"}`))
	}))
	defer server.Close()

	n, _ := NewNominatim(server.URL, "", "", 100)
	place, err := n.Reverse(context.Background(), geo.Coordinate{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if place != nil {
		t.Errorf("expected nil place, got %+v", place)
	}
}

func TestNominatim_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer server.Close()

	n, _ := NewNominatim(server.URL, "", "", 100)
	if _, err := n.Reverse(context.Background(), geo.Coordinate{}); err == nil {
		t.Error("expected error for 429 response")
	}
}
