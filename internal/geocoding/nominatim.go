package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/kozaktomas/photo-memories/internal/geo"
)

// DefaultNominatimURL is the public OpenStreetMap Nominatim endpoint.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// Nominatim is a ReverseGeocoder backed by the Nominatim /reverse API.
type Nominatim struct {
	baseURL   *url.URL
	userAgent string
	language  string
	limiter   *rate.Limiter
	client    *http.Client
}

// nominatimResponse is the subset of the jsonv2 reverse response we use.
type nominatimResponse struct {
	Error   string `json:"error"`
	Address struct {
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Municipality string `json:"municipality"`
		Country      string `json:"country"`
	} `json:"address"`
}

// locality picks the most specific settlement name available.
func (r *nominatimResponse) locality() string {
	for _, name := range []string{r.Address.City, r.Address.Town, r.Address.Village, r.Address.Municipality} {
		if name != "" {
			return name
		}
	}
	return ""
}

// NewNominatim creates a Nominatim client limited to requestsPerSecond.
// The public instance requires an identifying User-Agent and at most 1 req/s.
func NewNominatim(rawURL, userAgent, language string, requestsPerSecond float64) (*Nominatim, error) {
	if rawURL == "" {
		rawURL = DefaultNominatimURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid geocoder URL: %w", err)
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &Nominatim{
		baseURL:   parsed,
		userAgent: userAgent,
		language:  language,
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		client:    http.DefaultClient,
	}, nil
}

// Reverse looks up the place at c.
func (n *Nominatim) Reverse(ctx context.Context, c geo.Coordinate) (*Place, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := n.baseURL.JoinPath("reverse")
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(c.Lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(c.Lng, 'f', 6, 64))
	q.Set("zoom", "10")
	q.Set("addressdetails", "1")
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}
	if n.language != "" {
		req.Header.Set("Accept-Language", n.language)
	}

	resp, err := n.client.Do(req) //nolint:gosec // URL built from configured base URL
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}

	// Nominatim answers 200 with an "error" field when nothing is found (e.g. open sea).
	if result.Error != "" {
		return nil, nil
	}

	place := &Place{City: result.locality(), Country: result.Address.Country}
	if place.IsEmpty() {
		return nil, nil
	}
	return place, nil
}
