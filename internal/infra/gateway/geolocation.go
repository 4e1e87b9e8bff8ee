package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"airdrop-service/internal/usecase"
)

// GeolocationGateway resolves a requester IP to a country name via the
// ip-api.com json endpoint. Lookups are best-effort: any failure reports
// the country as unavailable rather than blocking the caller.
type GeolocationGateway struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache
}

func NewGeolocationGateway(baseURL string) *GeolocationGateway {
	return &GeolocationGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		cache:   cache.New(10*time.Minute, 15*time.Minute),
	}
}

type geolocationResponse struct {
	Status  string `json:"status"`
	Country string `json:"country"`
}

func (g *GeolocationGateway) CountryForIP(ctx context.Context, ip string) (string, bool) {
	if ip == "" {
		return "", false
	}

	if cached, found := g.cache.Get(ip); found {
		return cached.(string), true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/json/"+ip+"?fields=status,country", nil)
	if err != nil {
		return "", false
	}

	resp, err := g.client.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "geolocation lookup failed",
			slog.String("ip", ip),
			slog.String("error", err.Error()),
		)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.WarnContext(ctx, "geolocation lookup returned unexpected status",
			slog.String("ip", ip),
			slog.Int("status", resp.StatusCode),
		)
		return "", false
	}

	var body geolocationResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", false
	}
	if body.Status != "success" || body.Country == "" {
		return "", false
	}

	g.cache.Set(ip, body.Country, cache.DefaultExpiration)
	return body.Country, true
}

var _ usecase.GeolocationGateway = (*GeolocationGateway)(nil)
