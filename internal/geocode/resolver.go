package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/agenthands/atlas/internal/config"
	"github.com/agenthands/atlas/internal/core/model"
)

// Resolver turns a raw mention into coordinates. A mention the upstream
// service cannot place comes back with ConfidenceFailed and a nil error;
// errors are reserved for the service itself being unreachable.
type Resolver interface {
	Resolve(ctx context.Context, m model.RawMention) (model.ResolvedMention, error)
}

// GoogleResolver resolves place names against the Google Geocoding API.
// Disambiguation policy: trust upstream ranking, take the first result.
type GoogleResolver struct {
	apiKey     string
	baseURL    string
	client     *http.Client
	maxRetries uint64
}

func NewGoogleResolver(cfg config.GeocoderConfig) *GoogleResolver {
	return &GoogleResolver{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		maxRetries: uint64(cfg.MaxRetries),
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string   `json:"formatted_address"`
		Types            []string `json:"types"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (r *GoogleResolver) Resolve(ctx context.Context, m model.RawMention) (model.ResolvedMention, error) {
	out := model.ResolvedMention{RawMention: m, Confidence: model.ConfidenceFailed}

	q := url.Values{}
	q.Set("address", m.Text)
	q.Set("key", r.apiKey)
	endpoint := fmt.Sprintf("%s/maps/api/geocode/json?%s", r.baseURL, q.Encode())

	resp, err := r.get(ctx, endpoint)
	if err != nil {
		return out, fmt.Errorf("geocoding %q: %w", m.Text, err)
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		// Valid non-error response; the mention just cannot be placed.
		return out, nil
	default:
		return out, fmt.Errorf("geocoding %q: upstream status %s", m.Text, resp.Status)
	}

	if len(resp.Results) == 0 {
		return out, nil
	}

	best := resp.Results[0]
	out.Lat = best.Geometry.Location.Lat
	out.Lng = best.Geometry.Location.Lng
	out.FormattedAddress = best.FormattedAddress
	if len(best.Types) > 0 {
		out.PlaceType = best.Types[0]
	}
	if len(resp.Results) == 1 {
		out.Confidence = model.ConfidenceExact
	} else {
		out.Confidence = model.ConfidenceApproximate
	}
	return out, nil
}

func (r *GoogleResolver) get(ctx context.Context, endpoint string) (*geocodeResponse, error) {
	body, err := r.getRaw(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var decoded geocodeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	return &decoded, nil
}

// getRaw fetches an upstream endpoint, retrying transient failures (network
// errors, 5xx) a bounded number of times with backoff.
func (r *GoogleResolver) getRaw(ctx context.Context, endpoint string) ([]byte, error) {
	var body []byte

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := r.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("upstream returned %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("upstream returned %d", resp.StatusCode))
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), r.maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return body, nil
}

func newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	return b
}
