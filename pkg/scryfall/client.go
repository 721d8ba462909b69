// Package scryfall is a minimal client for the Scryfall card API, used to
// validate OCR-extracted card names against the real card database.
package scryfall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.scryfall.com"

// ErrNotFound means no card matched the name, exactly or fuzzily.
var ErrNotFound = errors.New("card not found")

// Card is the subset of Scryfall's card object the app cares about.
type Card struct {
	Name     string `json:"name"`
	ManaCost string `json:"mana_cost"`
	TypeLine string `json:"type_line"`
	SetName  string `json:"set_name"`
}

// Client talks to Scryfall with the polite request spacing their API
// guidelines ask for. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient builds a client against the public API. baseURL overrides are
// for tests.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		// Scryfall asks for 50-100ms between requests.
		limiter: rate.NewLimiter(rate.Limit(10), 1),
	}
}

// Resolve validates a card name: exact match first, fuzzy second. A fuzzy
// hit corrects OCR spelling drift ("Lighming Bolt" resolves to Lightning
// Bolt); a miss on both is ErrNotFound.
func (c *Client) Resolve(ctx context.Context, name string) (*Card, error) {
	card, err := c.named(ctx, name, true)
	if err == nil {
		return card, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return c.named(ctx, name, false)
}

func (c *Client) named(ctx context.Context, name string, exact bool) (*Card, error) {
	q := url.Values{}
	if exact {
		q.Set("exact", name)
	} else {
		q.Set("fuzzy", name)
	}
	endpoint := c.baseURL + "/cards/named?" + q.Encode()

	return retry.DoWithData(
		func() (*Card, error) {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return nil, err
			}
			resp, err := c.http.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()
			switch resp.StatusCode {
			case http.StatusOK:
				var card Card
				if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
					return nil, fmt.Errorf("decode card: %w", err)
				}
				return &card, nil
			case http.StatusNotFound:
				return nil, retry.Unrecoverable(fmt.Errorf("%w: %s", ErrNotFound, name))
			default:
				return nil, fmt.Errorf("scryfall status %d", resp.StatusCode)
			}
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
}
