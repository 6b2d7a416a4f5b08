package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"storyroom/internal/entity"
)

const searchFields = "key,title,author_name,isbn,cover_i,first_publish_year,publisher,description,ratings_average"

type Client struct {
	httpClient   *http.Client
	userAgent    string
	baseURL      string
	coverBaseURL string
	limiter      *rate.Limiter
	maxRetries   int
}

func NewClient(userAgent string, rps int, maxRetries int) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		userAgent:    userAgent,
		baseURL:      "https://openlibrary.org",
		coverBaseURL: "https://covers.openlibrary.org/b",
		limiter:      rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries:   maxRetries,
	}
}

// searchResponse matches search.json
type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Key              string          `json:"key"`
	Title            string          `json:"title"`
	AuthorNames      []string        `json:"author_name"`
	ISBN             []string        `json:"isbn"`
	CoverID          int             `json:"cover_i"`
	FirstPublishYear int             `json:"first_publish_year"`
	Publisher        []string        `json:"publisher"`
	Description      json.RawMessage `json:"description"`
	RatingsAverage   float64         `json:"ratings_average"`
}

// Search queries the Open Library search API. A transport-level failure
// returns a non-nil error so callers can tell "service unavailable" apart
// from an empty result set.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]entity.BookSummary, error) {
	u := fmt.Sprintf("%s/search.json?q=%s&fields=%s&limit=%d",
		c.baseURL, url.QueryEscape(query), url.QueryEscape(searchFields), limit)

	var res searchResponse
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}

	results := make([]entity.BookSummary, 0, len(res.Docs))
	for _, doc := range res.Docs {
		results = append(results, c.summarize(doc))
	}
	return results, nil
}

func (c *Client) summarize(doc searchDoc) entity.BookSummary {
	s := entity.BookSummary{
		Title:       doc.Title,
		Authors:     doc.AuthorNames,
		ISBN:        pickISBN(doc.ISBN),
		Publisher:   doc.Publisher,
		Description: decodeDescription(doc.Description),
		Source:      entity.SourceExternal,
	}
	if s.Authors == nil {
		s.Authors = []string{}
	}
	if doc.Key != "" {
		key := doc.Key
		s.ExternalID = &key
	}
	if doc.FirstPublishYear != 0 {
		year := doc.FirstPublishYear
		s.FirstPublishYear = &year
	}
	if doc.CoverID != 0 {
		coverURL := fmt.Sprintf("%s/id/%d-M.jpg", c.coverBaseURL, doc.CoverID)
		s.CoverURL = &coverURL
	}
	if doc.RatingsAverage != 0 {
		rating := math.Round(doc.RatingsAverage*10) / 10
		s.PublicRating = &rating
	}
	return s
}

// pickISBN prefers a 13-digit ISBN, falls back to the first one, and yields
// nil when the list is empty.
func pickISBN(isbns []string) *string {
	if len(isbns) == 0 {
		return nil
	}
	for _, isbn := range isbns {
		if len(isbn) == 13 {
			return &isbn
		}
	}
	return &isbns[0]
}

// decodeDescription handles the two shapes Open Library uses: a plain string
// or {"type": "/type/text", "value": "..."}.
func decodeDescription(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return nil
		}
		return &s
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Value != "" {
		return &obj.Value
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string, target any) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: 1s, 2s, 4s...
			backoff := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
				continue
			}
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		err = json.NewDecoder(resp.Body).Decode(target)
		resp.Body.Close()
		return err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}
