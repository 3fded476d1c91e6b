package adapter

import (
	"book-store/internal/core/model"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	SearchLimit   = 10
	CategoryLimit = 12
)

type OpenLibraryClient struct {
	BaseURL   string
	CoversURL string
	Client    *http.Client
	Retry     int
	// Backoff returns the wait before retry attempt i (0-based).
	Backoff func(i int) time.Duration
	Synth   Synthesizer
}

func NewOpenLibraryClient(baseURL string, retry int, httpClient *http.Client, synth Synthesizer) *OpenLibraryClient {
	if baseURL == "" {
		baseURL = "https://openlibrary.org"
	}
	if retry < 0 {
		retry = 0
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if synth == nil {
		synth = NewRandomSynth(0)
	}
	return &OpenLibraryClient{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		CoversURL: "https://covers.openlibrary.org",
		Client:    httpClient,
		Retry:     retry,
		Backoff:   linearBackoff,
		Synth:     synth,
	}
}

func linearBackoff(i int) time.Duration {
	return time.Duration(150*(i+1)) * time.Millisecond
}

// SearchByQuery returns up to SearchLimit books matching text. Empty text
// returns no books without a request.
func (c *OpenLibraryClient) SearchByQuery(ctx context.Context, text string) ([]model.Book, error) {
	if text == "" {
		return []model.Book{}, nil
	}
	q := url.Values{}
	q.Set("q", text)
	q.Set("limit", fmt.Sprint(SearchLimit))
	u := fmt.Sprintf("%s/search.json?%s", c.BaseURL, q.Encode())

	var res searchResponse
	if err := c.get(ctx, "search", u, &res); err != nil {
		return nil, err
	}
	if res.Docs == nil {
		return nil, &model.FetchError{Kind: model.FetchParse, Op: "search", Err: errors.New("response has no docs")}
	}

	docs := *res.Docs
	if len(docs) > SearchLimit {
		docs = docs[:SearchLimit]
	}
	books := make([]model.Book, 0, len(docs))
	for _, d := range docs {
		books = append(books, model.Book{
			Key:    d.Key,
			Title:  d.Title,
			Author: first(d.AuthorName),
			Price:  c.Synth.Price(),
			Rating: c.Synth.Rating(),
			Img:    c.coverURL(d.CoverI),
			Olid:   first(d.EditionKey),
		})
	}
	return books, nil
}

// SearchByCategory returns up to CategoryLimit books for a subject. The
// category is lowercased and spaces become underscores.
func (c *OpenLibraryClient) SearchByCategory(ctx context.Context, category string) ([]model.Book, error) {
	slug := CategorySlug(category)
	if slug == "" {
		return []model.Book{}, nil
	}
	u := fmt.Sprintf("%s/subjects/%s.json?limit=%d", c.BaseURL, url.PathEscape(slug), CategoryLimit)

	var res subjectResponse
	if err := c.get(ctx, "category", u, &res); err != nil {
		return nil, err
	}

	works := res.Works
	if len(works) > CategoryLimit {
		works = works[:CategoryLimit]
	}
	books := make([]model.Book, 0, len(works))
	for _, w := range works {
		var author *string
		if len(w.Authors) > 0 && w.Authors[0].Name != "" {
			name := w.Authors[0].Name
			author = &name
		}
		var olid *string
		if w.CoverEditionKey != "" {
			k := w.CoverEditionKey
			olid = &k
		}
		books = append(books, model.Book{
			Key:    w.Key,
			Title:  w.Title,
			Author: author,
			Price:  c.Synth.Price(),
			Rating: c.Synth.Rating(),
			Img:    c.coverURL(w.CoverID),
			Olid:   olid,
		})
	}
	return books, nil
}

func CategorySlug(category string) string {
	return strings.ReplaceAll(strings.ToLower(category), " ", "_")
}

// get fetches u into dst, retrying network failures up to c.Retry times.
func (c *OpenLibraryClient) get(ctx context.Context, op, u string, dst any) error {
	var lastErr error
	attempts := c.Retry + 1
	for i := 0; i < attempts; i++ {
		err := c.fetchOnce(ctx, op, u, dst)
		if err == nil {
			return nil
		}
		// parse failures and cancellation are final
		if errors.Is(err, model.ErrParse) || ctx.Err() != nil {
			return err
		}
		lastErr = err
		if i < attempts-1 && c.Backoff != nil {
			select {
			case <-time.After(c.Backoff(i)):
			case <-ctx.Done():
				return &model.FetchError{Kind: model.FetchNetwork, Op: op, Err: ctx.Err()}
			}
		}
	}
	return lastErr
}

func (c *OpenLibraryClient) fetchOnce(ctx context.Context, op, u string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &model.FetchError{Kind: model.FetchNetwork, Op: op, Err: err}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return &model.FetchError{Kind: model.FetchNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &model.FetchError{
			Kind:   model.FetchNetwork,
			Op:     op,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("openlibrary: status %d: %s", resp.StatusCode, string(b)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &model.FetchError{Kind: model.FetchParse, Op: op, Err: err}
	}
	return nil
}

func (c *OpenLibraryClient) coverURL(id *int) *string {
	if id == nil || *id <= 0 {
		return nil
	}
	u := fmt.Sprintf("%s/b/id/%d-L.jpg", c.CoversURL, *id)
	return &u
}

type searchResponse struct {
	Docs *[]searchDoc `json:"docs"`
}

type searchDoc struct {
	Title      string   `json:"title"`
	AuthorName []string `json:"author_name"`
	CoverI     *int     `json:"cover_i"`
	Key        string   `json:"key"`
	EditionKey []string `json:"edition_key"`
}

type subjectResponse struct {
	Works []subjectWork `json:"works"`
}

type subjectWork struct {
	Title           string          `json:"title"`
	Authors         []subjectAuthor `json:"authors"`
	CoverID         *int            `json:"cover_id"`
	Key             string          `json:"key"`
	CoverEditionKey string          `json:"cover_edition_key"`
}

type subjectAuthor struct {
	Name string `json:"name"`
}

func first(ss []string) *string {
	if len(ss) == 0 || ss[0] == "" {
		return nil
	}
	s := ss[0]
	return &s
}
