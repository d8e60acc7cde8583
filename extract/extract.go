// Package extract fetches news pages and pulls article records and links out
// of them.
package extract

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/newsfetch/logger"
	"github.com/pevans/newsfetch/news"
)

// DefaultUserAgent identifies newsfetch to the sites it reads.
const DefaultUserAgent = "newsfetch/1.0 (+news page extractor)"

// Result holds everything extracted from one page.
type Result struct {
	Links    news.LinkList  `json:"links"`
	Articles []news.Article `json:"articles"`
}

// Extractor fetches pages and extracts their articles and links.
type Extractor struct {
	client    *http.Client
	selectors Selectors
	userAgent string
	log       logger.Logger
	now       func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClient sets the HTTP client. The default client has no timeout.
func WithClient(client *http.Client) Option {
	return func(e *Extractor) { e.client = client }
}

// WithSelectors overrides the article, title and description selectors.
func WithSelectors(s Selectors) Option {
	return func(e *Extractor) { e.selectors = s.withDefaults() }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(e *Extractor) {
		if ua != "" {
			e.userAgent = ua
		}
	}
}

// WithClock replaces the clock used for timing an extraction.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// New creates an extractor that logs progress to log.
func New(log logger.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		client:    &http.Client{},
		selectors: DefaultSelectors(),
		userAgent: DefaultUserAgent,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract fetches url and extracts its links and articles. Fetch and parse
// failures are returned as-is; there is no retry.
func (e *Extractor) Extract(ctx context.Context, url string) (*Result, error) {
	start := Timestamp(e.now())
	e.log.Info("Extracting data from "+url, logger.String("url", url))

	doc, err := FetchHTML(ctx, e.client, url, e.userAgent)
	if err != nil {
		return nil, err
	}

	links, articles := ExtractPage(doc, e.selectors, url)

	end := Timestamp(e.now())
	elapsed, err := ElapsedSeconds(start, end)
	if err != nil {
		return nil, err
	}

	e.log.Info(fmt.Sprintf("Extracted data in %v seconds", elapsed),
		logger.String("url", url), logger.Float64("seconds", elapsed))
	e.log.Info(fmt.Sprintf("Extracted %d articles and %d links from %s", len(articles), len(links), url),
		logger.Int("articles", len(articles)), logger.Int("links", len(links)))

	return &Result{Links: links, Articles: articles}, nil
}

// FetchHTML issues a single GET for url and parses the body as HTML. A
// non-2xx status is a fetch error.
func FetchHTML(ctx context.Context, client *http.Client, url, userAgent string) (*goquery.Document, error) {
	op := "GET " + url

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &news.Error{Kind: news.KindFetch, Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &news.Error{Kind: news.KindFetch, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &news.Error{Kind: news.KindFetch, Op: op, Err: fmt.Errorf("HTTP error: %s", resp.Status)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &news.Error{Kind: news.KindParse, Op: op, Err: fmt.Errorf("failed to parse HTML: %w", err)}
	}

	return doc, nil
}

// ExtractPage pulls every anchor href and every article container out of doc.
// Articles are numbered from 1 in document order; a container without a
// title or description element yields a nil field.
func ExtractPage(doc *goquery.Document, selectors Selectors, sourceURL string) (news.LinkList, []news.Article) {
	selectors = selectors.withDefaults()

	links := news.LinkList{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			links = append(links, href)
		}
	})

	articles := []news.Article{}
	doc.Find(selectors.Article).Each(func(i int, s *goquery.Selection) {
		articles = append(articles, news.Article{
			ID:          i + 1,
			Title:       firstText(s, selectors.Title),
			Description: firstText(s, selectors.Description),
			Source:      sourceURL,
		})
	})

	return links, articles
}

// firstText returns the trimmed text of the first element under s matching
// selector, or nil when nothing matches.
func firstText(s *goquery.Selection, selector string) *string {
	match := s.Find(selector).First()
	if match.Length() == 0 {
		return nil
	}
	text := strings.TrimSpace(match.Text())
	return &text
}
