// Package ingest acquires auction JSON documents from local files or
// remote URLs and decodes them into item records.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"auction-etl/config"
	"auction-etl/parser"
)

// Reader loads input documents. A failed open, decode, or fetch is fatal
// for the run; there is no retry, inputs are static documents.
type Reader struct {
	cfg     *config.Config
	Metrics *Metrics

	// transport overrides the fetch transport, for tests.
	transport http.RoundTripper
}

// NewReader builds a reader configured from cfg.
func NewReader(cfg *config.Config) *Reader {
	return &Reader{
		cfg:     cfg,
		Metrics: NewMetrics(),
	}
}

// IsJSON reports whether a local path carries the .json suffix.
func IsJSON(path string) bool {
	return strings.HasSuffix(path, ".json") && len(path) > len(".json")
}

// IsURL reports whether an input argument is a remote document address.
func IsURL(arg string) bool {
	return strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://")
}

// Load reads one input argument, local path or URL, into item records.
func (r *Reader) Load(arg string) ([]parser.ItemRecord, error) {
	if IsURL(arg) {
		return r.Fetch(arg)
	}
	return r.ReadFile(arg)
}

// ReadFile decodes one local auction JSON document.
func (r *Reader) ReadFile(path string) ([]parser.ItemRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		wrapped := &OpenError{Path: path, Err: err}
		r.fail(wrapped)
		return nil, wrapped
	}
	defer f.Close()

	var doc parser.Document
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		wrapped := &DecodeError{Path: path, Err: err}
		r.fail(wrapped)
		return nil, wrapped
	}

	r.Metrics.IncFile("parsed")
	r.Metrics.AddItems(len(doc.Items))
	slog.Debug("document parsed",
		slog.String("path", path),
		slog.Int("items", len(doc.Items)),
	)
	return doc.Items, nil
}

// Fetch retrieves and decodes one remote auction JSON document. Each
// fetch uses a fresh collector so repeated URLs are not short-circuited
// by colly's visited-URL tracking.
func (r *Reader) Fetch(rawURL string) ([]parser.ItemRecord, error) {
	c := colly.NewCollector(
		colly.UserAgent(r.cfg.UserAgent),
	)
	c.SetRequestTimeout(r.cfg.Timeout)
	c.IgnoreRobotsTxt = true
	if r.transport != nil {
		c.WithTransport(r.transport)
	}

	var body []byte
	var fetchErr error
	c.OnResponse(func(resp *colly.Response) {
		body = resp.Body
	})
	c.OnError(func(resp *colly.Response, err error) {
		fetchErr = err
	})

	start := time.Now()
	if err := c.Visit(rawURL); err != nil && fetchErr == nil {
		fetchErr = err
	}
	r.Metrics.ObserveFetch(time.Since(start))

	if fetchErr == nil && body == nil {
		fetchErr = errors.New("empty response")
	}
	if fetchErr != nil {
		wrapped := &FetchError{URL: rawURL, Err: fetchErr}
		r.fail(wrapped)
		return nil, wrapped
	}

	var doc parser.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		wrapped := &DecodeError{Path: rawURL, Err: err}
		r.fail(wrapped)
		return nil, wrapped
	}

	r.Metrics.IncFile("fetched")
	r.Metrics.AddItems(len(doc.Items))
	slog.Debug("document fetched",
		slog.String("url", rawURL),
		slog.Int("items", len(doc.Items)),
	)
	return doc.Items, nil
}

func (r *Reader) fail(err error) {
	r.Metrics.IncFile("failed")
	r.Metrics.IncError(errorTypeLabel(err))
}

// Describe renders a short input summary for logs.
func Describe(args []string) string {
	files, urls, skipped := 0, 0, 0
	for _, arg := range args {
		switch {
		case IsURL(arg):
			urls++
		case IsJSON(arg):
			files++
		default:
			skipped++
		}
	}
	return fmt.Sprintf("%d files, %d urls, %d skipped", files, urls, skipped)
}
