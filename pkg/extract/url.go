package extract

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// URLFetcher fetches a web page and reduces it to readable plain text,
// stripping scripts, styles and boilerplate.
type URLFetcher struct {
	client   *http.Client
	maxBytes int64
}

func NewURLFetcher(timeout time.Duration, maxBytes int64) *URLFetcher {
	return &URLFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		maxBytes: maxBytes,
	}
}

// Fetch downloads rawURL and returns its article text. Network and timeout
// failures wrap ErrFetch; oversize bodies wrap ErrOversizeSource; pages with
// no recoverable text wrap ErrEmptySource.
func (f *URLFetcher) Fetch(rawURL string) (string, error) {
	pageURL, err := url.ParseRequestURI(rawURL)
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") {
		return "", fmt.Errorf("%w: invalid url %q", ErrFetch, rawURL)
	}

	resp, err := f.client.Get(pageURL.String())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d from %s", ErrFetch, resp.StatusCode, pageURL.Host)
	}

	// Read one byte past the cap so oversize is detectable.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrFetch, err)
	}
	if int64(len(body)) > f.maxBytes {
		return "", fmt.Errorf("%w: body larger than %d bytes", ErrOversizeSource, f.maxBytes)
	}

	article, err := readability.FromReader(strings.NewReader(string(body)), pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: parse page: %v", ErrEmptySource, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("%w: no readable text at %s", ErrEmptySource, pageURL.Host)
	}
	return text, nil
}
