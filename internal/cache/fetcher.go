package cache

import (
	"context"
	"fmt"
	"io"
	"net/http"

	rberrors "ribbon/internal/errors"
)

const fetchUserAgent = "ribbon-cache"

// ErrFetchFailed marks network failures while downloading the resource.
var ErrFetchFailed = rberrors.New(rberrors.CodeNetworkFailed, "resource fetch failed", nil)

// Fetcher writes the resource body to dst.
type Fetcher interface {
	Fetch(ctx context.Context, dst io.Writer) error
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, dst io.Writer) error

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, dst io.Writer) error {
	return f(ctx, dst)
}

// HTTPFetcher downloads a resource with a single GET. There is no retry.
type HTTPFetcher struct {
	URL    string
	Client *http.Client
	// Progress, when set, receives bytes read so far and the expected
	// total (-1 when unknown).
	Progress func(done, total int64)
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, dst io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: status %d", ErrFetchFailed, f.URL, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if f.Progress != nil {
		body = &countingReader{r: resp.Body, total: resp.ContentLength, fn: f.Progress}
	}
	if _, err := io.Copy(dst, body); err != nil {
		return fmt.Errorf("%w: read body: %v", ErrFetchFailed, err)
	}
	return nil
}

type countingReader struct {
	r     io.Reader
	done  int64
	total int64
	fn    func(done, total int64)
}

func (c *countingReader) Read(b []byte) (int, error) {
	n, err := c.r.Read(b)
	if n > 0 {
		c.done += int64(n)
		c.fn(c.done, c.total)
	}
	return n, err
}
