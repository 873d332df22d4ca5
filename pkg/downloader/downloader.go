package downloader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/djcass44/workstation/pkg/progress"
	"github.com/go-logr/logr"
	"github.com/hashicorp/go-getter"
)

// maxPrealloc bounds how much of the buffer is allocated up
// front from the Content-Length of a response.
const maxPrealloc int64 = 64 << 20

// Downloader fetches artifacts into memory.
type Downloader struct {
	client *http.Client
}

type Options struct {
	// Timeout bounds each fetch. Zero means no timeout.
	Timeout time.Duration
	// Client overrides the HTTP client.
	Client *http.Client
}

func NewDownloader(opts Options) *Downloader {
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	if opts.Timeout > 0 {
		c := *client
		c.Timeout = opts.Timeout
		client = &c
	}
	return &Downloader{client: client}
}

// Fetch downloads src and returns the response body.
//
// http and https sources are downloaded directly. Anything
// else is handed to go-getter.
func (d *Downloader) Fetch(ctx context.Context, src string, tracker progress.Tracker) ([]byte, error) {
	if isHTTP(src) {
		return d.fetchHTTP(ctx, src, tracker)
	}
	return d.fetchGetter(ctx, src, tracker)
}

func (d *Downloader) fetchHTTP(ctx context.Context, src string, tracker progress.Tracker) ([]byte, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("url", src)
	log.V(2).Info("downloading file")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, &TransportError{URL: src, Err: err}
	}
	resp, err := d.client.Do(req)
	if err != nil {
		log.Error(err, "failed to execute request")
		return nil, &TransportError{URL: src, Err: err}
	}
	defer resp.Body.Close()

	log.V(2).Info("http request completed", "code", resp.StatusCode, "length", resp.ContentLength)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: src, StatusCode: resp.StatusCode}
	}

	// when the server doesn't tell us the size we carry on
	// without a total and fill it in once we have the body
	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		tracker.SetTotal(resp.ContentLength)
		// the header is only a hint, so don't trust it with
		// more memory than maxPrealloc
		buf.Grow(int(min(resp.ContentLength, maxPrealloc)))
	} else {
		log.V(1).Info("response has no content length, progress will be indeterminate")
	}

	n, err := io.Copy(&buf, &progressReader{r: resp.Body, tracker: tracker})
	if err != nil {
		log.Error(err, "failed to read response body")
		return nil, &TransportError{URL: src, Err: err}
	}
	if resp.ContentLength <= 0 {
		tracker.SetTotal(n)
	}
	log.V(2).Info("download completed", "bytes", n)
	return buf.Bytes(), nil
}

// fetchGetter downloads the file into a staging directory
// using go-getter and then reads it back.
func (d *Downloader) fetchGetter(ctx context.Context, src string, tracker progress.Tracker) ([]byte, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("src", src)

	dir, err := os.MkdirTemp("", "wks-download-*")
	if err != nil {
		return nil, fmt.Errorf("preparing download directory: %w", err)
	}
	defer os.RemoveAll(dir)

	dst := filepath.Join(dir, HashString(src))
	log.V(2).Info("downloading file", "dst", dst)

	client := &getter.Client{
		Ctx:              ctx,
		Src:              disableArchive(src),
		Dst:              dst,
		Mode:             getter.ClientModeFile,
		DisableSymlinks:  true,
		ProgressListener: &getterTracker{tracker: tracker},
	}
	if err := client.Get(); err != nil {
		log.Error(err, "failed to download file")
		return nil, &TransportError{URL: src, Err: err}
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		return nil, fmt.Errorf("reading downloaded file: %w", err)
	}
	// not every getter reports progress, so make sure the
	// tracker ends up at the right place
	tracker.SetTotal(int64(len(data)))
	tracker.SetCurrent(int64(len(data)))
	return data, nil
}

func isHTTP(src string) bool {
	uri, err := url.Parse(src)
	if err != nil {
		return false
	}
	return uri.Scheme == "http" || uri.Scheme == "https"
}

// disableArchive stops go-getter from unpacking archives
// since extraction is our job.
func disableArchive(src string) string {
	if strings.Contains(src, "::") {
		return src
	}
	uri, err := url.Parse(src)
	if err != nil {
		return src
	}
	q := uri.Query()
	q.Set("archive", "false")
	uri.RawQuery = q.Encode()
	return uri.String()
}

type progressReader struct {
	r       io.Reader
	tracker progress.Tracker
	n       int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.n += int64(n)
		p.tracker.SetCurrent(p.n)
	}
	return n, err
}

type getterTracker struct {
	tracker progress.Tracker
}

func (g *getterTracker) TrackProgress(_ string, currentSize, totalSize int64, stream io.ReadCloser) io.ReadCloser {
	g.tracker.SetTotal(totalSize)
	g.tracker.SetCurrent(currentSize)
	return &progressReadCloser{
		progressReader: progressReader{r: stream, tracker: g.tracker, n: currentSize},
		closer:         stream,
	}
}

type progressReadCloser struct {
	progressReader
	closer io.Closer
}

func (p *progressReadCloser) Close() error {
	return p.closer.Close()
}
