// Package fetcher downloads artifacts over HTTP and reports download progress.
package fetcher

import (
	"context"
	"errors"
	"io"
	"math"
	"path"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/fundwallet/fundwallet-backend/internal/apperrors"
	"github.com/fundwallet/fundwallet-backend/internal/metrics"
	"github.com/fundwallet/fundwallet-backend/internal/progress"
)

const readSize = 32 * 1024

// Fetcher retrieves the bytes stored at a URL.
// This interface enables dependency injection and testing with mock implementations.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher streams artifacts with resty and publishes download progress.
// It never retries; callers decide whether a failure is worth another attempt.
type HTTPFetcher struct {
	client   *resty.Client
	progress progress.Publisher
	metrics  *metrics.Collectors
	logger   zerolog.Logger
}

// Options configures an HTTPFetcher.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Progress  progress.Publisher
	Metrics   *metrics.Collectors
	Logger    zerolog.Logger
}

// New creates an HTTPFetcher.
//
// Parameters:
//   - opts: timeout, user agent and the progress/metrics sinks. A zero Timeout means no timeout.
//
// Returns:
//   - *HTTPFetcher: A fetcher ready for use
func New(opts Options) *HTTPFetcher {
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "text/plain, application/octet-stream, */*")
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	return &HTTPFetcher{
		client:   client,
		progress: opts.Progress,
		metrics:  opts.Metrics,
		logger:   opts.Logger.With().Str("component", "fetcher").Logger(),
	}
}

// Fetch downloads url into memory.
//
// The body is read in fixed-size pieces. When the server announces a content
// length, a download event with percent = round(received/length*100) is published
// every time that percentage changes; otherwise only the start and end are published.
//
// Returns:
//   - []byte: The complete response body
//   - error: *apperrors.FetchError on transport failure, non-2xx status or a truncated body
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	name := path.Base(url)
	f.publish(progress.PhaseDownload, 0, name)

	data, err := f.fetch(ctx, url, name)
	f.metrics.ObserveFetch(len(data), time.Since(start), err)
	if err != nil {
		f.logger.Error().Err(err).Str("url", url).Msg("download failed")
		return nil, err
	}

	f.publish(progress.PhaseDownload, 100, name)
	f.logger.Debug().
		Str("url", url).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("download complete")
	return data, nil
}

func (f *HTTPFetcher) fetch(ctx context.Context, url, name string) ([]byte, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, &apperrors.FetchError{URL: url, Err: err}
	}

	body := resp.RawBody()
	if body == nil {
		return nil, &apperrors.FetchError{URL: url, Err: errors.New("empty response")}
	}
	defer body.Close()

	if !resp.IsSuccess() {
		_, _ = io.Copy(io.Discard, body)
		return nil, &apperrors.FetchError{URL: url, StatusCode: resp.StatusCode()}
	}

	var total int64 = -1
	if resp.RawResponse != nil {
		total = resp.RawResponse.ContentLength
	}

	data := make([]byte, 0, max(total, 0))
	buf := make([]byte, readSize)
	lastPercent := -1
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
			if total > 0 {
				percent := int(math.Round(float64(len(data)) / float64(total) * 100))
				if percent != lastPercent {
					lastPercent = percent
					f.publish(progress.PhaseDownload, percent, name)
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, &apperrors.FetchError{URL: url, Err: readErr}
		}
	}

	if total > 0 && int64(len(data)) != total {
		return nil, &apperrors.FetchError{URL: url, Err: io.ErrUnexpectedEOF}
	}
	return data, nil
}

func (f *HTTPFetcher) publish(phase string, percent int, detail string) {
	if f.progress != nil {
		f.progress.Publish(phase, percent, detail)
	}
}
