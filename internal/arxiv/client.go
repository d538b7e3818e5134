package arxiv

// Package arxiv contains the upstream client used to fetch figure PNGs
// from arXiv HTML abstract pages. A paper page such as
// https://arxiv.org/html/2504.07491v1 exposes its figures as sibling
// objects x1.png .. x4.png.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"arxivimg/internal/config"
)

// Figure index bounds exposed by arXiv HTML pages.
const (
	MinIndex = 1
	MaxIndex = 4
)

const minPageURLLen = 15

var (
	ErrInvalidPageURL  = errors.New("invalid arxiv html page url")
	ErrInvalidIndex    = errors.New("image index out of range")
	ErrNotPNG          = errors.New("resource is not a png image")
	ErrImageNotFound   = errors.New("image not found upstream")
	ErrTimeout         = errors.New("timeout fetching image upstream")
	ErrUnreachable     = errors.New("cannot connect to upstream")
	ErrRedirectBlocked = errors.New("redirect to disallowed host")
	ErrTooLarge        = errors.New("image exceeds configured size limit")
)

// UpstreamStatusError reports a non-200, non-404 status from arXiv.
type UpstreamStatusError struct {
	StatusCode int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// Image is a fetched figure.
type Image struct {
	Data        []byte
	ContentType string
	URL         string
}

// Client fetches figures from arXiv HTML pages.
type Client interface {
	// FetchFigure retrieves x<index>.png for the given page URL.
	// The page URL must already be validated with ValidatePageURL.
	FetchFigure(ctx context.Context, pageURL string, index int) (*Image, error)
}

type httpFetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// NewClient creates an arXiv figure client. Outbound requests carry
// otelhttp client spans and are bounded by the configured timeout.
// Redirects are only followed while they stay on the allowed host.
func NewClient(cfg config.ArxivConfig) Client {
	allowedHost := cfg.AllowedHost
	return &httpFetcher{
		client: &http.Client{
			Timeout:   time.Duration(cfg.TimeoutSec) * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if req.URL.Host != allowedHost {
					return fmt.Errorf("host %q: %w", req.URL.Host, ErrRedirectBlocked)
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBody:   cfg.MaxBodyBytes,
	}
}

// ValidatePageURL checks that raw is an HTML abstract page URL on the
// allowed host: http(s) scheme, exact host match, path under /html/.
func ValidatePageURL(raw, allowedHost string) error {
	if len(raw) < minPageURLLen {
		return ErrInvalidPageURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidPageURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidPageURL
	}
	if u.Host != allowedHost {
		return ErrInvalidPageURL
	}
	if !strings.HasPrefix(u.Path, "/html/") {
		return ErrInvalidPageURL
	}
	return nil
}

// ValidateIndex checks the figure index range.
func ValidateIndex(index int) error {
	if index < MinIndex || index > MaxIndex {
		return ErrInvalidIndex
	}
	return nil
}

// FigureURL builds the figure object URL for a page URL and index.
func FigureURL(pageURL string, index int) string {
	return fmt.Sprintf("%s/x%d.png", strings.TrimRight(pageURL, "/"), index)
}

func (f *httpFetcher) FetchFigure(ctx context.Context, pageURL string, index int) (*Image, error) {
	if err := ValidateIndex(index); err != nil {
		return nil, err
	}

	imageURL := FigureURL(pageURL, index)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to content type check below
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrImageNotFound
	default:
		return nil, &UpstreamStatusError{StatusCode: resp.StatusCode}
	}

	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(ct, "image/png") {
		return nil, fmt.Errorf("content type %q: %w", ct, ErrNotPNG)
	}

	// Read one byte past the cap so an oversized body fails the request
	// instead of being truncated into a corrupt image.
	var r io.Reader = resp.Body
	if f.maxBody > 0 {
		r = io.LimitReader(resp.Body, f.maxBody+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if f.maxBody > 0 && int64(len(data)) > f.maxBody {
		return nil, fmt.Errorf("body larger than %d bytes: %w", f.maxBody, ErrTooLarge)
	}

	return &Image{
		Data:        data,
		ContentType: ct,
		URL:         imageURL,
	}, nil
}

// classifyTransportError maps transport failures onto the package's
// sentinel errors so handlers can translate them to status codes.
func classifyTransportError(err error) error {
	if errors.Is(err, ErrRedirectBlocked) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%v: %w", err, ErrTimeout)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%v: %w", err, ErrTimeout)
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%v: %w", err, ErrUnreachable)
	}
	var oe *net.OpError
	if errors.As(err, &oe) {
		return fmt.Errorf("%v: %w", err, ErrUnreachable)
	}
	return err
}
