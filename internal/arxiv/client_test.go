package arxiv

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"arxivimg/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePageURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "valid https", raw: "https://arxiv.org/html/2504.07491v1", wantErr: false},
		{name: "valid http", raw: "http://arxiv.org/html/2504.07491v1", wantErr: false},
		{name: "trailing slash", raw: "https://arxiv.org/html/2504.07491v1/", wantErr: false},
		{name: "too short", raw: "https://a.b/h", wantErr: true},
		{name: "wrong scheme", raw: "ftp://arxiv.org/html/2504.07491v1", wantErr: true},
		{name: "wrong host", raw: "https://example.com/html/2504.07491v1", wantErr: true},
		{name: "wrong path", raw: "https://arxiv.org/abs/2504.07491v1", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePageURL(tt.raw, "arxiv.org")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPageURL)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateIndex(t *testing.T) {
	assert.NoError(t, ValidateIndex(1))
	assert.NoError(t, ValidateIndex(4))
	assert.ErrorIs(t, ValidateIndex(0), ErrInvalidIndex)
	assert.ErrorIs(t, ValidateIndex(5), ErrInvalidIndex)
	assert.ErrorIs(t, ValidateIndex(-1), ErrInvalidIndex)
}

func TestFigureURL(t *testing.T) {
	assert.Equal(t,
		"https://arxiv.org/html/2504.07491v1/x2.png",
		FigureURL("https://arxiv.org/html/2504.07491v1", 2))
	assert.Equal(t,
		"https://arxiv.org/html/2504.07491v1/x4.png",
		FigureURL("https://arxiv.org/html/2504.07491v1/", 4))
}

func newTestClient() Client {
	return NewClient(config.ArxivConfig{TimeoutSec: 5, UserAgent: "test-agent"})
}

func TestFetchFigure(t *testing.T) {
	ctx := context.Background()
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/html/2504.07491v1/x1.png", r.URL.Path)
			assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
			w.Header().Set("Content-Type", "image/png")
			w.Write(png)
		}))
		defer srv.Close()

		img, err := newTestClient().FetchFigure(ctx, srv.URL+"/html/2504.07491v1", 1)
		require.NoError(t, err)
		assert.Equal(t, png, img.Data)
		assert.Equal(t, "image/png", img.ContentType)
		assert.True(t, strings.HasSuffix(img.URL, "/x1.png"))
	})

	t.Run("not png content type", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html></html>"))
		}))
		defer srv.Close()

		_, err := newTestClient().FetchFigure(ctx, srv.URL+"/html/2504.07491v1", 1)
		assert.ErrorIs(t, err, ErrNotPNG)
	})

	t.Run("upstream 404", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := newTestClient().FetchFigure(ctx, srv.URL+"/html/2504.07491v1", 3)
		assert.ErrorIs(t, err, ErrImageNotFound)
	})

	t.Run("upstream 500", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := newTestClient().FetchFigure(ctx, srv.URL+"/html/2504.07491v1", 1)
		var se *UpstreamStatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	})

	t.Run("connection refused", func(t *testing.T) {
		// Point at a closed port
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		base := srv.URL
		srv.Close()

		_, err := newTestClient().FetchFigure(ctx, base+"/html/2504.07491v1", 1)
		assert.ErrorIs(t, err, ErrUnreachable)
	})

	t.Run("index out of range", func(t *testing.T) {
		_, err := newTestClient().FetchFigure(ctx, "https://arxiv.org/html/2504.07491v1", 9)
		assert.ErrorIs(t, err, ErrInvalidIndex)
	})

	t.Run("body exceeding max bytes fails the fetch", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			w.Write(make([]byte, 1024))
		}))
		defer srv.Close()

		c := NewClient(config.ArxivConfig{TimeoutSec: 5, MaxBodyBytes: 16})
		img, err := c.FetchFigure(ctx, srv.URL+"/html/2504.07491v1", 1)
		assert.ErrorIs(t, err, ErrTooLarge)
		assert.Nil(t, img)
	})

	t.Run("body within max bytes is served whole", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			w.Write(make([]byte, 1024))
		}))
		defer srv.Close()

		c := NewClient(config.ArxivConfig{TimeoutSec: 5, MaxBodyBytes: 1024})
		img, err := c.FetchFigure(ctx, srv.URL+"/html/2504.07491v1", 1)
		require.NoError(t, err)
		assert.Len(t, img.Data, 1024)
	})

	t.Run("redirect to foreign host is blocked", func(t *testing.T) {
		foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			w.Write(png)
		}))
		defer foreign.Close()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, foreign.URL+"/x1.png", http.StatusFound)
		}))
		defer srv.Close()

		c := NewClient(config.ArxivConfig{
			TimeoutSec:  5,
			AllowedHost: strings.TrimPrefix(srv.URL, "http://"),
		})
		img, err := c.FetchFigure(ctx, srv.URL+"/html/2504.07491v1", 1)
		assert.ErrorIs(t, err, ErrRedirectBlocked)
		assert.Nil(t, img)
	})

	t.Run("redirect within allowed host is followed", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/html/2504.07491v1/x1.png", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/moved/x1.png", http.StatusMovedPermanently)
		})
		mux.HandleFunc("/moved/x1.png", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			w.Write(png)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		c := NewClient(config.ArxivConfig{
			TimeoutSec:  5,
			AllowedHost: strings.TrimPrefix(srv.URL, "http://"),
		})
		img, err := c.FetchFigure(ctx, srv.URL+"/html/2504.07491v1", 1)
		require.NoError(t, err)
		assert.Equal(t, png, img.Data)
	})
}

type timeoutNetError struct{}

func (timeoutNetError) Error() string   { return "i/o timeout" }
func (timeoutNetError) Timeout() bool   { return true }
func (timeoutNetError) Temporary() bool { return true }

func TestClassifyTransportError(t *testing.T) {
	t.Run("deadline exceeded", func(t *testing.T) {
		err := classifyTransportError(context.DeadlineExceeded)
		assert.ErrorIs(t, err, ErrTimeout)
	})

	t.Run("net timeout", func(t *testing.T) {
		err := classifyTransportError(&url.Error{Op: "Get", URL: "x", Err: timeoutNetError{}})
		assert.ErrorIs(t, err, ErrTimeout)
	})

	t.Run("url error is unreachable", func(t *testing.T) {
		err := classifyTransportError(&url.Error{Op: "Get", URL: "x", Err: errors.New("connection refused")})
		assert.ErrorIs(t, err, ErrUnreachable)
	})

	t.Run("op error is unreachable", func(t *testing.T) {
		err := classifyTransportError(&net.OpError{Op: "dial", Err: errors.New("refused")})
		assert.ErrorIs(t, err, ErrUnreachable)
	})

	t.Run("unknown error passes through", func(t *testing.T) {
		plain := errors.New("boom")
		assert.Equal(t, plain, classifyTransportError(plain))
	})
}
