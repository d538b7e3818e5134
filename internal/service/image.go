package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"arxivimg/internal/arxiv"
	"arxivimg/internal/model"
	"arxivimg/internal/repository"
	"arxivimg/internal/storage"
)

var (
	ErrIDRequired    = errors.New("id is required")
	ErrNotFound      = errors.New("fetch record not found")
	ErrAuditDisabled = errors.New("fetch audit log is not configured")
)

// FetchResult is the service-level DTO for a served figure.
type FetchResult struct {
	Data        []byte
	ContentType string
	// Source is model.SourceCache when served from the figure cache,
	// model.SourceUpstream when fetched from arXiv.
	Source string
}

// FetchListResult is the service-level DTO for paginated audit records.
type FetchListResult struct {
	Items []model.Fetch `json:"data"`
	Total int           `json:"total"`
}

// FetchDetail is a single audit record plus a presigned download URL for
// the cached figure. DownloadURL is empty when the figure cache is
// disabled or the presign fails.
type FetchDetail struct {
	model.Fetch
	DownloadURL string `json:"download_url,omitempty"`
}

// presignExpiry bounds how long a download link from GetFetch stays valid.
const presignExpiry = 15 * time.Minute

// ImageService defines the use cases for serving arXiv figures and
// browsing the fetch audit log.
type ImageService interface {
	// FetchImage validates the page URL and index, then serves the figure
	// from the cache or upstream. Cache fill and audit recording are best
	// effort and never fail the request.
	FetchImage(ctx context.Context, pageURL string, index int) (*FetchResult, error)

	// ListFetches returns audit records using limit/offset and a total count.
	ListFetches(ctx context.Context, limit, offset int) (*FetchListResult, error)

	// GetFetch returns a single audit record by its ID, with a presigned
	// download URL for the cached figure when the cache is configured.
	GetFetch(ctx context.Context, id string) (*FetchDetail, error)

	// DeleteFetch purges the cached figure (if any) and removes the audit record.
	DeleteFetch(ctx context.Context, id string) error
}

// imageService is a concrete implementation of ImageService.
// cache and repo may be nil; the corresponding feature is then disabled.
type imageService struct {
	fetcher     arxiv.Client
	cache       storage.Storage
	repo        repository.FetchRepository
	allowedHost string
}

// NewImageService constructs a new ImageService.
func NewImageService(fetcher arxiv.Client, cache storage.Storage, repo repository.FetchRepository, allowedHost string) ImageService {
	return &imageService{fetcher: fetcher, cache: cache, repo: repo, allowedHost: allowedHost}
}

func (s *imageService) FetchImage(ctx context.Context, pageURL string, index int) (*FetchResult, error) {
	if err := arxiv.ValidatePageURL(pageURL, s.allowedHost); err != nil {
		return nil, err
	}
	if err := arxiv.ValidateIndex(index); err != nil {
		return nil, err
	}

	key := storage.FigureKey(pageURL, index)

	if s.cache != nil {
		if res, ok := s.cacheLookup(ctx, key); ok {
			s.record(ctx, pageURL, index, int64(len(res.Data)), res.ContentType, model.SourceCache)
			return res, nil
		}
	}

	img, err := s.fetcher.FetchFigure(ctx, pageURL, index)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cacheFill(ctx, key, img)
	}
	s.record(ctx, pageURL, index, int64(len(img.Data)), img.ContentType, model.SourceUpstream)

	return &FetchResult{
		Data:        img.Data,
		ContentType: img.ContentType,
		Source:      model.SourceUpstream,
	}, nil
}

// cacheLookup returns the cached figure when present. Any cache error is
// treated as a miss.
func (s *imageService) cacheLookup(ctx context.Context, key string) (*FetchResult, bool) {
	rc, info, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		logEvent("error", "cache_read_failed", map[string]any{"key": key, "error": err.Error()})
		return nil, false
	}

	ct := info.ContentType
	if ct == "" {
		ct = "image/png"
	}
	return &FetchResult{Data: data, ContentType: ct, Source: model.SourceCache}, true
}

// cacheFill stores a fetched figure. Failure is logged, never returned.
func (s *imageService) cacheFill(ctx context.Context, key string, img *arxiv.Image) {
	_, err := s.cache.Put(ctx, key, bytes.NewReader(img.Data), storage.PutObjectOptions{
		Size:        int64(len(img.Data)),
		ContentType: img.ContentType,
		Metadata: map[string]string{
			"source-url": img.URL,
		},
	})
	if err != nil {
		logEvent("error", "cache_fill_failed", map[string]any{"key": key, "error": err.Error()})
	}
}

// record appends an audit row. Failure is logged, never returned.
func (s *imageService) record(ctx context.Context, pageURL string, index int, size int64, contentType, source string) {
	if s.repo == nil {
		return
	}
	f := &model.Fetch{
		ID:          uuid.New().String(),
		PaperURL:    pageURL,
		ImageIndex:  index,
		ImageURL:    arxiv.FigureURL(pageURL, index),
		Size:        size,
		ContentType: contentType,
		Source:      source,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.repo.Create(ctx, f); err != nil {
		logEvent("error", "fetch_record_failed", map[string]any{"paper_url": pageURL, "error": err.Error()})
	}
}

// ListFetches returns paginated audit records without exposing repository types.
func (s *imageService) ListFetches(ctx context.Context, limit, offset int) (*FetchListResult, error) {
	if s.repo == nil {
		return nil, ErrAuditDisabled
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &FetchListResult{Items: res.Items, Total: res.Total}, nil
}

// GetFetch returns an audit record by ID. When the figure cache is
// configured, the record carries a presigned download URL for the cached
// object; a presign failure degrades to a log line.
func (s *imageService) GetFetch(ctx context.Context, id string) (*FetchDetail, error) {
	if s.repo == nil {
		return nil, ErrAuditDisabled
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	detail := &FetchDetail{Fetch: *f}
	if s.cache != nil {
		key := storage.FigureKey(f.PaperURL, f.ImageIndex)
		u, err := s.cache.PresignGet(ctx, key, presignExpiry)
		if err != nil {
			logEvent("error", "presign_failed", map[string]any{"key": key, "error": err.Error()})
		} else {
			detail.DownloadURL = u
		}
	}
	return detail, nil
}

// DeleteFetch removes the cached object first, then deletes the audit row.
func (s *imageService) DeleteFetch(ctx context.Context, id string) error {
	if s.repo == nil {
		return ErrAuditDisabled
	}
	if id == "" {
		return ErrIDRequired
	}
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		return err
	}
	// Purge the cached figure first; if this fails, keep the row so the
	// cached object stays reachable for a retry.
	if s.cache != nil {
		key := storage.FigureKey(f.PaperURL, f.ImageIndex)
		if err := s.cache.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete cached figure: %w", err)
		}
	}
	return s.repo.Delete(ctx, id)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func logEvent(level, msg string, fields map[string]any) {
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"level": level,
		"msg":   msg,
	}
	for k, v := range fields {
		entry[k] = v
	}
	if b, err := json.Marshal(entry); err == nil {
		log.SetFlags(0)
		log.Println(string(b))
	}
}
