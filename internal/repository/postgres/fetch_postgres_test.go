package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"arxivimg/internal/model"
	"arxivimg/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestFetchPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFetchPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	f := &model.Fetch{
		ID:          "test-uuid",
		PaperURL:    "https://arxiv.org/html/2504.07491v1",
		ImageIndex:  2,
		ImageURL:    "https://arxiv.org/html/2504.07491v1/x2.png",
		Size:        4096,
		ContentType: "image/png",
		Source:      model.SourceUpstream,
		CreatedAt:   now,
	}

	rows := sqlmock.NewRows([]string{"id", "paper_url", "image_index", "image_url", "size", "content_type", "source", "created_at"}).
		AddRow(f.ID, f.PaperURL, f.ImageIndex, f.ImageURL, f.Size, f.ContentType, f.Source, f.CreatedAt)

	mock.ExpectQuery("INSERT INTO fetches").
		WithArgs(f.ID, f.PaperURL, f.ImageIndex, f.ImageURL, f.Size, f.ContentType, f.Source, f.CreatedAt).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, f)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, f.ID, result.ID)
	assert.Equal(t, 2, result.ImageIndex)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFetchPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "paper_url", "image_index", "image_url", "size", "content_type", "source", "created_at"}).
			AddRow("test-id", "https://arxiv.org/html/2504.07491v1", 1, "https://arxiv.org/html/2504.07491v1/x1.png", 100, "image/png", model.SourceCache, time.Now())

		mock.ExpectQuery("SELECT (.+) FROM fetches WHERE id = ?").
			WithArgs("test-id").
			WillReturnRows(rows)

		f, err := repo.FindByID(ctx, "test-id")

		assert.NoError(t, err)
		assert.NotNil(t, f)
		assert.Equal(t, "test-id", f.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM fetches WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		f, err := repo.FindByID(ctx, "missing")

		assert.Error(t, err)
		assert.True(t, IsNoRowsError(err))
		assert.Nil(t, f)
	})
}

func TestFetchPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFetchPostgres(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM fetches").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := sqlmock.NewRows([]string{"id", "paper_url", "image_index", "image_url", "size", "content_type", "source", "created_at"}).
			AddRow("test-id", "https://arxiv.org/html/2504.07491v1", 3, "https://arxiv.org/html/2504.07491v1/x3.png", 100, "image/png", model.SourceUpstream, time.Now())

		mock.ExpectQuery("SELECT (.+) FROM fetches ORDER BY").
			WithArgs(10, 0).
			WillReturnRows(rows)

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10, Offset: 0})

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
	})

	t.Run("count error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM fetches").
			WillReturnError(sql.ErrConnDone)

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10, Offset: 0})

		assert.Error(t, err)
		assert.Nil(t, res)
	})
}

func TestFetchPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFetchPostgres(db)
	ctx := context.Background()

	t.Run("deletes existing row", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM fetches WHERE id = ?").
			WithArgs("test-id").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, "test-id"))
	})

	t.Run("missing row is not an error", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM fetches WHERE id = ?").
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.Delete(ctx, "missing"))
	})
}
