package postgres

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pilketos/internal/model"
	"pilketos/internal/repository"
)

var candidateCols = []string{
	"id", "candidate_number", "chairman_name", "vice_chairman_name",
	"chairman_photo", "vice_chairman_photo", "vision", "mission", "created_at", "updated_at",
}

func TestCandidatePostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCandidatePostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	c := &model.Candidate{
		ID:               "cand-1",
		Number:           1,
		ChairmanName:     "Budi",
		ViceChairmanName: "Sari",
		Vision:           "Sekolah hijau",
		CreatedAt:        now,
	}

	t.Run("success", func(t *testing.T) {
		rows := sqlmock.NewRows(candidateCols).
			AddRow(c.ID, c.Number, c.ChairmanName, c.ViceChairmanName, "", "", c.Vision, "", now, now)

		mock.ExpectQuery("INSERT INTO candidates").
			WithArgs(c.ID, c.Number, c.ChairmanName, c.ViceChairmanName, "", "", c.Vision, "", now).
			WillReturnRows(rows)

		out, err := repo.Create(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, "cand-1", out.ID)
		assert.Equal(t, 1, out.Number)
		assert.Equal(t, now, out.UpdatedAt)
	})

	t.Run("duplicate number", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO candidates").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "candidates_candidate_number_key"})

		out, err := repo.Create(ctx, c)
		assert.Nil(t, out)
		assert.ErrorIs(t, err, repository.ErrUniqueViolation)
		assert.Contains(t, err.Error(), "candidates_candidate_number_key")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidatePostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCandidatePostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("success", func(t *testing.T) {
		c := &model.Candidate{ID: "cand-1", Number: 2, ChairmanName: "Budi", ViceChairmanName: "Sari"}
		mock.ExpectQuery(`UPDATE candidates\s+SET candidate_number = \$2, chairman_name = \$3, vice_chairman_name = \$4,\s+vision = \$5, mission = \$6, updated_at = now\(\)`).
			WithArgs("cand-1", 2, "Budi", "Sari", "", "").
			WillReturnRows(sqlmock.NewRows(candidateCols).
				AddRow("cand-1", 2, "Budi", "Sari", "/candidates/cand-1/photos/chairman", "", "", "", now, now))

		out, err := repo.Update(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, 2, out.Number)
		assert.Equal(t, "/candidates/cand-1/photos/chairman", out.ChairmanPhoto)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("UPDATE candidates").WillReturnError(sql.ErrNoRows)

		out, err := repo.Update(ctx, &model.Candidate{ID: "missing"})
		assert.Nil(t, out)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidatePostgres_SetPhoto(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCandidatePostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("chairman column only", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE candidates SET chairman_photo = \$2, updated_at = now\(\)\s+WHERE id = \$1`).
			WithArgs("cand-1", "/candidates/cand-1/photos/chairman").
			WillReturnRows(sqlmock.NewRows(candidateCols).
				AddRow("cand-1", 1, "Budi", "Sari", "/candidates/cand-1/photos/chairman", "/candidates/cand-1/photos/vice_chairman", "", "", now, now))

		out, err := repo.SetPhoto(ctx, "cand-1", model.SlotChairman, "/candidates/cand-1/photos/chairman")
		require.NoError(t, err)
		assert.Equal(t, "/candidates/cand-1/photos/vice_chairman", out.ViceChairmanPhoto)
	})

	t.Run("vice chairman column only", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE candidates SET vice_chairman_photo = \$2, updated_at = now\(\)\s+WHERE id = \$1`).
			WithArgs("cand-1", "/candidates/cand-1/photos/vice_chairman").
			WillReturnRows(sqlmock.NewRows(candidateCols).
				AddRow("cand-1", 1, "Budi", "Sari", "", "/candidates/cand-1/photos/vice_chairman", "", "", now, now))

		_, err := repo.SetPhoto(ctx, "cand-1", model.SlotViceChairman, "/candidates/cand-1/photos/vice_chairman")
		require.NoError(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("UPDATE candidates SET chairman_photo").WillReturnError(sql.ErrNoRows)

		out, err := repo.SetPhoto(ctx, "missing", model.SlotChairman, "/x")
		assert.Nil(t, out)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("unknown slot", func(t *testing.T) {
		_, err := repo.SetPhoto(ctx, "cand-1", model.PhotoSlot("treasurer"), "/x")
		assert.ErrorContains(t, err, "unknown photo slot")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetPhotoQueriesWriteOneColumn(t *testing.T) {
	for slot, q := range setPhotoQueries {
		set := q[strings.Index(q, "SET"):strings.Index(q, "WHERE")]
		assert.Equal(t, 1, strings.Count(set, "_photo"), "slot %s", slot)
		assert.Contains(t, set, string(slot)+"_photo = $2")
	}
}

func TestCandidatePostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCandidatePostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM candidates WHERE id = ?").
			WithArgs("cand-1").
			WillReturnRows(sqlmock.NewRows(candidateCols).
				AddRow("cand-1", 1, "Budi", "Sari", "/p1", "/p2", "v", "m", time.Now(), time.Now()))

		c, err := repo.FindByID(ctx, "cand-1")
		require.NoError(t, err)
		assert.Equal(t, "/p1", c.ChairmanPhoto)
		assert.Equal(t, "m", c.Mission)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM candidates WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		c, err := repo.FindByID(ctx, "missing")
		assert.Nil(t, c)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestCandidatePostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCandidatePostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM candidates ORDER BY candidate_number").
		WillReturnRows(sqlmock.NewRows(candidateCols).
			AddRow("a", 1, "A1", "A2", "", "", "", "", time.Now(), time.Now()).
			AddRow("b", 2, "B1", "B2", "", "", "", "", time.Now(), time.Now()))

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].Number)
	assert.Equal(t, 2, items[1].Number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidatePostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCandidatePostgres(db)
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM candidates WHERE id = ?").
			WithArgs("cand-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, "cand-1"))
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM candidates WHERE id = ?").
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, "missing"), sql.ErrNoRows)
	})

	t.Run("has votes", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM candidates WHERE id = ?").
			WithArgs("voted").
			WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "votes_candidate_id_fkey"})

		assert.ErrorIs(t, repo.Delete(ctx, "voted"), repository.ErrForeignKeyViolation)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
