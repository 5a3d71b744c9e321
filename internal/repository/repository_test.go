package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repositories(t *testing.T) map[string]TransformRepository {
	t.Helper()
	sqlite, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "db", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]TransformRepository{
		"memory": NewMemoryTransformRepository(),
		"sqlite": sqlite,
	}
}

func TestTransformRepository(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

			first := &TransformRecord{ID: "r1", SessionID: "s1", Status: StatusSucceeded, Color: "#112233",
				Instruction: "render", ImageCount: 2, ResultShape: "shape:1", StartedAt: start, DurationMS: 1200}
			second := &TransformRecord{ID: "r2", SessionID: "s1", Status: StatusFailed,
				ErrorMessage: "no image", StartedAt: start.Add(time.Minute)}
			other := &TransformRecord{ID: "r3", SessionID: "s2", Status: StatusRejected, StartedAt: start}

			for _, rec := range []*TransformRecord{second, first, other} {
				require.NoError(t, repo.Save(ctx, rec))
			}

			got, err := repo.Get(ctx, "r1")
			require.NoError(t, err)
			assert.Equal(t, first.Color, got.Color)
			assert.Equal(t, first.ImageCount, got.ImageCount)
			assert.Equal(t, first.ResultShape, got.ResultShape)
			assert.True(t, first.StartedAt.Equal(got.StartedAt))

			list, err := repo.ListBySession(ctx, "s1")
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "r1", list[0].ID)
			assert.Equal(t, "r2", list[1].ID)

			// Save replaces by id
			second.Status = StatusSucceeded
			second.ErrorMessage = ""
			require.NoError(t, repo.Save(ctx, second))
			got, err = repo.Get(ctx, "r2")
			require.NoError(t, err)
			assert.Equal(t, StatusSucceeded, got.Status)
			assert.Empty(t, got.ErrorMessage)

			empty, err := repo.ListBySession(ctx, "nobody")
			require.NoError(t, err)
			assert.Empty(t, empty)

			_, err = repo.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrRecordNotFound)

			assert.ErrorIs(t, repo.Save(ctx, &TransformRecord{ID: "x"}), ErrInvalidRecord)
		})
	}
}

func TestMemoryTransformRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryTransformRepository()
	rec := &TransformRecord{ID: "r1", SessionID: "s1", Status: StatusFailed}
	require.NoError(t, repo.Save(context.Background(), rec))
	rec.Status = StatusSucceeded

	got, err := repo.Get(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
}
