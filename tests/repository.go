package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learningopt/immersion/core/grading"
)

// RunRosterRepositoryTests checks the behaviour every grading.Repository must share.
// newRepo must return an empty repository.
func RunRosterRepositoryTests(t *testing.T, newRepo func(t *testing.T) grading.Repository) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("create and get", func(t *testing.T) {
		repo := newRepo(t)
		students := []grading.StudentRecord{
			Student("Dela Cruz", "IT", map[string]string{"TECH": "46", "WI": ""}, "4.5"),
			Student("Reyes", "ACCTG", nil, ""),
		}
		students[1].MiddleName = "Santos"
		students[1].Strand = "ABM"
		created := CreateRoster(t, repo, "batch.xlsx", students, now)

		got, err := repo.GetRoster(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "batch.xlsx", got.FileName)
		assert.True(t, now.Equal(got.UploadedAt))
		require.Len(t, got.Students, 2)
		assert.Equal(t, 0, got.Students[0].Position)
		assert.Equal(t, 1, got.Students[1].Position)
		assert.Equal(t, map[string]string{"TECH": "46", "WI": ""}, got.Students[0].Grades)
		assert.Equal(t, "4.5", got.Students[0].Performance)
		assert.Equal(t, "Santos", got.Students[1].MiddleName)
		assert.Equal(t, "ABM", got.Students[1].Strand)
		assert.Equal(t, map[string]string{}, got.Students[1].Grades)
		assert.Equal(t, "", got.Students[1].Performance)

		// returned rosters are copies
		got.Students[0].Grades["TECH"] = "0"
		again, err := repo.GetRoster(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "46", again.Students[0].Grades["TECH"])
	})

	t.Run("get unknown", func(t *testing.T) {
		_, err := newRepo(t).GetRoster(ctx, "nope")
		assert.Equal(t, grading.ErrNotFound, err)
	})

	t.Run("query newest first", func(t *testing.T) {
		repo := newRepo(t)
		first := CreateRoster(t, repo, "first.xlsx", []grading.StudentRecord{Student("A", "IT", nil, "")}, now.Add(-2*time.Hour))
		third := CreateRoster(t, repo, "third.xlsx", nil, now)
		second := CreateRoster(t, repo, "second.xlsx", nil, now.Add(-time.Hour))

		rosters, err := repo.QueryRosters(ctx)
		require.NoError(t, err)
		ids := make([]string, 0, len(rosters))
		for _, r := range rosters {
			ids = append(ids, r.ID)
			assert.Empty(t, r.Students)
		}
		assert.Equal(t, []string{third.ID, second.ID, first.ID}, ids)
	})

	t.Run("update student", func(t *testing.T) {
		repo := newRepo(t)
		rec := Student("Dela Cruz", "IT", map[string]string{"TECH": "40"}, "3")
		roster := CreateRoster(t, repo, "batch.xlsx", []grading.StudentRecord{rec})

		rec.Grades = map[string]string{"TECH": "46", "DS": "10"}
		rec.Performance = ""
		rec.LastName = "ignored"
		require.NoError(t, repo.UpdateStudent(ctx, roster.ID, rec))

		got, err := repo.GetRoster(ctx, roster.ID)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"TECH": "46", "DS": "10"}, got.Students[0].Grades)
		assert.Equal(t, "", got.Students[0].Performance)
		assert.Equal(t, "Dela Cruz", got.Students[0].LastName)

		rec.ID = "nope"
		assert.Equal(t, grading.ErrStudentNotFound, repo.UpdateStudent(ctx, roster.ID, rec))
		assert.Equal(t, grading.ErrNotFound, repo.UpdateStudent(ctx, "nope", rec))
	})

	t.Run("delete", func(t *testing.T) {
		repo := newRepo(t)
		roster := CreateRoster(t, repo, "batch.xlsx", []grading.StudentRecord{Student("A", "IT", nil, "")})
		other := CreateRoster(t, repo, "other.xlsx", nil)

		require.NoError(t, repo.DeleteRoster(ctx, roster.ID))
		assert.Equal(t, grading.ErrNotFound, repo.DeleteRoster(ctx, roster.ID))
		_, err := repo.GetRoster(ctx, roster.ID)
		assert.Equal(t, grading.ErrNotFound, err)
		_, err = repo.GetRoster(ctx, other.ID)
		assert.NoError(t, err)

		require.NoError(t, repo.DeleteAllRosters(ctx))
		rosters, err := repo.QueryRosters(ctx)
		require.NoError(t, err)
		assert.Empty(t, rosters)
	})
}
