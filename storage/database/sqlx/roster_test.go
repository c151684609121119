package sqlxrepos_test

import (
	"testing"

	"github.com/learningopt/immersion/core/grading"
	"github.com/learningopt/immersion/storage/database/sqlx"
	"github.com/learningopt/immersion/tests"
)

func TestRosterRepository(t *testing.T) {
	testutil.RunRosterRepositoryTests(t, func(t *testing.T) grading.Repository {
		return sqlxrepos.NewRosterRepository(testutil.PrepareDB(t))
	})
}
