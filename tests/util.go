package testutil

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/learningopt/immersion/core"
	"github.com/learningopt/immersion/core/grading"
	"github.com/learningopt/immersion/services/logger"
	"github.com/learningopt/immersion/storage/database"
)

// NewConfig returns a test configuration backed by a sqlite file in a temp dir.
func NewConfig(t *testing.T) *core.Config {
	return &core.Config{
		AppName:  "Immersion",
		Env:      "TEST",
		TestMode: true,
		Operator: "tester",
		Database: core.DatabaseConfig{
			Engine: core.EngineSQLite,
			Name:   "immersion",
			Path:   filepath.Join(t.TempDir(), "immersion.db"),
		},
	}
}

// PrepareDB opens a migrated sqlite database that is closed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	conf := NewConfig(t)
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db, conf.Database.Engine); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

// NewLogger returns a logger that discards everything.
func NewLogger() core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), &core.Config{Env: "TEST", TestMode: true})
}

// Row builds a raw spreadsheet row; `cells` holds the score columns.
func Row(last, first, dept string, cells map[string]interface{}) map[string]interface{} {
	row := map[string]interface{}{
		grading.HeaderLastName:   last,
		grading.HeaderFirstName:  first,
		grading.HeaderDepartment: dept,
	}
	for k, v := range cells {
		row[k] = v
	}
	return row
}

// Student builds a StudentRecord with a fresh ID.
func Student(last, dept string, grades map[string]string, performance string) grading.StudentRecord {
	if grades == nil {
		grades = map[string]string{}
	}
	return grading.StudentRecord{
		ID:          uuid.NewString(),
		LastName:    last,
		FirstName:   "Juan",
		Department:  dept,
		Grades:      grades,
		Performance: performance,
	}
}

func CreateRoster(
	t *testing.T,
	repo grading.Repository,
	fileName string,
	students []grading.StudentRecord,
	uploadedAt ...time.Time,
) grading.Roster {
	tstamp := time.Now().UTC()
	if len(uploadedAt) > 0 {
		tstamp = uploadedAt[0].UTC()
	}
	roster, err := repo.CreateRoster(context.Background(), grading.Roster{
		ID:         uuid.NewString(),
		FileName:   fileName,
		UploadedAt: tstamp,
		Students:   students,
	})
	if err != nil {
		t.Fatalf("CreateRoster() failed: %v", err)
	}
	return roster
}
