package grading

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/learningopt/immersion/core"
)

var (
	// errors
	ErrNotFound        = errors.New("roster not found")
	ErrStudentNotFound = errors.New("student not found")
	ErrUnknownView     = errors.New("unknown view")
)

type (
	Repository interface {
		CreateRoster(ctx context.Context, roster Roster) (Roster, error)
		// QueryRosters returns every roster without its students, newest first.
		QueryRosters(ctx context.Context) ([]Roster, error)
		// GetRoster returns the roster with its students ordered by position.
		GetRoster(ctx context.Context, id string) (Roster, error)
		// UpdateStudent replaces the grades and performance of one student.
		UpdateStudent(ctx context.Context, rosterID string, rec StudentRecord) error
		DeleteRoster(ctx context.Context, id string) error
		DeleteAllRosters(ctx context.Context) error
	}

	Service struct {
		repo    Repository
		catalog *Catalog
		logger  core.Logger

		mu sync.Mutex // serializes row mutations
	}
)

var nowFunc = time.Now // mockable

func NewService(repo Repository, catalog *Catalog, logger core.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
	}
}

// Catalog returns the views the service grades with.
func (svc *Service) Catalog() *Catalog {
	return svc.catalog
}

// Import normalizes nr.Rows and stores them as a new roster.
// nr is expected to be validated by the caller.
func (svc *Service) Import(ctx context.Context, nr NewRoster) (Roster, []IngestIssue, error) {
	students, issues := svc.catalog.NormalizeRows(nr.Rows)
	roster := Roster{
		ID:         uuid.NewString(),
		FileName:   core.CleanString(nr.FileName),
		UploadedAt: nowFunc().UTC(),
		Students:   students,
	}
	roster, err := svc.repo.CreateRoster(ctx, roster)
	if err != nil {
		return Roster{}, nil, pkgerrors.Wrap(err, "creating roster")
	}
	for _, is := range issues {
		svc.logger.Warn(fmt.Sprintf("import %q: dropped %s=%q on row %d", roster.FileName, is.Header, is.Value, is.Row))
	}
	svc.logger.Info(fmt.Sprintf("imported %q: %d students", roster.FileName, len(roster.Students)))
	return roster, issues, nil
}

func (svc *Service) List(ctx context.Context) ([]Roster, error) {
	return svc.repo.QueryRosters(ctx)
}

func (svc *Service) Get(ctx context.Context, id string) (Roster, error) {
	return svc.repo.GetRoster(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteRoster(ctx, id)
}

// Clear removes every roster.
func (svc *Service) Clear(ctx context.Context) error {
	return svc.repo.DeleteAllRosters(ctx)
}

// ViewRows returns the roster's students visible in `viewName` with their computed results.
func (svc *Service) ViewRows(ctx context.Context, rosterID, viewName string) ([]ViewRow, error) {
	view, err := svc.catalog.View(viewName)
	if err != nil {
		return nil, err
	}
	roster, err := svc.repo.GetRoster(ctx, rosterID)
	if err != nil {
		return nil, err
	}
	visible := FilterByView(roster.Students, view)
	rows := make([]ViewRow, 0, len(visible))
	for _, rec := range visible {
		rows = append(rows, ViewRow{Record: rec, Result: ComputeRecord(rec, view)})
	}
	return rows, nil
}

// SetGrade applies a score edit to a student visible in the view.
// A rejected value is not an error: the current row is returned with accepted=false.
func (svc *Service) SetGrade(ctx context.Context, rosterID, viewName, rowID, code, raw string) (ViewRow, bool, error) {
	return svc.mutate(ctx, rosterID, viewName, rowID, func(rec *StudentRecord, view *View) bool {
		return rec.SetGrade(view, code, raw)
	})
}

// SetPerformance applies an appraisal edit to a student visible in the view.
// A rejected value is not an error: the current row is returned with accepted=false.
func (svc *Service) SetPerformance(ctx context.Context, rosterID, viewName, rowID, raw string) (ViewRow, bool, error) {
	return svc.mutate(ctx, rosterID, viewName, rowID, func(rec *StudentRecord, _ *View) bool {
		return rec.SetPerformance(raw)
	})
}

func (svc *Service) mutate(
	ctx context.Context,
	rosterID, viewName, rowID string,
	apply func(rec *StudentRecord, view *View) bool,
) (ViewRow, bool, error) {
	view, err := svc.catalog.View(viewName)
	if err != nil {
		return ViewRow{}, false, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	roster, err := svc.repo.GetRoster(ctx, rosterID)
	if err != nil {
		return ViewRow{}, false, err
	}

	var rec StudentRecord
	var found bool
	for _, r := range roster.Students {
		if r.ID == rowID && view.Admits(r.Department) {
			rec, found = r.Clone(), true
			break
		}
	}
	if !found {
		return ViewRow{}, false, ErrStudentNotFound
	}

	if !apply(&rec, view) {
		return ViewRow{Record: rec, Result: ComputeRecord(rec, view)}, false, nil
	}
	if err = svc.repo.UpdateStudent(ctx, rosterID, rec); err != nil {
		return ViewRow{}, false, pkgerrors.Wrap(err, "updating student")
	}
	svc.logger.Debug(fmt.Sprintf("roster %s: updated student %s (%s view)", rosterID, rec.ID, view.Name))
	return ViewRow{Record: rec, Result: ComputeRecord(rec, view)}, true, nil
}
