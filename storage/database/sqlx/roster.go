package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/learningopt/immersion/core/grading"
)

type (
	rosterRow struct {
		ID         string `db:"id"`
		FileName   string `db:"file_name"`
		UploadedAt int64  `db:"uploaded_at"` // unix nanoseconds, UTC
	}

	studentRow struct {
		ID          string      `db:"id"`
		RosterID    string      `db:"roster_id"`
		Position    int         `db:"position"`
		LastName    string      `db:"last_name"`
		FirstName   string      `db:"first_name"`
		MiddleName  string      `db:"middle_name"`
		Strand      string      `db:"strand"`
		Department  string      `db:"department"`
		Grades      string      `db:"grades"` // JSON object
		Performance null.String `db:"performance"`
	}
)

const (
	insertRosterQuery = `INSERT INTO rosters (id, file_name, uploaded_at) VALUES (:id, :file_name, :uploaded_at)`

	insertStudentQuery = `INSERT INTO students
		(id, roster_id, position, last_name, first_name, middle_name, strand, department, grades, performance)
		VALUES (:id, :roster_id, :position, :last_name, :first_name, :middle_name, :strand, :department, :grades, :performance)`

	selectStudentColumns = `id, roster_id, position, last_name, first_name, middle_name, strand, department, grades, performance`
)

type rosterRepository struct {
	db *sqlx.DB
}

var _ grading.Repository = (*rosterRepository)(nil) // interface compliance check

func NewRosterRepository(db *sqlx.DB) grading.Repository {
	return &rosterRepository{db: db}
}

func (repo rosterRepository) toRosterRow(r grading.Roster) rosterRow {
	return rosterRow{
		ID:         r.ID,
		FileName:   r.FileName,
		UploadedAt: r.UploadedAt.UTC().UnixNano(),
	}
}

func (repo rosterRepository) fromRosterRow(r rosterRow) grading.Roster {
	return grading.Roster{
		ID:         r.ID,
		FileName:   r.FileName,
		UploadedAt: time.Unix(0, r.UploadedAt).UTC(),
	}
}

func (repo rosterRepository) toStudentRow(rosterID string, s grading.StudentRecord) (studentRow, error) {
	grades := s.Grades
	if grades == nil {
		grades = map[string]string{}
	}
	b, err := json.Marshal(grades)
	if err != nil {
		return studentRow{}, errors.Wrap(err, "encoding grades")
	}
	return studentRow{
		ID:          s.ID,
		RosterID:    rosterID,
		Position:    s.Position,
		LastName:    s.LastName,
		FirstName:   s.FirstName,
		MiddleName:  s.MiddleName,
		Strand:      s.Strand,
		Department:  s.Department,
		Grades:      string(b),
		Performance: null.NewString(s.Performance, s.Performance != ""),
	}, nil
}

func (repo rosterRepository) fromStudentRow(r studentRow) (grading.StudentRecord, error) {
	grades := make(map[string]string)
	if err := json.Unmarshal([]byte(r.Grades), &grades); err != nil {
		return grading.StudentRecord{}, errors.Wrapf(err, "decoding grades of student %s", r.ID)
	}
	return grading.StudentRecord{
		ID:          r.ID,
		Position:    r.Position,
		LastName:    r.LastName,
		FirstName:   r.FirstName,
		MiddleName:  r.MiddleName,
		Strand:      r.Strand,
		Department:  r.Department,
		Grades:      grades,
		Performance: r.Performance.String,
	}, nil
}

// trapNoRowsErr maps "no rows" err to `notFound`
func (repo rosterRepository) trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func (repo rosterRepository) CreateRoster(ctx context.Context, roster grading.Roster) (grading.Roster, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return grading.Roster{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.NamedExecContext(ctx, insertRosterQuery, repo.toRosterRow(roster)); err != nil {
		return grading.Roster{}, errors.Wrap(err, "inserting roster")
	}
	for i := range roster.Students {
		roster.Students[i].Position = i
		row, err := repo.toStudentRow(roster.ID, roster.Students[i])
		if err != nil {
			return grading.Roster{}, err
		}
		if _, err = tx.NamedExecContext(ctx, insertStudentQuery, row); err != nil {
			return grading.Roster{}, errors.Wrap(err, "inserting student")
		}
	}

	if err = tx.Commit(); err != nil {
		return grading.Roster{}, errors.Wrap(err, "committing roster")
	}
	return roster, nil
}

func (repo rosterRepository) QueryRosters(ctx context.Context) ([]grading.Roster, error) {
	var rows []rosterRow
	q := `SELECT id, file_name, uploaded_at FROM rosters ORDER BY uploaded_at DESC, id`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying rosters")
	}
	rosters := make([]grading.Roster, 0, len(rows))
	for _, r := range rows {
		rosters = append(rosters, repo.fromRosterRow(r))
	}
	return rosters, nil
}

func (repo rosterRepository) GetRoster(ctx context.Context, id string) (grading.Roster, error) {
	var row rosterRow
	q := repo.db.Rebind(`SELECT id, file_name, uploaded_at FROM rosters WHERE id = ?`)
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return grading.Roster{}, repo.trapNoRowsErr(err, grading.ErrNotFound, "getting roster")
	}

	var rows []studentRow
	q = repo.db.Rebind(`SELECT ` + selectStudentColumns + ` FROM students WHERE roster_id = ? ORDER BY position`)
	if err := repo.db.SelectContext(ctx, &rows, q, id); err != nil {
		return grading.Roster{}, errors.Wrap(err, "querying students")
	}

	roster := repo.fromRosterRow(row)
	roster.Students = make([]grading.StudentRecord, 0, len(rows))
	for _, r := range rows {
		s, err := repo.fromStudentRow(r)
		if err != nil {
			return grading.Roster{}, err
		}
		roster.Students = append(roster.Students, s)
	}
	return roster, nil
}

func (repo rosterRepository) UpdateStudent(ctx context.Context, rosterID string, rec grading.StudentRecord) error {
	row, err := repo.toStudentRow(rosterID, rec)
	if err != nil {
		return err
	}
	q := repo.db.Rebind(`UPDATE students SET grades = ?, performance = ? WHERE id = ? AND roster_id = ?`)
	res, err := repo.db.ExecContext(ctx, q, row.Grades, row.Performance, row.ID, row.RosterID)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	if n == 0 {
		return repo.missingStudentErr(ctx, rosterID)
	}
	return nil
}

// missingStudentErr tells a missing roster apart from a missing student.
func (repo rosterRepository) missingStudentErr(ctx context.Context, rosterID string) error {
	var exists bool
	q := repo.db.Rebind(`SELECT EXISTS (SELECT 1 FROM rosters WHERE id = ?)`)
	if err := repo.db.GetContext(ctx, &exists, q, rosterID); err != nil {
		return errors.Wrap(err, "checking roster")
	}
	if !exists {
		return grading.ErrNotFound
	}
	return grading.ErrStudentNotFound
}

func (repo rosterRepository) DeleteRoster(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(`DELETE FROM rosters WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "deleting roster")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting roster")
	}
	if n == 0 {
		return grading.ErrNotFound
	}
	return nil
}

func (repo rosterRepository) DeleteAllRosters(ctx context.Context) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM rosters`); err != nil {
		return errors.Wrap(err, "deleting rosters")
	}
	return nil
}
