package inmemdb

import (
	"context"
	"sort"

	"github.com/learningopt/immersion/core/grading"
)

type rosterRepository struct {
	db *rosterTable
}

var _ grading.Repository = (*rosterRepository)(nil)

func NewRosterRepository(db *DB) grading.Repository {
	return &rosterRepository{db: db.roster}
}

func copyRoster(r grading.Roster, withStudents bool) grading.Roster {
	students := r.Students
	r.Students = nil
	if withStudents {
		r.Students = make([]grading.StudentRecord, 0, len(students))
		for _, s := range students {
			r.Students = append(r.Students, s.Clone())
		}
	}
	return r
}

func (repo *rosterRepository) CreateRoster(_ context.Context, roster grading.Roster) (grading.Roster, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stored := copyRoster(roster, true)
	for i := range stored.Students {
		stored.Students[i].Position = i
	}
	repo.db.table[stored.ID] = &stored
	return copyRoster(stored, true), nil
}

func (repo *rosterRepository) QueryRosters(_ context.Context) ([]grading.Roster, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rosters := make([]grading.Roster, 0, len(repo.db.table))
	for _, r := range repo.db.table {
		rosters = append(rosters, copyRoster(*r, false))
	}
	sort.Slice(rosters, func(i, j int) bool {
		if rosters[i].UploadedAt.Equal(rosters[j].UploadedAt) {
			return rosters[i].ID < rosters[j].ID
		}
		return rosters[i].UploadedAt.After(rosters[j].UploadedAt)
	})
	return rosters, nil
}

func (repo *rosterRepository) GetRoster(_ context.Context, id string) (grading.Roster, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if r, ok := repo.db.table[id]; ok {
		return copyRoster(*r, true), nil
	}
	return grading.Roster{}, grading.ErrNotFound
}

func (repo *rosterRepository) UpdateStudent(_ context.Context, rosterID string, rec grading.StudentRecord) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	r, ok := repo.db.table[rosterID]
	if !ok {
		return grading.ErrNotFound
	}
	// only grades and performance are editable
	for i := range r.Students {
		if r.Students[i].ID == rec.ID {
			r.Students[i].Grades = rec.Clone().Grades
			r.Students[i].Performance = rec.Performance
			return nil
		}
	}
	return grading.ErrStudentNotFound
}

func (repo *rosterRepository) DeleteRoster(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return grading.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func (repo *rosterRepository) DeleteAllRosters(_ context.Context) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.table = make(map[string]*grading.Roster)
	return nil
}
