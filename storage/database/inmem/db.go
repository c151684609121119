package inmemdb

import (
	"sync"

	"github.com/learningopt/immersion/core/grading"
)

type (
	DB struct {
		roster *rosterTable
	}

	rosterTable struct {
		mutex sync.RWMutex
		table map[string]*grading.Roster
	}
)

func Open() *DB {
	return &DB{
		roster: &rosterTable{table: make(map[string]*grading.Roster)},
	}
}
