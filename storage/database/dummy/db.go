package dummydb

import (
	"sync"

	"github.com/trezcool/agora/core/activity"
	"github.com/trezcool/agora/core/category"
	"github.com/trezcool/agora/core/user"
)

// DB is an in-memory store with the same relational behavior as the real
// schema (uniqueness, proposer cascade, category SET NULL). A single lock
// guards all tables so cross-table cascades stay consistent.
type DB struct {
	sync.RWMutex

	users      map[string]*user.User
	categories map[string]*category.Category
	activities map[string]*activity.Activity
	attendees  map[string]map[string]bool // activityID -> set of userIDs
}

func Open() *DB {
	return &DB{
		users:      make(map[string]*user.User),
		categories: make(map[string]*category.Category),
		activities: make(map[string]*activity.Activity),
		attendees:  make(map[string]map[string]bool),
	}
}
