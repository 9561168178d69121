package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/agora/core/activity"
	"github.com/trezcool/agora/core/user"
)

type activityRepository struct {
	db *DB
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *DB) activity.Repository {
	return &activityRepository{db: db}
}

func (repo *activityRepository) CreateActivity(_ context.Context, act activity.Activity) (activity.Activity, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	act.ID = uuid.New().String()
	repo.db.activities[act.ID] = &act
	return act, nil
}

func (repo *activityRepository) GetActivity(_ context.Context, id string) (activity.Activity, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if act, ok := repo.db.activities[id]; ok {
		return *act, nil
	}
	return activity.Activity{}, activity.ErrNotFound
}

func (repo *activityRepository) QueryUpcomingActivities(_ context.Context, filter activity.UpcomingFilter) ([]activity.Activity, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var acts []activity.Activity
	for _, act := range repo.db.activities {
		if act.StartTime.Before(filter.Now) {
			continue
		}
		if filter.CategoryID != "" && act.CategoryID != filter.CategoryID {
			continue
		}
		if filter.ProposerID != "" && act.ProposerID != filter.ProposerID {
			continue
		}
		if filter.AttendeeID != "" && !repo.db.attendees[act.ID][filter.AttendeeID] {
			continue
		}
		acts = append(acts, *act)
	}
	sort.Slice(acts, func(i, j int) bool { return acts[i].StartTime.Before(acts[j].StartTime) })
	return acts, nil
}

func (repo *activityRepository) AddAttendee(_ context.Context, activityID, userID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	set, ok := repo.db.attendees[activityID]
	if !ok {
		set = make(map[string]bool)
		repo.db.attendees[activityID] = set
	}
	set[userID] = true
	return nil
}

func (repo *activityRepository) RemoveAttendee(_ context.Context, activityID, userID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.attendees[activityID], userID)
	return nil
}

func (repo *activityRepository) QueryAttendees(_ context.Context, activityID string) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := make([]user.User, 0, len(repo.db.attendees[activityID]))
	for userID := range repo.db.attendees[activityID] {
		if usr, ok := repo.db.users[userID]; ok {
			users = append(users, *usr)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (repo *activityRepository) IsAttending(_ context.Context, activityID, userID string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	return repo.db.attendees[activityID][userID], nil
}
