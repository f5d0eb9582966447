package inmemdb

import (
	"context"

	"github.com/womanacademy/renluyen/core/calendar"
)

type calendarRepository struct {
	db *calendarTable
}

var _ calendar.Repository = (*calendarRepository)(nil)

func NewCalendarRepository(db *DB) calendar.Repository {
	return &calendarRepository{db: db.calendar}
}

func copyEvent(evt *calendar.Event) calendar.Event {
	cp := *evt
	cp.Attendees = append([]string{}, evt.Attendees...)
	return cp
}

func (repo *calendarRepository) CreateEvent(_ context.Context, evt calendar.Event) (calendar.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stored := copyEvent(&evt)
	repo.db.table[evt.ID] = &stored
	return evt, nil
}

func (repo *calendarRepository) GetEventByID(_ context.Context, id string) (calendar.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if evt, ok := repo.db.table[id]; ok {
		return copyEvent(evt), nil
	}
	return calendar.Event{}, calendar.ErrNotFound
}

func (repo *calendarRepository) FilterEvents(_ context.Context, filter calendar.QueryFilter) ([]calendar.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	inRange := filter.StartDate != "" && filter.EndDate != ""
	events := make([]calendar.Event, 0)
	for _, evt := range repo.db.table {
		// YYYY-MM-DD compares lexically
		if inRange && (evt.StartDate < filter.StartDate || evt.StartDate > filter.EndDate) {
			continue
		}
		events = append(events, copyEvent(evt))
	}
	return events, nil
}

func (repo *calendarRepository) UpdateEvent(_ context.Context, evt calendar.Event) (calendar.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[evt.ID]; !ok {
		return calendar.Event{}, calendar.ErrNotFound
	}
	stored := copyEvent(&evt)
	repo.db.table[evt.ID] = &stored
	return evt, nil
}

func (repo *calendarRepository) DeleteEvent(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return calendar.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
