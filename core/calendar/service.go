package calendar

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core"
)

var (
	// errors
	ErrNotFound = errors.New("event not found")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateEvent(ctx context.Context, evt Event) (Event, error)
		GetEventByID(ctx context.Context, id string) (Event, error)
		// FilterEvents applies the StartDate range of QueryFilter; visibility is left to the Service.
		FilterEvents(ctx context.Context, filter QueryFilter) ([]Event, error)
		UpdateEvent(ctx context.Context, evt Event) (Event, error)
		DeleteEvent(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, createdBy string, ne NewEvent) (Event, error) {
	ne.Title = core.CleanString(ne.Title)
	ne.Type = core.CleanString(ne.Type, true /* lower */)
	if err := core.Validate.Struct(ne); err != nil {
		return Event{}, err
	}

	now := NowFunc().UTC()
	evt := Event{
		ID:          uuid.NewString(),
		Title:       ne.Title,
		Description: core.CleanString(ne.Description),
		StartDate:   ne.StartDate,
		EndDate:     ne.EndDate,
		StartTime:   ne.StartTime,
		EndTime:     ne.EndTime,
		Type:        ne.Type,
		IsAllDay:    ne.IsAllDay,
		Location:    core.CleanString(ne.Location),
		CreatedBy:   createdBy,
		Attendees:   ne.Attendees,
		Reminder:    ne.Reminder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if evt.EndDate == "" {
		evt.EndDate = evt.StartDate
	}
	if evt.Type == "" {
		evt.Type = TypePersonal
	}
	if evt.Attendees == nil {
		evt.Attendees = []string{}
	}
	if err := core.Validate.Struct(evt); err != nil {
		return Event{}, err
	}
	return svc.repo.CreateEvent(ctx, evt)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Event, error) {
	return svc.repo.GetEventByID(ctx, id)
}

// Query returns the events matching filter, sorted by start date & time.
func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	if filter.StartDate != "" && filter.EndDate != "" {
		for _, d := range []string{filter.StartDate, filter.EndDate} {
			if _, err := time.Parse(DateLayout, d); err != nil {
				return nil, core.NewValidationError(err, core.FieldError{Field: "startDate", Error: datetimeText})
			}
		}
	} else {
		filter.StartDate, filter.EndDate = "", ""
	}

	events, err := svc.repo.FilterEvents(ctx, filter)
	if err != nil {
		return nil, err
	}
	if filter.UserID != "" {
		visible := events[:0]
		for _, evt := range events {
			if evt.VisibleTo(filter.UserID) {
				visible = append(visible, evt)
			}
		}
		events = visible
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].StartDate != events[j].StartDate {
			return events[i].StartDate < events[j].StartDate
		}
		return events[i].StartTime < events[j].StartTime
	})
	return events, nil
}

func (svc *Service) Update(ctx context.Context, id string, ue UpdateEvent) (Event, error) {
	evt, err := svc.repo.GetEventByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if err := core.Validate.Struct(ue); err != nil {
		return Event{}, err
	}

	if ue.Title != nil {
		evt.Title = core.CleanString(*ue.Title)
	}
	if ue.Description != nil {
		evt.Description = core.CleanString(*ue.Description)
	}
	if ue.StartDate != nil {
		evt.StartDate = *ue.StartDate
	}
	if ue.EndDate != nil {
		evt.EndDate = *ue.EndDate
	}
	if ue.StartTime != nil {
		evt.StartTime = *ue.StartTime
	}
	if ue.EndTime != nil {
		evt.EndTime = *ue.EndTime
	}
	if ue.Type != nil {
		evt.Type = *ue.Type
	}
	if ue.IsAllDay != nil {
		evt.IsAllDay = *ue.IsAllDay
	}
	if ue.Location != nil {
		evt.Location = core.CleanString(*ue.Location)
	}
	if ue.Attendees != nil {
		evt.Attendees = ue.Attendees
	}
	if ue.Reminder != nil {
		evt.Reminder = ue.Reminder
	}
	evt.UpdatedAt = NowFunc().UTC()

	if err := core.Validate.Struct(evt); err != nil {
		return Event{}, err
	}
	return svc.repo.UpdateEvent(ctx, evt)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteEvent(ctx, id)
}
