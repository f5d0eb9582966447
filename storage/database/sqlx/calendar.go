package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/womanacademy/renluyen/core/calendar"
)

const calendarSelect = `SELECT id, title, description, to_char(start_date, 'YYYY-MM-DD') AS start_date,
	to_char(end_date, 'YYYY-MM-DD') AS end_date, start_time, end_time, type, is_all_day, location,
	created_by, attendees, reminder, created_at, updated_at FROM calendar_events`

type calendarRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	StartDate   string         `db:"start_date"`
	EndDate     string         `db:"end_date"`
	StartTime   string         `db:"start_time"`
	EndTime     string         `db:"end_time"`
	Type        string         `db:"type"`
	IsAllDay    bool           `db:"is_all_day"`
	Location    string         `db:"location"`
	CreatedBy   string         `db:"created_by"`
	Attendees   pq.StringArray `db:"attendees"`
	Reminder    null.Int       `db:"reminder"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func newCalendarRow(evt calendar.Event) calendarRow {
	attendees := evt.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	return calendarRow{
		ID:          evt.ID,
		Title:       evt.Title,
		Description: evt.Description,
		StartDate:   evt.StartDate,
		EndDate:     evt.EndDate,
		StartTime:   evt.StartTime,
		EndTime:     evt.EndTime,
		Type:        evt.Type,
		IsAllDay:    evt.IsAllDay,
		Location:    evt.Location,
		CreatedBy:   evt.CreatedBy,
		Attendees:   pq.StringArray(attendees),
		Reminder:    null.IntFromPtr(evt.Reminder),
		CreatedAt:   evt.CreatedAt,
		UpdatedAt:   evt.UpdatedAt,
	}
}

func (row calendarRow) toEvent() calendar.Event {
	return calendar.Event{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		StartDate:   row.StartDate,
		EndDate:     row.EndDate,
		StartTime:   row.StartTime,
		EndTime:     row.EndTime,
		Type:        row.Type,
		IsAllDay:    row.IsAllDay,
		Location:    row.Location,
		CreatedBy:   row.CreatedBy,
		Attendees:   []string(row.Attendees),
		Reminder:    row.Reminder.Ptr(),
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

type calendarRepository struct {
	db *sqlx.DB
}

var _ calendar.Repository = (*calendarRepository)(nil)

func NewCalendarRepository(db *sqlx.DB) calendar.Repository {
	return &calendarRepository{db: db}
}

func (repo *calendarRepository) CreateEvent(ctx context.Context, evt calendar.Event) (calendar.Event, error) {
	q := `INSERT INTO calendar_events (id, title, description, start_date, end_date, start_time, end_time, type,
			is_all_day, location, created_by, attendees, reminder, created_at, updated_at)
		VALUES (:id, :title, :description, :start_date, :end_date, :start_time, :end_time, :type,
			:is_all_day, :location, :created_by, :attendees, :reminder, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, newCalendarRow(evt)); err != nil {
		return calendar.Event{}, errors.Wrap(err, "inserting event")
	}
	return evt, nil
}

func (repo *calendarRepository) GetEventByID(ctx context.Context, id string) (calendar.Event, error) {
	var row calendarRow
	if err := repo.db.GetContext(ctx, &row, calendarSelect+` WHERE id::text = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return calendar.Event{}, calendar.ErrNotFound
		}
		return calendar.Event{}, errors.Wrap(err, "selecting event")
	}
	return row.toEvent(), nil
}

func (repo *calendarRepository) FilterEvents(ctx context.Context, filter calendar.QueryFilter) ([]calendar.Event, error) {
	var w where
	if filter.StartDate != "" && filter.EndDate != "" {
		w.add("start_date >= $%d::date", filter.StartDate)
		w.add("start_date <= $%d::date", filter.EndDate)
	}

	var rows []calendarRow
	if err := repo.db.SelectContext(ctx, &rows, calendarSelect+w.String()+` ORDER BY start_date, start_time`, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting events")
	}
	events := make([]calendar.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.toEvent())
	}
	return events, nil
}

func (repo *calendarRepository) UpdateEvent(ctx context.Context, evt calendar.Event) (calendar.Event, error) {
	q := `UPDATE calendar_events SET title = :title, description = :description, start_date = :start_date,
			end_date = :end_date, start_time = :start_time, end_time = :end_time, type = :type,
			is_all_day = :is_all_day, location = :location, attendees = :attendees, reminder = :reminder,
			updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newCalendarRow(evt))
	if err != nil {
		return calendar.Event{}, errors.Wrap(err, "updating event")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return calendar.Event{}, calendar.ErrNotFound
	}
	return evt, nil
}

func (repo *calendarRepository) DeleteEvent(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE id::text = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting event")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return calendar.ErrNotFound
	}
	return nil
}
