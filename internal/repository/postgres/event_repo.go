package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"passin/internal/domain"
)

const eventColumns = `id, title, slug, details, maximum_attendees, age_restricted, date_start, date_end, creator_id, created_at, updated_at`

type eventRepository struct {
	DB DBTX
}

func NewEventRepository(db DBTX) domain.EventRepository {
	return &eventRepository{DB: db}
}

func scanEvent(s scanner) (*domain.Event, error) {
	e := &domain.Event{}
	var details sql.NullString
	var maxAttendees sql.NullInt64
	if err := s.Scan(&e.ID, &e.Title, &e.Slug, &details, &maxAttendees, &e.AgeRestricted,
		&e.DateStart, &e.DateEnd, &e.CreatorID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if details.Valid {
		e.Details = &details.String
	}
	if maxAttendees.Valid {
		n := int(maxAttendees.Int64)
		e.MaximumAttendees = &n
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, slug, details, maximum_attendees, age_restricted, date_start, date_end, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, e.Title, e.Slug, nullString(e.Details), nullInt(e.MaximumAttendees),
		e.AgeRestricted, e.DateStart, e.DateEnd, e.CreatorID, e.CreatedAt, e.UpdatedAt).Scan(&e.ID)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateSlug
	}
	return err
}

func (r *eventRepository) getOne(ctx context.Context, query string, arg any) (*domain.Event, error) {
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	return e, err
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return r.getOne(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	return r.getOne(ctx, `SELECT `+eventColumns+` FROM events WHERE slug = $1`, slug)
}

func (r *eventRepository) GetBySlugForUpdate(ctx context.Context, slug string) (*domain.Event, error) {
	return r.getOne(ctx, `SELECT `+eventColumns+` FROM events WHERE slug = $1 FOR UPDATE`, slug)
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, err
	}
	events, err := r.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY date_start, id LIMIT $1 OFFSET $2`,
		params.Limit(), params.Offset())
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListEndedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Event, error) {
	return r.queryEvents(ctx, `SELECT `+eventColumns+` FROM events WHERE date_end < $1 ORDER BY date_end`, cutoff)
}

func (r *eventRepository) CountByCreator(ctx context.Context, creatorID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE creator_id = $1`, creatorID).Scan(&n)
	return n, err
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $1, slug = $2, details = $3, maximum_attendees = $4, age_restricted = $5,
			date_start = $6, date_end = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := r.DB.ExecContext(ctx, query, e.Title, e.Slug, nullString(e.Details), nullInt(e.MaximumAttendees),
		e.AgeRestricted, e.DateStart, e.DateEnd, e.UpdatedAt, e.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSlug
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}
