package postgres

import (
	"context"
	"database/sql"
	"errors"

	"passin/internal/domain"
)

const checkInColumns = `id, event_id, user_id, checked_in, created_at, updated_at`

type checkInRepository struct {
	DB DBTX
}

func NewCheckInRepository(db DBTX) domain.CheckInRepository {
	return &checkInRepository{DB: db}
}

func scanCheckIn(s scanner) (*domain.CheckIn, error) {
	c := &domain.CheckIn{}
	err := s.Scan(&c.ID, &c.EventID, &c.UserID, &c.CheckedIn, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *checkInRepository) Create(ctx context.Context, c *domain.CheckIn) error {
	query := `
		INSERT INTO check_ins (event_id, user_id, checked_in, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, c.EventID, c.UserID, c.CheckedIn, c.CreatedAt, c.UpdatedAt).Scan(&c.ID)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyRegistered
	}
	return err
}

func (r *checkInRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.CheckIn, error) {
	query := `SELECT ` + checkInColumns + ` FROM check_ins WHERE event_id = $1 AND user_id = $2`
	c, err := scanCheckIn(r.DB.QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotRegistered
		}
		return nil, err
	}
	return c, nil
}

func (r *checkInRepository) CountByEvent(ctx context.Context, eventID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM check_ins WHERE event_id = $1`, eventID).Scan(&n)
	return n, err
}

func (r *checkInRepository) ListAttendees(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	query := `
		SELECT u.id, u.first_name, u.last_name, u.email, u.birth_date, c.checked_in
		FROM check_ins c
		JOIN users u ON u.id = c.user_id
		WHERE c.event_id = $1
		ORDER BY c.created_at, u.id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	attendees := make([]*domain.Attendee, 0)
	for rows.Next() {
		a := &domain.Attendee{}
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.BirthDate, &a.CheckedIn); err != nil {
			return nil, err
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

func (r *checkInRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.CheckIn, error) {
	query := `SELECT ` + checkInColumns + ` FROM check_ins WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	checkIns := make([]*domain.CheckIn, 0)
	for rows.Next() {
		c, err := scanCheckIn(rows)
		if err != nil {
			return nil, err
		}
		checkIns = append(checkIns, c)
	}
	return checkIns, rows.Err()
}

// MarkCheckedIn only updates a record that is not yet checked in, so two concurrent
// check-ins cannot both succeed.
func (r *checkInRepository) MarkCheckedIn(ctx context.Context, eventID, userID string) (*domain.CheckIn, error) {
	query := `
		UPDATE check_ins SET checked_in = TRUE, updated_at = NOW()
		WHERE event_id = $1 AND user_id = $2 AND checked_in = FALSE
		RETURNING ` + checkInColumns
	c, err := scanCheckIn(r.DB.QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAlreadyCheckedIn
		}
		return nil, err
	}
	return c, nil
}

func (r *checkInRepository) DeleteByEvent(ctx context.Context, eventID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM check_ins WHERE event_id = $1`, eventID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *checkInRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM check_ins WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
