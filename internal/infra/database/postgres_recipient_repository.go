package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hr_contract_notifier/internal/domain/recipient"

	"github.com/lib/pq"
)

// Custom errors
var ErrRecipientNotFound = errors.New("notification recipient not found")
var ErrDuplicateRecipientEmail = errors.New("notification recipient with this email already exists")

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

type PostgresRecipientRepository struct {
	db *sql.DB
}

func NewPostgresRecipientRepository(db *sql.DB) *PostgresRecipientRepository {
	return &PostgresRecipientRepository{db: db}
}

func (r *PostgresRecipientRepository) Create(ctx context.Context, rc *recipient.Recipient) error {
	query := `INSERT INTO notification_recipients (email, name, is_active, notification_types, created_by)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, rc.Email, rc.Name, rc.IsActive, rc.NotificationTypes, rc.CreatedBy).Scan(&rc.ID, &rc.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateRecipientEmail
		}
		return fmt.Errorf("error creating recipient: %w", err)
	}
	return nil
}

func (r *PostgresRecipientRepository) GetByEmail(ctx context.Context, email string) (*recipient.Recipient, error) {
	query := `SELECT id, email, name, is_active, notification_types, created_at, created_by
               FROM notification_recipients WHERE lower(email) = lower($1)`
	rc := &recipient.Recipient{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(&rc.ID, &rc.Email, &rc.Name, &rc.IsActive, &rc.NotificationTypes, &rc.CreatedAt, &rc.CreatedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("error getting recipient by email: %w", err)
	}
	return rc, nil
}

func (r *PostgresRecipientRepository) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notification_recipients SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("error updating recipient: %w", err)
	}
	return requireOneRow(res)
}

func (r *PostgresRecipientRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notification_recipients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting recipient: %w", err)
	}
	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return ErrRecipientNotFound
	}
	return nil
}

func (r *PostgresRecipientRepository) ListActive(ctx context.Context) ([]*recipient.Recipient, error) {
	return r.list(ctx, `SELECT id, email, name, is_active, notification_types, created_at, created_by
               FROM notification_recipients WHERE is_active = TRUE ORDER BY email`)
}

func (r *PostgresRecipientRepository) ListAll(ctx context.Context) ([]*recipient.Recipient, error) {
	return r.list(ctx, `SELECT id, email, name, is_active, notification_types, created_at, created_by
               FROM notification_recipients ORDER BY id`)
}

func (r *PostgresRecipientRepository) list(ctx context.Context, query string) ([]*recipient.Recipient, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing recipients: %w", err)
	}
	defer rows.Close()

	recipients := make([]*recipient.Recipient, 0)
	for rows.Next() {
		rc := &recipient.Recipient{}
		if err := rows.Scan(&rc.ID, &rc.Email, &rc.Name, &rc.IsActive, &rc.NotificationTypes, &rc.CreatedAt, &rc.CreatedBy); err != nil {
			return nil, fmt.Errorf("error scanning recipient: %w", err)
		}
		recipients = append(recipients, rc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipients: %w", err)
	}
	return recipients, nil
}
