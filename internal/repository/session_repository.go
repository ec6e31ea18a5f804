package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"smartcampus/portal/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

const sessionColumns = `id, user_id, device_id, device_name, login_method, refresh_token_hash,
	ip_address, user_agent, user_snapshot, card_snapshot, created_at, last_seen_at, expires_at`

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create inserts a session, replacing any existing one for the same device.
func (r *SessionRepository) Create(ctx context.Context, session models.Session) error {
	userJSON, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("encode user snapshot: %w", err)
	}
	var cardJSON []byte
	if session.Card != nil {
		if cardJSON, err = json.Marshal(session.Card); err != nil {
			return fmt.Errorf("encode card snapshot: %w", err)
		}
	}

	const query = `
		INSERT INTO portal_sessions (
			id, user_id, device_id, device_name, login_method, refresh_token_hash,
			ip_address, user_agent, user_snapshot, card_snapshot, created_at, last_seen_at, expires_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW(), $11
		)
		ON CONFLICT (user_id, device_id)
		DO UPDATE SET
			id = EXCLUDED.id,
			device_name = EXCLUDED.device_name,
			login_method = EXCLUDED.login_method,
			refresh_token_hash = EXCLUDED.refresh_token_hash,
			ip_address = EXCLUDED.ip_address,
			user_agent = EXCLUDED.user_agent,
			user_snapshot = EXCLUDED.user_snapshot,
			card_snapshot = EXCLUDED.card_snapshot,
			last_seen_at = NOW(),
			expires_at = EXCLUDED.expires_at
	`

	_, err = r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.DeviceID,
		session.DeviceName,
		string(session.Method),
		session.RefreshTokenHash,
		session.IPAddress,
		session.UserAgent,
		userJSON,
		cardJSON,
		session.ExpiresAt,
	)
	return err
}

func (r *SessionRepository) CountByUser(ctx context.Context, userID int) (int, error) {
	const query = `SELECT COUNT(*) FROM portal_sessions WHERE user_id = $1`
	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SessionRepository) DeleteOldestSessions(ctx context.Context, userID int, keepLatest int) error {
	const query = `
		DELETE FROM portal_sessions
		WHERE id IN (
			SELECT id FROM portal_sessions
			WHERE user_id = $1
			ORDER BY last_seen_at DESC, created_at DESC
			OFFSET $2
		)
	`
	_, err := r.pool.Exec(ctx, query, userID, keepLatest)
	return err
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM portal_sessions WHERE id = $1`
	return scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *SessionRepository) FindByRefreshHash(ctx context.Context, userID int, refreshHash []byte) (models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM portal_sessions WHERE user_id = $1 AND refresh_token_hash = $2`
	return scanOne(r.pool.QueryRow(ctx, query, userID, refreshHash))
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID int) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM portal_sessions WHERE user_id = $1 ORDER BY last_seen_at DESC, created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (r *SessionRepository) DeleteByID(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM portal_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) DeleteByDevice(ctx context.Context, userID int, deviceID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM portal_sessions WHERE user_id = $1 AND device_id = $2`, userID, deviceID)
	return err
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM portal_sessions WHERE expires_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *SessionRepository) Touch(ctx context.Context, sessionID string, ip string, userAgent string) error {
	const query = `
		UPDATE portal_sessions
		SET last_seen_at = NOW(),
		    ip_address = COALESCE(NULLIF($2, ''), ip_address),
		    user_agent = COALESCE(NULLIF($3, ''), user_agent)
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, sessionID, ip, userAgent)
	return err
}

func scanOne(row pgx.Row) (models.Session, error) {
	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Session{}, ErrSessionNotFound
	}
	return session, err
}

func scanSession(row pgx.Row) (models.Session, error) {
	var (
		session  models.Session
		method   string
		userJSON []byte
		cardJSON []byte
	)
	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.DeviceID,
		&session.DeviceName,
		&method,
		&session.RefreshTokenHash,
		&session.IPAddress,
		&session.UserAgent,
		&userJSON,
		&cardJSON,
		&session.CreatedAt,
		&session.LastSeenAt,
		&session.ExpiresAt,
	); err != nil {
		return models.Session{}, err
	}
	session.Method = models.LoginMethod(method)

	if err := decodeSnapshots(&session, userJSON, cardJSON); err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func decodeSnapshots(session *models.Session, userJSON, cardJSON []byte) error {
	if len(userJSON) > 0 {
		if err := json.Unmarshal(userJSON, &session.User); err != nil {
			return fmt.Errorf("decode user snapshot: %w", err)
		}
	}
	if len(cardJSON) > 0 && string(cardJSON) != "null" {
		var card models.Card
		if err := json.Unmarshal(cardJSON, &card); err != nil {
			return fmt.Errorf("decode card snapshot: %w", err)
		}
		session.Card = &card
	}
	return nil
}
