package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

type OAuthStateRepository interface {
	Create(ctx context.Context, state string, userID int64) error
	DeleteOldByUserID(ctx context.Context, userID int64, cutoff time.Time) error
	Consume(ctx context.Context, state string, cutoff time.Time) (int64, bool, error)
	DeleteExpired(ctx context.Context, state string, cutoff time.Time) (bool, error)
	Sweep(ctx context.Context, cutoff time.Time) (int64, error)
}

type oauthStateRepository struct {
	db *sql.DB
}

func NewOAuthStateRepository(db *sql.DB) OAuthStateRepository {
	return &oauthStateRepository{db: db}
}

func (r *oauthStateRepository) Create(ctx context.Context, state string, userID int64) error {
	query := "INSERT INTO oauth_states (state, user_id) VALUES ($1, $2)"
	_, err := r.db.ExecContext(ctx, query, state, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *oauthStateRepository) DeleteOldByUserID(ctx context.Context, userID int64, cutoff time.Time) error {
	query := "DELETE FROM oauth_states WHERE user_id = $1 AND used = false AND created_at < $2"
	_, err := r.db.ExecContext(ctx, query, userID, cutoff)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// Consume marks the state used in a single conditional update, so a token can
// be accepted at most once even under concurrent callbacks. Returns the owning
// user id when the token was unused and issued after cutoff.
func (r *oauthStateRepository) Consume(ctx context.Context, state string, cutoff time.Time) (int64, bool, error) {
	query := `
		UPDATE oauth_states
		SET used = true
		WHERE state = $1 AND used = false AND created_at >= $2
		RETURNING user_id
	`
	var userID int64
	err := r.db.QueryRowContext(ctx, query, state, cutoff).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		slog.Info(err.Error())
		return 0, false, err
	}
	return userID, true, nil
}

// DeleteExpired removes an unused token that fell outside the callback window.
// Reports whether such a row existed, which distinguishes "state expired" from
// "invalid state".
func (r *oauthStateRepository) DeleteExpired(ctx context.Context, state string, cutoff time.Time) (bool, error) {
	query := "DELETE FROM oauth_states WHERE state = $1 AND used = false AND created_at < $2"
	result, err := r.db.ExecContext(ctx, query, state, cutoff)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected > 0, nil
}

func (r *oauthStateRepository) Sweep(ctx context.Context, cutoff time.Time) (int64, error) {
	query := "DELETE FROM oauth_states WHERE used = true OR created_at < $1"
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return affected, nil
}
