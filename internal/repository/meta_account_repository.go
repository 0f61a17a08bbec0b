package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/w3art/marko/internal/models"
)

type MetaAccountRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.MetaAccount, bool, error)
	GetActiveByUserID(ctx context.Context, userID int64) (*models.MetaAccount, bool, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.MetaAccount, error)
	Upsert(ctx context.Context, account *models.MetaAccount) (int64, error)
	SelectPage(ctx context.Context, account *models.MetaAccount) error
	SetToken(ctx context.Context, userID int64, accessToken string, expiresAt time.Time) error
	ListExpiring(ctx context.Context, before time.Time) ([]*models.MetaAccount, error)
	RemoveByUserID(ctx context.Context, userID int64) error
}

type metaAccountRepository struct {
	db *sql.DB
}

func NewMetaAccountRepository(db *sql.DB) MetaAccountRepository {
	return &metaAccountRepository{db: db}
}

const metaAccountColumns = `id, user_id, meta_user_id, access_token, token_expires_at,
	facebook_page_id, facebook_page_name, page_access_token,
	instagram_account_id, instagram_username, ad_account_id,
	is_active, created_at, updated_at`

func scanMetaAccount(row *sql.Row) (*models.MetaAccount, error) {
	var a models.MetaAccount
	err := row.Scan(&a.ID, &a.UserID, &a.MetaUserID, &a.AccessToken, &a.TokenExpiresAt,
		&a.FacebookPageID, &a.FacebookPageName, &a.PageAccessToken,
		&a.InstagramAccountID, &a.InstagramUsername, &a.AdAccountID,
		&a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *metaAccountRepository) GetByUserID(ctx context.Context, userID int64) (*models.MetaAccount, bool, error) {
	query := "SELECT " + metaAccountColumns + " FROM meta_accounts WHERE user_id = $1"
	account, err := scanMetaAccount(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return account, true, nil
}

func (r *metaAccountRepository) GetActiveByUserID(ctx context.Context, userID int64) (*models.MetaAccount, bool, error) {
	query := "SELECT " + metaAccountColumns + " FROM meta_accounts WHERE user_id = $1 AND is_active = true"
	account, err := scanMetaAccount(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return account, true, nil
}

func (r *metaAccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.MetaAccount, error) {
	query := "SELECT " + metaAccountColumns + " FROM meta_accounts WHERE user_id = $1"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.MetaAccount
	for rows.Next() {
		var a models.MetaAccount
		err := rows.Scan(&a.ID, &a.UserID, &a.MetaUserID, &a.AccessToken, &a.TokenExpiresAt,
			&a.FacebookPageID, &a.FacebookPageName, &a.PageAccessToken,
			&a.InstagramAccountID, &a.InstagramUsername, &a.AdAccountID,
			&a.IsActive, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &a)
	}
	return accounts, rows.Err()
}

// Upsert writes the single linked-account row for a user. The UNIQUE
// constraint on user_id makes reconnects replace the previous link instead of
// racing a delete against an insert.
func (r *metaAccountRepository) Upsert(ctx context.Context, account *models.MetaAccount) (int64, error) {
	query := `
		INSERT INTO meta_accounts (user_id, meta_user_id, access_token, token_expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET meta_user_id = EXCLUDED.meta_user_id,
			access_token = EXCLUDED.access_token,
			token_expires_at = EXCLUDED.token_expires_at,
			facebook_page_id = '',
			facebook_page_name = '',
			page_access_token = '',
			instagram_account_id = '',
			instagram_username = '',
			ad_account_id = '',
			is_active = EXCLUDED.is_active,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		account.UserID,
		account.MetaUserID,
		account.AccessToken,
		account.TokenExpiresAt,
		account.IsActive,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *metaAccountRepository) SelectPage(ctx context.Context, account *models.MetaAccount) error {
	query := `
		UPDATE meta_accounts
		SET facebook_page_id = $1,
			facebook_page_name = $2,
			page_access_token = $3,
			instagram_account_id = $4,
			instagram_username = $5,
			is_active = true,
			updated_at = $6
		WHERE user_id = $7
	`
	_, err := r.db.ExecContext(ctx, query,
		account.FacebookPageID,
		account.FacebookPageName,
		account.PageAccessToken,
		account.InstagramAccountID,
		account.InstagramUsername,
		time.Now(),
		account.UserID,
	)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *metaAccountRepository) SetToken(ctx context.Context, userID int64, accessToken string, expiresAt time.Time) error {
	query := `
		UPDATE meta_accounts
		SET access_token = $1,
			token_expires_at = $2,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $3
	`
	_, err := r.db.ExecContext(ctx, query, accessToken, expiresAt, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *metaAccountRepository) ListExpiring(ctx context.Context, before time.Time) ([]*models.MetaAccount, error) {
	query := `
		SELECT id, user_id, access_token, token_expires_at
		FROM meta_accounts
		WHERE is_active = true AND token_expires_at < $1
	`
	rows, err := r.db.QueryContext(ctx, query, before)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.MetaAccount
	for rows.Next() {
		var a models.MetaAccount
		if err := rows.Scan(&a.ID, &a.UserID, &a.AccessToken, &a.TokenExpiresAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &a)
	}
	return accounts, rows.Err()
}

func (r *metaAccountRepository) RemoveByUserID(ctx context.Context, userID int64) error {
	query := "DELETE FROM meta_accounts WHERE user_id = $1"
	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
