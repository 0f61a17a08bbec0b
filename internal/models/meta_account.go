package models

import "time"

// MetaAccount is a user's link to the Meta platform. There is at most one
// row per user, enforced by a UNIQUE constraint on user_id. The row is
// created inactive on OAuth callback and activated when a page is selected.
type MetaAccount struct {
	ID                 int64     `db:"id" json:"id"`
	UserID             int64     `db:"user_id" json:"user_id"`
	MetaUserID         string    `db:"meta_user_id" json:"meta_user_id"`
	AccessToken        string    `db:"access_token" json:"-"`
	TokenExpiresAt     time.Time `db:"token_expires_at" json:"token_expires_at"`
	FacebookPageID     string    `db:"facebook_page_id" json:"facebook_page_id"`
	FacebookPageName   string    `db:"facebook_page_name" json:"facebook_page_name"`
	PageAccessToken    string    `db:"page_access_token" json:"-"`
	InstagramAccountID string    `db:"instagram_account_id" json:"instagram_account_id"`
	InstagramUsername  string    `db:"instagram_username" json:"instagram_username"`
	AdAccountID        string    `db:"ad_account_id" json:"ad_account_id"`
	IsActive           bool      `db:"is_active" json:"is_active"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// OAuthState is a single-use correlation token for the Meta OAuth handshake.
// A token is accepted only while unused and younger than the callback window.
type OAuthState struct {
	ID        int64     `db:"id" json:"id"`
	State     string    `db:"state" json:"state"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Used      bool      `db:"used" json:"used"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
