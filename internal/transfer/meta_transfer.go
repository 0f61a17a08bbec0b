package transfer

import (
	"time"

	v "github.com/go-ozzo/ozzo-validation/v4"
)

type OAuthCallbackRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

func (r OAuthCallbackRequest) Validate() error {
	return v.ValidateStruct(&r,
		v.Field(&r.Code, v.Required),
		v.Field(&r.State, v.Required),
	)
}

type PageSelection struct {
	PageID             string `json:"page_id"`
	PageName           string `json:"page_name"`
	PageToken          string `json:"page_token"`
	InstagramAccountID string `json:"instagram_account_id"`
	InstagramUsername  string `json:"instagram_username"`
}

func (r PageSelection) Validate() error {
	return v.ValidateStruct(&r,
		v.Field(&r.PageID, v.Required),
		v.Field(&r.PageName, v.Required),
		v.Field(&r.PageToken, v.Required),
	)
}

type PublishRequest struct {
	Platform    string `json:"platform"`
	ContentType string `json:"content_type"`
	Caption     string `json:"caption"`
	MediaURL    string `json:"media_url"`
	Link        string `json:"link"`
}

func (r PublishRequest) Validate() error {
	return v.ValidateStruct(&r,
		v.Field(&r.Platform, v.Required, v.In("instagram", "facebook")),
		v.Field(&r.Caption, v.Required),
	)
}

// MetaToken is the long-lived credential returned by the code exchange.
type MetaToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type MetaUserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type InstagramAccount struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type MetaPage struct {
	ID                       string            `json:"id"`
	Name                     string            `json:"name"`
	AccessToken              string            `json:"access_token"`
	InstagramBusinessAccount *InstagramAccount `json:"instagram_business_account,omitempty"`
}

type AdAccount struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PageOption is a page flattened with its Instagram link, shaped for
// client-side selection after the OAuth callback.
type PageOption struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	HasInstagram     bool              `json:"has_instagram"`
	AccessToken      string            `json:"access_token"`
	InstagramAccount *InstagramAccount `json:"instagram_account,omitempty"`
}

type ConnectResult struct {
	Status     string        `json:"status"`
	AccountID  int64         `json:"account_id"`
	Pages      []*PageOption `json:"pages"`
	AdAccounts []*AdAccount  `json:"ad_accounts"`
}

type MetaStatus struct {
	Connected         bool   `json:"connected"`
	FacebookPage      string `json:"facebook_page,omitempty"`
	InstagramUsername string `json:"instagram_username,omitempty"`
	AdAccount         string `json:"ad_account,omitempty"`
}

type PublishResult struct {
	Status   string `json:"status"`
	PostID   string `json:"post_id"`
	Platform string `json:"platform,omitempty"`
}

type PostInsights struct {
	Data []struct {
		Name   string `json:"name"`
		Values []struct {
			Value int64 `json:"value"`
		} `json:"values"`
	} `json:"data"`
}
