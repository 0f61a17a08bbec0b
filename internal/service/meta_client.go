package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/w3art/marko/configs"
	"github.com/w3art/marko/internal/transfer"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

const graphBaseURL = "https://graph.facebook.com/v19.0"

// Instagram media container types.
const (
	IGMediaTypeImage = "IMAGE"
	IGMediaTypeVideo = "VIDEO"
	IGMediaTypeReels = "REELS"
)

// metaScopes is the permission set requested at connect time. Publishing,
// insights and ad reads all need to be granted up front.
var metaScopes = []string{
	"pages_show_list",
	"pages_read_engagement",
	"pages_manage_posts",
	"instagram_basic",
	"instagram_content_publish",
	"instagram_manage_insights",
	"ads_management",
	"ads_read",
	"business_management",
}

// GraphError carries the error message the Graph API returned, verbatim, so
// handlers can pass it through to the client.
type GraphError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

func (e *GraphError) Error() string {
	return e.Message
}

type MetaClient interface {
	OAuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*transfer.MetaToken, error)
	LongLivedToken(ctx context.Context, shortToken string) (*transfer.MetaToken, error)
	UserInfo(ctx context.Context, accessToken string) (*transfer.MetaUserInfo, error)
	Pages(ctx context.Context, accessToken string) ([]*transfer.MetaPage, error)
	InstagramAccount(ctx context.Context, pageID, pageToken string) (*transfer.InstagramAccount, error)
	AdAccounts(ctx context.Context, accessToken string) ([]*transfer.AdAccount, error)
	PublishInstagram(ctx context.Context, igUserID, accessToken, caption, mediaURL, mediaType string) (string, error)
	PublishFacebook(ctx context.Context, pageID, pageToken, message, link, photoURL string) (string, error)
	PostInsights(ctx context.Context, mediaID, accessToken string) (*transfer.PostInsights, error)
}

type metaClient struct {
	cfg  config.Config
	http *http.Client
}

func NewMetaClient(cfg config.Config) MetaClient {
	return &metaClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *metaClient) OAuthURL(state string) string {
	oauth2Config := &oauth2.Config{
		ClientID:    c.cfg.MetaAppID,
		RedirectURL: c.cfg.MetaRedirectURI,
		Scopes:      metaScopes,
		Endpoint:    facebook.Endpoint,
	}
	return oauth2Config.AuthCodeURL(state)
}

// get performs a Graph GET and decodes the JSON body into out. A Graph error
// payload is surfaced as *GraphError whatever the HTTP status.
func (c *metaClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, graphBaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("graph request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeGraphResponse(resp.Body, out)
}

func (c *metaClient) post(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, graphBaseURL+path, strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("graph request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeGraphResponse(resp.Body, out)
}

func decodeGraphResponse(r io.Reader, out interface{}) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	var errEnvelope struct {
		Error *GraphError `json:"error"`
	}
	if err := json.Unmarshal(body, &errEnvelope); err == nil && errEnvelope.Error != nil {
		return errEnvelope.Error
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("failed to decode graph response: %w", err)
	}
	return nil
}

func (c *metaClient) ExchangeCode(ctx context.Context, code string) (*transfer.MetaToken, error) {
	params := url.Values{}
	params.Set("client_id", c.cfg.MetaAppID)
	params.Set("client_secret", c.cfg.MetaAppSecret)
	params.Set("redirect_uri", c.cfg.MetaRedirectURI)
	params.Set("code", code)

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := c.get(ctx, "/oauth/access_token", params, &result); err != nil {
		return nil, err
	}

	return &transfer.MetaToken{
		AccessToken: result.AccessToken,
		ExpiresAt:   GetExpiresAt(result.ExpiresIn),
	}, nil
}

// LongLivedToken trades a short-lived user token for the ~60 day variant. The
// same exchange refreshes a long-lived token that is close to expiry.
func (c *metaClient) LongLivedToken(ctx context.Context, shortToken string) (*transfer.MetaToken, error) {
	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", c.cfg.MetaAppID)
	params.Set("client_secret", c.cfg.MetaAppSecret)
	params.Set("fb_exchange_token", shortToken)

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := c.get(ctx, "/oauth/access_token", params, &result); err != nil {
		return nil, err
	}

	return &transfer.MetaToken{
		AccessToken: result.AccessToken,
		ExpiresAt:   GetExpiresAt(result.ExpiresIn),
	}, nil
}

func (c *metaClient) UserInfo(ctx context.Context, accessToken string) (*transfer.MetaUserInfo, error) {
	params := url.Values{}
	params.Set("fields", "id,name,email")
	params.Set("access_token", accessToken)

	var info transfer.MetaUserInfo
	if err := c.get(ctx, "/me", params, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *metaClient) Pages(ctx context.Context, accessToken string) ([]*transfer.MetaPage, error) {
	params := url.Values{}
	params.Set("fields", "id,name,access_token,instagram_business_account")
	params.Set("access_token", accessToken)

	var result struct {
		Data []*transfer.MetaPage `json:"data"`
	}
	if err := c.get(ctx, "/me/accounts", params, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *metaClient) InstagramAccount(ctx context.Context, pageID, pageToken string) (*transfer.InstagramAccount, error) {
	params := url.Values{}
	params.Set("fields", "instagram_business_account{id,username}")
	params.Set("access_token", pageToken)

	var result struct {
		InstagramBusinessAccount *transfer.InstagramAccount `json:"instagram_business_account"`
	}
	if err := c.get(ctx, "/"+pageID, params, &result); err != nil {
		return nil, err
	}
	return result.InstagramBusinessAccount, nil
}

func (c *metaClient) AdAccounts(ctx context.Context, accessToken string) ([]*transfer.AdAccount, error) {
	params := url.Values{}
	params.Set("fields", "id,name,account_status,currency")
	params.Set("access_token", accessToken)

	var result struct {
		Data []*transfer.AdAccount `json:"data"`
	}
	if err := c.get(ctx, "/me/adaccounts", params, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// instagramContainerParams builds the media container payload. Videos and
// reels go through video_url with an explicit media_type; everything else is
// an image post.
func instagramContainerParams(accessToken, caption, mediaURL, mediaType string) url.Values {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("caption", caption)

	switch mediaType {
	case IGMediaTypeVideo, IGMediaTypeReels:
		if mediaURL != "" {
			params.Set("video_url", mediaURL)
		}
		params.Set("media_type", mediaType)
	default:
		if mediaURL != "" {
			params.Set("image_url", mediaURL)
		}
	}
	return params
}

// PublishInstagram creates a media container and publishes it. Instagram
// requires hosted media, so mediaURL must be publicly reachable.
func (c *metaClient) PublishInstagram(ctx context.Context, igUserID, accessToken, caption, mediaURL, mediaType string) (string, error) {
	containerParams := instagramContainerParams(accessToken, caption, mediaURL, mediaType)

	var container struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/"+igUserID+"/media", containerParams, &container); err != nil {
		return "", err
	}
	if container.ID == "" {
		return "", fmt.Errorf("no media container ID returned")
	}

	publishParams := url.Values{}
	publishParams.Set("creation_id", container.ID)
	publishParams.Set("access_token", accessToken)

	var published struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/"+igUserID+"/media_publish", publishParams, &published); err != nil {
		return "", err
	}
	return published.ID, nil
}

// PublishFacebook posts to the page feed, or to /photos when a photo URL is
// given.
func (c *metaClient) PublishFacebook(ctx context.Context, pageID, pageToken, message, link, photoURL string) (string, error) {
	params := url.Values{}
	params.Set("message", message)
	params.Set("access_token", pageToken)
	if link != "" {
		params.Set("link", link)
	}

	endpoint := "/" + pageID + "/feed"
	if photoURL != "" {
		endpoint = "/" + pageID + "/photos"
		params.Set("url", photoURL)
	}

	var result struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}
	if err := c.post(ctx, endpoint, params, &result); err != nil {
		return "", err
	}
	if result.PostID != "" {
		return result.PostID, nil
	}
	return result.ID, nil
}

func (c *metaClient) PostInsights(ctx context.Context, mediaID, accessToken string) (*transfer.PostInsights, error) {
	params := url.Values{}
	params.Set("metric", "impressions,reach,engagement,saved,likes,comments,shares")
	params.Set("access_token", accessToken)

	var insights transfer.PostInsights
	if err := c.get(ctx, "/"+mediaID+"/insights", params, &insights); err != nil {
		return nil, err
	}
	return &insights, nil
}
