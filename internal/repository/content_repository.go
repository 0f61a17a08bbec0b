package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/w3art/marko/internal/models"
	"github.com/w3art/marko/internal/transfer"
)

type ContentRepository interface {
	Create(ctx context.Context, tx *sql.Tx, content *models.Content) (int64, error)
	GetByID(ctx context.Context, id, userID int64) (*models.Content, bool, error)
	List(ctx context.Context, userID int64, filter transfer.ContentFilter) ([]*models.Content, error)
	ListByCampaign(ctx context.Context, campaignID int64) ([]*models.Content, error)
	CountByCampaign(ctx context.Context, campaignID int64) (int64, error)
	Update(ctx context.Context, content *models.Content) error
	UpdateStatus(ctx context.Context, status string, id int64) error
	MarkPublished(ctx context.Context, id int64, metaPostID string, publishedAt time.Time) error
	UnlinkCampaign(ctx context.Context, campaignID int64) error
	Remove(ctx context.Context, id int64) error
}

type contentRepository struct {
	db *sql.DB
}

func NewContentRepository(db *sql.DB) ContentRepository {
	return &contentRepository{db: db}
}

const contentColumns = `id, user_id, campaign_id, title, content_type, platform, caption,
	media_urls, hashtags, headline, cta_text, link_url, status,
	scheduled_for, published_at, meta_post_id, created_at, updated_at`

func scanContent(scan func(dest ...interface{}) error) (*models.Content, error) {
	var c models.Content
	err := scan(&c.ID, &c.UserID, &c.CampaignID, &c.Title, &c.ContentType, &c.Platform, &c.Caption,
		&c.MediaURLs, &c.Hashtags, &c.Headline, &c.CTAText, &c.LinkURL, &c.Status,
		&c.ScheduledFor, &c.PublishedAt, &c.MetaPostID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contentRepository) Create(ctx context.Context, tx *sql.Tx, content *models.Content) (int64, error) {
	query := `
		INSERT INTO contents (user_id, campaign_id, title, content_type, platform, caption,
			media_urls, hashtags, headline, cta_text, link_url, status, scheduled_for)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	var id int64
	var err error

	args := []interface{}{
		content.UserID, content.CampaignID, content.Title, content.ContentType,
		content.Platform, content.Caption, content.MediaURLs, content.Hashtags,
		content.Headline, content.CTAText, content.LinkURL, content.Status,
		content.ScheduledFor,
	}

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, args...).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *contentRepository) GetByID(ctx context.Context, id, userID int64) (*models.Content, bool, error) {
	query := "SELECT " + contentColumns + " FROM contents WHERE id = $1 AND user_id = $2"
	content, err := scanContent(r.db.QueryRowContext(ctx, query, id, userID).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return content, true, nil
}

func (r *contentRepository) List(ctx context.Context, userID int64, filter transfer.ContentFilter) ([]*models.Content, error) {
	query := "SELECT " + contentColumns + " FROM contents WHERE user_id = $1"
	args := []interface{}{userID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.ContentType != "" {
		args = append(args, filter.ContentType)
		query += fmt.Sprintf(" AND content_type = $%d", len(args))
	}
	if filter.Platform != "" {
		args = append(args, filter.Platform)
		query += fmt.Sprintf(" AND platform = $%d", len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var contents []*models.Content
	for rows.Next() {
		content, err := scanContent(rows.Scan)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		contents = append(contents, content)
	}
	return contents, rows.Err()
}

func (r *contentRepository) ListByCampaign(ctx context.Context, campaignID int64) ([]*models.Content, error) {
	query := "SELECT " + contentColumns + " FROM contents WHERE campaign_id = $1 ORDER BY created_at DESC"
	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var contents []*models.Content
	for rows.Next() {
		content, err := scanContent(rows.Scan)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		contents = append(contents, content)
	}
	return contents, rows.Err()
}

func (r *contentRepository) CountByCampaign(ctx context.Context, campaignID int64) (int64, error) {
	var count int64
	query := "SELECT COUNT(*) FROM contents WHERE campaign_id = $1"
	err := r.db.QueryRowContext(ctx, query, campaignID).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

func (r *contentRepository) Update(ctx context.Context, content *models.Content) error {
	query := `
		UPDATE contents
		SET title = $1,
			caption = $2,
			media_urls = $3,
			hashtags = $4,
			headline = $5,
			cta_text = $6,
			link_url = $7,
			scheduled_for = $8,
			status = $9,
			updated_at = $10
		WHERE id = $11
	`
	_, err := r.db.ExecContext(ctx, query,
		content.Title, content.Caption, content.MediaURLs, content.Hashtags,
		content.Headline, content.CTAText, content.LinkURL, content.ScheduledFor,
		content.Status, time.Now(), content.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentRepository) UpdateStatus(ctx context.Context, status string, id int64) error {
	query := `
		UPDATE contents
		SET status = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentRepository) MarkPublished(ctx context.Context, id int64, metaPostID string, publishedAt time.Time) error {
	query := `
		UPDATE contents
		SET status = $1,
			meta_post_id = $2,
			published_at = $3,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, models.ContentStatusPublished, metaPostID, publishedAt, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// UnlinkCampaign nulls the campaign reference of the campaign's content.
// Campaign deletion never cascades into content rows.
func (r *contentRepository) UnlinkCampaign(ctx context.Context, campaignID int64) error {
	query := "UPDATE contents SET campaign_id = NULL WHERE campaign_id = $1"
	_, err := r.db.ExecContext(ctx, query, campaignID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentRepository) Remove(ctx context.Context, id int64) error {
	query := "DELETE FROM contents WHERE id = $1"
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
