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

type AnalyticsRepository interface {
	Create(ctx context.Context, tx *sql.Tx, contentID int64) (int64, error)
	GetByContentID(ctx context.Context, contentID int64) (*models.ContentAnalytics, bool, error)
	Save(ctx context.Context, analytics *models.ContentAnalytics) error
	RemoveByContentID(ctx context.Context, contentID int64) error
	Overview(ctx context.Context, userID int64, since time.Time) (*transfer.AnalyticsOverview, error)
	BestPerformingType(ctx context.Context, userID int64) (string, error)
	CampaignTotals(ctx context.Context, campaignID int64) (*transfer.CampaignTotals, error)
	CampaignBreakdown(ctx context.Context, campaignID int64) ([]transfer.ContentBreakdownRow, error)
	TopContent(ctx context.Context, userID int64, metric string, limit int) ([]transfer.TopContentRow, error)
}

type analyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// Create inserts the zeroed analytics row that publishing pairs with each
// content row. ON CONFLICT keeps the call idempotent for retried publishes.
func (r *analyticsRepository) Create(ctx context.Context, tx *sql.Tx, contentID int64) (int64, error) {
	query := `
		INSERT INTO content_analytics (content_id)
		VALUES ($1)
		ON CONFLICT (content_id) DO UPDATE SET last_updated = CURRENT_TIMESTAMP
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, contentID).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, contentID).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *analyticsRepository) GetByContentID(ctx context.Context, contentID int64) (*models.ContentAnalytics, bool, error) {
	var a models.ContentAnalytics
	query := `
		SELECT id, content_id, impressions, reach, engagement, likes, comments,
			shares, saves, clicks, spend_cents, conversions, cpc_cents, cpm_cents,
			roas_x100, last_updated
		FROM content_analytics
		WHERE content_id = $1
	`
	err := r.db.QueryRowContext(ctx, query, contentID).Scan(
		&a.ID, &a.ContentID, &a.Impressions, &a.Reach, &a.Engagement, &a.Likes, &a.Comments,
		&a.Shares, &a.Saves, &a.Clicks, &a.SpendCents, &a.Conversions, &a.CPCCents, &a.CPMCents,
		&a.ROASx100, &a.LastUpdated)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &a, true, nil
}

// Save overwrites the metric columns wholesale. Insight refreshes always carry
// the full snapshot, so there is no partial-update path.
func (r *analyticsRepository) Save(ctx context.Context, analytics *models.ContentAnalytics) error {
	query := `
		INSERT INTO content_analytics (content_id, impressions, reach, engagement, likes, comments,
			shares, saves, clicks, spend_cents, conversions, cpc_cents, cpm_cents, roas_x100, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (content_id) DO UPDATE
		SET impressions = EXCLUDED.impressions,
			reach = EXCLUDED.reach,
			engagement = EXCLUDED.engagement,
			likes = EXCLUDED.likes,
			comments = EXCLUDED.comments,
			shares = EXCLUDED.shares,
			saves = EXCLUDED.saves,
			clicks = EXCLUDED.clicks,
			spend_cents = EXCLUDED.spend_cents,
			conversions = EXCLUDED.conversions,
			cpc_cents = EXCLUDED.cpc_cents,
			cpm_cents = EXCLUDED.cpm_cents,
			roas_x100 = EXCLUDED.roas_x100,
			last_updated = EXCLUDED.last_updated
	`
	_, err := r.db.ExecContext(ctx, query,
		analytics.ContentID, analytics.Impressions, analytics.Reach, analytics.Engagement,
		analytics.Likes, analytics.Comments, analytics.Shares, analytics.Saves, analytics.Clicks,
		analytics.SpendCents, analytics.Conversions, analytics.CPCCents, analytics.CPMCents,
		analytics.ROASx100, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *analyticsRepository) RemoveByContentID(ctx context.Context, contentID int64) error {
	query := "DELETE FROM content_analytics WHERE content_id = $1"
	_, err := r.db.ExecContext(ctx, query, contentID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *analyticsRepository) Overview(ctx context.Context, userID int64, since time.Time) (*transfer.AnalyticsOverview, error) {
	var o transfer.AnalyticsOverview

	countQuery := `
		SELECT
			COUNT(*) FILTER (WHERE created_at >= $2),
			COUNT(*) FILTER (WHERE status = 'published' AND published_at >= $2)
		FROM contents
		WHERE user_id = $1
	`
	err := r.db.QueryRowContext(ctx, countQuery, userID, since).Scan(&o.TotalContent, &o.PublishedContent)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	sumQuery := `
		SELECT
			COALESCE(SUM(a.impressions), 0),
			COALESCE(SUM(a.reach), 0),
			COALESCE(SUM(a.engagement), 0),
			COALESCE(SUM(a.spend_cents), 0)
		FROM content_analytics a
		JOIN contents c ON c.id = a.content_id
		WHERE c.user_id = $1 AND c.published_at >= $2
	`
	err = r.db.QueryRowContext(ctx, sumQuery, userID, since).Scan(
		&o.TotalImpressions, &o.TotalReach, &o.TotalEngagement, &o.TotalSpendCents)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &o, nil
}

func (r *analyticsRepository) BestPerformingType(ctx context.Context, userID int64) (string, error) {
	query := `
		SELECT c.content_type
		FROM contents c
		JOIN content_analytics a ON a.content_id = c.id
		WHERE c.user_id = $1
		GROUP BY c.content_type
		ORDER BY AVG(a.engagement) DESC
		LIMIT 1
	`
	var contentType string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&contentType)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		slog.Info(err.Error())
		return "", err
	}
	return contentType, nil
}

func (r *analyticsRepository) CampaignTotals(ctx context.Context, campaignID int64) (*transfer.CampaignTotals, error) {
	var t transfer.CampaignTotals
	query := `
		SELECT
			COUNT(c.id),
			COALESCE(SUM(a.impressions), 0),
			COALESCE(SUM(a.reach), 0),
			COALESCE(SUM(a.engagement), 0),
			COALESCE(SUM(a.spend_cents), 0),
			COALESCE(SUM(a.conversions), 0)
		FROM contents c
		JOIN content_analytics a ON a.content_id = c.id
		WHERE c.campaign_id = $1
	`
	err := r.db.QueryRowContext(ctx, query, campaignID).Scan(
		&t.ContentCount, &t.Impressions, &t.Reach, &t.Engagement, &t.SpendCents, &t.Conversions)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &t, nil
}

func (r *analyticsRepository) CampaignBreakdown(ctx context.Context, campaignID int64) ([]transfer.ContentBreakdownRow, error) {
	query := `
		SELECT content_type, status, COUNT(*)
		FROM contents
		WHERE campaign_id = $1
		GROUP BY content_type, status
		ORDER BY content_type, status
	`
	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var breakdown []transfer.ContentBreakdownRow
	for rows.Next() {
		var row transfer.ContentBreakdownRow
		if err := rows.Scan(&row.Type, &row.Status, &row.Count); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		breakdown = append(breakdown, row)
	}
	return breakdown, rows.Err()
}

func (r *analyticsRepository) TopContent(ctx context.Context, userID int64, metric string, limit int) ([]transfer.TopContentRow, error) {
	orderColumn := "a.engagement"
	switch metric {
	case "impressions":
		orderColumn = "a.impressions"
	case "reach":
		orderColumn = "a.reach"
	}

	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(`
		SELECT c.id, c.title, c.content_type, c.platform, c.caption, c.published_at,
			a.impressions, a.reach, a.engagement, a.likes, a.comments
		FROM contents c
		JOIN content_analytics a ON a.content_id = c.id
		WHERE c.user_id = $1
		ORDER BY %s DESC
		LIMIT $2
	`, orderColumn)

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var results []transfer.TopContentRow
	for rows.Next() {
		var row transfer.TopContentRow
		err := rows.Scan(&row.ID, &row.Title, &row.ContentType, &row.Platform, &row.Caption, &row.PublishedAt,
			&row.Metrics.Impressions, &row.Metrics.Reach, &row.Metrics.Engagement,
			&row.Metrics.Likes, &row.Metrics.Comments)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
