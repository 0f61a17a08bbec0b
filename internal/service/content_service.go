package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/w3art/marko/internal/models"
	"github.com/w3art/marko/internal/repository"
	"github.com/w3art/marko/internal/transfer"
)

var (
	ErrContentNotFound  = errors.New("content not found")
	ErrContentPublished = errors.New("cannot edit published content")
	ErrAlreadyPublished = errors.New("content already published")
)

type ContentService interface {
	Create(ctx context.Context, userID int64, req *transfer.ContentCreateRequest) (*models.Content, error)
	List(ctx context.Context, userID int64, filter transfer.ContentFilter) ([]*models.Content, error)
	Get(ctx context.Context, id, userID int64) (*models.Content, error)
	Update(ctx context.Context, id, userID int64, req *transfer.ContentUpdateRequest) (*models.Content, error)
	Delete(ctx context.Context, id, userID int64) error
	Publish(ctx context.Context, id, userID int64) (*transfer.PublishResult, error)
}

type contentService struct {
	c    repository.ContentRepository
	a    repository.AnalyticsRepository
	meta MetaService
	ma   repository.MetaAccountRepository
}

func NewContentService(
	c repository.ContentRepository,
	a repository.AnalyticsRepository,
	meta MetaService,
	ma repository.MetaAccountRepository) ContentService {
	return &contentService{
		c:    c,
		a:    a,
		meta: meta,
		ma:   ma,
	}
}

func (s *contentService) Create(ctx context.Context, userID int64, req *transfer.ContentCreateRequest) (*models.Content, error) {
	contentType := req.ContentType
	if contentType == "" {
		contentType = models.ContentTypePost
	}
	platform := req.Platform
	if platform == "" {
		platform = models.PlatformInstagram
	}

	status := models.ContentStatusDraft
	if req.ScheduledFor != nil {
		status = models.ContentStatusScheduled
	}

	content := &models.Content{
		UserID:       userID,
		CampaignID:   req.CampaignID,
		Title:        req.Title,
		ContentType:  contentType,
		Platform:     platform,
		Caption:      req.Caption,
		MediaURLs:    req.MediaURLs,
		Hashtags:     req.Hashtags,
		Headline:     req.Headline,
		CTAText:      req.CTAText,
		LinkURL:      req.LinkURL,
		Status:       status,
		ScheduledFor: req.ScheduledFor,
	}

	id, err := s.c.Create(ctx, nil, content)
	if err != nil {
		return nil, err
	}
	content.ID = id
	content.CreatedAt = time.Now()

	return content, nil
}

func (s *contentService) List(ctx context.Context, userID int64, filter transfer.ContentFilter) ([]*models.Content, error) {
	return s.c.List(ctx, userID, filter)
}

func (s *contentService) Get(ctx context.Context, id, userID int64) (*models.Content, error) {
	content, isExist, err := s.c.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrContentNotFound
	}
	return content, nil
}

// Update patches the given fields. Published content is immutable.
func (s *contentService) Update(ctx context.Context, id, userID int64, req *transfer.ContentUpdateRequest) (*models.Content, error) {
	content, isExist, err := s.c.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrContentNotFound
	}
	if content.Status == models.ContentStatusPublished {
		return nil, ErrContentPublished
	}

	if req.Title != nil {
		content.Title = *req.Title
	}
	if req.Caption != nil {
		content.Caption = *req.Caption
	}
	if req.MediaURLs != nil {
		content.MediaURLs = *req.MediaURLs
	}
	if req.Hashtags != nil {
		content.Hashtags = *req.Hashtags
	}
	if req.Headline != nil {
		content.Headline = *req.Headline
	}
	if req.CTAText != nil {
		content.CTAText = *req.CTAText
	}
	if req.LinkURL != nil {
		content.LinkURL = *req.LinkURL
	}
	if req.ScheduledFor != nil {
		content.ScheduledFor = req.ScheduledFor
	}
	if req.Status != nil {
		content.Status = *req.Status
	}

	if err := s.c.Update(ctx, content); err != nil {
		return nil, err
	}
	return content, nil
}

func (s *contentService) Delete(ctx context.Context, id, userID int64) error {
	_, isExist, err := s.c.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	if !isExist {
		return ErrContentNotFound
	}

	if err := s.a.RemoveByContentID(ctx, id); err != nil {
		return err
	}
	return s.c.Remove(ctx, id)
}

// Publish pushes the content to Meta and records the outcome. A Graph failure
// marks the row failed; success makes it immutable and pairs it with its
// analytics row.
func (s *contentService) Publish(ctx context.Context, id, userID int64) (*transfer.PublishResult, error) {
	content, isExist, err := s.c.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrContentNotFound
	}
	if content.Status == models.ContentStatusPublished {
		return nil, ErrAlreadyPublished
	}

	account, isExist, err := s.ma.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrNoActiveAccount
	}

	mediaURL := ""
	if len(content.MediaURLs) > 0 {
		mediaURL = content.MediaURLs[0]
	}

	postID, err := s.meta.PublishTo(ctx, account, &transfer.PublishRequest{
		Platform:    content.Platform,
		ContentType: content.ContentType,
		Caption:     AssembleCaption(content.Caption, content.Hashtags),
		MediaURL:    mediaURL,
		Link:        content.LinkURL,
	})
	if err != nil {
		if statusErr := s.c.UpdateStatus(ctx, models.ContentStatusFailed, content.ID); statusErr != nil {
			return nil, statusErr
		}
		return nil, err
	}

	if err := s.c.MarkPublished(ctx, content.ID, postID, time.Now()); err != nil {
		return nil, err
	}
	if _, err := s.a.Create(ctx, nil, content.ID); err != nil {
		return nil, err
	}

	return &transfer.PublishResult{
		Status:   "published",
		PostID:   postID,
		Platform: content.Platform,
	}, nil
}

// AssembleCaption appends the hashtag block to the caption the way it should
// appear on the published post.
func AssembleCaption(caption string, hashtags []string) string {
	if len(hashtags) == 0 {
		return caption
	}

	tags := make([]string, 0, len(hashtags))
	for _, h := range hashtags {
		h = strings.TrimSpace(strings.TrimPrefix(h, "#"))
		if h == "" {
			continue
		}
		tags = append(tags, "#"+h)
	}
	if len(tags) == 0 {
		return caption
	}
	return caption + "\n\n" + strings.Join(tags, " ")
}
