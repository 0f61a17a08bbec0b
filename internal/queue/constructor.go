package queue

import (
	"github.com/w3art/marko/internal/repository"
	"github.com/w3art/marko/internal/service"
)

type Queue struct {
	c  repository.ContentRepository
	cs service.ContentService
}

func NewQueue(
	c repository.ContentRepository,
	cs service.ContentService) *Queue {
	return &Queue{
		c:  c,
		cs: cs,
	}
}

const TaskTypePublishContent = "publish:content"

type PublishContentPayload struct {
	ContentID int64 `json:"content_id"`
	UserID    int64 `json:"user_id"`
}
