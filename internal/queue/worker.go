package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
	"github.com/w3art/marko/internal/models"
)

func (q *Queue) HandlePublishContentTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishContentPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	content, isExist, err := q.c.GetByID(ctx, payload.ContentID, payload.UserID)
	if err != nil {
		return err
	}
	if !isExist {
		log.Printf("Scheduled content %d no longer exists, skipping", payload.ContentID)
		return nil
	}

	// The content may have been published manually or pulled back to draft
	// while the task was waiting.
	if content.Status != models.ContentStatusScheduled {
		log.Printf("Content %d is %s, not scheduled, skipping", content.ID, content.Status)
		return nil
	}

	if _, err := q.cs.Publish(ctx, payload.ContentID, payload.UserID); err != nil {
		log.Printf("Error publishing scheduled content %d: %v", payload.ContentID, err)
		return err
	}

	return nil
}
