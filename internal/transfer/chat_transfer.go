package transfer

import (
	v "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/w3art/marko/internal/models"
)

type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID int64  `json:"conversation_id"`
}

func (r ChatRequest) Validate() error {
	return v.ValidateStruct(&r,
		v.Field(&r.Message, v.Required),
	)
}

type ChatResponse struct {
	ConversationID int64           `json:"conversation_id"`
	Message        *models.Message `json:"message"`
	Response       *models.Message `json:"response"`
}

// AIMessage is one turn of the history sent to the assistant.
type AIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatContext is ambient information appended to the system prompt.
type ChatContext struct {
	UserName          string
	CompanyName       string
	Campaign          string
	MetaConnected     bool
	InstagramUsername string
	FacebookPage      string
}
