package validator

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/blinkroom/chat-service/internal/api"
)

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

func (v *Validator) ValidateSendMessage(req *api.SendMessageRequest) error {
	if strings.TrimSpace(req.Content) == "" {
		return fmt.Errorf("content cannot be empty")
	}

	if len([]rune(req.Content)) > 500 {
		return fmt.Errorf("content exceeds maximum length of 500 characters")
	}

	if req.ReplyTo != nil && *req.ReplyTo != "" {
		if _, err := uuid.Parse(*req.ReplyTo); err != nil {
			return fmt.Errorf("reply_to must be a valid uuid")
		}
	}

	return nil
}
