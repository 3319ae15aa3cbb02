//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package rest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/blinkroom/chat-service/internal/api"
	"github.com/blinkroom/chat-service/internal/model"
)

type DBRepo interface {
	SaveMessage(ctx context.Context, content string, replyTo *uuid.UUID) (*model.Message, error)
	GetRecentMessages(ctx context.Context, window time.Duration, limit int) (*model.MessageList, error)
	PurgeExpired(ctx context.Context, window time.Duration) ([]uuid.UUID, error)
	Ping(ctx context.Context) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event model.RoomEvent) error
}

type Validator interface {
	ValidateSendMessage(req *api.SendMessageRequest) error
}
