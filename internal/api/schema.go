// Package api holds the request/response contracts of the room HTTP API.
package api

type Message struct {
	Id        string  `json:"id"`
	Content   string  `json:"content"`
	CreatedAt string  `json:"created_at"`
	ReplyTo   *string `json:"reply_to,omitempty"`
}

type GetMessagesResponse struct {
	Messages []Message `json:"messages"`
}

type SendMessageRequest struct {
	Content string  `json:"content"`
	ReplyTo *string `json:"reply_to,omitempty"`
}

type PurgeResponse struct {
	Purged int `json:"purged"`
}

type Error struct {
	Error string `json:"error"`
}
