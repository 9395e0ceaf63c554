package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/summitprep/satprep-backend/internal/config"
	"github.com/summitprep/satprep-backend/internal/model"
	"github.com/summitprep/satprep-backend/internal/repository"
)

var ErrEmptyMessage = errors.New("message body is empty")

// ChatEvent is the payload fanned out over the per-conversation redis channel
// so every websocket attached to the conversation sees the update, regardless
// of which server instance it landed on.
type ChatEvent struct {
	Kind    string             `json:"kind"` // "message" or "read"
	Message *model.ChatMessage `json:"message,omitempty"`
	Reader  model.ChatSender   `json:"reader,omitempty"`
	Count   int64              `json:"count,omitempty"`
}

// ChatService persists conversation messages and fans out live updates.
type ChatService struct {
	chatRepo *repository.ChatRepository
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewChatService creates a new ChatService.
func NewChatService(chatRepo *repository.ChatRepository, rdb *redis.Client, log zerolog.Logger) *ChatService {
	return &ChatService{
		chatRepo: chatRepo,
		rdb:      rdb,
		log:      log.With().Str("component", "chat_service").Logger(),
	}
}

// Send persists a message and publishes it to the conversation channel.
// Replying also transitions the other side's unread messages to read, since
// answering implies the conversation was seen. Persistence is authoritative;
// publish and read-transition failures are logged and the message still lands
// in history.
func (s *ChatService) Send(ctx context.Context, studentEmail string, sender model.ChatSender, adminName, body string) (*model.ChatMessage, error) {
	if body == "" {
		return nil, ErrEmptyMessage
	}

	msg := &model.ChatMessage{
		StudentEmail: studentEmail,
		Sender:       sender,
		Message:      body,
		AdminName:    adminName,
	}
	if err := s.chatRepo.Insert(ctx, msg); err != nil {
		return nil, err
	}

	opposite := model.SenderAdmin
	if sender == model.SenderAdmin {
		opposite = model.SenderStudent
	}
	if _, err := s.MarkRead(ctx, studentEmail, opposite); err != nil {
		s.log.Error().Err(err).Str("student_email", studentEmail).Msg("read transition on reply failed")
	}

	s.publish(ctx, studentEmail, ChatEvent{Kind: "message", Message: msg})
	return msg, nil
}

// MarkRead transitions every unread message from the given sender to read in
// one statement and notifies the conversation.
func (s *ChatService) MarkRead(ctx context.Context, studentEmail string, from model.ChatSender) (int64, error) {
	n, err := s.chatRepo.MarkRead(ctx, studentEmail, from)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		reader := model.SenderAdmin
		if from == model.SenderAdmin {
			reader = model.SenderStudent
		}
		s.publish(ctx, studentEmail, ChatEvent{Kind: "read", Reader: reader, Count: n})
	}
	return n, nil
}

// ListConversation returns a page of the conversation, oldest first.
func (s *ChatService) ListConversation(ctx context.Context, studentEmail string, limit, offset int) ([]model.ChatMessage, int, error) {
	return s.chatRepo.ListConversation(ctx, studentEmail, limit, offset)
}

// CountUnread counts a side's unread messages in one conversation.
func (s *ChatService) CountUnread(ctx context.Context, studentEmail string, from model.ChatSender) (int, error) {
	return s.chatRepo.CountUnread(ctx, studentEmail, from)
}

// ListConversationSummaries builds the admin inbox rollup.
func (s *ChatService) ListConversationSummaries(ctx context.Context) ([]model.ConversationSummary, error) {
	return s.chatRepo.ListConversationSummaries(ctx)
}

// Subscribe opens a redis subscription on the conversation channel. The
// caller owns the returned PubSub and must Close it.
func (s *ChatService) Subscribe(ctx context.Context, studentEmail string) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.CacheKey.ChatChannel(studentEmail))
}

func (s *ChatService) publish(ctx context.Context, studentEmail string, ev ChatEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal chat event")
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.ChatChannel(studentEmail), payload).Err(); err != nil {
		s.log.Error().Err(err).Str("student_email", studentEmail).Msg("failed to publish chat event")
	}
}
