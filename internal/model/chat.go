package model

import "time"

// ChatSender identifies which side of the conversation sent a message.
type ChatSender string

const (
	SenderStudent ChatSender = "student"
	SenderAdmin   ChatSender = "admin"
)

// ChatStatus is the read state of a message.
type ChatStatus string

const (
	ChatSent ChatStatus = "sent"
	ChatRead ChatStatus = "read"
)

// ChatMessage is one message in a student↔admin conversation. Conversations
// are keyed by student email.
type ChatMessage struct {
	ID           int        `json:"id"`
	StudentEmail string     `json:"student_email"`
	Sender       ChatSender `json:"sender"`
	Message      string     `json:"message"`
	Status       ChatStatus `json:"status"`
	AdminName    string     `json:"admin_name,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// SendMessageRequest is the payload for posting a chat message.
type SendMessageRequest struct {
	Message string `json:"message" binding:"required,min=1,max=4000"`
}

// ConversationSummary is the admin inbox rollup for one student.
type ConversationSummary struct {
	StudentEmail  string    `json:"student_email"`
	StudentName   string    `json:"student_name"`
	UnreadCount   int       `json:"unread_count"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
}
