package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSend     Action = "send"
	ActionMarkRead Action = "mark_read"
	ActionPing     Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// SendRequest is sent by the client to post a chat message.
type SendRequest struct {
	Action  Action `json:"action"`
	Message string `json:"message"`
}

// MarkReadRequest is sent by the client after rendering the conversation.
type MarkReadRequest struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError   Event = "error"
	EventMessage Event = "message"
	EventRead    Event = "read"
	EventPong    Event = "pong"
)

// MessageEvent delivers a chat message to the other side of the conversation.
type MessageEvent struct {
	Event     Event  `json:"event"`
	ID        int    `json:"id"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	AdminName string `json:"admin_name,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ReadEvent notifies that the peer has read the conversation.
type ReadEvent struct {
	Event Event `json:"event"`
	Count int64 `json:"count"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
