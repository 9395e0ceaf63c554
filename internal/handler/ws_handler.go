package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/summitprep/satprep-backend/internal/middleware"
	"github.com/summitprep/satprep-backend/internal/model"
	"github.com/summitprep/satprep-backend/internal/service"
	ws "github.com/summitprep/satprep-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler handles WebSocket chat streaming. Messages are fanned out
// through redis pub/sub so sockets on different instances stay in sync.
type WSHandler struct {
	chatService    *service.ChatService
	studentService *service.StudentService
	adminService   *service.AdminService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(
	chatService *service.ChatService,
	studentService *service.StudentService,
	adminService *service.AdminService,
	log zerolog.Logger,
	allowedOrigins []string,
) *WSHandler {
	return &WSHandler{
		chatService:    chatService,
		studentService: studentService,
		adminService:   adminService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// StudentChatStream godoc
// WS /ws/v1/student/chat
// Upgrades to WebSocket for the student side of the support conversation.
func (h *WSHandler) StudentChatStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	student, err := h.studentService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
		return
	}

	h.stream(c, student.Email, model.SenderStudent, "")
}

// AdminChatStream godoc
// WS /ws/v1/admin/chat/:email
// Upgrades to WebSocket for the admin side of one student's conversation.
func (h *WSHandler) AdminChatStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	admin, err := h.adminService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "admin not found"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(c.Param("email")))
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student email required"})
		return
	}

	h.stream(c, email, model.SenderAdmin, admin.Name)
}

func (h *WSHandler) stream(c *gin.Context, studentEmail string, side model.ChatSender, adminName string) {
	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.NewConn(raw)
	defer conn.Close()

	wsLog := h.log.With().
		Str("student_email", studentEmail).
		Str("side", string(side)).
		Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := h.chatService.Subscribe(ctx, studentEmail)
	defer sub.Close()

	// Fan-in goroutine: redis pub/sub → socket. Conn serializes its writes
	// against the read loop's. Exits when the subscription closes or a
	// write fails.
	go func() {
		for redisMsg := range sub.Channel() {
			var ev service.ChatEvent
			if err := json.Unmarshal([]byte(redisMsg.Payload), &ev); err != nil {
				wsLog.Warn().Err(err).Msg("bad chat event payload")
				continue
			}
			if err := h.forward(conn, ev); err != nil {
				cancel()
				return
			}
		}
	}()

	wsLog.Info().Msg("chat socket connected")

	for {
		var envelope ws.RequestEnvelope
		raw, err := conn.ReadRaw()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("unexpected close")
			} else {
				wsLog.Debug().Msg("connection closed")
			}
			break
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			conn.WriteError("malformed payload")
			continue
		}

		switch envelope.Action {
		case ws.ActionSend:
			var req ws.SendRequest
			if err := json.Unmarshal(raw, &req); err != nil || strings.TrimSpace(req.Message) == "" {
				conn.WriteError("message is required")
				continue
			}
			if _, err := h.chatService.Send(ctx, studentEmail, side, adminName, strings.TrimSpace(req.Message)); err != nil {
				wsLog.Error().Err(err).Msg("failed to send chat message")
				conn.WriteError("send failed")
			}
		case ws.ActionMarkRead:
			// Reading marks the OTHER side's messages as read.
			from := model.SenderAdmin
			if side == model.SenderAdmin {
				from = model.SenderStudent
			}
			if _, err := h.chatService.MarkRead(ctx, studentEmail, from); err != nil {
				wsLog.Error().Err(err).Msg("failed to mark conversation read")
				conn.WriteError("mark read failed")
			}
		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(envelope.Action)).Msg("unknown action")
			conn.WriteError("unknown action: " + string(envelope.Action))
		}
	}
}

func (h *WSHandler) forward(conn *ws.Conn, ev service.ChatEvent) error {
	switch ev.Kind {
	case "message":
		if ev.Message == nil {
			return nil
		}
		return conn.WriteTyped(ws.MessageEvent{
			Event:     ws.EventMessage,
			ID:        ev.Message.ID,
			Sender:    string(ev.Message.Sender),
			Message:   ev.Message.Message,
			AdminName: ev.Message.AdminName,
			CreatedAt: ev.Message.CreatedAt.Format(time.RFC3339),
		})
	case "read":
		return conn.WriteTyped(ws.ReadEvent{Event: ws.EventRead, Count: ev.Count})
	default:
		return nil
	}
}
