package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/summitprep/satprep-backend/internal/middleware"
	"github.com/summitprep/satprep-backend/internal/model"
	"github.com/summitprep/satprep-backend/internal/response"
	"github.com/summitprep/satprep-backend/internal/service"
	"github.com/summitprep/satprep-backend/internal/validator"
)

// ChatHandler handles the REST side of the support chat: history, sending
// when no socket is open, and the admin inbox.
type ChatHandler struct {
	chatService    *service.ChatService
	studentService *service.StudentService
	adminService   *service.AdminService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(
	chatService *service.ChatService,
	studentService *service.StudentService,
	adminService *service.AdminService,
) *ChatHandler {
	return &ChatHandler{
		chatService:    chatService,
		studentService: studentService,
		adminService:   adminService,
	}
}

// GetStudentConversation godoc
// GET /api/v1/student/chat
// Returns the student's conversation history and marks admin messages read.
func (h *ChatHandler) GetStudentConversation(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	student, err := h.studentService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	h.conversation(c, student.Email, model.SenderAdmin)
}

// SendStudentMessage godoc
// POST /api/v1/student/chat
func (h *ChatHandler) SendStudentMessage(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	student, err := h.studentService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	h.send(c, student.Email, model.SenderStudent, "")
}

// MarkStudentRead godoc
// POST /api/v1/student/chat/read
// Marks all admin messages in the student's conversation as read.
func (h *ChatHandler) MarkStudentRead(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	student, err := h.studentService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	n, err := h.chatService.MarkRead(c.Request.Context(), student.Email, model.SenderAdmin)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"read_count": n})
}

// MarkAdminRead godoc
// POST /api/v1/admin/chat/:email/read
// Marks all student messages in the given conversation as read.
func (h *ChatHandler) MarkAdminRead(c *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(c.Param("email")))
	if email == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	n, err := h.chatService.MarkRead(c.Request.Context(), email, model.SenderStudent)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"read_count": n})
}

// ListConversations godoc
// GET /api/v1/admin/chat
// Returns the admin inbox: one summary row per student conversation.
func (h *ChatHandler) ListConversations(c *gin.Context) {
	summaries, err := h.chatService.ListConversationSummaries(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if summaries == nil {
		summaries = []model.ConversationSummary{}
	}

	response.Success(c, http.StatusOK, gin.H{"conversations": summaries})
}

// GetAdminConversation godoc
// GET /api/v1/admin/chat/:email
// Returns one student's conversation and marks student messages read.
func (h *ChatHandler) GetAdminConversation(c *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(c.Param("email")))
	if email == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	h.conversation(c, email, model.SenderStudent)
}

// SendAdminMessage godoc
// POST /api/v1/admin/chat/:email
func (h *ChatHandler) SendAdminMessage(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	admin, err := h.adminService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	email := strings.ToLower(strings.TrimSpace(c.Param("email")))
	if email == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	h.send(c, email, model.SenderAdmin, admin.Name)
}

func (h *ChatHandler) conversation(c *gin.Context, studentEmail string, markFrom model.ChatSender) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	messages, total, err := h.chatService.ListConversation(c.Request.Context(), studentEmail, perPage, (page-1)*perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if messages == nil {
		messages = []model.ChatMessage{}
	}

	// Loading the conversation implies the reader has now seen it.
	if _, err := h.chatService.MarkRead(c.Request.Context(), studentEmail, markFrom); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	totalPages := (total + perPage - 1) / perPage
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"messages": messages}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	})
}

func (h *ChatHandler) send(c *gin.Context, studentEmail string, sender model.ChatSender, adminName string) {
	var req model.SendMessageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	msg, err := h.chatService.Send(c.Request.Context(), studentEmail, sender, adminName, strings.TrimSpace(req.Message))
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"message": msg})
}
