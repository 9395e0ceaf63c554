package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/summitprep/satprep-backend/internal/booking"
	"github.com/summitprep/satprep-backend/internal/response"
)

// BookingHandler exposes read-only reporting from the external booking
// platform.
type BookingHandler struct {
	client *booking.Client
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(client *booking.Client) *BookingHandler {
	return &BookingHandler{client: client}
}

// ListCustomers godoc
// GET /api/v1/admin/booking/customers
func (h *BookingHandler) ListCustomers(c *gin.Context) {
	customers, err := h.client.ListCustomers(c.Request.Context())
	if err != nil {
		h.failUpstream(c, err)
		return
	}
	if customers == nil {
		customers = []booking.Customer{}
	}
	response.Success(c, http.StatusOK, gin.H{"customers": customers})
}

// ListAppointments godoc
// GET /api/v1/admin/booking/appointments
func (h *BookingHandler) ListAppointments(c *gin.Context) {
	appointments, err := h.client.ListAppointments(c.Request.Context())
	if err != nil {
		h.failUpstream(c, err)
		return
	}
	if appointments == nil {
		appointments = []booking.Appointment{}
	}
	response.Success(c, http.StatusOK, gin.H{"appointments": appointments})
}

func (h *BookingHandler) failUpstream(c *gin.Context, err error) {
	if errors.Is(err, booking.ErrNotConfigured) {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrUpstreamFailure)
		return
	}
	response.Fail(c, http.StatusBadGateway, response.ErrUpstreamFailure)
}
