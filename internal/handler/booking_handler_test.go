package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/summitprep/satprep-backend/internal/booking"
	"github.com/summitprep/satprep-backend/internal/config"
)

func bookingRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewBookingHandler(booking.NewClient(cfg))
	r := gin.New()
	r.GET("/customers", h.ListCustomers)
	r.GET("/appointments", h.ListAppointments)
	return r
}

func TestBookingReporting(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/customers":
			fmt.Fprint(w, `{"customers":[{"id":"c1","name":"Kid","email":"kid@example.com"}]}`)
		case "/v1/appointments":
			fmt.Fprint(w, `{"appointments":[{"id":"a1","customer_id":"c1","type":"diagnostic","status":"confirmed"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer upstream.Close()

	r := bookingRouter(&config.Config{BookingBaseURL: upstream.URL, BookingTimeout: time.Second})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/customers", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("customers status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"c1"`) {
		t.Errorf("customers body missing upstream record: %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/appointments", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("appointments status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"a1"`) {
		t.Errorf("appointments body missing upstream record: %s", w.Body.String())
	}
}

func TestBookingReportingNotConfigured(t *testing.T) {
	r := bookingRouter(&config.Config{BookingTimeout: time.Second})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/customers", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 when no booking platform is configured", w.Code)
	}
}
