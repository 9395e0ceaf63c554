// Package booking is a thin client for the external appointment-scheduling
// platform. Calls are best-effort from the caller's perspective: failures are
// logged upstream and never roll back the primary mutation.
package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/summitprep/satprep-backend/internal/config"
)

// ErrNotConfigured is returned when no booking base URL is set.
var ErrNotConfigured = errors.New("booking platform not configured")

// Customer is the platform's customer record.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Appointment is a scheduled appointment, read-only reporting use.
type Appointment struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Type       string    `json:"type"`
	StartsAt   time.Time `json:"starts_at"`
	Status     string    `json:"status"`
}

// Client talks to the booking platform's JSON API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a Client with an explicit request timeout.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.BookingBaseURL,
		apiKey:  cfg.BookingAPIKey,
		http:    &http.Client{Timeout: cfg.BookingTimeout},
	}
}

// CreateCustomer registers a customer and returns the platform's id.
func (c *Client) CreateCustomer(ctx context.Context, name, email, phone string) (string, error) {
	if c.baseURL == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(map[string]string{"name": name, "email": email, "phone": phone})
	if err != nil {
		return "", err
	}

	var created Customer
	if err := c.do(ctx, http.MethodPost, "/v1/customers", bytes.NewReader(body), &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// ListCustomers retrieves all customers.
func (c *Client) ListCustomers(ctx context.Context) ([]Customer, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	var out struct {
		Customers []Customer `json:"customers"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/customers", nil, &out); err != nil {
		return nil, err
	}
	return out.Customers, nil
}

// ListAppointments retrieves all appointments.
func (c *Client) ListAppointments(ctx context.Context) ([]Appointment, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	var out struct {
		Appointments []Appointment `json:"appointments"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/appointments", nil, &out); err != nil {
		return nil, err
	}
	return out.Appointments, nil
}

func (c *Client) do(ctx context.Context, method, path string, body *bytes.Reader, out interface{}) error {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("booking platform status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
