package model

import "time"

// OfferingKind distinguishes the two schedule dimensions.
type OfferingKind string

const (
	OfferingClassTime      OfferingKind = "class_time"
	OfferingDiagnosticTest OfferingKind = "diagnostic_test"
)

// Offering is a named, time-boxed class slot or diagnostic test date that
// students enroll into by name.
type Offering struct {
	ID        int          `json:"id"`
	Kind      OfferingKind `json:"kind"`
	Name      string       `json:"name"`
	StartsAt  time.Time    `json:"starts_at"`
	Capacity  int          `json:"capacity"`
	IsActive  bool         `json:"is_active"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	// CurrentEnrollment is derived on read by counting students whose
	// schedule references this offering's name. Never stored.
	CurrentEnrollment int `json:"current_enrollment"`
}

// RemainingSeats returns how many seats are left, floored at zero.
func (o *Offering) RemainingSeats() int {
	if left := o.Capacity - o.CurrentEnrollment; left > 0 {
		return left
	}
	return 0
}

// OfferingEnrollment is a per-offering headcount row for the admin dashboard.
type OfferingEnrollment struct {
	OfferingID int          `json:"offering_id"`
	Kind       OfferingKind `json:"kind"`
	Name       string       `json:"name"`
	Enrolled   int          `json:"enrolled"`
}

// CreateOfferingRequest is the admin payload for creating or updating an offering.
type CreateOfferingRequest struct {
	Kind     OfferingKind `json:"kind" binding:"required,oneof=class_time diagnostic_test"`
	Name     string       `json:"name" binding:"required,min=2,max=100"`
	StartsAt time.Time    `json:"starts_at" binding:"required"`
	Capacity int          `json:"capacity" binding:"required,min=1,max=1000"`
	IsActive *bool        `json:"is_active" binding:"required"`
}
