package model

import "time"

// Ambassador is a student ambassador whose personal code attributes signups.
type Ambassador struct {
	ID            int       `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	ReferralCount int       `json:"referral_count"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateAmbassadorRequest is the admin payload for creating or updating an ambassador.
type CreateAmbassadorRequest struct {
	Code     string `json:"code" binding:"required,min=3,max=30"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	IsActive *bool  `json:"is_active" binding:"required"`
}
