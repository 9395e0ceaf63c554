package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// PasswordResetKey returns the cache key holding a pending password-reset token.
func (r *CacheKeyStruct) PasswordResetKey(token string) string {
	return fmt.Sprintf("pwreset:%s", token)
}

// ChatChannel returns the Redis PubSub channel for a student's conversation.
func (r *CacheKeyStruct) ChatChannel(studentEmail string) string {
	return fmt.Sprintf("chat:%s", studentEmail)
}

// EnrollmentCountKey returns the cache key for an offering's enrollment count.
func (r *CacheKeyStruct) EnrollmentCountKey(offeringID int) string {
	return fmt.Sprintf("offering:%d:enrollment", offeringID)
}

var CacheKey = NewCacheKeyStruct()
