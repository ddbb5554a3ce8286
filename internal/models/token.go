package models

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrIncompleteClaims = errors.New("token payload is missing subject or newsletter")

// TrackingClaims is the payload of a tracking token. Subject is empty for anonymous
// recipients.
type TrackingClaims struct {
	NewsletterID string `json:"nwl"`
	ArticleID    string `json:"art,omitempty"`
	jwt.RegisteredClaims
}

// CheckShape rejects payloads whose signature verified but which lack the identifiers
// the ingress handlers need.
func (c *TrackingClaims) CheckShape() error {
	if c == nil || strings.TrimSpace(c.Subject) == "" || strings.TrimSpace(c.NewsletterID) == "" {
		return ErrIncompleteClaims
	}
	return nil
}

// TrackingTokenRecord is the persisted side of a token: only its hash is stored.
type TrackingTokenRecord struct {
	ID            uint      `gorm:"primaryKey"`
	TokenHash     string    `gorm:"size:64;uniqueIndex;not null"`
	SubjectID     string    `gorm:"size:64;index"`
	IssuedPayload string    `gorm:"type:text"`
	ExpiresAt     time.Time `gorm:"not null"`
	Revoked       bool      `gorm:"not null;default:false"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (TrackingTokenRecord) TableName() string {
	return "tracking_tokens"
}
