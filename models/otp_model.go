package models

import (
	"strings"
	"time"
)

type OtpModel struct {
	Identifier string    `bson:"_id" json:"identifier"`
	Code       string    `bson:"code" json:"-"`
	IssuedAt   time.Time `bson:"issuedAt" json:"issuedAt"`
	ExpiresAt  time.Time `bson:"expiresAt" json:"expiresAt"`
	Consumed   bool      `bson:"consumed" json:"consumed"`
}

func (m *OtpModel) Id() string {
	return m.Identifier
}

// IsExpired reports whether now is past the expiry instant.
func (m *OtpModel) IsExpired(now time.Time) bool {
	return now.After(m.ExpiresAt)
}

// NormalizeEmail lower-cases and trims an address so it can key records.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
