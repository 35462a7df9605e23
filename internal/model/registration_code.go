package model

import "time"

// RegistrationCode is a one-time code handed out by admins; redeeming it creates a voter account.
type RegistrationCode struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	IsUsed    bool       `json:"is_used"`
	UsedBy    *string    `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
