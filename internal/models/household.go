package models

import "time"

type Household struct {
	ID          string    `gorm:"primaryKey"`
	OwnerUserID string    `gorm:"not null;index"`
	PatientName string    `gorm:"not null;default:''"`
	CreatedAt   time.Time `gorm:"not null"`
}

type HouseholdMember struct {
	HouseholdID string     `gorm:"primaryKey"`
	UserID      string     `gorm:"primaryKey"`
	Role        string     `gorm:"not null;default:partner"`
	DisplayName string     `gorm:"not null;default:''"`
	CreatedAt   time.Time  `gorm:"not null"`
	RemovedAt   *time.Time
}

type HouseholdInvite struct {
	ID               string     `gorm:"primaryKey" json:"id"`
	HouseholdID      string     `gorm:"not null;index" json:"household_id"`
	InvitedEmail     string     `gorm:"not null" json:"invited_email"`
	Role             string     `gorm:"not null;default:partner" json:"role"`
	ExpiresAt        time.Time  `gorm:"not null" json:"expires_at"`
	AcceptedAt       *time.Time `json:"accepted_at,omitempty"`
	AcceptedByUserID *string    `json:"accepted_by_user_id,omitempty"`
	Revoked          bool       `gorm:"not null;default:false" json:"revoked"`
	CreatedAt        time.Time  `gorm:"not null" json:"created_at"`
}

// IsPending reports whether the invite can still be claimed at now.
func (invite HouseholdInvite) IsPending(now time.Time) bool {
	return invite.AcceptedAt == nil && !invite.Revoked && invite.ExpiresAt.After(now)
}

type ShareLink struct {
	ID             string    `gorm:"primaryKey"`
	HouseholdID    string    `gorm:"not null;index"`
	TokenHash      string    `gorm:"not null;uniqueIndex"`
	ExpiresAt      time.Time `gorm:"not null"`
	Revoked        bool      `gorm:"not null;default:false"`
	LastAccessedAt *time.Time
	CreatedAt      time.Time `gorm:"not null"`
}
