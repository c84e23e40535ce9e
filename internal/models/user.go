package models

import "time"

const (
	RolePatient = "patient"
	RolePartner = "partner"
)

type User struct {
	ID        string    `gorm:"primaryKey"`
	Email     string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type LoginCode struct {
	ID        string    `gorm:"primaryKey"`
	Email     string    `gorm:"not null;index"`
	CodeHash  string    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Used      bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
}
