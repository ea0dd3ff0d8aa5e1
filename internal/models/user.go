package models

import "gorm.io/gorm"

type User struct {
	gorm.Model

	TenantID     string `gorm:"not null;index" json:"tenant_id"`
	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
}
