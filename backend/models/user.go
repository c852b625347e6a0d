package models

import (
	"strings"

	"gorm.io/gorm"
)

const (
	UserTypeStudent = "student"
	UserTypeTeacher = "teacher"
	UserTypeAdmin   = "admin"

	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

type User struct {
	gorm.Model
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null" json:"-"`
	FirstName    string
	LastName     string
	UserType     string `gorm:"default:student"` // student, teacher, admin
	Bio          string
	Status       string `gorm:"default:active"` // active, suspended
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Initials returns the two-letter avatar label shown next to
// reviews and comments.
func (u *User) Initials() string {
	initials := ""
	if u.FirstName != "" {
		initials += string([]rune(u.FirstName)[0])
	}
	if u.LastName != "" {
		initials += string([]rune(u.LastName)[0])
	}
	return strings.ToUpper(initials)
}

func (u *User) IsTeacher() bool {
	return u.UserType == UserTypeTeacher
}

func (u *User) IsAdmin() bool {
	return u.UserType == UserTypeAdmin
}

func (u *User) IsSuspended() bool {
	return u.Status == UserStatusSuspended
}
