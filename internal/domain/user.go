package domain

import "time"

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User Model
type User struct {
	ID              uint       `gorm:"primaryKey" json:"id"`                                                   // Primary key
	Email           string     `gorm:"size:191;uniqueIndex;not null" json:"email"`                             // Unique, lowercased email
	Password        string     `gorm:"not null" json:"-"`                                                      // Hashed password
	Role            string     `gorm:"size:20;default:user" json:"role"`                                       // Role: user or admin
	EmailVerifiedAt *time.Time `json:"email_verified_at"`                                                      // Set once the verification link is used
	Profile         Profile    `gorm:"embedded" json:"profile"`                                                // Free-form profile metadata
	Wallet          *Wallet    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"wallet,omitempty"` // One-to-one relationship with Wallet
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Profile is the user-editable part of an account.
type Profile struct {
	FullName              string `gorm:"size:120" json:"full_name"`
	Phone                 string `gorm:"size:40" json:"phone"`
	DateOfBirth           string `gorm:"size:10" json:"date_of_birth"` // YYYY-MM-DD
	EmergencyContactName  string `gorm:"size:120" json:"emergency_contact_name"`
	EmergencyContactPhone string `gorm:"size:40" json:"emergency_contact_phone"`
}

// IsVerified reports whether the email address has been confirmed.
func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}
