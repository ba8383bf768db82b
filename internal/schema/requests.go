package schema

import "care_wallet/internal/domain"

// Password policy shared by every flow. bcrypt cannot hash more than
// MaxPasswordBytes bytes, so the upper bound counts bytes, not characters.
const (
	MinPasswordLength = 8
	MaxPasswordBytes  = 72
)

type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8,maxbytes=72"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
	FullName        string `json:"full_name" binding:"required,max=120"`
	AgreeTerms      bool   `json:"agree_terms" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

type ProfileRequest struct {
	FullName              string `json:"full_name" binding:"required,max=120"`
	Phone                 string `json:"phone" binding:"required,max=40"`
	DateOfBirth           string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	EmergencyContactName  string `json:"emergency_contact_name" binding:"max=120"`
	EmergencyContactPhone string `json:"emergency_contact_phone" binding:"max=40"`
}

// Profile converts the request into the stored profile.
func (r ProfileRequest) Profile() domain.Profile {
	return domain.Profile{
		FullName:              r.FullName,
		Phone:                 r.Phone,
		DateOfBirth:           r.DateOfBirth,
		EmergencyContactName:  r.EmergencyContactName,
		EmergencyContactPhone: r.EmergencyContactPhone,
	}
}

// WalletSetupRequest completes account setup: profile details plus wallet creation.
type WalletSetupRequest struct {
	FullName              string `json:"full_name" binding:"required,max=120"`
	Phone                 string `json:"phone" binding:"required,max=40"`
	DateOfBirth           string `json:"date_of_birth" binding:"required,datetime=2006-01-02"`
	EmergencyContactName  string `json:"emergency_contact_name" binding:"required,max=120"`
	EmergencyContactPhone string `json:"emergency_contact_phone" binding:"required,max=40"`
	AgreeTerms            bool   `json:"agree_terms" binding:"required"`
}

// Profile converts the request into the stored profile.
func (r WalletSetupRequest) Profile() domain.Profile {
	return domain.Profile{
		FullName:              r.FullName,
		Phone:                 r.Phone,
		DateOfBirth:           r.DateOfBirth,
		EmergencyContactName:  r.EmergencyContactName,
		EmergencyContactPhone: r.EmergencyContactPhone,
	}
}

type DepositRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0,lte=100000,cents"`
}

type PaymentRequest struct {
	Amount         float64 `json:"amount" binding:"required,gt=0,cents"`
	RecipientName  string  `json:"recipient_name" binding:"required,max=120"`
	RecipientEmail string  `json:"recipient_email" binding:"omitempty,email"`
	RecipientPhone string  `json:"recipient_phone" binding:"max=40"`
	Description    string  `json:"description" binding:"max=500"`
}

type HealthServiceRequest struct {
	ServiceType      string `json:"service_type" binding:"required,oneof=ambulance consultation home_visit lab_test therapy"`
	PatientName      string `json:"patient_name" binding:"required,max=120"`
	PatientPhone     string `json:"patient_phone" binding:"required,max=40"`
	PatientAge       int    `json:"patient_age" binding:"omitempty,gte=0,lte=130"`
	EmergencyContact string `json:"emergency_contact" binding:"max=120"`
	PreferredDate    string `json:"preferred_date" binding:"required,datetime=2006-01-02"`
	PreferredTime    string `json:"preferred_time" binding:"required,datetime=15:04"`
	Location         string `json:"location" binding:"max=255"`
	Notes            string `json:"notes" binding:"max=1000"`
}

// ChatRequest carries one user turn. LocalMessages are messages the client
// buffered before it had a session on the server; anonymous callers send
// their whole conversation this way.
type ChatRequest struct {
	Message       string               `json:"message" binding:"required,max=4000"`
	SessionID     string               `json:"session_id" binding:"max=64"`
	LocalMessages []domain.ChatMessage `json:"local_messages"`
}

type PaymentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending completed failed cancelled refunded"`
	Reason string `json:"reason" binding:"max=255"`
}

type SettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}
