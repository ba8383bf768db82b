package workflow

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"care_wallet/internal/domain"
	"care_wallet/internal/schema"
)

// Flow describes one multi-step form: its steps, the endpoint the finished
// draft goes to, and how the draft becomes the request body.
type Flow[P any] struct {
	Name    string
	Path    string
	Steps   []Step
	Payload func(Draft) (P, error)
}

// Draft field names shared with the JSON bodies.
const (
	FieldEmail                 = "email"
	FieldPassword              = "password"
	FieldConfirmPassword       = "confirm_password"
	FieldFullName              = "full_name"
	FieldAgreeTerms            = "agree_terms"
	FieldPhone                 = "phone"
	FieldDateOfBirth           = "date_of_birth"
	FieldEmergencyContactName  = "emergency_contact_name"
	FieldEmergencyContactPhone = "emergency_contact_phone"
	FieldAmount                = "amount"
	FieldRecipientName         = "recipient_name"
	FieldRecipientEmail        = "recipient_email"
	FieldRecipientPhone        = "recipient_phone"
	FieldDescription           = "description"
	FieldServiceType           = "service_type"
	FieldPatientName           = "patient_name"
	FieldPatientPhone          = "patient_phone"
	FieldPatientAge            = "patient_age"
	FieldEmergencyContact      = "emergency_contact"
	FieldPreferredDate         = "preferred_date"
	FieldPreferredTime         = "preferred_time"
	FieldLocation              = "location"
	FieldNotes                 = "notes"
)

func trimmed(d Draft, field string) string {
	return strings.TrimSpace(d[field])
}

// RegistrationFlow creates an account.
func RegistrationFlow() Flow[schema.RegisterRequest] {
	return Flow[schema.RegisterRequest]{
		Name: "registration",
		Path: "/api/auth/register",
		Steps: []Step{
			{Name: "Account", Validate: Validate(
				Required(FieldEmail, "Email is required"),
				Matches(FieldEmail, EmailFormat, "Please enter a valid email address"),
				MinLength(FieldPassword, schema.MinPasswordLength, "Password must be at least 8 characters"),
				MaxBytes(FieldPassword, schema.MaxPasswordBytes, "Password is too long"),
				EqualFields(FieldPassword, FieldConfirmPassword, "Passwords do not match"),
			)},
			{Name: "Profile", Validate: Validate(
				Required(FieldFullName, "Full name is required"),
				MaxLength(FieldFullName, 120, "Full name is too long"),
				Checked(FieldAgreeTerms, "You must agree to the terms"),
			)},
		},
		Payload: func(d Draft) (schema.RegisterRequest, error) {
			return schema.RegisterRequest{
				Email:           trimmed(d, FieldEmail),
				Password:        d[FieldPassword],
				ConfirmPassword: d[FieldConfirmPassword],
				FullName:        trimmed(d, FieldFullName),
				AgreeTerms:      d[FieldAgreeTerms] == "true",
			}, nil
		},
	}
}

// AccountSetupFlow completes the profile and creates the wallet.
func AccountSetupFlow() Flow[schema.WalletSetupRequest] {
	return Flow[schema.WalletSetupRequest]{
		Name: "account_setup",
		Path: "/api/wallet/setup",
		Steps: []Step{
			{Name: "Personal Details", Validate: Validate(
				Required(FieldFullName, "Full name is required"),
				MaxLength(FieldFullName, 120, "Full name is too long"),
				Required(FieldPhone, "Phone number is required"),
				Matches(FieldPhone, PhoneFormat, "Please enter a valid phone number"),
				Required(FieldDateOfBirth, "Date of birth is required"),
				Date(FieldDateOfBirth, "Date of birth must be YYYY-MM-DD"),
			)},
			{Name: "Emergency Contact", Validate: Validate(
				Required(FieldEmergencyContactName, "Emergency contact name is required"),
				MaxLength(FieldEmergencyContactName, 120, "Emergency contact name is too long"),
				Required(FieldEmergencyContactPhone, "Emergency contact phone is required"),
				Matches(FieldEmergencyContactPhone, PhoneFormat, "Please enter a valid emergency contact phone"),
			)},
			{Name: "Review & Confirm", Validate: Checked(FieldAgreeTerms, "You must agree to the terms")},
		},
		Payload: func(d Draft) (schema.WalletSetupRequest, error) {
			return schema.WalletSetupRequest{
				FullName:              trimmed(d, FieldFullName),
				Phone:                 trimmed(d, FieldPhone),
				DateOfBirth:           trimmed(d, FieldDateOfBirth),
				EmergencyContactName:  trimmed(d, FieldEmergencyContactName),
				EmergencyContactPhone: trimmed(d, FieldEmergencyContactPhone),
				AgreeTerms:            d[FieldAgreeTerms] == "true",
			}, nil
		},
	}
}

// PaymentFlow sends money from the caller's wallet.
func PaymentFlow() Flow[schema.PaymentRequest] {
	return Flow[schema.PaymentRequest]{
		Name: "payment",
		Path: "/api/payment",
		Steps: []Step{
			{Name: "Recipient", Validate: Validate(
				Required(FieldRecipientName, "Recipient name is required"),
				MaxLength(FieldRecipientName, 120, "Recipient name is too long"),
				Matches(FieldRecipientEmail, EmailFormat, "Please enter a valid recipient email"),
				Matches(FieldRecipientPhone, PhoneFormat, "Please enter a valid recipient phone"),
			)},
			{Name: "Amount", Validate: Validate(
				Required(FieldAmount, "Amount is required"),
				PositiveAmount(FieldAmount, "Amount must be greater than zero with at most 2 decimal places"),
				MaxLength(FieldDescription, 500, "Description is too long"),
			)},
			{Name: "Review & Confirm"},
		},
		Payload: func(d Draft) (schema.PaymentRequest, error) {
			amount, err := strconv.ParseFloat(trimmed(d, FieldAmount), 64)
			if err != nil {
				return schema.PaymentRequest{}, err
			}
			return schema.PaymentRequest{
				Amount:         amount,
				RecipientName:  trimmed(d, FieldRecipientName),
				RecipientEmail: trimmed(d, FieldRecipientEmail),
				RecipientPhone: trimmed(d, FieldRecipientPhone),
				Description:    trimmed(d, FieldDescription),
			}, nil
		},
	}
}

// ServiceTypeNames lists the bookable services in a stable order.
func ServiceTypeNames() []string {
	names := make([]string, 0, len(domain.ServiceTypes))
	for name := range domain.ServiceTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HealthBookingFlow books an emergency or health service. now decides which
// preferred dates are in the past.
func HealthBookingFlow(now func() time.Time) Flow[schema.HealthServiceRequest] {
	return Flow[schema.HealthServiceRequest]{
		Name: "health_booking",
		Path: "/api/health-service",
		Steps: []Step{
			{Name: "Service Details", Validate: Validate(
				Required(FieldServiceType, "Please select a service"),
				OneOf(FieldServiceType, ServiceTypeNames(), "Please select a valid service"),
				Required(FieldPreferredDate, "Preferred date is required"),
				Matches(FieldPreferredDate, DateFormat, "Preferred date must be YYYY-MM-DD"),
				FutureOrToday(FieldPreferredDate, now, "Preferred date cannot be in the past"),
				Required(FieldPreferredTime, "Preferred time is required"),
				Matches(FieldPreferredTime, TimeFormat, "Preferred time must be HH:MM"),
			)},
			{Name: "Patient Information", Validate: Validate(
				Required(FieldPatientName, "Patient name is required"),
				MaxLength(FieldPatientName, 120, "Patient name is too long"),
				Required(FieldPatientPhone, "Patient phone is required"),
				Matches(FieldPatientPhone, PhoneFormat, "Please enter a valid patient phone"),
				Matches(FieldPatientAge, ageFormat, "Patient age must be a number between 0 and 130"),
				MaxLength(FieldEmergencyContact, 120, "Emergency contact is too long"),
				MaxLength(FieldLocation, 255, "Location is too long"),
				MaxLength(FieldNotes, 1000, "Notes are too long"),
			)},
			{Name: "Review & Confirm"},
		},
		Payload: func(d Draft) (schema.HealthServiceRequest, error) {
			req := schema.HealthServiceRequest{
				ServiceType:      d[FieldServiceType],
				PatientName:      trimmed(d, FieldPatientName),
				PatientPhone:     trimmed(d, FieldPatientPhone),
				EmergencyContact: trimmed(d, FieldEmergencyContact),
				PreferredDate:    trimmed(d, FieldPreferredDate),
				PreferredTime:    trimmed(d, FieldPreferredTime),
				Location:         trimmed(d, FieldLocation),
				Notes:            trimmed(d, FieldNotes),
			}
			if v := trimmed(d, FieldPatientAge); v != "" {
				age, err := strconv.Atoi(v)
				if err != nil {
					return req, err
				}
				req.PatientAge = age
			}
			return req, nil
		},
	}
}
