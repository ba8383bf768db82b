package workflow

import (
	"strings"
	"testing"
	"time"

	"care_wallet/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2026, 5, 10, 9, 0, 0, 0, time.Local) }

// fill walks every step, setting fields then advancing, and fails the test
// if any step rejects the draft.
func fill(t *testing.T, m *Machine, d Draft) {
	t.Helper()
	for k, v := range d {
		m.SetField(k, v)
	}
	for !m.OnLastStep() {
		require.NoError(t, m.Advance(), "step %q", m.Step().Name)
	}
	require.NoError(t, m.validateCurrent(), "step %q", m.Step().Name)
}

func registrationDraft() Draft {
	return Draft{
		FieldEmail:           "jane@example.com",
		FieldPassword:        "s3cretpass",
		FieldConfirmPassword: "s3cretpass",
		FieldFullName:        "Jane Doe",
		FieldAgreeTerms:      "true",
	}
}

func setupDraft() Draft {
	return Draft{
		FieldFullName:              "Jane Doe",
		FieldPhone:                 "+15550100",
		FieldDateOfBirth:           "1990-04-12",
		FieldEmergencyContactName:  "John Doe",
		FieldEmergencyContactPhone: "+15550101",
		FieldAgreeTerms:            "true",
	}
}

func paymentDraft() Draft {
	return Draft{
		FieldRecipientName:  "Dr. Smith",
		FieldRecipientEmail: "smith@example.com",
		FieldAmount:         "40",
		FieldDescription:    "Consultation",
	}
}

func bookingDraft() Draft {
	return Draft{
		FieldServiceType:   "consultation",
		FieldPreferredDate: "2026-05-10",
		FieldPreferredTime: "14:30",
		FieldPatientName:   "Jane Doe",
		FieldPatientPhone:  "+15550100",
		FieldPatientAge:    "36",
	}
}

// Drafts that pass every step build payloads the server's binding rules accept.
func TestPayloadsCarryRequiredFields(t *testing.T) {
	t.Run("registration", func(t *testing.T) {
		f := RegistrationFlow()
		s := NewSession[schema.RegisterRequest, schema.RegisterResponse](f, nil, "")
		fill(t, s.Machine(), registrationDraft())
		p, err := f.Payload(s.Machine().Draft())
		require.NoError(t, err)
		assert.NoError(t, schema.Validate(p))
	})
	t.Run("account setup", func(t *testing.T) {
		f := AccountSetupFlow()
		s := NewSession[schema.WalletSetupRequest, schema.WalletResult](f, nil, "")
		fill(t, s.Machine(), setupDraft())
		p, err := f.Payload(s.Machine().Draft())
		require.NoError(t, err)
		assert.NoError(t, schema.Validate(p))
	})
	t.Run("payment", func(t *testing.T) {
		f := PaymentFlow()
		s := NewSession[schema.PaymentRequest, schema.PaymentResult](f, nil, "")
		fill(t, s.Machine(), paymentDraft())
		p, err := f.Payload(s.Machine().Draft())
		require.NoError(t, err)
		assert.NoError(t, schema.Validate(p))
		assert.Equal(t, 40.0, p.Amount)
	})
	t.Run("health booking", func(t *testing.T) {
		f := HealthBookingFlow(fixedNow)
		s := NewSession[schema.HealthServiceRequest, schema.BookingResult](f, nil, "")
		fill(t, s.Machine(), bookingDraft())
		p, err := f.Payload(s.Machine().Draft())
		require.NoError(t, err)
		assert.NoError(t, schema.Validate(p))
		assert.Equal(t, 36, p.PatientAge)
	})
}

// Removing any field a step requires keeps the machine on that step.
func TestEachRequiredFieldBlocksAdvance(t *testing.T) {
	flows := []struct {
		steps []Step
		draft Draft
		keys  []string
	}{
		{RegistrationFlow().Steps, registrationDraft(), []string{FieldEmail, FieldPassword, FieldFullName, FieldAgreeTerms}},
		{AccountSetupFlow().Steps, setupDraft(), []string{FieldFullName, FieldPhone, FieldDateOfBirth, FieldEmergencyContactName, FieldEmergencyContactPhone}},
		{PaymentFlow().Steps, paymentDraft(), []string{FieldRecipientName, FieldAmount}},
		{HealthBookingFlow(fixedNow).Steps, bookingDraft(), []string{FieldServiceType, FieldPreferredDate, FieldPreferredTime, FieldPatientName, FieldPatientPhone}},
	}
	for _, f := range flows {
		for _, key := range f.keys {
			m := NewMachine(f.steps...)
			for k, v := range f.draft {
				if k != key {
					m.SetField(k, v)
				}
			}
			for !m.OnLastStep() {
				if m.Advance() != nil {
					break
				}
			}
			if m.OnLastStep() {
				// the last step is checked on submit
				assert.Error(t, m.validateCurrent(), "missing %s", key)
				continue
			}
			assert.NotEmpty(t, m.Error(), "missing %s", key)
		}
	}
}

func TestBookingRejectsPastDate(t *testing.T) {
	m := NewMachine(HealthBookingFlow(fixedNow).Steps...)
	d := bookingDraft()
	d[FieldPreferredDate] = "2026-05-09"
	for k, v := range d {
		m.SetField(k, v)
	}
	require.Error(t, m.Advance())
	assert.Equal(t, "Preferred date cannot be in the past", m.Error())
}

func TestRegistrationPasswordPolicy(t *testing.T) {
	m := NewMachine(RegistrationFlow().Steps...)
	d := registrationDraft()
	d[FieldPassword] = "sixsix"
	d[FieldConfirmPassword] = "sixsix"
	for k, v := range d {
		m.SetField(k, v)
	}
	require.Error(t, m.Advance())
	assert.Equal(t, "Password must be at least 8 characters", m.Error())
}

func TestRegistrationPasswordByteLimit(t *testing.T) {
	m := NewMachine(RegistrationFlow().Steps...)
	d := registrationDraft()
	d[FieldPassword] = strings.Repeat("é", 40)
	d[FieldConfirmPassword] = d[FieldPassword]
	for k, v := range d {
		m.SetField(k, v)
	}
	require.Error(t, m.Advance())
	assert.Equal(t, "Password is too long", m.Error())
}

func TestPaymentAmountWholeCents(t *testing.T) {
	m := NewMachine(PaymentFlow().Steps...)
	d := paymentDraft()
	d[FieldAmount] = "10.005"
	for k, v := range d {
		m.SetField(k, v)
	}
	require.NoError(t, m.Advance())
	require.Error(t, m.Advance())
	assert.Equal(t, "Amount", m.Step().Name)
	assert.Equal(t, "Amount must be greater than zero with at most 2 decimal places", m.Error())
}

func TestServiceTypeNamesSorted(t *testing.T) {
	assert.Equal(t, []string{"ambulance", "consultation", "home_visit", "lab_test", "therapy"}, ServiceTypeNames())
}
