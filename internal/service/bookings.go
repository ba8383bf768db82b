package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"care_wallet/internal/domain"
	"care_wallet/internal/schema"
	"care_wallet/internal/store"
	"care_wallet/internal/utils"

	"github.com/sirupsen/logrus"
)

// Bookings records emergency and health-service requests. The fee is quoted
// on the booking; settling it is not part of this flow.
type Bookings struct {
	store store.Store
}

func NewBookings(s store.Store) *Bookings {
	return &Bookings{store: s}
}

// Book stores the booking as confirmed, then logs tool usage, an audit entry
// and a confirmation email as side writes.
func (b *Bookings) Book(ctx context.Context, userID uint, req schema.HealthServiceRequest, ip string) (*domain.HealthService, Outcome, error) {
	user, err := b.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, Outcome{}, ErrUserNotFound
		}
		return nil, Outcome{}, err
	}
	cfg, err := loadSettings(ctx, b.store)
	if err != nil {
		return nil, Outcome{}, fmt.Errorf("load settings: %w", err)
	}
	if !cfg.enabled(domain.SettingBookingsEnabled) {
		return nil, Outcome{}, ErrBookingsDisabled
	}
	fee, ok := domain.ServiceTypes[req.ServiceType]
	if !ok {
		return nil, Outcome{}, fmt.Errorf("%w: %q", ErrUnknownService, req.ServiceType)
	}

	booking := &domain.HealthService{
		UserID:           userID,
		ServiceType:      req.ServiceType,
		PatientName:      strings.TrimSpace(req.PatientName),
		PatientPhone:     strings.TrimSpace(req.PatientPhone),
		PatientAge:       req.PatientAge,
		EmergencyContact: strings.TrimSpace(req.EmergencyContact),
		PreferredDate:    req.PreferredDate,
		PreferredTime:    req.PreferredTime,
		Location:         strings.TrimSpace(req.Location),
		Notes:            strings.TrimSpace(req.Notes),
		Amount:           fee,
		Status:           domain.StatusConfirmed,
		TxReference:      utils.NewMockReference(),
	}
	fields := logrus.Fields{"user_id": userID, "service_type": req.ServiceType, "op": "health_service"}
	if err := b.store.CreateHealthService(ctx, booking); err != nil {
		logrus.WithFields(fields).WithField("error", err.Error()).Error("Booking failed")
		return nil, Outcome{}, fmt.Errorf("create booking: %w", err)
	}
	fields["booking_id"] = booking.ID

	out := bestEffort(ctx, fields,
		side("health_tools_usage", func(ctx context.Context) error {
			return b.store.CreateHealthToolUsage(ctx, &domain.HealthToolUsage{
				UserID: userID,
				Tool:   "health_service_booking",
				Metadata: map[string]any{
					"booking_id":   booking.ID,
					"service_type": booking.ServiceType,
				},
			})
		}),
		side("audit_log", func(ctx context.Context) error {
			return b.store.CreateAuditLog(ctx, &domain.AuditLog{
				UserID:     userID,
				Action:     domain.AuditHealthServiceBooked,
				Resource:   "health_service",
				ResourceID: fmt.Sprint(booking.ID),
				Details: map[string]any{
					"service_type": booking.ServiceType,
					"amount":       booking.Amount.String(),
				},
				IPAddress: ip,
			})
		}),
		side("email_notification", func(ctx context.Context) error {
			return b.store.CreateEmailNotification(ctx, &domain.EmailNotification{
				UserID:    userID,
				Recipient: user.Email,
				Type:      domain.NotifyBookingReceived,
				Subject:   "Booking confirmed",
				Body: fmt.Sprintf("Your %s booking for %s on %s at %s is confirmed. Reference %s.",
					strings.ReplaceAll(booking.ServiceType, "_", " "), booking.PatientName,
					booking.PreferredDate, booking.PreferredTime, booking.TxReference),
				Status: domain.StatusPending,
			})
		}),
	)
	logrus.WithFields(fields).Info("Health service booked")
	return booking, out, nil
}

// List returns the caller's bookings, newest first.
func (b *Bookings) List(ctx context.Context, userID uint, page utils.Page) ([]domain.HealthService, int64, error) {
	return b.store.ListHealthServices(ctx, userID, page)
}
