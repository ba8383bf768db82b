package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Health service types
const (
	ServiceAmbulance    = "ambulance"
	ServiceConsultation = "consultation"
	ServiceHomeVisit    = "home_visit"
	ServiceLabTest      = "lab_test"
	ServiceTherapy      = "therapy"
)

// ServiceTypes lists every bookable service with its flat fee.
var ServiceTypes = map[string]decimal.Decimal{
	ServiceAmbulance:    decimal.NewFromInt(150),
	ServiceConsultation: decimal.NewFromInt(50),
	ServiceHomeVisit:    decimal.NewFromInt(80),
	ServiceLabTest:      decimal.NewFromInt(35),
	ServiceTherapy:      decimal.NewFromInt(60),
}

// HealthService is an emergency or health-service booking.
type HealthService struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	UserID           uint            `gorm:"index;not null" json:"user_id"`
	ServiceType      string          `gorm:"size:40;index;not null" json:"service_type"`
	PatientName      string          `gorm:"size:120;not null" json:"patient_name"`
	PatientPhone     string          `gorm:"size:40;not null" json:"patient_phone"`
	PatientAge       int             `json:"patient_age,omitempty"`
	EmergencyContact string          `gorm:"size:120" json:"emergency_contact,omitempty"`
	PreferredDate    string          `gorm:"size:10;not null" json:"preferred_date"` // YYYY-MM-DD
	PreferredTime    string          `gorm:"size:5;not null" json:"preferred_time"`  // HH:MM
	Location         string          `gorm:"size:255" json:"location"`
	Notes            string          `gorm:"size:1000" json:"notes,omitempty"`
	Amount           decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Status           string          `gorm:"size:20;index;not null" json:"status"`
	TxReference      string          `gorm:"size:66" json:"tx_reference"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (HealthService) TableName() string {
	return "health_services"
}

// HealthToolUsage is an append-only usage log row.
type HealthToolUsage struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	Tool      string         `gorm:"size:60;index;not null" json:"tool"`
	Metadata  map[string]any `gorm:"serializer:json;type:text" json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

func (HealthToolUsage) TableName() string {
	return "health_tools_usage"
}
