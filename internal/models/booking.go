package models

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// Valid reports whether s is one of the known booking statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusInProgress,
		BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Booking is a paid home-service appointment. Rows are created only from a
// verified payment and are never deleted.
type Booking struct {
	ID              string `gorm:"primaryKey;size:36" json:"id"`
	CustomerID      uint   `gorm:"not null;index:idx_booking_customer" json:"customerId"`
	WorkerID        *uint  `gorm:"index:idx_booking_worker" json:"workerId"`
	ServiceID       uint   `gorm:"not null" json:"serviceId"`
	ServiceName     string `gorm:"size:200;not null" json:"serviceName"`
	ServiceCategory string `gorm:"size:100" json:"serviceCategory"`

	// Schedule and contact details are fixed at creation.
	Date          string `gorm:"size:10;not null" json:"date"` // YYYY-MM-DD
	Time          string `gorm:"size:5;not null" json:"time"`  // HH:MM
	Location      string `gorm:"not null" json:"location"`
	ContactMobile string `gorm:"size:30;not null" json:"contactMobile"`
	ContactEmail  string `gorm:"size:200" json:"contactEmail"`
	ContactName   string `gorm:"size:200" json:"contactName"`

	Amount        float64       `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency      string        `gorm:"size:3;not null" json:"currency"`
	OrderID       string        `gorm:"size:64;not null;uniqueIndex" json:"orderId"`
	PaymentID     string        `gorm:"size:64;not null;uniqueIndex" json:"paymentId"`
	PaymentStatus PaymentStatus `gorm:"size:20;not null;default:'pending'" json:"paymentStatus"`

	Status      BookingStatus `gorm:"size:20;not null;default:'pending';index:idx_booking_status" json:"status"`
	AcceptedAt  *time.Time    `json:"acceptedAt"`
	StartedAt   *time.Time    `json:"startedAt"`
	CompletedAt *time.Time    `json:"completedAt"`
	CancelledAt *time.Time    `json:"cancelledAt"`
	CancelledBy *uint         `json:"cancelledBy"`
	// CancelledWorkerID keeps the worker that held the booking when it was
	// cancelled; WorkerID is cleared.
	CancelledWorkerID *uint `gorm:"index:idx_booking_cancelled_worker" json:"cancelledWorkerId,omitempty"`

	Rating  *int       `json:"rating"`
	Review  string     `gorm:"type:text;not null;default:''" json:"review"`
	RatedAt *time.Time `json:"ratedAt"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Booking) TableName() string {
	return "bookings"
}

// IsAssignedTo reports whether workerID is the booking's current worker.
func (b *Booking) IsAssignedTo(workerID uint) bool {
	return b.WorkerID != nil && *b.WorkerID == workerID
}
