package models

import "time"

// OrderDraft holds the booking details collected before payment. It lives in
// the order store under its OrderID until the payment is verified.
type OrderDraft struct {
	OrderID         string    `json:"orderId"`
	CustomerID      uint      `json:"customerId"`
	ServiceID       uint      `json:"serviceId"`
	ServiceName     string    `json:"serviceName"`
	ServiceCategory string    `json:"serviceCategory"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	Location        string    `json:"location"`
	Mobile          string    `json:"mobile"`
	Email           string    `json:"email,omitempty"`
	FullName        string    `json:"fullName,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Complete reports whether the draft carries every field a booking needs.
func (d *OrderDraft) Complete() bool {
	return d.CustomerID != 0 && d.ServiceID != 0 && d.Date != "" && d.Time != "" &&
		d.Location != "" && d.Mobile != ""
}
