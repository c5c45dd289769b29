package entity

import "time"

// AirInvoice is a carrier-issued service invoice line.
// Numeric columns are kept as text as delivered by the upstream import.
type AirInvoice struct {
	ID            uint
	Supplier      string
	FlightDate    *time.Time
	FlightNumber  string
	Class         string
	ServiceCode   string
	Quantity      string
	UnitPrice     string
	SubTotal      string
	Tax           string
	TotalInclTax  string
	Currency      string
	InvoiceStatus string
	PaymentStatus string
	IsActive      bool
	IsDeleted     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
