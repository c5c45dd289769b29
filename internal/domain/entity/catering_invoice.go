package entity

import "time"

// CateringInvoice is a caterer-issued billing line.
type CateringInvoice struct {
	ID              uint
	Facility        string
	FlightDate      *time.Time
	FlightNumber    string
	Class           string
	ItemGroup       string
	ItemCode        string
	ItemDescription string
	BillingCode     string
	SubBillingCode  string
	Unit            string
	Quantity        string
	UnitPrice       string
	TotalAmount     string
	IsActive        bool
	IsDeleted       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
