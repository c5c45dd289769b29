package entity

import (
	"strconv"
	"time"

	"invoice-reconciliation-service/pkg/utils"
)

// Presence and discrepancy flag values
const (
	Yes = "Yes"
	No  = "No"
)

// Discrepancy defaults for rows that were not compared
const (
	DefaultQtyDif    = "0"
	DefaultAmountDif = "0.00"
)

// Origin tells which ledgers contributed to a reconciliation row
type Origin string

const (
	OriginMatched Origin = "matched"
	OriginAirOnly Origin = "air_only"
	OriginCatOnly Origin = "cat_only"
)

// ReconciliationRecord is one unified row produced by a rebuild.
// Air* fields copy the Air invoice, Cat* fields copy the Catering invoice.
type ReconciliationRecord struct {
	ID     string
	Seq    int
	RowKey string

	AirSourceID      *uint
	AirSupplier      string
	AirFlightDate    *time.Time
	AirFlightNumber  string
	AirClass         string
	AirServiceCode   string
	AirQty           string
	AirUnitPrice     string
	AirSubTotal      string
	AirTax           string
	AirTotalInclTax  string
	AirCurrency      string
	AirInvoiceStatus string
	AirPaymentStatus string

	CatSourceID        *uint
	CatFacility        string
	CatFlightDate      *time.Time
	CatFlightNumber    string
	CatClass           string
	CatItemGroup       string
	CatItemCode        string
	CatItemDescription string
	CatBillingCode     string
	CatSubBillingCode  string
	CatUnit            string
	CatQty             string
	CatUnitPrice       string
	CatTotalAmount     string

	Air string
	Cat string

	DifQty    string
	DifPrice  string
	QtyDif    string
	AmountDif string

	CreatedAt time.Time
}

// IsMatched reports whether both ledgers billed the row
func (r *ReconciliationRecord) IsMatched() bool {
	return r.Air == Yes && r.Cat == Yes
}

// Origin derives the row's origin from its presence flags
func (r *ReconciliationRecord) Origin() Origin {
	switch {
	case r.IsMatched():
		return OriginMatched
	case r.Air == Yes:
		return OriginAirOnly
	default:
		return OriginCatOnly
	}
}

// ReconciliationColumns is the column order used by Serialize and exports
var ReconciliationColumns = []string{
	"ID", "Seq", "RowKey",
	"AirSourceID", "AirSupplier", "AirFlightDate", "AirFlightNumber", "AirClass", "AirServiceCode",
	"AirQty", "AirUnitPrice", "AirSubTotal", "AirTax", "AirTotalInclTax", "AirCurrency",
	"AirInvoiceStatus", "AirPaymentStatus",
	"CatSourceID", "CatFacility", "CatFlightDate", "CatFlightNumber", "CatClass", "CatItemGroup",
	"CatItemCode", "CatItemDescription", "CatBillingCode", "CatSubBillingCode", "CatUnit",
	"CatQty", "CatUnitPrice", "CatTotalAmount",
	"Air", "Cat", "DifQty", "DifPrice", "QtyDif", "AmountDif",
	"CreatedAt",
}

// Serialize renders every field as text for transport.
// Missing dates and source ids render as "".
func (r *ReconciliationRecord) Serialize() map[string]string {
	createdAt := ""
	if !r.CreatedAt.IsZero() {
		createdAt = r.CreatedAt.UTC().Format(utils.DATE_TIME_LAYOUT)
	}
	return map[string]string{
		"ID":     r.ID,
		"Seq":    strconv.Itoa(r.Seq),
		"RowKey": r.RowKey,

		"AirSourceID":      formatSourceID(r.AirSourceID),
		"AirSupplier":      r.AirSupplier,
		"AirFlightDate":    utils.FormatDate(r.AirFlightDate),
		"AirFlightNumber":  r.AirFlightNumber,
		"AirClass":         r.AirClass,
		"AirServiceCode":   r.AirServiceCode,
		"AirQty":           r.AirQty,
		"AirUnitPrice":     r.AirUnitPrice,
		"AirSubTotal":      r.AirSubTotal,
		"AirTax":           r.AirTax,
		"AirTotalInclTax":  r.AirTotalInclTax,
		"AirCurrency":      r.AirCurrency,
		"AirInvoiceStatus": r.AirInvoiceStatus,
		"AirPaymentStatus": r.AirPaymentStatus,

		"CatSourceID":        formatSourceID(r.CatSourceID),
		"CatFacility":        r.CatFacility,
		"CatFlightDate":      utils.FormatDate(r.CatFlightDate),
		"CatFlightNumber":    r.CatFlightNumber,
		"CatClass":           r.CatClass,
		"CatItemGroup":       r.CatItemGroup,
		"CatItemCode":        r.CatItemCode,
		"CatItemDescription": r.CatItemDescription,
		"CatBillingCode":     r.CatBillingCode,
		"CatSubBillingCode":  r.CatSubBillingCode,
		"CatUnit":            r.CatUnit,
		"CatQty":             r.CatQty,
		"CatUnitPrice":       r.CatUnitPrice,
		"CatTotalAmount":     r.CatTotalAmount,

		"Air":       r.Air,
		"Cat":       r.Cat,
		"DifQty":    r.DifQty,
		"DifPrice":  r.DifPrice,
		"QtyDif":    r.QtyDif,
		"AmountDif": r.AmountDif,

		"CreatedAt": createdAt,
	}
}

func formatSourceID(id *uint) string {
	if id == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*id), 10)
}
