package entity

// QueryParams are the inputs of a paged reconciliation query.
// Nil optional fields mean "not supplied".
type QueryParams struct {
	Limit        int
	Offset       int
	Filter       string
	StartDate    *string
	EndDate      *string
	FlightNumber *string
	ItemName     *string
}

// Pagination describes the page returned by a query
type Pagination struct {
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	NextOffset *int  `json:"next_offset"`
}

// QueryFilters echoes the query inputs
type QueryFilters struct {
	Filter       string  `json:"filter"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	FlightNumber *string `json:"flight_number"`
	ItemName     *string `json:"item_name"`
}

// QueryResult is the envelope returned by a paged query
type QueryResult struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message,omitempty"`
	Error      string              `json:"error,omitempty"`
	Data       []map[string]string `json:"data"`
	Pagination *Pagination         `json:"pagination,omitempty"`
	Filters    QueryFilters        `json:"filters"`
}

// Summary counts the rows of the current reconciliation table per bucket
type Summary struct {
	Total              int64 `json:"total"`
	Matched            int64 `json:"matched"`
	AirOnly            int64 `json:"air_only"`
	CatOnly            int64 `json:"cat_only"`
	QtyDiscrepancies   int64 `json:"qty_discrepancies"`
	PriceDiscrepancies int64 `json:"price_discrepancies"`
}

// NextOffset returns offset+limit when another page exists, nil otherwise
func NextOffset(offset, limit int, total int64) *int {
	next := offset + limit
	if int64(next) < total {
		return &next
	}
	return nil
}
