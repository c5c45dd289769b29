package utils

// Date layouts accepted by the query filters and used when rendering dates.
const (
	DATE_LAYOUT      = "2006-01-02"
	DATE_TIME_LAYOUT = "2006-01-02 15:04:05"
)

// noneLiteral is what spreadsheet exports write into empty numeric cells.
const noneLiteral = "None"
