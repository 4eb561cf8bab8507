package collection

import "strings"

// NotCollected is the status reported for rows whose status cell is empty.
const NotCollected = "Not Collected"

// TimestampLayout is the format written to the status cell: RFC 3339 in UTC
// with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// StudentRecord is one row of a class sheet. It is rebuilt on every lookup
// and addresses the row it was read from by RowPosition.
type StudentRecord struct {
	RowPosition  int    `json:"rowPosition"`
	Roll         string `json:"roll"`
	Name         string `json:"name"`
	Preference   string `json:"preference"`
	Status       string `json:"status"`
	StatusColumn string `json:"statusColumnLabel"`
}

func (r StudentRecord) IsVeg() bool {
	return strings.EqualFold(r.Preference, "VEG")
}

// IsCollected is false for an empty status, the NotCollected sentinel and
// a literal FALSE (checkbox columns).
func (r StudentRecord) IsCollected() bool {
	s := strings.TrimSpace(r.Status)
	return s != "" && s != NotCollected && !strings.EqualFold(s, "FALSE")
}

// WithStatus returns a copy of the record carrying the new status, so a
// caller can merge the result of MarkCollected without reading the row again.
func (r StudentRecord) WithStatus(status string) StudentRecord {
	r.Status = status
	return r
}
