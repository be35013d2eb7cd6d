package storage

// DateLayout is the layout of every date key held in storage. Keys in this
// layout sort lexically in chronological order.
const DateLayout = "2006-01-02"

// DailyRecord holds the accumulated study time for one calendar day.
type DailyRecord struct {
	Date         string `json:"date"`
	TotalSeconds int64  `json:"totalSeconds"`
}

// ZeroRecord returns the logical record for a date with nothing stored.
func ZeroRecord(date string) *DailyRecord {
	return &DailyRecord{Date: date}
}
