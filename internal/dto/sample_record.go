package dto

import "time"

// TimestampLayout is the display format of a sample row, e.g. "02:15:04.250 PM".
const TimestampLayout = "03:04:05.000 PM"

// SampleRecord is one committed sample. It is never modified after creation.
type SampleRecord struct {
	Timestamp time.Time
	Count     int
}

// FormattedTimestamp renders the timestamp the way the session log stores it.
func (r SampleRecord) FormattedTimestamp() string {
	return r.Timestamp.Format(TimestampLayout)
}
