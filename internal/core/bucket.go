package core

const (
	BucketDay   Granularity = "day"
	BucketMonth Granularity = "month"
	BucketYear  Granularity = "year"
)

// Granularity selects the calendar alignment of a statistics bucket.
type Granularity string

// BucketKey derives the stable key a date falls into for the given
// granularity. Keys are used purely for equality and lookup:
//
//	day   -> "2025-02-17"
//	month -> "Feb 25"
//	year  -> "2025"
//
// The convention is the calendar date of the Date value itself, which is
// normalized to UTC midnight at the boundary; no further time-zone handling
// applies.
func (d Date) BucketKey(g Granularity) string {
	switch g {
	case BucketMonth:
		return d.Format("Jan 06")
	case BucketYear:
		return d.Format("2006")
	default:
		return d.Format("2006-01-02")
	}
}

// Weekday returns the abbreviated weekday name used as the chart label for
// day buckets, e.g. "Mon".
func (d Date) Weekday() string {
	return d.Format("Mon")
}
