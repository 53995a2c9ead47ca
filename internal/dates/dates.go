// Package dates implements calendar bucketing in a single fixed-offset
// business timezone. All functions take the location explicitly and return
// UTC instants, so callers stay deterministic and testable without touching
// the wall clock.
package dates

import "time"

// DateKeyLayout is the canonical calendar-date form used for streak
// bucketing and digest keys.
const DateKeyLayout = "2006-01-02"

// topicKeyLayout is the zero-padded slash form hashed for daily topic
// selection. Kept distinct from DateKeyLayout so the topic rotation stays
// stable across deployments that predate the ISO keys.
const topicKeyLayout = "2006/01/02"

// LocalDateKey returns the calendar date of t in the business timezone as
// YYYY-MM-DD. An event belongs to exactly one such date.
func LocalDateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateKeyLayout)
}

// TopicDateKey returns the calendar date of t in the business timezone as
// YYYY/MM/DD, the input of the daily topic hash.
func TopicDateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(topicKeyLayout)
}

// DayBounds returns the UTC instants of local midnight (inclusive) and the
// next local midnight (exclusive) for the business-timezone day containing t.
// The offset arithmetic is direct: no locale round-tripping.
func DayBounds(t time.Time, loc *time.Location) (start, end time.Time) {
	local := t.In(loc)
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).UTC()
	end = start.Add(24 * time.Hour)
	return start, end
}

// WeekRange returns the UTC instants bounding the business-timezone week
// containing t: the Monday on/before t at 00:00:00 local, through the
// following Sunday at 23:59:59.999 local. Weeks never start on any day other
// than Monday.
func WeekRange(t time.Time, loc *time.Location) (start, end time.Time) {
	local := t.In(loc)

	// time.Weekday numbers Sunday as 0; shift so Monday is the week start.
	offset := int(local.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}

	monday := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).
		AddDate(0, 0, -offset)
	sundayEnd := monday.AddDate(0, 0, 6).
		Add(23*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond)

	return monday.UTC(), sundayEnd.UTC()
}

// LocalDay returns local midnight of the business-timezone day containing t,
// kept in the business location so callers can walk days with AddDate.
func LocalDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
