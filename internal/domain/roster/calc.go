package roster

import "time"

// ComputeEndDate derives a period's end date from its start date and type.
// Weekly and fortnightly periods span a fixed 7 or 14 days inclusive.
// Monthly periods end the day before the same day-of-month one month later;
// when that day does not exist in the target month the addition clamps to the
// month's last day, so 2025-01-31 yields 2025-02-27.
func ComputeEndDate(start time.Time, periodType string) (time.Time, error) {
	if start.IsZero() {
		return time.Time{}, &InvalidInputError{Field: "startDate", Reason: "must be a valid calendar date"}
	}
	switch periodType {
	case TypeWeekly:
		return start.AddDate(0, 0, 6), nil
	case TypeFortnightly:
		return start.AddDate(0, 0, 13), nil
	case TypeMonthly:
		return addMonthClamped(start).AddDate(0, 0, -1), nil
	default:
		return time.Time{}, &InvalidInputError{Field: "type", Reason: "must be weekly, fortnightly or monthly"}
	}
}

// DurationLabel returns the display label for a period type, or "" when the
// type is unknown.
func DurationLabel(periodType string) string {
	switch periodType {
	case TypeWeekly:
		return "7 days"
	case TypeFortnightly:
		return "14 days"
	case TypeMonthly:
		return "~1 month"
	default:
		return ""
	}
}

// NominalDays returns the day count used for pre-submission estimates. The
// monthly value is nominal since exact month lengths vary.
func NominalDays(periodType string) int {
	switch periodType {
	case TypeWeekly:
		return 7
	case TypeFortnightly:
		return 14
	case TypeMonthly:
		return 30
	default:
		return 0
	}
}

func addMonthClamped(t time.Time) time.Time {
	year, month, day := t.Date()
	if last := daysIn(year, month+1); day > last {
		day = last
	}
	return time.Date(year, month+1, day, 0, 0, 0, 0, t.Location())
}

// daysIn tolerates month overflow: time.Date normalizes month 13 of one year
// to January of the next.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
