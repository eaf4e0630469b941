package diary

import (
	"fmt"
	"time"
)

// Date layouts used when writing meal dates.
const (
	LayoutDay      = "2006-01-02"
	LayoutDateTime = "2006-01-02T15:04:05"
)

// rocOffset converts a Gregorian year to the ROC (Minguo) calendar.
const rocOffset = 1911

var weekdays = [...]string{"日", "一", "二", "三", "四", "五", "六"}

// LocalYMD formats t in local time as YYYY-MM-DD.
func LocalYMD(t time.Time) string {
	return t.Local().Format(LayoutDay)
}

// LocalDateTime formats t in local time as YYYY-MM-DDTHH:MM:SS.
func LocalDateTime(t time.Time) string {
	return t.Local().Format(LayoutDateTime)
}

// ROCYear returns the ROC calendar year of t.
func ROCYear(t time.Time) int {
	return t.Year() - rocOffset
}

// FormatROC renders a meal date the way the diary lists show it, for
// example "113 / 5 / 02（週四）". Unparseable dates are returned as given.
func FormatROC(date string, hideWeekday bool) string {
	t, err := ParseDate(date)
	if err != nil {
		return date
	}
	s := fmt.Sprintf("%d / %d / %02d", ROCYear(t), int(t.Month()), t.Day())
	if hideWeekday {
		return s
	}
	return s + "（週" + weekdays[t.Weekday()] + "）"
}
