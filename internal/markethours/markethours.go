// Package markethours answers "is the NSE open right now" for the live
// trading paths. The simulator ignores it so the dashboard can run around
// the clock.
package markethours

import (
	"fmt"
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30).
var IST = time.FixedZone("IST", 5*3600+30*60)

// NSE equity session bounds, minutes from midnight IST.
const (
	sessionOpenMin  = 9*60 + 15  // 09:15
	sessionCloseMin = 15*60 + 30 // 15:30
)

// IsTradingDay reports whether t falls on an NSE trading day
// (weekday, not a listed holiday).
func IsTradingDay(t time.Time) bool {
	ist := t.In(IST)
	switch ist.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !IsHoliday(ist)
}

// IsMarketOpen reports whether t is inside the NSE equity session:
// 09:15 to 15:30 IST on a trading day.
func IsMarketOpen(t time.Time) bool {
	if !IsTradingDay(t) {
		return false
	}
	ist := t.In(IST)
	minute := ist.Hour()*60 + ist.Minute()
	return minute >= sessionOpenMin && minute < sessionCloseMin
}

// SessionClose returns the close time (15:30 IST) of t's calendar day.
func SessionClose(t time.Time) time.Time {
	ist := t.In(IST)
	return time.Date(ist.Year(), ist.Month(), ist.Day(),
		sessionCloseMin/60, sessionCloseMin%60, 0, 0, IST)
}

// NextOpen returns the next session open at or after t. On a trading day
// before 09:15 that is the same day's open.
func NextOpen(t time.Time) time.Time {
	day := t.In(IST)
	for i := 0; i < 14; i++ { // long weekend + holiday cluster headroom
		open := time.Date(day.Year(), day.Month(), day.Day(),
			sessionOpenMin/60, sessionOpenMin%60, 0, 0, IST)
		if IsTradingDay(day) && t.Before(open) {
			return open
		}
		day = day.AddDate(0, 0, 1)
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		sessionOpenMin/60, sessionOpenMin%60, 0, 0, IST)
}

// StatusString renders the market state for the dashboard header.
func StatusString(t time.Time) string {
	if IsMarketOpen(t) {
		return fmt.Sprintf("Market Open, closes in %s", shortDur(SessionClose(t).Sub(t)))
	}
	open := NextOpen(t)
	return fmt.Sprintf("Market Closed, opens %s %s (%s)",
		open.Weekday().String()[:3], open.Format("15:04"), shortDur(open.Sub(t)))
}

func shortDur(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%dm", h, m)
}
