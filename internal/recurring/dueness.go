package recurring

import (
	"fmt"
	"time"

	"bilancio/internal/core"
)

// DuenessChecker decides whether a template should be materialized
// today. lastRun is the previous materialization time for the same
// template, zero if it never ran.
type DuenessChecker interface {
	IsDue(t core.RecurringTemplate, lastRun, now time.Time) bool
}

// MonthlyChecker fires on the template's day of month, at most once per
// calendar month. A target day past the month's end fires on the last
// day instead.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(t core.RecurringTemplate, lastRun, now time.Time) bool {
	if !lastRun.IsZero() && lastRun.Year() == now.Year() && lastRun.Month() == now.Month() {
		return false
	}
	target := t.Day
	if last := lastDayOfMonth(now); target > last {
		target = last
	}
	return now.Day() == target
}

// WeeklyChecker fires on the template's ISO weekday (1=Mon..7=Sun), at
// most once per day.
type WeeklyChecker struct{}

func (WeeklyChecker) IsDue(t core.RecurringTemplate, lastRun, now time.Time) bool {
	if !lastRun.IsZero() && sameDay(lastRun, now) {
		return false
	}
	return isoWeekday(now) == t.Weekday
}

// YearlyChecker fires when both day and month match, at most once per
// year.
type YearlyChecker struct{}

func (YearlyChecker) IsDue(t core.RecurringTemplate, lastRun, now time.Time) bool {
	if !lastRun.IsZero() && lastRun.Year() == now.Year() {
		return false
	}
	if int(now.Month()) != t.Month {
		return false
	}
	target := t.Day
	if last := lastDayOfMonth(now); target > last {
		target = last
	}
	return now.Day() == target
}

var duenessStrategies = map[core.Period]DuenessChecker{
	core.Monthly: MonthlyChecker{},
	core.Weekly:  WeeklyChecker{},
	core.Yearly:  YearlyChecker{},
}

// GetDuenessChecker returns the checker for a period kind.
func GetDuenessChecker(p core.Period) (DuenessChecker, error) {
	c, ok := duenessStrategies[p]
	if !ok {
		return nil, fmt.Errorf("unknown period: %s", p)
	}
	return c, nil
}

func lastDayOfMonth(now time.Time) int {
	return time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
}

func isoWeekday(now time.Time) int {
	wd := int(now.Weekday())
	if wd == 0 {
		return 7 // Sunday
	}
	return wd
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
