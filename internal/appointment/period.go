package appointment

import (
	"strings"
	"time"
)

// Period is a half of the day: AM is strictly before noon, PM is noon or later.
type Period int

const (
	PeriodAM Period = iota + 1
	PeriodPM
)

func ParsePeriod(s string) (Period, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AM":
		return PeriodAM, nil
	case "PM":
		return PeriodPM, nil
	}
	return 0, ErrInvalidPeriod
}

func (p Period) String() string {
	if p == PeriodPM {
		return "PM"
	}
	return "AM"
}

func (p Period) contains(t TimeOfDay) bool {
	if p == PeriodAM {
		return t.Before(Noon)
	}
	return !t.Before(Noon)
}

// Availability is either a RangeList or a WeeklyMap.
type Availability interface {
	availability()
}

// RangeList is a list of "start-end" ranges such as "09:00-10:00".
type RangeList []string

// WeeklyMap holds the time points a doctor works on each weekday.
type WeeklyMap map[time.Weekday][]TimeOfDay

func (RangeList) availability() {}
func (WeeklyMap) availability() {}

// MatchesPeriod reports whether any published availability falls in p.
// A nil availability never matches.
func MatchesPeriod(av Availability, p Period) bool {
	switch v := av.(type) {
	case RangeList:
		for _, r := range v {
			if rangeInPeriod(r, p) {
				return true
			}
		}
	case WeeklyMap:
		for _, points := range v {
			for _, t := range points {
				if p.contains(t) {
					return true
				}
			}
		}
	}
	return false
}

// rangeInPeriod matches when either bound lies in p, so a range that
// straddles noon matches both periods. Malformed ranges never match.
func rangeInPeriod(r string, p Period) bool {
	parts := strings.Split(r, "-")
	if len(parts) != 2 {
		return false
	}
	start, err := ParseTimeOfDay(parts[0])
	if err != nil {
		return false
	}
	end, err := ParseTimeOfDay(parts[1])
	if err != nil {
		return false
	}
	return p.contains(start) || p.contains(end)
}
