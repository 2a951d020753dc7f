package rules

import "time"

// BirthdayRange converts an inclusive age band into an inclusive birthday
// window at day precision. Latest is the birthday of someone turning minAge
// today; Earliest is one day after the birthday of someone turning maxAge+1
// today.
type BirthdayRange struct {
	Earliest time.Time
	Latest   time.Time
}

func BirthdayRangeFor(now time.Time, minAge, maxAge int) BirthdayRange {
	if minAge < 0 {
		minAge = 0
	}
	if maxAge < minAge {
		maxAge = minAge
	}
	today := TruncateDay(now)
	return BirthdayRange{
		Earliest: today.AddDate(-(maxAge + 1), 0, 1),
		Latest:   today.AddDate(-minAge, 0, 0),
	}
}

func (r BirthdayRange) Contains(birthday time.Time) bool {
	day := TruncateDay(birthday)
	return !day.Before(r.Earliest) && !day.After(r.Latest)
}

// AgeAt returns completed years between birthday and now.
func AgeAt(birthday, now time.Time) int {
	b := TruncateDay(birthday)
	n := TruncateDay(now)
	years := n.Year() - b.Year()
	if n.Month() < b.Month() || (n.Month() == b.Month() && n.Day() < b.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

func TruncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
