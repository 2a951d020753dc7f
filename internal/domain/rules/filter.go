package rules

import (
	"time"

	"github.com/ivankudzin/sparkmatch/internal/domain/model"
)

// FilterOverrides are per-request discovery filters. Nil pointers and empty
// sets mean "not supplied".
type FilterOverrides struct {
	ProfileType           string
	MinAge                *int
	MaxAge                *int
	MaxDistance           *int
	GenderIDs             []string
	InterestIDs           []string
	LoveLanguageIDs       []string
	ZodiacIDs             []string
	WorkIDs               []string
	OrientationIDs        []string
	CommunicationStyleIDs []string
	PremiumOnly           bool
}

// CandidateFilter is the effective filter after precedence is applied.
type CandidateFilter struct {
	ProfileType           string
	ExcludeGenderID       string
	GenderIDs             []string
	InterestIDs           []string
	LoveLanguageIDs       []string
	ZodiacIDs             []string
	WorkIDs               []string
	OrientationIDs        []string
	CommunicationStyleIDs []string
	MinAge                *int
	MaxAge                *int
	MaxDistance           *int
	PremiumOnly           bool
}

// ResolveFilter applies precedence: overrides, then the saved preference,
// then, only when no preference record exists, exclusion of the requester's
// own gender.
func ResolveFilter(requester model.User, saved *model.Preference, o FilterOverrides) CandidateFilter {
	var f CandidateFilter

	if saved != nil {
		f.ProfileType = string(saved.ProfileType)
		f.GenderIDs = saved.Genders
		f.InterestIDs = saved.Interests
		f.MinAge = intPtr(saved.MinAge)
		f.MaxAge = intPtr(saved.MaxAge)
		if saved.MaxDistance > 0 {
			f.MaxDistance = intPtr(saved.MaxDistance)
		}
	}

	if o.ProfileType != "" {
		f.ProfileType = o.ProfileType
	}
	if o.MinAge != nil {
		f.MinAge = o.MinAge
	}
	if o.MaxAge != nil {
		f.MaxAge = o.MaxAge
	}
	if o.MaxDistance != nil {
		f.MaxDistance = o.MaxDistance
	}
	if len(o.GenderIDs) > 0 {
		f.GenderIDs = o.GenderIDs
	}
	if len(o.InterestIDs) > 0 {
		f.InterestIDs = o.InterestIDs
	}
	f.LoveLanguageIDs = o.LoveLanguageIDs
	f.ZodiacIDs = o.ZodiacIDs
	f.WorkIDs = o.WorkIDs
	f.OrientationIDs = o.OrientationIDs
	f.CommunicationStyleIDs = o.CommunicationStyleIDs
	f.PremiumOnly = o.PremiumOnly

	if saved == nil && len(f.GenderIDs) == 0 {
		f.ExcludeGenderID = requester.GenderID
	}

	if f.MinAge != nil && f.MaxAge == nil {
		f.MaxAge = intPtr(120)
	}
	if f.MaxAge != nil && f.MinAge == nil {
		f.MinAge = intPtr(0)
	}
	if f.MinAge != nil && f.MaxAge != nil && *f.MinAge > *f.MaxAge {
		f.MinAge, f.MaxAge = f.MaxAge, f.MinAge
	}

	return f
}

// BirthdayWindow converts the age band to a birthday range at now. ok is
// false when no age band is set.
func (f CandidateFilter) BirthdayWindow(now time.Time) (BirthdayRange, bool) {
	if f.MinAge == nil || f.MaxAge == nil {
		return BirthdayRange{}, false
	}
	return BirthdayRangeFor(now, *f.MinAge, *f.MaxAge), true
}

// GeoApplies reports whether a distance cut-off is in force for requester.
func (f CandidateFilter) GeoApplies(requester model.User) bool {
	return requester.HasCoordinates() && f.MaxDistance != nil && *f.MaxDistance > 0
}

// WithinDistance keeps candidates without coordinates.
func (f CandidateFilter) WithinDistance(requester, candidate model.User) bool {
	if !f.GeoApplies(requester) || !candidate.HasCoordinates() {
		return true
	}
	d := DistanceMiles(*requester.Latitude, *requester.Longitude, *candidate.Latitude, *candidate.Longitude)
	return d <= float64(*f.MaxDistance)
}

// Matches evaluates the subset used to post-filter populated match lists:
// profile type, gender set, age band, distance and interest overlap.
func (f CandidateFilter) Matches(requester, candidate model.User, now time.Time) bool {
	if f.ProfileType != "" && string(candidate.ProfileType) != f.ProfileType {
		return false
	}
	if len(f.GenderIDs) > 0 && !contains(f.GenderIDs, candidate.GenderID) {
		return false
	}
	if window, ok := f.BirthdayWindow(now); ok {
		if candidate.Birthday == nil || !window.Contains(*candidate.Birthday) {
			return false
		}
	}
	if !f.WithinDistance(requester, candidate) {
		return false
	}
	if len(f.InterestIDs) > 0 && !overlaps(f.InterestIDs, candidate.InterestIDs) {
		return false
	}
	return true
}

func intPtr(v int) *int {
	return &v
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func overlaps(a, b []string) bool {
	for _, x := range b {
		if contains(a, x) {
			return true
		}
	}
	return false
}

// OverrideFilter builds a filter from overrides alone. No saved preference
// and no own-gender fallback apply.
func OverrideFilter(o FilterOverrides) CandidateFilter {
	f := ResolveFilter(model.User{}, nil, o)
	f.ExcludeGenderID = ""
	return f
}
