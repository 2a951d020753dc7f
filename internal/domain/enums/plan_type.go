package enums

import "strings"

type PlanType string

const (
	PlanTypeFree    PlanType = "free"
	PlanTypePremium PlanType = "premium"
	PlanTypeGold    PlanType = "gold"
)

// IsFree treats an empty plan as the free tier.
func (p PlanType) IsFree() bool {
	v := strings.ToLower(strings.TrimSpace(string(p)))
	return v == "" || v == string(PlanTypeFree)
}
