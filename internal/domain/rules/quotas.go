package rules

import "github.com/ivankudzin/sparkmatch/internal/domain/enums"

// SwipeGated reports whether an action on a plan is subject to the
// free-tier quota. Dislikes and paid plans are never gated.
func SwipeGated(plan enums.PlanType, action enums.SwipeAction) bool {
	return plan.IsFree() && action.Positive()
}
