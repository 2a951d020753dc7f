package enums

import "strings"

type SwipeAction string

const (
	SwipeActionLike      SwipeAction = "like"
	SwipeActionDislike   SwipeAction = "dislike"
	SwipeActionSuperLike SwipeAction = "superlike"
)

func ParseSwipeAction(raw string) (SwipeAction, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = strings.ReplaceAll(value, "_", "")
	switch SwipeAction(value) {
	case SwipeActionLike, SwipeActionDislike, SwipeActionSuperLike:
		return SwipeAction(value), true
	default:
		return "", false
	}
}

// Positive reports whether the action counts toward reciprocity and quota.
func (a SwipeAction) Positive() bool {
	return a == SwipeActionLike || a == SwipeActionSuperLike
}
