package enums

import "strings"

type ProfileType string

const (
	ProfileTypePersonal      ProfileType = "personal"
	ProfileTypeBusiness      ProfileType = "business"
	ProfileTypeCollaboration ProfileType = "collaboration"
)

func ParseProfileType(raw string) (ProfileType, bool) {
	switch ProfileType(strings.ToLower(strings.TrimSpace(raw))) {
	case ProfileTypePersonal:
		return ProfileTypePersonal, true
	case ProfileTypeBusiness:
		return ProfileTypeBusiness, true
	case ProfileTypeCollaboration:
		return ProfileTypeCollaboration, true
	default:
		return "", false
	}
}
