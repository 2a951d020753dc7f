package model

import (
	"time"

	"github.com/ivankudzin/sparkmatch/internal/domain/enums"
)

type Preference struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user"`
	ProfileType enums.ProfileType `json:"profileType"`
	Genders     []string          `json:"genders"`
	MinAge      int               `json:"minAge"`
	MaxAge      int               `json:"maxAge"`
	MaxDistance int               `json:"maxDistance"`
	Interests   []string          `json:"interests"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}
