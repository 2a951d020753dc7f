package dto

// PreferenceRequest is a partial update; absent fields keep their value.
type PreferenceRequest struct {
	ProfileType *string   `json:"profileType" validate:"omitempty,oneof=personal business collaboration"`
	Genders     *[]string `json:"genders"`
	MinAge      *int      `json:"minAge" validate:"omitempty,min=0,max=120"`
	MaxAge      *int      `json:"maxAge" validate:"omitempty,min=0,max=120"`
	MaxDistance *int      `json:"maxDistance" validate:"omitempty,min=0"`
	Interests   *[]string `json:"interests"`
}
