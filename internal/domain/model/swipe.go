package model

import (
	"time"

	"github.com/ivankudzin/sparkmatch/internal/domain/enums"
)

type Swipe struct {
	ID        string            `json:"id"`
	SwiperID  string            `json:"swiper"`
	TargetID  string            `json:"target"`
	Action    enums.SwipeAction `json:"action"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}
