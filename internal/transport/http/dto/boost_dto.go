package dto

type BoostPurchaseRequest struct {
	PackageID     string `json:"packageId" validate:"required"`
	TransactionID string `json:"transactionId" validate:"omitempty,max=128"`
	Duration      int    `json:"duration" validate:"min=0,max=1440"`
}

type BoostActivateRequest struct {
	Duration int `json:"duration" validate:"min=0,max=1440"`
}
