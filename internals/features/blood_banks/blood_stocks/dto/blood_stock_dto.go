package dto

import (
	"blood_donation_backend/internals/constants"
)

type CreateBloodStockRequest struct {
	BankID     uint                 `json:"blood_stock_bank_id" validate:"required"`
	BloodGroup constants.BloodGroup `json:"blood_stock_blood_group" validate:"required,bloodgroup"`
	Units      int                  `json:"blood_stock_units_available" validate:"min=0,max=500"`
}

// UpdateBloodStockRequest sets an absolute unit count (stock take). Relative
// changes go through Restock/Decrement.
type UpdateBloodStockRequest struct {
	Units *int `json:"blood_stock_units_available,omitempty" validate:"omitempty,min=0,max=500"`
}

type ListBloodStocksFilter struct {
	BankID     *uint
	BloodGroup *constants.BloodGroup
	// BelowUnits lists rows with fewer units than this threshold when > 0.
	BelowUnits int
}
