package model

import (
	"time"

	"blood_donation_backend/internals/constants"
)

const MaxUnits = 500

// BloodStockModel: satu baris per (bank, golongan darah)
type BloodStockModel struct {
	BloodStockID          uint                 `gorm:"column:blood_stock_id;primaryKey;autoIncrement" json:"blood_stock_id"`
	BloodStockBankID      uint                 `gorm:"column:blood_stock_bank_id;not null;uniqueIndex:uq_blood_stocks_bank_group,priority:1" json:"blood_stock_bank_id" validate:"required"`
	BloodStockGroup       constants.BloodGroup `gorm:"column:blood_stock_blood_group;type:varchar(3);not null;uniqueIndex:uq_blood_stocks_bank_group,priority:2" json:"blood_stock_blood_group" validate:"required,bloodgroup"`
	BloodStockUnits       int                  `gorm:"column:blood_stock_units_available;not null;default:0" json:"blood_stock_units_available" validate:"min=0,max=500"`
	BloodStockLastUpdated time.Time            `gorm:"column:blood_stock_last_updated;not null" json:"blood_stock_last_updated"`
}

func (BloodStockModel) TableName() string { return "blood_stocks" }
