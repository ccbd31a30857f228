package model

import "time"

type BloodBankModel struct {
	BloodBankID            uint      `gorm:"column:blood_bank_id;primaryKey;autoIncrement" json:"blood_bank_id"`
	BloodBankName          string    `gorm:"column:blood_bank_name;size:150;not null;uniqueIndex:uq_blood_banks_name_location,priority:1" json:"blood_bank_name" validate:"required,min=2,max=150"`
	BloodBankLocation      string    `gorm:"column:blood_bank_location;size:200;not null;uniqueIndex:uq_blood_banks_name_location,priority:2" json:"blood_bank_location" validate:"required,min=2,max=200"`
	BloodBankContactNumber string    `gorm:"column:blood_bank_contact_number;size:20;not null" json:"blood_bank_contact_number" validate:"required,phone"`
	BloodBankEmail         string    `gorm:"column:blood_bank_email;size:255;not null" json:"blood_bank_email" validate:"required,email,max=255"`
	BloodBankCapacity      int       `gorm:"column:blood_bank_capacity;not null" json:"blood_bank_capacity" validate:"min=1,max=100000"`
	BloodBankManager       string    `gorm:"column:blood_bank_manager;size:100;not null" json:"blood_bank_manager" validate:"required,min=2,max=100"`
	BloodBankCreatedAt     time.Time `gorm:"column:blood_bank_created_at;autoCreateTime" json:"blood_bank_created_at"`
	BloodBankUpdatedAt     time.Time `gorm:"column:blood_bank_updated_at;autoUpdateTime" json:"blood_bank_updated_at"`
}

func (BloodBankModel) TableName() string { return "blood_banks" }
