package model

import "time"

// DonorRequestLinkModel: donor X ditawari / dicocokkan ke request Y
type DonorRequestLinkModel struct {
	DonorRequestLinkID        uint      `gorm:"column:donor_request_link_id;primaryKey;autoIncrement" json:"donor_request_link_id"`
	DonorRequestLinkDonorID   uint      `gorm:"column:donor_request_link_donor_id;not null;uniqueIndex:uq_donor_request_links_pair,priority:1" json:"donor_request_link_donor_id" validate:"required"`
	DonorRequestLinkRequestID uint      `gorm:"column:donor_request_link_request_id;not null;uniqueIndex:uq_donor_request_links_pair,priority:2;index:idx_donor_request_links_request" json:"donor_request_link_request_id" validate:"required"`
	DonorRequestLinkLinkedAt  time.Time `gorm:"column:donor_request_link_linked_at;not null" json:"donor_request_link_linked_at"`
}

func (DonorRequestLinkModel) TableName() string { return "donor_request_links" }
