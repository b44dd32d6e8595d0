package models

import "time"

// AttributeNode is one node of the persisted attribute tree. Values are CBOR
// encoded; an empty value means unset.
type AttributeNode struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	Type          uint32 `gorm:"not null;index:idx_parent_type,priority:2"`
	ParentID      uint64 `gorm:"not null;index:idx_parent_type,priority:1"`
	ReportedValue []byte
	DesiredValue  []byte
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (AttributeNode) TableName() string {
	return "attributes"
}
