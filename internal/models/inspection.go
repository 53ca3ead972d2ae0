package models

import (
	"encoding/json"
	"time"
)

// InspectionStatus is the readiness/approval state of an inspection record.
// It is computed once at submission and only ever advances to APPROVED.
type InspectionStatus string

const (
	StatusReady    InspectionStatus = "READY"
	StatusNotReady InspectionStatus = "NOT READY"
	StatusApproved InspectionStatus = "APPROVED"
)

// Inspection is a submitted P2H record persisted in Postgres. It is created
// once by the submission engine and mutated exactly once by the approval
// transition.
type Inspection struct {
	ID                  uint             `gorm:"primaryKey" json:"id"`
	UnitCode            string           `gorm:"size:50;not null" json:"unit_code"`
	Date                string           `gorm:"size:20;not null" json:"date"`
	Shift               string           `gorm:"size:20;not null" json:"shift"`
	HMStart             float64          `gorm:"column:hm_start" json:"hm_start"`
	OperatorID          string           `gorm:"size:50;not null;index" json:"operator_id"`
	OperatorName        string           `gorm:"size:100" json:"operator_name"`
	Status              InspectionStatus `gorm:"size:20" json:"status"`
	Answers             json.RawMessage  `gorm:"type:jsonb;not null" json:"answers"`
	ApprovalToken       string           `gorm:"size:64;uniqueIndex" json:"-"`
	ApprovedAt          *time.Time       `json:"approved_at"`
	SupervisorSignature string           `gorm:"type:text" json:"supervisor_signature,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
}

// TableName keeps the table name the deployed schema uses.
func (Inspection) TableName() string {
	return "inspections"
}

// Approved reports whether the one-way approval transition has happened.
func (i *Inspection) Approved() bool {
	return i.ApprovedAt != nil
}
