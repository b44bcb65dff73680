package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/leetnote-go-api/pkg/ai"
)

// EvaluationVersion is stamped on every stored evaluation.
const EvaluationVersion int16 = 1

// Evaluation stores the model's verdict on a single submission.
type Evaluation struct {
	ID           uint                                     `gorm:"primaryKey" json:"id"`
	SubmissionID uint                                     `gorm:"not null;index" json:"submission_id"`
	Version      int16                                    `gorm:"not null;default:1" json:"version"`
	Payload      datatypes.JSONType[ai.EvaluationPayload] `gorm:"column:evaluation;not null" json:"evaluation"`
	CreatedAt    time.Time                                `gorm:"index" json:"created_at"`
	Submission   Submission                               `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
