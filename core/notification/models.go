package notification

import (
	"strings"
	"time"
)

// Notification statuses. They track the addressed project's lifecycle.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// StatusForProject maps a project status ("Pending", "Approved", "Rejected")
// to its notification counterpart.
func StatusForProject(projectStatus string) string {
	return strings.ToLower(projectStatus)
}

// Notification is an out-of-band record of a workflow event, kept independent
// of the student record it describes. Teachers discover pending work through
// it; students learn their projects' outcomes from it.
type Notification struct {
	ID              string    `json:"id"`
	Message         string    `json:"message"`
	StudentID       string    `json:"student_id"`
	SubjectID       string    `json:"subject_id"`
	OutcomeID       string    `json:"outcome_id"`
	ProjectID       string    `json:"project_id"`
	ProjectName     string    `json:"project_name"`
	CreditRequested float64   `json:"credit_requested"`
	Status          string    `json:"status"`
	Read            bool      `json:"read"`
	Date            time.Time `json:"date"` // UTC

	// decision fields, set once a verdict is rendered
	AssessedBy      string     `json:"assessed_by,omitempty"`
	AssessedDate    *time.Time `json:"assessed_date,omitempty"`
	ApprovedCredits *float64   `json:"approved_credits,omitempty"`
}

func (n *Notification) IsDecided() bool {
	return n.Status == StatusApproved || n.Status == StatusRejected
}

// NewNotification contains information needed to record a submission event.
type NewNotification struct {
	Message         string  `json:"message"`
	StudentID       string  `json:"student_id"`
	SubjectID       string  `json:"subject_id"`
	OutcomeID       string  `json:"outcome_id"`
	ProjectID       string  `json:"project_id"`
	ProjectName     string  `json:"project_name"`
	CreditRequested float64 `json:"credit_requested"`
}

// Decision carries the verdict fields applied to the matching notification.
type Decision struct {
	Status          string
	AssessedBy      string
	AssessedDate    time.Time
	ApprovedCredits *float64
}

type QueryFilter struct {
	Status    string `query:"status"`
	StudentID string `query:"student_id"`
}
