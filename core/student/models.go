package student

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/maendeleo/core"
)

// Project statuses
const (
	ProjectPending  = "Pending"
	ProjectApproved = "Approved"
	ProjectRejected = "Rejected"
)

type Student struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	AssignedSubjects []AssignedSubject `json:"assigned_subjects"`
	// Version is the optimistic concurrency token bumped on every whole-record
	// write; a stale read loses the race instead of silently overwriting.
	Version   int       `json:"-"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// AssignedSubject is a deep copy of a master curriculum Subject taken at
// assignment time. SubjectID is a lookup-only back-reference: later edits to
// the master never alter an issued snapshot.
type AssignedSubject struct {
	SubjectID string            `json:"subject_id"`
	Name      string            `json:"name"`
	Credits   float64           `json:"credits"`
	Outcomes  []AssignedOutcome `json:"outcomes"`
}

type AssignedOutcome struct {
	OutcomeID    string    `json:"outcome_id"`
	Topic        string    `json:"topic"`
	Project      string    `json:"project"`
	Credits      float64   `json:"credits"`
	Compulsory   bool      `json:"compulsory"`
	Requirements []string  `json:"requirements"`
	Completed    bool      `json:"completed"`
	Projects     []Project `json:"projects"`
}

// Project is a unit of evidence submitted against an outcome for credit.
type Project struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	RequestedCredit float64   `json:"requested_credit"`
	Status          string    `json:"status"`
	SubmissionDate  time.Time `json:"submission_date"` // UTC
	// ApprovedCredit is only present once the project has been approved.
	// It may be less than RequestedCredit; partial credit is a teacher judgment call.
	ApprovedCredit *float64 `json:"approved_credit,omitempty"`
	AssessedBy     string   `json:"assessed_by,omitempty"`
	Assessment     string   `json:"assessment,omitempty"`
}

func (p *Project) IsPending() bool { return p.Status == ProjectPending }

// EarnedCredits sums the approved credit of the outcome's projects.
func (ao *AssignedOutcome) EarnedCredits() float64 {
	var total float64
	for _, p := range ao.Projects {
		if p.Status == ProjectApproved && p.ApprovedCredit != nil {
			total += *p.ApprovedCredit
		}
	}
	return total
}

func (as *AssignedSubject) EarnedCredits() float64 {
	var total float64
	for i := range as.Outcomes {
		total += as.Outcomes[i].EarnedCredits()
	}
	return total
}

func (s *Student) EarnedCredits() float64 {
	var total float64
	for i := range s.AssignedSubjects {
		total += s.AssignedSubjects[i].EarnedCredits()
	}
	return total
}

// assignedSubject finds a subject in the snapshot by its master back-reference.
// Linear scans are fine here: these are curricula, not catalogs.
func (s *Student) assignedSubject(subjectID string) *AssignedSubject {
	for i := range s.AssignedSubjects {
		if s.AssignedSubjects[i].SubjectID == subjectID {
			return &s.AssignedSubjects[i]
		}
	}
	return nil
}

func (as *AssignedSubject) outcome(outcomeID string) *AssignedOutcome {
	for i := range as.Outcomes {
		if as.Outcomes[i].OutcomeID == outcomeID {
			return &as.Outcomes[i]
		}
	}
	return nil
}

func (ao *AssignedOutcome) project(projectID string) *Project {
	for i := range ao.Projects {
		if ao.Projects[i].ID == projectID {
			return &ao.Projects[i]
		}
	}
	return nil
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return validate.Struct(ns)
}

// NewProject contains information needed to submit a Project against an outcome.
type NewProject struct {
	Name            string  `json:"name" validate:"required"`
	RequestedCredit float64 `json:"requested_credit" validate:"required,gt=0"`
}

func (np *NewProject) Validate(validate *validator.Validate) error {
	np.Name = core.CleanString(np.Name)
	return validate.Struct(np)
}

// ProjectDecision is a teacher's terminal verdict on a submitted Project.
type ProjectDecision struct {
	Status         string   `json:"status" validate:"required,oneof=Approved Rejected"`
	ApprovedCredit *float64 `json:"approved_credit" validate:"omitempty,gte=0"`
	AssessedBy     string   `json:"assessed_by"`
	Assessment     string   `json:"assessment"`
}

func (pd *ProjectDecision) Validate(validate *validator.Validate) error {
	pd.Status = core.CleanString(pd.Status)
	pd.AssessedBy = core.CleanString(pd.AssessedBy)
	if err := validate.Struct(pd); err != nil {
		return err
	}
	if pd.Status == ProjectApproved && pd.ApprovedCredit == nil {
		return core.NewValidationError(
			errors.New("approved credit is required when approving"),
			core.FieldError{Field: "approved_credit", Error: "this field is required when approving"},
		)
	}
	return nil
}
