package curriculum

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/maendeleo/core"
)

// Subject is a master curriculum subject. It is maintained centrally and is
// read-only from the workflow's perspective: students never hold a live
// reference to it, only deep copies taken at assignment time.
type Subject struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Credits  float64   `json:"credits"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome is a gradeable learning objective within a Subject.
type Outcome struct {
	ID           string   `json:"id"`
	Topic        string   `json:"topic"`
	Project      string   `json:"project"` // description of the expected evidence
	Credits      float64  `json:"credits"`
	Compulsory   bool     `json:"compulsory"`
	Requirements []string `json:"requirements"`
}

// NewSubject contains information needed to create a master Subject.
type NewSubject struct {
	Name     string       `json:"name" validate:"required"`
	Credits  float64      `json:"credits" validate:"required,gt=0"`
	Outcomes []NewOutcome `json:"outcomes" validate:"omitempty,dive"`
}

type NewOutcome struct {
	Topic        string   `json:"topic" validate:"required"`
	Project      string   `json:"project"`
	Credits      float64  `json:"credits" validate:"required,gt=0"`
	Compulsory   bool     `json:"compulsory"`
	Requirements []string `json:"requirements"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	for i := range ns.Outcomes {
		ns.Outcomes[i].Topic = core.CleanString(ns.Outcomes[i].Topic)
	}
	return validate.Struct(ns)
}
