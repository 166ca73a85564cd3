package curriculum

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// errors
	ErrNotFound = errors.New("subject not found")
)

type (
	Repository interface {
		CreateSubject(ctx context.Context, subj Subject) (Subject, error)
		QueryAllSubjects(ctx context.Context) ([]Subject, error)
		GetSubjectByID(ctx context.Context, id string) (Subject, error)
	}

	Service interface {
		Create(ctx context.Context, ns NewSubject) (Subject, error)
		QueryAll(ctx context.Context) ([]Subject, error)
		GetByID(ctx context.Context, id string) (Subject, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Create adds a new master Subject. Only curriculum administration (seeding)
// goes through here; the workflow itself never mutates the master list.
func (svc *service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	subj := Subject{
		ID:      uuid.New().String(),
		Name:    ns.Name,
		Credits: ns.Credits,
	}
	for _, no := range ns.Outcomes {
		subj.Outcomes = append(subj.Outcomes, Outcome{
			ID:           uuid.New().String(),
			Topic:        no.Topic,
			Project:      no.Project,
			Credits:      no.Credits,
			Compulsory:   no.Compulsory,
			Requirements: no.Requirements,
		})
	}
	return svc.repo.CreateSubject(ctx, subj)
}

func (svc *service) QueryAll(ctx context.Context) ([]Subject, error) {
	return svc.repo.QueryAllSubjects(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}
