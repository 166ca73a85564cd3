package inmem

import (
	"context"

	"github.com/trezcool/maendeleo/core/curriculum"
)

type subjectRepository struct {
	db *subjectTable
}

var _ curriculum.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *DB) *subjectRepository {
	return &subjectRepository{db: db.subject}
}

// cloneSubject guards the stored record against aliasing through shared slices.
func cloneSubject(subj curriculum.Subject) curriculum.Subject {
	outcomes := make([]curriculum.Outcome, len(subj.Outcomes))
	copy(outcomes, subj.Outcomes)
	for i := range outcomes {
		reqs := make([]string, len(outcomes[i].Requirements))
		copy(reqs, outcomes[i].Requirements)
		outcomes[i].Requirements = reqs
	}
	subj.Outcomes = outcomes
	return subj
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, subj curriculum.Subject) (curriculum.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored := cloneSubject(subj)
	repo.db.table[subj.ID] = &stored
	repo.db.order = append(repo.db.order, subj.ID)
	return subj, nil
}

func (repo *subjectRepository) QueryAllSubjects(ctx context.Context) ([]curriculum.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]curriculum.Subject, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		if subj, ok := repo.db.table[id]; ok {
			subjects = append(subjects, cloneSubject(*subj))
		}
	}
	return subjects, nil
}

func (repo *subjectRepository) GetSubjectByID(ctx context.Context, id string) (curriculum.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if subj, ok := repo.db.table[id]; ok {
		return cloneSubject(*subj), nil
	}
	return curriculum.Subject{}, curriculum.ErrNotFound
}
