package inmem

import (
	"context"

	"github.com/trezcool/maendeleo/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db.student}
}

// cloneStudent deep-copies the snapshot so callers never mutate stored state
// through shared backing arrays.
func cloneStudent(std student.Student) student.Student {
	assigned := make([]student.AssignedSubject, len(std.AssignedSubjects))
	copy(assigned, std.AssignedSubjects)
	for i := range assigned {
		outcomes := make([]student.AssignedOutcome, len(assigned[i].Outcomes))
		copy(outcomes, assigned[i].Outcomes)
		for j := range outcomes {
			reqs := make([]string, len(outcomes[j].Requirements))
			copy(reqs, outcomes[j].Requirements)
			outcomes[j].Requirements = reqs

			projects := make([]student.Project, len(outcomes[j].Projects))
			copy(projects, outcomes[j].Projects)
			outcomes[j].Projects = projects
		}
		assigned[i].Outcomes = outcomes
	}
	std.AssignedSubjects = assigned
	return std
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored := cloneStudent(std)
	repo.db.table[std.ID] = &stored
	return std, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0, len(repo.db.table))
	for _, std := range repo.db.table {
		students = append(students, cloneStudent(*std))
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if std, ok := repo.db.table[id]; ok {
		return cloneStudent(*std), nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[std.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if orig.Version != std.Version {
		return student.Student{}, student.ErrVersionConflict
	}

	std.Version++
	stored := cloneStudent(std)
	repo.db.table[std.ID] = &stored
	return std, nil
}
