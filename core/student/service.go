package student

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/curriculum"
	"github.com/trezcool/maendeleo/core/notification"
)

var (
	// errors
	ErrNotFound        = errors.New("student not found")
	ErrSubjectNotFound = errors.New("subject not found in student's assigned subjects")
	ErrOutcomeNotFound = errors.New("outcome not found in subject")
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectDecided  = errors.New("project has already been assessed")
	ErrVersionConflict = errors.New("student record was modified concurrently")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		// UpdateStudent persists the whole record as one unit. The write only
		// succeeds if std.Version matches the stored version; it returns
		// ErrVersionConflict otherwise and bumps the version on success.
		UpdateStudent(ctx context.Context, std Student) (Student, error)
	}

	Service interface {
		Create(ctx context.Context, ns NewStudent) (Student, error)
		QueryAll(ctx context.Context) ([]Student, error)
		GetByID(ctx context.Context, id string) (Student, error)

		// AssignSubjects snapshots the current master curriculum onto the
		// student, overwriting any prior snapshot (full reset).
		AssignSubjects(ctx context.Context, studentID string) ([]AssignedSubject, error)
		// GetAssignedSubjects returns the student's snapshot, lazily
		// provisioning it on first access.
		GetAssignedSubjects(ctx context.Context, studentID string) ([]AssignedSubject, error)
		// SetOutcomeCompletion is a direct override for manual teacher
		// correction, independent of the approval-derived completion.
		SetOutcomeCompletion(ctx context.Context, studentID, subjectID, outcomeID string, completed bool) (AssignedOutcome, error)
		ListProjects(ctx context.Context, studentID, subjectID, outcomeID string) ([]Project, error)

		SubmitProject(ctx context.Context, studentID, subjectID, outcomeID string, np NewProject) (Project, error)
		AssessProject(ctx context.Context, studentID, subjectID, outcomeID, projectID string, pd ProjectDecision) (Project, error)
	}

	service struct {
		repo     Repository
		currSvc  curriculum.Service
		notifSvc notification.Service
		mailSvc  core.EmailService
		validate *validator.Validate
		log      core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	currSvc curriculum.Service,
	notifSvc notification.Service,
	mailSvc core.EmailService,
	validate *validator.Validate,
	log core.Logger,
) Service {
	return &service{
		repo:     repo,
		currSvc:  currSvc,
		notifSvc: notifSvc,
		mailSvc:  mailSvc,
		validate: validate,
		log:      log,
	}
}

func (svc *service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Student{}, err
	}
	now := time.Now().UTC()
	std := Student{
		ID:        uuid.New().String(),
		Name:      ns.Name,
		Email:     ns.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

// snapshotSubjects deep-copies the master curriculum into fresh AssignedSubjects.
func (svc *service) snapshotSubjects(ctx context.Context) ([]AssignedSubject, error) {
	subjects, err := svc.currSvc.QueryAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying master subjects")
	}

	assigned := make([]AssignedSubject, 0, len(subjects))
	for _, subj := range subjects {
		as := AssignedSubject{
			SubjectID: subj.ID,
			Name:      subj.Name,
			Credits:   subj.Credits,
			Outcomes:  make([]AssignedOutcome, 0, len(subj.Outcomes)),
		}
		for _, out := range subj.Outcomes {
			reqs := make([]string, len(out.Requirements))
			copy(reqs, out.Requirements)
			as.Outcomes = append(as.Outcomes, AssignedOutcome{
				OutcomeID:    out.ID,
				Topic:        out.Topic,
				Project:      out.Project,
				Credits:      out.Credits,
				Compulsory:   out.Compulsory,
				Requirements: reqs,
				Completed:    false,
				Projects:     []Project{},
			})
		}
		assigned = append(assigned, as)
	}
	return assigned, nil
}

func (svc *service) assign(ctx context.Context, std Student) (Student, error) {
	assigned, err := svc.snapshotSubjects(ctx)
	if err != nil {
		return Student{}, err
	}
	std.AssignedSubjects = assigned
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *service) AssignSubjects(ctx context.Context, studentID string) ([]AssignedSubject, error) {
	std, err := svc.repo.GetStudentByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	std, err = svc.assign(ctx, std)
	if err != nil {
		return nil, err
	}
	return std.AssignedSubjects, nil
}

func (svc *service) GetAssignedSubjects(ctx context.Context, studentID string) ([]AssignedSubject, error) {
	std, err := svc.repo.GetStudentByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(std.AssignedSubjects) == 0 {
		if std, err = svc.assign(ctx, std); err != nil {
			return nil, err
		}
	}
	return std.AssignedSubjects, nil
}

func (svc *service) SetOutcomeCompletion(ctx context.Context, studentID, subjectID, outcomeID string, completed bool) (AssignedOutcome, error) {
	std, err := svc.repo.GetStudentByID(ctx, studentID)
	if err != nil {
		return AssignedOutcome{}, err
	}
	outcome, err := findOutcome(&std, subjectID, outcomeID)
	if err != nil {
		return AssignedOutcome{}, err
	}

	outcome.Completed = completed
	std.UpdatedAt = time.Now().UTC()
	if _, err = svc.repo.UpdateStudent(ctx, std); err != nil {
		return AssignedOutcome{}, err
	}
	return *outcome, nil
}

func (svc *service) ListProjects(ctx context.Context, studentID, subjectID, outcomeID string) ([]Project, error) {
	std, err := svc.repo.GetStudentByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	outcome, err := findOutcome(&std, subjectID, outcomeID)
	if err != nil {
		return nil, err
	}
	if outcome.Projects == nil {
		return []Project{}, nil
	}
	return outcome.Projects, nil
}

func (svc *service) SubmitProject(ctx context.Context, studentID, subjectID, outcomeID string, np NewProject) (Project, error) {
	if err := np.Validate(svc.validate); err != nil {
		return Project{}, err
	}

	std, err := svc.repo.GetStudentByID(ctx, studentID)
	if err != nil {
		return Project{}, err
	}
	subject := std.assignedSubject(subjectID)
	if subject == nil {
		return Project{}, ErrSubjectNotFound
	}
	outcome := subject.outcome(outcomeID)
	if outcome == nil {
		return Project{}, ErrOutcomeNotFound
	}

	project := Project{
		ID:              uuid.New().String(),
		Name:            np.Name,
		RequestedCredit: np.RequestedCredit,
		Status:          ProjectPending,
		SubmissionDate:  time.Now().UTC(),
	}
	outcome.Projects = append(outcome.Projects, project)
	std.UpdatedAt = project.SubmissionDate
	if _, err = svc.repo.UpdateStudent(ctx, std); err != nil {
		return Project{}, err
	}

	// The notification write is a separate operation; a failure here leaves the
	// relay behind the student record until reconciled (no shared transaction).
	_, err = svc.notifSvc.Record(ctx, notification.NewNotification{
		Message: fmt.Sprintf(
			"%s submitted project %q for %s in %s", std.Name, project.Name, outcome.Topic, subject.Name),
		StudentID:       std.ID,
		SubjectID:       subject.SubjectID,
		OutcomeID:       outcome.OutcomeID,
		ProjectID:       project.ID,
		ProjectName:     project.Name,
		CreditRequested: project.RequestedCredit,
	})
	if err != nil {
		svc.log.Error("recording submission notification", pkgerrors.Wrap(err, "project "+project.ID))
	}

	return project, nil
}

func (svc *service) AssessProject(ctx context.Context, studentID, subjectID, outcomeID, projectID string, pd ProjectDecision) (Project, error) {
	if err := pd.Validate(svc.validate); err != nil {
		return Project{}, err
	}

	std, err := svc.repo.GetStudentByID(ctx, studentID)
	if err != nil {
		return Project{}, err
	}
	outcome, err := findOutcome(&std, subjectID, outcomeID)
	if err != nil {
		return Project{}, err
	}
	project := outcome.project(projectID)
	if project == nil {
		return Project{}, ErrProjectNotFound
	}
	if !project.IsPending() {
		// terminal states are one-shot; re-deciding is rejected, not overwritten
		return Project{}, core.NewConflictError(ErrProjectDecided)
	}

	project.Status = pd.Status
	project.AssessedBy = pd.AssessedBy
	project.Assessment = pd.Assessment
	if pd.Status == ProjectApproved {
		project.ApprovedCredit = pd.ApprovedCredit
		outcome.Completed = true
	}

	assessedDate := time.Now().UTC()
	std.UpdatedAt = assessedDate
	if _, err = svc.repo.UpdateStudent(ctx, std); err != nil {
		if err == ErrVersionConflict {
			return Project{}, core.NewConflictError(err)
		}
		return Project{}, err
	}

	decided := *project
	svc.relayDecision(ctx, std, decided, assessedDate)
	return decided, nil
}

// relayDecision applies the decision to the notification log and mails the
// student. Both are best-effort: the student record is the source of truth and
// the notification update is idempotent, so either can be replayed later.
func (svc *service) relayDecision(ctx context.Context, std Student, project Project, assessedDate time.Time) {
	_, err := svc.notifSvc.ApplyDecision(ctx, project.ID, notification.Decision{
		Status:          notification.StatusForProject(project.Status),
		AssessedBy:      project.AssessedBy,
		AssessedDate:    assessedDate,
		ApprovedCredits: project.ApprovedCredit,
	})
	if err != nil {
		svc.log.Error("applying decision to notification", pkgerrors.Wrap(err, "project "+project.ID))
	}

	if std.Email == "" {
		return
	}
	body := fmt.Sprintf("Your project %q has been %s.", project.Name, notification.StatusForProject(project.Status))
	if project.ApprovedCredit != nil {
		body = fmt.Sprintf("%s Approved credits: %g.", body, *project.ApprovedCredit)
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: std.Name, Address: std.Email}},
		Subject: "Project assessment",
		Body:    body,
	})
}

func findOutcome(std *Student, subjectID, outcomeID string) (*AssignedOutcome, error) {
	subject := std.assignedSubject(subjectID)
	if subject == nil {
		return nil, ErrSubjectNotFound
	}
	outcome := subject.outcome(outcomeID)
	if outcome == nil {
		return nil, ErrOutcomeNotFound
	}
	return outcome, nil
}
