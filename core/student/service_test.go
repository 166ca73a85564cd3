package student_test

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/curriculum"
	"github.com/trezcool/maendeleo/core/notification"
	"github.com/trezcool/maendeleo/core/student"
	emailsvc "github.com/trezcool/maendeleo/services/email"
	logsvc "github.com/trezcool/maendeleo/services/logger"
	"github.com/trezcool/maendeleo/storage/database/inmem"
	"github.com/trezcool/maendeleo/tests"
)

type fixture struct {
	subjRepo  curriculum.Repository
	stdRepo   student.Repository
	notifRepo notification.Repository

	currSvc  curriculum.Service
	notifSvc notification.Service
	svc      student.Service

	validate *validator.Validate
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := inmem.Open()
	if err != nil {
		t.Fatalf("inmem.Open() failed: %v", err)
	}

	enLocale := en.New()
	uniTranslator := ut.New(enLocale, enLocale)
	translator, _ := uniTranslator.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)

	conf := testutil.NewConfig()
	logger := logsvc.NewConsoleLogger(log.New(io.Discard, "", 0))
	emailsvc.ClearSentMessages()

	f := &fixture{
		subjRepo:  inmem.NewSubjectRepository(db),
		stdRepo:   inmem.NewStudentRepository(db),
		notifRepo: inmem.NewNotificationRepository(db),
		validate:  validate,
	}
	f.currSvc = curriculum.NewService(f.subjRepo)
	f.notifSvc = notification.NewService(f.notifRepo)
	f.svc = student.NewService(f.stdRepo, f.currSvc, f.notifSvc, emailsvc.NewConsoleServiceMock(conf), validate, logger)
	return f
}

// seedAndAssign seeds one subject with one outcome and provisions the
// student's snapshot.
func seedAndAssign(t *testing.T, f *fixture, email string) (student.Student, student.AssignedSubject, student.AssignedOutcome) {
	t.Helper()

	subj := testutil.CreateSubject(t, f.subjRepo, "Algorithms", 10,
		testutil.Outcome("Sorting", "Implement and compare sorting algorithms", 5, true, "Big-O analysis"),
	)
	std := testutil.CreateStudent(t, f.stdRepo, "Jane Mwangi", email)

	assigned, err := f.svc.AssignSubjects(context.Background(), std.ID)
	if err != nil {
		t.Fatalf("AssignSubjects() failed: %v", err)
	}
	if len(assigned) != 1 || assigned[0].SubjectID != subj.ID {
		t.Fatalf("AssignSubjects() = %+v; want 1 subject %s", assigned, subj.ID)
	}
	return std, assigned[0], assigned[0].Outcomes[0]
}

func submitProject(t *testing.T, f *fixture, std student.Student, as student.AssignedSubject, ao student.AssignedOutcome, name string, credit float64) student.Project {
	t.Helper()
	project, err := f.svc.SubmitProject(
		context.Background(), std.ID, as.SubjectID, ao.OutcomeID, student.NewProject{Name: name, RequestedCredit: credit})
	if err != nil {
		t.Fatalf("SubmitProject() failed: %v", err)
	}
	return project
}

func Test_service_GetAssignedSubjects_lazyProvision(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	s1 := testutil.CreateSubject(t, f.subjRepo, "Algorithms", 10,
		testutil.Outcome("Sorting", "Sorting algorithms", 5, true, "stability", "complexity"),
		testutil.Outcome("Searching", "Search trees", 5, false),
	)
	s2 := testutil.CreateSubject(t, f.subjRepo, "Databases", 8,
		testutil.Outcome("Normalization", "Normalize a schema", 8, true),
	)
	std := testutil.CreateStudent(t, f.stdRepo, "Amani", "amani@test.cd")

	// first read provisions the snapshot
	assigned, err := f.svc.GetAssignedSubjects(ctx, std.ID)
	if err != nil {
		t.Fatalf("GetAssignedSubjects() failed: %v", err)
	}
	if len(assigned) != 2 {
		t.Fatalf("GetAssignedSubjects() returned %d subjects; want 2", len(assigned))
	}
	if assigned[0].SubjectID != s1.ID || assigned[1].SubjectID != s2.ID {
		t.Errorf("snapshot subject IDs = %s, %s; want %s, %s", assigned[0].SubjectID, assigned[1].SubjectID, s1.ID, s2.ID)
	}
	sorting := assigned[0].Outcomes[0]
	if sorting.Topic != "Sorting" || sorting.Credits != 5 || !sorting.Compulsory {
		t.Errorf("unexpected outcome copy: %+v", sorting)
	}
	if sorting.Completed {
		t.Error("fresh outcome must not be completed")
	}
	if len(sorting.Projects) != 0 {
		t.Errorf("fresh outcome has %d projects; want 0", len(sorting.Projects))
	}
	if len(sorting.Requirements) != 2 {
		t.Errorf("requirements not copied: %+v", sorting.Requirements)
	}

	// the snapshot is pinned: later master additions do not show up
	testutil.CreateSubject(t, f.subjRepo, "Networks", 6, testutil.Outcome("Routing", "", 6, true))
	assigned, err = f.svc.GetAssignedSubjects(ctx, std.ID)
	if err != nil {
		t.Fatalf("GetAssignedSubjects() failed: %v", err)
	}
	if len(assigned) != 2 {
		t.Errorf("pinned snapshot grew to %d subjects; want 2", len(assigned))
	}
}

func Test_service_AssignSubjects_overwrites(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	testutil.CreateSubject(t, f.subjRepo, "Algorithms", 10, testutil.Outcome("Sorting", "", 5, true))
	std := testutil.CreateStudent(t, f.stdRepo, "Amani", "amani@test.cd")

	assigned, err := f.svc.AssignSubjects(ctx, std.ID)
	if err != nil {
		t.Fatalf("AssignSubjects() failed: %v", err)
	}
	as, ao := assigned[0], assigned[0].Outcomes[0]

	// make some progress
	submitProject(t, f, std, as, ao, "Quicksort visualizer", 3)
	if _, err = f.svc.SetOutcomeCompletion(ctx, std.ID, as.SubjectID, ao.OutcomeID, true); err != nil {
		t.Fatalf("SetOutcomeCompletion() failed: %v", err)
	}

	// explicit re-assign resets the whole snapshot
	testutil.CreateSubject(t, f.subjRepo, "Databases", 8, testutil.Outcome("Normalization", "", 8, true))
	assigned, err = f.svc.AssignSubjects(ctx, std.ID)
	if err != nil {
		t.Fatalf("AssignSubjects() failed: %v", err)
	}
	if len(assigned) != 2 {
		t.Fatalf("re-assign returned %d subjects; want 2", len(assigned))
	}
	fresh := assigned[0].Outcomes[0]
	if fresh.Completed || len(fresh.Projects) != 0 {
		t.Errorf("re-assign must reset progress; got %+v", fresh)
	}
}

func Test_service_AssignSubjects_studentNotFound(t *testing.T) {
	f := setup(t)
	if _, err := f.svc.AssignSubjects(context.Background(), "nope"); err != student.ErrNotFound {
		t.Errorf("AssignSubjects() error = %v, wantErr %v", err, student.ErrNotFound)
	}
}

func Test_service_SubmitProject(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	std, as, ao := seedAndAssign(t, f, "jane@test.cd")

	tests := []struct {
		name      string
		subjectID string
		outcomeID string
		np        student.NewProject
		wantErr   error
	}{
		{name: "name required", subjectID: as.SubjectID, outcomeID: ao.OutcomeID, np: student.NewProject{RequestedCredit: 3}},
		{name: "credit required", subjectID: as.SubjectID, outcomeID: ao.OutcomeID, np: student.NewProject{Name: "X"}},
		{name: "credit must be positive", subjectID: as.SubjectID, outcomeID: ao.OutcomeID, np: student.NewProject{Name: "X", RequestedCredit: -1}},
		{name: "unknown subject", subjectID: "nope", outcomeID: ao.OutcomeID, np: student.NewProject{Name: "X", RequestedCredit: 3}, wantErr: student.ErrSubjectNotFound},
		{name: "unknown outcome", subjectID: as.SubjectID, outcomeID: "nope", np: student.NewProject{Name: "X", RequestedCredit: 3}, wantErr: student.ErrOutcomeNotFound},
		{name: "ok", subjectID: as.SubjectID, outcomeID: ao.OutcomeID, np: student.NewProject{Name: "Quicksort visualizer", RequestedCredit: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project, err := f.svc.SubmitProject(ctx, std.ID, tt.subjectID, tt.outcomeID, tt.np)
			if tt.name == "ok" {
				if err != nil {
					t.Fatalf("SubmitProject() failed: %v", err)
				}
				if project.ID == "" || project.Status != student.ProjectPending {
					t.Errorf("unexpected project: %+v", project)
				}
				if project.SubmissionDate.IsZero() {
					t.Error("submission date not set")
				}
				return
			}
			if err == nil {
				t.Fatal("SubmitProject() expected an error")
			}
			if tt.wantErr != nil && err != tt.wantErr {
				t.Errorf("SubmitProject() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	// only the valid submission went through
	projects, err := f.svc.ListProjects(ctx, std.ID, as.SubjectID, ao.OutcomeID)
	if err != nil {
		t.Fatalf("ListProjects() failed: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("ListProjects() returned %d projects; want 1", len(projects))
	}

	// and recorded exactly one pending notification
	notifs, err := f.notifSvc.Query(ctx, notification.QueryFilter{})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(notifs) != 1 {
		t.Fatalf("got %d notifications; want 1", len(notifs))
	}
	notif := notifs[0]
	if notif.Status != notification.StatusPending || notif.Read {
		t.Errorf("unexpected notification state: %+v", notif)
	}
	if notif.StudentID != std.ID || notif.ProjectID != projects[0].ID || notif.CreditRequested != 3 {
		t.Errorf("notification does not reference the submission: %+v", notif)
	}
	wantMsg := `Jane Mwangi submitted project "Quicksort visualizer" for Sorting in Algorithms`
	if notif.Message != wantMsg {
		t.Errorf("message = %q; want %q", notif.Message, wantMsg)
	}
}

func Test_service_AssessProject_approve(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	std, as, ao := seedAndAssign(t, f, "jane@test.cd")
	project := submitProject(t, f, std, as, ao, "Quicksort visualizer", 5)

	emailsvc.ClearSentMessages()

	credit := 4.5
	decided, err := f.svc.AssessProject(ctx, std.ID, as.SubjectID, ao.OutcomeID, project.ID, student.ProjectDecision{
		Status:         student.ProjectApproved,
		ApprovedCredit: &credit,
		AssessedBy:     "Mr. Banza",
		Assessment:     "Solid work",
	})
	if err != nil {
		t.Fatalf("AssessProject() failed: %v", err)
	}
	if decided.Status != student.ProjectApproved {
		t.Errorf("status = %s; want %s", decided.Status, student.ProjectApproved)
	}
	if decided.ApprovedCredit == nil || *decided.ApprovedCredit != credit {
		t.Errorf("approved credit = %v; want %v", decided.ApprovedCredit, credit)
	}
	if decided.AssessedBy != "Mr. Banza" || decided.Assessment != "Solid work" {
		t.Errorf("assessment fields not kept: %+v", decided)
	}

	// approval completes the outcome and counts towards earned credits
	refreshed, err := f.svc.GetByID(ctx, std.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	outcome := refreshed.AssignedSubjects[0].Outcomes[0]
	if !outcome.Completed {
		t.Error("approval must complete the outcome")
	}
	if got := refreshed.EarnedCredits(); got != credit {
		t.Errorf("EarnedCredits() = %v; want %v", got, credit)
	}

	// the notification now carries the verdict
	notif, err := f.notifRepo.GetNotificationByProjectID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetNotificationByProjectID() failed: %v", err)
	}
	if notif.Status != notification.StatusApproved {
		t.Errorf("notification status = %s; want %s", notif.Status, notification.StatusApproved)
	}
	if notif.AssessedBy != "Mr. Banza" || notif.AssessedDate == nil {
		t.Errorf("notification verdict fields not set: %+v", notif)
	}
	if notif.ApprovedCredits == nil || *notif.ApprovedCredits != credit {
		t.Errorf("notification approved credits = %v; want %v", notif.ApprovedCredits, credit)
	}

	// and the student got mailed
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("sent %d emails; want 1", len(emailsvc.SentMessages))
	}
	if to := emailsvc.SentMessages[0].To[0].Address; to != "jane@test.cd" {
		t.Errorf("email sent to %s; want jane@test.cd", to)
	}
}

func Test_service_AssessProject_reject(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	std, as, ao := seedAndAssign(t, f, "")
	project := submitProject(t, f, std, as, ao, "Bubble sort", 5)

	decided, err := f.svc.AssessProject(ctx, std.ID, as.SubjectID, ao.OutcomeID, project.ID, student.ProjectDecision{
		Status:     student.ProjectRejected,
		AssessedBy: "Mr. Banza",
		Assessment: "Too trivial",
	})
	if err != nil {
		t.Fatalf("AssessProject() failed: %v", err)
	}
	if decided.Status != student.ProjectRejected {
		t.Errorf("status = %s; want %s", decided.Status, student.ProjectRejected)
	}
	if decided.ApprovedCredit != nil {
		t.Errorf("rejected project must carry no credit; got %v", *decided.ApprovedCredit)
	}

	refreshed, err := f.svc.GetByID(ctx, std.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if refreshed.AssignedSubjects[0].Outcomes[0].Completed {
		t.Error("rejection must not complete the outcome")
	}
	if got := refreshed.EarnedCredits(); got != 0 {
		t.Errorf("EarnedCredits() = %v; want 0", got)
	}

	notif, err := f.notifRepo.GetNotificationByProjectID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetNotificationByProjectID() failed: %v", err)
	}
	if notif.Status != notification.StatusRejected {
		t.Errorf("notification status = %s; want %s", notif.Status, notification.StatusRejected)
	}
}

func Test_service_AssessProject_invalidInput(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	std, as, ao := seedAndAssign(t, f, "")
	project := submitProject(t, f, std, as, ao, "Quicksort visualizer", 5)

	credit := 2.0
	tests := []struct {
		name string
		pd   student.ProjectDecision
	}{
		{name: "status required", pd: student.ProjectDecision{ApprovedCredit: &credit}},
		{name: "status must be terminal", pd: student.ProjectDecision{Status: "Maybe"}},
		{name: "pending is not a verdict", pd: student.ProjectDecision{Status: student.ProjectPending}},
		{name: "approval requires credit", pd: student.ProjectDecision{Status: student.ProjectApproved}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.AssessProject(ctx, std.ID, as.SubjectID, ao.OutcomeID, project.ID, tt.pd); err == nil {
				t.Fatal("AssessProject() expected an error")
			}

			// nothing changed
			projects, err := f.svc.ListProjects(ctx, std.ID, as.SubjectID, ao.OutcomeID)
			if err != nil {
				t.Fatalf("ListProjects() failed: %v", err)
			}
			if projects[0].Status != student.ProjectPending {
				t.Errorf("project status = %s; want still %s", projects[0].Status, student.ProjectPending)
			}
		})
	}
}

func Test_service_AssessProject_redecideConflicts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	std, as, ao := seedAndAssign(t, f, "")
	project := submitProject(t, f, std, as, ao, "Quicksort visualizer", 5)

	credit := 4.5
	if _, err := f.svc.AssessProject(ctx, std.ID, as.SubjectID, ao.OutcomeID, project.ID, student.ProjectDecision{
		Status:         student.ProjectApproved,
		ApprovedCredit: &credit,
		AssessedBy:     "Mr. Banza",
	}); err != nil {
		t.Fatalf("AssessProject() failed: %v", err)
	}

	// terminal verdicts are one-shot
	_, err := f.svc.AssessProject(ctx, std.ID, as.SubjectID, ao.OutcomeID, project.ID, student.ProjectDecision{
		Status:     student.ProjectRejected,
		AssessedBy: "Mrs. Kanza",
	})
	if !core.IsConflict(err) {
		t.Fatalf("AssessProject() error = %v, want a conflict", err)
	}

	// the first verdict stands
	projects, err := f.svc.ListProjects(ctx, std.ID, as.SubjectID, ao.OutcomeID)
	if err != nil {
		t.Fatalf("ListProjects() failed: %v", err)
	}
	got := projects[0]
	if got.Status != student.ProjectApproved || got.AssessedBy != "Mr. Banza" {
		t.Errorf("verdict was overwritten: %+v", got)
	}
}

// staleRepo makes every write lose the optimistic concurrency race.
type staleRepo struct {
	student.Repository
}

func (r staleRepo) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	return student.Student{}, student.ErrVersionConflict
}

func Test_service_AssessProject_versionConflict(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	std, as, ao := seedAndAssign(t, f, "")
	project := submitProject(t, f, std, as, ao, "Quicksort visualizer", 5)

	conf := testutil.NewConfig()
	logger := logsvc.NewConsoleLogger(log.New(io.Discard, "", 0))
	svc := student.NewService(
		staleRepo{f.stdRepo}, f.currSvc, f.notifSvc, emailsvc.NewConsoleServiceMock(conf), f.validate, logger)

	credit := 4.5
	_, err := svc.AssessProject(ctx, std.ID, as.SubjectID, ao.OutcomeID, project.ID, student.ProjectDecision{
		Status:         student.ProjectApproved,
		ApprovedCredit: &credit,
	})
	if !core.IsConflict(err) {
		t.Fatalf("AssessProject() error = %v, want a conflict", err)
	}

	// the losing write must not have decided the notification
	notif, err := f.notifRepo.GetNotificationByProjectID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetNotificationByProjectID() failed: %v", err)
	}
	if notif.IsDecided() {
		t.Errorf("notification decided despite a lost write: %+v", notif)
	}
}

func Test_service_SetOutcomeCompletion(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	std, as, ao := seedAndAssign(t, f, "")

	outcome, err := f.svc.SetOutcomeCompletion(ctx, std.ID, as.SubjectID, ao.OutcomeID, true)
	if err != nil {
		t.Fatalf("SetOutcomeCompletion() failed: %v", err)
	}
	if !outcome.Completed {
		t.Error("outcome not completed")
	}

	refreshed, err := f.svc.GetByID(ctx, std.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if !refreshed.AssignedSubjects[0].Outcomes[0].Completed {
		t.Error("completion not persisted")
	}

	if _, err = f.svc.SetOutcomeCompletion(ctx, std.ID, as.SubjectID, "nope", true); err != student.ErrOutcomeNotFound {
		t.Errorf("SetOutcomeCompletion() error = %v, wantErr %v", err, student.ErrOutcomeNotFound)
	}
}

// Full workflow: assign, submit, approve, earn.
func Test_service_workflow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	subj := testutil.CreateSubject(t, f.subjRepo, "Algorithms", 10,
		testutil.Outcome("Sorting", "Implement and compare sorting algorithms", 5, true),
	)
	std := testutil.CreateStudent(t, f.stdRepo, "Jane Mwangi", "jane@test.cd")

	assigned, err := f.svc.GetAssignedSubjects(ctx, std.ID)
	if err != nil {
		t.Fatalf("GetAssignedSubjects() failed: %v", err)
	}
	outcome := assigned[0].Outcomes[0]

	project, err := f.svc.SubmitProject(ctx, std.ID, subj.ID, outcome.OutcomeID, student.NewProject{
		Name:            "Quicksort visualizer",
		RequestedCredit: 5,
	})
	if err != nil {
		t.Fatalf("SubmitProject() failed: %v", err)
	}

	// the teacher finds the submission in their pending feed
	pending, err := f.notifSvc.Query(ctx, notification.QueryFilter{Status: notification.StatusPending})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("got %d pending notifications; want 1", len(pending))
	}
	count, err := f.notifSvc.UnreadCount(ctx)
	if err != nil {
		t.Fatalf("UnreadCount() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("UnreadCount() = %d; want 1", count)
	}

	credit := 4.0
	if _, err = f.svc.AssessProject(ctx, std.ID, subj.ID, outcome.OutcomeID, project.ID, student.ProjectDecision{
		Status:         student.ProjectApproved,
		ApprovedCredit: &credit,
		AssessedBy:     "Mr. Banza",
	}); err != nil {
		t.Fatalf("AssessProject() failed: %v", err)
	}

	// the student sees the verdict in their feed and acknowledges it
	mine, err := f.notifSvc.Query(ctx, notification.QueryFilter{StudentID: std.ID})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(mine) != 1 || mine[0].Status != notification.StatusApproved {
		t.Fatalf("unexpected student feed: %+v", mine)
	}
	if _, err = f.notifSvc.MarkRead(ctx, mine[0].ID); err != nil {
		t.Fatalf("MarkRead() failed: %v", err)
	}
	count, err = f.notifSvc.UnreadCount(ctx)
	if err != nil {
		t.Fatalf("UnreadCount() failed: %v", err)
	}
	if count != 0 {
		t.Errorf("UnreadCount() = %d; want 0", count)
	}

	refreshed, err := f.svc.GetByID(ctx, std.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got := refreshed.EarnedCredits(); got != credit {
		t.Errorf("EarnedCredits() = %v; want %v", got, credit)
	}
}
