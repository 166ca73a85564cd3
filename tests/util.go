package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/curriculum"
	"github.com/trezcool/maendeleo/core/notification"
	"github.com/trezcool/maendeleo/core/student"
)

// NewConfig returns a Config suitable for tests: no external services, fixed
// secret, short-lived tokens.
func NewConfig() *core.Config {
	return &core.Config{
		Debug:     false,
		TestMode:  true,
		Env:       "TEST",
		AppName:   "Maendeleo",
		SecretKey: "secret",
		Server: core.ServerConfig{
			JWTExpirationDelta: time.Hour,
		},
	}
}

func Outcome(topic, project string, credits float64, compulsory bool, requirements ...string) curriculum.Outcome {
	return curriculum.Outcome{
		ID:           uuid.New().String(),
		Topic:        topic,
		Project:      project,
		Credits:      credits,
		Compulsory:   compulsory,
		Requirements: requirements,
	}
}

func CreateSubject(
	t *testing.T,
	repo curriculum.Repository,
	name string,
	credits float64,
	outcomes ...curriculum.Outcome,
) curriculum.Subject {
	subj, err := repo.CreateSubject(context.Background(), curriculum.Subject{
		ID:       uuid.New().String(),
		Name:     name,
		Credits:  credits,
		Outcomes: outcomes,
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return subj
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	name, email string,
	createdAt ...time.Time,
) student.Student {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	std, err := repo.CreateStudent(context.Background(), student.Student{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateNotification(
	t *testing.T,
	repo notification.Repository,
	msg, studentID, projectID string,
	date ...time.Time,
) notification.Notification {
	tstamp := time.Now().UTC()
	if len(date) > 0 {
		tstamp = date[0].UTC()
	}
	notif, err := repo.CreateNotification(context.Background(), notification.Notification{
		ID:        uuid.New().String(),
		Message:   msg,
		StudentID: studentID,
		ProjectID: projectID,
		Status:    notification.StatusPending,
		Date:      tstamp,
	})
	if err != nil {
		t.Fatalf("CreateNotification() failed: %v", err)
	}
	return notif
}
