package inmem

import (
	"sync"

	"github.com/trezcool/maendeleo/core/curriculum"
	"github.com/trezcool/maendeleo/core/notification"
	"github.com/trezcool/maendeleo/core/student"
)

type (
	// DB is an in-memory document store used in DEV mode and in tests.
	DB struct {
		subject      *subjectTable
		student      *studentTable
		notification *notificationTable
	}

	subjectTable struct {
		sync.RWMutex
		table map[string]*curriculum.Subject
		order []string // insertion order
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	notificationTable struct {
		sync.RWMutex
		table map[string]*notification.Notification
		order []string // insertion order
	}
)

func Open() (*DB, error) {
	db := &DB{
		subject:      &subjectTable{table: make(map[string]*curriculum.Subject)},
		student:      &studentTable{table: make(map[string]*student.Student)},
		notification: &notificationTable{table: make(map[string]*notification.Notification)},
	}
	return db, nil
}
