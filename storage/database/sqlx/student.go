package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core/student"
)

// studentRepository stores each student as a single JSONB document next to a
// version column: the whole-record read-modify-write model with optimistic
// concurrency on the version token.
type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	doc, err := json.Marshal(std)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "marshalling student")
	}
	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO student (id, name, email, document, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		std.ID, std.Name, std.Email, doc, std.Version, std.CreatedAt, std.UpdatedAt)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	rows, err := repo.db.QueryContext(ctx,
		`SELECT document, version FROM student ORDER BY created_at`)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	defer func() { _ = rows.Close() }()

	students := make([]student.Student, 0)
	for rows.Next() {
		std, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, std)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	row := repo.db.QueryRowContext(ctx,
		`SELECT document, version FROM student WHERE id = $1`, id)

	std, err := scanStudent(row)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, err
	}
	return std, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	doc, err := json.Marshal(std)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "marshalling student")
	}

	res, err := repo.db.ExecContext(ctx,
		`UPDATE student
		 SET name = $2, email = $3, document = $4, version = version + 1, updated_at = $5
		 WHERE id = $1 AND version = $6`,
		std.ID, std.Name, std.Email, doc, std.UpdatedAt, std.Version)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n == 0 {
		// either the record is gone or someone else won the write
		var exists bool
		err = repo.db.QueryRowContext(ctx,
			`SELECT true FROM student WHERE id = $1`, std.ID).Scan(&exists)
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		if err != nil {
			return student.Student{}, errors.Wrap(err, "checking student")
		}
		return student.Student{}, student.ErrVersionConflict
	}

	std.Version++
	return std, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStudent(row rowScanner) (student.Student, error) {
	var doc []byte
	var version int
	if err := row.Scan(&doc, &version); err != nil {
		return student.Student{}, errors.Wrap(err, "scanning student")
	}
	var std student.Student
	if err := json.Unmarshal(doc, &std); err != nil {
		return student.Student{}, errors.Wrap(err, "unmarshalling student")
	}
	std.Version = version
	return std, nil
}
