package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core/curriculum"
)

type subjectRepository struct {
	db *sqlx.DB
}

var _ curriculum.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *sqlx.DB) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, subj curriculum.Subject) (curriculum.Subject, error) {
	doc, err := json.Marshal(subj)
	if err != nil {
		return curriculum.Subject{}, errors.Wrap(err, "marshalling subject")
	}
	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO subject (id, document) VALUES ($1, $2)`, subj.ID, doc)
	if err != nil {
		return curriculum.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return subj, nil
}

func (repo *subjectRepository) QueryAllSubjects(ctx context.Context) ([]curriculum.Subject, error) {
	rows, err := repo.db.QueryContext(ctx,
		`SELECT document FROM subject ORDER BY created_at`)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	defer func() { _ = rows.Close() }()

	subjects := make([]curriculum.Subject, 0)
	for rows.Next() {
		var doc []byte
		if err = rows.Scan(&doc); err != nil {
			return nil, errors.Wrap(err, "scanning subject")
		}
		var subj curriculum.Subject
		if err = json.Unmarshal(doc, &subj); err != nil {
			return nil, errors.Wrap(err, "unmarshalling subject")
		}
		subjects = append(subjects, subj)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return subjects, nil
}

func (repo *subjectRepository) GetSubjectByID(ctx context.Context, id string) (curriculum.Subject, error) {
	var doc []byte
	err := repo.db.QueryRowContext(ctx,
		`SELECT document FROM subject WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if err == sql.ErrNoRows {
			return curriculum.Subject{}, curriculum.ErrNotFound
		}
		return curriculum.Subject{}, errors.Wrap(err, "getting subject")
	}
	var subj curriculum.Subject
	if err = json.Unmarshal(doc, &subj); err != nil {
		return curriculum.Subject{}, errors.Wrap(err, "unmarshalling subject")
	}
	return subj, nil
}
