package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core/student"
)

const (
	studentColumns            = `id, user_id, full_name, student_id, class_id, email, phone, created_at, updated_at`
	studentIDUniqueConstraint = "students_student_id_key"
)

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CheckStudentIDUniqueness(ctx context.Context, studentID string, excludedID ...string) error {
	var w where
	w.add("student_id = $%d", studentID)
	if len(excludedID) > 0 {
		w.add("NOT (id::text = ANY($%d))", pq.Array(excludedID))
	}
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM students` + w.String() + `)`
	if err := repo.db.GetContext(ctx, &exists, q, w.args...); err != nil {
		return errors.Wrap(err, "checking student ID uniqueness")
	}
	if exists {
		return student.ErrStudentIDExists
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	q := `INSERT INTO students (` + studentColumns + `)
		VALUES (:id, :user_id, :full_name, :student_id, :class_id, :email, :phone, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, st); err != nil {
		if isUniqueViolation(err, studentIDUniqueConstraint) {
			return student.Student{}, student.ErrStudentIDExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return st, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var st student.Student
	err := repo.db.GetContext(ctx, &st, `SELECT `+studentColumns+` FROM students WHERE id::text = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "selecting student")
	}
	return st, nil
}

func (repo *studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	var w where
	if filter.ClassID != "" {
		w.add("class_id = $%d", filter.ClassID)
	}
	if filter.UserIDs != nil {
		w.add("user_id <> '' AND user_id = ANY($%d)", pq.Array(filter.UserIDs))
	}
	if filter.Search != "" {
		w.add("(full_name ILIKE $%d OR student_id ILIKE $%d OR email ILIKE $%d)", likePattern(filter.Search))
	}

	students := make([]student.Student, 0)
	q := `SELECT ` + studentColumns + ` FROM students` + w.String() + ` ORDER BY full_name, id`
	if err := repo.db.SelectContext(ctx, &students, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	q := `UPDATE students SET user_id = :user_id, full_name = :full_name, student_id = :student_id,
		class_id = :class_id, email = :email, phone = :phone, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, st)
	if err != nil {
		if isUniqueViolation(err, studentIDUniqueConstraint) {
			return student.Student{}, student.ErrStudentIDExists
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return st, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM students WHERE id::text = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.ErrNotFound
	}
	return nil
}
