package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/core/evaluation"
)

const evaluationColumns = `id, user_id, semester, academic_year, sections, total_self_score, final_score,
	status, teacher_comments, submitted_at, graded_at, created_at, updated_at`

var evaluationOrderColumns = map[string]string{
	"userId":         "user_id",
	"semester":       "semester",
	"academicYear":   "academic_year",
	"totalSelfScore": "total_self_score",
	"finalScore":     "final_score",
	"submittedAt":    "submitted_at",
	"updatedAt":      "updated_at",
}

type (
	evaluationRow struct {
		ID              string         `db:"id"`
		UserID          string         `db:"user_id"`
		Semester        string         `db:"semester"`
		AcademicYear    string         `db:"academic_year"`
		Sections        types.JSONText `db:"sections"`
		TotalSelfScore  int            `db:"total_self_score"`
		FinalScore      null.Int       `db:"final_score"`
		Status          string         `db:"status"`
		TeacherComments string         `db:"teacher_comments"`
		SubmittedAt     null.Time      `db:"submitted_at"`
		GradedAt        null.Time      `db:"graded_at"`
		CreatedAt       time.Time      `db:"created_at"`
		UpdatedAt       time.Time      `db:"updated_at"`
	}

	sectionsDoc struct {
		Section1 evaluation.SectionScore `json:"section1"`
		Section2 evaluation.SectionScore `json:"section2"`
		Section3 evaluation.SectionScore `json:"section3"`
		Section4 evaluation.SectionScore `json:"section4"`
		Section5 evaluation.SectionScore `json:"section5"`
	}
)

func newEvaluationRow(ev evaluation.Evaluation) (evaluationRow, error) {
	doc, err := json.Marshal(sectionsDoc{ev.Section1, ev.Section2, ev.Section3, ev.Section4, ev.Section5})
	if err != nil {
		return evaluationRow{}, errors.Wrap(err, "marshalling sections")
	}
	return evaluationRow{
		ID:              ev.ID,
		UserID:          ev.UserID,
		Semester:        ev.Semester,
		AcademicYear:    ev.AcademicYear,
		Sections:        types.JSONText(doc),
		TotalSelfScore:  ev.TotalSelfScore,
		FinalScore:      null.IntFromPtr(ev.FinalScore),
		Status:          ev.Status,
		TeacherComments: ev.TeacherComments,
		SubmittedAt:     null.TimeFromPtr(ev.SubmittedAt),
		GradedAt:        null.TimeFromPtr(ev.GradedAt),
		CreatedAt:       ev.CreatedAt,
		UpdatedAt:       ev.UpdatedAt,
	}, nil
}

func (row evaluationRow) toEvaluation() (evaluation.Evaluation, error) {
	var doc sectionsDoc
	if err := row.Sections.Unmarshal(&doc); err != nil {
		return evaluation.Evaluation{}, errors.Wrap(err, "unmarshalling sections")
	}
	ev := evaluation.Evaluation{
		ID:              row.ID,
		UserID:          row.UserID,
		Semester:        row.Semester,
		AcademicYear:    row.AcademicYear,
		Section1:        doc.Section1,
		Section2:        doc.Section2,
		Section3:        doc.Section3,
		Section4:        doc.Section4,
		Section5:        doc.Section5,
		TotalSelfScore:  row.TotalSelfScore,
		FinalScore:      row.FinalScore.Ptr(),
		Status:          row.Status,
		TeacherComments: row.TeacherComments,
		SubmittedAt:     row.SubmittedAt.Ptr(),
		GradedAt:        row.GradedAt.Ptr(),
		CreatedAt:       row.CreatedAt.UTC(),
		UpdatedAt:       row.UpdatedAt.UTC(),
	}
	return ev, nil
}

type evaluationRepository struct {
	db *sqlx.DB
}

var _ evaluation.Repository = (*evaluationRepository)(nil)

func NewEvaluationRepository(db *sqlx.DB) evaluation.Repository {
	return &evaluationRepository{db: db}
}

func (repo *evaluationRepository) UpdateOrCreateEvaluation(ctx context.Context, id string, fn evaluation.UpdateFunc) (evaluation.Evaluation, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return evaluation.Evaluation{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var cur *evaluation.Evaluation
	var row evaluationRow
	err = tx.GetContext(ctx, &row, `SELECT `+evaluationColumns+` FROM evaluations WHERE id = $1 FOR UPDATE`, id)
	switch {
	case err == nil:
		ev, err := row.toEvaluation()
		if err != nil {
			return evaluation.Evaluation{}, err
		}
		cur = &ev
	case err != sql.ErrNoRows:
		return evaluation.Evaluation{}, errors.Wrap(err, "selecting evaluation")
	}

	ev, err := fn(cur)
	if err != nil {
		return evaluation.Evaluation{}, err
	}
	if ev.ID != id {
		return evaluation.Evaluation{}, core.NewShutdownError(fmt.Sprintf("evaluation %s rewritten as %s", id, ev.ID))
	}
	newRow, err := newEvaluationRow(*ev)
	if err != nil {
		return evaluation.Evaluation{}, err
	}

	q := `INSERT INTO evaluations (` + evaluationColumns + `)
		VALUES (:id, :user_id, :semester, :academic_year, :sections, :total_self_score, :final_score,
			:status, :teacher_comments, :submitted_at, :graded_at, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			sections = EXCLUDED.sections,
			total_self_score = EXCLUDED.total_self_score,
			final_score = EXCLUDED.final_score,
			status = EXCLUDED.status,
			teacher_comments = EXCLUDED.teacher_comments,
			submitted_at = EXCLUDED.submitted_at,
			graded_at = EXCLUDED.graded_at,
			updated_at = EXCLUDED.updated_at`
	if _, err = tx.NamedExecContext(ctx, q, newRow); err != nil {
		return evaluation.Evaluation{}, errors.Wrap(err, "upserting evaluation")
	}
	if err = tx.Commit(); err != nil {
		return evaluation.Evaluation{}, errors.Wrap(err, "committing evaluation")
	}
	return *ev, nil
}

func (repo *evaluationRepository) GetEvaluationByID(ctx context.Context, id string) (evaluation.Evaluation, error) {
	var row evaluationRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+evaluationColumns+` FROM evaluations WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return evaluation.Evaluation{}, evaluation.ErrNotFound
		}
		return evaluation.Evaluation{}, errors.Wrap(err, "selecting evaluation")
	}
	return row.toEvaluation()
}

func (repo *evaluationRepository) QueryEvaluations(ctx context.Context, filter evaluation.QueryFilter) ([]evaluation.Evaluation, error) {
	var w where
	if filter.UserID != "" {
		w.add("user_id = $%d", filter.UserID)
	}
	if filter.Semester != "" {
		w.add("semester = $%d", filter.Semester)
	}
	if filter.AcademicYear != "" {
		w.add("academic_year = $%d", filter.AcademicYear)
	}
	if len(filter.Statuses) > 0 {
		w.add("status = ANY($%d)", pq.Array(filter.Statuses))
	}

	q := `SELECT ` + evaluationColumns + ` FROM evaluations` + w.String() +
		orderBy(filter.Orderings, evaluationOrderColumns, "updated_at DESC")
	var rows []evaluationRow
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting evaluations")
	}

	evals := make([]evaluation.Evaluation, 0, len(rows))
	for _, row := range rows {
		ev, err := row.toEvaluation()
		if err != nil {
			return nil, err
		}
		evals = append(evals, ev)
	}
	return evals, nil
}

func (repo *evaluationRepository) DeleteEvaluation(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM evaluations WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting evaluation")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return evaluation.ErrNotFound
	}
	return nil
}
