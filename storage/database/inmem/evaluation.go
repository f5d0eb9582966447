package inmemdb

import (
	"context"
	"fmt"
	"sort"

	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/core/evaluation"
)

var evaluationOrderings = map[string]func(a, b *evaluation.Evaluation) int{
	"userId":         func(a, b *evaluation.Evaluation) int { return compareStrings(a.UserID, b.UserID) },
	"semester":       func(a, b *evaluation.Evaluation) int { return compareStrings(a.Semester, b.Semester) },
	"academicYear":   func(a, b *evaluation.Evaluation) int { return compareStrings(a.AcademicYear, b.AcademicYear) },
	"totalSelfScore": func(a, b *evaluation.Evaluation) int { return a.TotalSelfScore - b.TotalSelfScore },
	"finalScore":     func(a, b *evaluation.Evaluation) int { return derefInt(a.FinalScore) - derefInt(b.FinalScore) },
	"submittedAt":    func(a, b *evaluation.Evaluation) int { return compareTimePtrs(a.SubmittedAt, b.SubmittedAt) },
	"updatedAt":      func(a, b *evaluation.Evaluation) int { return compareTimes(a.UpdatedAt, b.UpdatedAt) },
}

type evaluationRepository struct {
	db *evaluationTable
}

var _ evaluation.Repository = (*evaluationRepository)(nil)

func NewEvaluationRepository(db *DB) evaluation.Repository {
	return &evaluationRepository{db: db.evaluation}
}

func copyEvaluation(ev *evaluation.Evaluation) evaluation.Evaluation {
	cp := *ev
	for i, s := range cp.SectionScores() {
		orig := ev.SectionScores()[i]
		if orig.TeacherScore != nil {
			score := *orig.TeacherScore
			s.TeacherScore = &score
		}
		s.Files = append([]string(nil), orig.Files...)
	}
	return cp
}

func (repo *evaluationRepository) UpdateOrCreateEvaluation(_ context.Context, id string, fn evaluation.UpdateFunc) (evaluation.Evaluation, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cur *evaluation.Evaluation
	if ev, ok := repo.db.table[id]; ok {
		cp := copyEvaluation(ev)
		cur = &cp
	}
	ev, err := fn(cur)
	if err != nil {
		return evaluation.Evaluation{}, err
	}
	if ev.ID != id {
		return evaluation.Evaluation{}, core.NewShutdownError(fmt.Sprintf("evaluation %s rewritten as %s", id, ev.ID))
	}
	stored := copyEvaluation(ev)
	repo.db.table[id] = &stored
	return copyEvaluation(&stored), nil
}

func (repo *evaluationRepository) GetEvaluationByID(_ context.Context, id string) (evaluation.Evaluation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ev, ok := repo.db.table[id]; ok {
		return copyEvaluation(ev), nil
	}
	return evaluation.Evaluation{}, evaluation.ErrNotFound
}

func (repo *evaluationRepository) QueryEvaluations(_ context.Context, filter evaluation.QueryFilter) ([]evaluation.Evaluation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	evals := make([]evaluation.Evaluation, 0)
	for _, ev := range repo.db.table {
		if filter.UserID != "" && ev.UserID != filter.UserID {
			continue
		}
		if filter.Semester != "" && ev.Semester != filter.Semester {
			continue
		}
		if filter.AcademicYear != "" && ev.AcademicYear != filter.AcademicYear {
			continue
		}
		if len(filter.Statuses) > 0 && !containsString(filter.Statuses, ev.Status) {
			continue
		}
		evals = append(evals, copyEvaluation(ev))
	}

	orderings := core.CleanOrderings(filter.Orderings, identityColumns(evaluationOrderings))
	orderings = append(orderings, core.DBOrdering{Field: "updatedAt"}) // newest first by default
	sort.SliceStable(evals, func(i, j int) bool {
		for _, ord := range orderings {
			c := evaluationOrderings[ord.Field](&evals[i], &evals[j])
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return evals[i].ID < evals[j].ID
	})
	return evals, nil
}

func (repo *evaluationRepository) DeleteEvaluation(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return evaluation.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
