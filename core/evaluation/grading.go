package evaluation

import (
	"context"

	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/core/student"
)

type (
	// Roster resolves the student records linked to evaluation owners.
	Roster interface {
		GetByUserIDs(ctx context.Context, userIDs ...string) (map[string]student.Student, error)
	}

	GradingService struct {
		repo      Repository
		roster    Roster
		publisher core.EventPublisher
		logger    core.Logger
	}
)

func NewGradingService(repo Repository, roster Roster, publisher core.EventPublisher, logger core.Logger) *GradingService {
	return &GradingService{repo: repo, roster: roster, publisher: publisher, logger: logger}
}

// Query lists gradable evaluations enriched with roster data.
func (svc *GradingService) Query(ctx context.Context, filter GradingFilter) ([]GradableEvaluation, error) {
	qf := QueryFilter{
		Semester:  core.CleanString(filter.Semester),
		Orderings: []core.DBOrdering{{Field: "submittedAt", Ascending: true}},
	}
	if status := core.CleanString(filter.Status, true /* lower */); status != "" {
		qf.Statuses = []string{status}
	} else {
		qf.Statuses = []string{StatusSubmitted, StatusGraded}
	}

	evals, err := svc.repo.QueryEvaluations(ctx, qf)
	if err != nil {
		return nil, errors.Wrap(err, "querying evaluations")
	}

	userIDs := make([]string, 0, len(evals))
	seen := make(map[string]bool, len(evals))
	for _, ev := range evals {
		if !seen[ev.UserID] {
			seen[ev.UserID] = true
			userIDs = append(userIDs, ev.UserID)
		}
	}
	students, err := svc.roster.GetByUserIDs(ctx, userIDs...)
	if err != nil {
		return nil, errors.Wrap(err, "resolving students")
	}

	classID := core.CleanString(filter.ClassID)
	gradable := make([]GradableEvaluation, 0, len(evals))
	for _, ev := range evals {
		st, ok := students[ev.UserID]
		if classID != "" && st.ClassID != classID {
			continue
		}
		ge := GradableEvaluation{Evaluation: ev, Total: ev.TotalSelfScore}
		if ok {
			ge.StudentName = st.FullName
			ge.StudentID = st.StudentID
			ge.ClassID = st.ClassID
		}
		gradable = append(gradable, ge)
	}
	return gradable, nil
}

// Grade merges the teacher scores into a submitted (or regraded) evaluation.
// A nil grade keeps the previous score; 0 is a valid score.
func (svc *GradingService) Grade(ctx context.Context, ge GradeEvaluation) (Evaluation, error) {
	if err := ge.Validate(); err != nil {
		return Evaluation{}, err
	}

	ev, err := svc.repo.UpdateOrCreateEvaluation(ctx, ge.EvaluationID, func(cur *Evaluation) (*Evaluation, error) {
		if cur == nil {
			return nil, ErrNotFound
		}
		if cur.Status != StatusSubmitted && cur.Status != StatusGraded {
			return nil, core.NewValidationError(ErrNotGradable, core.FieldError{Field: "evaluationId", Error: ErrNotGradable.Error()})
		}

		ev := *cur
		grades := ge.Grades.values()
		var missing []core.FieldError
		for i, s := range ev.SectionScores() {
			if g := grades[i]; g != nil {
				score := *g
				s.TeacherScore = &score
			}
			if s.TeacherScore == nil {
				missing = append(missing, core.FieldError{Field: Sections[i].Key, Error: ErrMissingGrades.Error()})
			}
		}
		if len(missing) > 0 {
			return nil, core.NewValidationError(ErrMissingGrades, missing...)
		}

		now := NowFunc().UTC()
		ev.FinalScore = ev.ComputeFinalScore()
		ev.Status = StatusGraded
		ev.GradedAt = &now
		ev.TeacherComments = ge.Comments
		ev.UpdatedAt = now
		return &ev, nil
	})
	if err != nil {
		return Evaluation{}, err
	}

	publish(ctx, svc.publisher, svc.logger, newEvent(core.EventEvaluationGraded, ev))
	return ev, nil
}
