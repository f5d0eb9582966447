package evaluation

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core"
)

var (
	// errors
	ErrNotFound       = errors.New("evaluation not found")
	ErrAlreadyGraded  = errors.New("evaluation has already been graded")
	ErrIncomplete     = errors.New("all sections must have a score and evidence before submitting")
	ErrNotSubmittable = errors.New("only draft evaluations can be submitted")
	ErrNotGradable    = errors.New("only submitted evaluations can be graded")
	ErrMissingGrades  = errors.New("every section must have a teacher score")
	ErrNotDeletable   = errors.New("only draft evaluations can be deleted")

	NowFunc = time.Now // mockable
)

type (
	// UpdateFunc receives the stored evaluation (nil when absent) and returns the one to store.
	// Returning an error aborts the update.
	UpdateFunc func(current *Evaluation) (*Evaluation, error)

	Repository interface {
		// UpdateOrCreateEvaluation runs fn and stores its result atomically for the given id.
		UpdateOrCreateEvaluation(ctx context.Context, id string, fn UpdateFunc) (Evaluation, error)
		GetEvaluationByID(ctx context.Context, id string) (Evaluation, error)
		// QueryEvaluations applies AND operation on available QueryFilter fields.
		QueryEvaluations(ctx context.Context, filter QueryFilter) ([]Evaluation, error)
		DeleteEvaluation(ctx context.Context, id string) error
	}

	Service struct {
		repo      Repository
		publisher core.EventPublisher
		logger    core.Logger
	}
)

func NewService(repo Repository, publisher core.EventPublisher, logger core.Logger) *Service {
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

func newEvent(typ string, ev Evaluation) core.Event {
	return core.Event{
		Type:         typ,
		EvaluationID: ev.ID,
		UserID:       ev.UserID,
		Semester:     ev.Semester,
		AcademicYear: ev.AcademicYear,
		FinalScore:   ev.FinalScore,
		OccurredAt:   NowFunc().UTC(),
	}
}

// publish never fails the caller: the state change is already stored.
func publish(ctx context.Context, publisher core.EventPublisher, logger core.Logger, event core.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Error("publishing "+event.Type, errors.Wrap(err, "publish"), map[string]interface{}{
			"evaluationId": event.EvaluationID,
		})
	}
}

// Upsert creates or overwrites the evaluation of (userId, semester, academicYear).
func (svc *Service) Upsert(ctx context.Context, ue UpsertEvaluation) (Evaluation, error) {
	if err := ue.Validate(); err != nil {
		return Evaluation{}, err
	}

	var submitted bool
	id := MakeID(ue.UserID, ue.Semester, ue.AcademicYear)
	ev, err := svc.repo.UpdateOrCreateEvaluation(ctx, id, func(cur *Evaluation) (*Evaluation, error) {
		now := NowFunc().UTC()
		ev := Evaluation{
			ID:           id,
			UserID:       ue.UserID,
			Semester:     ue.Semester,
			AcademicYear: ue.AcademicYear,
			Status:       StatusDraft,
			CreatedAt:    now,
		}
		if cur != nil {
			if cur.IsGraded() {
				return nil, core.NewValidationError(ErrAlreadyGraded, core.FieldError{Field: "status", Error: ErrAlreadyGraded.Error()})
			}
			ev = *cur
		}

		ue.apply(&ev)
		ev.TotalSelfScore = ev.ComputeTotalSelfScore()

		if ue.Status == StatusSubmitted {
			if !ev.IsComplete() {
				return nil, core.NewValidationError(ErrIncomplete, core.FieldError{Field: "status", Error: ErrIncomplete.Error()})
			}
			submitted = ev.Status == StatusDraft
			ev.Status = StatusSubmitted
			ev.SubmittedAt = &now
		}
		ev.UpdatedAt = now
		return &ev, nil
	})
	if err != nil {
		return Evaluation{}, err
	}

	if submitted {
		publish(ctx, svc.publisher, svc.logger, newEvent(core.EventEvaluationSubmitted, ev))
	}
	return ev, nil
}

// Submit moves a complete draft to submitted.
func (svc *Service) Submit(ctx context.Context, id string) (Evaluation, error) {
	ev, err := svc.repo.UpdateOrCreateEvaluation(ctx, id, func(cur *Evaluation) (*Evaluation, error) {
		if cur == nil {
			return nil, ErrNotFound
		}
		if cur.Status != StatusDraft {
			return nil, core.NewValidationError(ErrNotSubmittable, core.FieldError{Field: "status", Error: ErrNotSubmittable.Error()})
		}
		if !cur.IsComplete() {
			return nil, core.NewValidationError(ErrIncomplete, core.FieldError{Field: "status", Error: ErrIncomplete.Error()})
		}
		now := NowFunc().UTC()
		ev := *cur
		ev.Status = StatusSubmitted
		ev.SubmittedAt = &now
		ev.UpdatedAt = now
		return &ev, nil
	})
	if err != nil {
		return Evaluation{}, err
	}

	publish(ctx, svc.publisher, svc.logger, newEvent(core.EventEvaluationSubmitted, ev))
	return ev, nil
}

// Get returns (nil, nil) when no evaluation exists for the key.
func (svc *Service) Get(ctx context.Context, userID, semester, academicYear string) (*Evaluation, error) {
	ev, err := svc.repo.GetEvaluationByID(ctx, MakeID(userID, semester, academicYear))
	if err != nil {
		if err == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &ev, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Evaluation, error) {
	return svc.repo.GetEvaluationByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Evaluation, error) {
	filter.UserID = core.CleanString(filter.UserID)
	filter.Semester = core.CleanString(filter.Semester)
	filter.AcademicYear = core.CleanString(filter.AcademicYear)
	return svc.repo.QueryEvaluations(ctx, filter)
}

// Delete removes an evaluation. Students may only delete their drafts.
func (svc *Service) Delete(ctx context.Context, id string, draftOnly bool) error {
	if draftOnly {
		ev, err := svc.repo.GetEvaluationByID(ctx, id)
		if err != nil {
			return err
		}
		if ev.Status != StatusDraft {
			return core.NewValidationError(ErrNotDeletable, core.FieldError{Field: "status", Error: ErrNotDeletable.Error()})
		}
	}
	return svc.repo.DeleteEvaluation(ctx, id)
}
