package evaluation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/core/evaluation"
	"github.com/womanacademy/renluyen/core/student"
	inmemdb "github.com/womanacademy/renluyen/storage/database/inmem"
)

type recordingPublisher struct {
	events []core.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...core.Event) error {
	p.events = append(p.events, events...)
	return p.err
}

func intPtr(i int) *int { return &i }

func sections(scores ...int) [5]*evaluation.SectionInput {
	var in [5]*evaluation.SectionInput
	for i, s := range scores {
		in[i] = &evaluation.SectionInput{SelfScore: intPtr(s), Evidence: "minh chung"}
	}
	return in
}

func upsert(userID, status string, scores ...int) evaluation.UpsertEvaluation {
	s := sections(scores...)
	return evaluation.UpsertEvaluation{
		UserID:       userID,
		Semester:     "HK1",
		AcademicYear: "2023-2024",
		Section1:     s[0],
		Section2:     s[1],
		Section3:     s[2],
		Section4:     s[3],
		Section5:     s[4],
		Status:       status,
	}
}

func newServices(t *testing.T) (*evaluation.Service, *evaluation.GradingService, *student.Service, *recordingPublisher) {
	db := inmemdb.Open()
	repo := inmemdb.NewEvaluationRepository(db)
	stSvc := student.NewService(inmemdb.NewStudentRepository(db), "CNTT2021A")
	pub := new(recordingPublisher)
	return evaluation.NewService(repo, pub, core.NopLogger{}),
		evaluation.NewGradingService(repo, stSvc, pub, core.NopLogger{}),
		stSvc, pub
}

func TestMakeID(t *testing.T) {
	assert.Equal(t, "u1_HK1_2023-2024", evaluation.MakeID("u1", "HK1", "2023-2024"))
}

func TestEvaluation_scores(t *testing.T) {
	ev := evaluation.Evaluation{
		Section1: evaluation.SectionScore{SelfScore: 18, Evidence: "a", TeacherScore: intPtr(17)},
		Section2: evaluation.SectionScore{SelfScore: 22, Evidence: "b", TeacherScore: intPtr(20)},
		Section3: evaluation.SectionScore{SelfScore: 17, Evidence: "c", TeacherScore: intPtr(16)},
		Section4: evaluation.SectionScore{SelfScore: 21, Evidence: "d", TeacherScore: intPtr(20)},
		Section5: evaluation.SectionScore{SelfScore: 9},
	}
	assert.Equal(t, 87, ev.ComputeTotalSelfScore())
	assert.Equal(t, 80, ev.Completion())
	assert.False(t, ev.IsComplete())
	assert.Nil(t, ev.ComputeFinalScore())

	ev.Section5.TeacherScore = intPtr(0)
	ev.Section5.Evidence = "e"
	assert.Equal(t, 100, ev.Completion())
	if assert.NotNil(t, ev.ComputeFinalScore()) {
		assert.Equal(t, 73, *ev.ComputeFinalScore())
	}

	var max int
	for _, s := range evaluation.Sections {
		max += s.Max
	}
	assert.Equal(t, 100, max)
}

func TestService_Upsert(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	evaluation.NowFunc = func() time.Time { return now }
	defer func() { evaluation.NowFunc = time.Now }()

	tests := []struct {
		name       string
		ue         evaluation.UpsertEvaluation
		wantErr    bool
		wantTotal  int
		wantStatus string
		wantEvents int
	}{
		{name: "missing key", ue: evaluation.UpsertEvaluation{UserID: "u1"}, wantErr: true},
		{name: "missing section", ue: upsert("u1", "", 18, 22, 17, 21), wantErr: true},
		{name: "negative score", ue: upsert("u1", "", -1, 22, 17, 21, 9), wantErr: true},
		{name: "above max", ue: upsert("u1", "", 18, 26, 17, 21, 9), wantErr: true},
		{name: "unknown status", ue: upsert("u1", "graded", 18, 22, 17, 21, 9), wantErr: true},
		{name: "draft", ue: upsert("u1", "", 18, 22, 17, 21, 9), wantTotal: 87, wantStatus: evaluation.StatusDraft},
		{name: "incomplete submit", ue: upsert("u1", "submitted", 18, 22, 17, 21, 0), wantErr: true},
		{name: "submitted", ue: upsert("u1", "submitted", 20, 25, 20, 25, 10), wantTotal: 100, wantStatus: evaluation.StatusSubmitted, wantEvents: 1},
	}

	evalSvc, _, _, pub := newServices(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub.events = nil
			ev, err := evalSvc.Upsert(ctx, tt.ue)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u1_HK1_2023-2024", ev.ID)
			assert.Equal(t, tt.wantTotal, ev.TotalSelfScore)
			assert.Equal(t, tt.wantStatus, ev.Status)
			assert.Len(t, pub.events, tt.wantEvents)
			assert.Equal(t, now, ev.UpdatedAt)
		})
	}

	t.Run("upsert keeps a single record", func(t *testing.T) {
		evals, err := evalSvc.Query(ctx, evaluation.QueryFilter{UserID: "u1"})
		require.NoError(t, err)
		assert.Len(t, evals, 1)
	})
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()
	evalSvc, _, _, pub := newServices(t)

	_, err := evalSvc.Submit(ctx, "nope")
	assert.Equal(t, evaluation.ErrNotFound, err)

	ev, err := evalSvc.Upsert(ctx, upsert("u1", "", 18, 22, 17, 21, 9))
	require.NoError(t, err)

	ev, err = evalSvc.Submit(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, evaluation.StatusSubmitted, ev.Status)
	assert.NotNil(t, ev.SubmittedAt)
	require.Len(t, pub.events, 1)
	assert.Equal(t, core.EventEvaluationSubmitted, pub.events[0].Type)
	assert.Equal(t, ev.ID, pub.events[0].EvaluationID)

	_, err = evalSvc.Submit(ctx, ev.ID)
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, evaluation.ErrNotSubmittable, vErr.Err)
}

func TestService_publishFailureIsNotReturned(t *testing.T) {
	evalSvc, _, _, pub := newServices(t)
	pub.err = errors.New("broker down")

	ev, err := evalSvc.Upsert(context.Background(), upsert("u1", "submitted", 18, 22, 17, 21, 9))
	require.NoError(t, err)
	assert.Equal(t, evaluation.StatusSubmitted, ev.Status)
}

func TestService_GetAndDelete(t *testing.T) {
	ctx := context.Background()
	evalSvc, _, _, _ := newServices(t)

	ev, err := evalSvc.Get(ctx, "u1", "HK1", "2023-2024")
	require.NoError(t, err)
	assert.Nil(t, ev)

	_, err = evalSvc.Upsert(ctx, upsert("u1", "submitted", 18, 22, 17, 21, 9))
	require.NoError(t, err)
	ev, err = evalSvc.Get(ctx, "u1", "HK1", "2023-2024")
	require.NoError(t, err)
	require.NotNil(t, ev)

	err = evalSvc.Delete(ctx, ev.ID, true /* draftOnly */)
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, evaluation.ErrNotDeletable, vErr.Err)

	require.NoError(t, evalSvc.Delete(ctx, ev.ID, false))
	_, err = evalSvc.GetByID(ctx, ev.ID)
	assert.Equal(t, evaluation.ErrNotFound, err)
}

func TestGradingService(t *testing.T) {
	ctx := context.Background()
	evalSvc, gradingSvc, stSvc, pub := newServices(t)

	_, err := stSvc.Create(ctx, student.NewStudent{UserID: "u1", FullName: "Nguyen Van A", StudentID: "2021001", Email: "a@test.vn"})
	require.NoError(t, err)

	draft, err := evalSvc.Upsert(ctx, upsert("u2", "", 18, 22, 17, 21, 9))
	require.NoError(t, err)
	ev, err := evalSvc.Upsert(ctx, upsert("u1", "submitted", 18, 22, 17, 21, 9))
	require.NoError(t, err)

	all := &evaluation.Grades{Section1: intPtr(17), Section2: intPtr(20), Section3: intPtr(16), Section4: intPtr(20), Section5: intPtr(9)}

	t.Run("query", func(t *testing.T) {
		gradable, err := gradingSvc.Query(ctx, evaluation.GradingFilter{})
		require.NoError(t, err)
		require.Len(t, gradable, 1)
		assert.Equal(t, "Nguyen Van A", gradable[0].StudentName)
		assert.Equal(t, "CNTT2021A", gradable[0].ClassID)
		assert.Equal(t, 87, gradable[0].Total)

		drafts, err := gradingSvc.Query(ctx, evaluation.GradingFilter{Status: "draft"})
		require.NoError(t, err)
		require.Len(t, drafts, 1)
		assert.Empty(t, drafts[0].StudentName)
	})

	t.Run("drafts cannot be graded", func(t *testing.T) {
		_, err := gradingSvc.Grade(ctx, evaluation.GradeEvaluation{EvaluationID: draft.ID, Grades: all})
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, evaluation.ErrNotGradable, vErr.Err)
	})

	t.Run("missing grades", func(t *testing.T) {
		_, err := gradingSvc.Grade(ctx, evaluation.GradeEvaluation{EvaluationID: ev.ID, Grades: &evaluation.Grades{Section1: intPtr(17)}})
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, evaluation.ErrMissingGrades, vErr.Err)
		assert.Len(t, vErr.Fields, 4)
	})

	t.Run("graded", func(t *testing.T) {
		pub.events = nil
		graded, err := gradingSvc.Grade(ctx, evaluation.GradeEvaluation{EvaluationID: ev.ID, Grades: all, Comments: " Tot "})
		require.NoError(t, err)
		assert.Equal(t, evaluation.StatusGraded, graded.Status)
		require.NotNil(t, graded.FinalScore)
		assert.Equal(t, 82, *graded.FinalScore)
		assert.Equal(t, "Tot", graded.TeacherComments)
		assert.Equal(t, 87, graded.TotalSelfScore)
		require.Len(t, pub.events, 1)
		assert.Equal(t, core.EventEvaluationGraded, pub.events[0].Type)
		assert.Equal(t, 82, *pub.events[0].FinalScore)
	})

	t.Run("regrade keeps previous scores", func(t *testing.T) {
		graded, err := gradingSvc.Grade(ctx, evaluation.GradeEvaluation{EvaluationID: ev.ID, Grades: &evaluation.Grades{Section5: intPtr(0)}})
		require.NoError(t, err)
		assert.Equal(t, 73, *graded.FinalScore)
		assert.Equal(t, 17, *graded.Section1.TeacherScore)
	})

	t.Run("graded evaluations are locked", func(t *testing.T) {
		_, err := evalSvc.Upsert(ctx, upsert("u1", "", 18, 22, 17, 21, 9))
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, evaluation.ErrAlreadyGraded, vErr.Err)
	})
}
