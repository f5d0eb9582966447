package student_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/core/student"
	inmemdb "github.com/womanacademy/renluyen/storage/database/inmem"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	svc := student.NewService(inmemdb.NewStudentRepository(inmemdb.Open()), "CNTT2021A")

	a, err := svc.Create(ctx, student.NewStudent{UserID: " u1 ", FullName: "  Nguyen  Van A ", StudentID: "2021001", Email: "A@Test.VN"})
	require.NoError(t, err)
	assert.Equal(t, "u1", a.UserID)
	assert.Equal(t, "CNTT2021A", a.ClassID)
	assert.Equal(t, "a@test.vn", a.Email)
	assert.NotEmpty(t, a.ID)

	b, err := svc.Create(ctx, student.NewStudent{FullName: "Tran Thi B", StudentID: "2021002", Email: "b@test.vn", ClassID: "KT2021B"})
	require.NoError(t, err)

	t.Run("invalid", func(t *testing.T) {
		_, err := svc.Create(ctx, student.NewStudent{FullName: "X", StudentID: "20-21", Email: "not-an-email"})
		assert.Error(t, err)
	})

	t.Run("unique student ID", func(t *testing.T) {
		_, err := svc.Create(ctx, student.NewStudent{FullName: "C", StudentID: "2021001", Email: "c@test.vn"})
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, student.ErrStudentIDExists, vErr.Err)

		_, err = svc.Update(ctx, b.ID, student.UpdateStudent{StudentID: "2021001"})
		assert.True(t, errors.As(err, &vErr))

		// keeping its own ID is fine
		_, err = svc.Update(ctx, a.ID, student.UpdateStudent{StudentID: "2021001"})
		assert.NoError(t, err)
	})

	t.Run("filter", func(t *testing.T) {
		list, err := svc.Filter(ctx, student.QueryFilter{ClassID: "KT2021B"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, b.ID, list[0].ID)

		list, err = svc.Filter(ctx, student.QueryFilter{Search: "A@TEST"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, a.ID, list[0].ID)
	})

	t.Run("by user", func(t *testing.T) {
		st, err := svc.GetByUserID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, a.ID, st.ID)

		_, err = svc.GetByUserID(ctx, "nobody")
		assert.Equal(t, student.ErrNotFound, err)

		m, err := svc.GetByUserIDs(ctx)
		require.NoError(t, err)
		assert.Empty(t, m)
	})

	t.Run("update keeps empty fields", func(t *testing.T) {
		st, err := svc.Update(ctx, b.ID, student.UpdateStudent{Phone: "0901"})
		require.NoError(t, err)
		assert.Equal(t, "0901", st.Phone)
		assert.Equal(t, "Tran Thi B", st.FullName)
		assert.Equal(t, "KT2021B", st.ClassID)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, b.ID))
		_, err := svc.GetByID(ctx, b.ID)
		assert.Equal(t, student.ErrNotFound, err)
		assert.Equal(t, student.ErrNotFound, svc.Delete(ctx, b.ID))
	})
}

// racingRepository lets duplicates through the pre-check, as a concurrent create would.
type racingRepository struct {
	student.Repository
}

func (racingRepository) CheckStudentIDUniqueness(context.Context, string, ...string) error {
	return nil
}

func TestService_concurrentDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := student.NewService(racingRepository{inmemdb.NewStudentRepository(inmemdb.Open())}, "CNTT2021A")

	_, err := svc.Create(ctx, student.NewStudent{FullName: "A", StudentID: "2021001", Email: "a@test.vn"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, student.NewStudent{FullName: "B", StudentID: "2021002", Email: "b@test.vn"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, student.NewStudent{FullName: "C", StudentID: "2021001", Email: "c@test.vn"})
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr), "create: %v", err)
	assert.Equal(t, student.ErrStudentIDExists, vErr.Err)
	assert.Equal(t, "studentId", vErr.Fields[0].Field)

	_, err = svc.Update(ctx, b.ID, student.UpdateStudent{StudentID: "2021001"})
	require.True(t, errors.As(err, &vErr), "update: %v", err)
	assert.Equal(t, "studentId", vErr.Fields[0].Field)
}
