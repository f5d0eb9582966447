package student

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core"
)

var (
	// errors
	ErrNotFound        = errors.New("student not found")
	ErrStudentIDExists = errors.New("a student with this student ID already exists")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		// CheckStudentIDUniqueness returns ErrStudentIDExists when another record (not excludedID) uses studentID.
		CheckStudentIDUniqueness(ctx context.Context, studentID string, excludedID ...string) error
		CreateStudent(ctx context.Context, st Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		// FilterStudents applies AND operation on available QueryFilter fields.
		FilterStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
		UpdateStudent(ctx context.Context, st Student) (Student, error)
		DeleteStudent(ctx context.Context, id string) error
	}

	Service struct {
		repo           Repository
		defaultClassID string
	}
)

func NewService(repo Repository, defaultClassID string) *Service {
	return &Service{repo: repo, defaultClassID: defaultClassID}
}

// studentIDError reports a duplicate student ID as a field error, whichever check caught it.
func studentIDError(err error) error {
	if err == ErrStudentIDExists {
		return core.NewValidationError(err, core.FieldError{Field: "studentId", Error: err.Error()})
	}
	return err
}

func (svc *Service) checkUniqueness(ctx context.Context, studentID string, excludedID ...string) error {
	return studentIDError(svc.repo.CheckStudentIDUniqueness(ctx, studentID, excludedID...))
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	ns.UserID = core.CleanString(ns.UserID)
	ns.FullName = core.CleanString(ns.FullName)
	ns.StudentID = core.CleanString(ns.StudentID)
	ns.ClassID = core.CleanString(ns.ClassID)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)

	if err := core.Validate.Struct(ns); err != nil {
		return Student{}, err
	}
	if err := svc.checkUniqueness(ctx, ns.StudentID); err != nil {
		return Student{}, err
	}

	if ns.ClassID == "" {
		ns.ClassID = svc.defaultClassID
	}
	now := NowFunc().UTC()
	st := Student{
		ID:        uuid.NewString(),
		UserID:    ns.UserID,
		FullName:  ns.FullName,
		StudentID: ns.StudentID,
		ClassID:   ns.ClassID,
		Email:     ns.Email,
		Phone:     ns.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// the repository re-checks uniqueness atomically (concurrent creates)
	created, err := svc.repo.CreateStudent(ctx, st)
	if err != nil {
		return Student{}, studentIDError(err)
	}
	return created, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

// GetByUserIDs maps each linked user id to its student record. Unlinked ids are absent.
func (svc *Service) GetByUserIDs(ctx context.Context, userIDs ...string) (map[string]Student, error) {
	students := make(map[string]Student, len(userIDs))
	if len(userIDs) == 0 {
		return students, nil
	}
	list, err := svc.repo.FilterStudents(ctx, QueryFilter{UserIDs: userIDs})
	if err != nil {
		return nil, err
	}
	for _, st := range list {
		students[st.UserID] = st
	}
	return students, nil
}

// GetByUserID returns the student record linked to a user.
func (svc *Service) GetByUserID(ctx context.Context, userID string) (Student, error) {
	students, err := svc.GetByUserIDs(ctx, userID)
	if err != nil {
		return Student{}, err
	}
	if st, ok := students[userID]; ok {
		return st, nil
	}
	return Student{}, ErrNotFound
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Student, error) {
	filter.ClassID = core.CleanString(filter.ClassID)
	filter.Search = core.CleanString(filter.Search, true /* lower */)
	return svc.repo.FilterStudents(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	st, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}

	us.Email = core.CleanString(us.Email, true /* lower */)
	us.StudentID = core.CleanString(us.StudentID)
	if err := core.Validate.Struct(us); err != nil {
		return Student{}, err
	}

	if v := core.CleanString(us.UserID); v != "" {
		st.UserID = v
	}
	if v := core.CleanString(us.FullName); v != "" {
		st.FullName = v
	}
	if us.StudentID != "" && us.StudentID != st.StudentID {
		if err := svc.checkUniqueness(ctx, us.StudentID, st.ID); err != nil {
			return Student{}, err
		}
		st.StudentID = us.StudentID
	}
	if v := core.CleanString(us.ClassID); v != "" {
		st.ClassID = v
	}
	if us.Email != "" {
		st.Email = us.Email
	}
	if v := core.CleanString(us.Phone); v != "" {
		st.Phone = v
	}
	st.UpdatedAt = NowFunc().UTC()
	updated, err := svc.repo.UpdateStudent(ctx, st)
	if err != nil {
		return Student{}, studentIDError(err)
	}
	return updated, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteStudent(ctx, id)
}
