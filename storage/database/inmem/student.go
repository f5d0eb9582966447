package inmemdb

import (
	"context"
	"sort"

	"github.com/womanacademy/renluyen/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, st := range repo.db.table {
		students = append(students, *st)
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].FullName != students[j].FullName {
			return students[i].FullName < students[j].FullName
		}
		return students[i].ID < students[j].ID
	})
	return students
}

func (repo *studentRepository) checkUniqueness(studentID string, excludedID ...string) error {
	for _, st := range repo.db.table {
		if st.StudentID == studentID && !containsString(excludedID, st.ID) {
			return student.ErrStudentIDExists
		}
	}
	return nil
}

func (repo *studentRepository) CheckStudentIDUniqueness(_ context.Context, studentID string, excludedID ...string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.checkUniqueness(studentID, excludedID...)
}

func (repo *studentRepository) CreateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// re-checked under the write lock
	if err := repo.checkUniqueness(st.StudentID); err != nil {
		return student.Student{}, err
	}
	repo.db.table[st.ID] = &st
	return st, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if st, ok := repo.db.table[id]; ok {
		return *st, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) FilterStudents(_ context.Context, filter student.QueryFilter) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]student.Student, 0)
	for _, st := range repo.query() {
		if filter.ClassID != "" && st.ClassID != filter.ClassID {
			continue
		}
		if filter.UserIDs != nil && (st.UserID == "" || !containsString(filter.UserIDs, st.UserID)) {
			continue
		}
		if filter.Search != "" &&
			!(containsFold(st.FullName, filter.Search) ||
				containsFold(st.StudentID, filter.Search) ||
				containsFold(st.Email, filter.Search)) {
			continue
		}
		students = append(students, st)
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[st.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	if err := repo.checkUniqueness(st.StudentID, st.ID); err != nil {
		return student.Student{}, err
	}
	repo.db.table[st.ID] = &st
	return st, nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return student.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
