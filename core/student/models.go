package student

import (
	"time"
)

type Student struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	FullName  string    `json:"fullName" db:"full_name"`
	StudentID string    `json:"studentId" db:"student_id"`
	ClassID   string    `json:"classId" db:"class_id"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"` // UTC
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	UserID    string `json:"userId"`
	FullName  string `json:"fullName" validate:"required"`
	StudentID string `json:"studentId" validate:"required,alphanum_"`
	ClassID   string `json:"classId"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Empty fields keep their current value.
type UpdateStudent struct {
	UserID    string `json:"userId"`
	FullName  string `json:"fullName"`
	StudentID string `json:"studentId" validate:"omitempty,alphanum_"`
	ClassID   string `json:"classId"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
}

// QueryFilter applies AND operation on the non-empty fields.
// Search does a case-insensitive match on one of FullName, StudentID or Email.
type QueryFilter struct {
	ClassID string
	Search  string
	UserIDs []string
}
