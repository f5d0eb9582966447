package evaluation

import (
	"time"

	"github.com/womanacademy/renluyen/core"
)

// Statuses
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusGraded    = "graded"
)

var AllStatuses = []string{StatusDraft, StatusSubmitted, StatusGraded}

// Section is one of the five fixed conduct categories.
type Section struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Max  int    `json:"maxScore"`
}

// Sections weights sum to 100.
var Sections = [5]Section{
	{Key: "section1", Name: "Học tập", Max: 20},
	{Key: "section2", Name: "Chấp hành nội quy", Max: 25},
	{Key: "section3", Name: "Hoạt động xã hội", Max: 20},
	{Key: "section4", Name: "Quan hệ công dân", Max: 25},
	{Key: "section5", Name: "Công tác lớp", Max: 10},
}

type SectionScore struct {
	SelfScore    int      `json:"selfScore"`
	TeacherScore *int     `json:"teacherScore"`
	Evidence     string   `json:"evidence"`
	Files        []string `json:"files"`
}

// IsComplete reports whether the student filled in the section.
func (s SectionScore) IsComplete() bool {
	return s.SelfScore > 0 && s.Evidence != ""
}

type Evaluation struct {
	ID              string       `json:"id"`
	UserID          string       `json:"userId"`
	Semester        string       `json:"semester"`
	AcademicYear    string       `json:"academicYear"`
	Section1        SectionScore `json:"section1"`
	Section2        SectionScore `json:"section2"`
	Section3        SectionScore `json:"section3"`
	Section4        SectionScore `json:"section4"`
	Section5        SectionScore `json:"section5"`
	TotalSelfScore  int          `json:"totalSelfScore"`
	FinalScore      *int         `json:"finalScore"`
	Status          string       `json:"status"`
	TeacherComments string       `json:"teacherComments"`
	SubmittedAt     *time.Time   `json:"submittedAt"` // UTC
	GradedAt        *time.Time   `json:"gradedAt"`    // UTC
	CreatedAt       time.Time    `json:"createdAt"`   // UTC
	UpdatedAt       time.Time    `json:"updatedAt"`   // UTC
}

// MakeID builds the composite key of an evaluation.
func MakeID(userID, semester, academicYear string) string {
	return userID + "_" + semester + "_" + academicYear
}

// SectionScores returns pointers to the five sections, in Sections order.
func (e *Evaluation) SectionScores() [5]*SectionScore {
	return [5]*SectionScore{&e.Section1, &e.Section2, &e.Section3, &e.Section4, &e.Section5}
}

func (e *Evaluation) ComputeTotalSelfScore() int {
	var total int
	for _, s := range e.SectionScores() {
		total += s.SelfScore
	}
	return total
}

// ComputeFinalScore returns nil until every section has a teacher score.
func (e *Evaluation) ComputeFinalScore() *int {
	var total int
	for _, s := range e.SectionScores() {
		if s.TeacherScore == nil {
			return nil
		}
		total += *s.TeacherScore
	}
	return &total
}

// Completion returns the percentage of completed sections.
func (e *Evaluation) Completion() int {
	var done int
	for _, s := range e.SectionScores() {
		if s.IsComplete() {
			done++
		}
	}
	return done * 100 / len(Sections)
}

func (e *Evaluation) IsComplete() bool {
	return e.Completion() == 100
}

func (e *Evaluation) IsGraded() bool { return e.Status == StatusGraded }

// QueryFilter applies AND operation on the non-empty fields.
type QueryFilter struct {
	UserID       string
	Semester     string
	AcademicYear string
	Statuses     []string
	Orderings    []core.DBOrdering
}
