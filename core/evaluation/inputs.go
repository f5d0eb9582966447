package evaluation

import (
	"github.com/womanacademy/renluyen/core"
)

// SectionInput is the student-provided part of a section.
type SectionInput struct {
	SelfScore *int     `json:"selfScore"`
	Evidence  string   `json:"evidence"`
	Files     []string `json:"files"`
}

// UpsertEvaluation contains what a student may save for a (user, semester, year) key.
// Any client-sent total is ignored.
type UpsertEvaluation struct {
	UserID       string        `json:"userId" validate:"required"`
	Semester     string        `json:"semester" validate:"required"`
	AcademicYear string        `json:"academicYear" validate:"required"`
	Section1     *SectionInput `json:"section1"`
	Section2     *SectionInput `json:"section2"`
	Section3     *SectionInput `json:"section3"`
	Section4     *SectionInput `json:"section4"`
	Section5     *SectionInput `json:"section5"`
	Status       string        `json:"status" validate:"omitempty,oneof=draft submitted"`
}

func (ue *UpsertEvaluation) sections() [5]*SectionInput {
	return [5]*SectionInput{ue.Section1, ue.Section2, ue.Section3, ue.Section4, ue.Section5}
}

func (ue *UpsertEvaluation) Validate() error {
	ue.UserID = core.CleanString(ue.UserID)
	ue.Semester = core.CleanString(ue.Semester)
	ue.AcademicYear = core.CleanString(ue.AcademicYear)
	ue.Status = core.CleanString(ue.Status, true /* lower */)
	for _, s := range ue.sections() {
		if s != nil {
			s.Evidence = core.CleanString(s.Evidence)
		}
	}
	return core.Validate.Struct(ue)
}

// apply copies the student-owned fields, keeping teacher scores.
func (ue *UpsertEvaluation) apply(ev *Evaluation) {
	inputs := ue.sections()
	for i, s := range ev.SectionScores() {
		in := inputs[i]
		s.SelfScore = *in.SelfScore
		s.Evidence = in.Evidence
		s.Files = in.Files
		if s.Files == nil {
			s.Files = []string{}
		}
	}
}

// Grades holds the teacher scores per section. A nil grade keeps the previous score.
type Grades struct {
	Section1 *int `json:"section1"`
	Section2 *int `json:"section2"`
	Section3 *int `json:"section3"`
	Section4 *int `json:"section4"`
	Section5 *int `json:"section5"`
}

func (g *Grades) values() [5]*int {
	return [5]*int{g.Section1, g.Section2, g.Section3, g.Section4, g.Section5}
}

type GradeEvaluation struct {
	EvaluationID string  `json:"evaluationId" validate:"required"`
	Grades       *Grades `json:"grades" validate:"required"`
	Comments     string  `json:"comments"`
}

func (ge *GradeEvaluation) Validate() error {
	ge.EvaluationID = core.CleanString(ge.EvaluationID)
	ge.Comments = core.CleanString(ge.Comments)
	return core.Validate.Struct(ge)
}

// GradingFilter narrows the gradable evaluations.
// An empty Status means submitted and graded ones.
type GradingFilter struct {
	Status   string
	Semester string
	ClassID  string
}

// GradableEvaluation is an Evaluation enriched with roster data.
type GradableEvaluation struct {
	Evaluation
	StudentName string `json:"studentName"`
	StudentID   string `json:"studentId"`
	ClassID     string `json:"classId"`
	Total       int    `json:"total"`
}
