package export

import (
	"strconv"
	"time"

	"github.com/womanacademy/renluyen/core/evaluation"
)

const dateLayout = "2006-01-02"

var statusLabels = map[string]string{
	evaluation.StatusDraft:     "Bản nháp",
	evaluation.StatusSubmitted: "Đã nộp",
	evaluation.StatusGraded:    "Đã chấm điểm",
}

// StatusLabel returns the Vietnamese label of an evaluation status.
func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

// Classify derives the conduct classification from a final score.
// A missing score falls in the lowest class, as in the summary report.
func Classify(finalScore *int) string {
	if finalScore == nil {
		return "Trung bình"
	}
	switch score := *finalScore; {
	case score >= 90:
		return "Xuất sắc"
	case score >= 80:
		return "Tốt"
	case score >= 70:
		return "Khá"
	default:
		return "Trung bình"
	}
}

// SemesterLabel formats the semester column, eg. "HK1 2023-2024".
func SemesterLabel(ev evaluation.Evaluation) string {
	if ev.AcademicYear == "" {
		return ev.Semester
	}
	return ev.Semester + " " + ev.AcademicYear
}

func formatInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

// effectiveScore is the teacher score when set, else the self score.
func effectiveScore(s evaluation.SectionScore) int {
	if s.TeacherScore != nil {
		return *s.TeacherScore
	}
	return s.SelfScore
}
