package export

import (
	"strconv"

	"github.com/womanacademy/renluyen/core/evaluation"
	"github.com/womanacademy/renluyen/core/student"
)

var (
	detailedHeader = []string{
		"Họ tên", "MSSV", "Lớp", "Học kỳ",
		"Học tập (Tự chấm)", "Học tập (GV chấm)",
		"Nội quy (Tự chấm)", "Nội quy (GV chấm)",
		"Hoạt động XH (Tự chấm)", "Hoạt động XH (GV chấm)",
		"Quan hệ CD (Tự chấm)", "Quan hệ CD (GV chấm)",
		"Công tác lớp (Tự chấm)", "Công tác lớp (GV chấm)",
		"Tổng điểm tự chấm", "Điểm cuối cùng", "Trạng thái", "Ngày nộp", "Ngày chấm",
	}

	summaryHeader = []string{"Họ tên", "MSSV", "Lớp", "Học kỳ", "Điểm cuối cùng", "Xếp loại", "Trạng thái"}

	rosterHeader = []string{
		"Họ tên", "MSSV", "Lớp", "Email", "SĐT", "Học kỳ",
		"Điểm học tập", "Điểm nội quy", "Điểm hoạt động XH", "Điểm quan hệ CD", "Điểm công tác lớp",
		"Tổng điểm tự chấm", "Điểm cuối cùng", "Trạng thái", "Ngày nộp", "Ngày chấm",
	}
)

// Row pairs an evaluation with the roster record of its owner (zero when unlinked).
type Row struct {
	Evaluation evaluation.Evaluation
	Student    student.Student
}

func (r Row) studentName() string {
	if r.Student.FullName != "" {
		return r.Student.FullName
	}
	return r.Evaluation.UserID
}

func DetailedTable(rows []Row) Table {
	t := Table{Header: detailedHeader, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		ev := r.Evaluation
		cells := []string{r.studentName(), r.Student.StudentID, r.Student.ClassID, SemesterLabel(ev)}
		for _, s := range ev.SectionScores() {
			cells = append(cells, strconv.Itoa(s.SelfScore), formatInt(s.TeacherScore))
		}
		cells = append(cells,
			strconv.Itoa(ev.TotalSelfScore),
			formatInt(ev.FinalScore),
			StatusLabel(ev.Status),
			formatDate(ev.SubmittedAt),
			formatDate(ev.GradedAt),
		)
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func SummaryTable(rows []Row) Table {
	t := Table{Header: summaryHeader, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		ev := r.Evaluation
		t.Rows = append(t.Rows, []string{
			r.studentName(),
			r.Student.StudentID,
			r.Student.ClassID,
			SemesterLabel(ev),
			formatInt(ev.FinalScore),
			Classify(ev.FinalScore),
			StatusLabel(ev.Status),
		})
	}
	return t
}

// RosterTable writes one row per (student, evaluation); students without evaluation get one row
// with empty evaluation columns.
func RosterTable(students []student.Student, evals map[string][]evaluation.Evaluation) Table {
	t := Table{Header: rosterHeader, Rows: make([][]string, 0, len(students))}
	for _, st := range students {
		base := []string{st.FullName, st.StudentID, st.ClassID, st.Email, st.Phone}
		stEvals := evals[st.UserID]
		if st.UserID == "" || len(stEvals) == 0 {
			t.Rows = append(t.Rows, append(base, make([]string, len(rosterHeader)-len(base))...))
			continue
		}
		for _, ev := range stEvals {
			cells := append(append(make([]string, 0, len(rosterHeader)), base...), SemesterLabel(ev))
			for _, s := range ev.SectionScores() {
				cells = append(cells, strconv.Itoa(effectiveScore(*s)))
			}
			cells = append(cells,
				strconv.Itoa(ev.TotalSelfScore),
				formatInt(ev.FinalScore),
				StatusLabel(ev.Status),
				formatDate(ev.SubmittedAt),
				formatDate(ev.GradedAt),
			)
			t.Rows = append(t.Rows, cells)
		}
	}
	return t
}
