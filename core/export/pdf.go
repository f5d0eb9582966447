package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"

	"github.com/womanacademy/renluyen/core/evaluation"
)

var dReplacer = strings.NewReplacer("đ", "d", "Đ", "D")

// toLatin strips Vietnamese diacritics: the PDF core fonts only cover cp1252.
func toLatin(s string) string {
	s = dReplacer.Replace(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// RenderEvaluationPDF writes the evaluation sheet of a student.
func RenderEvaluationPDF(w io.Writer, r Row, appName string, generatedAt time.Time) error {
	ev := r.Evaluation
	tr := toLatin

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(tr("Phiếu đánh giá rèn luyện "+ev.ID), false)
	pdf.SetAuthor(tr(appName), false)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	// header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr("PHIẾU ĐÁNH GIÁ KẾT QUẢ RÈN LUYỆN"), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, tr("Học kỳ: "+SemesterLabel(ev)), "", 1, "C", false, 0, "")
	pdf.SetDrawColor(40, 145, 108)
	pdf.SetLineWidth(0.5)
	pdf.Line(20, pdf.GetY()+2, 190, pdf.GetY()+2)
	pdf.Ln(8)

	// student information
	info := [][2]string{
		{"Họ tên:", r.studentName()},
		{"MSSV:", r.Student.StudentID},
		{"Lớp:", r.Student.ClassID},
		{"Trạng thái:", StatusLabel(ev.Status)},
		{"Ngày nộp:", formatDate(ev.SubmittedAt)},
		{"Ngày chấm:", formatDate(ev.GradedAt)},
	}
	for _, line := range info {
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(40, 6, tr(line[0]))
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, tr(line[1]))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	// scores table
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(40, 145, 108)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(70, 8, tr("Nội dung đánh giá"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, tr("Điểm tối đa"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, tr("Tự chấm"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, tr("GV chấm"), "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for i, s := range ev.SectionScores() {
		sec := evaluation.Sections[i]
		pdf.CellFormat(70, 7, tr(sec.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, strconv.Itoa(sec.Max), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 7, strconv.Itoa(s.SelfScore), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 7, formatInt(s.TeacherScore), "1", 1, "C", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(70, 8, tr("Tổng cộng"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "100", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, strconv.Itoa(ev.TotalSelfScore), "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, formatInt(ev.FinalScore), "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	if ev.FinalScore != nil {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 7, tr("Xếp loại: "+Classify(ev.FinalScore)))
		pdf.Ln(8)
	}

	// evidence
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, tr("Minh chứng"))
	pdf.Ln(7)
	for i, s := range ev.SectionScores() {
		if s.Evidence == "" {
			continue
		}
		pdf.SetFont("Arial", "B", 9)
		pdf.Cell(0, 5, tr(evaluation.Sections[i].Name))
		pdf.Ln(5)
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, tr(s.Evidence), "", "L", false)
		pdf.Ln(2)
	}

	if ev.TeacherComments != "" {
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, tr("Nhận xét của giáo viên"))
		pdf.Ln(7)
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, tr(ev.TeacherComments), "", "L", false)
	}

	// footer
	pdf.SetY(-30)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("%s - tạo lúc %s", appName, generatedAt.UTC().Format("2006-01-02 15:04 MST"))), "", 0, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "rendering pdf")
	}
	return nil
}
