package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/core/evaluation"
	"github.com/womanacademy/renluyen/core/student"
)

// Content types
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

var (
	NowFunc = time.Now // mockable

	unsafeFilenameRegex = regexp.MustCompile(`[^\w-]+`)
)

type (
	Evaluations interface {
		Query(ctx context.Context, filter evaluation.QueryFilter) ([]evaluation.Evaluation, error)
		GetByID(ctx context.Context, id string) (evaluation.Evaluation, error)
	}

	Roster interface {
		Filter(ctx context.Context, filter student.QueryFilter) ([]student.Student, error)
		GetByUserIDs(ctx context.Context, userIDs ...string) (map[string]student.Student, error)
	}

	// File is a rendered, downloadable export.
	File struct {
		Name        string
		ContentType string
		Data        []byte
	}

	// ReportFilter applies AND operation on the non-empty fields.
	// Semester also accepts the "HK1 2023-2024" form.
	ReportFilter struct {
		Semester     string
		AcademicYear string
		ClassID      string
		Status       string
	}

	// StudentFilter selects the roster rows of a student export.
	StudentFilter struct {
		ClassID      string
		Search       string
		Semester     string
		AcademicYear string
	}

	CustomExport struct {
		Data     [][]interface{} `json:"data" validate:"required"`
		Filename string          `json:"filename"`
	}

	Service struct {
		evals    Evaluations
		roster   Roster
		cache    core.Cache // optional
		cacheTTL time.Duration
		appName  string
		logger   core.Logger
	}
)

func NewService(evals Evaluations, roster Roster, cache core.Cache, cacheTTL time.Duration, appName string, logger core.Logger) *Service {
	return &Service{
		evals:    evals,
		roster:   roster,
		cache:    cache,
		cacheTTL: cacheTTL,
		appName:  appName,
		logger:   logger,
	}
}

func timestamp() string {
	return strconv.FormatInt(NowFunc().UnixNano()/int64(time.Millisecond), 10)
}

func splitSemester(semester, academicYear string) (string, string) {
	semester = core.CleanString(semester)
	if academicYear == "" {
		if parts := strings.SplitN(semester, " ", 2); len(parts) == 2 {
			return parts[0], strings.TrimSpace(parts[1])
		}
	}
	return semester, core.CleanString(academicYear)
}

// Rows returns the evaluations matching filter paired with their roster records.
func (svc *Service) Rows(ctx context.Context, filter ReportFilter) ([]Row, error) {
	qf := evaluation.QueryFilter{
		Orderings: []core.DBOrdering{{Field: "userId", Ascending: true}},
	}
	qf.Semester, qf.AcademicYear = splitSemester(filter.Semester, filter.AcademicYear)
	if status := core.CleanString(filter.Status, true /* lower */); status != "" {
		qf.Statuses = []string{status}
	}

	evals, err := svc.evals.Query(ctx, qf)
	if err != nil {
		return nil, errors.Wrap(err, "querying evaluations")
	}
	userIDs := make([]string, 0, len(evals))
	for _, ev := range evals {
		userIDs = append(userIDs, ev.UserID)
	}
	students, err := svc.roster.GetByUserIDs(ctx, userIDs...)
	if err != nil {
		return nil, errors.Wrap(err, "resolving students")
	}

	classID := core.CleanString(filter.ClassID)
	rows := make([]Row, 0, len(evals))
	for _, ev := range evals {
		st := students[ev.UserID]
		if classID != "" && st.ClassID != classID {
			continue
		}
		rows = append(rows, Row{Evaluation: ev, Student: st})
	}
	return rows, nil
}

func csvFile(name string, t Table) (File, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return File{}, err
	}
	return File{Name: name, ContentType: ContentTypeCSV, Data: buf.Bytes()}, nil
}

func (svc *Service) DetailedCSV(ctx context.Context, filter ReportFilter) (File, error) {
	rows, err := svc.Rows(ctx, filter)
	if err != nil {
		return File{}, err
	}
	return csvFile("bao-cao-chi-tiet-"+timestamp()+".csv", DetailedTable(rows))
}

func (svc *Service) SummaryCSV(ctx context.Context, filter ReportFilter) (File, error) {
	rows, err := svc.Rows(ctx, filter)
	if err != nil {
		return File{}, err
	}
	return csvFile("bao-cao-tom-tat-"+timestamp()+".csv", SummaryTable(rows))
}

func (svc *Service) DetailedXLSX(ctx context.Context, filter ReportFilter) (File, error) {
	rows, err := svc.Rows(ctx, filter)
	if err != nil {
		return File{}, err
	}
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, "Chi tiet", DetailedTable(rows)); err != nil {
		return File{}, err
	}
	return File{Name: "bao-cao-chi-tiet-" + timestamp() + ".xlsx", ContentType: ContentTypeXLSX, Data: buf.Bytes()}, nil
}

// StudentsCSV exports the roster with the evaluations of each linked student.
func (svc *Service) StudentsCSV(ctx context.Context, filter StudentFilter) (File, error) {
	students, err := svc.roster.Filter(ctx, student.QueryFilter{ClassID: filter.ClassID, Search: filter.Search})
	if err != nil {
		return File{}, errors.Wrap(err, "filtering students")
	}

	qf := evaluation.QueryFilter{Orderings: []core.DBOrdering{{Field: "academicYear", Ascending: true}, {Field: "semester", Ascending: true}}}
	qf.Semester, qf.AcademicYear = splitSemester(filter.Semester, filter.AcademicYear)
	evals, err := svc.evals.Query(ctx, qf)
	if err != nil {
		return File{}, errors.Wrap(err, "querying evaluations")
	}
	byUser := make(map[string][]evaluation.Evaluation, len(students))
	for _, ev := range evals {
		byUser[ev.UserID] = append(byUser[ev.UserID], ev)
	}
	return csvFile("danh-sach-sinh-vien-"+timestamp()+".csv", RosterTable(students, byUser))
}

// CustomCSV quotes every cell of the provided rows. nil cells are written empty.
func (svc *Service) CustomCSV(ce CustomExport) (File, error) {
	if err := core.Validate.Struct(ce); err != nil {
		return File{}, err
	}

	rows := make([][]string, len(ce.Data))
	for i, row := range ce.Data {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			if cell != nil {
				rows[i][j] = fmt.Sprint(cell)
			}
		}
	}

	name := unsafeFilenameRegex.ReplaceAllString(core.CleanString(ce.Filename), "-")
	if name == "" {
		name = "export"
	}
	var buf bytes.Buffer
	if err := WriteQuotedCSV(&buf, rows); err != nil {
		return File{}, err
	}
	return File{Name: name + "-" + timestamp() + ".csv", ContentType: ContentTypeCSV, Data: buf.Bytes()}, nil
}

func pdfCacheKey(ev evaluation.Evaluation) string {
	return "pdf:evaluation:" + ev.ID + ":" + strconv.FormatInt(ev.UpdatedAt.UnixNano(), 10)
}

// EvaluationPDF renders (or fetches from cache) the evaluation sheet.
func (svc *Service) EvaluationPDF(ctx context.Context, id string) (File, error) {
	ev, err := svc.evals.GetByID(ctx, id)
	if err != nil {
		return File{}, err
	}
	file := File{Name: "phieu-danh-gia-" + ev.ID + ".pdf", ContentType: ContentTypePDF}

	key := pdfCacheKey(ev)
	if svc.cache != nil {
		data, ok, err := svc.cache.Get(ctx, key)
		if err != nil {
			svc.logger.Warn("reading pdf cache", errors.Wrap(err, "cache get"))
		} else if ok {
			file.Data = data
			return file, nil
		}
	}

	students, err := svc.roster.GetByUserIDs(ctx, ev.UserID)
	if err != nil {
		return File{}, errors.Wrap(err, "resolving student")
	}
	var buf bytes.Buffer
	if err := RenderEvaluationPDF(&buf, Row{Evaluation: ev, Student: students[ev.UserID]}, svc.appName, NowFunc()); err != nil {
		return File{}, err
	}
	file.Data = buf.Bytes()

	if svc.cache != nil {
		if err := svc.cache.Set(ctx, key, file.Data, svc.cacheTTL); err != nil {
			svc.logger.Warn("writing pdf cache", errors.Wrap(err, "cache set"))
		}
	}
	return file, nil
}
