package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core/export"
)

var (
	errBinaryToTerminal = errors.New("refusing to write a binary export to a terminal, use -out")
	errUnknownFormat    = errors.New("format must be one of: detailed, summary, xlsx, students")
)

func (cli *commandLine) export(ctx context.Context, format, out string, filter export.ReportFilter) error {
	var file export.File
	var err error
	switch format {
	case "detailed":
		file, err = cli.exportSvc.DetailedCSV(ctx, filter)
	case "summary":
		file, err = cli.exportSvc.SummaryCSV(ctx, filter)
	case "xlsx":
		file, err = cli.exportSvc.DetailedXLSX(ctx, filter)
	case "students":
		file, err = cli.exportSvc.StudentsCSV(ctx, export.StudentFilter{
			ClassID:      filter.ClassID,
			Semester:     filter.Semester,
			AcademicYear: filter.AcademicYear,
		})
	default:
		return errUnknownFormat
	}
	if err != nil {
		return err
	}

	if out == "" {
		if file.ContentType == export.ContentTypeXLSX && isTerminalFunc(cli.stdout) {
			return errBinaryToTerminal
		}
		_, err = cli.stdout.Write(file.Data)
		return errors.Wrap(err, "writing export")
	}
	if err = os.WriteFile(out, file.Data, 0o644); err != nil {
		return errors.Wrap(err, "writing export")
	}
	_, _ = fmt.Fprintf(cli.stdout, "%s written to %s\n", file.Name, out)
	return nil
}
