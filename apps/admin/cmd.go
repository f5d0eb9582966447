package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/womanacademy/renluyen/apps/shared"
	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/core/export"
	"github.com/womanacademy/renluyen/core/student"
)

var (
	isTerminalFunc = func(w io.Writer) bool { // mockable
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd()))
	}

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf       *core.Config
	repos      shared.Repositories
	studentSvc *student.Service
	exportSvc  *export.Service
	stdout     io.Writer
}

func newCommandLine(conf *core.Config, repos shared.Repositories, svcs shared.Services) *commandLine {
	return &commandLine{
		conf:       conf,
		repos:      repos,
		studentSvc: svcs.Student,
		exportSvc:  svcs.Export,
		stdout:     os.Stdout,
	}
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose command (up, down, status, version, redo, reset, up-to, down-to)")
	fmt.Println("  addstudent -name NAME -studentid ID -email EMAIL [-class CLASS] [-userid UID] [-phone PHONE] - add a student to the roster")
	fmt.Println("  token -userid UID -role student|teacher [-name NAME] [-email EMAIL] - print a signed API token")
	fmt.Println("  export -format detailed|summary|xlsx|students [-semester SEM] [-year YEAR] [-class CLASS] [-out FILE] - write a report")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	addStudentCmd := flag.NewFlagSet("addstudent", flag.ContinueOnError)
	addStudentName := addStudentCmd.String("name", "", "The student's full name.")
	addStudentID := addStudentCmd.String("studentid", "", "The student ID (MSSV).")
	addStudentEmail := addStudentCmd.String("email", "", "The student's email.")
	addStudentClass := addStudentCmd.String("class", "", "The class ID (defaults to the configured class).")
	addStudentUserID := addStudentCmd.String("userid", "", "The identity linked to this record.")
	addStudentPhone := addStudentCmd.String("phone", "", "The student's phone number.")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenUserID := tokenCmd.String("userid", "", "The token subject.")
	tokenRole := tokenCmd.String("role", core.RoleStudent, "student or teacher.")
	tokenName := tokenCmd.String("name", "", "The user's display name.")
	tokenEmail := tokenCmd.String("email", "", "The user's email.")

	exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
	exportFormat := exportCmd.String("format", "detailed", "detailed, summary, xlsx or students.")
	exportSemester := exportCmd.String("semester", "", "HK1, HK2... or \"HK1 2023-2024\".")
	exportYear := exportCmd.String("year", "", "The academic year, eg. 2023-2024.")
	exportClass := exportCmd.String("class", "", "The class ID.")
	exportOut := exportCmd.String("out", "", "The output file (stdout when empty).")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "addstudent":
		if err := addStudentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addStudentName == "" || *addStudentID == "" || *addStudentEmail == "" {
			addStudentCmd.Usage()
			return errHelp
		}
		return cli.addStudent(ctx, student.NewStudent{
			UserID:    *addStudentUserID,
			FullName:  *addStudentName,
			StudentID: *addStudentID,
			ClassID:   *addStudentClass,
			Email:     *addStudentEmail,
			Phone:     *addStudentPhone,
		})

	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenUserID == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(core.Actor{ID: *tokenUserID, Role: *tokenRole, Name: *tokenName, Email: *tokenEmail})

	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.export(ctx, *exportFormat, *exportOut, export.ReportFilter{
			Semester:     *exportSemester,
			AcademicYear: *exportYear,
			ClassID:      *exportClass,
		})

	default:
		cli.printUsage()
		return errHelp
	}
}
