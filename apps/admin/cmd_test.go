package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	echoapi "github.com/womanacademy/renluyen/apps/api/echo"
	"github.com/womanacademy/renluyen/apps/shared"
	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/core/student"
	logsvc "github.com/womanacademy/renluyen/services/logger"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	conf := core.NewTestConfig()
	conf.Upload.Dir = t.TempDir()

	repos, err := shared.OpenRepositories(conf, false)
	require.NoError(t, err)
	svcs, err := shared.NewServices(context.Background(), conf, repos, logsvc.NewRollbarLogger(zap.NewNop(), conf))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = svcs.Close()
		_ = repos.Close()
	})

	out := new(bytes.Buffer)
	cli := newCommandLine(conf, repos, svcs)
	cli.stdout = out
	return cli, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_run(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	t.Run("memory engine", func(t *testing.T) {
		assert.Equal(t, errNoDatabase, cli.run([]string{"admin", "migrate", "up"}))
	})

	cli.repos.DB = sqlx.NewDb(&sql.DB{}, "postgres")
	runMigrationsFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
}

func Test_commandLine_addStudent(t *testing.T) {
	cli, out := setup(t)

	tests := []cliTest{
		{name: "no args", args: []string{"addstudent"}, wantErr: errHelp},
		{name: "missing email", args: []string{"addstudent", "-name", "Nguyen Van A", "-studentid", "2021001"}, wantErr: errHelp},
		{
			name:  "added",
			args:  []string{"addstudent", "-name", "Nguyen Van A", "-studentid", "2021001", "-email", "a@test.vn", "-userid", "u1"},
			extra: "CNTT2021A",
		},
		{
			name:    "duplicate student id",
			args:    []string{"addstudent", "-name", "Nguyen Van B", "-studentid", "2021001", "-email", "b@test.vn"},
			wantErrStr: student.ErrStudentIDExists.Error(),
		},
		{
			name:  "explicit class",
			args:  []string{"addstudent", "-name", "Tran Thi C", "-studentid", "2021002", "-email", "c@test.vn", "-class", "KT2021B"},
			extra: "KT2021B",
		},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			tt.check(t, cli.run(args))
			if class, ok := tt.extra.(string); ok {
				assert.Contains(t, out.String(), "added to "+class)
			}
		})
	}

	st, err := cli.studentSvc.GetByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "2021001", st.StudentID)
}

func Test_commandLine_token(t *testing.T) {
	cli, out := setup(t)

	tests := []cliTest{
		{name: "no args", args: []string{"token"}, wantErr: errHelp},
		{name: "unknown role", args: []string{"token", "-userid", "u1", "-role", "admin"}, wantErr: errUnknownRole},
		{name: "student", args: []string{"token", "-userid", "u1", "-name", "Nguyen Van A"}, extra: core.RoleStudent},
		{name: "teacher", args: []string{"token", "-userid", "t1", "-role", "teacher"}, extra: core.RoleTeacher},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			tt.check(t, cli.run(args))

			if role, ok := tt.extra.(string); ok {
				claims := new(echoapi.Claims)
				_, err := jwt.ParseWithClaims(strings.TrimSpace(out.String()), claims, func(*jwt.Token) (interface{}, error) {
					return []byte(cli.conf.SecretKey), nil
				})
				require.NoError(t, err)
				assert.Equal(t, role, claims.Role)
				assert.Equal(t, args[3], claims.Subject)
			}
		})
	}
}

func Test_commandLine_export(t *testing.T) {
	cli, out := setup(t)
	ctx := context.Background()

	_, err := cli.studentSvc.Create(ctx, student.NewStudent{
		UserID: "u1", FullName: "Nguyen Van A", StudentID: "2021001", Email: "a@test.vn",
	})
	require.NoError(t, err)

	outFile := filepath.Join(t.TempDir(), "students.csv")

	tests := []cliTest{
		{name: "unknown format", args: []string{"export", "-format", "pdf"}, wantErr: errUnknownFormat},
		{name: "detailed to stdout", args: []string{"export"}, extra: "\ufeff"},
		{name: "students to stdout", args: []string{"export", "-format", "students"}, extra: "2021001"},
		{name: "students to file", args: []string{"export", "-format", "students", "-out", outFile}, extra: outFile},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			tt.check(t, cli.run(args))
			if want, ok := tt.extra.(string); ok {
				assert.Contains(t, out.String(), want)
			}
		})
	}

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Nguyen Van A")

	t.Run("xlsx to terminal", func(t *testing.T) {
		orig := isTerminalFunc
		isTerminalFunc = func(io.Writer) bool { return true }
		defer func() { isTerminalFunc = orig }()
		assert.Equal(t, errBinaryToTerminal, cli.run([]string{"admin", "export", "-format", "xlsx"}))
	})
}
