package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learningopt/immersion/core"
	"github.com/learningopt/immersion/core/grading"
	"github.com/learningopt/immersion/storage/database/sqlx"
	"github.com/learningopt/immersion/tests"
)

var rosterRepo grading.Repository

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	// set up DB & repos
	db := testutil.PrepareDB(t)
	rosterRepo = sqlxrepos.NewRosterRepository(db)
	translator := core.NewTranslator()
	out := new(bytes.Buffer)

	// start CLI
	return &commandLine{
		db:         db,
		engine:     core.EngineSQLite,
		svc:        grading.NewService(rosterRepo, grading.NewCatalog(nil), testutil.NewLogger()),
		validate:   core.NewValidator(translator),
		translator: translator,
		logger:     testutil.NewLogger(),
		operator:   core.Operator{ID: "tester", Name: "tester"},
		out:        out,
	}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    []string // substrings
}

func runCLITests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.True(t, errors.Is(err, tt.wantErr), "cli.run() error = %v, wantErr %v", err, tt.wantErr)
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Equal(t, tt.wantErrStr, err.Error())
				}
			default:
				assert.NoError(t, err)
			}
			for _, s := range tt.wantOut {
				assert.Contains(t, out.String(), s)
			}
		})
	}
}

func writeRows(t *testing.T, rows string) string {
	path := filepath.Join(t.TempDir(), "batch-1.json")
	require.NoError(t, os.WriteFile(path, []byte(rows), 0o600))
	return path
}

func Test_commandLine_usage(t *testing.T) {
	cli, out := setup(t)

	runCLITests(t, cli, out, []cliTest{
		{name: "no command", wantErr: errHelp, wantOut: []string{"Usage:"}},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "help flag", args: []string{"show", "-h"}, wantErr: errHelp},
		{name: "import: no file", args: []string{"import"}, wantErr: errHelp},
		{name: "show: no view", args: []string{"show", "-roster", "x"}, wantErr: errHelp},
		{name: "grade: no code", args: []string{"grade", "-roster", "x", "-view", "support", "-row", "y"}, wantErr: errHelp},
		{name: "perf: no row", args: []string{"perf", "-roster", "x", "-view", "support"}, wantErr: errHelp},
		{name: "delete: no roster", args: []string{"delete"}, wantErr: errHelp},
		{name: "clear: not confirmed", args: []string{"clear"}, wantErr: errHelp},
		{name: "views", args: []string{"views"}, wantOut: []string{
			"support\tACCTG,ERT,HSN,HS,ER\t",
			"production\tPROD\t",
			"technical\tIT\t",
		}},
	})
}

func Test_commandLine_roster(t *testing.T) {
	cli, out := setup(t)

	path := writeRows(t, `[
		{"LAST NAME": "Dela Cruz", "FIRST NAME": "Juan", "DEPARTMENT": "it", "TECH": 46, "DS": 10, "PERFORMANCE APPRAISAL": 4.2},
		{"LAST NAME": "Reyes", "FIRST NAME": "Ana", "DEPARTMENT": "ACCTG", "WI": 11, "SUPP": "40"},
		{"LAST NAME": "", "DEPARTMENT": ""}
	]`)

	require.NoError(t, cli.run([]string{"admin", "import", "-file", path}))
	assert.Contains(t, out.String(), "imported batch-1.json: 2 students")
	assert.Contains(t, out.String(), "1 cells were dropped:")
	assert.Contains(t, out.String(), "2\tWI\t11\n")

	rosters, err := rosterRepo.QueryRosters(context.Background())
	require.NoError(t, err)
	require.Len(t, rosters, 1)
	roster, err := rosterRepo.GetRoster(context.Background(), rosters[0].ID)
	require.NoError(t, err)
	require.Len(t, roster.Students, 2)
	it, acctg := roster.Students[0], roster.Students[1]

	runCLITests(t, cli, out, []cliTest{
		{name: "rosters", args: []string{"rosters"}, wantOut: []string{"ID\tFILE\tUPLOADED\n", roster.ID + "\tbatch-1.json\t"}},
		{name: "show: technical", args: []string{"show", "-roster", roster.ID, "-view", "technical"}, wantOut: []string{
			it.ID + "\tDela Cruz\tJuan\t\t\tIT\t",
			"\t56\t63.93\t4.2\t96\t86.38\tCOMPLETE\n",
		}},
		{name: "show: unknown view", args: []string{"show", "-roster", roster.ID, "-view", "marketing"}, wantErr: grading.ErrUnknownView},
		{name: "show: unknown roster", args: []string{"show", "-roster", "nope", "-view", "support"}, wantErr: grading.ErrNotFound},
		{name: "show: json", args: []string{"show", "-roster", roster.ID, "-view", "support", "-json"}, wantOut: []string{`"last_name": "Reyes"`, `"remarks": "INCOMPLETE"`}},
		{name: "grade: saved", args: []string{"grade", "-roster", roster.ID, "-view", "support", "-row", acctg.ID, "-code", "wi", "-value", "10"}, wantOut: []string{`saved WI="10": total 50`}},
		{name: "grade: ignored", args: []string{"grade", "-roster", roster.ID, "-view", "support", "-row", acctg.ID, "-code", "WI", "-value", "11"}, wantOut: []string{`ignored WI="11": total 50`}},
		{name: "grade: hidden row", args: []string{"grade", "-roster", roster.ID, "-view", "support", "-row", it.ID, "-code", "WI", "-value", "1"}, wantErr: grading.ErrStudentNotFound},
		{name: "perf: saved", args: []string{"perf", "-roster", roster.ID, "-view", "support", "-row", acctg.ID, "-value", "3"}, wantOut: []string{`saved appraisal="3"`, "performance 85"}},
		{name: "perf: ignored", args: []string{"perf", "-roster", roster.ID, "-view", "support", "-row", acctg.ID, "-value", "5.5"}, wantOut: []string{`ignored appraisal="5.5"`, "performance 85"}},
		{name: "delete: unknown", args: []string{"delete", "-roster", "nope"}, wantErr: grading.ErrNotFound},
		{name: "delete", args: []string{"delete", "-roster", roster.ID}, wantOut: []string{"deleted roster " + roster.ID}},
		{name: "clear", args: []string{"clear", "-yes"}, wantOut: []string{"deleted every roster"}},
	})

	rosters, err = rosterRepo.QueryRosters(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rosters)
}

func Test_commandLine_importInvalid(t *testing.T) {
	cli, out := setup(t)

	runCLITests(t, cli, out, []cliTest{
		{name: "missing file", args: []string{"import", "-file", filepath.Join(t.TempDir(), "nope.json")}, wantErr: os.ErrNotExist},
		{name: "not json", args: []string{"import", "-file", writeRows(t, "lol")}, wantErrStr: "decoding batch-1.json: invalid character 'l' looking for beginning of value"},
	})

	err := cli.run([]string{"admin", "import", "-file", writeRows(t, "[]")})
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr), "error = %v", err)
	assert.Equal(t, []core.FieldError{{Field: "rows", Error: "rows must contain at least 1 item"}}, vErr.Fields)
}

func Test_commandLine_terminalOutput(t *testing.T) {
	cli, out := setup(t)
	origIsTerminal := isTerminalFunc
	isTerminalFunc = func(fd int) bool { return true }
	defer func() { isTerminalFunc = origIsTerminal }()

	testutil.CreateRoster(t, rosterRepo, "batch.xlsx", []grading.StudentRecord{
		testutil.Student("Dela Cruz", "IT", nil, ""),
	})
	rosters, err := rosterRepo.QueryRosters(context.Background())
	require.NoError(t, err)

	require.NoError(t, cli.run([]string{"admin", "show", "-roster", rosters[0].ID, "-view", "technical"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.NotContains(t, out.String(), "\t")
	assert.True(t, strings.HasPrefix(lines[0], "ROW "))
	assert.Contains(t, lines[1], " - ") // empty cells
	assert.True(t, strings.HasSuffix(lines[1], "INCOMPLETE"))
}

func Test_commandLine_migrate(t *testing.T) {
	cli, out := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, cli, out, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "students_index", "sql"}},
	})

	cli.engine = "mysql"
	assert.Error(t, cli.run([]string{"admin", "migrate", "up"}))
}
