package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/learningopt/immersion/core"
	"github.com/learningopt/immersion/core/grading"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db         *sqlx.DB
	engine     string
	svc        *grading.Service
	validate   *validator.Validate
	translator ut.Translator
	logger     core.Logger
	operator   core.Operator
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprint(cli.out, `Usage:
  import -file FILE [-name NAME]                                  - import a roster from a JSON array of rows
  rosters                                                         - list rosters, newest first
  views                                                           - list department views
  show -roster ID -view VIEW [-json]                              - show a roster's rows and grades in a view
  grade -roster ID -view VIEW -row ROW -code CODE -value VALUE    - set a category score
  perf -roster ID -view VIEW -row ROW -value VALUE                - set a performance appraisal score
  delete -roster ID                                               - delete a roster
  clear -yes                                                      - delete every roster
  migrate COMMAND [ARGS...]                                       - run a database migration command
`)
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}
	return nil
}

// required prints the usage of `fs` if any of `vals` is empty.
func required(fs *flag.FlagSet, vals ...string) error {
	for _, v := range vals {
		if core.CleanString(v) == "" {
			fs.Usage()
			return errHelp
		}
	}
	return nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	importCmd := cli.newFlagSet("import")
	importFile := importCmd.String("file", "", "Path to a JSON file holding an array of rows keyed by header.")
	importName := importCmd.String("name", "", "Name to record for the roster. Defaults to the file's base name.")

	showCmd := cli.newFlagSet("show")
	showRoster := showCmd.String("roster", "", "The roster ID.")
	showView := showCmd.String("view", "", "The view: support, production or technical.")
	showJSON := showCmd.Bool("json", false, "Print rows as JSON.")

	gradeCmd := cli.newFlagSet("grade")
	gradeRoster := gradeCmd.String("roster", "", "The roster ID.")
	gradeView := gradeCmd.String("view", "", "The view the edit is made in.")
	gradeRow := gradeCmd.String("row", "", "The student row ID.")
	gradeCode := gradeCmd.String("code", "", "The category code, e.g. WI or TECH.")
	gradeValue := gradeCmd.String("value", "", "The score. Empty clears it.")

	perfCmd := cli.newFlagSet("perf")
	perfRoster := perfCmd.String("roster", "", "The roster ID.")
	perfView := perfCmd.String("view", "", "The view the edit is made in.")
	perfRow := perfCmd.String("row", "", "The student row ID.")
	perfValue := perfCmd.String("value", "", "The appraisal score, 0 to 5. Empty clears it.")

	deleteCmd := cli.newFlagSet("delete")
	deleteRoster := deleteCmd.String("roster", "", "The roster ID.")

	clearCmd := cli.newFlagSet("clear")
	clearYes := clearCmd.Bool("yes", false, "Confirm deleting every roster.")

	switch args[1] {
	case "import":
		if err := parse(importCmd, args[2:]); err != nil {
			return err
		}
		if err := required(importCmd, *importFile); err != nil {
			return err
		}
		return cli.importRoster(*importFile, *importName)
	case "rosters":
		return cli.listRosters()
	case "views":
		return cli.listViews()
	case "show":
		if err := parse(showCmd, args[2:]); err != nil {
			return err
		}
		if err := required(showCmd, *showRoster, *showView); err != nil {
			return err
		}
		return cli.showRoster(*showRoster, *showView, *showJSON)
	case "grade":
		if err := parse(gradeCmd, args[2:]); err != nil {
			return err
		}
		if err := required(gradeCmd, *gradeRoster, *gradeView, *gradeRow, *gradeCode); err != nil {
			return err
		}
		return cli.setGrade(*gradeRoster, *gradeView, *gradeRow, core.CleanString(*gradeCode, true /* upper */), *gradeValue)
	case "perf":
		if err := parse(perfCmd, args[2:]); err != nil {
			return err
		}
		if err := required(perfCmd, *perfRoster, *perfView, *perfRow); err != nil {
			return err
		}
		return cli.setPerformance(*perfRoster, *perfView, *perfRow, *perfValue)
	case "delete":
		if err := parse(deleteCmd, args[2:]); err != nil {
			return err
		}
		if err := required(deleteCmd, *deleteRoster); err != nil {
			return err
		}
		return cli.deleteRoster(*deleteRoster)
	case "clear":
		if err := parse(clearCmd, args[2:]); err != nil {
			return err
		}
		if !*clearYes {
			clearCmd.Usage()
			return errHelp
		}
		return cli.clearRosters()
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}
