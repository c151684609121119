package main

import (
	"context"
	"fmt"

	"github.com/learningopt/immersion/core/grading"
)

func (cli *commandLine) setGrade(rosterID, viewName, rowID, code, value string) error {
	row, accepted, err := cli.svc.SetGrade(context.Background(), rosterID, viewName, rowID, code, value)
	if err != nil {
		return err
	}
	if accepted {
		cli.logger.Info(fmt.Sprintf("roster %s: %s of %s set to %q", rosterID, code, rowID, value), cli.operator)
	}
	cli.printEdit(row, accepted, fmt.Sprintf("%s=%q", code, value))
	return nil
}

func (cli *commandLine) setPerformance(rosterID, viewName, rowID, value string) error {
	row, accepted, err := cli.svc.SetPerformance(context.Background(), rosterID, viewName, rowID, value)
	if err != nil {
		return err
	}
	if accepted {
		cli.logger.Info(fmt.Sprintf("roster %s: appraisal of %s set to %q", rosterID, rowID, value), cli.operator)
	}
	cli.printEdit(row, accepted, fmt.Sprintf("appraisal=%q", value))
	return nil
}

// printEdit reports an edit; rejected values leave the row unchanged.
func (cli *commandLine) printEdit(row grading.ViewRow, accepted bool, edit string) {
	status := "ignored"
	if accepted {
		status = "saved"
	}
	res := row.Result
	_, _ = fmt.Fprintf(cli.out, "%s %s: total %d, written %s, performance %d, final %s, %s\n",
		status, edit, res.WrittenTotal, res.WrittenRating, res.PerformanceRating, res.FinalGrade, res.Remarks)
}
