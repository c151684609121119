package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/learningopt/immersion/core"
	"github.com/learningopt/immersion/core/grading"
)

func (cli *commandLine) importRoster(path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening roster file")
	}
	defer func() { _ = f.Close() }()

	var rows []map[string]interface{}
	dec := json.NewDecoder(f)
	dec.UseNumber()
	if err = dec.Decode(&rows); err != nil {
		return errors.Wrapf(err, "decoding %s", filepath.Base(path))
	}

	if core.CleanString(name) == "" {
		name = filepath.Base(path)
	}
	nr := grading.NewRoster{FileName: name, Rows: rows}
	if err = nr.Validate(cli.validate); err != nil {
		return core.TranslateValidationErrors(err, cli.translator)
	}

	roster, issues, err := cli.svc.Import(context.Background(), nr)
	if err != nil {
		return err
	}
	cli.logger.Info(fmt.Sprintf("roster %s imported", roster.ID), cli.operator)

	_, _ = fmt.Fprintf(cli.out, "imported %s: %d students (roster %s)\n", roster.FileName, len(roster.Students), roster.ID)
	if len(issues) > 0 {
		_, _ = fmt.Fprintf(cli.out, "%d cells were dropped:\n", len(issues))
		t := cli.newTable("ROW", "HEADER", "VALUE")
		for _, is := range issues {
			t.row(strconv.Itoa(is.Row), is.Header, is.Value)
		}
		return t.flush()
	}
	return nil
}

func (cli *commandLine) listRosters() error {
	rosters, err := cli.svc.List(context.Background())
	if err != nil {
		return err
	}
	t := cli.newTable("ID", "FILE", "UPLOADED")
	for _, r := range rosters {
		t.row(r.ID, r.FileName, r.UploadedAt.Format(time.RFC3339))
	}
	return t.flush()
}

func (cli *commandLine) listViews() error {
	t := cli.newTable("VIEW", "DEPARTMENTS", "CATEGORIES", "DENOMINATOR", "PASS REMARK", "SCALE STEPS")
	for _, v := range cli.svc.Catalog().Views() {
		t.row(
			v.Name,
			strings.Join(v.Departments, ","),
			strings.Join(v.Codes(), ","),
			strconv.Itoa(v.Denominator),
			v.PassRemark,
			strconv.Itoa(len(v.Scale)),
		)
	}
	return t.flush()
}

func (cli *commandLine) showRoster(rosterID, viewName string, asJSON bool) error {
	ctx := context.Background()
	view, err := cli.svc.Catalog().View(viewName)
	if err != nil {
		return err
	}
	rows, err := cli.svc.ViewRows(ctx, rosterID, viewName)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cli.out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	codes := view.Codes()
	headers := append([]string{"ROW", "LAST NAME", "FIRST NAME", "MIDDLE NAME", "STRAND", "DEPARTMENT"}, codes...)
	headers = append(headers, "TOTAL", "WRITTEN", "APPRAISAL", "PERFORMANCE", "FINAL", "REMARKS")
	t := cli.newTable(headers...)
	for _, r := range rows {
		rec := r.Record
		cells := []string{rec.ID, rec.LastName, rec.FirstName, rec.MiddleName, rec.Strand, rec.Department}
		for _, code := range codes {
			cells = append(cells, rec.Grades[code])
		}
		cells = append(cells,
			strconv.Itoa(r.Result.WrittenTotal),
			r.Result.WrittenRating,
			rec.Performance,
			strconv.Itoa(r.Result.PerformanceRating),
			r.Result.FinalGrade,
			r.Result.Remarks,
		)
		t.row(cells...)
	}
	return t.flush()
}

func (cli *commandLine) deleteRoster(rosterID string) error {
	if err := cli.svc.Delete(context.Background(), rosterID); err != nil {
		return err
	}
	cli.logger.Info(fmt.Sprintf("roster %s deleted", rosterID), cli.operator)
	_, _ = fmt.Fprintf(cli.out, "deleted roster %s\n", rosterID)
	return nil
}

func (cli *commandLine) clearRosters() error {
	if err := cli.svc.Clear(context.Background()); err != nil {
		return err
	}
	cli.logger.Warn("all rosters deleted", cli.operator)
	_, _ = fmt.Fprintln(cli.out, "deleted every roster")
	return nil
}
