package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-insights/core/ledger"
	"github.com/trezcool/masomo-insights/core/table"
)

var ledgerHeader = []string{"Module Name", "Type", "Number", "Score", "AVG", "Feedback"}

// withLedger opens the configured ledger storage for the duration of fn.
func (cli *commandLine) withLedger(ctx context.Context, fn func(svc LedgerService) error) (err error) {
	svc, release, err := cli.openLedger(ctx)
	if err != nil {
		return errors.Wrap(err, "opening ledger storage")
	}
	defer func() {
		if rErr := release(); rErr != nil && err == nil {
			err = errors.Wrap(rErr, "closing ledger storage")
		}
	}()
	return fn(svc)
}

func (cli *commandLine) showLedger(ctx context.Context, studentNumber string) error {
	var records []ledger.Record
	err := cli.withLedger(ctx, func(svc LedgerService) (err error) {
		records, err = svc.Get(ctx, studentNumber)
		return err
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		_, err = fmt.Fprintf(cli.out, "No data found for student %s.\n", studentNumber)
		return err
	}
	fmt.Fprintf(cli.out, "%s (%s)\n", records[0].FullName, records[0].StudentNumber)
	cli.renderLedger(records)
	return nil
}

func (cli *commandLine) importLedger(ctx context.Context, studentNumber, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening ledger file")
	}
	defer func() { _ = f.Close() }()

	tbl, err := table.Decode(filepath.Base(path), f)
	if err != nil {
		return err
	}
	var records []ledger.Record
	err = cli.withLedger(ctx, func(svc LedgerService) (err error) {
		records, err = svc.Import(ctx, studentNumber, tbl)
		return err
	})
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(cli.out, "%d rows imported for student %s.\n", tbl.Len(), studentNumber)
	cli.renderLedger(records)
	return nil
}

func (cli *commandLine) renderLedger(records []ledger.Record) {
	atRisk := color.New(color.FgRed, color.Bold).SprintFunc()
	notAtRisk := color.New(color.FgGreen).SprintFunc()

	tw := tablewriter.NewWriter(cli.out)
	tw.SetHeader(ledgerHeader)
	tw.SetAutoFormatHeaders(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	if w := termWidthFunc(); w > 0 {
		tw.SetColWidth(w / len(ledgerHeader))
	}

	for _, r := range records {
		feedback := string(r.Feedback)
		if r.Feedback == ledger.AtRisk {
			feedback = atRisk(feedback)
		} else {
			feedback = notAtRisk(feedback)
		}
		tw.Append([]string{
			r.ModuleName,
			r.Type,
			strconv.Itoa(r.Number),
			strconv.FormatFloat(r.Score, 'f', -1, 64),
			strconv.FormatFloat(r.AVG, 'f', 1, 64),
			feedback,
		})
	}
	tw.Render()
}
