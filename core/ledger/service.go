// Package ledger keeps the assessment ledger of every student: one snapshot per student,
// merged and recomputed on every upload.
package ledger

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-insights/core"
	"github.com/trezcool/masomo-insights/core/table"
)

var (
	errInvalidRows = errors.New("invalid ledger rows")
	errNoRows      = errors.New("the uploaded file has no data rows")
)

type (
	// Repository persists ledger snapshots by key (see SnapshotKey).
	// Saving must replace the whole snapshot, or leave the previous one untouched on failure.
	Repository interface {
		// LoadLedger returns nil, nil when no snapshot exists under key.
		LoadLedger(ctx context.Context, key string) ([]Record, error)
		SaveLedger(ctx context.Context, key string, records []Record) error
	}

	Service struct {
		repo          Repository
		validator     *core.Validator
		riskThreshold float64
		locks         *keyedMutex
	}
)

func NewService(repo Repository, validator *core.Validator, conf *core.Config) *Service {
	return &Service{
		repo:          repo,
		validator:     validator,
		riskThreshold: conf.Ledger.RiskThreshold,
		locks:         newKeyedMutex(),
	}
}

func requireStudentNumber(studentNumber string) (string, error) {
	studentNumber = core.CleanString(studentNumber)
	if studentNumber == "" {
		return "", core.NewValidationError(
			errors.New("student number is required"),
			core.FieldError{Field: "student_number", Error: "this field is required"},
		)
	}
	return studentNumber, nil
}

// Get returns the ledger of a student; empty when the student has none.
func (svc *Service) Get(ctx context.Context, studentNumber string) ([]Record, error) {
	studentNumber, err := requireStudentNumber(studentNumber)
	if err != nil {
		return nil, err
	}
	key := SnapshotKey(studentNumber)
	records, err := svc.repo.LoadLedger(ctx, key)
	if err != nil {
		return nil, &core.StorageError{Op: "load", Key: key, Err: err}
	}
	return ownRecords(records, studentNumber), nil
}

// ownRecords keeps the records of studentNumber: distinct student numbers may share a snapshot key.
func ownRecords(records []Record, studentNumber string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.StudentNumber == studentNumber {
			out = append(out, r)
		}
	}
	return out
}

// Merge adds incoming records to the student's ledger, replacing records with the same identity,
// recomputes running averages and feedback, and saves the result.
// Incoming records are attributed to studentNumber. On any error the stored ledger is left untouched.
func (svc *Service) Merge(ctx context.Context, studentNumber string, incoming []Record) ([]Record, error) {
	studentNumber, err := requireStudentNumber(studentNumber)
	if err != nil {
		return nil, err
	}
	key := SnapshotKey(studentNumber)

	unlock := svc.locks.Lock(key)
	defer unlock()

	if err = ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "merging ledger")
	}

	existing, err := svc.repo.LoadLedger(ctx, key)
	if err != nil {
		return nil, &core.StorageError{Op: "load", Key: key, Err: err}
	}

	all := make([]Record, 0, len(existing)+len(incoming))
	all = append(all, existing...)
	for _, r := range incoming {
		r.StudentNumber = studentNumber
		all = append(all, r)
	}
	merged := Recompute(all, svc.riskThreshold)

	if err = svc.repo.SaveLedger(ctx, key, merged); err != nil {
		return nil, &core.StorageError{Op: "save", Key: key, Err: err}
	}
	return ownRecords(merged, studentNumber), nil
}

// Import validates an uploaded ledger table and merges its rows into the student's ledger.
// Nothing is written when the table is invalid or has no rows.
func (svc *Service) Import(ctx context.Context, studentNumber string, tbl table.Table) ([]Record, error) {
	if _, err := requireStudentNumber(studentNumber); err != nil {
		return nil, err
	}
	if err := table.RequireColumns(tbl.Columns, RequiredColumns); err != nil {
		return nil, err
	}
	if tbl.Len() == 0 {
		return nil, core.NewValidationError(errNoRows)
	}
	records, err := svc.parseRows(tbl)
	if err != nil {
		return nil, err
	}
	return svc.Merge(ctx, studentNumber, records)
}

func (svc *Service) parseRows(tbl table.Table) ([]Record, error) {
	var fldErrs []core.FieldError
	records := make([]Record, 0, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		row := importRow{
			FullName:   tbl.Value(i, "Full Name"),
			ModuleName: tbl.Value(i, "Module Name"),
			Type:       tbl.Value(i, "Type"),
			Number:     tbl.Value(i, "Number"),
			Score:      tbl.Value(i, "Score"),
		}
		line := i + 2 // 1-based, after the header

		if err := svc.validator.Validate(row); err != nil {
			var vErr *core.ValidationError
			if !errors.As(err, &vErr) {
				return nil, err
			}
			for _, f := range vErr.Fields {
				fldErrs = append(fldErrs, core.FieldError{Field: fmt.Sprintf("row %d: %s", line, f.Field), Error: f.Error})
			}
			continue
		}

		number, _ := strconv.ParseFloat(row.Number, 64)
		score, _ := strconv.ParseFloat(row.Score, 64)
		records = append(records, Record{
			FullName:   row.FullName,
			ModuleName: row.ModuleName,
			Type:       row.Type,
			Number:     int(math.Round(number)),
			Score:      score,
		})
	}
	if len(fldErrs) > 0 {
		return nil, core.NewValidationError(errInvalidRows, fldErrs...)
	}
	return records, nil
}
