package ledger

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// Risk feedback values.
const (
	AtRisk    Feedback = "At Risk"
	NotAtRisk Feedback = "Not at Risk"
)

var (
	// RequiredColumns must all be present in an uploaded ledger table.
	RequiredColumns = []string{"Full Name", "Module Name", "Type", "Number", "Score"}

	// SnapshotColumns are the fields of a stored Record, in order.
	SnapshotColumns = []string{"Student Number", "Full Name", "Module Name", "Type", "Number", "Score", "AVG", "Feedback"}
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

type (
	Feedback string

	// Record is one assessment result of a student.
	// A record is identified by (StudentNumber, ModuleName, Type, Number).
	Record struct {
		StudentNumber string   `json:"Student Number"`
		FullName      string   `json:"Full Name"`
		ModuleName    string   `json:"Module Name"`
		Type          string   `json:"Type"`
		Number        int      `json:"Number"`
		Score         float64  `json:"Score"`
		AVG           float64  `json:"AVG"`
		Feedback      Feedback `json:"Feedback"`
	}

	identity struct {
		student string
		module  string
		typ     string
		number  int
	}

	group struct {
		student string
		module  string
		typ     string
	}

	// importRow is an uploaded ledger row before conversion.
	importRow struct {
		FullName   string `json:"Full Name"`
		ModuleName string `json:"Module Name" validate:"required"`
		Type       string `json:"Type" validate:"required"`
		Number     string `json:"Number" validate:"required,integral"`
		Score      string `json:"Score" validate:"required,numeric"`
	}
)

func (r Record) identity() identity {
	return identity{student: r.StudentNumber, module: r.ModuleName, typ: r.Type, number: r.Number}
}

func (r Record) group() group {
	return group{student: r.StudentNumber, module: r.ModuleName, typ: r.Type}
}

// SnapshotKey returns the storage key of a student's ledger: every character outside [A-Za-z0-9._-] becomes "_".
func SnapshotKey(studentNumber string) string {
	return unsafeKeyChars.ReplaceAllString(studentNumber, "_")
}

func round(f float64, places int32) float64 {
	return decimal.NewFromFloat(f).Round(places).InexactFloat64()
}
