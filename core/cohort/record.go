package cohort

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-insights/core"
	"github.com/trezcool/masomo-insights/core/scoring"
	"github.com/trezcool/masomo-insights/core/table"
)

var (
	// UploadColumns is the exact header of a cohort upload.
	UploadColumns = []string{
		"Student_ID", "First_Name", "Last_Name", "Email", "Gender", "Age", "Department", "Attendance (%)",
		"Midterm_Score", "Final_Score", "Assignments_Avg", "Quizzes_Avg", "Participation_Score", "Projects_Score",
		"Total_Score", "Grade", "Study_Hours_per_Week", "Extracurricular_Activities", "Internet_Access_at_Home",
		"Parent_Education_Level", "Family_Income_Level", "Stress_Level (1-10)", "Sleep_Hours_per_Night",
		"Total_Score_Recalculated",
	}

	// InsightColumns must all be present in an insights upload; other columns are ignored.
	InsightColumns = []string{
		"Student_ID", "First_Name", "Last_Name", "Department", "Age", "Gender", "Study_Hours_per_Week",
		"Stress_Level (1-10)", "Sleep_Hours_per_Night", "Participation_Score", "Projects_Score", "Attendance (%)",
		"Midterm_Score", "Final_Score", "Quizzes_Avg", "Assignments_Avg", "Grade", "Internet_Access_at_Home",
		"Extracurricular_Activities", "Parent_Education_Level", "Family_Income_Level",
	}

	// SkillColumns are compared in per-student insights.
	SkillColumns = []string{
		"Midterm_Score", "Final_Score", "Assignments_Avg", "Quizzes_Avg", "Participation_Score", "Projects_Score",
	}

	errInvalidRows = errors.New("invalid cohort rows")
	errNoRows      = errors.New("the uploaded file has no data rows")
)

// Record is one student row of a cohort table, plus the columns derived from it.
type Record struct {
	StudentID                 string   `json:"Student_ID"`
	FirstName                 string   `json:"First_Name"`
	LastName                  string   `json:"Last_Name"`
	Email                     string   `json:"Email,omitempty"`
	Gender                    string   `json:"Gender"`
	Age                       float64  `json:"Age"`
	Department                string   `json:"Department"`
	Attendance                float64  `json:"Attendance (%)"`
	MidtermScore              float64  `json:"Midterm_Score"`
	FinalScore                float64  `json:"Final_Score"`
	AssignmentsAvg            float64  `json:"Assignments_Avg"`
	QuizzesAvg                float64  `json:"Quizzes_Avg"`
	ParticipationScore        float64  `json:"Participation_Score"`
	ProjectsScore             float64  `json:"Projects_Score"`
	TotalScore                *float64 `json:"Total_Score,omitempty"`
	Grade                     string   `json:"Grade"`
	StudyHoursPerWeek         float64  `json:"Study_Hours_per_Week"`
	ExtracurricularActivities string   `json:"Extracurricular_Activities"`
	InternetAccessAtHome      string   `json:"Internet_Access_at_Home"`
	ParentEducationLevel      string   `json:"Parent_Education_Level"`
	FamilyIncomeLevel         string   `json:"Family_Income_Level"`
	StressLevel               float64  `json:"Stress_Level (1-10)"`
	SleepHoursPerNight        float64  `json:"Sleep_Hours_per_Night"`
	TotalScoreRecalculated    *float64 `json:"Total_Score_Recalculated,omitempty"`

	PredictedScore     *float64 `json:"Predicted_Score,omitempty"`
	RiskLevel          string   `json:"Risk_Level,omitempty"`
	ComparedToClassAvg string   `json:"Compared_to_Class_Avg,omitempty"`
	ImprovementRoadmap []string `json:"Improvement_Roadmap,omitempty"`
}

type (
	textField   func(r *Record) *string
	numberField func(r *Record) *float64
	optionField func(r *Record) **float64
)

var textFields = map[string]textField{
	"Student_ID":                 func(r *Record) *string { return &r.StudentID },
	"First_Name":                 func(r *Record) *string { return &r.FirstName },
	"Last_Name":                  func(r *Record) *string { return &r.LastName },
	"Email":                      func(r *Record) *string { return &r.Email },
	"Gender":                     func(r *Record) *string { return &r.Gender },
	"Department":                 func(r *Record) *string { return &r.Department },
	"Grade":                      func(r *Record) *string { return &r.Grade },
	"Extracurricular_Activities": func(r *Record) *string { return &r.ExtracurricularActivities },
	"Internet_Access_at_Home":    func(r *Record) *string { return &r.InternetAccessAtHome },
	"Parent_Education_Level":     func(r *Record) *string { return &r.ParentEducationLevel },
	"Family_Income_Level":        func(r *Record) *string { return &r.FamilyIncomeLevel },
}

var numberFields = map[string]numberField{
	"Age":                   func(r *Record) *float64 { return &r.Age },
	"Attendance (%)":        func(r *Record) *float64 { return &r.Attendance },
	"Midterm_Score":         func(r *Record) *float64 { return &r.MidtermScore },
	"Final_Score":           func(r *Record) *float64 { return &r.FinalScore },
	"Assignments_Avg":       func(r *Record) *float64 { return &r.AssignmentsAvg },
	"Quizzes_Avg":           func(r *Record) *float64 { return &r.QuizzesAvg },
	"Participation_Score":   func(r *Record) *float64 { return &r.ParticipationScore },
	"Projects_Score":        func(r *Record) *float64 { return &r.ProjectsScore },
	"Study_Hours_per_Week":  func(r *Record) *float64 { return &r.StudyHoursPerWeek },
	"Stress_Level (1-10)":   func(r *Record) *float64 { return &r.StressLevel },
	"Sleep_Hours_per_Night": func(r *Record) *float64 { return &r.SleepHoursPerNight },
}

var optionFields = map[string]optionField{
	"Total_Score":              func(r *Record) **float64 { return &r.TotalScore },
	"Total_Score_Recalculated": func(r *Record) **float64 { return &r.TotalScoreRecalculated },
	"Predicted_Score":          func(r *Record) **float64 { return &r.PredictedScore },
}

// Number returns the numeric column of r called column; false when r has no such column or no value for it.
func (r Record) Number(column string) (float64, bool) {
	if fld, ok := numberFields[column]; ok {
		return *fld(&r), true
	}
	if fld, ok := optionFields[column]; ok {
		if v := *fld(&r); v != nil {
			return *v, true
		}
	}
	return 0, false
}

// IsNumberColumn reports whether column names a numeric column.
func IsNumberColumn(column string) bool {
	_, num := numberFields[column]
	_, opt := optionFields[column]
	return num || opt
}

// Features converts r into a model input row.
func (r Record) Features() scoring.Features {
	return scoring.Features{
		Age:                       r.Age,
		Attendance:                r.Attendance,
		MidtermScore:              r.MidtermScore,
		FinalScore:                r.FinalScore,
		AssignmentsAvg:            r.AssignmentsAvg,
		QuizzesAvg:                r.QuizzesAvg,
		ParticipationScore:        r.ParticipationScore,
		ProjectsScore:             r.ProjectsScore,
		StudyHoursPerWeek:         r.StudyHoursPerWeek,
		StressLevel:               r.StressLevel,
		SleepHoursPerNight:        r.SleepHoursPerNight,
		Gender:                    r.Gender,
		Department:                r.Department,
		ExtracurricularActivities: r.ExtracurricularActivities,
		InternetAccessAtHome:      r.InternetAccessAtHome,
		ParentEducationLevel:      r.ParentEducationLevel,
		FamilyIncomeLevel:         r.FamilyIncomeLevel,
		Grade:                     r.Grade,
	}
}

func (r Record) clone() Record {
	c := r
	for _, fld := range optionFields {
		if v := *fld(&r); v != nil {
			f := *v
			*fld(&c) = &f
		}
	}
	if r.ImprovementRoadmap != nil {
		c.ImprovementRoadmap = append([]string{}, r.ImprovementRoadmap...)
	}
	return c
}

func cloneRecords(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.clone()
	}
	return out
}

// Parse converts the rows of tbl into records. Columns without a record field are ignored.
// Every invalid cell is reported in the returned *core.ValidationError.
func Parse(tbl table.Table) ([]Record, error) {
	if tbl.Len() == 0 {
		return nil, core.NewValidationError(errNoRows)
	}

	var fldErrs []core.FieldError
	records := make([]Record, tbl.Len())
	for i := range records {
		line := i + 2 // 1-based, after the header
		r := &records[i]
		for _, col := range tbl.Columns {
			if fld, ok := textFields[col]; ok {
				*fld(r) = tbl.Value(i, col)
				continue
			}
			numFld, isNum := numberFields[col]
			optFld, isOpt := optionFields[col]
			if !isNum && !isOpt {
				continue
			}
			v, err := tbl.Float(i, col)
			if err != nil {
				fldErrs = append(fldErrs, core.FieldError{Field: fmt.Sprintf("row %d: %s", line, col), Error: err.Error()})
				continue
			}
			if isNum {
				*numFld(r) = v
			} else {
				*optFld(r) = &v
			}
		}
		if r.StudentID == "" {
			fldErrs = append(fldErrs, core.FieldError{Field: fmt.Sprintf("row %d: Student_ID", line), Error: "this field is required"})
		}
	}
	if len(fldErrs) > 0 {
		return nil, core.NewValidationError(errInvalidRows, fldErrs...)
	}
	return records, nil
}
