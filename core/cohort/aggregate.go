package cohort

import (
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/trezcool/masomo-insights/core"
	"github.com/trezcool/masomo-insights/core/scoring"
)

// Risk levels and class comparisons attached to predicted records.
const (
	RiskAtRisk    = "At Risk"
	RiskNotAtRisk = "Not At Risk"

	AboveAverage = "Above Average"
	BelowAverage = "Below Average"
	Average      = "Average"
)

type (
	Summary struct {
		AverageScore   float64 `json:"average_score"`
		AtRiskStudents int     `json:"at_risk_students"`
	}

	Insight struct {
		StudentID              string             `json:"student_id"`
		StudentScores          map[string]float64 `json:"student_scores"`
		ClassAverages          map[string]float64 `json:"class_averages"`
		TopPerformerAverages   map[string]float64 `json:"top_performer_averages"`
		ImprovementPercentages map[string]float64 `json:"improvement_percentages"`
	}

	// Predictor scores feature rows in one batch.
	Predictor interface {
		Predict(rows []scoring.Features) ([]float64, error)
	}
)

func round(f float64, places int32) float64 {
	return decimal.NewFromFloat(f).Round(places).InexactFloat64()
}

func column(records []Record, name string) ([]float64, error) {
	values := make([]float64, len(records))
	for i, r := range records {
		v, ok := r.Number(name)
		if !ok {
			return nil, &core.SchemaError{Missing: []string{name}}
		}
		values[i] = v
	}
	return values, nil
}

// Summarize averages scoreColumn (rounded to 2 decimals) and counts the rows scoring below riskThreshold.
func Summarize(records []Record, scoreColumn string, riskThreshold float64) (Summary, error) {
	if !IsNumberColumn(scoreColumn) {
		return Summary{}, &core.SchemaError{Missing: []string{scoreColumn}}
	}
	if len(records) == 0 {
		return Summary{}, core.NewNotFoundError("No data uploaded yet.")
	}
	scores, err := column(records, scoreColumn)
	if err != nil {
		return Summary{}, err
	}

	var atRisk int
	for _, s := range scores {
		if s < riskThreshold {
			atRisk++
		}
	}
	return Summary{
		AverageScore:   round(stat.Mean(scores, nil), 2),
		AtRiskStudents: atRisk,
	}, nil
}

// Quantile returns the q-quantile of values by linear interpolation between closest ranks
// (Hyndman & Fan type 7): h = (n-1)q, Q = x[floor(h)] + (h - floor(h)) (x[floor(h)+1] - x[floor(h)]).
// values need not be sorted; NaN is returned for an empty slice.
func Quantile(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	x := append(make([]float64, 0, n), values...)
	sort.Float64s(x)

	q = math.Min(math.Max(q, 0), 1)
	h := float64(n-1) * q
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return x[n-1]
	}
	return x[lo] + (h-float64(lo))*(x[lo+1]-x[lo])
}

// means returns the per-skill means of records, rounded to 2 decimals.
func means(records []Record) map[string]float64 {
	out := make(map[string]float64, len(SkillColumns))
	for _, col := range SkillColumns {
		values, _ := column(records, col)
		out[col] = round(stat.Mean(values, nil), 2)
	}
	return out
}

// StudentInsight compares a student's skill scores with the class and with the top performers: the rows whose
// Final_Score reaches the percentile-quantile of Final_Score.
// Improvement percentages are omitted for skills whose top performer average is 0.
func StudentInsight(records []Record, studentID string, percentile float64) (Insight, error) {
	if len(records) == 0 {
		return Insight{}, core.NewNotFoundError("No data uploaded yet.")
	}
	studentID = strings.TrimSpace(studentID)
	idx := -1
	for i, r := range records {
		if r.StudentID == studentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Insight{}, core.NewNotFoundError("Student not found.")
	}

	student := make(map[string]float64, len(SkillColumns))
	for _, col := range SkillColumns {
		student[col], _ = records[idx].Number(col)
	}

	finals, _ := column(records, "Final_Score")
	threshold := Quantile(finals, percentile)
	top := make([]Record, 0, len(records))
	for _, r := range records {
		if r.FinalScore >= threshold {
			top = append(top, r)
		}
	}
	topAvgs := means(top)

	improvement := make(map[string]float64, len(SkillColumns))
	for _, col := range SkillColumns {
		if topAvgs[col] == 0 {
			continue
		}
		improvement[col] = round(student[col]/topAvgs[col]*100, 1)
	}

	return Insight{
		StudentID:              studentID,
		StudentScores:          student,
		ClassAverages:          means(records),
		TopPerformerAverages:   topAvgs,
		ImprovementPercentages: improvement,
	}, nil
}

// AttachPredictions scores all records in one call and returns copies carrying the predicted score,
// its risk level and the comparison of the Final_Score with the class average (ties are "Average").
func AttachPredictions(records []Record, predictor Predictor, riskThreshold float64) ([]Record, error) {
	rows := make([]scoring.Features, len(records))
	for i, r := range records {
		rows[i] = r.Features()
	}
	preds, err := predictor.Predict(rows)
	if err != nil {
		return nil, err
	}
	if len(preds) != len(records) {
		return nil, &core.PredictionError{Err: errors.Errorf("got %d predictions for %d records", len(preds), len(records))}
	}

	out := cloneRecords(records)
	if len(out) == 0 {
		return out, nil
	}
	finals, _ := column(out, "Final_Score")
	classAvg := stat.Mean(finals, nil)

	for i := range out {
		pred := preds[i]
		out[i].PredictedScore = &pred
		if pred < riskThreshold {
			out[i].RiskLevel = RiskAtRisk
		} else {
			out[i].RiskLevel = RiskNotAtRisk
		}
		switch {
		case out[i].FinalScore > classAvg:
			out[i].ComparedToClassAvg = AboveAverage
		case out[i].FinalScore < classAvg:
			out[i].ComparedToClassAvg = BelowAverage
		default:
			out[i].ComparedToClassAvg = Average
		}
	}
	return out, nil
}

// Roadmap lists improvement tips for r. The predicted score is used when r has one, its Final_Score otherwise.
func Roadmap(r Record, rules core.RoadmapConfig) []string {
	var tips []string
	if r.Attendance < rules.AttendanceMin {
		tips = append(tips, "Improve class attendance.")
	}
	if r.StudyHoursPerWeek < rules.StudyHoursMin {
		tips = append(tips, "Increase study hours.")
	}
	score := r.FinalScore
	if r.PredictedScore != nil {
		score = *r.PredictedScore
	}
	if score < rules.ScoreMin {
		tips = append(tips, "Seek academic support.")
	}
	if len(tips) == 0 {
		tips = append(tips, "Maintain current effort and stay consistent.")
	}
	return tips
}
