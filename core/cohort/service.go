// Package cohort aggregates the latest uploaded cohort table: class summary, per-student insights,
// predictions and improvement roadmaps.
package cohort

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-insights/core"
	"github.com/trezcool/masomo-insights/core/table"
)

const (
	msgUploaded          = "File uploaded successfully."
	msgUploadedPredicted = "File uploaded and predictions generated successfully."
)

type (
	// Scorer is an optional prediction model.
	Scorer interface {
		Predictor
		Available() bool
	}

	Service struct {
		store  *Store
		scorer Scorer
		logger core.Logger
		conf   core.CohortConfig
		rules  core.RoadmapConfig
	}

	UploadResult struct {
		Message   string `json:"message"`
		Rows      int    `json:"rows"`
		Columns   int    `json:"columns"`
		UploadID  string `json:"upload_id"`
		Predicted bool   `json:"predicted"`
	}

	StudentRoadmap struct {
		StudentID          string   `json:"Student_ID"`
		FirstName          string   `json:"First_Name"`
		LastName           string   `json:"Last_Name"`
		PredictedScore     float64  `json:"Predicted_Score"`
		ComparedToClassAvg string   `json:"Compared_to_Class_Avg"`
		ImprovementRoadmap []string `json:"Improvement_Roadmap"`
	}

	InsightsResult struct {
		Department string           `json:"department"`
		Modules    []string         `json:"modules"`
		Insights   []StudentRoadmap `json:"insights"`
	}
)

func NewService(store *Store, scorer Scorer, logger core.Logger, conf *core.Config) *Service {
	return &Service{
		store:  store,
		scorer: scorer,
		logger: logger,
		conf:   conf.Cohort,
		rules:  conf.Roadmap,
	}
}

// Upload validates a cohort table against the exact upload header and makes it the current cohort.
// Predictions are attached when a model is available; a failing model rejects the upload.
func (svc *Service) Upload(ctx context.Context, filename string, tbl table.Table) (UploadResult, error) {
	if err := table.RequireExactColumns(tbl.Columns, UploadColumns); err != nil {
		return UploadResult{}, err
	}
	records, err := Parse(tbl)
	if err != nil {
		return UploadResult{}, err
	}

	predicted := svc.scorer != nil && svc.scorer.Available()
	if predicted {
		if records, err = AttachPredictions(records, svc.scorer, svc.conf.RiskThreshold); err != nil {
			return UploadResult{}, errors.Wrap(err, "attaching predictions")
		}
	} else {
		svc.logger.Warn("model unavailable, cohort stored without predictions", map[string]interface{}{"filename": filename})
	}

	if err = ctx.Err(); err != nil {
		return UploadResult{}, errors.Wrap(err, "uploading cohort")
	}
	snap := svc.store.Replace(filename, records)

	msg := msgUploaded
	if predicted {
		msg = msgUploadedPredicted
	}
	return UploadResult{
		Message:   msg,
		Rows:      len(records),
		Columns:   len(tbl.Columns),
		UploadID:  snap.ID.String(),
		Predicted: predicted,
	}, nil
}

// UploadInsights scores an insights table, builds a roadmap for every student and makes it the current cohort.
// The department of the first row selects the modules reported.
func (svc *Service) UploadInsights(ctx context.Context, filename string, tbl table.Table) (InsightsResult, error) {
	if err := table.RequireColumns(tbl.Columns, InsightColumns); err != nil {
		return InsightsResult{}, err
	}
	if svc.scorer == nil || !svc.scorer.Available() {
		return InsightsResult{}, &core.ModelUnavailableError{}
	}
	records, err := Parse(tbl)
	if err != nil {
		return InsightsResult{}, err
	}

	dept := records[0].Department
	modules, err := Modules(dept)
	if err != nil {
		return InsightsResult{}, err
	}

	if records, err = AttachPredictions(records, svc.scorer, svc.conf.RiskThreshold); err != nil {
		return InsightsResult{}, errors.Wrap(err, "attaching predictions")
	}
	insights := make([]StudentRoadmap, len(records))
	for i := range records {
		records[i].ImprovementRoadmap = Roadmap(records[i], svc.rules)
		insights[i] = StudentRoadmap{
			StudentID:          records[i].StudentID,
			FirstName:          records[i].FirstName,
			LastName:           records[i].LastName,
			PredictedScore:     *records[i].PredictedScore,
			ComparedToClassAvg: records[i].ComparedToClassAvg,
			ImprovementRoadmap: records[i].ImprovementRoadmap,
		}
	}

	if err = ctx.Err(); err != nil {
		return InsightsResult{}, errors.Wrap(err, "uploading insights")
	}
	svc.store.Replace(filename, records)

	return InsightsResult{Department: dept, Modules: modules, Insights: insights}, nil
}

func (svc *Service) current() ([]Record, error) {
	snap, ok := svc.store.Current()
	if !ok {
		return nil, core.NewNotFoundError("No data uploaded yet.")
	}
	return snap.Records, nil
}

// Summary summarizes the configured score column of the current cohort.
func (svc *Service) Summary() (Summary, error) {
	records, err := svc.current()
	if err != nil {
		return Summary{}, err
	}
	return Summarize(records, svc.conf.SummaryColumn, svc.conf.RiskThreshold)
}

// ChartsData returns the rows of the current cohort; empty when nothing was uploaded yet.
func (svc *Service) ChartsData() []Record {
	snap, ok := svc.store.Current()
	if !ok {
		return []Record{}
	}
	return snap.Records
}

// Insight compares a student of the current cohort with the class.
func (svc *Service) Insight(studentID string) (Insight, error) {
	records, err := svc.current()
	if err != nil {
		return Insight{}, err
	}
	return StudentInsight(records, studentID, svc.conf.TopPercentile)
}
