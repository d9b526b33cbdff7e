// Package scoring predicts a student's total score with a pre-trained regression model.
// The model is optional: without one, every prediction fails with core.ModelUnavailableError.
package scoring

import (
	"os"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/masomo-insights/core"
)

// Model scores a batch of feature rows, one prediction per row.
type Model interface {
	Predict(rows []Features) ([]float64, error)
}

type Scorer struct {
	model Model
}

// NewScorer wraps model; a nil model makes an unavailable scorer.
func NewScorer(model Model) *Scorer {
	return &Scorer{model: model}
}

// LoadScorer loads the model artifact at path. A missing or invalid artifact is logged
// and yields an unavailable scorer: the service still runs, without predictions.
func LoadScorer(path string, logger core.Logger) *Scorer {
	if path == "" {
		logger.Warn("no model configured, predictions are disabled")
		return NewScorer(nil)
	}
	model, err := LoadLinearModel(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("model not found, predictions are disabled", map[string]interface{}{"path": path})
		} else {
			logger.Error("could not load model, predictions are disabled", err, map[string]interface{}{"path": path})
		}
		return NewScorer(nil)
	}
	logger.Info("model loaded", map[string]interface{}{"path": path, "features": model.Width()})
	return NewScorer(model)
}

func (s *Scorer) Available() bool {
	return s != nil && s.model != nil
}

func (s *Scorer) Predict(rows []Features) ([]float64, error) {
	if !s.Available() {
		return nil, &core.ModelUnavailableError{}
	}
	if len(rows) == 0 {
		return []float64{}, nil
	}
	preds, err := s.model.Predict(rows)
	if err != nil {
		return nil, &core.PredictionError{Err: err}
	}
	if len(preds) != len(rows) {
		return nil, &core.PredictionError{Err: errors.Errorf("model returned %d predictions for %d rows", len(preds), len(rows))}
	}
	return preds, nil
}

func (s *Scorer) PredictOne(f Features) (float64, error) {
	preds, err := s.Predict([]Features{f})
	if err != nil {
		return 0, err
	}
	return preds[0], nil
}

// Prediction is the answer to a single prediction request.
type Prediction struct {
	PredictedScore float64  `json:"predicted_score"`
	Feedback       []string `json:"feedback"`
}

// Advice builds the feedback given along with a single prediction.
func Advice(f Features, prediction float64, rules core.RoadmapConfig) Prediction {
	var advice []string
	if f.Attendance < rules.AttendanceMin {
		advice = append(advice, "Your attendance is below average. Try to attend more classes.")
	}
	if f.StudyHoursPerWeek < rules.StudyHoursMin {
		advice = append(advice, "Consider increasing your study hours to improve your score.")
	}
	if prediction < rules.ScoreMin {
		advice = append(advice, "You are currently at risk. Seek additional help and support.")
	} else {
		advice = append(advice, "Keep up the good work!")
	}
	return Prediction{
		PredictedScore: decimal.NewFromFloat(prediction).Round(2).InexactFloat64(),
		Feedback:       advice,
	}
}
