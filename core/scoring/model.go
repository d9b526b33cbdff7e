package scoring

import (
	"math"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"gonum.org/v1/gonum/mat"
)

// LinearModel is the exported form of the trained pipeline: standard-scaled numeric features and
// one-hot encoded categorical features feeding a linear regressor.
//
// Artifact layout:
//
//	{
//	  "intercept": 62.4,
//	  "numeric": [{"name": "Final_Score", "mean": 70.1, "scale": 17.2, "coef": 8.9}],
//	  "categorical": [{"name": "Grade", "levels": {"B": -3.2, "C": -7.5}}]
//	}
//
// Categorical levels missing from the artifact (e.g. the dropped first level, or unseen values) weigh zero.
type LinearModel struct {
	intercept   float64
	numeric     []numericTerm
	categorical []categoricalTerm
	weights     []float64 // numeric coefs, then one weight per categorical level
}

type numericTerm struct {
	name  string
	mean  float64
	scale float64
}

type categoricalTerm struct {
	name   string
	levels []string
}

var _ Model = (*LinearModel)(nil)

func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading model artifact")
	}
	return ParseLinearModel(data)
}

func ParseLinearModel(data []byte) (*LinearModel, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("model artifact is not valid JSON")
	}
	doc := gjson.ParseBytes(data)

	intercept := doc.Get("intercept")
	if intercept.Type != gjson.Number {
		return nil, errors.New("model artifact: intercept must be a number")
	}
	m := &LinearModel{intercept: intercept.Float()}

	var err error
	var probe Features
	doc.Get("numeric").ForEach(func(_, term gjson.Result) bool {
		name := term.Get("name").String()
		if _, ok := probe.Number(name); !ok {
			err = errors.Errorf("model artifact: unknown numeric feature %q", name)
			return false
		}
		scale := 1.0
		if s := term.Get("scale"); s.Exists() {
			scale = s.Float()
		}
		if scale == 0 {
			err = errors.Errorf("model artifact: feature %q has a zero scale", name)
			return false
		}
		m.numeric = append(m.numeric, numericTerm{name: name, mean: term.Get("mean").Float(), scale: scale})
		m.weights = append(m.weights, term.Get("coef").Float())
		return true
	})
	if err != nil {
		return nil, err
	}

	doc.Get("categorical").ForEach(func(_, term gjson.Result) bool {
		name := term.Get("name").String()
		if _, ok := probe.Category(name); !ok {
			err = errors.Errorf("model artifact: unknown categorical feature %q", name)
			return false
		}
		weights := make(map[string]float64)
		term.Get("levels").ForEach(func(level, weight gjson.Result) bool {
			weights[level.String()] = weight.Float()
			return true
		})
		levels := make([]string, 0, len(weights))
		for level := range weights {
			levels = append(levels, level)
		}
		sort.Strings(levels)
		for _, level := range levels {
			m.weights = append(m.weights, weights[level])
		}
		m.categorical = append(m.categorical, categoricalTerm{name: name, levels: levels})
		return true
	})
	if err != nil {
		return nil, err
	}

	if m.Width() == 0 {
		return nil, errors.New("model artifact has no features")
	}
	return m, nil
}

// Width is the number of encoded input columns.
func (m *LinearModel) Width() int {
	return len(m.weights)
}

// encode writes the scaled and one-hot encoded row of f into dst.
func (m *LinearModel) encode(f Features, dst []float64) {
	i := 0
	for _, term := range m.numeric {
		v, _ := f.Number(term.name)
		dst[i] = (v - term.mean) / term.scale
		i++
	}
	for _, term := range m.categorical {
		v, _ := f.Category(term.name)
		for _, level := range term.levels {
			if v == level {
				dst[i] = 1
			} else {
				dst[i] = 0
			}
			i++
		}
	}
}

func (m *LinearModel) Predict(rows []Features) ([]float64, error) {
	if len(rows) == 0 {
		return []float64{}, nil
	}
	k := m.Width()
	x := mat.NewDense(len(rows), k, nil)
	row := make([]float64, k)
	for i, f := range rows {
		m.encode(f, row)
		x.SetRow(i, row)
	}

	var y mat.VecDense
	y.MulVec(x, mat.NewVecDense(k, m.weights))

	preds := make([]float64, len(rows))
	for i := range preds {
		preds[i] = y.AtVec(i) + m.intercept
		if math.IsNaN(preds[i]) || math.IsInf(preds[i], 0) {
			return nil, errors.Errorf("row %d: prediction is not a finite number", i)
		}
	}
	return preds, nil
}
