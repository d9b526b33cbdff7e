package tests

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/masomo-insights/apps/api/echo"
	"github.com/trezcool/masomo-insights/core"
	"github.com/trezcool/masomo-insights/core/chart"
	"github.com/trezcool/masomo-insights/core/cohort"
	"github.com/trezcool/masomo-insights/core/ledger"
	"github.com/trezcool/masomo-insights/core/scoring"
	inmemdb "github.com/trezcool/masomo-insights/storage/database/inmem"
	testutil "github.com/trezcool/masomo-insights/tests"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// finalScoreModel predicts each row's Final_Score.
type finalScoreModel struct{}

func (finalScoreModel) Predict(rows []scoring.Features) ([]float64, error) {
	preds := make([]float64, len(rows))
	for i, r := range rows {
		preds[i] = r.FinalScore
	}
	return preds, nil
}

// setup returns a server backed by in-memory storage. The scorer is unavailable unless withModel is set.
func setup(t *testing.T, withModel bool) *Server {
	t.Helper()
	conf := testutil.TestConfig()
	logger := nopLogger{}
	validator := core.NewValidator()

	var model scoring.Model
	if withModel {
		model = finalScoreModel{}
	}
	scorer := scoring.NewScorer(model)

	server := NewServer(
		ServerDeps{
			Conf:      conf,
			Logger:    logger,
			Validator: validator,
			LedgerSvc: ledger.NewService(inmemdb.NewLedgerRepository(inmemdb.Open()), validator, conf),
			CohortSvc: cohort.NewService(cohort.NewStore(), scorer, logger, conf),
			Scorer:    scorer,
			Charts:    chart.NewStore(),
		},
	)
	t.Cleanup(func() { _ = server.Close() })
	return server
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData string
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	return req, httptest.NewRecorder()
}

// newUploadRequest posts filename as the multipart "file" field, along with the given form fields.
func newUploadRequest(t *testing.T, path, filename string, content []byte, fields map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req, httptest.NewRecorder()
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decodeBody() failed: %v; body %s", err, rec.Body.String())
	}
	return body
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData != "" {
		assert.JSONEq(t, tt.wantData, rec.Body.String())
	}
}

func runHTTPTests(t *testing.T, server *Server, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
