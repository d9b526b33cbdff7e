package tests

import (
	"net/http"
	"testing"
)

func Test_analyticsApi(t *testing.T) {
	server := setup(t, false)

	points := `[{"x": 1, "y": 92.5, "date": "2024-03-01"}, {"x": 0, "y": 0, "date": "2024-03-02"}]`

	runHTTPTests(t, server, []httpTest{
		{
			name:     "attendance empty",
			method:   http.MethodGet,
			path:     "/v1/analytics/attendance",
			wantCode: http.StatusOK,
			wantData: `[]`,
		},
		{
			name:     "save attendance",
			method:   http.MethodPost,
			path:     "/v1/analytics/attendance",
			body:     []byte(points),
			wantCode: http.StatusOK,
			wantData: `{"status": "success", "message": "Attendance saved"}`,
		},
		{
			name:     "get attendance",
			method:   http.MethodGet,
			path:     "/v1/analytics/attendance",
			wantCode: http.StatusOK,
			wantData: points,
		},
		{
			name:     "performance is a separate series",
			method:   http.MethodGet,
			path:     "/v1/analytics/performance",
			wantCode: http.StatusOK,
			wantData: `[]`,
		},
		{
			name:     "save performance",
			method:   http.MethodPost,
			path:     "/v1/analytics/performance",
			body:     []byte(`[{"x": 3, "y": 4, "date": "2024-03-03"}]`),
			wantCode: http.StatusOK,
			wantData: `{"status": "success", "message": "Performance saved"}`,
		},
		{
			name:     "invalid point",
			method:   http.MethodPost,
			path:     "/v1/analytics/performance",
			body:     []byte(`[{"x": 3, "y": 4, "date": "2024-03-03"}, {"x": 5, "y": 6}]`),
			wantCode: http.StatusBadRequest,
			wantData: `{"kind": "validation_error", "error": "invalid data points", "fields": {"1.date": "this field is required"}}`,
		},
		{
			name:     "invalid point does not replace the series",
			method:   http.MethodGet,
			path:     "/v1/analytics/performance",
			wantCode: http.StatusOK,
			wantData: `[{"x": 3, "y": 4, "date": "2024-03-03"}]`,
		},
		{
			name:     "not an array",
			method:   http.MethodPost,
			path:     "/v1/analytics/attendance",
			body:     []byte(`{"x": 1}`),
			wantCode: http.StatusBadRequest,
		},
	})
}
