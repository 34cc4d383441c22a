package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cianfru/aerowake/internal/airports"
	"github.com/cianfru/aerowake/internal/store"
	"github.com/cianfru/aerowake/pkg/models"
)

func testServer() *Server {
	return NewServer(zerolog.Nop(), airports.New(), store.NewMemory())
}

func rosterBody(persist bool) []byte {
	body := fmt.Sprintf(`{
		"pilot_id": "P1",
		"month": "2026-02",
		"home_base": "DOH",
		"persist": %t,
		"duties": [{
			"id": "D1",
			"date": "2026-02-01",
			"type": "flight",
			"report_utc": "2026-02-01T22:00:00Z",
			"release_utc": "2026-02-02T06:00:00Z",
			"segments": [{
				"flight_number": "QR007",
				"departure": "DOH",
				"arrival": "LHR",
				"departure_utc": "2026-02-01T23:00:00Z",
				"arrival_utc": "2026-02-02T05:30:00Z"
			}]
		}],
		"sleep_windows": [{
			"start_utc": "2026-02-01T12:00:00Z",
			"end_utc": "2026-02-01T20:00:00Z",
			"environment": "home",
			"location": "DOH"
		}]
	}`, persist)
	return []byte(body)
}

func doRequest(t *testing.T, s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

// ---------------------------------------------------------------------------
// Analysis endpoint
// ---------------------------------------------------------------------------

func TestAnalyzeHappyPath(t *testing.T) {
	s := testServer()
	rr := doRequest(t, s, "POST", "/api/v1/analyses", rosterBody(false))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Preset   string                 `json:"preset"`
		Analysis models.MonthlyAnalysis `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "default", resp.Preset)
	assert.Equal(t, "P1", resp.Analysis.PilotID)
	require.Len(t, resp.Analysis.Duties, 1)
	assert.NotEmpty(t, resp.Analysis.Duties[0].Points)
	assert.NotNil(t, resp.Analysis.Duties[0].LandingPerformance)
}

func TestAnalyzePersistAndFetch(t *testing.T) {
	s := testServer()
	rr := doRequest(t, s, "POST", "/api/v1/analyses", rosterBody(true))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var rec store.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	require.NotEmpty(t, rec.ID)

	rr = doRequest(t, s, "GET", "/api/v1/analyses/"+rec.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got store.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "P1", got.Analysis.PilotID)

	rr = doRequest(t, s, "GET", "/api/v1/analyses?pilot_id=P1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Count    int             `json:"count"`
		Analyses []store.Summary `json:"analyses"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
}

func TestGetDutyFromStoredAnalysis(t *testing.T) {
	s := testServer()
	rr := doRequest(t, s, "POST", "/api/v1/analyses", rosterBody(true))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var rec store.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))

	rr = doRequest(t, s, "GET", "/api/v1/analyses/"+rec.ID+"/duties/D1", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		AnalysisID string              `json:"analysis_id"`
		PilotID    string              `json:"pilot_id"`
		Duty       models.DutyTimeline `json:"duty"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, rec.ID, resp.AnalysisID)
	assert.Equal(t, "P1", resp.PilotID)
	assert.Equal(t, "D1", resp.Duty.DutyID)
	assert.NotEmpty(t, resp.Duty.Points)

	rr = doRequest(t, s, "GET", "/api/v1/analyses/"+rec.ID+"/duties/D9", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteAnalysis(t *testing.T) {
	s := testServer()
	rr := doRequest(t, s, "POST", "/api/v1/analyses", rosterBody(true))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var rec store.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))

	rr = doRequest(t, s, "DELETE", "/api/v1/analyses/"+rec.ID, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = doRequest(t, s, "GET", "/api/v1/analyses/"+rec.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doRequest(t, s, "DELETE", "/api/v1/analyses/"+rec.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	s := testServer()

	// Malformed JSON.
	rr := doRequest(t, s, "POST", "/api/v1/analyses", []byte("{nope"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Unknown airport code.
	bad := bytes.Replace(rosterBody(false), []byte(`"arrival": "LHR"`), []byte(`"arrival": "ZZZ"`), 1)
	rr = doRequest(t, s, "POST", "/api/v1/analyses", bad)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "ZZZ")

	// Unknown preset.
	bad = append([]byte(nil), rosterBody(false)...)
	bad = bytes.Replace(bad, []byte(`"pilot_id": "P1",`), []byte(`"pilot_id": "P1", "preset": "strictest",`), 1)
	rr = doRequest(t, s, "POST", "/api/v1/analyses", bad)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Empty duty list.
	rr = doRequest(t, s, "POST", "/api/v1/analyses",
		[]byte(`{"pilot_id":"P1","month":"2026-02","home_base":"DOH","duties":[]}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAnalysisNotFound(t *testing.T) {
	s := testServer()
	rr := doRequest(t, s, "GET", "/api/v1/analyses/4b8c0e9a-0000-0000-0000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListAnalysesRequiresPilot(t *testing.T) {
	s := testServer()
	rr := doRequest(t, s, "GET", "/api/v1/analyses", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// ---------------------------------------------------------------------------
// Airport endpoints
// ---------------------------------------------------------------------------

func TestAirportEndpoints(t *testing.T) {
	s := testServer()

	rr := doRequest(t, s, "GET", "/api/v1/airports", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Count    int              `json:"count"`
		Airports []models.Airport `json:"airports"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Greater(t, list.Count, 20)

	rr = doRequest(t, s, "POST", "/api/v1/airports",
		[]byte(`{"code":"ZRH","timezone":"Europe/Zurich","utc_offset_hours":1}`))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doRequest(t, s, "POST", "/api/v1/airports",
		[]byte(`{"code":"TOOLONG"}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// ---------------------------------------------------------------------------
// Operational endpoints
// ---------------------------------------------------------------------------

func TestHealthAndPresets(t *testing.T) {
	s := testServer()

	rr := doRequest(t, s, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"healthy"`)

	rr = doRequest(t, s, "GET", "/api/v1/presets", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	for _, p := range []string{"default", "conservative", "liberal", "research"} {
		assert.Contains(t, rr.Body.String(), p)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := testServer()
	rr := doRequest(t, s, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rr.Body.String(), "aerowake_http_requests_total")
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}
