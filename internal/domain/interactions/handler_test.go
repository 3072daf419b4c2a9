package interactions

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(svc *Service) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, svc)
	return r
}

func doReq(t *testing.T, h http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAnalyzeEndpoint(t *testing.T) {
	h := newTestRouter(tableOnly())

	for _, path := range []string{"/api/analyze", "/check-risk"} {
		rr := doReq(t, h, http.MethodPost, path, `{"medication_list":["Warfarin","Advil","Tylenol"]}`)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

		var res AnalysisResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
		assert.Equal(t, 3, res.MedicationCount)
		assert.Equal(t, SeverityHigh, res.RiskLevel)
		assert.Equal(t, 1, res.InteractionCount)
		assert.Equal(t, "Warfarin", res.Details[0].Drug1)
		assert.Equal(t, "acetaminophen", res.Medications[2].NormalizedName)
	}
}

func TestAnalyzeEndpointEmptyListKeepsArrays(t *testing.T) {
	h := newTestRouter(tableOnly())

	rr := doReq(t, h, http.MethodPost, "/api/analyze", `{"medication_list":[]}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	assert.Equal(t, "LOW", raw["risk_level"])
	assert.Equal(t, []any{}, raw["details"])
	assert.Equal(t, []any{}, raw["medications"])
}

func TestAnalyzeEndpointValidation(t *testing.T) {
	h := newTestRouter(tableOnly())

	cases := map[string]string{
		"bad json":     `{"medication_list":`,
		"missing list": `{}`,
		"not a list":   `{"medication_list":"warfarin"}`,
		"non string":   `{"medication_list":["warfarin", 3]}`,
		"null item":    `{"medication_list":["warfarin", null]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rr := doReq(t, h, http.MethodPost, "/api/analyze", body)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())

			var e errorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &e))
			assert.NotEmpty(t, e.Error)
		})
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	h := newTestRouter(tableOnly())

	rr := doReq(t, h, http.MethodGet, "/api/medications/normalize?name=Lipitor", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var e MedicationEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &e))
	assert.Equal(t, "atorvastatin", e.NormalizedName)
	assert.Equal(t, "Statin", e.Category)
	assert.True(t, e.IsRecognized)

	rr = doReq(t, h, http.MethodGet, "/api/medications/normalize", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCatalogEndpoint(t *testing.T) {
	h := newTestRouter(tableOnly())

	rr := doReq(t, h, http.MethodGet, "/api/medications/catalog", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var items []DrugInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &items))
	require.Len(t, items, len(catalog))
	assert.Equal(t, "acetaminophen", items[0].Name)
}

func TestLookupEndpoint(t *testing.T) {
	h := newTestRouter(tableOnly())

	rr := doReq(t, h, http.MethodGet, "/api/interactions/lookup?drug1=Viagra&drug2=nitroglycerin", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var out lookupResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.True(t, out.Found)
	assert.Equal(t, "sildenafil", out.Drug1)
	assert.Equal(t, SeverityHigh, out.Severity)

	rr = doReq(t, h, http.MethodGet, "/api/interactions/lookup?drug1=metformin&drug2=amoxicillin", "")
	require.Equal(t, http.StatusOK, rr.Code)
	out = lookupResponse{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.False(t, out.Found)

	rr = doReq(t, h, http.MethodGet, "/api/interactions/lookup?drug1=metformin", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRulesEndpoint(t *testing.T) {
	svc := tableOnly()
	h := newTestRouter(svc)

	rr := doReq(t, h, http.MethodGet, "/api/interactions/rules", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var rules []Rule
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rules))
	require.Len(t, rules, svc.Table().Len())
	assert.Equal(t, "warfarin", rules[0].Drug1)
	assert.Equal(t, "ibuprofen", rules[0].Drug2)
	assert.Equal(t, SeverityHigh, rules[0].Severity)
}
