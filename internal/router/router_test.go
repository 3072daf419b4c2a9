package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"safedose-api/internal/adapters/calendar/googlecal"
	mem "safedose-api/internal/adapters/storage/memory"
	"safedose-api/internal/domain/appointments"
	"safedose-api/internal/domain/chat"
	"safedose-api/internal/domain/diagnosis"
	"safedose-api/internal/domain/doctors"
	"safedose-api/internal/domain/interactions"
	"safedose-api/internal/platform/ratelimit"
	"safedose-api/internal/router"
)

func newServer(t *testing.T, limiter *ratelimit.Limiter) *httptest.Server {
	t.Helper()

	cal, err := googlecal.New(googlecal.Config{TimeZone: "Asia/Kolkata"}, nil)
	if err != nil {
		t.Fatalf("calendar client: %v", err)
	}

	doctorsSvc := doctors.NewService(mem.NewDoctorRepo())
	h := router.NewRouter(router.Options{
		Limiter:      limiter,
		Interactions: interactions.NewService(interactions.Options{Mode: interactions.ModeTable}),
		Doctors:      doctorsSvc,
		Appointments: appointments.NewService(mem.NewAppointmentRepo(), appointments.Options{
			Doctors:  doctorsSvc,
			Calendar: cal,
		}),
		Chat:      chat.NewService(mem.NewChatRepo(), nil, chat.Options{}),
		Diagnosis: diagnosis.NewService(mem.NewDiagnosisRepo(), nil, diagnosis.Options{}),
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_HealthAndRoot(t *testing.T) {
	ts := newServer(t, nil)

	st, body := doReq(t, ts.URL, "GET", "/health", "", nil, nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("health: got %d %q", st, body)
	}

	st, body = doReq(t, ts.URL, "GET", "/", "", nil, nil)
	if st != http.StatusOK {
		t.Fatalf("root: got %d", st)
	}
	var root map[string]string
	mustUnmarshal(t, body, &root)
	if root["status"] != "SafeDose Backend Running" {
		t.Fatalf("unexpected root status: %q", root["status"])
	}

	st, body = doReq(t, ts.URL, "GET", "/metrics", "", nil, nil)
	if st != http.StatusOK || !strings.Contains(string(body), "safedose_http_requests_total") {
		t.Fatalf("metrics: got %d", st)
	}
}

func TestHTTP_AnalyzeHighRisk(t *testing.T) {
	ts := newServer(t, nil)

	st, body := doReq(t, ts.URL, "POST", "/api/analyze", "", map[string]any{
		"medication_list": []string{"Warfarin", "Ibuprofen", "Metformin"},
	}, nil)
	if st != http.StatusOK {
		t.Fatalf("analyze: got %d body=%s", st, body)
	}

	var res interactions.AnalysisResult
	mustUnmarshal(t, body, &res)
	if res.RiskLevel != interactions.SeverityHigh {
		t.Fatalf("expected HIGH, got %s", res.RiskLevel)
	}
	if res.MedicationCount != 3 || res.InteractionCount != len(res.Details) {
		t.Fatalf("unexpected counts: %+v", res)
	}
}

func TestHTTP_BookAndCancelAppointment(t *testing.T) {
	ts := newServer(t, nil)
	userID := "patient-1"

	st, body := doReq(t, ts.URL, "POST", "/api/doctors", "", map[string]any{
		"name":      "Dr. Meera Iyer",
		"specialty": "Cardiology",
		"location":  "Apollo Clinic",
	}, nil)
	if st != http.StatusCreated {
		t.Fatalf("create doctor: got %d body=%s", st, body)
	}
	var doc struct {
		ID string `json:"id"`
	}
	mustUnmarshal(t, body, &doc)

	st, body = doReq(t, ts.URL, "POST", "/api/appointments", userID, map[string]any{
		"doctor_id":     doc.ID,
		"patient_name":  "Asha",
		"patient_email": "asha@example.com",
		"date":          "2026-11-20",
		"time":          "10:30",
	}, map[string]string{appointments.CalendarTokenHeader: googlecal.MockToken})
	if st != http.StatusCreated {
		t.Fatalf("book: got %d body=%s", st, body)
	}

	var booked struct {
		Appointment struct {
			ID         string `json:"id"`
			DoctorName string `json:"doctor_name"`
			Status     string `json:"status"`
		} `json:"appointment"`
		Calendar appointments.CalendarResult `json:"calendar"`
	}
	mustUnmarshal(t, body, &booked)
	if booked.Appointment.DoctorName != "Dr. Meera Iyer" {
		t.Fatalf("doctor name not resolved: %q", booked.Appointment.DoctorName)
	}
	if booked.Calendar.Status != appointments.CalendarCreated || booked.Calendar.EventID == "" {
		t.Fatalf("expected calendar created, got %+v", booked.Calendar)
	}

	// otro usuario no puede cancelar
	st, _ = doReq(t, ts.URL, "POST", "/api/appointments/"+booked.Appointment.ID+"/cancel", "intruder", nil, nil)
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 for other user, got %d", st)
	}

	st, body = doReq(t, ts.URL, "POST", "/api/appointments/"+booked.Appointment.ID+"/cancel", userID, nil,
		map[string]string{appointments.CalendarTokenHeader: googlecal.MockToken})
	if st != http.StatusOK {
		t.Fatalf("cancel: got %d body=%s", st, body)
	}
	mustUnmarshal(t, body, &booked)
	if booked.Appointment.Status != string(appointments.StatusCancelled) {
		t.Fatalf("expected cancelled, got %q", booked.Appointment.Status)
	}
	if booked.Calendar.Status != appointments.CalendarDeleted {
		t.Fatalf("expected calendar deleted, got %+v", booked.Calendar)
	}

	st, _ = doReq(t, ts.URL, "POST", "/api/appointments/"+booked.Appointment.ID+"/cancel", userID, nil, nil)
	if st != http.StatusConflict {
		t.Fatalf("expected 409 on second cancel, got %d", st)
	}

	st, body = doReq(t, ts.URL, "GET", "/api/appointments", userID, nil, nil)
	if st != http.StatusOK {
		t.Fatalf("list: got %d", st)
	}
	var list []map[string]any
	mustUnmarshal(t, body, &list)
	if len(list) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(list))
	}
}

func TestHTTP_ChatWithoutModelFallsBack(t *testing.T) {
	ts := newServer(t, nil)

	st, body := doReq(t, ts.URL, "POST", "/api/chat", "", map[string]any{
		"user_id":     "web-user",
		"message":     "Can I take ibuprofen tonight?",
		"medications": []string{"warfarin"},
	}, nil)
	if st != http.StatusOK {
		t.Fatalf("chat: got %d body=%s", st, body)
	}
	var reply chat.Reply
	mustUnmarshal(t, body, &reply)
	if reply.Text != chat.BrainFogReply || reply.Role != chat.RoleModel {
		t.Fatalf("unexpected reply: %+v", reply)
	}

	st, _ = doReq(t, ts.URL, "POST", "/api/chat", "", map[string]any{"message": "hi"}, nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user, got %d", st)
	}
}

func TestHTTP_RateLimit(t *testing.T) {
	ts := newServer(t, ratelimit.New(0.001, 2, ratelimit.DefaultCost))

	for i := 0; i < 2; i++ {
		if st, _ := doReq(t, ts.URL, "GET", "/api/doctors", "", nil, nil); st != http.StatusOK {
			t.Fatalf("request %d: got %d", i, st)
		}
	}
	if st, _ := doReq(t, ts.URL, "GET", "/api/doctors", "", nil, nil); st != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", st)
	}
	// health es gratis
	if st, _ := doReq(t, ts.URL, "GET", "/health", "", nil, nil); st != http.StatusOK {
		t.Fatalf("health should bypass limiter, got %d", st)
	}
}

func mustUnmarshal(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("unmarshal %s: %v", body, err)
	}
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any, headers map[string]string) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
