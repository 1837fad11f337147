package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rollbook-service/internal/app"
	"rollbook-service/internal/domain"
	"rollbook-service/internal/infra/memory"
)

func newAPIServer(t *testing.T) (*httptest.Server, map[string]string) {
	t.Helper()
	roster := memory.NewRoster()
	attendance := memory.NewAttendanceStore()
	quiz := memory.NewQuizLedger()
	service := app.NewLedgerService(roster, attendance, quiz)
	importer := app.NewImporter(roster, attendance, quiz)

	ids := make(map[string]string)
	for _, name := range []string{"Alice", "Bob"} {
		s, err := service.CreateStudent(context.Background(), domain.Student{Name: name, Class: "7A"})
		if err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
		ids[name] = s.ID
	}

	mux := http.NewServeMux()
	NewAPIHandler(service, importer).Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, ids
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func TestLogQuizMalformedBodyReportsInvalidPayload(t *testing.T) {
	server, _ := newAPIServer(t)

	resp, err := http.Post(server.URL+"/api/quiz", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if msg := decodeError(t, resp); msg != domain.ErrInvalidPayload.Error() {
		t.Fatalf("error = %q, want %q", msg, domain.ErrInvalidPayload.Error())
	}
}

func TestSetStatusMalformedBodyReportsInvalidPayload(t *testing.T) {
	server, _ := newAPIServer(t)

	resp, err := http.Post(server.URL+"/api/attendance/status", "application/json", strings.NewReader("[]"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if msg := decodeError(t, resp); msg != domain.ErrInvalidPayload.Error() {
		t.Fatalf("error = %q, want %q", msg, domain.ErrInvalidPayload.Error())
	}
}

func TestGetBoardRejectsUnknownMode(t *testing.T) {
	server, _ := newAPIServer(t)

	resp, err := http.Get(server.URL + "/api/board?mode=weekly&date=2024-07-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if msg := decodeError(t, resp); msg != domain.ErrInvalidBoardMode.Error() {
		t.Fatalf("error = %q, want %q", msg, domain.ErrInvalidBoardMode.Error())
	}
}

func TestGetBoardModes(t *testing.T) {
	server, ids := newAPIServer(t)

	statusBody := `{"date":"2024-07-01","studentId":"` + ids["Alice"] + `","status":"Present"}`
	resp, err := http.Post(server.URL+"/api/attendance/status", "application/json", strings.NewReader(statusBody))
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("set status = %d, want 204", resp.StatusCode)
	}

	for _, query := range []string{"?date=2024-07-01", "?mode=daily&date=2024-07-01", "?mode=overall"} {
		resp, err := http.Get(server.URL + "/api/board" + query)
		if err != nil {
			t.Fatalf("get board %s: %v", query, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("board %s status = %d, want 200", query, resp.StatusCode)
		}
		var board domain.Board
		if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
			t.Fatalf("decode board %s: %v", query, err)
		}
		resp.Body.Close()
		found := false
		for _, row := range board.Rows {
			if row.StudentID == ids["Alice"] && row.AttendancePoints == 100 {
				found = true
			}
		}
		if !found {
			t.Fatalf("board %s missing alice's points: %+v", query, board.Rows)
		}
	}
}
