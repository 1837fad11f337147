package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"rollbook-service/internal/app"
	"rollbook-service/internal/domain"
	"rollbook-service/internal/spreadsheet"
)

// APIHandler exposes the ledger use cases as plain JSON endpoints.
type APIHandler struct {
	service  *app.LedgerService
	importer *app.Importer
}

func NewAPIHandler(service *app.LedgerService, importer *app.Importer) *APIHandler {
	return &APIHandler{service: service, importer: importer}
}

// Register mounts all routes on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/students", h.listStudents)
	mux.HandleFunc("POST /api/students", h.createStudent)
	mux.HandleFunc("PUT /api/students/{id}", h.updateStudent)
	mux.HandleFunc("DELETE /api/students/{id}", h.deleteStudent)

	mux.HandleFunc("GET /api/attendance", h.getAttendanceDay)
	mux.HandleFunc("POST /api/attendance/status", h.setStatus)
	mux.HandleFunc("POST /api/attendance/reset", h.resetDay)

	mux.HandleFunc("GET /api/quiz", h.getQuizDay)
	mux.HandleFunc("POST /api/quiz", h.logQuiz)
	mux.HandleFunc("POST /api/quiz/reset", h.resetQuizDay)
	mux.HandleFunc("POST /api/quiz/reset-all", h.resetAllQuizPoints)

	mux.HandleFunc("GET /api/board", h.getBoard)
	mux.HandleFunc("GET /api/teams", h.shuffleTeams)
	mux.HandleFunc("POST /api/import", h.importRows)
}

func (h *APIHandler) listStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.service.Students(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, students)
}

func (h *APIHandler) createStudent(w http.ResponseWriter, r *http.Request) {
	var student domain.Student
	if err := json.NewDecoder(r.Body).Decode(&student); err != nil {
		writeError(w, domain.ErrInvalidPayload)
		return
	}
	created, err := h.service.CreateStudent(r.Context(), student)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *APIHandler) updateStudent(w http.ResponseWriter, r *http.Request) {
	var student domain.Student
	if err := json.NewDecoder(r.Body).Decode(&student); err != nil {
		writeError(w, domain.ErrInvalidPayload)
		return
	}
	student.ID = r.PathValue("id")
	if err := h.service.UpdateStudent(r.Context(), student); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (h *APIHandler) deleteStudent(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteStudent(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) getAttendanceDay(w http.ResponseWriter, r *http.Request) {
	day, err := h.service.AttendanceDay(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

type statusRequest struct {
	Date      string `json:"date"`
	StudentID string `json:"studentId"`
	Status    string `json:"status"`
}

func (h *APIHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidPayload)
		return
	}
	if err := h.service.MarkAttendance(r.Context(), req.Date, req.StudentID, domain.Status(req.Status)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type dateRequest struct {
	Date string `json:"date"`
}

func (h *APIHandler) resetDay(w http.ResponseWriter, r *http.Request) {
	var req dateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidPayload)
		return
	}
	if err := h.service.ResetAttendanceDay(r.Context(), req.Date); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) getQuizDay(w http.ResponseWriter, r *http.Request) {
	day, err := h.service.QuizDayResult(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

type quizRequest struct {
	Date   string `json:"date"`
	First  string `json:"first"`
	Second string `json:"second"`
	Third  string `json:"third"`
}

func (h *APIHandler) logQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidPayload)
		return
	}
	placements := domain.QuizDay{First: req.First, Second: req.Second, Third: req.Third}
	if err := h.service.LogQuizResult(r.Context(), req.Date, placements); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) resetQuizDay(w http.ResponseWriter, r *http.Request) {
	var req dateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidPayload)
		return
	}
	if err := h.service.ResetQuizDay(r.Context(), req.Date); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) resetAllQuizPoints(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ResetAllQuizPoints(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) getBoard(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = domain.BoardDaily
	}
	var (
		board domain.Board
		err   error
	)
	switch mode {
	case domain.BoardOverall:
		board, err = h.service.OverallBoard(r.Context())
	case domain.BoardDaily:
		board, err = h.service.DailyBoard(r.Context(), r.URL.Query().Get("date"))
	default:
		writeError(w, domain.ErrInvalidBoardMode)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *APIHandler) shuffleTeams(w http.ResponseWriter, r *http.Request) {
	count, err := strconv.Atoi(r.URL.Query().Get("count"))
	if err != nil {
		count = 2
	}
	teams, err := h.service.TeamShuffle(r.Context(), r.URL.Query().Get("date"), count)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// importRows ingests a CSV body and reports the merge tallies. A partial
// failure still returns the tallies so the caller can see how many date
// batches committed.
func (h *APIHandler) importRows(w http.ResponseWriter, r *http.Request) {
	rows, err := spreadsheet.ReadRows(r.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	result, runErr := h.importer.Run(r.Context(), rows, nil)
	status := http.StatusOK
	if runErr != nil {
		log.Printf("import finished with error: %v", runErr)
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrStudentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrDuplicatePlacement),
		errors.Is(err, domain.ErrNotEligible),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidBoardMode),
		errors.Is(err, domain.ErrInvalidPayload),
		errors.Is(err, domain.ErrMissingField),
		errors.Is(err, domain.ErrNoEligibleStudents),
		errors.Is(err, domain.ErrTooManyTeams):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
