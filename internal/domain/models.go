package domain

import (
	"strings"
	"time"
)

// Status is the attendance state of one student on one date. Storage keeps the
// sparse form: Absent entries are never written, a missing entry means absent.
type Status string

const (
	StatusPresent Status = "Present"
	StatusLate    Status = "Late"
	StatusAbsent  Status = "Absent"
)

// Points returns the attendance points a status is worth for a single date.
func (s Status) Points() int {
	switch s {
	case StatusPresent:
		return 100
	case StatusLate:
		return 50
	default:
		return 0
	}
}

// Code returns the single-letter storage/import code for a status.
// Absent has no code; it is represented by the entry not existing.
func (s Status) Code() string {
	switch s {
	case StatusPresent:
		return "P"
	case StatusLate:
		return "L"
	default:
		return ""
	}
}

// ParseStatusCode maps an import/storage code to a status, case-insensitively.
// Anything other than P or L is reported as not-a-status.
func ParseStatusCode(code string) (Status, bool) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "P":
		return StatusPresent, true
	case "L":
		return StatusLate, true
	default:
		return "", false
	}
}

// Quiz placement point values.
const (
	FirstPlacePoints  = 100
	SecondPlacePoints = 50
	ThirdPlacePoints  = 25
)

// Student is one roster entry.
type Student struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Class  string `json:"class"`
	Mobile string `json:"mobile,omitempty"`
}

// DedupKey is the composite identity used to recognize the same person across
// import rows and runs.
func (s Student) DedupKey() string {
	return strings.ToLower(strings.TrimSpace(s.Name)) + "_" + strings.TrimSpace(s.Mobile)
}

// QuizDay holds one date's placements. Empty fields mean the slot was not awarded.
type QuizDay struct {
	First  string `json:"first,omitempty"`
	Second string `json:"second,omitempty"`
	Third  string `json:"third,omitempty"`
}

// IsZero reports whether no slot is filled.
func (d QuizDay) IsZero() bool {
	return d.First == "" && d.Second == "" && d.Third == ""
}

// HasDuplicate reports whether the same student occupies two slots.
func (d QuizDay) HasDuplicate() bool {
	return (d.First != "" && d.First == d.Second) ||
		(d.First != "" && d.First == d.Third) ||
		(d.Second != "" && d.Second == d.Third)
}

// Contributions returns the points this day awards per student id.
func (d QuizDay) Contributions() map[string]int {
	out := make(map[string]int, 3)
	if d.First != "" {
		out[d.First] += FirstPlacePoints
	}
	if d.Second != "" {
		out[d.Second] += SecondPlacePoints
	}
	if d.Third != "" {
		out[d.Third] += ThirdPlacePoints
	}
	return out
}

// Placed returns the non-empty slot occupants in slot order.
func (d QuizDay) Placed() []string {
	var ids []string
	for _, id := range []string{d.First, d.Second, d.Third} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// BoardRow is one ranked line of a leaderboard.
type BoardRow struct {
	StudentID        string `json:"studentId"`
	Name             string `json:"name"`
	Class            string `json:"class"`
	Status           Status `json:"status,omitempty"`
	AttendancePoints int    `json:"attendancePoints"`
	QuizPoints       int    `json:"quizPoints"`
	Total            int    `json:"total"`
}

// Board modes.
const (
	BoardDaily   = "daily"
	BoardOverall = "overall"
)

// Board is a ranked leaderboard snapshot.
type Board struct {
	Mode      string     `json:"mode"`
	Date      string     `json:"date,omitempty"`
	Rows      []BoardRow `json:"rows"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ImportRow is one parsed spreadsheet row: named fields plus optional
// date-named columns carrying P/L codes.
type ImportRow map[string]string

// ImportResult tallies one bulk import run.
type ImportResult struct {
	Created        int `json:"created"`
	Skipped        int `json:"skipped"`
	Failed         int `json:"failed"`
	DatesTotal     int `json:"datesTotal"`
	DatesCommitted int `json:"datesCommitted"`
	DatesFailed    int `json:"datesFailed"`
}

const dateLayout = "2006-01-02"

// IsDate reports whether s is a valid YYYY-MM-DD calendar date.
func IsDate(s string) bool {
	if len(s) != len(dateLayout) {
		return false
	}
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
