package domain

import "errors"

var (
	// ErrStudentNotFound is returned when an operation names an unknown student.
	ErrStudentNotFound = errors.New("student not found")
	// ErrDuplicatePlacement is returned when one student occupies two quiz slots on a day.
	ErrDuplicatePlacement = errors.New("duplicate quiz placement")
	// ErrNotEligible is returned when a placed student was not present or late on the target date.
	ErrNotEligible = errors.New("student not eligible for quiz placement")
	// ErrInvalidDate is returned when a date is not a YYYY-MM-DD calendar date.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidStatus is returned when a status is neither Present, Late nor Absent.
	ErrInvalidStatus = errors.New("invalid attendance status")
	// ErrMissingField is returned when a required field (name, class) is empty.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidBoardMode is returned for board modes other than daily and overall.
	ErrInvalidBoardMode = errors.New("invalid board mode")
	// ErrInvalidPayload is returned when a request body or message payload does not decode.
	ErrInvalidPayload = errors.New("invalid request payload")
	// ErrConflict is returned when a transactional write lost a race and the caller should retry.
	ErrConflict = errors.New("concurrent modification, retry")
	// ErrNoEligibleStudents is returned when a team shuffle has nobody to shuffle.
	ErrNoEligibleStudents = errors.New("no present or late students to shuffle")
	// ErrTooManyTeams is returned when a shuffle asks for more teams than students.
	ErrTooManyTeams = errors.New("more teams than eligible students")
)
