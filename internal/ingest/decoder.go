// Package ingest decodes uploaded tabular progress reports into raw records.
// Decoding is deliberately forgiving: analytics must stay computable on dirty
// exports, so malformed numeric cells coerce to 0 and missing text cells to
// the empty string.
package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/noah-isme/pantau-go-api/internal/models"
)

// ErrNoLearnerColumn indicates the header row has no recognizable learner id
// column, which makes the file unusable as a progress report.
var ErrNoLearnerColumn = errors.New("no learner id column in header")

// Column aliases seen across LMS exports, all matched case-insensitively
// after trimming and collapsing separators.
var columnAliases = map[string]string{
	"id":               "learner_id",
	"user id":          "learner_id",
	"student id":       "learner_id",
	"learner id":       "learner_id",
	"first name":       "first_name",
	"last name":        "last_name",
	"email":            "email",
	"email address":    "email",
	"district":         "district",
	"status":           "account_status",
	"account status":   "account_status",
	"created":          "account_created",
	"date created":     "account_created",
	"last access":      "last_access",
	"last login":       "last_access",
	"course":           "course_title",
	"course title":     "course_title",
	"course name":      "course_title",
	"course status":    "course_status",
	"completion":       "completion",
	"% complete":       "completion",
	"percent complete": "completion",
	"completion %":     "completion",
}

// DecodeCSV reads a progress-report CSV and returns one RawRecord per data
// row. Rows shorter than the header are padded, longer ones truncated, and
// rows whose learner id cell is not numeric are skipped.
func DecodeCSV(r io.Reader) ([]models.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return []models.RawRecord{}, nil
	}
	if err != nil {
		return nil, err
	}

	columns := mapHeader(header)
	if _, ok := columns["learner_id"]; !ok {
		return nil, ErrNoLearnerColumn
	}

	records := make([]models.RawRecord, 0)
	for {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		learnerID, ok := parseLearnerID(cellAt(cells, columns, "learner_id"))
		if !ok {
			continue
		}

		records = append(records, models.RawRecord{
			LearnerID:      learnerID,
			FirstName:      cellAt(cells, columns, "first_name"),
			LastName:       cellAt(cells, columns, "last_name"),
			Email:          cellAt(cells, columns, "email"),
			District:       cellAt(cells, columns, "district"),
			AccountStatus:  cellAt(cells, columns, "account_status"),
			AccountCreated: cellAt(cells, columns, "account_created"),
			LastAccess:     cellAt(cells, columns, "last_access"),
			CourseTitle:    cellAt(cells, columns, "course_title"),
			CourseStatus:   cellAt(cells, columns, "course_status"),
			Completion:     parseCompletion(cellAt(cells, columns, "completion")),
		})
	}

	return records, nil
}

func mapHeader(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for index, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		key = strings.ReplaceAll(key, "_", " ")
		key = strings.Join(strings.Fields(key), " ")
		if canonical, ok := columnAliases[key]; ok {
			if _, taken := columns[canonical]; !taken {
				columns[canonical] = index
			}
		}
	}
	return columns
}

func cellAt(cells []string, columns map[string]int, name string) string {
	index, ok := columns[name]
	if !ok || index >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[index])
}

func parseLearnerID(cell string) (int, bool) {
	if cell == "" {
		return 0, false
	}
	id, err := strconv.Atoi(cell)
	if err != nil {
		return 0, false
	}
	return id, true
}

// parseCompletion coerces a completion cell to a number, tolerating a
// trailing percent sign. Anything unparseable becomes 0.
func parseCompletion(cell string) float64 {
	cell = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(cell), "%"))
	if cell == "" {
		return 0
	}
	value, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0
	}
	return value
}
