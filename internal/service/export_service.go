package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/pantau-go-api/internal/analytics"
	"github.com/noah-isme/pantau-go-api/internal/dto"
)

// ErrNoExportData indicates there are no snapshots to export from.
var ErrNoExportData = errors.New("no report data to export")

// ExportService renders a chosen learner list as CSV. Fields are always
// quoted with internal quotes doubled, so the output survives names and
// course titles containing commas or quotes.
type ExportService interface {
	Export(ctx context.Context, req dto.ExportRequest) (dto.ExportResult, error)
}

type exportService struct {
	analytics AnalyticsService
	logger    zerolog.Logger
}

// NewExportService constructs an export service.
func NewExportService(analyticsService AnalyticsService, logger zerolog.Logger) ExportService {
	return &exportService{
		analytics: analyticsService,
		logger:    logger.With().Str("component", "export_service").Logger(),
	}
}

func (s *exportService) Export(ctx context.Context, req dto.ExportRequest) (dto.ExportResult, error) {
	if req.List == "" {
		req.List = dto.ExportListLearners
	}
	if req.Mode == "" {
		req.Mode = dto.ExportModeCompact
	}

	response, err := s.analytics.GetAnalytics(ctx)
	if err != nil {
		return dto.ExportResult{}, err
	}
	if response == nil || response.Analytics == nil {
		return dto.ExportResult{}, ErrNoExportData
	}

	learners := selectList(response.Analytics, req.List)
	labels := recentLabels(response.Analytics.MonthlyData)
	content := renderCSV(learners, labels, req.Mode == dto.ExportModeDetailed)

	s.logger.Debug().
		Str("list", req.List).
		Str("mode", req.Mode).
		Int("learners", len(learners)).
		Msg("export rendered")

	return dto.ExportResult{
		FileName: fmt.Sprintf("progress-%s-%s.csv", req.List, req.Mode),
		Content:  content,
	}, nil
}

// selectList resolves the requested list. Plain learner records are wrapped
// as enriched learners without recent history, which leaves their period and
// delta columns empty.
func selectList(result *analytics.Analytics, list string) []analytics.EnrichedLearner {
	switch list {
	case dto.ExportListImproved:
		return result.ImprovedList
	case dto.ExportListSupport:
		return result.SupportList
	case dto.ExportListFailed:
		return wrapRecords(result.FailedStudents)
	case dto.ExportListFinished:
		return wrapRecords(result.FinishedStudents)
	default:
		return wrapRecords(result.Learners)
	}
}

func wrapRecords(records []analytics.LearnerRecord) []analytics.EnrichedLearner {
	wrapped := make([]analytics.EnrichedLearner, 0, len(records))
	for _, record := range records {
		wrapped = append(wrapped, analytics.EnrichedLearner{LearnerRecord: record})
	}
	return wrapped
}

// recentLabels returns the labels of the trailing up-to-4 periods.
func recentLabels(summaries []analytics.PeriodSummary) []string {
	start := 0
	if len(summaries) > 4 {
		start = len(summaries) - 4
	}
	labels := make([]string, 0, 4)
	for _, summary := range summaries[start:] {
		labels = append(labels, summary.Label)
	}
	return labels
}

func renderCSV(learners []analytics.EnrichedLearner, labels []string, detailed bool) []byte {
	var out strings.Builder

	header := []string{"ID", "Name", "Email"}
	header = append(header, labels...)
	header = append(header, "Δ")
	if detailed {
		header = append(header, "District", "Level", "Avg Completion", "Courses")
	}
	writeRow(&out, header)

	for _, learner := range learners {
		fields := []string{
			strconv.Itoa(learner.ID),
			learner.Name,
			learner.Email,
		}
		fields = append(fields, periodColumns(learner.RecentAvgs, len(labels))...)
		fields = append(fields, deltaColumn(learner.RecentAvgs))
		if detailed {
			fields = append(fields,
				learner.District,
				learner.Level,
				strconv.Itoa(learner.AvgCompletion),
				flattenCourses(learner.Courses),
			)
		}
		writeRow(&out, fields)
	}

	return []byte(out.String())
}

// periodColumns maps the recent-average window onto the label columns. The
// window is left padded, so labels align with its trailing entries.
func periodColumns(recent []*int, labelCount int) []string {
	columns := make([]string, 0, labelCount)
	offset := len(recent) - labelCount
	for i := 0; i < labelCount; i++ {
		index := offset + i
		if index < 0 || index >= len(recent) || recent[index] == nil {
			columns = append(columns, "")
			continue
		}
		columns = append(columns, fmt.Sprintf("%d%%", *recent[index]))
	}
	return columns
}

// deltaColumn is the difference between the last and first known recent
// averages, empty when either endpoint is unknown.
func deltaColumn(recent []*int) string {
	var first, last *int
	for _, avg := range recent {
		if avg == nil {
			continue
		}
		if first == nil {
			first = avg
		}
		last = avg
	}
	if first == nil || last == nil {
		return ""
	}

	delta := *last - *first
	if delta >= 0 {
		return fmt.Sprintf("+%d%%", delta)
	}
	return fmt.Sprintf("%d%%", delta)
}

func flattenCourses(courses []analytics.Course) string {
	parts := make([]string, 0, len(courses))
	for _, course := range courses {
		pct := strconv.FormatFloat(course.Completion, 'f', -1, 64)
		parts = append(parts, fmt.Sprintf("%s (%s - %s%%)", course.Title, course.Status, pct))
	}
	return strings.Join(parts, " | ")
}

func writeRow(out *strings.Builder, fields []string) {
	for i, field := range fields {
		if i > 0 {
			out.WriteByte(',')
		}
		out.WriteByte('"')
		out.WriteString(strings.ReplaceAll(field, `"`, `""`))
		out.WriteByte('"')
	}
	out.WriteByte('\n')
}
