package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pantau-go-api/internal/dto"
	"github.com/noah-isme/pantau-go-api/internal/models"
)

func exportFixtureRepo(t *testing.T) *fakeSnapshotRepo {
	t.Helper()
	repo := &fakeSnapshotRepo{}
	_, err := repo.Create(context.Background(), "Report 1", []models.RawRecord{
		progressRow(1, "Alice", "Math", 40),
		progressRow(2, "Bob", "Math", 100),
	})
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), "Report 2", []models.RawRecord{
		progressRow(1, "Alice", "Math", 60),
		progressRow(2, "Bob", "Math", 100),
	})
	require.NoError(t, err)
	return repo
}

func TestExportServiceCompactImprovedList(t *testing.T) {
	repo := exportFixtureRepo(t)
	svc := NewExportService(NewAnalyticsService(repo, nil, time.Minute, testLogger()), testLogger())

	result, err := svc.Export(context.Background(), dto.ExportRequest{List: dto.ExportListImproved, Mode: dto.ExportModeCompact})
	require.NoError(t, err)
	require.Equal(t, "progress-improved-compact.csv", result.FileName)

	lines := strings.Split(strings.TrimRight(string(result.Content), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, `"ID","Name","Email","Report 1","Report 2","Δ"`, lines[0])
	require.Equal(t, `"1","Alice Test","Alice@example.com","40%","60%","+20%"`, lines[1])
}

func TestExportServiceDetailedColumns(t *testing.T) {
	repo := exportFixtureRepo(t)
	svc := NewExportService(NewAnalyticsService(repo, nil, time.Minute, testLogger()), testLogger())

	result, err := svc.Export(context.Background(), dto.ExportRequest{List: dto.ExportListLearners, Mode: dto.ExportModeDetailed})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(result.Content), "\n"), "\n")
	require.Len(t, lines, 3, "header plus both learners")
	require.Contains(t, lines[0], `"District","Level","Avg Completion","Courses"`)

	// Plain learner records carry no recent history: period and delta
	// columns stay empty while the detailed columns are populated.
	require.Contains(t, lines[1], `"Alice Test"`)
	require.Contains(t, lines[1], `"","",""`)
	require.Contains(t, lines[1], `"Math (enrolled - 60%)"`)
}

func TestExportServiceQuotesEmbeddedDelimiters(t *testing.T) {
	repo := &fakeSnapshotRepo{}
	row := progressRow(1, "Alice", `Reading, "Advanced"`, 50)
	row.CourseStatus = "enrolled"
	_, err := repo.Create(context.Background(), "Report 1", []models.RawRecord{row})
	require.NoError(t, err)

	svc := NewExportService(NewAnalyticsService(repo, nil, time.Minute, testLogger()), testLogger())
	result, err := svc.Export(context.Background(), dto.ExportRequest{Mode: dto.ExportModeDetailed})
	require.NoError(t, err)

	require.Contains(t, string(result.Content), `"Reading, ""Advanced"" (enrolled - 50%)"`)
}

func TestExportServiceNoData(t *testing.T) {
	svc := NewExportService(NewAnalyticsService(&fakeSnapshotRepo{}, nil, time.Minute, testLogger()), testLogger())

	_, err := svc.Export(context.Background(), dto.ExportRequest{})
	require.ErrorIs(t, err, ErrNoExportData)
}

func TestExportServiceDeltaEmptyWhenUnknown(t *testing.T) {
	require.Equal(t, "", deltaColumn([]*int{nil, nil, nil, nil}))
	require.Equal(t, "", deltaColumn(nil))

	ten, thirty := 10, 30
	require.Equal(t, "+20%", deltaColumn([]*int{&ten, nil, nil, &thirty}))
	require.Equal(t, "-20%", deltaColumn([]*int{&thirty, nil, nil, &ten}))
	require.Equal(t, "+0%", deltaColumn([]*int{nil, nil, nil, &ten}))
}
