package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/pantau-go-api/internal/dto"
	"github.com/noah-isme/pantau-go-api/internal/ingest"
	"github.com/noah-isme/pantau-go-api/internal/models"
	"github.com/noah-isme/pantau-go-api/internal/observability"
	"github.com/noah-isme/pantau-go-api/internal/repository"
)

var (
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the file is not a CSV report.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed, expected a CSV report")
	// ErrSnapshotNotFound indicates the snapshot id does not exist.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// SnapshotService manages the ordered report sequence: one snapshot per
// imported file, appended on import, removed whole on deletion.
type SnapshotService interface {
	Import(ctx context.Context, file *multipart.FileHeader, name string) (dto.ImportResponse, error)
	List(ctx context.Context) ([]dto.SnapshotResponse, error)
	Delete(ctx context.Context, id uint) error
}

type snapshotService struct {
	repo    repository.SnapshotRepository
	events  SnapshotEventPublisher
	logger  zerolog.Logger
	maxSize int64
	tracer  trace.Tracer
}

// NewSnapshotService constructs a snapshot service.
func NewSnapshotService(repo repository.SnapshotRepository, events SnapshotEventPublisher, maxSizeMB int, logger zerolog.Logger) SnapshotService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &snapshotService{
		repo:    repo,
		events:  events,
		logger:  logger.With().Str("component", "snapshot_service").Logger(),
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		tracer:  otel.Tracer("github.com/noah-isme/pantau-go-api/internal/service/snapshot"),
	}
}

func (s *snapshotService) Import(ctx context.Context, file *multipart.FileHeader, name string) (dto.ImportResponse, error) {
	ctx, span := s.tracer.Start(ctx, "snapshot.import")
	defer span.End()

	if file == nil {
		err := errors.New("file is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.ImportResponse{}, err
	}

	span.SetAttributes(
		attribute.String("import.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("import.request_size", file.Size),
	)

	if file.Size > s.maxSize {
		observability.IngestRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.ImportResponse{}, ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return dto.ImportResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return dto.ImportResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		observability.IngestRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.ImportResponse{}, ErrUploadTooLarge
	}

	mime := mimetype.Detect(buf.Bytes())
	span.SetAttributes(attribute.String("import.detected_mime", mime.String()))
	if !isReportMime(mime.String()) {
		observability.IngestRejected().WithLabelValues("type").Inc()
		span.RecordError(ErrUploadTypeNotAllowed)
		span.SetStatus(codes.Error, "type not allowed")
		return dto.ImportResponse{}, ErrUploadTypeNotAllowed
	}

	rows, err := ingest.DecodeCSV(bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.IngestRejected().WithLabelValues("decode").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return dto.ImportResponse{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		position, err := s.repo.NextPosition(ctx)
		if err != nil {
			span.RecordError(err)
			return dto.ImportResponse{}, err
		}
		name = fmt.Sprintf("Report %d", position)
	}

	snapshot, err := s.repo.Create(ctx, name, rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.ImportResponse{}, err
	}

	observability.IngestRows().Add(float64(len(rows)))
	span.SetAttributes(
		attribute.Int("import.rows", len(rows)),
		attribute.Int("import.position", snapshot.Position),
	)
	span.SetStatus(codes.Ok, "imported")

	if s.events != nil {
		s.events.SnapshotImported(snapshot.ID, snapshot.Name, len(rows))
	}

	s.logger.Info().
		Uint("snapshot_id", snapshot.ID).
		Str("name", snapshot.Name).
		Int("rows", len(rows)).
		Msg("snapshot imported")

	return dto.ImportResponse{
		Snapshot:     toSnapshotResponse(snapshot, len(rows)),
		RowsImported: len(rows),
	}, nil
}

func (s *snapshotService) List(ctx context.Context) ([]dto.SnapshotResponse, error) {
	snapshots, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SnapshotResponse, 0, len(snapshots))
	for _, snapshot := range snapshots {
		responses = append(responses, toSnapshotResponse(snapshot, len(snapshot.Rows)))
	}
	return responses, nil
}

func (s *snapshotService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSnapshotNotFound
		}
		return err
	}

	if s.events != nil {
		s.events.SnapshotDeleted(id)
	}

	s.logger.Info().Uint("snapshot_id", id).Msg("snapshot deleted")
	return nil
}

func toSnapshotResponse(snapshot models.Snapshot, rowCount int) dto.SnapshotResponse {
	return dto.SnapshotResponse{
		ID:        snapshot.ID,
		Name:      snapshot.Name,
		Position:  snapshot.Position,
		RowCount:  rowCount,
		CreatedAt: snapshot.CreatedAt,
	}
}

func isReportMime(mime string) bool {
	mime = strings.ToLower(mime)
	switch {
	case strings.HasPrefix(mime, "text/csv"),
		strings.HasPrefix(mime, "text/plain"),
		strings.HasPrefix(mime, "application/csv"):
		return true
	default:
		return false
	}
}

// NormalizeLegacyData migrates rows stored by the legacy flat format into a
// synthetic "Week 1" snapshot. Intended to run once at startup.
func NormalizeLegacyData(ctx context.Context, repo repository.SnapshotRepository, logger zerolog.Logger) error {
	migrated, err := repo.NormalizeLegacyRows(ctx)
	if err != nil {
		return err
	}
	if migrated {
		logger.Info().Msg("legacy rows normalized into Week 1 snapshot")
	}
	return nil
}
