package handler_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pantau-go-api/internal/dto"
	"github.com/noah-isme/pantau-go-api/internal/handler"
	"github.com/noah-isme/pantau-go-api/internal/service"
)

type mockSnapshotService struct {
	lastName  string
	lastID    uint
	importRes dto.ImportResponse
	importErr error
	listRes   []dto.SnapshotResponse
	listErr   error
	deleteErr error
}

func (m *mockSnapshotService) Import(_ context.Context, file *multipart.FileHeader, name string) (dto.ImportResponse, error) {
	m.lastName = name
	if m.importErr != nil {
		return dto.ImportResponse{}, m.importErr
	}
	return m.importRes, nil
}

func (m *mockSnapshotService) List(_ context.Context) ([]dto.SnapshotResponse, error) {
	return m.listRes, m.listErr
}

func (m *mockSnapshotService) Delete(_ context.Context, id uint) error {
	m.lastID = id
	return m.deleteErr
}

func snapshotApp(svc service.SnapshotService) *fiber.App {
	app := fiber.New()
	handler.NewSnapshotHandler(svc, zerolog.New(bytes.NewBuffer(nil))).Register(app.Group("/api/v1/snapshots"))
	return app
}

func uploadRequest(t *testing.T, name string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "week1.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Student ID,% Complete\n1,40\n"))
	require.NoError(t, err)
	if name != "" {
		require.NoError(t, writer.WriteField("name", name))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/snapshots", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestSnapshotHandler_UploadSuccess(t *testing.T) {
	svc := &mockSnapshotService{importRes: dto.ImportResponse{
		Snapshot:     dto.SnapshotResponse{ID: 1, Name: "Midterm", Position: 1, RowCount: 1},
		RowsImported: 1,
	}}
	app := snapshotApp(svc)

	resp, err := app.Test(uploadRequest(t, "Midterm"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "Midterm", svc.lastName)

	var body struct {
		Success bool               `json:"success"`
		Data    dto.ImportResponse `json:"data"`
		Message string             `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, 1, body.Data.RowsImported)
	require.Equal(t, "Midterm", body.Data.Snapshot.Name)
}

func TestSnapshotHandler_UploadRequiresFile(t *testing.T) {
	app := snapshotApp(&mockSnapshotService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/snapshots", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSnapshotHandler_UploadTooLarge(t *testing.T) {
	app := snapshotApp(&mockSnapshotService{importErr: service.ErrUploadTooLarge})

	resp, err := app.Test(uploadRequest(t, ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestSnapshotHandler_UploadWrongType(t *testing.T) {
	app := snapshotApp(&mockSnapshotService{importErr: service.ErrUploadTypeNotAllowed})

	resp, err := app.Test(uploadRequest(t, ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSnapshotHandler_List(t *testing.T) {
	svc := &mockSnapshotService{listRes: []dto.SnapshotResponse{
		{ID: 1, Name: "Report 1", Position: 1, RowCount: 2},
		{ID: 2, Name: "Report 2", Position: 2, RowCount: 2},
	}}
	app := snapshotApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshots", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                   `json:"success"`
		Data    []dto.SnapshotResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Len(t, body.Data, 2)
	require.Equal(t, "Report 2", body.Data[1].Name)
}

func TestSnapshotHandler_DeleteNotFound(t *testing.T) {
	app := snapshotApp(&mockSnapshotService{deleteErr: service.ErrSnapshotNotFound})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/snapshots/99", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSnapshotHandler_DeleteInvalidID(t *testing.T) {
	app := snapshotApp(&mockSnapshotService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/snapshots/oops", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSnapshotHandler_DeleteSuccess(t *testing.T) {
	svc := &mockSnapshotService{}
	app := snapshotApp(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/snapshots/7", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(7), svc.lastID)
}
