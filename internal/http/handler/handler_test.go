package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"archecho/internal/model"
	"archecho/internal/service"
	serviceMocks "archecho/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestQueryProjects(t *testing.T) {
	mockSvc := new(serviceMocks.MockDiscoveryService)
	app := fiber.New()
	app.Get("/projects", QueryProjects(mockSvc))

	t.Run("parses filters and lowercases search terms", func(t *testing.T) {
		expected := []model.Project{{ID: "A-00001", Name: "모던 주택"}}
		mockSvc.On("Query", mock.Anything, model.QueryFilters{
			ProjectType:    "단독주택",
			AreaType:       "all",
			TotalFloorArea: "all",
			SearchTerms:    []string{"modern", "주택"},
		}).Return(expected).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/projects?q=Modern+%EC%A3%BC%ED%83%9D&project_type=%EB%8B%A8%EB%8F%85%EC%A3%BC%ED%83%9D", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Data  []model.Project `json:"data"`
			Total int             `json:"total"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, 1, body.Total)
		require.Len(t, body.Data, 1)
		assert.Equal(t, "A-00001", body.Data[0].ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no params default to unrestricted", func(t *testing.T) {
		mockSvc.On("Query", mock.Anything, model.QueryFilters{
			ProjectType:    "all",
			AreaType:       "all",
			TotalFloorArea: "all",
			SearchTerms:    []string{},
		}).Return([]model.Project{}).Once()

		req := httptest.NewRequest(http.MethodGet, "/projects", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("diagnostic row still returns 200", func(t *testing.T) {
		mockSvc.On("Query", mock.Anything, mock.Anything).Return([]model.Project{
			{ID: "DEBUG_QUERY_FAILED", Name: "DB 쿼리 실패"},
		}).Once()

		req := httptest.NewRequest(http.MethodGet, "/projects?q=x", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestGetProject(t *testing.T) {
	mockSvc := new(serviceMocks.MockProjectService)
	app := fiber.New()
	app.Get("/projects/:id", GetProject(mockSvc))

	t.Run("success", func(t *testing.T) {
		expected := &model.Project{ID: "A-00001", Name: "모던 주택", Files: []model.ProjectFile{
			{ID: "A-00001-file-0", Name: "plan.pdf", URL: "https://signed/plan.pdf"},
		}}
		mockSvc.On("GetWithFiles", mock.Anything, "A-00001").Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/projects/A-00001", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Project
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "A-00001", result.ID)
		assert.Len(t, result.Files, 1)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("GetWithFiles", mock.Anything, "A-99999").Return(nil, service.ErrProjectNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/projects/A-99999", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("GetWithFiles", mock.Anything, "A-00002").Return(nil, errors.New("db error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/projects/A-00002", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestAnalyzeProject(t *testing.T) {
	mockSvc := new(serviceMocks.MockConceptService)
	app := fiber.New()
	app.Post("/projects/:id/analyze", AnalyzeProject(mockSvc))

	post := func(id, body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/projects/"+id+"/analyze", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("success", func(t *testing.T) {
		mockSvc.On("AnalyzeObject", mock.Anything, "A-00001", "A-00001/brief.pdf").
			Return([]string{"모던", "친환경"}, nil).Once()

		resp := post("A-00001", `{"storage_path":"A-00001/brief.pdf"}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string][]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, []string{"모던", "친환경"}, body["design_concepts"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing storage path", func(t *testing.T) {
		mockSvc.On("AnalyzeObject", mock.Anything, "A-00001", "").
			Return(nil, service.ErrStoragePathRequired).Once()

		resp := post("A-00001", `{}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "STORAGE_PATH_REQUIRED", res.Error.Code)
	})

	t.Run("unknown project", func(t *testing.T) {
		mockSvc.On("AnalyzeObject", mock.Anything, "A-99999", "x.pdf").
			Return(nil, service.ErrProjectNotFound).Once()

		resp := post("A-99999", `{"storage_path":"x.pdf"}`)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("AnalyzeObject", mock.Anything, "A-00001", "x.pdf").
			Return(nil, errors.New("model unavailable")).Once()

		resp := post("A-00001", `{"storage_path":"x.pdf"}`)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestUploadFile(t *testing.T) {
	mockSvc := new(serviceMocks.MockLinkService)
	app := fiber.New()
	app.Post("/files", UploadFile(mockSvc))

	t.Run("success", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, _ := writer.CreateFormFile("file", "A-00001_photo.jpg")
		part.Write([]byte("binary"))
		writer.Close()

		expected := &service.LinkReport{Scanned: 1, Linked: 1, Batches: 1}
		mockSvc.On("Upload", mock.Anything, mock.Anything, "A-00001_photo.jpg", mock.Anything, mock.Anything).
			Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/files", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result service.LinkReport
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, 1, result.Linked)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/files", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, _ := writer.CreateFormFile("file", "A-00001_photo.jpg")
		part.Write([]byte("binary"))
		writer.Close()

		mockSvc.On("Upload", mock.Anything, mock.Anything, "A-00001_photo.jpg", mock.Anything, mock.Anything).
			Return(nil, errors.New("upload failed")).Once()

		req := httptest.NewRequest(http.MethodPost, "/files", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetFilters(t *testing.T) {
	app := fiber.New()
	app.Get("/filters", GetFilters())

	req := httptest.NewRequest(http.MethodGet, "/filters", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string][]string
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, model.ProjectTypes, body["project_types"])
	assert.Equal(t, model.AreaTypes, body["area_types"])
	assert.Equal(t, model.FloorAreaOptions, body["floor_area_options"])
	assert.Equal(t, model.DesignConceptOptions, body["design_concept_options"])
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	RegisterRoutes(app, nil, nil, Services{
		Discovery: new(serviceMocks.MockDiscoveryService),
		Projects:  new(serviceMocks.MockProjectService),
		Concepts:  new(serviceMocks.MockConceptService),
		Linker:    new(serviceMocks.MockLinkService),
	})

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})
}
