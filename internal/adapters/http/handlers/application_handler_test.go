package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gcub-intake/internal/adapters/persistence/repositories"
	"gcub-intake/internal/core/services"
)

// newTestApp wires the application routes over a sqlmock-backed database
func newTestApp(t *testing.T) (*fiber.App, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	appService := services.NewApplicationService(
		db,
		repositories.NewApplicationRepository(db),
		repositories.NewSequenceRepository(db),
		repositories.NewStatusLogRepository(db),
		repositories.NewBranchRepository(db),
		repositories.NewProductRepository(db),
	)
	handler := NewApplicationHandler(appService)

	app := fiber.New()
	app.Post("/applications", handler.Create)
	app.Get("/applications", handler.List)
	app.Get("/applications/:id", handler.GetByID)
	app.Put("/applications/:id/status", handler.UpdateStatus)

	return app, mock
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestCreateApplicationHandlerValidation(t *testing.T) {
	app, mock := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/applications",
		`{"application_type":"mortgage","name":"ab","email":"nope","phone":"1"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body struct {
		Success bool              `json:"success"`
		Fields  map[string]string `json:"fields"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Contains(t, body.Fields, "application_type")
	assert.Contains(t, body.Fields, "email")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateApplicationHandlerBadBody(t *testing.T) {
	app, mock := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/applications", `{not json`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListHandlerRejectsUnknownStatus(t *testing.T) {
	app, mock := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/applications?status=pending", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetApplicationHandlerNotFound(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery("SELECT (.+) FROM `applications` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	resp := doJSON(t, app, http.MethodGet, "/applications/404", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetApplicationHandlerBadID(t *testing.T) {
	app, mock := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/applications/abc", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusHandlerRequiresStatus(t *testing.T) {
	app, mock := newTestApp(t)

	resp := doJSON(t, app, http.MethodPut, "/applications/11/status", `{"notes":"x"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusHandlerIllegalTransition(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `applications` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "application_id", "branch_id", "product_id", "status"}).
			AddRow(11, "GCUB-01-05-0001", 1, 5, "approved"))
	mock.ExpectQuery("SELECT (.+) FROM `branches` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Head Office"))
	mock.ExpectQuery("SELECT (.+) FROM `products` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(5, "Personal Loan"))
	mock.ExpectRollback()

	resp := doJSON(t, app, http.MethodPut, "/applications/11/status", `{"status":"open"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
