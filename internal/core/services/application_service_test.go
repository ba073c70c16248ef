package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gcub-intake/internal/adapters/persistence/repositories"
	"gcub-intake/internal/core/domain"
)

// newTestDB opens a gorm connection backed by sqlmock
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
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

	return db, mock
}

func newApplicationService(db *gorm.DB) *ApplicationService {
	return NewApplicationService(
		db,
		repositories.NewApplicationRepository(db),
		repositories.NewSequenceRepository(db),
		repositories.NewStatusLogRepository(db),
		repositories.NewBranchRepository(db),
		repositories.NewProductRepository(db),
	)
}

func validCreateInput() *CreateApplicationInput {
	return &CreateApplicationInput{
		ApplicationType: "loan",
		ProductID:       5,
		BranchID:        1,
		Name:            "Somchai Jaidee",
		Email:           "somchai@example.com",
		Phone:           "0812345678",
		Actor:           "somchai@example.com",
	}
}

func TestCreateApplicationValidation(t *testing.T) {
	db, mock := newTestDB(t)
	service := newApplicationService(db)

	tests := []struct {
		name    string
		mutate  func(*CreateApplicationInput)
		field   string
	}{
		{"unknown type", func(in *CreateApplicationInput) { in.ApplicationType = "mortgage" }, "application_type"},
		{"missing product", func(in *CreateApplicationInput) { in.ProductID = 0 }, "product_id"},
		{"missing branch", func(in *CreateApplicationInput) { in.BranchID = 0 }, "branch_id"},
		{"short name", func(in *CreateApplicationInput) { in.Name = "ab" }, "name"},
		{"malformed email", func(in *CreateApplicationInput) { in.Email = "not-an-email" }, "email"},
		{"short phone", func(in *CreateApplicationInput) { in.Phone = "123" }, "phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validCreateInput()
			tt.mutate(input)

			_, err := service.Create(context.Background(), input)
			require.Error(t, err)

			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Contains(t, ve.Fields, tt.field)
		})
	}

	// Field validation fails before any database work
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateApplicationInactiveBranch(t *testing.T) {
	db, mock := newTestDB(t)
	service := newApplicationService(db)

	mock.ExpectQuery("SELECT (.+) FROM `branches` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "is_active"}).
			AddRow(1, "HQ", "Head Office", false))

	_, err := service.Create(context.Background(), validCreateInput())
	require.Error(t, err)

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "branch_id")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateApplicationCategoryMismatch(t *testing.T) {
	db, mock := newTestDB(t)
	service := newApplicationService(db)

	mock.ExpectQuery("SELECT (.+) FROM `branches` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "is_active"}).
			AddRow(1, "HQ", "Head Office", true))
	mock.ExpectQuery("SELECT (.+) FROM `products` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "category", "is_active"}).
			AddRow(5, "SAVINGS", "Savings Account", "deposit", true))

	// A loan application against a deposit product is rejected up front
	_, err := service.Create(context.Background(), validCreateInput())
	require.Error(t, err)

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "product_id")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateApplicationDuplicate(t *testing.T) {
	db, mock := newTestDB(t)
	service := newApplicationService(db)

	mock.ExpectQuery("SELECT (.+) FROM `branches` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "is_active"}).
			AddRow(1, "HQ", "Head Office", true))
	mock.ExpectQuery("SELECT (.+) FROM `products` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "category", "is_active"}).
			AddRow(5, "PERSONAL", "Personal Loan", "loan", true))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `applications` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "application_id", "email", "status"}).
			AddRow(11, "GCUB-01-05-0001", "somchai@example.com", "open"))
	mock.ExpectRollback()

	_, err := service.Create(context.Background(), validCreateInput())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicateApplication))

	var dup *DuplicateApplicationError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "GCUB-01-05-0001", dup.Existing.ApplicationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateApplication(t *testing.T) {
	db, mock := newTestDB(t)
	service := newApplicationService(db)

	mock.ExpectQuery("SELECT (.+) FROM `branches` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "is_active"}).
			AddRow(1, "HQ", "Head Office", true))
	mock.ExpectQuery("SELECT (.+) FROM `products` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "category", "is_active"}).
			AddRow(5, "PERSONAL", "Personal Loan", "loan", true))

	mock.ExpectBegin()
	// No active duplicate
	mock.ExpectQuery("SELECT (.+) FROM `applications` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	// Counter row locked and incremented
	mock.ExpectQuery("SELECT (.+) FROM `application_sequences` WHERE (.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "branch_id", "product_id", "last_seq"}).
			AddRow(3, 1, 5, 0))
	mock.ExpectExec("UPDATE `application_sequences` SET ").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `applications`").
		WillReturnResult(sqlmock.NewResult(42, 1))
	// Creation is logged too
	mock.ExpectExec("INSERT INTO `status_logs`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	app, err := service.Create(context.Background(), validCreateInput())
	require.NoError(t, err)
	assert.Equal(t, uint(42), app.ID)
	assert.Equal(t, "GCUB-01-05-0001", app.ApplicationID)
	assert.Equal(t, domain.StatusOpen.String(), app.Status)
	assert.Equal(t, "Personal Loan", app.ProductName)
	require.NotNil(t, app.Branch)
	assert.Equal(t, "Head Office", app.Branch.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateApplicationDeadlockIsRetryable(t *testing.T) {
	db, mock := newTestDB(t)
	service := newApplicationService(db)

	mock.ExpectQuery("SELECT (.+) FROM `branches` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "is_active"}).
			AddRow(1, "HQ", "Head Office", true))
	mock.ExpectQuery("SELECT (.+) FROM `products` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "category", "is_active"}).
			AddRow(5, "PERSONAL", "Personal Loan", "loan", true))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `applications` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT (.+) FROM `application_sequences` WHERE (.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "branch_id", "product_id", "last_seq"}).
			AddRow(3, 1, 5, 0))
	mock.ExpectExec("UPDATE `application_sequences` SET ").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Losing side of a concurrent submission: picked as the deadlock victim
	mock.ExpectExec("INSERT INTO `applications`").
		WillReturnError(&gomysql.MySQLError{
			Number:  1213,
			Message: "Deadlock found when trying to get lock; try restarting transaction",
		})
	mock.ExpectRollback()

	_, err := service.Create(context.Background(), validCreateInput())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateApplicationLockWaitTimeoutIsRetryable(t *testing.T) {
	db, mock := newTestDB(t)
	service := newApplicationService(db)

	mock.ExpectQuery("SELECT (.+) FROM `branches` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "is_active"}).
			AddRow(1, "HQ", "Head Office", true))
	mock.ExpectQuery("SELECT (.+) FROM `products` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "category", "is_active"}).
			AddRow(5, "PERSONAL", "Personal Loan", "loan", true))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `applications` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	// Counter row held by another intake past the lock wait timeout
	mock.ExpectQuery("SELECT (.+) FROM `application_sequences` WHERE (.+)FOR UPDATE").
		WillReturnError(&gomysql.MySQLError{
			Number:  1205,
			Message: "Lock wait timeout exceeded; try restarting transaction",
		})
	mock.ExpectRollback()

	_, err := service.Create(context.Background(), validCreateInput())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusInvalidValue(t *testing.T) {
	db, mock := newTestDB(t)
	service := newApplicationService(db)

	_, err := service.UpdateStatus(context.Background(), 11, &UpdateStatusInput{Status: "done"})
	require.Error(t, err)

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "status")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// expectGetApplication queues the lookup with its relation preloads
func expectGetApplication(mock sqlmock.Sqlmock, status string) {
	mock.ExpectQuery("SELECT (.+) FROM `applications` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "application_id", "branch_id", "product_id", "status"}).
			AddRow(11, "GCUB-01-05-0001", 1, 5, status))
	mock.ExpectQuery("SELECT (.+) FROM `branches` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Head Office"))
	mock.ExpectQuery("SELECT (.+) FROM `products` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(5, "Personal Loan"))
}

func TestUpdateStatus(t *testing.T) {
	db, mock := newTestDB(t)
	service := newApplicationService(db)

	mock.ExpectBegin()
	expectGetApplication(mock, "open")
	mock.ExpectExec("UPDATE `applications` SET (.+) WHERE id = (.+) AND status = ").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `status_logs`").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectCommit()

	// Re-read after commit
	expectGetApplication(mock, "in-progress")

	app, err := service.UpdateStatus(context.Background(), 11, &UpdateStatusInput{
		Status: "in-progress",
		Actor:  "officer.a",
	})
	require.NoError(t, err)
	assert.Equal(t, "in-progress", app.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusIllegalTransition(t *testing.T) {
	db, mock := newTestDB(t)
	service := newApplicationService(db)

	mock.ExpectBegin()
	expectGetApplication(mock, "approved")
	mock.ExpectRollback()

	// approved is terminal: no edge back to open
	_, err := service.UpdateStatus(context.Background(), 11, &UpdateStatusInput{Status: "open"})
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusConflict(t *testing.T) {
	db, mock := newTestDB(t)
	service := newApplicationService(db)

	mock.ExpectBegin()
	expectGetApplication(mock, "open")
	// Guarded update touches nothing: another operator moved the row first
	mock.ExpectExec("UPDATE `applications` SET (.+) WHERE id = (.+) AND status = ").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := service.UpdateStatus(context.Background(), 11, &UpdateStatusInput{Status: "approved"})
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusNotFound(t *testing.T) {
	db, mock := newTestDB(t)
	service := newApplicationService(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `applications` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := service.UpdateStatus(context.Background(), 404, &UpdateStatusInput{Status: "approved"})
	assert.True(t, errors.Is(err, domain.ErrApplicationNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock := newTestDB(t)
	service := newApplicationService(db)

	mock.ExpectQuery("SELECT (.+) FROM `applications` WHERE ").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := service.GetByID(context.Background(), 404)
	assert.True(t, errors.Is(err, domain.ErrApplicationNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRejectsUnknownFilters(t *testing.T) {
	db, mock := newTestDB(t)
	service := newApplicationService(db)

	_, err := service.List(context.Background(), &ListInput{Status: "pending"})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "status")

	_, err = service.List(context.Background(), &ListInput{Type: "mortgage"})
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "type")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPagination(t *testing.T) {
	db, mock := newTestDB(t)
	service := newApplicationService(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `applications`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(45))
	mock.ExpectQuery("SELECT (.+) FROM `applications` (.*)ORDER BY created_at DESC, id DESC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "application_id", "status"}))

	// Out-of-range inputs are clamped
	out, err := service.List(context.Background(), &ListInput{Page: -1, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Page)
	assert.Equal(t, 100, out.Limit)
	assert.Equal(t, int64(45), out.Total)
	assert.Equal(t, 1, out.TotalPages)
	assert.NoError(t, mock.ExpectationsWereMet())
}
