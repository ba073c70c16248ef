package services

import (
	"context"
	"database/sql"
	"errors"
	"net/mail"

	"gcub-intake/internal/adapters/persistence/models"
	"gcub-intake/internal/adapters/persistence/repositories"
	"gcub-intake/internal/core/domain"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// MySQL error numbers for transactions that lost a lock race
const (
	mysqlErrLockDeadlock    = 1213
	mysqlErrLockWaitTimeout = 1205
)

// isRetryableTxError reports whether the transaction failed because it lost
// a serialization race (deadlock victim or lock wait timeout). gorm's
// TranslateError does not cover these, so they are matched by number.
func isRetryableTxError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlErrLockDeadlock || mysqlErr.Number == mysqlErrLockWaitTimeout
	}
	return false
}

// DuplicateApplicationError carries the already-active application that
// blocked a new submission, so the caller can surface it.
type DuplicateApplicationError struct {
	Existing *models.Application
}

func (e *DuplicateApplicationError) Error() string {
	return domain.ErrDuplicateApplication.Error()
}

func (e *DuplicateApplicationError) Is(target error) bool {
	return target == domain.ErrDuplicateApplication
}

// ApplicationService handles intake and lifecycle business logic
type ApplicationService struct {
	db          *gorm.DB
	appRepo     *repositories.ApplicationRepository
	seqRepo     *repositories.SequenceRepository
	logRepo     *repositories.StatusLogRepository
	branchRepo  *repositories.BranchRepository
	productRepo *repositories.ProductRepository
}

// NewApplicationService creates a new application service
func NewApplicationService(
	db *gorm.DB,
	appRepo *repositories.ApplicationRepository,
	seqRepo *repositories.SequenceRepository,
	logRepo *repositories.StatusLogRepository,
	branchRepo *repositories.BranchRepository,
	productRepo *repositories.ProductRepository,
) *ApplicationService {
	return &ApplicationService{
		db:          db,
		appRepo:     appRepo,
		seqRepo:     seqRepo,
		logRepo:     logRepo,
		branchRepo:  branchRepo,
		productRepo: productRepo,
	}
}

// CreateApplicationInput represents create application input
type CreateApplicationInput struct {
	ApplicationType string `json:"application_type"`
	ProductID       uint   `json:"product_id"`
	BranchID        uint   `json:"branch_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Actor           string `json:"-"`
}

// validate checks field formats before any database work
func (in *CreateApplicationInput) validate() *domain.ValidationError {
	ve := domain.NewValidationError()

	if _, err := domain.ParseApplicationType(in.ApplicationType); err != nil {
		ve.Add("application_type", "must be 'deposit' or 'loan'")
	}
	if in.ProductID == 0 {
		ve.Add("product_id", "is required")
	}
	if in.BranchID == 0 {
		ve.Add("branch_id", "is required")
	}
	if len(in.Name) < 3 {
		ve.Add("name", "must be at least 3 characters")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		ve.Add("email", "must be a well-formed email address")
	}
	if len(in.Phone) < 10 {
		ve.Add("phone", "must be at least 10 characters")
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}

// Create runs the full intake sequence: field validation, catalog checks,
// then duplicate check + identifier generation + insert + creation log in
// one serializable transaction. A unique-key race at commit surfaces as
// ErrConflict; create has no durable side effect on failure, so the caller
// may simply retry.
func (s *ApplicationService) Create(ctx context.Context, input *CreateApplicationInput) (*models.Application, error) {
	if ve := input.validate(); ve != nil {
		return nil, ve
	}

	branch, err := s.branchRepo.GetByID(ctx, input.BranchID)
	if err != nil || !branch.IsActive {
		return nil, domain.NewValidationError().Add("branch_id", "must reference an active branch")
	}

	product, err := s.productRepo.GetByID(ctx, input.ProductID)
	if err != nil || !product.IsActive {
		return nil, domain.NewValidationError().Add("product_id", "must reference an active product")
	}
	if product.Category != input.ApplicationType {
		return nil, domain.NewValidationError().Add("product_id", "product category does not match application type")
	}

	app := &models.Application{
		ApplicationType: input.ApplicationType,
		ProductID:       product.ID,
		ProductName:     product.Name,
		BranchID:        branch.ID,
		Name:            input.Name,
		Email:           input.Email,
		Phone:           input.Phone,
		Status:          domain.StatusOpen.String(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.appRepo.WithTx(tx).FindActiveDuplicate(
			ctx, input.ProductID, input.ApplicationType, input.Email, input.Phone)
		if err != nil {
			return err
		}
		if existing != nil {
			return &DuplicateApplicationError{Existing: existing}
		}

		applicationID, err := s.seqRepo.WithTx(tx).Next(ctx, input.BranchID, input.ProductID)
		if err != nil {
			return err
		}
		app.ApplicationID = applicationID

		if err := s.appRepo.WithTx(tx).Create(ctx, app); err != nil {
			return err
		}

		// Creation is logged too (old_status NULL -> open), so replaying
		// the log always reconstructs the current status.
		return s.logRepo.WithTx(tx).Create(ctx, &models.StatusLog{
			ApplicationID: app.ID,
			OldStatus:     nil,
			NewStatus:     domain.StatusOpen.String(),
			ChangedBy:     input.Actor,
		})
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})

	if err != nil {
		// The losing side of a concurrent submission surfaces either as a
		// duplicate key on application_id or as a deadlock/lock-wait error
		// under SERIALIZABLE. Create commits nothing on failure, so both
		// are safe to retry.
		if errors.Is(err, gorm.ErrDuplicatedKey) || isRetryableTxError(err) {
			return nil, domain.ErrConflict
		}
		return nil, err
	}

	app.Branch = branch
	app.Product = product
	return app, nil
}

// GetByID gets an application by ID
func (s *ApplicationService) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

// ListInput represents list input
type ListInput struct {
	Page     int
	Limit    int
	Status   string
	Type     string
	BranchID uint
	Search   string
}

// ListOutput represents list output
type ListOutput struct {
	Applications []*models.ApplicationResponse `json:"applications"`
	Total        int64                         `json:"total"`
	Page         int                           `json:"page"`
	Limit        int                           `json:"limit"`
	TotalPages   int                           `json:"total_pages"`
}

// List lists applications with filters and pagination
func (s *ApplicationService) List(ctx context.Context, input *ListInput) (*ListOutput, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	if input.Status != "" {
		if _, err := domain.ParseStatus(input.Status); err != nil {
			return nil, domain.NewValidationError().Add("status", "unknown status filter")
		}
	}
	if input.Type != "" {
		if _, err := domain.ParseApplicationType(input.Type); err != nil {
			return nil, domain.NewValidationError().Add("type", "unknown application type filter")
		}
	}

	filters := &repositories.ListFilters{
		Status:          input.Status,
		ApplicationType: input.Type,
		BranchID:        input.BranchID,
		Search:          input.Search,
	}

	total, err := s.appRepo.Count(ctx, filters)
	if err != nil {
		return nil, err
	}

	offset := (input.Page - 1) * input.Limit
	apps, err := s.appRepo.List(ctx, filters, offset, input.Limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		responses = append(responses, app.ToResponse())
	}

	totalPages := int(total) / input.Limit
	if int(total)%input.Limit > 0 {
		totalPages++
	}

	return &ListOutput{
		Applications: responses,
		Total:        total,
		Page:         input.Page,
		Limit:        input.Limit,
		TotalPages:   totalPages,
	}, nil
}

// UpdateStatusInput represents status change input
type UpdateStatusInput struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
	Actor  string `json:"-"`
}

// UpdateStatus moves an application along a legal workflow edge. The row
// update and the audit log append commit in one transaction; a guarded
// UPDATE detects a concurrent operator and fails with ErrConflict.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id uint, input *UpdateStatusInput) (*models.Application, error) {
	newStatus, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, domain.NewValidationError().Add("status", "must be one of open, in-progress, approved, rejected")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		app, err := s.appRepo.WithTx(tx).GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrApplicationNotFound
			}
			return err
		}

		oldStatus := domain.Status(app.Status)
		if !oldStatus.CanTransitionTo(newStatus) {
			return domain.ErrInvalidTransition
		}

		affected, err := s.appRepo.WithTx(tx).UpdateStatus(
			ctx, id, oldStatus.String(), newStatus.String(), input.Notes)
		if err != nil {
			return err
		}
		if affected == 0 {
			// Someone moved the application between our read and write.
			return domain.ErrConflict
		}

		old := oldStatus.String()
		return s.logRepo.WithTx(tx).Create(ctx, &models.StatusLog{
			ApplicationID: id,
			OldStatus:     &old,
			NewStatus:     newStatus.String(),
			Notes:         input.Notes,
			ChangedBy:     input.Actor,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// GetHistory gets the status history of an application, newest first
func (s *ApplicationService) GetHistory(ctx context.Context, id uint) ([]*models.StatusLog, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.logRepo.ListByApplicationID(ctx, id)
}
