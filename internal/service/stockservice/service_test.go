package stockservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"stockbuddy/internal/domain"
	apperror "stockbuddy/internal/errors"
	"stockbuddy/internal/notifier"
	"stockbuddy/internal/pkg/logger"
	"stockbuddy/internal/service/stockservice"
)

// MockStockRepository é uma implementação mock da interface StockRepository
type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) AddStock(ctx context.Context, req domain.AddStockRequest, actorID string) (domain.Transaction, error) {
	args := m.Called(ctx, req, actorID)
	return args.Get(0).(domain.Transaction), args.Error(1)
}

func (m *MockStockRepository) TransferStock(ctx context.Context, req domain.TransferRequest, gating domain.Gating, actorID string) (domain.Transaction, error) {
	args := m.Called(ctx, req, gating, actorID)
	return args.Get(0).(domain.Transaction), args.Error(1)
}

func (m *MockStockRepository) GetStockByLocation(ctx context.Context, locationID string) ([]domain.LocationStock, error) {
	args := m.Called(ctx, locationID)
	return args.Get(0).([]domain.LocationStock), args.Error(1)
}

func newService(repo *MockStockRepository) *stockservice.Service {
	mockLogger := logger.NewLogger("debug")
	return stockservice.NewService(repo, notifier.NewLogNotifier(mockLogger), mockLogger)
}

func staffActor() domain.Actor {
	return domain.Actor{ID: uuid.New().String(), Role: domain.RoleStaff}
}

func adminActor() domain.Actor {
	return domain.Actor{ID: uuid.New().String(), Role: domain.RoleAdmin}
}

// TestAddStock_Success testa uma adição de estoque bem-sucedida.
func TestAddStock_Success(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := newService(mockRepo)
	actor := staffActor()

	req := domain.AddStockRequest{
		ItemID:     uuid.New().String(),
		LocationID: uuid.New().String(),
		Quantity:   10,
	}

	expected := domain.Transaction{
		ID:           uuid.New().String(),
		Type:         domain.TransactionTypeAdd,
		ItemID:       req.ItemID,
		ToLocationID: req.LocationID,
		Quantity:     req.Quantity,
		Status:       domain.TransactionStatusApproved,
		CreatedBy:    actor.ID,
		CreatedAt:    time.Now(),
	}

	mockRepo.On("AddStock", mock.Anything, req, actor.ID).Return(expected, nil)

	result, err := svc.AddStock(context.Background(), req, actor)

	assert.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeAdd, result.Type)
	// Adições nunca passam pelo fluxo de aprovação: nascem completas.
	assert.Equal(t, domain.TransactionStatusApproved, result.Status)
	mockRepo.AssertExpectations(t)
}

// TestAddStock_Fail_InvalidQuantity testa a rejeição de quantidade não positiva.
func TestAddStock_Fail_InvalidQuantity(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := newService(mockRepo)

	req := domain.AddStockRequest{
		ItemID:     uuid.New().String(),
		LocationID: uuid.New().String(),
		Quantity:   0,
	}

	_, err := svc.AddStock(context.Background(), req, staffActor())

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "AddStock", mock.Anything, mock.Anything, mock.Anything)
}

// TestAddStock_Fail_InvalidUUID testa a rejeição de IDs que não são UUIDs.
func TestAddStock_Fail_InvalidUUID(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := newService(mockRepo)

	req := domain.AddStockRequest{
		ItemID:     "nao-e-um-uuid",
		LocationID: uuid.New().String(),
		Quantity:   5,
	}

	_, err := svc.AddStock(context.Background(), req, staffActor())

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "AddStock", mock.Anything, mock.Anything, mock.Anything)
}

// TestTransferStock_AdminImmediate testa que transferência de admin é
// classificada como imediata e nasce completa.
func TestTransferStock_AdminImmediate(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := newService(mockRepo)
	actor := adminActor()

	req := domain.TransferRequest{
		ItemID:         uuid.New().String(),
		FromLocationID: uuid.New().String(),
		ToLocationID:   uuid.New().String(),
		Quantity:       3,
	}

	expected := domain.Transaction{
		ID:     uuid.New().String(),
		Type:   domain.TransactionTypeTransfer,
		Status: domain.TransactionStatusApproved,
	}

	mockRepo.On("TransferStock", mock.Anything, req, domain.GatingImmediate, actor.ID).Return(expected, nil)

	result, err := svc.TransferStock(context.Background(), req, actor)

	assert.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusApproved, result.Status)
	mockRepo.AssertExpectations(t)
}

// TestTransferStock_StaffGated testa que transferência de staff nasce pendente.
func TestTransferStock_StaffGated(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := newService(mockRepo)
	actor := staffActor()

	req := domain.TransferRequest{
		ItemID:         uuid.New().String(),
		FromLocationID: uuid.New().String(),
		ToLocationID:   uuid.New().String(),
		Quantity:       3,
	}

	expected := domain.Transaction{
		ID:     uuid.New().String(),
		Type:   domain.TransactionTypeTransfer,
		Status: domain.TransactionStatusPending,
	}

	mockRepo.On("TransferStock", mock.Anything, req, domain.GatingGated, actor.ID).Return(expected, nil)

	result, err := svc.TransferStock(context.Background(), req, actor)

	assert.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusPending, result.Status)
	mockRepo.AssertExpectations(t)
}

// TestTransferStock_Fail_SameLocation testa a rejeição de origem igual ao destino.
func TestTransferStock_Fail_SameLocation(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := newService(mockRepo)

	locationID := uuid.New().String()
	req := domain.TransferRequest{
		ItemID:         uuid.New().String(),
		FromLocationID: locationID,
		ToLocationID:   locationID,
		Quantity:       3,
	}

	_, err := svc.TransferStock(context.Background(), req, adminActor())

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "diferentes")
	mockRepo.AssertNotCalled(t, "TransferStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestTransferStock_Fail_InsufficientStock testa a propagação do erro de
// estoque insuficiente vindo do repositório.
func TestTransferStock_Fail_InsufficientStock(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := newService(mockRepo)
	actor := staffActor()

	req := domain.TransferRequest{
		ItemID:         uuid.New().String(),
		FromLocationID: uuid.New().String(),
		ToLocationID:   uuid.New().String(),
		Quantity:       50,
	}

	mockRepo.On("TransferStock", mock.Anything, req, domain.GatingGated, actor.ID).
		Return(domain.Transaction{}, apperror.NewInsufficientStockError("Localização de origem possui 10, solicitado 50."))

	_, err := svc.TransferStock(context.Background(), req, actor)

	assert.Error(t, err)
	assert.IsType(t, &apperror.InsufficientStockError{}, err)
	mockRepo.AssertExpectations(t)
}

// TestGetStockByLocation_Success testa a projeção de estoque por localização.
func TestGetStockByLocation_Success(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := newService(mockRepo)

	locationID := uuid.New().String()
	expected := []domain.LocationStock{
		{ItemID: uuid.New().String(), ItemName: "Cabo HDMI", Quantity: 2, Threshold: 5, Status: domain.StockStatusLow},
		{ItemID: uuid.New().String(), ItemName: "Mouse USB", Quantity: 30, Threshold: 5, Status: domain.StockStatusSufficient},
	}

	mockRepo.On("GetStockByLocation", mock.Anything, locationID).Return(expected, nil)

	result, err := svc.GetStockByLocation(context.Background(), locationID)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, domain.StockStatusLow, result[0].Status)
	mockRepo.AssertExpectations(t)
}

// TestGetStockByLocation_Fail_InvalidUUID testa a rejeição de ID inválido.
func TestGetStockByLocation_Fail_InvalidUUID(t *testing.T) {
	mockRepo := new(MockStockRepository)
	svc := newService(mockRepo)

	_, err := svc.GetStockByLocation(context.Background(), "abc")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "GetStockByLocation", mock.Anything, mock.Anything)
}
