package itemservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"stockbuddy/internal/domain"
	apperror "stockbuddy/internal/errors"
	"stockbuddy/internal/pkg/logger"
	"stockbuddy/internal/service/itemservice"
)

// MockItemRepository é uma implementação mock da interface ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Save(ctx context.Context, item domain.Item) (domain.Item, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(domain.Item), args.Error(1)
}

func (m *MockItemRepository) FindByID(ctx context.Context, id string) (domain.Item, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Item), args.Error(1)
}

func (m *MockItemRepository) FindAll(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Item), args.Error(1)
}

func (m *MockItemRepository) Update(ctx context.Context, item domain.Item) (domain.Item, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(domain.Item), args.Error(1)
}

func newService(repo *MockItemRepository) *itemservice.Service {
	return itemservice.NewService(repo, logger.NewLogger("debug"))
}

// TestCreateItem_Success testa a criação bem-sucedida de um item.
func TestCreateItem_Success(t *testing.T) {
	mockRepo := new(MockItemRepository)
	svc := newService(mockRepo)

	actor := domain.Actor{ID: uuid.New().String(), Role: domain.RoleAdmin}
	item := domain.Item{
		SKU:       "CAB-HDMI-01",
		Name:      "Cabo HDMI 2m",
		Unit:      "un",
		Threshold: 5,
	}

	expected := item
	expected.ID = uuid.New().String()
	expected.Status = domain.ItemStatusActive
	expected.Version = 1
	expected.CreatedBy = actor.ID
	expected.CreatedAt = time.Now()

	mockRepo.On("Save", mock.Anything, mock.AnythingOfType("domain.Item")).Return(expected, nil)

	result, err := svc.CreateItem(context.Background(), item, actor)

	assert.NoError(t, err)
	assert.Equal(t, domain.ItemStatusActive, result.Status)
	assert.Equal(t, 1, result.Version)
	mockRepo.AssertExpectations(t)
}

// TestCreateItem_Fail_EmptyName testa a rejeição de item sem nome.
func TestCreateItem_Fail_EmptyName(t *testing.T) {
	mockRepo := new(MockItemRepository)
	svc := newService(mockRepo)

	item := domain.Item{SKU: "CAB-HDMI-01", Name: "  "}

	_, err := svc.CreateItem(context.Background(), item, domain.Actor{ID: uuid.New().String()})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// TestCreateItem_Fail_DuplicateSKU testa a propagação do erro de unicidade.
func TestCreateItem_Fail_DuplicateSKU(t *testing.T) {
	mockRepo := new(MockItemRepository)
	svc := newService(mockRepo)

	item := domain.Item{SKU: "CAB-HDMI-01", Name: "Cabo HDMI 2m", Unit: "un"}

	mockRepo.On("Save", mock.Anything, mock.AnythingOfType("domain.Item")).
		Return(domain.Item{}, apperror.NewValidationError("SKU ou barcode já existe."))

	_, err := svc.CreateItem(context.Background(), item, domain.Actor{ID: uuid.New().String()})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "já existe")
	mockRepo.AssertExpectations(t)
}

// TestListItems_Success testa que a listagem filtra apenas itens ativos.
func TestListItems_Success(t *testing.T) {
	mockRepo := new(MockItemRepository)
	svc := newService(mockRepo)

	expected := []domain.Item{
		{ID: uuid.New().String(), Name: "Cabo HDMI 2m", TotalStock: 12, StockStatus: domain.StockStatusSufficient},
	}

	mockRepo.On("FindAll", mock.Anything, domain.ItemFilter{ActiveOnly: true}).Return(expected, nil)

	result, err := svc.ListItems(context.Background())

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	mockRepo.AssertExpectations(t)
}

// TestSearchItems_Fail_EmptyQuery testa a rejeição de busca sem termo.
func TestSearchItems_Fail_EmptyQuery(t *testing.T) {
	mockRepo := new(MockItemRepository)
	svc := newService(mockRepo)

	_, err := svc.SearchItems(context.Background(), "  ")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
}

// TestUpdateItem_Fail_InvalidStatus testa a rejeição de status desconhecido.
func TestUpdateItem_Fail_InvalidStatus(t *testing.T) {
	mockRepo := new(MockItemRepository)
	svc := newService(mockRepo)

	item := domain.Item{
		ID:     uuid.New().String(),
		Name:   "Cabo HDMI 2m",
		Status: domain.ItemStatus("archived"),
	}

	_, err := svc.UpdateItem(context.Background(), item)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// TestUpdateItem_Success testa a atualização de metadados, incluindo a
// desativação do item.
func TestUpdateItem_Success(t *testing.T) {
	mockRepo := new(MockItemRepository)
	svc := newService(mockRepo)

	item := domain.Item{
		ID:     uuid.New().String(),
		Name:   "Cabo HDMI 2m",
		Unit:   "un",
		Status: domain.ItemStatusInactive,
	}

	mockRepo.On("Update", mock.Anything, item).Return(item, nil)

	result, err := svc.UpdateItem(context.Background(), item)

	assert.NoError(t, err)
	assert.Equal(t, domain.ItemStatusInactive, result.Status)
	mockRepo.AssertExpectations(t)
}

// TestGetItemByID_Fail_InvalidUUID testa a rejeição de ID inválido.
func TestGetItemByID_Fail_InvalidUUID(t *testing.T) {
	mockRepo := new(MockItemRepository)
	svc := newService(mockRepo)

	_, err := svc.GetItemByID(context.Background(), "123")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}
