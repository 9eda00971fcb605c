package repairservice_test

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
	"stockbuddy/internal/service/repairservice"
)

// MockRepairRepository é uma implementação mock da interface RepairRepository
type MockRepairRepository struct {
	mock.Mock
}

func (m *MockRepairRepository) FindByID(ctx context.Context, id string) (domain.RepairTicket, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.RepairTicket), args.Error(1)
}

func (m *MockRepairRepository) ListTickets(ctx context.Context) ([]domain.RepairTicket, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.RepairTicket), args.Error(1)
}

// MockMovementRepository é uma implementação mock da interface MovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) SendForRepair(ctx context.Context, req domain.RepairSendRequest, actorID string) (domain.RepairTicket, domain.Transaction, error) {
	args := m.Called(ctx, req, actorID)
	return args.Get(0).(domain.RepairTicket), args.Get(1).(domain.Transaction), args.Error(2)
}

func (m *MockMovementRepository) ReturnFromRepair(ctx context.Context, ticket domain.RepairTicket, locationID, note, actorID string) (domain.RepairTicket, domain.Transaction, error) {
	args := m.Called(ctx, ticket, locationID, note, actorID)
	return args.Get(0).(domain.RepairTicket), args.Get(1).(domain.Transaction), args.Error(2)
}

func newService(repairs *MockRepairRepository, movement *MockMovementRepository) *repairservice.Service {
	mockLogger := logger.NewLogger("debug")
	return repairservice.NewService(repairs, movement, notifier.NewLogNotifier(mockLogger), mockLogger)
}

func sentTicket() domain.RepairTicket {
	return domain.RepairTicket{
		ID:         uuid.New().String(),
		ItemID:     uuid.New().String(),
		LocationID: uuid.New().String(),
		Quantity:   2,
		VendorName: "Assistência XYZ",
		Status:     domain.RepairStatusSent,
		CreatedBy:  uuid.New().String(),
		CreatedAt:  time.Now(),
	}
}

// TestSendForRepair_Success testa o envio bem-sucedido de um lote para conserto.
func TestSendForRepair_Success(t *testing.T) {
	mockRepairs := new(MockRepairRepository)
	mockMovement := new(MockMovementRepository)
	svc := newService(mockRepairs, mockMovement)

	actor := domain.Actor{ID: uuid.New().String(), Role: domain.RoleStaff}
	req := domain.RepairSendRequest{
		ItemID:     uuid.New().String(),
		LocationID: uuid.New().String(),
		Quantity:   2,
		VendorName: "Assistência XYZ",
	}

	ticket := sentTicket()
	transaction := domain.Transaction{
		ID:     uuid.New().String(),
		Type:   domain.TransactionTypeRepairOut,
		Status: domain.TransactionStatusApproved,
	}

	mockMovement.On("SendForRepair", mock.Anything, req, actor.ID).Return(ticket, transaction, nil)

	result, err := svc.SendForRepair(context.Background(), req, actor)

	assert.NoError(t, err)
	assert.Equal(t, domain.RepairStatusSent, result.Status)
	mockMovement.AssertExpectations(t)
}

// TestSendForRepair_Fail_MissingVendor testa a rejeição sem nome do fornecedor.
func TestSendForRepair_Fail_MissingVendor(t *testing.T) {
	mockRepairs := new(MockRepairRepository)
	mockMovement := new(MockMovementRepository)
	svc := newService(mockRepairs, mockMovement)

	req := domain.RepairSendRequest{
		ItemID:     uuid.New().String(),
		LocationID: uuid.New().String(),
		Quantity:   2,
		VendorName: "   ",
	}

	_, err := svc.SendForRepair(context.Background(), req, domain.Actor{ID: uuid.New().String(), Role: domain.RoleStaff})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockMovement.AssertNotCalled(t, "SendForRepair", mock.Anything, mock.Anything, mock.Anything)
}

// TestSendForRepair_Fail_InsufficientStock testa a propagação do erro de
// estoque insuficiente vindo do composite.
func TestSendForRepair_Fail_InsufficientStock(t *testing.T) {
	mockRepairs := new(MockRepairRepository)
	mockMovement := new(MockMovementRepository)
	svc := newService(mockRepairs, mockMovement)

	actor := domain.Actor{ID: uuid.New().String(), Role: domain.RoleStaff}
	req := domain.RepairSendRequest{
		ItemID:     uuid.New().String(),
		LocationID: uuid.New().String(),
		Quantity:   99,
		VendorName: "Assistência XYZ",
	}

	mockMovement.On("SendForRepair", mock.Anything, req, actor.ID).
		Return(domain.RepairTicket{}, domain.Transaction{}, apperror.NewInsufficientStockError("Localização possui 2, solicitado envio de 99 para conserto."))

	_, err := svc.SendForRepair(context.Background(), req, actor)

	assert.Error(t, err)
	assert.IsType(t, &apperror.InsufficientStockError{}, err)
	mockMovement.AssertExpectations(t)
}

// TestReturnFromRepair_Success testa o retorno bem-sucedido, inclusive para
// uma localização diferente da de envio.
func TestReturnFromRepair_Success(t *testing.T) {
	mockRepairs := new(MockRepairRepository)
	mockMovement := new(MockMovementRepository)
	svc := newService(mockRepairs, mockMovement)

	actor := domain.Actor{ID: uuid.New().String(), Role: domain.RoleStaff}
	ticket := sentTicket()
	otherLocation := uuid.New().String()

	returned := ticket
	returned.Status = domain.RepairStatusReturned
	now := time.Now()
	returned.ReturnedDate = &now

	transaction := domain.Transaction{
		ID:   uuid.New().String(),
		Type: domain.TransactionTypeRepairIn,
	}

	req := domain.RepairReturnRequest{RepairTicketID: ticket.ID, LocationID: otherLocation, Note: "consertado"}

	mockRepairs.On("FindByID", mock.Anything, ticket.ID).Return(ticket, nil)
	mockMovement.On("ReturnFromRepair", mock.Anything, ticket, otherLocation, "consertado", actor.ID).Return(returned, transaction, nil)

	result, err := svc.ReturnFromRepair(context.Background(), req, actor)

	assert.NoError(t, err)
	assert.Equal(t, domain.RepairStatusReturned, result.Status)
	assert.NotNil(t, result.ReturnedDate)
	mockRepairs.AssertExpectations(t)
	mockMovement.AssertExpectations(t)
}

// TestReturnFromRepair_Fail_AlreadyReturned testa que um ticket já retornado
// falha com Conflict e não credita nada.
func TestReturnFromRepair_Fail_AlreadyReturned(t *testing.T) {
	mockRepairs := new(MockRepairRepository)
	mockMovement := new(MockMovementRepository)
	svc := newService(mockRepairs, mockMovement)

	ticket := sentTicket()
	ticket.Status = domain.RepairStatusReturned

	req := domain.RepairReturnRequest{RepairTicketID: ticket.ID, LocationID: uuid.New().String()}

	mockRepairs.On("FindByID", mock.Anything, ticket.ID).Return(ticket, nil)

	_, err := svc.ReturnFromRepair(context.Background(), req, domain.Actor{ID: uuid.New().String(), Role: domain.RoleStaff})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	mockMovement.AssertNotCalled(t, "ReturnFromRepair", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestReturnFromRepair_Fail_NotFound testa o retorno de um ticket inexistente.
func TestReturnFromRepair_Fail_NotFound(t *testing.T) {
	mockRepairs := new(MockRepairRepository)
	mockMovement := new(MockMovementRepository)
	svc := newService(mockRepairs, mockMovement)

	ticketID := uuid.New().String()
	req := domain.RepairReturnRequest{RepairTicketID: ticketID, LocationID: uuid.New().String()}

	mockRepairs.On("FindByID", mock.Anything, ticketID).
		Return(domain.RepairTicket{}, apperror.NewNotFoundError("Ticket de conserto não existe."))

	_, err := svc.ReturnFromRepair(context.Background(), req, domain.Actor{ID: uuid.New().String(), Role: domain.RoleStaff})

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepairs.AssertExpectations(t)
}

// TestListRepairTickets_Success testa a listagem de tickets.
func TestListRepairTickets_Success(t *testing.T) {
	mockRepairs := new(MockRepairRepository)
	mockMovement := new(MockMovementRepository)
	svc := newService(mockRepairs, mockMovement)

	expected := []domain.RepairTicket{sentTicket(), sentTicket()}
	mockRepairs.On("ListTickets", mock.Anything).Return(expected, nil)

	result, err := svc.ListRepairTickets(context.Background())

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	mockRepairs.AssertExpectations(t)
}
