package approvalservice_test

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
	"stockbuddy/internal/service/approvalservice"
)

// MockLedgerRepository é uma implementação mock da interface LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) FindByID(ctx context.Context, id string) (domain.Transaction, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) ListPendingByType(ctx context.Context, txType domain.TransactionType) ([]domain.Transaction, error) {
	args := m.Called(ctx, txType)
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// MockMovementRepository é uma implementação mock da interface MovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) InsertPendingDisposal(ctx context.Context, req domain.DisposalRequest, actorID string) (domain.Transaction, error) {
	args := m.Called(ctx, req, actorID)
	return args.Get(0).(domain.Transaction), args.Error(1)
}

func (m *MockMovementRepository) ResolveTransaction(ctx context.Context, t domain.Transaction, approved bool, approverID string) (domain.Transaction, error) {
	args := m.Called(ctx, t, approved, approverID)
	return args.Get(0).(domain.Transaction), args.Error(1)
}

func newService(ledger *MockLedgerRepository, movement *MockMovementRepository) *approvalservice.Service {
	mockLogger := logger.NewLogger("debug")
	return approvalservice.NewService(ledger, movement, notifier.NewLogNotifier(mockLogger), mockLogger)
}

func pendingDisposal() domain.Transaction {
	return domain.Transaction{
		ID:             uuid.New().String(),
		Type:           domain.TransactionTypeDispose,
		ItemID:         uuid.New().String(),
		FromLocationID: uuid.New().String(),
		Quantity:       4,
		Reason:         "damaged",
		Status:         domain.TransactionStatusPending,
		CreatedBy:      uuid.New().String(),
		CreatedAt:      time.Now(),
	}
}

// TestRequestDisposal_Success testa um pedido de descarte bem-sucedido.
func TestRequestDisposal_Success(t *testing.T) {
	mockLedger := new(MockLedgerRepository)
	mockMovement := new(MockMovementRepository)
	svc := newService(mockLedger, mockMovement)

	actor := domain.Actor{ID: uuid.New().String(), Role: domain.RoleStaff}
	req := domain.DisposalRequest{
		ItemID:     uuid.New().String(),
		LocationID: uuid.New().String(),
		Quantity:   4,
		Reason:     "damaged",
	}

	expected := pendingDisposal()
	mockMovement.On("InsertPendingDisposal", mock.Anything, req, actor.ID).Return(expected, nil)

	result, err := svc.RequestDisposal(context.Background(), req, actor)

	assert.NoError(t, err)
	// Descartes nascem sempre pendentes, inclusive para admins.
	assert.Equal(t, domain.TransactionStatusPending, result.Status)
	mockMovement.AssertExpectations(t)
}

// TestRequestDisposal_Fail_InvalidQuantity testa a rejeição de quantidade não positiva.
func TestRequestDisposal_Fail_InvalidQuantity(t *testing.T) {
	mockLedger := new(MockLedgerRepository)
	mockMovement := new(MockMovementRepository)
	svc := newService(mockLedger, mockMovement)

	req := domain.DisposalRequest{
		ItemID:     uuid.New().String(),
		LocationID: uuid.New().String(),
		Quantity:   -1,
	}

	_, err := svc.RequestDisposal(context.Background(), req, domain.Actor{ID: uuid.New().String(), Role: domain.RoleStaff})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockMovement.AssertNotCalled(t, "InsertPendingDisposal", mock.Anything, mock.Anything, mock.Anything)
}

// TestResolveDisposal_Approve testa a aprovação de um descarte pendente.
func TestResolveDisposal_Approve(t *testing.T) {
	mockLedger := new(MockLedgerRepository)
	mockMovement := new(MockMovementRepository)
	svc := newService(mockLedger, mockMovement)

	admin := domain.Actor{ID: uuid.New().String(), Role: domain.RoleAdmin}
	pending := pendingDisposal()

	resolved := pending
	resolved.Status = domain.TransactionStatusApproved
	resolved.ApprovedBy = admin.ID
	now := time.Now()
	resolved.ApprovedAt = &now

	mockLedger.On("FindByID", mock.Anything, pending.ID).Return(pending, nil)
	mockMovement.On("ResolveTransaction", mock.Anything, pending, true, admin.ID).Return(resolved, nil)

	result, err := svc.ResolveDisposal(context.Background(), domain.ResolveRequest{TransactionID: pending.ID, Approved: true}, admin)

	assert.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusApproved, result.Status)
	assert.Equal(t, admin.ID, result.ApprovedBy)
	assert.NotNil(t, result.ApprovedAt)
	mockLedger.AssertExpectations(t)
	mockMovement.AssertExpectations(t)
}

// TestResolveDisposal_Reject testa a rejeição de um descarte pendente.
func TestResolveDisposal_Reject(t *testing.T) {
	mockLedger := new(MockLedgerRepository)
	mockMovement := new(MockMovementRepository)
	svc := newService(mockLedger, mockMovement)

	admin := domain.Actor{ID: uuid.New().String(), Role: domain.RoleAdmin}
	pending := pendingDisposal()

	resolved := pending
	resolved.Status = domain.TransactionStatusRejected
	resolved.ApprovedBy = admin.ID

	mockLedger.On("FindByID", mock.Anything, pending.ID).Return(pending, nil)
	mockMovement.On("ResolveTransaction", mock.Anything, pending, false, admin.ID).Return(resolved, nil)

	result, err := svc.ResolveDisposal(context.Background(), domain.ResolveRequest{TransactionID: pending.ID, Approved: false}, admin)

	assert.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusRejected, result.Status)
	mockLedger.AssertExpectations(t)
	mockMovement.AssertExpectations(t)
}

// TestResolveDisposal_Fail_AlreadyResolved testa que resolver uma transação
// já resolvida falha com Conflict e não toca o repositório de movimentação.
func TestResolveDisposal_Fail_AlreadyResolved(t *testing.T) {
	mockLedger := new(MockLedgerRepository)
	mockMovement := new(MockMovementRepository)
	svc := newService(mockLedger, mockMovement)

	admin := domain.Actor{ID: uuid.New().String(), Role: domain.RoleAdmin}
	resolved := pendingDisposal()
	resolved.Status = domain.TransactionStatusApproved

	mockLedger.On("FindByID", mock.Anything, resolved.ID).Return(resolved, nil)

	_, err := svc.ResolveDisposal(context.Background(), domain.ResolveRequest{TransactionID: resolved.ID, Approved: false}, admin)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	mockMovement.AssertNotCalled(t, "ResolveTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestResolveDisposal_Fail_WrongType testa que uma transação de outro tipo
// não é resolvível pelo fluxo de descarte.
func TestResolveDisposal_Fail_WrongType(t *testing.T) {
	mockLedger := new(MockLedgerRepository)
	mockMovement := new(MockMovementRepository)
	svc := newService(mockLedger, mockMovement)

	admin := domain.Actor{ID: uuid.New().String(), Role: domain.RoleAdmin}
	transfer := pendingDisposal()
	transfer.Type = domain.TransactionTypeTransfer

	mockLedger.On("FindByID", mock.Anything, transfer.ID).Return(transfer, nil)

	_, err := svc.ResolveDisposal(context.Background(), domain.ResolveRequest{TransactionID: transfer.ID, Approved: true}, admin)

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockMovement.AssertNotCalled(t, "ResolveTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestResolveTransfer_Approve testa a aprovação de uma transferência pendente.
func TestResolveTransfer_Approve(t *testing.T) {
	mockLedger := new(MockLedgerRepository)
	mockMovement := new(MockMovementRepository)
	svc := newService(mockLedger, mockMovement)

	admin := domain.Actor{ID: uuid.New().String(), Role: domain.RoleAdmin}
	pending := pendingDisposal()
	pending.Type = domain.TransactionTypeTransfer
	pending.ToLocationID = uuid.New().String()

	resolved := pending
	resolved.Status = domain.TransactionStatusApproved

	mockLedger.On("FindByID", mock.Anything, pending.ID).Return(pending, nil)
	mockMovement.On("ResolveTransaction", mock.Anything, pending, true, admin.ID).Return(resolved, nil)

	result, err := svc.ResolveTransfer(context.Background(), domain.ResolveRequest{TransactionID: pending.ID, Approved: true}, admin)

	assert.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusApproved, result.Status)
	mockLedger.AssertExpectations(t)
	mockMovement.AssertExpectations(t)
}

// TestResolveTransfer_Fail_ConcurrentResolution testa a propagação do Conflict
// do UPDATE guardado quando outra resolução chega primeiro.
func TestResolveTransfer_Fail_ConcurrentResolution(t *testing.T) {
	mockLedger := new(MockLedgerRepository)
	mockMovement := new(MockMovementRepository)
	svc := newService(mockLedger, mockMovement)

	admin := domain.Actor{ID: uuid.New().String(), Role: domain.RoleAdmin}
	pending := pendingDisposal()
	pending.Type = domain.TransactionTypeTransfer

	mockLedger.On("FindByID", mock.Anything, pending.ID).Return(pending, nil)
	mockMovement.On("ResolveTransaction", mock.Anything, pending, true, admin.ID).
		Return(domain.Transaction{}, apperror.NewConflictError("A transação já foi resolvida por outra operação."))

	_, err := svc.ResolveTransfer(context.Background(), domain.ResolveRequest{TransactionID: pending.ID, Approved: true}, admin)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	mockMovement.AssertExpectations(t)
}

// TestListPending_Success testa a listagem de pendências por tipo.
func TestListPending_Success(t *testing.T) {
	mockLedger := new(MockLedgerRepository)
	mockMovement := new(MockMovementRepository)
	svc := newService(mockLedger, mockMovement)

	expected := []domain.Transaction{pendingDisposal(), pendingDisposal()}
	mockLedger.On("ListPendingByType", mock.Anything, domain.TransactionTypeDispose).Return(expected, nil)

	result, err := svc.ListPending(context.Background(), domain.TransactionTypeDispose)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	mockLedger.AssertExpectations(t)
}

// TestListPending_Fail_InvalidType testa que apenas DISPOSE e TRANSFER têm pendências.
func TestListPending_Fail_InvalidType(t *testing.T) {
	mockLedger := new(MockLedgerRepository)
	mockMovement := new(MockMovementRepository)
	svc := newService(mockLedger, mockMovement)

	_, err := svc.ListPending(context.Background(), domain.TransactionTypeAdd)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockLedger.AssertNotCalled(t, "ListPendingByType", mock.Anything, mock.Anything)
}
