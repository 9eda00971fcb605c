package approvalservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"stockbuddy/internal/domain"
	apperror "stockbuddy/internal/errors"
	"stockbuddy/internal/notifier"
	"stockbuddy/internal/pkg/logger"
)

// LedgerRepository é o contrato de leitura do ledger usado pelo fluxo de aprovação.
type LedgerRepository interface {
	FindByID(ctx context.Context, id string) (domain.Transaction, error)
	ListPendingByType(ctx context.Context, txType domain.TransactionType) ([]domain.Transaction, error)
}

// MovementRepository é o subconjunto do repositório de estoque que o fluxo
// de aprovação usa: criação de descartes pendentes e resolução atômica.
type MovementRepository interface {
	InsertPendingDisposal(ctx context.Context, req domain.DisposalRequest, actorID string) (domain.Transaction, error)
	ResolveTransaction(ctx context.Context, t domain.Transaction, approved bool, approverID string) (domain.Transaction, error)
}

// Service implementa o fluxo de aprovação: pending -> {approved, rejected}.
// Vale para DISPOSE incondicionalmente e para TRANSFER criado por não-admin.
type Service struct {
	ledger   LedgerRepository
	movement MovementRepository
	notifier notifier.Notifier
	logger   logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Aprovação.
func NewService(ledger LedgerRepository, movement MovementRepository, notifier notifier.Notifier, logger logger.Logger) *Service {
	return &Service{ledger: ledger, movement: movement, notifier: notifier, logger: logger}
}

// RequestDisposal registra um pedido de descarte pendente.
// A disponibilidade é checada (read-only); NENHUM estoque muda aqui —
// o débito só acontece em ResolveDisposal com aprovação.
func (s *Service) RequestDisposal(ctx context.Context, req domain.DisposalRequest, actor domain.Actor) (domain.Transaction, error) {
	s.logger.Debug("Iniciando pedido de descarte no serviço.", map[string]interface{}{
		"item_id": req.ItemID, "location_id": req.LocationID, "quantity": req.Quantity,
	})

	if req.ItemID == "" || req.LocationID == "" {
		return domain.Transaction{}, apperror.NewValidationError("item_id e location_id são obrigatórios.")
	}
	if _, err := uuid.Parse(req.ItemID); err != nil {
		return domain.Transaction{}, apperror.NewValidationError("O campo item_id deve ser um UUID válido.")
	}
	if _, err := uuid.Parse(req.LocationID); err != nil {
		return domain.Transaction{}, apperror.NewValidationError("O campo location_id deve ser um UUID válido.")
	}
	if req.Quantity <= 0 {
		return domain.Transaction{}, apperror.NewValidationError("A quantidade deve ser positiva.")
	}

	created, err := s.movement.InsertPendingDisposal(ctx, req, actor.ID)
	if err != nil {
		return domain.Transaction{}, err
	}

	s.notifier.TransactionCreated(ctx, created)
	s.logger.Info("Pedido de descarte submetido para aprovação.", map[string]interface{}{
		"transaction_id": created.ID,
	})
	return created, nil
}

// ResolveDisposal resolve um pedido de descarte pendente.
// Aprovado: o débito é aplicado atomicamente com o flip de status (com
// re-validação de disponibilidade sob o lock do item). Rejeitado: nenhum
// efeito de estoque. Resolver uma transação já resolvida falha com Conflict
// e não aplica efeito nenhum.
func (s *Service) ResolveDisposal(ctx context.Context, req domain.ResolveRequest, actor domain.Actor) (domain.Transaction, error) {
	return s.resolve(ctx, req, domain.TransactionTypeDispose, actor)
}

// ResolveTransfer resolve uma transferência pendente (criada por não-admin),
// com o mesmo contrato de ResolveDisposal: na aprovação aplica o par
// débito/crédito da transferência; na rejeição, nada muda.
func (s *Service) ResolveTransfer(ctx context.Context, req domain.ResolveRequest, actor domain.Actor) (domain.Transaction, error) {
	return s.resolve(ctx, req, domain.TransactionTypeTransfer, actor)
}

func (s *Service) resolve(ctx context.Context, req domain.ResolveRequest, txType domain.TransactionType, actor domain.Actor) (domain.Transaction, error) {
	s.logger.Debug("Iniciando resolução de transação no serviço.", map[string]interface{}{
		"transaction_id": req.TransactionID, "type": string(txType), "approved": req.Approved,
	})

	if req.TransactionID == "" {
		return domain.Transaction{}, apperror.NewValidationError("transaction_id é obrigatório.")
	}
	if _, err := uuid.Parse(req.TransactionID); err != nil {
		return domain.Transaction{}, apperror.NewValidationError("O campo transaction_id deve ser um UUID válido.")
	}

	t, err := s.ledger.FindByID(ctx, req.TransactionID)
	if err != nil {
		return domain.Transaction{}, err
	}

	// Uma transação de outro tipo não é um pedido resolvível deste fluxo.
	if t.Type != txType {
		return domain.Transaction{}, apperror.NewNotFoundError(
			fmt.Sprintf("Transação %s não é do tipo %s.", t.ID, txType))
	}
	if t.IsResolved() {
		return domain.Transaction{}, apperror.NewConflictError(
			fmt.Sprintf("Transação %s já foi resolvida (status %s).", t.ID, t.Status))
	}

	// A checagem acima é uma pré-validação para erros rápidos; a garantia de
	// idempotência real é o UPDATE guardado dentro de ResolveTransaction.
	resolved, err := s.movement.ResolveTransaction(ctx, t, req.Approved, actor.ID)
	if err != nil {
		return domain.Transaction{}, err
	}

	s.notifier.TransactionResolved(ctx, resolved)
	s.logger.Info("Transação resolvida com sucesso.", map[string]interface{}{
		"transaction_id": resolved.ID, "status": string(resolved.Status), "approved_by": actor.ID,
	})
	return resolved, nil
}

// ListPending retorna as transações pendentes de um tipo, mais recentes
// primeiro, com identidades resolvidas para exibição.
func (s *Service) ListPending(ctx context.Context, txType domain.TransactionType) ([]domain.Transaction, error) {
	if txType != domain.TransactionTypeDispose && txType != domain.TransactionTypeTransfer {
		return nil, apperror.NewValidationError("Apenas DISPOSE e TRANSFER possuem transações pendentes.")
	}

	pending, err := s.ledger.ListPendingByType(ctx, txType)
	if err != nil {
		s.logger.Error("Falha ao listar transações pendentes no repositório.", err)
		return nil, err
	}
	return pending, nil
}
