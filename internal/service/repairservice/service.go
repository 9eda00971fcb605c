package repairservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"stockbuddy/internal/domain"
	apperror "stockbuddy/internal/errors"
	"stockbuddy/internal/notifier"
	"stockbuddy/internal/pkg/logger"
)

// RepairRepository é o contrato de leitura dos tickets de conserto.
type RepairRepository interface {
	FindByID(ctx context.Context, id string) (domain.RepairTicket, error)
	ListTickets(ctx context.Context) ([]domain.RepairTicket, error)
}

// MovementRepository é o subconjunto do repositório de estoque usado pelo
// ciclo de conserto: os composites débito+ticket+REPAIR_OUT e
// crédito+flip+REPAIR_IN.
type MovementRepository interface {
	SendForRepair(ctx context.Context, req domain.RepairSendRequest, actorID string) (domain.RepairTicket, domain.Transaction, error)
	ReturnFromRepair(ctx context.Context, ticket domain.RepairTicket, locationID, note, actorID string) (domain.RepairTicket, domain.Transaction, error)
}

// Service implementa o ciclo de conserto: sent -> returned (terminal).
type Service struct {
	repairs  RepairRepository
	movement MovementRepository
	notifier notifier.Notifier
	logger   logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Conserto.
func NewService(repairs RepairRepository, movement MovementRepository, notifier notifier.Notifier, logger logger.Logger) *Service {
	return &Service{repairs: repairs, movement: movement, notifier: notifier, logger: logger}
}

// SendForRepair envia um lote para conserto: débito imediato da localização,
// ticket em 'sent' e transação REPAIR_OUT — uma unidade atômica.
func (s *Service) SendForRepair(ctx context.Context, req domain.RepairSendRequest, actor domain.Actor) (domain.RepairTicket, error) {
	s.logger.Debug("Iniciando envio para conserto no serviço.", map[string]interface{}{
		"item_id": req.ItemID, "location_id": req.LocationID, "quantity": req.Quantity,
	})

	if req.ItemID == "" || req.LocationID == "" {
		return domain.RepairTicket{}, apperror.NewValidationError("item_id e location_id são obrigatórios.")
	}
	if _, err := uuid.Parse(req.ItemID); err != nil {
		return domain.RepairTicket{}, apperror.NewValidationError("O campo item_id deve ser um UUID válido.")
	}
	if _, err := uuid.Parse(req.LocationID); err != nil {
		return domain.RepairTicket{}, apperror.NewValidationError("O campo location_id deve ser um UUID válido.")
	}
	if req.Quantity <= 0 {
		return domain.RepairTicket{}, apperror.NewValidationError("A quantidade deve ser positiva.")
	}
	if strings.TrimSpace(req.VendorName) == "" {
		return domain.RepairTicket{}, apperror.NewValidationError("O nome do fornecedor é obrigatório.")
	}

	ticket, transaction, err := s.movement.SendForRepair(ctx, req, actor.ID)
	if err != nil {
		return domain.RepairTicket{}, err
	}

	s.notifier.TransactionCreated(ctx, transaction)
	s.logger.Info("Item enviado para conserto com sucesso.", map[string]interface{}{
		"ticket_id": ticket.ID, "transaction_id": transaction.ID,
	})
	return ticket, nil
}

// ReturnFromRepair processa o retorno de um ticket: credita a localização de
// retorno (que pode diferir da de envio) pela quantidade do ticket, flipa o
// ticket para 'returned' e grava a transação REPAIR_IN.
func (s *Service) ReturnFromRepair(ctx context.Context, req domain.RepairReturnRequest, actor domain.Actor) (domain.RepairTicket, error) {
	s.logger.Debug("Iniciando retorno de conserto no serviço.", map[string]interface{}{
		"ticket_id": req.RepairTicketID, "location_id": req.LocationID,
	})

	if req.RepairTicketID == "" || req.LocationID == "" {
		return domain.RepairTicket{}, apperror.NewValidationError("repair_ticket_id e location_id são obrigatórios.")
	}
	if _, err := uuid.Parse(req.RepairTicketID); err != nil {
		return domain.RepairTicket{}, apperror.NewValidationError("O campo repair_ticket_id deve ser um UUID válido.")
	}
	if _, err := uuid.Parse(req.LocationID); err != nil {
		return domain.RepairTicket{}, apperror.NewValidationError("O campo location_id deve ser um UUID válido.")
	}

	ticket, err := s.repairs.FindByID(ctx, req.RepairTicketID)
	if err != nil {
		return domain.RepairTicket{}, err
	}
	if ticket.Status != domain.RepairStatusSent {
		return domain.RepairTicket{}, apperror.NewConflictError(
			fmt.Sprintf("Ticket %s já foi processado (status %s).", ticket.ID, ticket.Status))
	}

	// Pré-validação para erro rápido; a garantia real contra retorno duplo é
	// o UPDATE guardado por status='sent' dentro do composite.
	returned, transaction, err := s.movement.ReturnFromRepair(ctx, ticket, req.LocationID, req.Note, actor.ID)
	if err != nil {
		return domain.RepairTicket{}, err
	}

	s.notifier.TransactionCreated(ctx, transaction)
	s.logger.Info("Item retornado do conserto com sucesso.", map[string]interface{}{
		"ticket_id": returned.ID, "transaction_id": transaction.ID,
	})
	return returned, nil
}

// ListRepairTickets retorna todos os tickets, mais recentes primeiro.
func (s *Service) ListRepairTickets(ctx context.Context) ([]domain.RepairTicket, error) {
	tickets, err := s.repairs.ListTickets(ctx)
	if err != nil {
		s.logger.Error("Falha ao listar tickets de conserto no repositório.", err)
		return nil, err
	}
	return tickets, nil
}
