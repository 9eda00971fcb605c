package stockrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stockbuddy/internal/domain"
	"stockbuddy/internal/errors"
)

// Composites do ciclo de conserto. Vivem no repositório de estoque porque
// débito/crédito, ticket e entrada no ledger precisam da MESMA transação SQL
// (e do mesmo lock de item) para serem uma unidade atômica.

// SendForRepair debita a localização, cria o RepairTicket em 'sent' e grava
// a transação REPAIR_OUT — tudo ou nada.
func (r *StockRepository) SendForRepair(ctx context.Context, req domain.RepairSendRequest, actorID string) (domain.RepairTicket, domain.Transaction, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.RepairTicket{}, domain.Transaction{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	item, err := r.lockItem(ctxTimeout, tx, req.ItemID)
	if err != nil {
		return domain.RepairTicket{}, domain.Transaction{}, err
	}

	available, err := r.quantityAt(ctxTimeout, tx, req.ItemID, req.LocationID)
	if err != nil {
		return domain.RepairTicket{}, domain.Transaction{}, err
	}
	if available < req.Quantity {
		return domain.RepairTicket{}, domain.Transaction{}, errors.NewInsufficientStockError(
			fmt.Sprintf("Localização possui %d, solicitado envio de %d para conserto.", available, req.Quantity))
	}

	if err := r.debit(ctxTimeout, tx, req.ItemID, req.LocationID, req.Quantity); err != nil {
		return domain.RepairTicket{}, domain.Transaction{}, err
	}
	if err := r.bumpVersion(ctxTimeout, tx, item); err != nil {
		return domain.RepairTicket{}, domain.Transaction{}, err
	}

	ticket := domain.RepairTicket{
		ID:           uuid.NewString(),
		ItemID:       req.ItemID,
		LocationID:   req.LocationID,
		Quantity:     req.Quantity,
		VendorName:   req.VendorName,
		SerialNumber: req.SerialNumber,
		Note:         req.Note,
		Status:       domain.RepairStatusSent,
		CreatedBy:    actorID,
		CreatedAt:    time.Now(),
	}
	_, err = tx.ExecContext(ctxTimeout,
		`INSERT INTO repair_tickets
		   (id, item_id, location_id, quantity, vendor_name, serial_number, note, status, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		ticket.ID, ticket.ItemID, ticket.LocationID, ticket.Quantity,
		ticket.VendorName, nullable(ticket.SerialNumber), nullable(ticket.Note),
		ticket.Status, ticket.CreatedBy, ticket.CreatedAt,
	)
	if err != nil {
		return domain.RepairTicket{}, domain.Transaction{}, errors.NewDBError("Falha ao criar ticket de conserto", err)
	}

	created, err := r.insertTransaction(ctxTimeout, tx, domain.Transaction{
		Type:           domain.TransactionTypeRepairOut,
		ItemID:         req.ItemID,
		FromLocationID: req.LocationID,
		Quantity:       req.Quantity,
		Note:           req.Note,
		VendorName:     req.VendorName,
		SerialNumber:   req.SerialNumber,
		Status:         domain.TransactionStatusApproved,
		CreatedBy:      actorID,
	})
	if err != nil {
		return domain.RepairTicket{}, domain.Transaction{}, err
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return domain.RepairTicket{}, domain.Transaction{}, errors.NewDBError("Falha ao commitar envio para conserto", commitErr)
	}

	r.invalidateLocations(ctx, req.LocationID)
	r.logger.Info("Item enviado para conserto.", map[string]interface{}{
		"ticket_id": ticket.ID, "item_id": req.ItemID, "location_id": req.LocationID,
		"quantity": req.Quantity, "vendor": req.VendorName,
	})
	return ticket, created, nil
}

// ReturnFromRepair credita a localização de retorno (que pode diferir da de
// envio), flipa o ticket sent -> returned e grava a transação REPAIR_IN.
// O flip é um UPDATE guardado por status='sent': zero linhas afetadas
// significa ticket já retornado, e a operação inteira falha com Conflict
// sem creditar nada.
func (r *StockRepository) ReturnFromRepair(ctx context.Context, ticket domain.RepairTicket, locationID, note, actorID string) (domain.RepairTicket, domain.Transaction, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.RepairTicket{}, domain.Transaction{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	item, err := r.lockItem(ctxTimeout, tx, ticket.ItemID)
	if err != nil {
		return domain.RepairTicket{}, domain.Transaction{}, err
	}

	if err := r.credit(ctxTimeout, tx, ticket.ItemID, locationID, ticket.Quantity); err != nil {
		return domain.RepairTicket{}, domain.Transaction{}, err
	}
	if err := r.bumpVersion(ctxTimeout, tx, item); err != nil {
		return domain.RepairTicket{}, domain.Transaction{}, err
	}

	returnedDate := time.Now()
	result, err := tx.ExecContext(ctxTimeout,
		`UPDATE repair_tickets SET status = $2, returned_date = $3
		 WHERE id = $1 AND status = 'sent'`,
		ticket.ID, domain.RepairStatusReturned, returnedDate,
	)
	if err != nil {
		return domain.RepairTicket{}, domain.Transaction{}, errors.NewDBError("Falha ao atualizar ticket de conserto", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return domain.RepairTicket{}, domain.Transaction{}, errors.NewDBError("Falha ao verificar linhas afetadas no ticket", err)
	}
	if rows == 0 {
		return domain.RepairTicket{}, domain.Transaction{}, errors.NewConflictError("O ticket de conserto já foi retornado.")
	}

	created, err := r.insertTransaction(ctxTimeout, tx, domain.Transaction{
		Type:         domain.TransactionTypeRepairIn,
		ItemID:       ticket.ItemID,
		ToLocationID: locationID,
		Quantity:     ticket.Quantity,
		Note:         note,
		Status:       domain.TransactionStatusApproved,
		CreatedBy:    actorID,
	})
	if err != nil {
		return domain.RepairTicket{}, domain.Transaction{}, err
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return domain.RepairTicket{}, domain.Transaction{}, errors.NewDBError("Falha ao commitar retorno de conserto", commitErr)
	}

	r.invalidateLocations(ctx, locationID)

	ticket.Status = domain.RepairStatusReturned
	ticket.ReturnedDate = &returnedDate
	r.logger.Info("Item retornado do conserto.", map[string]interface{}{
		"ticket_id": ticket.ID, "item_id": ticket.ItemID, "location_id": locationID,
	})
	return ticket, created, nil
}
