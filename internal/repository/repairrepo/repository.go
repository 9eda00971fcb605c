package repairrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stockbuddy/internal/domain"
	"stockbuddy/internal/errors"
	"stockbuddy/internal/pkg/logger"
)

// RepairRepository é a camada de leitura dos tickets de conserto.
// As transições do ticket (criação em 'sent', flip para 'returned')
// acontecem nos composites do stockrepo, junto com o débito/crédito.
type RepairRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewRepairRepository cria e retorna uma nova instância do Repositório de Conserto.
func NewRepairRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *RepairRepository {
	return &RepairRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// FindByID busca um ticket de conserto pelo ID.
func (r *RepairRepository) FindByID(ctx context.Context, id string) (domain.RepairTicket, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var t domain.RepairTicket
	var serial, note sql.NullString
	var returnedDate sql.NullTime

	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT id, item_id, location_id, quantity, vendor_name, serial_number,
		        note, status, returned_date, created_by, created_at
		 FROM repair_tickets WHERE id = $1`, id,
	).Scan(
		&t.ID, &t.ItemID, &t.LocationID, &t.Quantity, &t.VendorName, &serial,
		&note, &t.Status, &returnedDate, &t.CreatedBy, &t.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return domain.RepairTicket{}, errors.NewNotFoundError(fmt.Sprintf("Ticket de conserto %s não existe.", id))
	}
	if err != nil {
		return domain.RepairTicket{}, errors.NewDBError("Falha ao buscar ticket de conserto", err)
	}

	t.SerialNumber = serial.String
	t.Note = note.String
	if returnedDate.Valid {
		rd := returnedDate.Time
		t.ReturnedDate = &rd
	}
	return t, nil
}

// ListTickets retorna todos os tickets, mais recentes primeiro, com
// identidades de item, localização e criador resolvidas para exibição.
func (r *RepairRepository) ListTickets(ctx context.Context) ([]domain.RepairTicket, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout,
		`SELECT rt.id, rt.item_id, rt.location_id, rt.quantity, rt.vendor_name,
		        rt.serial_number, rt.note, rt.status, rt.returned_date,
		        rt.created_by, rt.created_at,
		        i.name, i.sku, l.name, u.name
		 FROM repair_tickets rt
		 JOIN items i ON i.id = rt.item_id
		 JOIN locations l ON l.id = rt.location_id
		 JOIN users u ON u.id = rt.created_by
		 ORDER BY rt.created_at DESC`,
	)
	if err != nil {
		return nil, errors.NewDBError("Falha ao listar tickets de conserto", err)
	}
	defer rows.Close()

	tickets := []domain.RepairTicket{}
	for rows.Next() {
		var t domain.RepairTicket
		var serial, note sql.NullString
		var returnedDate sql.NullTime

		if err := rows.Scan(
			&t.ID, &t.ItemID, &t.LocationID, &t.Quantity, &t.VendorName,
			&serial, &note, &t.Status, &returnedDate,
			&t.CreatedBy, &t.CreatedAt,
			&t.ItemName, &t.ItemSKU, &t.LocationName, &t.CreatedByName,
		); err != nil {
			return nil, errors.NewDBError("Falha ao mapear ticket de conserto", err)
		}

		t.SerialNumber = serial.String
		t.Note = note.String
		if returnedDate.Valid {
			rd := returnedDate.Time
			t.ReturnedDate = &rd
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar tickets de conserto", err)
	}

	return tickets, nil
}
