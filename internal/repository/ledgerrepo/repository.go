package ledgerrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stockbuddy/internal/domain"
	"stockbuddy/internal/errors"
	"stockbuddy/internal/pkg/logger"
)

// LedgerRepository é a camada de leitura do ledger de transações.
// As escritas do ledger acontecem nos composites do stockrepo, dentro da
// mesma transação SQL que muta o estoque — aqui só existem consultas.
type LedgerRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewLedgerRepository cria e retorna uma nova instância do Repositório do Ledger.
func NewLedgerRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *LedgerRepository {
	return &LedgerRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const transactionColumns = `
	t.id, t.type, t.item_id, t.from_location_id, t.to_location_id, t.quantity,
	t.reason, t.note, t.vendor_name, t.serial_number, t.status,
	t.created_by, t.created_at, t.approved_by, t.approved_at`

// scanTransaction mapeia uma linha (com colunas opcionais NULL) para o domínio.
func scanTransaction(scanner interface{ Scan(dest ...any) error }) (domain.Transaction, error) {
	var t domain.Transaction
	var fromLoc, toLoc, reason, note, vendor, serial, approvedBy sql.NullString
	var approvedAt sql.NullTime

	err := scanner.Scan(
		&t.ID, &t.Type, &t.ItemID, &fromLoc, &toLoc, &t.Quantity,
		&reason, &note, &vendor, &serial, &t.Status,
		&t.CreatedBy, &t.CreatedAt, &approvedBy, &approvedAt,
	)
	if err != nil {
		return domain.Transaction{}, err
	}

	t.FromLocationID = fromLoc.String
	t.ToLocationID = toLoc.String
	t.Reason = reason.String
	t.Note = note.String
	t.VendorName = vendor.String
	t.SerialNumber = serial.String
	t.ApprovedBy = approvedBy.String
	if approvedAt.Valid {
		at := approvedAt.Time
		t.ApprovedAt = &at
	}
	return t, nil
}

// FindByID busca uma transação pelo ID.
func (r *LedgerRepository) FindByID(ctx context.Context, id string) (domain.Transaction, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	row := r.DB.QueryRowContext(ctxTimeout,
		`SELECT `+transactionColumns+` FROM transactions t WHERE t.id = $1`, id)

	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return domain.Transaction{}, errors.NewNotFoundError(fmt.Sprintf("Transação %s não existe.", id))
	}
	if err != nil {
		return domain.Transaction{}, errors.NewDBError("Falha ao buscar transação", err)
	}
	return t, nil
}

// ListPendingByType retorna as transações pendentes de um tipo, mais
// recentes primeiro, com identidades de item, localização e criador
// resolvidas para exibição.
func (r *LedgerRepository) ListPendingByType(ctx context.Context, txType domain.TransactionType) ([]domain.Transaction, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout,
		`SELECT `+transactionColumns+`,
		        i.name, i.sku, fl.name, tl.name, u.name
		 FROM transactions t
		 JOIN items i ON i.id = t.item_id
		 LEFT JOIN locations fl ON fl.id = t.from_location_id
		 LEFT JOIN locations tl ON tl.id = t.to_location_id
		 JOIN users u ON u.id = t.created_by
		 WHERE t.type = $1 AND t.status = 'pending'
		 ORDER BY t.created_at DESC`,
		txType,
	)
	if err != nil {
		return nil, errors.NewDBError("Falha ao listar transações pendentes", err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		var t domain.Transaction
		var fromLoc, toLoc, reason, note, vendor, serial, approvedBy sql.NullString
		var approvedAt sql.NullTime
		var fromLocName, toLocName sql.NullString

		if err := rows.Scan(
			&t.ID, &t.Type, &t.ItemID, &fromLoc, &toLoc, &t.Quantity,
			&reason, &note, &vendor, &serial, &t.Status,
			&t.CreatedBy, &t.CreatedAt, &approvedBy, &approvedAt,
			&t.ItemName, &t.ItemSKU, &fromLocName, &toLocName, &t.CreatedByName,
		); err != nil {
			return nil, errors.NewDBError("Falha ao mapear transação pendente", err)
		}

		t.FromLocationID = fromLoc.String
		t.ToLocationID = toLoc.String
		t.Reason = reason.String
		t.Note = note.String
		t.VendorName = vendor.String
		t.SerialNumber = serial.String
		t.FromLocationName = fromLocName.String
		t.ToLocationName = toLocName.String
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar transações pendentes", err)
	}

	return transactions, nil
}
