package stockrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stockbuddy/internal/domain"
	"stockbuddy/internal/errors"
	"stockbuddy/internal/pkg/cache"
	"stockbuddy/internal/pkg/logger"
)

// StockRepository é a camada de persistência do Movement Engine.
// Todas as movimentações compostas (débito/crédito + entrada no ledger +
// ticket de conserto) executam em UMA transação SQL que trava a linha do
// item com SELECT ... FOR UPDATE. A linha do item é a unidade de exclusão
// mútua: duas movimentações concorrentes sobre o mesmo item serializam aqui,
// e a checagem de disponibilidade acontece sob o lock.
type StockRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewStockRepository cria e retorna uma nova instância do Repositório de Estoque.
func NewStockRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *StockRepository {
	return &StockRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Chave de cache da projeção de estoque por localização.
const locationStockCacheKey = "stock:location:%s"

// itemRow é o estado mínimo do item lido sob o lock.
type itemRow struct {
	ID      string
	Status  domain.ItemStatus
	Version int
}

// lockItem trava a linha do item para a duração da transação SQL e valida
// que o item existe e está ativo. Itens inativos são excluídos de qualquer
// operação que afete o ledger.
func (r *StockRepository) lockItem(ctx context.Context, tx *sql.Tx, itemID string) (itemRow, error) {
	var row itemRow
	err := tx.QueryRowContext(ctx,
		`SELECT id, status, version FROM items WHERE id = $1 FOR UPDATE`,
		itemID,
	).Scan(&row.ID, &row.Status, &row.Version)

	if err == sql.ErrNoRows {
		return itemRow{}, errors.NewNotFoundError(fmt.Sprintf("Item %s não existe.", itemID))
	}
	if err != nil {
		return itemRow{}, errors.NewDBError("Falha ao travar o item para movimentação", err)
	}
	if row.Status != domain.ItemStatusActive {
		return itemRow{}, errors.NewValidationError(fmt.Sprintf("Item %s está inativo e não pode ser movimentado.", itemID))
	}
	return row, nil
}

// quantityAt lê a quantidade do item na localização dentro da transação SQL
// (zero se a localização não tiver entrada).
func (r *StockRepository) quantityAt(ctx context.Context, tx *sql.Tx, itemID, locationID string) (int, error) {
	var qty int
	err := tx.QueryRowContext(ctx,
		`SELECT quantity FROM item_locations WHERE item_id = $1 AND location_id = $2`,
		itemID, locationID,
	).Scan(&qty)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, errors.NewDBError("Falha ao ler quantidade da localização", err)
	}
	return qty, nil
}

// credit incrementa (ou cria) a entrada da localização.
// Entradas com quantidade zero persistem: nunca removemos a linha.
func (r *StockRepository) credit(ctx context.Context, tx *sql.Tx, itemID, locationID string, quantity int) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO item_locations (item_id, location_id, quantity)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (item_id, location_id) DO UPDATE SET quantity = item_locations.quantity + EXCLUDED.quantity`,
		itemID, locationID, quantity,
	)
	if err != nil {
		return errors.NewDBError("Falha ao creditar estoque na localização", err)
	}
	return nil
}

// debit decrementa a entrada da localização. A disponibilidade já deve ter
// sido checada sob o lock do item — o CHECK de não-negatividade do schema é
// a última linha de defesa.
func (r *StockRepository) debit(ctx context.Context, tx *sql.Tx, itemID, locationID string, quantity int) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE item_locations SET quantity = quantity - $3
		 WHERE item_id = $1 AND location_id = $2`,
		itemID, locationID, quantity,
	)
	if err != nil {
		return errors.NewDBError("Falha ao debitar estoque da localização", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas no débito", err)
	}
	if rows == 0 {
		return errors.NewInsufficientStockError(fmt.Sprintf("Localização %s não possui entrada de estoque para o item %s.", locationID, itemID))
	}
	return nil
}

// bumpVersion incrementa a versão do item (OCC). Com o FOR UPDATE a checagem
// de versão não deveria falhar; se falhar, algo contornou o lock e tratamos
// como conflito de concorrência.
func (r *StockRepository) bumpVersion(ctx context.Context, tx *sql.Tx, item itemRow) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE items SET version = version + 1, updated_at = $2 WHERE id = $1 AND version = $3`,
		item.ID, time.Now(), item.Version,
	)
	if err != nil {
		return errors.NewDBError("Falha ao atualizar versão do item", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas na versão", err)
	}
	if rows == 0 {
		return errors.NewConflictError("O item foi modificado por outra operação. Tente novamente.")
	}
	return nil
}

// insertTransaction grava a entrada do ledger dentro da transação SQL.
func (r *StockRepository) insertTransaction(ctx context.Context, tx *sql.Tx, t domain.Transaction) (domain.Transaction, error) {
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()

	_, err := tx.ExecContext(ctx,
		`INSERT INTO transactions
		   (id, type, item_id, from_location_id, to_location_id, quantity,
		    reason, note, vendor_name, serial_number, status, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		t.ID, t.Type, t.ItemID,
		nullable(t.FromLocationID), nullable(t.ToLocationID), t.Quantity,
		nullable(t.Reason), nullable(t.Note), nullable(t.VendorName), nullable(t.SerialNumber),
		t.Status, t.CreatedBy, t.CreatedAt,
	)
	if err != nil {
		return domain.Transaction{}, errors.NewDBError("Falha ao gravar transação no ledger", err)
	}
	return t, nil
}

// nullable converte string vazia em NULL para colunas opcionais.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// invalidateLocations remove do cache as projeções das localizações tocadas.
// Falha de cache não é falha da operação (o TTL corrige eventualmente).
func (r *StockRepository) invalidateLocations(ctx context.Context, locationIDs ...string) {
	keys := make([]string, 0, len(locationIDs))
	for _, id := range locationIDs {
		if id != "" {
			keys = append(keys, fmt.Sprintf(locationStockCacheKey, id))
		}
	}
	if err := r.Cache.Delete(ctx, keys...); err != nil {
		r.logger.Warn("Falha ao invalidar cache de estoque por localização.", map[string]interface{}{"error": err.Error()})
	}
}

// AddStock credita a quantidade na localização e grava a transação ADD
// (completa) como uma unidade atômica.
func (r *StockRepository) AddStock(ctx context.Context, req domain.AddStockRequest, actorID string) (domain.Transaction, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Transaction{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	item, err := r.lockItem(ctxTimeout, tx, req.ItemID)
	if err != nil {
		return domain.Transaction{}, err
	}

	if err := r.credit(ctxTimeout, tx, req.ItemID, req.LocationID, req.Quantity); err != nil {
		return domain.Transaction{}, err
	}
	if err := r.bumpVersion(ctxTimeout, tx, item); err != nil {
		return domain.Transaction{}, err
	}

	created, err := r.insertTransaction(ctxTimeout, tx, domain.Transaction{
		Type:         domain.TransactionTypeAdd,
		ItemID:       req.ItemID,
		ToLocationID: req.LocationID,
		Quantity:     req.Quantity,
		Note:         req.Note,
		Status:       domain.TransactionStatusApproved,
		CreatedBy:    actorID,
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return domain.Transaction{}, errors.NewDBError("Falha ao commitar adição de estoque", commitErr)
	}

	r.invalidateLocations(ctx, req.LocationID)
	r.logger.Info("Estoque adicionado.", map[string]interface{}{"item_id": req.ItemID, "location_id": req.LocationID, "quantity": req.Quantity})
	return created, nil
}

// TransferStock registra uma transferência entre localizações.
// Para transferências imediatas (admin), o débito/crédito acontece na mesma
// transação SQL. Para transferências gated, APENAS a entrada pendente do
// ledger é gravada — o estoque só muda em ApproveTransaction.
// A disponibilidade na origem é exigida em ambos os casos.
func (r *StockRepository) TransferStock(ctx context.Context, req domain.TransferRequest, gating domain.Gating, actorID string) (domain.Transaction, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Transaction{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	item, err := r.lockItem(ctxTimeout, tx, req.ItemID)
	if err != nil {
		return domain.Transaction{}, err
	}

	available, err := r.quantityAt(ctxTimeout, tx, req.ItemID, req.FromLocationID)
	if err != nil {
		return domain.Transaction{}, err
	}
	if available < req.Quantity {
		return domain.Transaction{}, errors.NewInsufficientStockError(
			fmt.Sprintf("Localização de origem possui %d, solicitado %d.", available, req.Quantity))
	}

	if gating == domain.GatingImmediate {
		if err := r.debit(ctxTimeout, tx, req.ItemID, req.FromLocationID, req.Quantity); err != nil {
			return domain.Transaction{}, err
		}
		if err := r.credit(ctxTimeout, tx, req.ItemID, req.ToLocationID, req.Quantity); err != nil {
			return domain.Transaction{}, err
		}
		if err := r.bumpVersion(ctxTimeout, tx, item); err != nil {
			return domain.Transaction{}, err
		}
	}

	created, err := r.insertTransaction(ctxTimeout, tx, domain.Transaction{
		Type:           domain.TransactionTypeTransfer,
		ItemID:         req.ItemID,
		FromLocationID: req.FromLocationID,
		ToLocationID:   req.ToLocationID,
		Quantity:       req.Quantity,
		Note:           req.Note,
		Status:         gating.InitialStatus(),
		CreatedBy:      actorID,
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return domain.Transaction{}, errors.NewDBError("Falha ao commitar transferência", commitErr)
	}

	if gating == domain.GatingImmediate {
		r.invalidateLocations(ctx, req.FromLocationID, req.ToLocationID)
	}
	r.logger.Info("Transferência registrada.", map[string]interface{}{
		"item_id": req.ItemID, "from": req.FromLocationID, "to": req.ToLocationID,
		"quantity": req.Quantity, "status": string(created.Status),
	})
	return created, nil
}

// InsertPendingDisposal valida a disponibilidade (checagem read-only, sob o
// lock do item para uma leitura consistente) e grava a transação DISPOSE
// pendente. Nenhum estoque é mutado aqui.
func (r *StockRepository) InsertPendingDisposal(ctx context.Context, req domain.DisposalRequest, actorID string) (domain.Transaction, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Transaction{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	if _, err := r.lockItem(ctxTimeout, tx, req.ItemID); err != nil {
		return domain.Transaction{}, err
	}

	available, err := r.quantityAt(ctxTimeout, tx, req.ItemID, req.LocationID)
	if err != nil {
		return domain.Transaction{}, err
	}
	if available < req.Quantity {
		return domain.Transaction{}, errors.NewInsufficientStockError(
			fmt.Sprintf("Localização possui %d, solicitado descarte de %d.", available, req.Quantity))
	}

	created, err := r.insertTransaction(ctxTimeout, tx, domain.Transaction{
		Type:           domain.TransactionTypeDispose,
		ItemID:         req.ItemID,
		FromLocationID: req.LocationID,
		Quantity:       req.Quantity,
		Reason:         req.Reason,
		Note:           req.Note,
		Status:         domain.TransactionStatusPending,
		CreatedBy:      actorID,
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return domain.Transaction{}, errors.NewDBError("Falha ao commitar pedido de descarte", commitErr)
	}

	r.logger.Info("Pedido de descarte registrado (pendente).", map[string]interface{}{
		"item_id": req.ItemID, "location_id": req.LocationID, "quantity": req.Quantity,
	})
	return created, nil
}

// ResolveTransaction resolve uma transação pendente (DISPOSE ou TRANSFER).
// Na aprovação, o efeito de estoque é aplicado na mesma transação SQL que
// flipa o status; a disponibilidade é re-validada sob o lock do item (um
// descarte aprovado depois de o estoque ter sido consumido falha com
// InsufficientStock em vez de deixar a quantidade negativa). Na rejeição,
// nenhum estoque muda. Em ambos os casos o flip de status é um UPDATE
// guardado por status='pending': zero linhas afetadas significa que outra
// resolução chegou primeiro, e retornamos Conflict — é isso que torna a
// resolução idempotente contra submissão dupla.
func (r *StockRepository) ResolveTransaction(ctx context.Context, t domain.Transaction, approved bool, approverID string) (domain.Transaction, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Transaction{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	touched := []string{}

	if approved {
		item, err := r.lockItem(ctxTimeout, tx, t.ItemID)
		if err != nil {
			return domain.Transaction{}, err
		}

		available, err := r.quantityAt(ctxTimeout, tx, t.ItemID, t.FromLocationID)
		if err != nil {
			return domain.Transaction{}, err
		}
		if available < t.Quantity {
			return domain.Transaction{}, errors.NewInsufficientStockError(
				fmt.Sprintf("Estoque atual (%d) não cobre mais a quantidade aprovada (%d).", available, t.Quantity))
		}

		if err := r.debit(ctxTimeout, tx, t.ItemID, t.FromLocationID, t.Quantity); err != nil {
			return domain.Transaction{}, err
		}
		touched = append(touched, t.FromLocationID)

		// TRANSFER aprovado também credita o destino; DISPOSE apenas debita.
		if t.Type == domain.TransactionTypeTransfer {
			if err := r.credit(ctxTimeout, tx, t.ItemID, t.ToLocationID, t.Quantity); err != nil {
				return domain.Transaction{}, err
			}
			touched = append(touched, t.ToLocationID)
		}

		if err := r.bumpVersion(ctxTimeout, tx, item); err != nil {
			return domain.Transaction{}, err
		}
	}

	newStatus := domain.TransactionStatusRejected
	if approved {
		newStatus = domain.TransactionStatusApproved
	}
	approvedAt := time.Now()

	result, err := tx.ExecContext(ctxTimeout,
		`UPDATE transactions SET status = $2, approved_by = $3, approved_at = $4
		 WHERE id = $1 AND status = 'pending'`,
		t.ID, newStatus, approverID, approvedAt,
	)
	if err != nil {
		return domain.Transaction{}, errors.NewDBError("Falha ao resolver transação", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return domain.Transaction{}, errors.NewDBError("Falha ao verificar linhas afetadas na resolução", err)
	}
	if rows == 0 {
		return domain.Transaction{}, errors.NewConflictError("A transação já foi resolvida por outra operação.")
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return domain.Transaction{}, errors.NewDBError("Falha ao commitar resolução", commitErr)
	}

	r.invalidateLocations(ctx, touched...)

	t.Status = newStatus
	t.ApprovedBy = approverID
	t.ApprovedAt = &approvedAt
	r.logger.Info("Transação resolvida.", map[string]interface{}{
		"transaction_id": t.ID, "type": string(t.Type), "status": string(newStatus),
	})
	return t, nil
}

// GetStockByLocation retorna a projeção de estoque de todos os itens ativos
// com entrada na localização, usando a estratégia Cache-Aside.
// O status 'low' compara a quantidade DA localização com o threshold do item.
func (r *StockRepository) GetStockByLocation(ctx context.Context, locationID string) ([]domain.LocationStock, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(locationStockCacheKey, locationID)

	// 1. Tentar obter do Cache (Redis)
	if cachedData, err := r.Cache.Get(ctxTimeout, key); err == nil {
		var stocks []domain.LocationStock
		if json.Unmarshal([]byte(cachedData), &stocks) == nil {
			return stocks, nil
		}
		// Desserialização falhou: segue para o DB e o Set abaixo corrige a chave.
	} else if err != cache.ErrCacheMiss {
		r.logger.Warn("Falha ao ler do cache Redis.", map[string]interface{}{"error": err.Error()})
	}

	// 2. Busca no Banco de Dados
	rows, err := r.DB.QueryContext(ctxTimeout,
		`SELECT i.id, i.name, i.sku, i.unit, i.threshold, il.quantity
		 FROM items i
		 JOIN item_locations il ON il.item_id = i.id
		 WHERE i.status = 'active' AND il.location_id = $1
		 ORDER BY i.name`,
		locationID,
	)
	if err != nil {
		return nil, errors.NewDBError("Falha ao buscar estoque por localização", err)
	}
	defer rows.Close()

	stocks := []domain.LocationStock{}
	for rows.Next() {
		var s domain.LocationStock
		if err := rows.Scan(&s.ItemID, &s.ItemName, &s.SKU, &s.Unit, &s.Threshold, &s.Quantity); err != nil {
			return nil, errors.NewDBError("Falha ao mapear estoque por localização", err)
		}
		if s.Quantity <= s.Threshold {
			s.Status = domain.StockStatusLow
		} else {
			s.Status = domain.StockStatusSufficient
		}
		stocks = append(stocks, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar estoque por localização", err)
	}

	// 3. Popular o cache para futuras requisições (TTL do config).
	if payload, marshalErr := json.Marshal(stocks); marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, payload, r.CacheTTL)
	}

	return stocks, nil
}
