package itemrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"stockbuddy/internal/domain"
	"stockbuddy/internal/errors"
	"stockbuddy/internal/pkg/logger"
)

// ItemRepository persiste os metadados do item e lê o documento completo
// (item + sequência de localizações). As quantidades em si só são mutadas
// pelos composites do stockrepo.
type ItemRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewItemRepository cria e retorna uma nova instância do Repositório de Itens.
func NewItemRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *ItemRepository {
	return &ItemRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Código de violação de unicidade do PostgreSQL.
const pqUniqueViolation = "23505"

// Save insere um novo item (criado ativo, com localizações vazias).
func (r *ItemRepository) Save(ctx context.Context, item domain.Item) (domain.Item, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	item.ID = uuid.NewString()
	item.Status = domain.ItemStatusActive
	item.Version = 1
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	item.Locations = []domain.ItemLocation{}

	_, err := r.DB.ExecContext(ctxTimeout,
		`INSERT INTO items (id, sku, barcode, name, unit, threshold, status, version, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		item.ID, item.SKU, nullable(item.Barcode), item.Name, item.Unit,
		item.Threshold, item.Status, item.Version, item.CreatedBy,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == pqUniqueViolation {
			return domain.Item{}, errors.NewValidationError("SKU ou barcode já existe.")
		}
		return domain.Item{}, errors.NewDBError("Falha ao inserir item", err)
	}

	r.logger.Info("Item criado.", map[string]interface{}{"item_id": item.ID, "sku": item.SKU})
	return item, nil
}

// FindByID busca um item pelo ID, com a sequência de localizações carregada.
func (r *ItemRepository) FindByID(ctx context.Context, id string) (domain.Item, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var item domain.Item
	var barcode sql.NullString
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT id, sku, barcode, name, unit, threshold, status, version, created_by, created_at, updated_at
		 FROM items WHERE id = $1`, id,
	).Scan(
		&item.ID, &item.SKU, &barcode, &item.Name, &item.Unit, &item.Threshold,
		&item.Status, &item.Version, &item.CreatedBy, &item.CreatedAt, &item.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return domain.Item{}, errors.NewNotFoundError(fmt.Sprintf("Item com ID %s não existe na base de dados.", id))
	}
	if err != nil {
		return domain.Item{}, errors.NewDBError("Falha ao buscar item no DB", err)
	}
	item.Barcode = barcode.String

	item.Locations, err = r.loadLocations(ctxTimeout, id)
	if err != nil {
		return domain.Item{}, err
	}

	item.TotalStock = item.TotalQuantity()
	item.StockStatus = stockStatusFor(item)
	return item, nil
}

// FindAll busca itens segundo o filtro, com localizações e campos derivados
// (total de estoque e status em relação ao threshold do item).
func (r *ItemRepository) FindAll(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT id, sku, barcode, name, unit, threshold, status, version, created_by, created_at, updated_at
	          FROM items WHERE 1=1`
	args := []any{}

	if filter.ActiveOnly {
		query += ` AND status = 'active'`
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		query += fmt.Sprintf(` AND (name ILIKE $%d OR sku ILIKE $%d OR barcode ILIKE $%d)`, n, n, n)
	}
	query += ` ORDER BY name`

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		return nil, errors.NewDBError("Falha ao listar itens", err)
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		var item domain.Item
		var barcode sql.NullString
		if err := rows.Scan(
			&item.ID, &item.SKU, &barcode, &item.Name, &item.Unit, &item.Threshold,
			&item.Status, &item.Version, &item.CreatedBy, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, errors.NewDBError("Falha ao mapear item", err)
		}
		item.Barcode = barcode.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar itens", err)
	}

	for i := range items {
		items[i].Locations, err = r.loadLocations(ctxTimeout, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].TotalStock = items[i].TotalQuantity()
		items[i].StockStatus = stockStatusFor(items[i])
	}

	return items, nil
}

// Update atualiza apenas os metadados editáveis do item
// (nome, unidade, threshold, status). SKU, barcode e quantidades não mudam aqui.
func (r *ItemRepository) Update(ctx context.Context, item domain.Item) (domain.Item, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout,
		`UPDATE items SET name = $2, unit = $3, threshold = $4, status = $5, updated_at = $6
		 WHERE id = $1`,
		item.ID, item.Name, item.Unit, item.Threshold, item.Status, time.Now(),
	)
	if err != nil {
		return domain.Item{}, errors.NewDBError("Falha ao atualizar item", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return domain.Item{}, errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rows == 0 {
		return domain.Item{}, errors.NewNotFoundError(fmt.Sprintf("Item com ID %s não existe na base de dados.", item.ID))
	}

	return r.FindByID(ctx, item.ID)
}

// loadLocations carrega a sequência de localizações do item, com nomes
// resolvidos para exibição.
func (r *ItemRepository) loadLocations(ctx context.Context, itemID string) ([]domain.ItemLocation, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT il.location_id, l.name, il.quantity
		 FROM item_locations il
		 JOIN locations l ON l.id = il.location_id
		 WHERE il.item_id = $1
		 ORDER BY l.name`,
		itemID,
	)
	if err != nil {
		return nil, errors.NewDBError("Falha ao carregar localizações do item", err)
	}
	defer rows.Close()

	locations := []domain.ItemLocation{}
	for rows.Next() {
		var loc domain.ItemLocation
		if err := rows.Scan(&loc.LocationID, &loc.LocationName, &loc.Quantity); err != nil {
			return nil, errors.NewDBError("Falha ao mapear localização do item", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func stockStatusFor(item domain.Item) domain.StockStatus {
	if item.TotalQuantity() <= item.Threshold {
		return domain.StockStatusLow
	}
	return domain.StockStatusSufficient
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
