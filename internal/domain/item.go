package domain

import (
	"time"
)

// Item representa o item físico de inventário (a Entidade principal do ledger).
// O estoque é controlado por localização, através da lista Locations.
type Item struct {
	ID        string     `json:"id"`
	SKU       string     `json:"sku"` // Stock Keeping Unit (código único do item)
	Barcode   string     `json:"barcode,omitempty"`
	Name      string     `json:"name"`
	Unit      string     `json:"unit"`
	Threshold int        `json:"threshold"` // Limite para o status de estoque baixo
	Status    ItemStatus `json:"status"`

	// Version é usada para Controle de Concorrência Otimista (OCC).
	// Toda movimentação de estoque comitada incrementa a versão do item.
	Version int `json:"version"`

	// Locations é a sequência de quantidades por localização.
	// Invariante: no máximo uma entrada por locationId; quantidade sempre >= 0.
	Locations []ItemLocation `json:"locations"`

	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Campos derivados (preenchidos nas projeções de leitura, não persistidos).
	TotalStock  int         `json:"total_stock,omitempty"`
	StockStatus StockStatus `json:"stock_status,omitempty"`
}

// ItemLocation é o Stock Record: a quantidade de um item em uma localização.
// Uma entrada com quantidade zero é um estado válido e NÃO é removida.
type ItemLocation struct {
	LocationID   string `json:"location_id"`
	LocationName string `json:"location_name,omitempty"`
	Quantity     int    `json:"quantity"`
}

// ItemStatus é um tipo string para o ciclo de vida do item.
// Itens nunca são deletados, apenas desativados.
type ItemStatus string

const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusInactive ItemStatus = "inactive"
)

// StockStatus é o status derivado do nível de estoque em relação ao threshold.
type StockStatus string

const (
	StockStatusLow        StockStatus = "low"
	StockStatusSufficient StockStatus = "sufficient"
)

// TotalQuantity soma as quantidades de todas as localizações do item.
func (i Item) TotalQuantity() int {
	total := 0
	for _, loc := range i.Locations {
		total += loc.Quantity
	}
	return total
}

// QuantityAt retorna a quantidade do item na localização informada
// (zero se não houver entrada para a localização).
func (i Item) QuantityAt(locationID string) int {
	for _, loc := range i.Locations {
		if loc.LocationID == locationID {
			return loc.Quantity
		}
	}
	return 0
}

// LocationStock é a projeção de leitura de getStockByLocation:
// o estoque de um item ativo em uma localização específica.
// O status 'low' compara a quantidade DA LOCALIZAÇÃO com o threshold do item
// (não o total do item).
type LocationStock struct {
	ItemID    string      `json:"item_id"`
	ItemName  string      `json:"item_name"`
	SKU       string      `json:"sku"`
	Unit      string      `json:"unit"`
	Threshold int         `json:"threshold"`
	Quantity  int         `json:"quantity"`
	Status    StockStatus `json:"status"`
}

// ItemFilter define os parâmetros de busca de itens.
type ItemFilter struct {
	Query      string // Busca por nome, SKU ou barcode (case-insensitive)
	ActiveOnly bool
}
