package domain

import (
	"time"
)

// RepairTicket rastreia um lote de itens enviado para conserto em um
// fornecedor externo. É criado junto com uma transação REPAIR_OUT (débito
// imediato) e encerrado junto com uma transação REPAIR_IN (crédito imediato).
type RepairTicket struct {
	ID           string       `json:"id"`
	ItemID       string       `json:"item_id"`
	LocationID   string       `json:"location_id"`
	Quantity     int          `json:"quantity"`
	VendorName   string       `json:"vendor_name"`
	SerialNumber string       `json:"serial_number,omitempty"`
	Note         string       `json:"note,omitempty"`
	Status       RepairStatus `json:"status"`
	ReturnedDate *time.Time   `json:"returned_date,omitempty"`
	CreatedBy    string       `json:"created_by"`
	CreatedAt    time.Time    `json:"created_at"`

	// Campos resolvidos para exibição.
	ItemName      string `json:"item_name,omitempty"`
	ItemSKU       string `json:"item_sku,omitempty"`
	LocationName  string `json:"location_name,omitempty"`
	CreatedByName string `json:"created_by_name,omitempty"`
}

// RepairStatus é o ciclo de vida do ticket: sent -> returned (terminal).
// Não há caminho de cancelamento ou rejeição.
type RepairStatus string

const (
	RepairStatusSent     RepairStatus = "sent"
	RepairStatusReturned RepairStatus = "returned"
)
