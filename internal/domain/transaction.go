package domain

import (
	"time"
)

// Transaction é a entrada imutável do ledger de estoque.
// Toda mutação de quantidade (aplicada ou pendente) produz exatamente uma
// Transaction. Após a criação, apenas Status, ApprovedBy e ApprovedAt podem
// mudar, e somente através do fluxo de aprovação.
type Transaction struct {
	ID             string            `json:"id"`
	Type           TransactionType   `json:"type"`
	ItemID         string            `json:"item_id"`
	FromLocationID string            `json:"from_location_id,omitempty"`
	ToLocationID   string            `json:"to_location_id,omitempty"`
	Quantity       int               `json:"quantity"`
	Reason         string            `json:"reason,omitempty"`
	Note           string            `json:"note,omitempty"`
	VendorName     string            `json:"vendor_name,omitempty"`
	SerialNumber   string            `json:"serial_number,omitempty"`
	Status         TransactionStatus `json:"status"`
	CreatedBy      string            `json:"created_by"`
	CreatedAt      time.Time         `json:"created_at"`
	ApprovedBy     string            `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time        `json:"approved_at,omitempty"`

	// Campos resolvidos para exibição (JOINs, não persistidos na transação).
	ItemName         string `json:"item_name,omitempty"`
	ItemSKU          string `json:"item_sku,omitempty"`
	FromLocationName string `json:"from_location_name,omitempty"`
	ToLocationName   string `json:"to_location_name,omitempty"`
	CreatedByName    string `json:"created_by_name,omitempty"`
}

// TransactionType é o tipo da movimentação registrada no ledger.
type TransactionType string

const (
	TransactionTypeAdd       TransactionType = "ADD"
	TransactionTypeTransfer  TransactionType = "TRANSFER"
	TransactionTypeDispose   TransactionType = "DISPOSE"
	TransactionTypeRepairOut TransactionType = "REPAIR_OUT"
	TransactionTypeRepairIn  TransactionType = "REPAIR_IN"
)

// TransactionStatus indica se o efeito de estoque da transação já foi aplicado.
// Transações não-gated nascem 'approved'; transações gated nascem 'pending'
// e transitam para 'approved' ou 'rejected' (estados terminais).
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusApproved TransactionStatus = "approved"
	TransactionStatusRejected TransactionStatus = "rejected"
)

// IsResolved indica se a transação já saiu do estado pendente.
func (t Transaction) IsResolved() bool {
	return t.Status != TransactionStatusPending
}
