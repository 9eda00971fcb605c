package domain

// Payloads de entrada das operações do ledger. Ficam no domínio (como os
// demais contratos) para serem compartilhados entre Handler, Service e
// Repository sem dependência circular.

// AddStockRequest é o payload de POST /v1/stock/add.
type AddStockRequest struct {
	ItemID     string `json:"item_id"`
	LocationID string `json:"location_id"`
	Quantity   int    `json:"quantity"`
	Note       string `json:"note,omitempty"`
}

// TransferRequest é o payload de POST /v1/stock/transfer.
type TransferRequest struct {
	ItemID         string `json:"item_id"`
	FromLocationID string `json:"from_location_id"`
	ToLocationID   string `json:"to_location_id"`
	Quantity       int    `json:"quantity"`
	Note           string `json:"note,omitempty"`
}

// DisposalRequest é o payload de POST /v1/disposals.
type DisposalRequest struct {
	ItemID     string `json:"item_id"`
	LocationID string `json:"location_id"`
	Quantity   int    `json:"quantity"`
	Reason     string `json:"reason"`
	Note       string `json:"note,omitempty"`
}

// ResolveRequest é o payload de resolução de uma transação pendente
// (POST /v1/disposals/resolve e POST /v1/transfers/resolve).
type ResolveRequest struct {
	TransactionID string `json:"transaction_id"`
	Approved      bool   `json:"approved"`
}

// RepairSendRequest é o payload de POST /v1/repairs/send.
type RepairSendRequest struct {
	ItemID       string `json:"item_id"`
	LocationID   string `json:"location_id"`
	Quantity     int    `json:"quantity"`
	VendorName   string `json:"vendor_name"`
	SerialNumber string `json:"serial_number,omitempty"`
	Note         string `json:"note,omitempty"`
}

// RepairReturnRequest é o payload de POST /v1/repairs/return.
// A localização de retorno pode legitimamente diferir da de envio.
type RepairReturnRequest struct {
	RepairTicketID string `json:"repair_ticket_id"`
	LocationID     string `json:"location_id"`
	Note           string `json:"note,omitempty"`
}
