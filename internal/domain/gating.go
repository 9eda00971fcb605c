package domain

// Gating é a decisão central do fluxo de aprovação: se o efeito de estoque
// de uma movimentação é aplicado imediatamente ou adiado até a aprovação.
type Gating string

const (
	// GatingImmediate: o efeito de estoque é aplicado na criação da transação.
	GatingImmediate Gating = "immediate"
	// GatingGated: a transação nasce 'pending' e o efeito de estoque só é
	// aplicado se (e quando) um aprovador a aprovar.
	GatingGated Gating = "gated"
)

// Classify centraliza a política de gating por papel e tipo de movimentação.
// Mantemos a decisão aqui (e não em condicionais espalhadas pelos serviços)
// para que a política seja extensível por papel e por tipo.
//
// Política atual:
//   - DISPOSE é sempre gated, inclusive para admins;
//   - TRANSFER é gated para não-admins e imediato para admins;
//   - ADD, REPAIR_OUT e REPAIR_IN são sempre imediatos (puramente aditivos
//     ou eventos de custódia do fornecedor).
func Classify(role UserRole, txType TransactionType) Gating {
	switch txType {
	case TransactionTypeDispose:
		return GatingGated
	case TransactionTypeTransfer:
		if role == RoleAdmin {
			return GatingImmediate
		}
		return GatingGated
	default:
		return GatingImmediate
	}
}

// InitialStatus retorna o status de criação de uma transação segundo a
// decisão de gating: transações imediatas nascem já aprovadas (completas),
// transações gated nascem pendentes.
func (g Gating) InitialStatus() TransactionStatus {
	if g == GatingGated {
		return TransactionStatusPending
	}
	return TransactionStatusApproved
}
