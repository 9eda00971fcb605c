package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockbuddy/internal/domain"
)

// TestClassify verifica a política de gating por papel e tipo de movimentação.
func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		role     domain.UserRole
		txType   domain.TransactionType
		expected domain.Gating
	}{
		{"Descarte de admin é gated", domain.RoleAdmin, domain.TransactionTypeDispose, domain.GatingGated},
		{"Descarte de staff é gated", domain.RoleStaff, domain.TransactionTypeDispose, domain.GatingGated},
		{"Transferência de admin é imediata", domain.RoleAdmin, domain.TransactionTypeTransfer, domain.GatingImmediate},
		{"Transferência de staff é gated", domain.RoleStaff, domain.TransactionTypeTransfer, domain.GatingGated},
		{"Adição de staff é imediata", domain.RoleStaff, domain.TransactionTypeAdd, domain.GatingImmediate},
		{"Envio para conserto de staff é imediato", domain.RoleStaff, domain.TransactionTypeRepairOut, domain.GatingImmediate},
		{"Retorno de conserto de staff é imediato", domain.RoleStaff, domain.TransactionTypeRepairIn, domain.GatingImmediate},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, domain.Classify(tc.role, tc.txType))
		})
	}
}

// TestInitialStatus verifica o status de criação segundo a decisão de gating.
func TestInitialStatus(t *testing.T) {
	assert.Equal(t, domain.TransactionStatusApproved, domain.GatingImmediate.InitialStatus())
	assert.Equal(t, domain.TransactionStatusPending, domain.GatingGated.InitialStatus())
}
