package notifier

import (
	"context"

	"stockbuddy/internal/domain"
	"stockbuddy/internal/pkg/logger"
)

// Notifier é o ponto de extensão para notificação de eventos do ledger e
// entrega de emails de redefinição de senha. As chamadas são fire-and-forget:
// nenhum retorno daqui afeta o resultado das operações do core.
type Notifier interface {
	TransactionCreated(ctx context.Context, t domain.Transaction)
	TransactionResolved(ctx context.Context, t domain.Transaction)
	PasswordReset(ctx context.Context, email, resetToken string)
}

// LogNotifier é a implementação padrão: apenas registra os eventos no log
// estruturado. Uma integração real (push/email) substituiria esta
// implementação atrás da mesma interface.
type LogNotifier struct {
	logger logger.Logger
}

// NewLogNotifier cria um Notifier baseado em log.
func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

func (n *LogNotifier) TransactionCreated(ctx context.Context, t domain.Transaction) {
	n.logger.Info("Notificação: transação criada.", map[string]interface{}{
		"transaction_id": t.ID,
		"type":           string(t.Type),
		"status":         string(t.Status),
		"item_id":        t.ItemID,
		"quantity":       t.Quantity,
	})
}

func (n *LogNotifier) TransactionResolved(ctx context.Context, t domain.Transaction) {
	n.logger.Info("Notificação: transação resolvida.", map[string]interface{}{
		"transaction_id": t.ID,
		"type":           string(t.Type),
		"status":         string(t.Status),
		"approved_by":    t.ApprovedBy,
	})
}

func (n *LogNotifier) PasswordReset(ctx context.Context, email, resetToken string) {
	// O token não vai para o log: apenas sinalizamos a entrega pendente.
	n.logger.Info("Notificação: email de redefinição de senha solicitado.", map[string]interface{}{
		"email": email,
	})
}
