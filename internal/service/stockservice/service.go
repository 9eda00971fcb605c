package stockservice

import (
	"context"

	"github.com/google/uuid"

	"stockbuddy/internal/domain"
	apperror "stockbuddy/internal/errors"
	"stockbuddy/internal/notifier"
	"stockbuddy/internal/pkg/logger"
)

// StockRepository define o contrato que o Movement Engine espera da camada
// de Persistência. Cada método de escrita é um composite atômico: mutação de
// estoque e entrada do ledger comitam juntas ou nenhuma comita.
type StockRepository interface {
	AddStock(ctx context.Context, req domain.AddStockRequest, actorID string) (domain.Transaction, error)
	TransferStock(ctx context.Context, req domain.TransferRequest, gating domain.Gating, actorID string) (domain.Transaction, error)
	GetStockByLocation(ctx context.Context, locationID string) ([]domain.LocationStock, error)
}

// Service é o Movement Engine: valida as movimentações, decide o gating e
// delega os composites atômicos ao repositório.
type Service struct {
	repo     StockRepository
	notifier notifier.Notifier
	logger   logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Estoque.
func NewService(repo StockRepository, notifier notifier.Notifier, logger logger.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// AddStock credita a quantidade na localização e registra a transação ADD.
// Adições são puramente aditivas, então nunca passam pelo fluxo de aprovação.
func (s *Service) AddStock(ctx context.Context, req domain.AddStockRequest, actor domain.Actor) (domain.Transaction, error) {
	s.logger.Debug("Iniciando adição de estoque no serviço.", map[string]interface{}{
		"item_id": req.ItemID, "location_id": req.LocationID, "quantity": req.Quantity,
	})

	if err := validateIDs(map[string]string{"item_id": req.ItemID, "location_id": req.LocationID}); err != nil {
		return domain.Transaction{}, err
	}
	if req.Quantity <= 0 {
		return domain.Transaction{}, apperror.NewValidationError("A quantidade deve ser positiva.")
	}

	created, err := s.repo.AddStock(ctx, req, actor.ID)
	if err != nil {
		// Erros do repositório já são tipados (NotFound, Validation, DBError).
		return domain.Transaction{}, err
	}

	s.notifier.TransactionCreated(ctx, created)
	s.logger.Info("Estoque adicionado com sucesso.", map[string]interface{}{
		"transaction_id": created.ID, "item_id": req.ItemID, "quantity": req.Quantity,
	})
	return created, nil
}

// TransferStock movimenta estoque entre localizações.
// A decisão imediato-vs-gated é centralizada em domain.Classify: admins
// transferem imediatamente; para os demais a transação nasce pendente e
// NENHUM estoque muda até a aprovação (ResolveTransfer).
func (s *Service) TransferStock(ctx context.Context, req domain.TransferRequest, actor domain.Actor) (domain.Transaction, error) {
	s.logger.Debug("Iniciando transferência de estoque no serviço.", map[string]interface{}{
		"item_id": req.ItemID, "from": req.FromLocationID, "to": req.ToLocationID,
		"quantity": req.Quantity, "role": string(actor.Role),
	})

	if err := validateIDs(map[string]string{
		"item_id":          req.ItemID,
		"from_location_id": req.FromLocationID,
		"to_location_id":   req.ToLocationID,
	}); err != nil {
		return domain.Transaction{}, err
	}
	if req.Quantity <= 0 {
		return domain.Transaction{}, apperror.NewValidationError("A quantidade deve ser positiva.")
	}
	if req.FromLocationID == req.ToLocationID {
		return domain.Transaction{}, apperror.NewValidationError("Origem e destino da transferência devem ser diferentes.")
	}

	gating := domain.Classify(actor.Role, domain.TransactionTypeTransfer)

	created, err := s.repo.TransferStock(ctx, req, gating, actor.ID)
	if err != nil {
		return domain.Transaction{}, err
	}

	s.notifier.TransactionCreated(ctx, created)
	s.logger.Info("Transferência registrada com sucesso.", map[string]interface{}{
		"transaction_id": created.ID, "status": string(created.Status),
	})
	return created, nil
}

// GetStockByLocation retorna a projeção de estoque dos itens ativos na
// localização, com status low/sufficient por quantidade local.
func (s *Service) GetStockByLocation(ctx context.Context, locationID string) ([]domain.LocationStock, error) {
	if _, err := uuid.Parse(locationID); err != nil {
		return nil, apperror.NewValidationError("O ID da localização deve ser um UUID válido.")
	}

	stocks, err := s.repo.GetStockByLocation(ctx, locationID)
	if err != nil {
		s.logger.Error("Falha ao buscar estoque por localização no repositório.", err)
		return nil, err
	}
	return stocks, nil
}

// validateIDs valida que cada campo obrigatório está presente e é um UUID.
func validateIDs(ids map[string]string) error {
	for field, id := range ids {
		if id == "" {
			return apperror.NewValidationError("O campo " + field + " é obrigatório.")
		}
		if _, err := uuid.Parse(id); err != nil {
			return apperror.NewValidationError("O campo " + field + " deve ser um UUID válido.")
		}
	}
	return nil
}
