package itemservice

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"stockbuddy/internal/domain"
	apperror "stockbuddy/internal/errors"
	"stockbuddy/internal/pkg/logger"
)

// ItemRepository define o contrato que o Serviço de Itens espera da camada
// de Persistência.
type ItemRepository interface {
	Save(ctx context.Context, item domain.Item) (domain.Item, error)
	FindByID(ctx context.Context, id string) (domain.Item, error)
	FindAll(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
	Update(ctx context.Context, item domain.Item) (domain.Item, error)
}

// Service implementa a lógica de metadados de itens. As quantidades por
// localização são propriedade do Movement Engine — aqui só mudam nome,
// unidade, threshold e status.
type Service struct {
	repo   ItemRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Itens.
func NewService(repo ItemRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateItem cria um item ativo com localizações vazias.
func (s *Service) CreateItem(ctx context.Context, item domain.Item, actor domain.Actor) (domain.Item, error) {
	s.logger.Debug("Iniciando criação de item no serviço.", map[string]interface{}{"sku": item.SKU})

	if strings.TrimSpace(item.Name) == "" {
		return domain.Item{}, apperror.NewValidationError("O nome do item não pode ser vazio.")
	}
	if strings.TrimSpace(item.SKU) == "" {
		return domain.Item{}, apperror.NewValidationError("O SKU do item não pode ser vazio.")
	}
	if item.Threshold < 0 {
		return domain.Item{}, apperror.NewValidationError("O threshold não pode ser negativo.")
	}

	item.CreatedBy = actor.ID
	created, err := s.repo.Save(ctx, item)
	if err != nil {
		return domain.Item{}, err
	}

	s.logger.Info("Item criado com sucesso.", map[string]interface{}{"item_id": created.ID, "sku": created.SKU})
	return created, nil
}

// GetItemByID busca um item pelo ID, com localizações e campos derivados.
func (s *Service) GetItemByID(ctx context.Context, id string) (domain.Item, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Item{}, apperror.NewValidationError("O ID do item deve ser um UUID válido.")
	}
	return s.repo.FindByID(ctx, id)
}

// ListItems retorna os itens ativos com estoque total e status derivado.
func (s *Service) ListItems(ctx context.Context) ([]domain.Item, error) {
	items, err := s.repo.FindAll(ctx, domain.ItemFilter{ActiveOnly: true})
	if err != nil {
		s.logger.Error("Falha ao listar itens no repositório.", err)
		return nil, err
	}
	return items, nil
}

// SearchItems busca itens ativos por nome, SKU ou barcode (case-insensitive).
func (s *Service) SearchItems(ctx context.Context, query string) ([]domain.Item, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperror.NewValidationError("O termo de busca não pode ser vazio.")
	}

	items, err := s.repo.FindAll(ctx, domain.ItemFilter{Query: query, ActiveOnly: true})
	if err != nil {
		s.logger.Error("Falha ao buscar itens no repositório.", err)
		return nil, err
	}
	return items, nil
}

// UpdateItem atualiza os metadados editáveis do item. Desativar um item
// (status inactive) o exclui das operações do ledger; itens nunca são
// deletados.
func (s *Service) UpdateItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	s.logger.Debug("Iniciando atualização de item no serviço.", map[string]interface{}{"item_id": item.ID})

	if _, err := uuid.Parse(item.ID); err != nil {
		return domain.Item{}, apperror.NewValidationError("O ID do item deve ser um UUID válido.")
	}
	if strings.TrimSpace(item.Name) == "" {
		return domain.Item{}, apperror.NewValidationError("O nome do item não pode ser vazio.")
	}
	if item.Threshold < 0 {
		return domain.Item{}, apperror.NewValidationError("O threshold não pode ser negativo.")
	}
	if item.Status != domain.ItemStatusActive && item.Status != domain.ItemStatusInactive {
		return domain.Item{}, apperror.NewValidationError("O status do item deve ser 'active' ou 'inactive'.")
	}

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return domain.Item{}, err
	}

	s.logger.Info("Item atualizado com sucesso.", map[string]interface{}{"item_id": updated.ID})
	return updated, nil
}
