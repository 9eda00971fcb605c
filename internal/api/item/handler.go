package item

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"stockbuddy/internal/domain"
	apperror "stockbuddy/internal/errors"
	"stockbuddy/internal/pkg/logger"
	"stockbuddy/internal/pkg/middleware"
)

// ItemService define o contrato que o Handler espera da camada de Serviço.
type ItemService interface {
	CreateItem(ctx context.Context, item domain.Item, actor domain.Actor) (domain.Item, error)
	GetItemByID(ctx context.Context, id string) (domain.Item, error)
	ListItems(ctx context.Context) ([]domain.Item, error)
	SearchItems(ctx context.Context, query string) ([]domain.Item, error)
	UpdateItem(ctx context.Context, item domain.Item) (domain.Item, error)
}

// Handler agrupa todos os métodos de Handler de itens.
type Handler struct {
	Service ItemService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ItemService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
				http.Error(w, "Erro ao codificar resposta", http.StatusInternalServerError)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{Code: status, Category: category, Message: message})
}

// actorFromContext extrai o ator autenticado anexado pelo AuthMiddleware.
func (h *Handler) actorFromContext(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Autorização necessária."), 0)
		return domain.Actor{}, false
	}
	return claims.Actor(), true
}

// ItemsHandler lida com /v1/items: POST cria um item, GET lista os ativos.
func (h *Handler) ItemsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createItem(w, r)
	case http.MethodGet:
		h.listItems(w, r)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actorFromContext(w, r)
	if !ok {
		return
	}

	var item domain.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
		return
	}

	created, err := h.Service.CreateItem(r.Context(), item, actor)
	h.handleServiceResponse(w, r, created, err, http.StatusCreated)
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListItems(r.Context())
	h.handleServiceResponse(w, r, items, err, http.StatusOK)
}

// SearchItemsHandler lida com a requisição GET /v1/items/search?q={termo}.
func (h *Handler) SearchItemsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query().Get("q")
	items, err := h.Service.SearchItems(r.Context(), query)
	h.handleServiceResponse(w, r, items, err, http.StatusOK)
}

// ItemByIDHandler lida com /v1/items/{id}: GET busca e PUT atualiza metadados.
func (h *Handler) ItemByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/items/")

	switch r.Method {
	case http.MethodGet:
		item, err := h.Service.GetItemByID(r.Context(), id)
		h.handleServiceResponse(w, r, item, err, http.StatusOK)
	case http.MethodPut:
		var item domain.Item
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
			return
		}
		// O ID da URL prevalece sobre o do corpo.
		item.ID = id
		updated, err := h.Service.UpdateItem(r.Context(), item)
		h.handleServiceResponse(w, r, updated, err, http.StatusOK)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}
