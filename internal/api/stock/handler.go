package stock

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

// StockService define o contrato que o Handler espera da camada de Serviço.
type StockService interface {
	AddStock(ctx context.Context, req domain.AddStockRequest, actor domain.Actor) (domain.Transaction, error)
	TransferStock(ctx context.Context, req domain.TransferRequest, actor domain.Actor) (domain.Transaction, error)
	GetStockByLocation(ctx context.Context, locationID string) ([]domain.LocationStock, error)
}

// Handler agrupa todos os métodos de Handler de estoque.
type Handler struct {
	Service StockService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc StockService, log logger.Logger) *Handler {
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

// AddStockHandler lida com a requisição POST /v1/stock/add.
func (h *Handler) AddStockHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := h.actorFromContext(w, r)
	if !ok {
		return
	}

	var req domain.AddStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
		return
	}

	transaction, err := h.Service.AddStock(r.Context(), req, actor)
	h.handleServiceResponse(w, r, transaction, err, http.StatusCreated)
}

// TransferStockHandler lida com a requisição POST /v1/stock/transfer.
func (h *Handler) TransferStockHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := h.actorFromContext(w, r)
	if !ok {
		return
	}

	var req domain.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
		return
	}

	transaction, err := h.Service.TransferStock(r.Context(), req, actor)
	h.handleServiceResponse(w, r, transaction, err, http.StatusCreated)
}

// GetStockByLocationHandler lida com a requisição GET /v1/stock/location/{locationId}.
func (h *Handler) GetStockByLocationHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	locationID := strings.TrimPrefix(r.URL.Path, "/v1/stock/location/")

	stocks, err := h.Service.GetStockByLocation(r.Context(), locationID)
	h.handleServiceResponse(w, r, stocks, err, http.StatusOK)
}
