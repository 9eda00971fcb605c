package repair

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"stockbuddy/internal/domain"
	apperror "stockbuddy/internal/errors"
	"stockbuddy/internal/pkg/logger"
	"stockbuddy/internal/pkg/middleware"
)

// RepairService define o contrato que o Handler espera do ciclo de conserto.
type RepairService interface {
	SendForRepair(ctx context.Context, req domain.RepairSendRequest, actor domain.Actor) (domain.RepairTicket, error)
	ReturnFromRepair(ctx context.Context, req domain.RepairReturnRequest, actor domain.Actor) (domain.RepairTicket, error)
	ListRepairTickets(ctx context.Context) ([]domain.RepairTicket, error)
}

// Handler agrupa os métodos de Handler do ciclo de conserto.
type Handler struct {
	Service RepairService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc RepairService, log logger.Logger) *Handler {
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

// SendForRepairHandler lida com a requisição POST /v1/repairs/send.
func (h *Handler) SendForRepairHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := h.actorFromContext(w, r)
	if !ok {
		return
	}

	var req domain.RepairSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
		return
	}

	ticket, err := h.Service.SendForRepair(r.Context(), req, actor)
	h.handleServiceResponse(w, r, ticket, err, http.StatusCreated)
}

// ReturnFromRepairHandler lida com a requisição POST /v1/repairs/return.
func (h *Handler) ReturnFromRepairHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := h.actorFromContext(w, r)
	if !ok {
		return
	}

	var req domain.RepairReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
		return
	}

	ticket, err := h.Service.ReturnFromRepair(r.Context(), req, actor)
	h.handleServiceResponse(w, r, ticket, err, http.StatusOK)
}

// ListRepairTicketsHandler lida com a requisição GET /v1/repairs.
func (h *Handler) ListRepairTicketsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	tickets, err := h.Service.ListRepairTickets(r.Context())
	h.handleServiceResponse(w, r, tickets, err, http.StatusOK)
}
