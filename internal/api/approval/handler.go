package approval

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

// ApprovalService define o contrato que o Handler espera do fluxo de aprovação.
type ApprovalService interface {
	RequestDisposal(ctx context.Context, req domain.DisposalRequest, actor domain.Actor) (domain.Transaction, error)
	ResolveDisposal(ctx context.Context, req domain.ResolveRequest, actor domain.Actor) (domain.Transaction, error)
	ResolveTransfer(ctx context.Context, req domain.ResolveRequest, actor domain.Actor) (domain.Transaction, error)
	ListPending(ctx context.Context, txType domain.TransactionType) ([]domain.Transaction, error)
}

// Handler agrupa os métodos de Handler do fluxo de aprovação.
type Handler struct {
	Service ApprovalService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ApprovalService, log logger.Logger) *Handler {
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

// RequestDisposalHandler lida com a requisição POST /v1/disposals.
func (h *Handler) RequestDisposalHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := h.actorFromContext(w, r)
	if !ok {
		return
	}

	var req domain.DisposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
		return
	}

	transaction, err := h.Service.RequestDisposal(r.Context(), req, actor)
	h.handleServiceResponse(w, r, transaction, err, http.StatusCreated)
}

// ResolveDisposalHandler lida com a requisição POST /v1/disposals/resolve.
func (h *Handler) ResolveDisposalHandler(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.Service.ResolveDisposal)
}

// ResolveTransferHandler lida com a requisição POST /v1/transfers/resolve.
func (h *Handler) ResolveTransferHandler(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.Service.ResolveTransfer)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, fn func(context.Context, domain.ResolveRequest, domain.Actor) (domain.Transaction, error)) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := h.actorFromContext(w, r)
	if !ok {
		return
	}

	var req domain.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
		return
	}

	transaction, err := fn(r.Context(), req, actor)
	h.handleServiceResponse(w, r, transaction, err, http.StatusOK)
}

// PendingDisposalsHandler lida com a requisição GET /v1/disposals/pending.
func (h *Handler) PendingDisposalsHandler(w http.ResponseWriter, r *http.Request) {
	h.listPending(w, r, domain.TransactionTypeDispose)
}

// PendingTransfersHandler lida com a requisição GET /v1/transfers/pending.
func (h *Handler) PendingTransfersHandler(w http.ResponseWriter, r *http.Request) {
	h.listPending(w, r, domain.TransactionTypeTransfer)
}

func (h *Handler) listPending(w http.ResponseWriter, r *http.Request, txType domain.TransactionType) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	pending, err := h.Service.ListPending(r.Context(), txType)
	h.handleServiceResponse(w, r, pending, err, http.StatusOK)
}
