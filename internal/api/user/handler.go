package user

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

// UserService define o contrato para as operações de identidade.
type UserService interface {
	Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error)
	Login(ctx context.Context, email string, password string) (string, domain.User, error)
	GetProfile(ctx context.Context, userID string) (domain.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
}

// LoginRequest representa o payload de entrada para o login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest representa o payload do pedido de redefinição de senha.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest representa o payload da troca de senha via token.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Handler agrupa todos os métodos de Handler do usuário.
type Handler struct {
	Service UserService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UserService, log logger.Logger) *Handler {
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

// RegisterUserHandler lida com a requisição POST /v1/register.
func (h *Handler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var reg domain.UserRegistration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
		return
	}

	// O domain.User serializa sem o PasswordHash (tag json:"-").
	newUser, err := h.Service.Register(r.Context(), reg)
	h.handleServiceResponse(w, r, newUser, err, http.StatusCreated)
}

// LoginUserHandler lida com a requisição POST /v1/login.
func (h *Handler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var loginReq LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
		return
	}

	token, user, err := h.Service.Login(r.Context(), loginReq.Email, loginReq.Password)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, 0)
		return
	}

	response := map[string]interface{}{
		"token": token,
		"user":  user,
	}
	h.handleServiceResponse(w, r, response, nil, http.StatusOK)
}

// ProfileHandler lida com a requisição GET /v1/me.
func (h *Handler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Autorização necessária."), 0)
		return
	}

	user, err := h.Service.GetProfile(r.Context(), claims.UserID)
	h.handleServiceResponse(w, r, user, err, http.StatusOK)
}

// ForgotPasswordHandler lida com a requisição POST /v1/forgot-password.
func (h *Handler) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
		return
	}

	err := h.Service.ForgotPassword(r.Context(), req.Email)
	h.handleServiceResponse(w, r, map[string]string{"message": "Se o email existir, um token de redefinição foi enviado."}, err, http.StatusOK)
}

// ResetPasswordHandler lida com a requisição POST /v1/reset-password.
func (h *Handler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
		return
	}

	err := h.Service.ResetPassword(r.Context(), req.Token, req.NewPassword)
	h.handleServiceResponse(w, r, map[string]string{"message": "Senha redefinida com sucesso."}, err, http.StatusOK)
}
