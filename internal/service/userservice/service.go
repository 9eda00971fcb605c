package userservice

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"stockbuddy/internal/domain"
	apperror "stockbuddy/internal/errors"
	"stockbuddy/internal/notifier"
	"stockbuddy/internal/pkg/logger"
	"stockbuddy/internal/pkg/token"
)

// Custo do bcrypt para hashing de senhas.
const bcryptCost = 12

// Validade do token de redefinição de senha.
const resetTokenTTL = time.Hour

// UserRepository define o contrato de persistência da entidade User.
type UserRepository interface {
	Save(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetResetToken(ctx context.Context, id, token string, expiry time.Time) error
	FindByResetToken(ctx context.Context, resetToken string) (domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(userID string, userRole string) (string, error)
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// UserService define o serviço de lógica de negócio para a entidade User.
type UserService struct {
	UserRepo UserRepository
	TokenSvc TokenService
	Notifier notifier.Notifier
	logger   logger.Logger
}

// NewService cria uma nova instância do UserService, injetando o Repositório.
func NewService(repo UserRepository, tokenSvc TokenService, notifier notifier.Notifier, logger logger.Logger) *UserService {
	return &UserService{
		UserRepo: repo,
		TokenSvc: tokenSvc,
		Notifier: notifier,
		logger:   logger,
	}
}

// Register registra um novo usuário no sistema.
// Ele faz o hashing da senha e lida com validações básicas.
func (s *UserService) Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error) {
	// 1. Validação Básica
	if registration.Email == "" || registration.Password == "" {
		return domain.User{}, apperror.NewValidationError("Email e senha são obrigatórios.")
	}

	role := registration.Role
	if role == "" {
		role = domain.RoleStaff // Role padrão
	}
	if role != domain.RoleAdmin && role != domain.RoleStaff {
		return domain.User{}, apperror.NewValidationError("Role deve ser 'admin' ou 'staff'.")
	}

	// 2. Hashing da Senha
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcryptCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	// 3. Criação do Objeto User
	newUser := domain.User{
		Email:        registration.Email,
		PasswordHash: string(hashedPassword),
		Name:         registration.Name,
		Role:         role,
	}

	// 4. Chamada ao Repositório para Persistência
	user, err := s.UserRepo.Save(ctx, newUser)
	if err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// Login autentica um usuário, verifica a senha e gera um JWT.
func (s *UserService) Login(ctx context.Context, email string, password string) (string, domain.User, error) {
	// 1. Validação Básica
	if email == "" || password == "" {
		return "", domain.User{}, apperror.NewUnauthorizedError("Email e senha são obrigatórios.")
	}

	// 2. Buscar Usuário pelo Email (apenas ativos)
	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		// NotFound vira Unauthorized para não dar dicas a invasores.
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return "", domain.User{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
		}
		return "", domain.User{}, err
	}

	// 3. Comparar Senhas (Hashing)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.User{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	// 4. Registrar o último login (não crítico: falha vira warning)
	now := time.Now()
	if err := s.UserRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("Falha ao registrar último login.", map[string]interface{}{"user_id": user.ID, "error": err.Error()})
	} else {
		user.LastLogin = &now
	}

	// 5. Gerar JWT
	tokenString, err := s.TokenSvc.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return "", domain.User{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	return tokenString, user, nil
}

// GetProfile retorna o usuário autenticado.
func (s *UserService) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	return s.UserRepo.FindByID(ctx, userID)
}

// ForgotPassword gera um token de redefinição opaco com validade de 1 hora
// e aciona a entrega via Notifier.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return apperror.NewValidationError("Email é obrigatório.")
	}

	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	// Token opaco de 32 bytes em hex (mesma forma do sistema original).
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return apperror.NewInternalError("Falha ao gerar token de redefinição.", err)
	}
	resetToken := hex.EncodeToString(buf)

	if err := s.UserRepo.SetResetToken(ctx, user.ID, resetToken, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	s.Notifier.PasswordReset(ctx, user.Email, resetToken)
	s.logger.Info("Token de redefinição de senha gerado.", map[string]interface{}{"user_id": user.ID})
	return nil
}

// ResetPassword troca a senha a partir de um token de redefinição válido.
func (s *UserService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" || newPassword == "" {
		return apperror.NewValidationError("Token e nova senha são obrigatórios.")
	}

	user, err := s.UserRepo.FindByResetToken(ctx, resetToken)
	if err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return apperror.NewInternalError("Falha ao gerar hash da nova senha.", err)
	}

	if err := s.UserRepo.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return err
	}

	s.logger.Info("Senha redefinida com sucesso.", map[string]interface{}{"user_id": user.ID})
	return nil
}
