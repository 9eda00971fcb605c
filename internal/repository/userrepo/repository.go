package userrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"stockbuddy/internal/domain"
	apperror "stockbuddy/internal/errors"
	"stockbuddy/internal/pkg/logger"
)

// UserRepository implementa a persistência da entidade User.
type UserRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando o DB.
func NewUserRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const userColumns = `id, email, password_hash, name, role, is_active, last_login, created_at, updated_at`

func scanUser(scanner interface{ Scan(dest ...any) error }) (domain.User, error) {
	var u domain.User
	var lastLogin sql.NullTime
	err := scanner.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.IsActive,
		&lastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	if lastLogin.Valid {
		ll := lastLogin.Time
		u.LastLogin = &ll
	}
	return u, nil
}

// Save insere um novo usuário no banco de dados.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	user.ID = uuid.NewString()
	user.IsActive = true
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	_, err := r.DB.ExecContext(ctxTimeout,
		`INSERT INTO users (id, email, password_hash, name, role, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Role,
		user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == "23505" {
			return domain.User{}, apperror.NewValidationError("Usuário com este email já existe.")
		}
		return domain.User{}, apperror.NewDBError("Falha ao inserir usuário", err)
	}

	r.logger.Info("Usuário criado.", map[string]interface{}{"user_id": user.ID, "email": user.Email})
	return user, nil
}

// FindByEmail busca um usuário ativo pelo email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	row := r.DB.QueryRowContext(ctxTimeout,
		`SELECT `+userColumns+` FROM users WHERE email = $1 AND is_active = TRUE`, email)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com email %s não existe.", email))
	}
	if err != nil {
		return domain.User{}, apperror.NewDBError("Falha ao buscar usuário por email", err)
	}
	return user, nil
}

// FindByID busca um usuário pelo ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	row := r.DB.QueryRowContext(ctxTimeout,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário %s não existe.", id))
	}
	if err != nil {
		return domain.User{}, apperror.NewDBError("Falha ao buscar usuário", err)
	}
	return user, nil
}

// UpdateLastLogin registra o instante do login bem-sucedido.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	_, err := r.DB.ExecContext(ctxTimeout,
		`UPDATE users SET last_login = $2, updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return apperror.NewDBError("Falha ao registrar último login", err)
	}
	return nil
}

// SetResetToken grava o token de redefinição de senha e sua expiração.
func (r *UserRepository) SetResetToken(ctx context.Context, id, token string, expiry time.Time) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	_, err := r.DB.ExecContext(ctxTimeout,
		`UPDATE users SET reset_token = $2, reset_token_expiry = $3, updated_at = $4 WHERE id = $1`,
		id, token, expiry, time.Now())
	if err != nil {
		return apperror.NewDBError("Falha ao gravar token de redefinição", err)
	}
	return nil
}

// FindByResetToken busca o usuário dono de um token de redefinição ainda válido.
func (r *UserRepository) FindByResetToken(ctx context.Context, resetToken string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	row := r.DB.QueryRowContext(ctxTimeout,
		`SELECT `+userColumns+` FROM users
		 WHERE reset_token = $1 AND reset_token_expiry > $2`,
		resetToken, time.Now())

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return domain.User{}, apperror.NewValidationError("Token de redefinição inválido ou expirado.")
	}
	if err != nil {
		return domain.User{}, apperror.NewDBError("Falha ao buscar token de redefinição", err)
	}
	return user, nil
}

// UpdatePassword troca o hash da senha e limpa o token de redefinição.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	_, err := r.DB.ExecContext(ctxTimeout,
		`UPDATE users SET password_hash = $2, reset_token = NULL, reset_token_expiry = NULL, updated_at = $3
		 WHERE id = $1`,
		id, passwordHash, time.Now())
	if err != nil {
		return apperror.NewDBError("Falha ao atualizar senha", err)
	}
	return nil
}
