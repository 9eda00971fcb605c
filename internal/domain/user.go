package domain

import "time"

// User representa a entidade do usuário no sistema.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Oculta o hash da senha no JSON de resposta
	Name         string     `json:"name"`
	Role         UserRole   `json:"role"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UserRole é um tipo string para representar o papel do usuário no sistema.
// O papel dirige a classificação imediato-vs-gated das movimentações.
type UserRole string

// Constantes para os papéis de usuário.
const (
	RoleAdmin UserRole = "admin"
	RoleStaff UserRole = "staff"
)

// Actor é a identidade autenticada anexada a toda operação do core.
// É fornecida pela camada de autenticação (JWT) — o core nunca a deriva
// de estado ambiente.
type Actor struct {
	ID   string
	Role UserRole
}

// UserRegistration representa o payload de entrada para o registro.
type UserRegistration struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Name     string   `json:"name"`
	Role     UserRole `json:"role,omitempty"` // Opcional; padrão staff
}
