package router

import (
	"net/http"
	"time"

	"stockbuddy/internal/api/approval"
	"stockbuddy/internal/api/item"
	"stockbuddy/internal/api/repair"
	"stockbuddy/internal/api/stock"
	"stockbuddy/internal/api/user"
	"stockbuddy/internal/domain"
	"stockbuddy/internal/pkg/cache"
	"stockbuddy/internal/pkg/middleware"
)

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(
	userHandler *user.Handler,
	itemHandler *item.Handler,
	stockHandler *stock.Handler,
	approvalHandler *approval.Handler,
	repairHandler *repair.Handler,
	tokenSvc middleware.TokenService,
	cacheClient cache.Client,
	rateLimitMax int,
	rateLimitPeriod time.Duration,
) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento.
	mux := http.NewServeMux()

	// Middlewares de autenticação e autorização.
	auth := middleware.NewAuthMiddleware(tokenSvc)
	adminOnly := middleware.PermissionMiddleware(domain.RoleAdmin)

	// --- 1. Rotas de Health Check ---
	mux.HandleFunc("/ping", PingHandler)

	// --- 2. Rotas públicas de identidade ---
	mux.HandleFunc("/v1/register", userHandler.RegisterUserHandler)
	mux.HandleFunc("/v1/login", userHandler.LoginUserHandler)
	mux.HandleFunc("/v1/forgot-password", userHandler.ForgotPasswordHandler)
	mux.HandleFunc("/v1/reset-password", userHandler.ResetPasswordHandler)

	// --- 3. Rotas autenticadas ---
	mux.HandleFunc("/v1/me", auth(userHandler.ProfileHandler))

	// Itens (metadados; quantidades só mudam via movimentações)
	mux.HandleFunc("/v1/items", auth(itemHandler.ItemsHandler))
	mux.HandleFunc("/v1/items/search", auth(itemHandler.SearchItemsHandler))
	mux.HandleFunc("/v1/items/", auth(itemHandler.ItemByIDHandler))

	// Movimentações de estoque
	mux.HandleFunc("/v1/stock/add", auth(stockHandler.AddStockHandler))
	mux.HandleFunc("/v1/stock/transfer", auth(stockHandler.TransferStockHandler))
	mux.HandleFunc("/v1/stock/location/", auth(stockHandler.GetStockByLocationHandler))

	// Descartes (sempre aprovados por admin)
	mux.HandleFunc("/v1/disposals", auth(approvalHandler.RequestDisposalHandler))
	mux.HandleFunc("/v1/disposals/resolve", auth(adminOnly(approvalHandler.ResolveDisposalHandler)))
	mux.HandleFunc("/v1/disposals/pending", auth(adminOnly(approvalHandler.PendingDisposalsHandler)))

	// Transferências pendentes (gating de staff)
	mux.HandleFunc("/v1/transfers/resolve", auth(adminOnly(approvalHandler.ResolveTransferHandler)))
	mux.HandleFunc("/v1/transfers/pending", auth(adminOnly(approvalHandler.PendingTransfersHandler)))

	// Ciclo de conserto
	mux.HandleFunc("/v1/repairs/send", auth(repairHandler.SendForRepairHandler))
	mux.HandleFunc("/v1/repairs/return", auth(repairHandler.ReturnFromRepairHandler))
	mux.HandleFunc("/v1/repairs", auth(repairHandler.ListRepairTicketsHandler))

	// --- 4. Middlewares globais ---
	rateLimiter := middleware.RateLimiter(cacheClient, rateLimitMax, rateLimitPeriod)

	return rateLimiter(mux)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
