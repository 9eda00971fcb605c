package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"stockbuddy/config"
	"stockbuddy/internal/notifier"
	"stockbuddy/internal/pkg/cache"
	"stockbuddy/internal/pkg/database"
	"stockbuddy/internal/pkg/logger"
	"stockbuddy/internal/pkg/token"

	// Camadas da aplicação para Injeção de Dependências
	"stockbuddy/internal/api/approval"
	"stockbuddy/internal/api/item"
	"stockbuddy/internal/api/repair"
	"stockbuddy/internal/api/router"
	"stockbuddy/internal/api/stock"
	"stockbuddy/internal/api/user"
	"stockbuddy/internal/repository/itemrepo"
	"stockbuddy/internal/repository/ledgerrepo"
	"stockbuddy/internal/repository/repairrepo"
	"stockbuddy/internal/repository/stockrepo"
	"stockbuddy/internal/repository/userrepo"
	"stockbuddy/internal/service/approvalservice"
	"stockbuddy/internal/service/itemservice"
	"stockbuddy/internal/service/repairservice"
	"stockbuddy/internal/service/stockservice"
	"stockbuddy/internal/service/userservice"
)

func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando serviço StockBuddy...")

	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	// Se o arquivo .env não existir, seguimos: as variáveis essenciais podem
	// estar no ambiente do sistema (ex: Docker).
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", map[string]interface{}{"env": cfg.Environment})

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	// C. Serviço de Tokens (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	log.Debug("Serviço de Tokens JWT inicializado.", nil)

	// D. Notificador (entrega via log estruturado)
	notify := notifier.NewLogNotifier(log)

	// 3. INJEÇÃO DE DEPENDÊNCIAS (Montagem da Clean Architecture)
	// Ordem: Repository -> Service -> Handler

	// A. Repositórios (Camada de Acesso a Dados)
	stockRepo := stockrepo.NewStockRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, log)
	ledgerRepo := ledgerrepo.NewLedgerRepository(db, cfg.DBTimeout, log)
	repairRepo := repairrepo.NewRepairRepository(db, cfg.DBTimeout, log)
	itemRepo := itemrepo.NewItemRepository(db, cfg.DBTimeout, log)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositórios inicializados.", nil)

	// B. Serviços (Camada de Lógica de Negócio)
	stockSvc := stockservice.NewService(stockRepo, notify, log)
	approvalSvc := approvalservice.NewService(ledgerRepo, stockRepo, notify, log)
	repairSvc := repairservice.NewService(repairRepo, stockRepo, notify, log)
	itemSvc := itemservice.NewService(itemRepo, log)
	userSvc := userservice.NewService(userRepo, tokenSvc, notify, log)
	log.Debug("Serviços inicializados.", nil)

	// C. Handlers (Camada de Apresentação)
	stockHandler := stock.NewHandler(stockSvc, log)
	approvalHandler := approval.NewHandler(approvalSvc, log)
	repairHandler := repair.NewHandler(repairSvc, log)
	itemHandler := item.NewHandler(itemSvc, log)
	userHandler := user.NewHandler(userSvc, log)
	log.Debug("Handlers inicializados.", nil)

	// 4. Configuração e Início do Roteador/Servidor
	r := router.NewRouter(
		userHandler,
		itemHandler,
		stockHandler,
		approvalHandler,
		repairHandler,
		tokenSvc,
		cacheClient,
		cfg.RateLimitMaxRequests,
		cfg.RateLimitPeriod,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor StockBuddy ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	// Lógica do Graceful Shutdown (captura de sinal)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	// Timeout para desligamento (usa o contexto)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
