package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	_ "net/http/pprof"
	"time"

	database "github.com/sebuszqo/FinanceTracker/db"
	"github.com/sebuszqo/FinanceTracker/internal/auth"
	"github.com/sebuszqo/FinanceTracker/internal/config"
	"github.com/sebuszqo/FinanceTracker/internal/finance/application"
	"github.com/sebuszqo/FinanceTracker/internal/finance/infrastructure"
	"github.com/sebuszqo/FinanceTracker/internal/finance/interfaces"
	"github.com/sebuszqo/FinanceTracker/internal/insight"
	"github.com/sebuszqo/FinanceTracker/internal/user"
)

type Response struct {
	Message string `json:"message"`
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("Started %s %s", r.Method, r.URL.Path)

		next.ServeHTTP(w, r)

		log.Printf("Completed %s in %v", r.URL.Path, time.Since(start))
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string, errors ...[]string) {
	payload := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}
	if len(errors) > 0 && len(errors[0]) > 0 {
		payload["errors"] = errors[0]
	}
	respondJSON(w, status, payload)
}

type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

type Server struct {
	router             *http.ServeMux
	db                 HealthChecker
	authHandler        *auth.Handler
	userHandler        *user.Handler
	authService        auth.Service
	categoryHandler    *interfaces.CategoryHandler
	transactionHandler *interfaces.TransactionHandler
	budgetHandler      *interfaces.BudgetHandler
	insightHandler     *insight.Handler
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	stats := s.db.Health(ctx)
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, map[string]interface{}{
		"status":   "ok",
		"database": stats,
	})
}

func (s *Server) RegisterRoutes() {
	protect := s.authService.JWTAccessTokenMiddleware()
	withID := func(h http.HandlerFunc, param, notFound string) http.Handler {
		return protect(interfaces.ValidateIDPathParamMiddleware(h, respondError, param, notFound))
	}

	// Public routes
	publicRoutes := http.NewServeMux()
	publicRoutes.Handle("POST /api/register", http.HandlerFunc(s.userHandler.HandleRegister))
	publicRoutes.Handle("POST /api/auth/login", http.HandlerFunc(s.authHandler.HandleLogin))
	publicRoutes.Handle("POST /api/auth/logout", http.HandlerFunc(s.authHandler.HandleLogout))
	publicRoutes.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))
	publicRoutes.Handle("GET /api/health", http.HandlerFunc(s.handleHealth))

	// Protected routes (using JWT Access Token Middleware)
	protectedRoutes := http.NewServeMux()
	protectedRoutes.Handle("GET /api/protected/profile", protect(http.HandlerFunc(s.userHandler.HandleGetUserProfile)))
	protectedRoutes.Handle("PUT /api/protected/profile/password", protect(http.HandlerFunc(s.userHandler.HandleChangePassword)))

	// CATEGORIES
	protectedRoutes.Handle("GET /api/protected/categories", protect(http.HandlerFunc(s.categoryHandler.GetCategories)))
	protectedRoutes.Handle("POST /api/protected/categories", protect(http.HandlerFunc(s.categoryHandler.CreateCategory)))
	protectedRoutes.Handle("PUT /api/protected/categories/{categoryID}",
		withID(s.categoryHandler.UpdateCategory, "categoryID", "Category not found"))
	protectedRoutes.Handle("DELETE /api/protected/categories/{categoryID}",
		withID(s.categoryHandler.DeleteCategory, "categoryID", "Category not found"))

	// TRANSACTIONS
	protectedRoutes.Handle("GET /api/protected/transactions", protect(http.HandlerFunc(s.transactionHandler.GetUserTransactions)))
	protectedRoutes.Handle("POST /api/protected/transactions", protect(http.HandlerFunc(s.transactionHandler.CreateTransaction)))
	protectedRoutes.Handle("POST /api/protected/transactions/bulk", protect(http.HandlerFunc(s.transactionHandler.CreateTransactionsBulk)))
	protectedRoutes.Handle("GET /api/protected/transactions/summary", protect(http.HandlerFunc(s.transactionHandler.GetTransactionSummary)))
	protectedRoutes.Handle("GET /api/protected/transactions/{transactionID}",
		withID(s.transactionHandler.GetTransaction, "transactionID", "Transaction not found"))
	protectedRoutes.Handle("PUT /api/protected/transactions/{transactionID}",
		withID(s.transactionHandler.UpdateTransaction, "transactionID", "Transaction not found"))
	protectedRoutes.Handle("DELETE /api/protected/transactions/{transactionID}",
		withID(s.transactionHandler.DeleteTransaction, "transactionID", "Transaction not found"))

	// BUDGETS
	protectedRoutes.Handle("GET /api/protected/budgets", protect(http.HandlerFunc(s.budgetHandler.GetBudgets)))
	protectedRoutes.Handle("POST /api/protected/budgets", protect(http.HandlerFunc(s.budgetHandler.CreateBudget)))
	protectedRoutes.Handle("GET /api/protected/budgets/{budgetID}",
		withID(s.budgetHandler.GetBudget, "budgetID", "Budget not found"))
	protectedRoutes.Handle("PUT /api/protected/budgets/{budgetID}",
		withID(s.budgetHandler.UpdateBudget, "budgetID", "Budget not found"))
	protectedRoutes.Handle("DELETE /api/protected/budgets/{budgetID}",
		withID(s.budgetHandler.DeleteBudget, "budgetID", "Budget not found"))

	// INSIGHTS
	protectedRoutes.Handle("GET /api/protected/insights", protect(http.HandlerFunc(s.insightHandler.HandleDashboard)))
	protectedRoutes.Handle("GET /api/protected/insights/list", protect(http.HandlerFunc(s.insightHandler.HandleList)))
	protectedRoutes.Handle("POST /api/protected/insights/{insightID}/read", protect(http.HandlerFunc(s.insightHandler.HandleMarkRead)))
	protectedRoutes.Handle("DELETE /api/protected/insights/{insightID}", protect(http.HandlerFunc(s.insightHandler.HandleDelete)))

	// Refresh token routes
	refreshTokenRoutes := http.NewServeMux()
	refreshTokenRoutes.Handle("PUT /api/refresh/token", s.authService.JWTRefreshTokenMiddleware()(http.HandlerFunc(s.authHandler.RefreshAccessToken)))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/api/", publicRoutes)
	mainRouter.Handle("/api/protected/", protectedRoutes)
	mainRouter.Handle("/api/refresh/", refreshTokenRoutes)
	mainRouter.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = mainRouter
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to an optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Could not load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Missing configuration, update to start server: %v", err)
	}

	dbService, err := database.NewDBService(cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("Could not initialize database: %v", err)
	}
	defer dbService.Close()

	if cfg.DB.AutoMigrate {
		if err := dbService.Migrate(context.Background()); err != nil {
			log.Fatalf("Could not migrate database: %v", err)
		}
	}

	userRepo := user.NewUserRepository(dbService.DB)
	userService := user.NewUserService(userRepo)
	userHandler := user.NewHandler(userService)

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	authService := auth.NewAuthService(userService, jwtManager)
	authHandler := auth.NewHandler(authService, jwtManager.RefreshTTL())

	categoryRepo := infrastructure.NewCategoryRepository(dbService.DB)
	transactionRepo := infrastructure.NewTransactionRepository(dbService.DB)
	budgetRepo := infrastructure.NewBudgetRepository(dbService.DB)

	categoryService := application.NewCategoryService(categoryRepo)
	transactionService := application.NewTransactionService(transactionRepo, categoryService)
	budgetService := application.NewBudgetService(budgetRepo, categoryService)

	insightRepo := insight.NewPostgresRepository(dbService.DB)
	generator := insight.NewGenerator(transactionRepo, budgetRepo, insightRepo, cfg.Insights.CurrencySymbol)

	server := &Server{
		router:             http.NewServeMux(),
		db:                 dbService,
		authHandler:        authHandler,
		userHandler:        userHandler,
		authService:        authService,
		categoryHandler:    interfaces.NewCategoryHandler(categoryService, respondJSON, respondError),
		transactionHandler: interfaces.NewTransactionHandler(transactionService, respondJSON, respondError),
		budgetHandler:      interfaces.NewBudgetHandler(budgetService, respondJSON, respondError),
		insightHandler:     insight.NewHandler(generator, insightRepo, respondJSON, respondError),
	}
	server.RegisterRoutes()

	if cfg.Insights.Schedule != "" {
		scheduler, err := insight.StartScheduler(cfg.Insights.Schedule, userService, generator)
		if err != nil {
			log.Fatalf("Scheduler didn't start, stopping the app: %v", err)
		}
		defer scheduler.Stop()
		log.Printf("Insight scheduler started with spec %q", cfg.Insights.Schedule)
	}

	if cfg.Server.PprofAddress != "" {
		log.Printf("Starting perf on %s...", cfg.Server.PprofAddress)
		go func() {
			log.Println(http.ListenAndServe(cfg.Server.PprofAddress, nil))
		}()
	}

	log.Printf("Server starting on %s...", cfg.Server.Address)
	if err := http.ListenAndServe(cfg.Server.Address, loggingMiddleware(server.router)); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
