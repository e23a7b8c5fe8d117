package api

import (
	"fmt"
	"net/http"
	"time"

	"finance/src/api/controllers"
	handlers "finance/src/api/handlers"
	"finance/src/clients/quotes"
	"finance/src/config"
	"finance/src/database"
	"finance/src/repositories"
	"finance/src/scheduler"
	"finance/src/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router  *chi.Mux
	Handler handlers.Handler

	pool       *pgxpool.Pool
	cacheSweep *scheduler.ScheduledTask
}

func NewServer(cfg *config.Config, logger *logrus.Logger) (*Server, error) {
	pool, err := database.SetupDB(cfg)
	if err != nil {
		return nil, err
	}

	users := repositories.NewUserRepository(pool)
	holdings := repositories.NewHoldingRepository(pool)
	history := repositories.NewHistoryRepository(pool)
	quoteClient := quotes.NewClient(cfg)

	startingCash, err := decimal.NewFromString(cfg.Auth.StartingCash)
	if err != nil {
		return nil, fmt.Errorf("invalid startingCash in config: %w", err)
	}

	tokenAuth := jwtauth.New("HS256", []byte(cfg.Auth.JWTSecret), nil)
	tokenTTL := time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute

	authController := controllers.NewAuthController(users, tokenAuth, tokenTTL, startingCash)
	tradeController := controllers.NewTradeController(pool, users, holdings, history, quoteClient)
	quoteController := controllers.NewQuoteController(quoteClient)

	server := &Server{
		Router:  chi.NewRouter(),
		Handler: *handlers.NewHandler(authController, tradeController, quoteController),
		pool:    pool,
	}
	server.InitRoutes(tokenAuth, logger)

	sweep, err := scheduler.NewScheduledTask("quote-cache-sweep", cfg.Quotes.CacheSweepSpec, logger, func() {
		quoteClient.SweepCache()
	})
	if err != nil {
		return nil, fmt.Errorf("invalid quote cache sweep schedule: %w", err)
	}
	server.cacheSweep = sweep

	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes(tokenAuth *jwtauth.JWTAuth, logger *logrus.Logger) {
	s.Router.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler)
	s.Router.Use(requestLogger(logger))

	s.Router.Get("/alive", handlers.Healthcheck)

	s.Router.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.Handler.Register)
		r.Post("/login", s.Handler.Login)
	})

	s.Router.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator)

		r.Get("/api/quotes/{symbol}", s.Handler.GetQuote)

		r.Route("/api/trades", func(r chi.Router) {
			r.Post("/buy", s.Handler.Buy)
			r.Post("/sell", s.Handler.Sell)
		})

		r.Route("/api/portfolio", func(r chi.Router) {
			r.Get("/", s.Handler.GetPortfolio)
			r.Get("/cash", s.Handler.GetCashBalance)
		})

		r.Route("/api/history", func(r chi.Router) {
			r.Get("/", s.Handler.GetHistory)
			r.Get("/export", s.Handler.ExportHistory)
		})
	})
}

// Close stops the background cache sweep and releases the connection pool.
func (s *Server) Close() {
	if s.cacheSweep != nil {
		s.cacheSweep.Cancel()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

func NewHTTPServer(server *Server, port string) *http.Server {
	httpServer := &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Handler:      server,
	}
	return httpServer
}

// requestLogger stores a request-scoped logger in the context so controllers
// can log with request fields attached.
func requestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry := logger.WithFields(logrus.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			next.ServeHTTP(w, r.WithContext(utils.WithLogger(r.Context(), entry)))
		})
	}
}
