// Package server wires the router, middleware and handlers together and owns
// the HTTP server lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aleksej-tulko/foodgram/internal/auth"
	"github.com/aleksej-tulko/foodgram/internal/config"
	"github.com/aleksej-tulko/foodgram/internal/handler"
	"github.com/aleksej-tulko/foodgram/internal/middleware"
	"github.com/aleksej-tulko/foodgram/internal/repository"
	sqliteRepo "github.com/aleksej-tulko/foodgram/internal/repository/sqlite"
	"github.com/aleksej-tulko/foodgram/internal/service"
	"github.com/aleksej-tulko/foodgram/internal/storage"
	"github.com/aleksej-tulko/foodgram/internal/validate"
)

// Server holds the router and the resources it owns. The database connection
// is closed during shutdown.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: database, stores, services,
// handlers and routes.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return err
	}
	passwords := auth.NewPasswordService()
	images, err := storage.NewImageStore(s.config.MediaDir)
	if err != nil {
		return err
	}

	rules := validate.DefaultRules()
	rules.MinCookTime = s.config.MinCookTime
	rules.MaxCookTime = s.config.MaxCookTime

	userService := service.NewUserService(s.db, s.db, passwords, tokens, images, rules, s.logger)
	recipeService := service.NewRecipeService(s.db, s.db, s.db, s.db, images, rules, s.logger)
	collectionService := service.NewCollectionService(s.db, s.db, s.logger)
	subscriptionService := service.NewSubscriptionService(s.db, s.db, s.db, s.logger)
	shoppingService := service.NewShoppingListService(s.db, s.logger)
	catalogService := service.NewCatalogService(s.db, s.db)

	authHandler := handler.NewAuthHandler(userService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	catalogHandler := handler.NewCatalogHandler(catalogService, s.logger)
	recipeHandler := handler.NewRecipeHandler(
		recipeService, collectionService, shoppingService, s.config.BaseURL, s.logger)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService, s.logger)

	requireAuth := auth.RequireAuth(tokens)
	optionalAuth := auth.OptionalAuth(tokens)

	// Stored images: GET /media/recipes/abc.png serves {MediaDir}/recipes/abc.png.
	fileServer := http.FileServer(http.Dir(images.Root()))
	s.router.Handle("/media/*", http.StripPrefix("/media/", fileServer))

	s.router.Get("/s/{hash}", recipeHandler.HandleResolveShortLink)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/token/login/", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Post("/users/", userHandler.HandleRegister)
			r.Get("/users/", userHandler.HandleList)
			r.Get("/users/{id}/", userHandler.HandleProfile)

			r.Get("/tags/", catalogHandler.HandleListTags)
			r.Get("/tags/{id}/", catalogHandler.HandleGetTag)
			r.Get("/ingredients/", catalogHandler.HandleListIngredients)
			r.Get("/ingredients/{id}/", catalogHandler.HandleGetIngredient)

			r.Get("/recipes/", recipeHandler.HandleList)
			r.Get("/recipes/{id}/", recipeHandler.HandleGet)
			r.Get("/recipes/{id}/get-link/", recipeHandler.HandleGetLink)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/auth/token/logout/", authHandler.HandleLogout)
			r.Get("/users/me/", userHandler.HandleMe)
			r.Post("/users/set_password/", userHandler.HandleChangePassword)
			r.Put("/users/me/avatar/", userHandler.HandleSetAvatar)
			r.Delete("/users/me/avatar/", userHandler.HandleRemoveAvatar)

			r.Get("/users/subscriptions/", subscriptionHandler.HandleList)
			r.Post("/users/{id}/subscribe/", subscriptionHandler.HandleSubscribe)
			r.Delete("/users/{id}/subscribe/", subscriptionHandler.HandleUnsubscribe)

			r.Post("/recipes/", recipeHandler.HandleCreate)
			r.Patch("/recipes/{id}/", recipeHandler.HandleUpdate)
			r.Put("/recipes/{id}/", recipeHandler.HandleUpdate)
			r.Delete("/recipes/{id}/", recipeHandler.HandleDelete)

			r.Post("/recipes/{id}/favorite/",
				recipeHandler.HandleAddToCollection(repository.KindFavorite))
			r.Delete("/recipes/{id}/favorite/",
				recipeHandler.HandleRemoveFromCollection(repository.KindFavorite))
			r.Post("/recipes/{id}/shopping_cart/",
				recipeHandler.HandleAddToCollection(repository.KindShoppingCart))
			r.Delete("/recipes/{id}/shopping_cart/",
				recipeHandler.HandleRemoveFromCollection(repository.KindShoppingCart))
			r.Get("/recipes/download_shopping_cart/", recipeHandler.HandleDownloadShoppingCart)
		})
	})

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully and
// closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
