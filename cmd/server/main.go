package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/j8kin/fantasy-empires-wars/internal/auth"
	"github.com/j8kin/fantasy-empires-wars/internal/config"
	"github.com/j8kin/fantasy-empires-wars/internal/handler"
	"github.com/j8kin/fantasy-empires-wars/internal/logger"
	"github.com/j8kin/fantasy-empires-wars/internal/middleware"
	"github.com/j8kin/fantasy-empires-wars/internal/repository/postgres"
	redisrepo "github.com/j8kin/fantasy-empires-wars/internal/repository/redis"
	"github.com/j8kin/fantasy-empires-wars/internal/service"
)

func main() {
	logger.Init()
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Server exited")
	}
}

func run() error {
	cfg := config.Load()
	log.Info().Str("port", cfg.Port).Msg("Config loaded")

	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := redisrepo.NewClient(cfg.RedisURL)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// Turn deadlines rely on key-expiry notifications; without them the
	// polling sweep still catches lapsed turns, just later.
	if err := redisClient.Underlying().ConfigSet(context.Background(), "notify-keyspace-events", "Ex").Err(); err != nil {
		log.Warn().Err(err).Msg("Failed to enable Redis keyspace notifications")
	}

	userRepo := postgres.NewUserRepo(db)
	gameRepo := postgres.NewGameRepo(db)
	turnRepo := postgres.NewTurnRepo(db)
	messageRepo := postgres.NewMessageRepo(db)

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)
	googleOAuth := auth.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)

	wsHub := handler.NewHub()

	gameSvc := service.NewGameService(gameRepo, userRepo)
	turnSvc := service.NewTurnService(gameRepo, turnRepo, redisClient, wsHub)
	cmdSvc := service.NewCommandService(gameRepo, turnRepo, redisClient, turnSvc, wsHub)
	timerListener := service.NewTimerListener(redisClient.Underlying(), turnSvc)

	mux := newRouter(routerDeps{
		jwtMgr:   jwtMgr,
		auth:     handler.NewAuthHandler(googleOAuth, jwtMgr, userRepo),
		users:    handler.NewUserHandler(userRepo),
		games:    handler.NewGameHandler(gameSvc, turnSvc, wsHub),
		commands: handler.NewCommandHandler(cmdSvc),
		turns:    handler.NewTurnHandler(turnRepo),
		messages: handler.NewMessageHandler(messageRepo, turnRepo, wsHub),
		ws:       handler.NewWSHandler(wsHub, jwtMgr),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.Chain(mux, middleware.Logger, middleware.CORS(cfg.CORSOrigin), middleware.JSON),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Rebuild engine sessions for games that were active when the
	// previous process died.
	if err := turnSvc.RecoverActiveGames(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to recover active games")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go timerListener.Start(ctx)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("Server stopped")
	return nil
}

type routerDeps struct {
	jwtMgr   *auth.JWTManager
	auth     *handler.AuthHandler
	users    *handler.UserHandler
	games    *handler.GameHandler
	commands *handler.CommandHandler
	turns    *handler.TurnHandler
	messages *handler.MessageHandler
	ws       *handler.WSHandler
}

func newRouter(d routerDeps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Public auth endpoints.
	mux.HandleFunc("GET /auth/google/login", d.auth.GoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", d.auth.GoogleCallback)
	mux.HandleFunc("POST /auth/refresh", d.auth.RefreshToken)
	mux.HandleFunc("GET /auth/dev", d.auth.DevLogin)

	// Everything under /api/v1 requires an access token.
	api := http.NewServeMux()
	api.HandleFunc("GET /users/me", d.users.GetMe)
	api.HandleFunc("PATCH /users/me", d.users.UpdateMe)
	api.HandleFunc("GET /users/{id}", d.users.GetUser)
	api.HandleFunc("POST /games", d.games.CreateGame)
	api.HandleFunc("GET /games", d.games.ListGames)
	api.HandleFunc("GET /games/{id}", d.games.GetGame)
	api.HandleFunc("GET /games/{id}/state", d.games.GetGameState)
	api.HandleFunc("POST /games/{id}/join", d.games.JoinGame)
	api.HandleFunc("POST /games/{id}/start", d.games.StartGame)
	api.HandleFunc("DELETE /games/{id}", d.games.DeleteGame)
	api.HandleFunc("POST /games/{id}/stop", d.games.StopGame)
	api.HandleFunc("POST /games/{id}/commands", d.commands.SubmitCommand)
	api.HandleFunc("POST /games/{id}/end-turn", d.commands.EndTurn)
	api.HandleFunc("GET /games/{id}/magic/{magicId}/targets", d.commands.MagicTargets)
	api.HandleFunc("GET /games/{id}/turns", d.turns.ListTurns)
	api.HandleFunc("GET /games/{id}/turns/current", d.turns.CurrentTurn)
	api.HandleFunc("GET /games/{id}/turns/{turnId}/commands", d.turns.TurnCommands)
	api.HandleFunc("GET /games/{id}/messages", d.messages.ListMessages)
	api.HandleFunc("POST /games/{id}/messages", d.messages.SendMessage)
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", auth.Middleware(d.jwtMgr)(api)))

	// WebSocket authenticates itself via ?token=, outside the middleware.
	mux.HandleFunc("GET /api/v1/ws", d.ws.ServeWS)

	return mux
}
