// Command freecell starts the Freecell game server.
//
// It supports four commands:
//  1. "serve" (default) – runs the HTTP server exposing the REST API, the browser routes, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" – plays a game in the terminal
//  4. "deal" – prints the deal for a seed
//
// Settings come from the environment (and a .env file); flags override them.
// ngrok tunneling gives easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/freecell/api"
	"github.com/wricardo/freecell/game/config"
	"github.com/wricardo/freecell/game/engine"
	"github.com/wricardo/freecell/game/highscore"
	"github.com/wricardo/freecell/game/service"
	"github.com/wricardo/freecell/game/session"
	"github.com/wricardo/freecell/transport/mcp"
	"github.com/wricardo/freecell/transport/terminal"
	"github.com/wricardo/freecell/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Freecell Server"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Msg("error loading .env file")
		}
	} else {
		log.Debug().Msg("loaded environment variables from .env file")
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("freecell stopped")
	}
}

// newApp builds the command tree. Flags on the root command are inherited by
// every subcommand.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "freecell",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "HTTP server host (HOST)"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port (PORT)"},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging (DEBUG)"},
			&cli.StringFlag{Name: "log-level", Usage: "trace, debug, info, warn or error (LOG_LEVEL)"},
			&cli.StringFlag{Name: "highscores", Usage: "High score backend: file, sqlite or none (HIGHSCORE_BACKEND)"},
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "static-dir", Usage: "Directory served at / (STATIC_DIR)"},
					&cli.BoolFlag{Name: "test-mode", Usage: "Browser routes deal near-won games"},
					&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel (NGROK_ENABLED)"},
					&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token (NGROK_AUTHTOKEN)"},
					&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (NGROK_DOMAIN)"},
				},
				Action: runServe,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server, using a running API server or an internal one",
				Action:  runStdioMCP,
			},
			{
				Name:  "play",
				Usage: "Play in the terminal",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "seed", Usage: "Deal number 1-32000 (random when omitted)"},
					&cli.BoolFlag{Name: "kings-only", Usage: "Only Kings may fill an empty column"},
				},
				Action: runPlay,
			},
			{
				Name:      "deal",
				Usage:     "Print the deal for a seed",
				ArgsUsage: "SEED",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Print the game state as JSON"},
				},
				Action: runDeal,
			},
		},
	}
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}

	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("debug") {
		cfg.Debug = cmd.Bool("debug")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("highscores") {
		cfg.HighScoreBackend = cmd.String("highscores")
	}
	if cmd.IsSet("static-dir") {
		cfg.StaticDir = cmd.String("static-dir")
	}
	if cmd.IsSet("ngrok") {
		cfg.NgrokEnabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-auth") {
		cfg.NgrokAuthToken = cmd.String("ngrok-auth")
	}
	if cmd.IsSet("ngrok-domain") {
		cfg.NgrokDomain = cmd.String("ngrok-domain")
	}

	return cfg, cfg.Validate()
}

// setupLogging configures the global zerolog logger. Debug mode switches to
// human-readable console output.
func setupLogging(cfg config.Config) {
	zerolog.SetGlobalLevel(cfg.Level())
	if cfg.Debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Caller().Logger()
	}
}

// openScores opens the configured high score backend. BackendNone returns a
// nil store, which disables high scores.
func openScores(cfg config.Config) (highscore.Store, error) {
	switch cfg.HighScoreBackend {
	case config.BackendSQLite:
		return highscore.OpenSQLiteStore(cfg.HighScoreDB, cfg.MaxHighScores)
	case config.BackendNone:
		return nil, nil
	default:
		return highscore.NewFileStore(cfg.HighScoreFile, cfg.MaxHighScores)
	}
}

// initializeServices wires the session manager, high score store and game service.
func initializeServices(cfg config.Config) (service.GameService, *session.Manager, highscore.Store, error) {
	scores, err := openScores(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open high scores: %w", err)
	}

	sessionManager := session.NewManager(session.WithMaxSessions(cfg.MaxSessions))
	gameService := service.NewGameService(sessionManager, scores)
	return gameService, sessionManager, scores, nil
}

func closeScores(scores highscore.Store) {
	if scores == nil {
		return
	}
	if err := scores.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close high score store")
	}
}

// staticDir returns dir when it exists, so a missing directory disables static files.
func staticDir(dir string) string {
	if dir == "" {
		return ""
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.Debug().Str("dir", dir).Msg("static directory not found, static files disabled")
		return ""
	}
	return dir
}

// clientURL is the URL the in-process MCP client uses to reach the API.
func clientURL(host string, port int) string {
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

// newRouter mounts the API at / and the MCP JSON-RPC endpoint at /mcp.
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})
	return mainRouter
}

// runServe starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg)

	gameService, sessionManager, scores, err := initializeServices(cfg)
	if err != nil {
		return err
	}
	defer closeScores(scores)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	apiServer, err := api.NewServer(gameService, hub, api.Options{
		StaticDir: staticDir(cfg.StaticDir),
		Cookie: api.CookieConfig{
			Name:   cfg.CookieName,
			Secret: cfg.CookieSecret,
			Secure: cfg.CookieSecure,
		},
		TestMode: cmd.Bool("test-mode"),
	})
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	addr := cfg.Addr()
	mcpClient := mcp.NewClient(clientURL(cfg.Host, cfg.Port))
	mainRouter := newRouter(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go sessionCleanupRoutine(ctx, sessionManager, cfg.SessionCleanupInterval, cfg.SessionTTL)

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().Str("addr", addr).Str("version", Version).Msg("HTTP server listening")
		log.Info().Msgf("REST API: http://%s/api", addr)
		log.Info().Msgf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Info().Msgf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if cfg.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cfg, mainRouter)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case runErr = <-serverErr:
		log.Error().Err(runErr).Msg("HTTP server failed")
		stop()
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("server stopped")
	return runErr
}

// runNgrok serves the router through an ngrok tunnel until ctx is cancelled.
func runNgrok(ctx context.Context, cfg config.Config, handler http.Handler) {
	log.Info().Msg("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if cfg.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.NgrokDomain))
		log.Info().Str("domain", cfg.NgrokDomain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.NgrokAuthToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.Info().Str("url", ngrokURL).Msg("🚀 ngrok tunnel established")
	log.Info().Msgf("  REST API (ngrok): %s/api", ngrokURL)
	log.Info().Msgf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)
	log.Info().Msgf("  Game UI (ngrok): %s/", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within maxAge.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				log.Info().Int("removed", removed).Msg("cleaned up expired sessions")
			}
		}
	}
}

// runStdioMCP runs an MCP stdio server.
// It reuses the API at the configured address when one answers /health; otherwise
// it starts an internal HTTP API bound to a random loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg)

	baseURL := clientURL(cfg.Host, cfg.Port)
	log.Info().Str("url", baseURL).Msg("checking for external API server")

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(baseURL + "/health")
	if err == nil && resp.StatusCode == http.StatusOK {
		resp.Body.Close()
		log.Info().Str("url", baseURL).Msg("external API server found, using it for MCP")
	} else {
		if resp != nil {
			resp.Body.Close()
		}
		log.Info().Msg("no external API server found, starting internal HTTP server")

		gameService, sessionManager, scores, err := initializeServices(cfg)
		if err != nil {
			return err
		}
		defer closeScores(scores)

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go sessionCleanupRoutine(ctx, sessionManager, cfg.SessionCleanupInterval, cfg.SessionTTL)

		internalURL, shutdown, err := startInternalServer(ctx, gameService, cfg)
		if err != nil {
			return err
		}
		defer shutdown()
		baseURL = internalURL
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Str("api", baseURL).Msg("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// startInternalServer serves the API on a random loopback port. The returned
// func stops it.
func startInternalServer(ctx context.Context, gameService service.GameService, cfg config.Config) (string, func(), error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	apiServer, err := api.NewServer(gameService, hub, api.Options{
		Cookie: api.CookieConfig{Name: cfg.CookieName, Secret: cfg.CookieSecret},
	})
	if err != nil {
		listener.Close()
		return "", nil, fmt.Errorf("failed to create API server: %w", err)
	}

	httpServer := &http.Server{Handler: apiServer}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("internal HTTP server error")
		}
	}()

	addr := listener.Addr().String()
	log.Info().Str("addr", addr).Msg("internal HTTP server started for MCP stdio")

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}
	return "http://" + addr, shutdown, nil
}

// runPlay runs the terminal game. Wins are recorded in the configured high
// score backend.
func runPlay(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.Debug && !cmd.IsSet("log-level") {
		cfg.LogLevel = zerolog.LevelWarnValue
	}
	setupLogging(cfg)

	seed := int64(cmd.Int("seed"))
	if err := engine.ValidateSeed(seed); err != nil {
		return err
	}

	gameService, _, scores, err := initializeServices(cfg)
	if err != nil {
		return err
	}
	defer closeScores(scores)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return terminal.New(gameService, os.Stdin, os.Stdout).Run(ctx, service.NewGameOptions{
		Seed:                    seed,
		KingsOnlyOnEmptyTableau: cmd.Bool("kings-only"),
	})
}

// runDeal prints the deal for the seed given as the first argument.
func runDeal(ctx context.Context, cmd *cli.Command) error {
	out, err := dealText(cmd.Args().First(), cmd.Bool("json"))
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// dealText renders the deal for seed as a board or as JSON.
func dealText(arg string, asJSON bool) (string, error) {
	seed, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return "", fmt.Errorf("seed must be an integer, got %q", arg)
	}
	if seed == 0 {
		return "", fmt.Errorf("seed must be between %d and %d", engine.MinSeed, engine.MaxSeed)
	}
	if err := engine.ValidateSeed(seed); err != nil {
		return "", err
	}

	state := engine.NewGame(seed, false, time.Now())
	if !asJSON {
		return engine.Render(state), nil
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
