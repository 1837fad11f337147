package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"rollbook-service/internal/app"
	"rollbook-service/internal/config"
	"rollbook-service/internal/infra/memory"
	pgroster "rollbook-service/internal/infra/postgres"
	infraredis "rollbook-service/internal/infra/redis"
	transport "rollbook-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the ledger server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// stores bundles the wired persistence layer for the server and import commands.
type stores struct {
	roster     app.Roster
	attendance app.AttendanceStore
	quiz       app.QuizLedger
	pool       *pgxpool.Pool
}

func (s *stores) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// buildStores wires redis/postgres when configured and falls back to the
// in-memory implementations otherwise.
func buildStores(ctx context.Context, cfg config.Config) (*stores, error) {
	st := &stores{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	if redisClient != nil {
		st.attendance = infraredis.NewAttendanceStore(redisClient)
		st.quiz = infraredis.NewQuizLedger(redisClient)
	} else {
		st.attendance = memory.NewAttendanceStore()
		st.quiz = memory.NewQuizLedger()
	}

	var roster app.Roster = memory.NewRoster()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		st.pool = pool
		roster = pgroster.NewRoster(pool)
	}
	rosterTTL := config.TTLDuration(cfg.Roster.CacheTTL, time.Minute)
	st.roster = memory.NewRosterCache(roster, rosterTTL)
	return st, nil
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	st, err := buildStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	service := app.NewLedgerService(st.roster, st.attendance, st.quiz)
	importer := app.NewImporter(st.roster, st.attendance, st.quiz)
	wsHandler := transport.NewWSHandler(service)
	apiHandler := transport.NewAPIHandler(service, importer)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	apiHandler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting ledger service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
