package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"salonbook-backend/config"
	"salonbook-backend/models"
	"salonbook-backend/repository"
	"salonbook-backend/routes"
	"salonbook-backend/services"
	"salonbook-backend/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "salonbook",
		Short:        "Salon billing and bookkeeping API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createUserCmd())
	rootCmd.AddCommand(genSecretCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if err := cfg.ValidateDatabase(); err != nil {
				return err
			}
			logger := config.NewLogger(cfg, os.Stderr)

			db, err := config.ConnectDB(cfg)
			if err != nil {
				return err
			}
			defer config.CloseDB(db)

			if err := config.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("migration complete")
			return nil
		},
	}
}

func createUserCmd() *cobra.Command {
	var email, name, password, role string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a login account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if err := cfg.ValidateDatabase(); err != nil {
				return err
			}
			if len(password) < 8 {
				return errors.New("password must be at least 8 characters")
			}
			userRole := models.Role(role)
			if !userRole.Valid() {
				return fmt.Errorf("invalid role %q", role)
			}

			db, err := config.ConnectDB(cfg)
			if err != nil {
				return err
			}
			defer config.CloseDB(db)
			if err := config.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			hash, err := utils.HashPassword(password, cfg.BcryptCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			user := models.User{
				Email:        utils.NormalizeEmail(email),
				Name:         strings.TrimSpace(name),
				PasswordHash: hash,
				Role:         userRole,
			}
			if err := repository.NewUserRepository(db).Create(cmd.Context(), &user); err != nil {
				return err
			}

			fmt.Printf("Created %s user %s (%s)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password (min 8 characters)")
	cmd.Flags().StringVar(&role, "role", string(models.RoleOwner), "owner, staff or dev")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func genSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen-secret",
		Short: "Print a random value for JWT_SECRET",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(utils.GenerateJWTSecret())
		},
	}
}

func serve(ctx context.Context) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := config.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		return err
	}
	defer config.CloseDB(db)

	if err := config.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var cache services.SummaryCache = services.NopSummaryCache{}
	redisClient, err := config.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("redis unavailable, summary cache disabled", "error", err)
	} else if redisClient != nil {
		defer redisClient.Close()
		cache = services.NewRedisSummaryCache(redisClient, cfg.SummaryCacheTTL)
		logger.Info("summary cache enabled", "ttl", cfg.SummaryCacheTTL)
	}

	var notifier services.Notifier = services.NopNotifier{}
	if cfg.TwilioEnabled() {
		notifier = services.NewTwilioNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	}

	deps, err := routes.NewDependencies(cfg, db, cache, notifier, logger)
	if err != nil {
		return err
	}

	if cfg.DailySummaryCron != "" && cfg.TwilioEnabled() {
		job := services.NewDailySummaryJob(deps.Summaries, deps.Notifier, cfg.OwnerPhone, logger)
		if err := job.Start(cfg.DailySummaryCron); err != nil {
			return err
		}
		defer job.Stop()
	}

	r := routes.SetupRouter(deps)
	printRoutes(logger, r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func printRoutes(logger *slog.Logger, r *gin.Engine) {
	for _, route := range r.Routes() {
		logger.Debug("route", "method", route.Method, "path", route.Path)
	}
}
