package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rpupo63/portfolio-cms/api"
	"github.com/rpupo63/portfolio-cms/auth"
	"github.com/rpupo63/portfolio-cms/cache"
	"github.com/rpupo63/portfolio-cms/config"
	"github.com/rpupo63/portfolio-cms/database"
	"github.com/rpupo63/portfolio-cms/media"
	"github.com/rpupo63/portfolio-cms/models"
	"github.com/rpupo63/portfolio-cms/notify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var settings config.Settings

	rootCmd := &cobra.Command{
		Use:           "portfolio",
		Short:         "Portfolio content API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load environment variables from .env file
			if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
				fmt.Printf("Warning: Error loading .env file: %v\n", err)
			}

			env := config.New()
			configureLogging(env)

			if err := config.LoadSSM(cmd.Context(), env); err != nil {
				return fmt.Errorf("load ssm parameters: %w", err)
			}
			settings = config.Load(env)
			return nil
		},
	}

	rootCmd.AddCommand(
		newServeCmd(&settings),
		newMigrateCmd(&settings),
		newCreateUserCmd(&settings),
		newGenerateCmd(&settings),
	)
	return rootCmd
}

// configureLogging sets the global zerolog level and writer from LOG_LEVEL and LOG_FORMAT.
func configureLogging(env map[string]string) {
	level, err := zerolog.ParseLevel(strings.ToLower(config.GetString(env, "LOG_LEVEL", "info")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if strings.EqualFold(config.GetString(env, "LOG_FORMAT", "json"), "console") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func newServeCmd(settings *config.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *settings)
		},
	}
}

func serve(ctx context.Context, settings config.Settings) error {
	log.Info().Msg("Initializing app...")

	db, err := database.Open(settings)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	mediaStore, err := media.New(ctx, settings)
	if err != nil {
		return fmt.Errorf("media store: %w", err)
	}
	defer func() {
		if err := mediaStore.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing media store")
		}
	}()

	cacheStore, err := cache.New(ctx, settings)
	if err != nil {
		return fmt.Errorf("response cache: %w", err)
	}
	defer cacheStore.Close()

	server, err := api.NewServer(settings, db, mediaStore, cacheStore, notify.New(settings))
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	errChannel := make(chan error, 2)

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	if errors.Is(fatalErr, http.ErrServerClosed) {
		return nil
	}
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
	return nil
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}

func newMigrateCmd(settings *config.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(*settings)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}
			log.Info().Msg("Schema is up to date")
			return nil
		},
	}
}

func newCreateUserCmd(settings *config.Settings) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an admin user or reset its password",
		RunE: func(cmd *cobra.Command, args []string) error {
			username = strings.TrimSpace(username)
			if username == "" {
				return errors.New("--username is required")
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			db, err := database.Open(*settings)
			if err != nil {
				return err
			}
			defer db.Close()

			user := &models.User{Username: username, PasswordHash: hash}
			if err := db.UserRepo().Upsert(cmd.Context(), user); err != nil {
				return fmt.Errorf("save user: %w", err)
			}
			log.Info().Str("username", user.Username).Str("id", user.ID.String()).Msg("User saved")
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "admin username")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	return cmd
}

func newGenerateCmd(settings *config.Settings) *cobra.Command {
	var outPath string
	var reportOnly bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate typed query helpers and print the column mismatch report",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(*settings)
			if err != nil {
				return err
			}
			defer db.Close()

			if !reportOnly {
				log.Info().Str("out", outPath).Msg("Generating models and query helpers...")
				if err := models.GenerateModels(db.DB(), outPath); err != nil {
					return err
				}
			}

			report, err := models.GenerateColumnMismatchReport(db.DB())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), models.FormatColumnMismatchReport(report))
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "./generated", "output directory for generated query code")
	cmd.Flags().BoolVar(&reportOnly, "report-only", false, "only print the column mismatch report")
	return cmd
}
