package cli

import (
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/VitaminP8/blogapp/internal/app"
	"github.com/VitaminP8/blogapp/internal/config"
	"github.com/spf13/cobra"
)

type options struct {
	configFile string
	storage    string
	addr       string
}

func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "blogapp",
		Short: "blogapp - minimal blog web application",
		Long: `blogapp serves blog posts, their comments and user accounts over HTTP.

Configuration is read from appsettings.yaml, appsettings.<Environment>.yaml,
.env and environment variables (ConnectionStrings__DefaultConnection).`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: appsettings.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.storage, "storage", "", "storage type: sql or memory")

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newMigrateCommand(opts))

	return rootCmd
}

// loadConfig читает конфигурацию и накладывает флаги командной строки
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("storage") {
		cfg.Storage = opts.storage
	}
	if f := cmd.Flags().Lookup("addr"); f != nil && f.Changed {
		cfg.Server.Addr = opts.addr
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newServeCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  "Create the database schema if needed and serve HTTP until SIGINT/SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					log.Printf("Ошибка при закрытии хранилища: %v", err)
				}
			}()

			// Ожидание SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return a.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

func newMigrateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			factory, err := app.NewFactory(cfg)
			if err != nil {
				return err
			}
			defer factory.Close()

			if err := factory.Migrate(); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			cmd.Println("Schema is up to date")
			return nil
		},
	}
}
