package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/rescp17/mailingDashboard/api"
	"github.com/rescp17/mailingDashboard/internal/config"
	"github.com/rescp17/mailingDashboard/pkg/dashboard"
	"github.com/rescp17/mailingDashboard/pkg/poller"
	"github.com/rescp17/mailingDashboard/pkg/ui"
)

var version = "dev"

// cli carries what every subcommand needs once flags are parsed.
type cli struct {
	configPath string
	overrides  config.Overrides
	cfg        config.Config
	logFile    io.Closer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := &cli{}
	root := c.rootCommand()
	err := fang.Execute(ctx, root, fang.WithVersion(version))
	c.close()
	if err != nil {
		os.Exit(1)
	}
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "mailingdash",
		Short: "Upload CSV mailing lists to the dialer for MG and SP",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		RunE: c.runDashboard,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&c.overrides.BaseURL, "base-url", "", "gateway base URL")
	flags.StringVar(&c.overrides.ClientTag, "client-tag", "", "client tag sent with every request")
	flags.StringVar(&c.overrides.LogFile, "log-file", "", "file that receives the logs (default debug.log)")

	root.AddCommand(&cobra.Command{
		Use:   "dashboard",
		Short: "Start the interactive dashboard",
		Args:  cobra.NoArgs,
		RunE:  c.runDashboard,
	})
	root.AddCommand(c.uploadCommand())
	root.AddCommand(c.statusCommand())
	return root
}

// setup loads the configuration and points every logger at the log file,
// keeping the terminal free for the TUI.
func (c *cli) setup() error {
	cfg, err := config.Load(c.configPath, c.overrides)
	if err != nil {
		return err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))

	c.cfg = cfg
	c.logFile = f
	slog.Info("Configuration loaded", "base_url", cfg.BaseURL, "client_tag", cfg.ClientTag)
	return nil
}

func (c *cli) close() {
	if c.logFile == nil {
		return
	}
	if err := c.logFile.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}
}

func (c *cli) client() (*api.Client, error) {
	return api.NewClient(api.Config{
		BaseURL:   c.cfg.BaseURL,
		ClientTag: c.cfg.ClientTag,
		Timeout:   c.cfg.HTTPTimeout,
		Logger:    slog.Default(),
	})
}

func (c *cli) runDashboard(cmd *cobra.Command, args []string) error {
	client, err := c.client()
	if err != nil {
		return err
	}

	app := dashboard.NewApp(client, dashboard.Options{
		Poller: poller.Config{
			StatusInterval: c.cfg.StatusInterval,
			CostsInterval:  c.cfg.CostsInterval,
		},
		Extension: c.cfg.AcceptedExtension,
		Logger:    slog.Default(),
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	appDone := make(chan error, 1)
	go func() {
		appDone <- app.Run(ctx)
	}()

	model := ui.InitialModel(app, ui.Options{
		Extension: c.cfg.AcceptedExtension,
		ToastTTL:  c.cfg.ToastTTL,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := p.Run()

	cancel()
	if err := <-appDone; err != nil {
		slog.Error("App stopped with error", "error", err)
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("dashboard: %w", runErr)
	}
	return nil
}
