package cmd

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pawcal/pawcal/internal/backend"
	"github.com/pawcal/pawcal/internal/config"
	"github.com/pawcal/pawcal/internal/store"
	"github.com/pawcal/pawcal/internal/ui"
)

const (
	filePerms = 0o644
	dirPerms  = 0o755
)

var (
	cfgFile     string
	backendKind string
	apiURL      string
	dataFile    string
	cfg         *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "pawcal",
	Short: "A terminal calendar for veterinary clinic reminders",
	Long: `pawcal is a terminal calendar for scheduling pet care reminders:
vaccinations, checkups and grooming appointments, per owner and pet.

It works on a local SQLite file or against a reminder REST API,
which "pawcal serve" also provides.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
	RunE:              runTUI,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default: first of $PAWCAL_CONFIG, ~/.config/pawcal/pawcalrc, ~/.pawcalrc)")
	rootCmd.PersistentFlags().StringVar(&backendKind, "backend", "", "Backend to use: local or http")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Reminder API base URL for the http backend")
	rootCmd.PersistentFlags().StringVarP(&dataFile, "data", "d", "", "SQLite data file for the local backend")
}

func initConfig(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile != "" {
		cfg = config.DefaultConfig()
		err = cfg.LoadFile(cfgFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	overrides := []struct{ name, value string }{
		{"backend", backendKind},
		{"api_url", apiURL},
		{"data_file", dataFile},
	}
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		if err := cfg.SetVariable(o.name, o.value); err != nil {
			return fmt.Errorf("--%s: %w", o.name, err)
		}
	}
	return nil
}

// setupLogging points the global logger at w, or at the configured log file
// when w is nil. The returned func releases the file.
func setupLogging(w io.Writer) (func(), error) {
	zerolog.SetGlobalLevel(cfg.LogLevel)

	if w != nil {
		log.Logger = log.With().Caller().Logger().Output(zerolog.ConsoleWriter{
			Out: w, TimeFormat: "2006-01-02_15:04:05",
		})
		return func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), dirPerms); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, fs.FileMode(filePerms))
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	log.Logger = log.With().Caller().Logger().Output(zerolog.ConsoleWriter{
		Out: logFile, TimeFormat: "2006-01-02_15:04:05",
	})
	return func() { logFile.Close() }, nil
}

// openStore opens the local data file, creating and seeding it on first use.
func openStore(ctx context.Context) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DataFile), dirPerms); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	s, err := store.Open(ctx, cfg.DataFile, true)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.DataFile, err)
	}
	return s, nil
}

// openBackend builds the configured backend. The cleanup func is never nil.
// The watcher is only set for a local backend with store watching enabled.
func openBackend(ctx context.Context) (backend.Backend, *backend.Watcher, func(), error) {
	switch cfg.Backend {
	case config.BackendHTTP:
		client := backend.NewClient(cfg.APIURL, cfg.RequestTimeout)
		client.PageSize = cfg.PageSize
		log.Info().Str("url", cfg.APIURL).Msg("using reminder API")
		return client, nil, func() {}, nil
	}

	s, err := openStore(ctx)
	if err != nil {
		return nil, nil, func() {}, err
	}
	log.Info().Str("file", s.Path()).Msg("using local store")

	if !cfg.WatchStore {
		return s, nil, func() { s.Close() }, nil
	}

	w, err := backend.NewWatcher()
	if err != nil {
		log.Warn().Err(err).Msg("store watching disabled")
		return s, nil, func() { s.Close() }, nil
	}
	if err := w.Add(s.Path()); err != nil {
		log.Warn().Err(err).Msg("store watching disabled")
		w.Close()
		return s, nil, func() { s.Close() }, nil
	}

	return s, w, func() {
		w.Close()
		s.Close()
	}, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	closeLog, err := setupLogging(nil)
	if err != nil {
		return err
	}
	defer closeLog()

	log.Info().Msg("starting pawcal")

	b, watcher, cleanup, err := openBackend(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	model := ui.NewModel(ui.Options{
		Config:  cfg,
		Backend: b,
		Watcher: watcher,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	return nil
}
