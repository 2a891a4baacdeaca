package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"qsearch/internal/config"
	"qsearch/internal/eventbus"
	"qsearch/internal/logging"
	"qsearch/internal/search"
	"qsearch/internal/ui"
)

var (
	configPath string
	server     string
	apiPath    string
	minChars   int
	timeout    time.Duration
	resultType string
	logLevel   string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "qsearch",
	Short: "Search guides from the terminal",
	Long: `qsearch queries a search endpoint as you type and lists the hits.
Scroll to the end of the list to load more.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	flags.StringVar(&server, "server", "", "Base URL of the search service")
	flags.StringVar(&apiPath, "api", "", "Search endpoint path")
	flags.IntVar(&minChars, "min-chars", 0, "Minimum characters before searching")
	flags.DurationVar(&timeout, "timeout", 0, "Request timeout")
	flags.StringVar(&resultType, "type", "", "Result type used to render hits")
	flags.StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	flags.StringVar(&logFile, "log-file", "", "Log file, - for stderr")
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.NewConfigService(configPath).Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.Server = server
	}
	if flags.Changed("api") {
		cfg.API = apiPath
	}
	if flags.Changed("min-chars") {
		cfg.MinChars = minChars
	}
	if flags.Changed("timeout") {
		cfg.Timeout = config.Duration{Duration: timeout}
	}
	if flags.Changed("type") {
		cfg.ResultType = resultType
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads the configuration and opens the log
func setup(cmd *cobra.Command) (*config.Config, zerolog.Logger, func() error, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	log, closeLog, err := logging.Open(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	return cfg, log, closeLog, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, log, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	bus := eventbus.New(log)
	defer bus.Close()

	form, client, err := search.NewFromConfig(cfg, bus, log, nil)
	if err != nil {
		return err
	}
	form.Attach()
	defer form.Detach()

	log.Info().Str("endpoint", client.Endpoint()).Msg("Starting UI")

	model := ui.NewModel(cfg, form, bus, log)
	defer model.Close()

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)
	model.SetProgram(p)

	if _, err := p.Run(); err != nil && cmd.Context().Err() == nil {
		log.Error().Err(err).Msg("Error running program")
		return fmt.Errorf("error running program: %w", err)
	}
	log.Info().Msg("UI exited normally")
	return nil
}

// exitCode maps an Execute error to a process exit status
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// Main runs the CLI and exits the process
func Main() {
	err := Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCode(err))
}
