package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"qsearch/internal/config"
	"qsearch/internal/eventbus"
)

var initForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bus := eventbus.New(zerolog.Nop())
		defer bus.Close()

		saved := make(chan string, 1)
		unsubscribe := bus.Subscribe(eventbus.EventConfigSaved, func(e eventbus.DomainEvent) {
			saved <- e.(eventbus.ConfigSavedEvent).Path
		})
		defer unsubscribe()

		svc := config.NewConfigServiceWithBus(configPath, bus)
		if _, err := os.Stat(svc.Path()); err == nil && !initForce {
			return fmt.Errorf("%s already exists, use --force to overwrite", svc.Path())
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}

		if err := svc.Save(config.DefaultConfig()); err != nil {
			return err
		}
		select {
		case path := <-saved:
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		case <-cmd.Context().Done():
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		data, err := toml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), config.NewConfigService(configPath).Path())
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}
