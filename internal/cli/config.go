package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/routemgr/internal/config"
	"github.com/danieljhkim/routemgr/internal/fsops"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or inspect the route catalog",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example route catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := resolvePaths()
		if err != nil {
			return err
		}

		if err := config.Init(fsops.NewRealFS(), paths.Config, configForce); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		PrintSuccess(out, fmt.Sprintf("Wrote example configuration to %s", paths.Config))
		PrintInfo(out, "Edit active_path, archive_path and routes, then run 'routemgr config show'.")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Validate and print the resolved route catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := resolvePaths()
		if err != nil {
			return err
		}

		cfg, err := config.Load(paths.Config)
		if err != nil {
			return err
		}
		validErr := cfg.Validate()

		out := cmd.OutOrStdout()
		if jsonOutput {
			if err := outputJSON(out, cfg); err != nil {
				return err
			}
			return validErr
		}

		data, err := cfg.Marshal()
		if err != nil {
			return err
		}

		PrintSection(out, "Configuration")
		PrintLabelValue(out, "File", paths.Config)
		PrintLabelValue(out, "Routes", PrintCount(len(cfg.Routes), "route", "routes"))
		fmt.Fprintln(out)
		fmt.Fprint(out, string(data))
		fmt.Fprintln(out)

		if validErr != nil {
			return validErr
		}
		PrintSuccess(out, "Configuration is valid")
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing configuration file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
