package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/propdash/internal/config"
)

func newConfigCommand() *cobra.Command {
	var defaults bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the merged configuration as YAML",
		Long: `Print the configuration propdash would run with: built-in defaults, then
the config file, then PROPDASH_* environment variables. Secrets are redacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if defaults {
				_, err := cmd.OutOrStdout().Write(config.DefaultConfigYAML())
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, "print the built-in defaults instead")
	return cmd
}
