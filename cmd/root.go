package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/oakwood-commons/propdash/internal/config"
	"github.com/oakwood-commons/propdash/internal/source"
	"github.com/oakwood-commons/propdash/pkg/logger"
	"github.com/oakwood-commons/propdash/pkg/settings"
)

type rootOptions struct {
	configFile string
	logLevel   string
	noColor    bool
}

// NewRootCommand builds the propdash command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   settings.CliBinaryName,
		Short: "Render property development data as a readable report",
		Long: `propdash looks up a property by address or coordinates and turns the
nested JSON the property API returns into a report: headline cards for the
most telling figures and one table per section of the record.

Reports can be printed (table, tree, markdown, json, yaml), browsed
interactively, or served as a web dashboard.`,
		Example: "\n  propdash report --query \"123 Harbour Street, Sydney\"\n  propdash report --lat -33.8688 --lng 151.2093 -o markdown\n  propdash report --demo -e '_.overlays.filter(o, o.applies)'\n  propdash report saved.json --search zoning\n  propdash serve --addr :9090\n",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")
	root.Version = versionString()

	root.SetGlobalNormalizationFunc(normalizeFlagName)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config-file", "", "path to a YAML or TOML config file (default $XDG_CONFIG_HOME/propdash/config.yaml)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug|info|warn|error")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable color output")

	root.AddCommand(
		newReportCommand(),
		newServeCommand(),
		newConfigCommand(),
		newVersionCommand(),
	)
	return root
}

// normalizeFlagName accepts snake_case spellings of dashed flags.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// Execute runs the command tree against os.Args.
func Execute() error {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		return fmt.Errorf("%s: %w", settings.CliBinaryName, err)
	}
	return nil
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	level, err := zapcore.ParseLevel(o.logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q", o.logLevel)
	}

	run := settings.NewCliParams()
	run.MinLogLevel = int8(level)
	run.ConfigFile = resolveConfigPath(o.configFile)
	run.NoColor = o.noColor || os.Getenv("NO_COLOR") != ""
	if cmd.Name() == "serve" {
		run.Surface = settings.SurfaceServer
	}

	lgr := logger.Setup(logger.Options{Level: run.MinLogLevel, Surface: run.Surface})
	lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = settings.IntoContext(ctx, run)
	ctx = logger.WithLogger(ctx, lgr)
	cmd.SetContext(ctx)
	return nil
}

// resolveConfigPath returns the explicit file if set, otherwise the first of
// config.yaml, config.yml or config.toml found under
// $XDG_CONFIG_HOME/propdash (or ~/.config/propdash).
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	dir := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dir = filepath.Join(xdg, settings.CliBinaryName)
	} else if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".config", settings.CliBinaryName)
	}
	if dir == "" {
		return ""
	}
	for _, name := range []string{"config.yaml", "config.yml", "config.toml"} {
		candidate := filepath.Join(dir, name)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

func runFromContext(cmd *cobra.Command) *settings.Run {
	return settings.FromContextOrDefault(cmd.Context())
}

func logFromContext(cmd *cobra.Command) logr.Logger {
	return *logger.FromContext(cmd.Context())
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	return config.Load(runFromContext(cmd).ConfigFile)
}

// newSource builds the live API source, cached when the config enables it.
func newSource(cfg config.Config, log logr.Logger) source.Source {
	var src source.Source = source.NewHTTPSource(cfg.API.BaseURL, cfg.API.Path,
		source.WithAPIKey(cfg.API.APIKeyHeader, cfg.API.APIKey),
		source.WithTimeout(cfg.API.Timeout.Duration),
		source.WithMaxRetries(cfg.API.MaxRetries),
		source.WithLogger(log.WithName("source")),
	)
	if cfg.Cache.Enabled {
		src = source.NewCache(src,
			source.WithCapacity(cfg.Cache.Capacity),
			source.WithTTL(cfg.Cache.TTL.Duration),
		)
	}
	return src
}

// colorDisabled reports whether output to w should be plain text.
func colorDisabled(run *settings.Run, w io.Writer) bool {
	if run.NoColor {
		return true
	}
	f, ok := w.(*os.File)
	return !ok || !term.IsTerminal(int(f.Fd()))
}

