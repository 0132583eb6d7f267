package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/propdash/internal/config"
	"github.com/oakwood-commons/propdash/internal/document"
	"github.com/oakwood-commons/propdash/internal/formatter"
	"github.com/oakwood-commons/propdash/internal/search"
	"github.com/oakwood-commons/propdash/internal/source"
	"github.com/oakwood-commons/propdash/internal/transform"
	"github.com/oakwood-commons/propdash/internal/tui"
)

// errNoInput is returned when report has nothing to look up.
var errNoInput = errors.New("nothing to report: pass a file, --demo, --query, or --lat and --lng")

type reportOptions struct {
	query       string
	lat         float64
	lng         float64
	demo        bool
	output      string
	searchTerm  string
	expression  string
	interactive bool
	width       int
}

func newReportCommand() *cobra.Command {
	opts := &reportOptions{}
	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Fetch a property record and print it as a report",
		Long: `Build a report from, in order of precedence: a JSON or YAML file ("-" for
stdin), the built-in demo record (--demo), or a live lookup by address
(--query) and/or coordinates (--lat/--lng).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.query, "query", "q", "", "address or free-text property search")
	f.Float64Var(&opts.lat, "lat", 0, "latitude (requires --lng)")
	f.Float64Var(&opts.lng, "lng", 0, "longitude (requires --lat)")
	f.BoolVar(&opts.demo, "demo", false, "use the built-in demo record instead of the API")
	f.StringVarP(&opts.output, "output", "o", "", "output format: table|tree|markdown|json|yaml (default from config)")
	f.StringVar(&opts.searchTerm, "search", "", "keep only sections, fields and cards matching this text")
	f.StringVarP(&opts.expression, "expression", "e", "", "CEL expression using '_' as the record, e.g. '_.zoning'")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "browse the report in an interactive TUI")
	f.IntVar(&opts.width, "width", 0, "output width in columns (default: terminal width)")
	cmd.MarkFlagsRequiredTogether("lat", "lng")
	return cmd
}

func (o *reportOptions) run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	outName := o.output
	if outName == "" {
		outName = cfg.Display.Output
	}
	format, err := formatter.ParseFormat(outName)
	if err != nil {
		return err
	}

	numbers, err := transform.NewNumberFormatter(cfg.Display.Locale)
	if err != nil {
		return err
	}

	doc, err := o.load(cmd, cfg, args)
	if err != nil {
		return err
	}

	if o.expression != "" {
		selector, err := search.NewSelector()
		if err != nil {
			return err
		}
		if doc, err = selector.Select(o.expression, doc); err != nil {
			return fmt.Errorf("expression %q: %w", o.expression, err)
		}
	}

	report := transform.NewBuilder(transform.WithNumberFormatter(numbers)).Build(doc)
	run := runFromContext(cmd)
	colors := formatter.ColorsFromConfig(cfg.Display.Theme)

	if o.interactive {
		return tui.Run(cmd.Context(), report, tui.Options{
			Title:         cfg.App.About.Name,
			NoColor:       run.NoColor,
			KeyColWidth:   cfg.Display.KeyColWidth,
			Colors:        colors,
			InitialFilter: o.searchTerm,
		})
	}

	report = search.Filter(report, o.searchTerm)
	out, err := formatter.Render(report, formatter.Options{
		Format:      format,
		Width:       o.width,
		KeyColWidth: cfg.Display.KeyColWidth,
		NoColor:     colorDisabled(run, cmd.OutOrStdout()),
		Colors:      colors,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), out)
	return err
}

// load reads the raw document from the highest-precedence input given.
func (o *reportOptions) load(cmd *cobra.Command, cfg config.Config, args []string) (document.Value, error) {
	ctx := cmd.Context()
	log := logFromContext(cmd)

	switch {
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return document.Value{}, fmt.Errorf("read stdin: %w", err)
		}
		return document.LoadBytes(data)
	case len(args) == 1:
		return document.Load(args[0])
	case o.demo:
		return source.Demo{}.Fetch(ctx, source.Query{})
	}

	q := source.Query{Text: strings.TrimSpace(o.query)}
	if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
		q.Lat, q.Lng = &o.lat, &o.lng
	}
	if q.Text == "" && !q.HasCoordinates() {
		return document.Value{}, errNoInput
	}
	if err := q.Validate(); err != nil {
		return document.Value{}, err
	}

	log.V(1).Info("fetching property", "query", q.String(), "endpoint", cfg.API.BaseURL)
	doc, err := newSource(cfg, log).Fetch(ctx, q)
	if err != nil {
		return document.Value{}, fmt.Errorf("%s (%w)", source.Describe(err), err)
	}
	return doc, nil
}
