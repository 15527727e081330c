package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"TourneySync/internal/app"
	"TourneySync/internal/config"
	"TourneySync/internal/interfaces"
	"TourneySync/internal/model"
	"TourneySync/internal/parser"
	"TourneySync/internal/service"

	"github.com/spf13/cobra"
)

// NewRootCmd scrapectl: run a batch by hand or check a parser against a saved page
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrapectl",
		Short: "Operate the tournament schedule scraper",
		Long: `scrapectl runs one scrape batch against the configured database, the same
way the cron trigger does, or runs a single parser over a saved HTML page.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(newRunCmd(), newParseCmd())
	return cmd
}

type runOptions struct {
	state  string
	source string
	limit  int
	force  bool
	after  uint64
	json   bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scrape the venues that are due now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := opts.filter()
			if err != nil {
				return err
			}
			return runBatch(cmd, filter, opts.json)
		},
	}
	cmd.Flags().StringVar(&opts.state, "state", "", "two-letter state code (e.g., NV)")
	cmd.Flags().StringVar(&opts.source, "source", "", "only venues bound to this source: pokeratlas, direct_website, bravo")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "cap on venues this run (the configured ceiling still applies)")
	cmd.Flags().BoolVar(&opts.force, "force", false, "ignore the freshness window")
	cmd.Flags().Uint64Var(&opts.after, "after", 0, "resume after this venue id (cursor from a previous run)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result as JSON")
	return cmd
}

func (o *runOptions) filter() (model.DueFilter, error) {
	f := model.DueFilter{Limit: o.limit, Force: o.force, After: o.after}
	if o.limit < 0 {
		return f, fmt.Errorf("--limit must not be negative")
	}
	if s := strings.TrimSpace(o.state); s != "" {
		if len(s) != 2 {
			return f, fmt.Errorf("invalid --state %q: must be a two-letter code", o.state)
		}
		f.State = strings.ToUpper(s)
	}
	if o.source != "" {
		src, ok := model.ParseScrapeSource(o.source)
		if !ok {
			return f, fmt.Errorf("invalid --source %q", o.source)
		}
		f.Source = src
	}
	return f, nil
}

func runBatch(cmd *cobra.Command, filter model.DueFilter, asJSON bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := app.NewLogger(cfg.Server)
	logger.SetOutput(os.Stderr)

	db, err := app.OpenDatabase(cfg.Database, logger)
	if err != nil {
		return err
	}
	pipeline, err := app.NewPipeline(cmd.Context(), cfg, db, logger)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	result, err := pipeline.Service.Run(cmd.Context(), service.TriggerCLI, filter)
	if err != nil {
		return fmt.Errorf("scrape run: %w", err)
	}
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	return writeRunText(cmd.OutOrStdout(), result)
}

type parseOptions struct {
	kind  string
	file  string
	venue string
	json  bool
}

func newParseCmd() *cobra.Command {
	opts := &parseOptions{}
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Run one parser over a saved HTML page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := parserFor(opts.kind)
			if err != nil {
				return err
			}
			content, err := os.ReadFile(opts.file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", opts.file, err)
			}
			records := p.Parse(content, opts.venue)
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			return writeRecordsText(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().StringVar(&opts.kind, "kind", "generic", "parser: structured, generic or dynamic")
	cmd.Flags().StringVar(&opts.file, "file", "", "HTML file to parse (required)")
	cmd.Flags().StringVar(&opts.venue, "venue", "", "venue name stamped on each record")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print records as JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func parserFor(kind string) (interfaces.SourceParser, error) {
	switch model.ParserKind(strings.ToLower(kind)) {
	case model.ParserStructured:
		return parser.NewStructured(), nil
	case model.ParserGeneric:
		return parser.NewGeneric(), nil
	case model.ParserDynamic:
		return parser.NewDynamic(nil), nil
	default:
		return nil, fmt.Errorf("unknown parser kind %q (want structured, generic or dynamic)", kind)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeRunText(w io.Writer, r *service.RunResult) error {
	fmt.Fprintf(w, "run %s\n", r.RunID)
	fmt.Fprintf(w, "  venues processed:     %d (skipped %d)\n", r.Stats.VenuesProcessed, r.Stats.Skipped)
	fmt.Fprintf(w, "  tournaments found:    %d\n", r.Stats.TournamentsFound)
	fmt.Fprintf(w, "  tournaments upserted: %d\n", r.Stats.TournamentsInserted)
	fmt.Fprintf(w, "  remaining:            %d (resume with --after %d)\n", r.Remaining, r.Cursor)
	for _, e := range r.Stats.Errors {
		fmt.Fprintf(w, "  error venue %d %s: %s\n", e.VenueID, e.Venue, e.Error)
	}
	return nil
}

func writeRecordsText(w io.Writer, records []*model.TournamentRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tTIME\tBUY-IN\tGAME\tFORMAT\tGTD")
	for _, r := range records {
		format, gtd := "-", "-"
		if r.Format != nil {
			format = string(*r.Format)
		}
		if r.Guaranteed != nil {
			gtd = fmt.Sprintf("$%d", *r.Guaranteed)
		}
		fmt.Fprintf(tw, "%s\t%s\t$%d\t%s\t%s\t%s\n", r.DayOfWeek, r.StartTime, r.BuyIn, r.GameType, format, gtd)
	}
	fmt.Fprintf(tw, "%d records\n", len(records))
	return tw.Flush()
}
