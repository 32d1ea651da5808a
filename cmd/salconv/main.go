package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rgehrsitz/salconv/internal/calculation"
	"github.com/rgehrsitz/salconv/internal/compare"
	"github.com/rgehrsitz/salconv/internal/config"
	"github.com/rgehrsitz/salconv/internal/currency"
	"github.com/rgehrsitz/salconv/internal/domain"
	"github.com/rgehrsitz/salconv/internal/output"
	"github.com/rgehrsitz/salconv/internal/server"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags holds the persistent flags every command shares
type globalFlags struct {
	configPath        string
	logLevel          string
	format            string
	scheduleFile      string
	contributionTable string
	taxTable          string
}

// settings loads the settings file and applies command line overrides
func (f *globalFlags) settings() (*config.Settings, error) {
	settings, err := config.LoadSettings(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.format != "" {
		settings.Output.Format = f.format
	}
	if f.scheduleFile != "" || f.contributionTable != "" || f.taxTable != "" {
		settings.Schedules = config.SchedulePaths{
			File:              f.scheduleFile,
			ContributionTable: f.contributionTable,
			TaxTable:          f.taxTable,
		}
	}
	return settings, nil
}

// load builds the logger and a converter over the configured schedules
func (f *globalFlags) load() (*config.Settings, *zap.Logger, *calculation.Converter, error) {
	settings, err := f.settings()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := config.NewLogger(settings.Logging, f.logLevel)
	if err != nil {
		return nil, nil, nil, err
	}

	set, err := config.NewScheduleLoader().Load(settings.Schedules)
	if err != nil {
		return nil, nil, nil, err
	}
	schedules, err := set.Build()
	if err != nil {
		return nil, nil, nil, err
	}

	converter := calculation.NewConverterWithOptions(schedules, settings.SolverOptions())
	converter.SetLogger(logger.Sugar())
	logger.Debug("schedules loaded",
		zap.Int("contribution_tables", len(set.Contribution)),
		zap.Int("tax_tables", len(set.Tax)))
	return settings, logger, converter, nil
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "salconv",
		Short:         "Gross/net salary converter",
		Long:          "Converts between gross salary, gross after INSS and net salary under the INSS and IRPF schedules in effect on a date",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Settings file (YAML)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	pf.StringVarP(&flags.format, "format", "f", "", "Output format (console, json, csv, yaml)")
	pf.StringVar(&flags.scheduleFile, "schedules", "", "Schedule file (YAML or JSON)")
	pf.StringVar(&flags.contributionTable, "contribution-table", "", "INSS text table (requires --tax-table)")
	pf.StringVar(&flags.taxTable, "tax-table", "", "IRPF text table (requires --contribution-table)")

	root.AddCommand(convertCmd(flags))
	root.AddCommand(compareCmd(flags))
	root.AddCommand(datesCmd(flags))
	root.AddCommand(schedulesCmd(flags))
	root.AddCommand(validateCmd(flags))
	root.AddCommand(serveCmd(flags))
	root.AddCommand(versionCmd())
	return root
}

func convertCmd(flags *globalFlags) *cobra.Command {
	var net, gross, gac, at string
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert one salary amount",
		Long:  "Derives gross, gross after INSS and net from exactly one of them. Amounts accept \"3.000,50\" or \"3000.50\".",
		Example: "  salconv convert --net 2603,83 --date 2014\n" +
			"  salconv convert --gross 3000 -f json",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.ConversionRequest{Date: at}
			amounts := []struct {
				flag  string
				value string
				dst   *float64
			}{
				{"net", net, &req.Net},
				{"gross", gross, &req.Gross},
				{"gross-after-contribution", gac, &req.GrossAfterContribution},
			}
			for _, a := range amounts {
				if a.value == "" {
					continue
				}
				v, err := currency.Parse(a.value)
				if err != nil {
					return fmt.Errorf("--%s: %w", a.flag, err)
				}
				*a.dst = v
			}
			if len(req.Supplied()) == 0 {
				return fmt.Errorf("one of --net, --gross or --gross-after-contribution is required")
			}

			settings, logger, converter, err := flags.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			result, err := converter.Convert(cmd.Context(), req)
			if err != nil {
				return err
			}
			out, err := output.FormatResult(result, settings.Output.Format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&net, "net", "", "Net salary")
	cmd.Flags().StringVar(&gross, "gross", "", "Gross salary")
	cmd.Flags().StringVar(&gac, "gross-after-contribution", "", "Gross salary after INSS")
	cmd.Flags().StringVarP(&at, "date", "d", "", "Schedule date (default: now)")
	return cmd
}

func compareCmd(flags *globalFlags) *cobra.Command {
	var kindName, base, with string
	cmd := &cobra.Command{
		Use:   "compare AMOUNT",
		Short: "Compare one amount under several schedule dates",
		Example: "  salconv compare 3000 --base 2013 --with 2014,2015-04\n" +
			"  salconv compare 2603,83 --kind net -f csv",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := domain.ParseInputKind(kindName)
			if !ok {
				return fmt.Errorf("unknown amount kind %q (use net, gross or gac)", kindName)
			}
			amount, err := currency.Parse(args[0])
			if err != nil {
				return err
			}

			settings, logger, converter, err := flags.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			compSet, err := compare.NewCompareEngine(converter).Compare(cmd.Context(), compare.CompareOptions{
				Kind:     kind,
				Amount:   amount,
				BaseDate: base,
				Dates:    compare.ParseDateList(with),
			})
			if err != nil {
				return err
			}

			var out string
			switch output.GetFormatterName(settings.Output.Format) {
			case "json":
				out, err = (&compare.JSONFormatter{Pretty: true}).Format(compSet)
			case "csv":
				out, err = (&compare.CSVFormatter{}).Format(compSet)
			case "console":
				out = (&compare.TableFormatter{}).Format(compSet)
			default:
				return fmt.Errorf("unsupported format for compare: %s (available: console, json, csv)", settings.Output.Format)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVarP(&kindName, "kind", "k", "gross", "Amount kind (net, gross, gac)")
	cmd.Flags().StringVar(&base, "base", "", "Base schedule date (default: now)")
	cmd.Flags().StringVar(&with, "with", "", "Comma-separated dates to compare (default: every known date)")
	return cmd
}

func datesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dates",
		Short: "List the effective dates of the loaded schedules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, _, converter, err := flags.load()
			if err != nil {
				return err
			}
			dates := converter.Dates()
			switch output.GetFormatterName(settings.Output.Format) {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string][]string{"dates": dates})
			default:
				_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(dates, "\n"))
				return err
			}
		},
	}
}

func schedulesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "schedules [date]",
		Short: "Show the INSS and IRPF tables in effect on a date",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, _, converter, err := flags.load()
			if err != nil {
				return err
			}
			at := ""
			if len(args) == 1 {
				at = args[0]
			}
			view, err := output.NewScheduleView(converter.Schedules, at)
			if err != nil {
				return err
			}
			out, err := output.FormatSchedules(view, settings.Output.Format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func validateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the settings and schedule tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := flags.settings()
			if err != nil {
				return err
			}
			set, err := config.NewScheduleLoader().Load(settings.Schedules)
			if err != nil {
				return err
			}
			schedules, err := set.Build()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Schedules are valid: %d INSS tables, %d IRPF tables\n", len(set.Contribution), len(set.Tax))
			fmt.Fprintf(out, "INSS dates: %s\n", strings.Join(sortedKeys(set.Contribution), ", "))
			fmt.Fprintf(out, "IRPF dates: %s\n", strings.Join(sortedKeys(set.Tax), ", "))
			fmt.Fprintf(out, "Effective dates: %s\n", strings.Join(schedules.EffectiveDates(), ", "))
			return nil
		},
	}
}

func serveCmd(flags *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, logger, converter, err := flags.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if addr != "" {
				settings.Server.Address = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			router := server.NewRouter(server.NewHandler(converter, logger), server.Options{
				CORSOrigins: settings.Server.CORSOrigins,
			})
			return server.Run(ctx, settings.Server.Address, router, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from settings, :8080)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "salconv %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
