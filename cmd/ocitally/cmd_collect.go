package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/oklog/run"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yairfalse/ocitally/internal/config"
	"github.com/yairfalse/ocitally/internal/emitter"
	"github.com/yairfalse/ocitally/internal/ledger"
	"github.com/yairfalse/ocitally/internal/pacer"
	"github.com/yairfalse/ocitally/internal/plugin"
	"github.com/yairfalse/ocitally/internal/plugin/oci"
	"github.com/yairfalse/ocitally/internal/runner"
	"github.com/yairfalse/ocitally/internal/telemetry"
	"github.com/yairfalse/ocitally/pkg/report"
)

var (
	collectRegions []string
	collectSink    string
	collectDir     string
	collectPARURL  string
)

var collectCmd = &cobra.Command{
	Use:   "collect [config|instance_principal]",
	Short: "Sweep the tenancy and upload every report family",
	Long: `Sweep every subscribed region and accessible compartment of the tenancy
and upload one CSV per report family.

The optional argument selects how to authenticate: "config" reads the OCI
config file profile, "instance_principal" uses the host's instance principal
token. It overrides oci.auth from the config file.

Exit status is 0 on success, 1 when the run fails before or during the sweep,
and 2 when the sweep completed but at least one family failed to upload.`,
	Example: `  ocitally collect                                  # config file auth, settings from ./.env and env
  ocitally collect instance_principal -c ocitally.toml
  ocitally collect --sink dir --dir ./out           # write CSVs locally
  ocitally collect --region eu-frankfurt-1          # sweep one region`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{config.AuthConfigFile, config.AuthInstancePrincipal},
	RunE:      runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringSliceVarP(&collectRegions, "region", "r", nil, "Regions to sweep (default every subscribed region)")
	collectCmd.Flags().StringVar(&collectSink, "sink", "", "Upload sink: par, s3 or dir")
	collectCmd.Flags().StringVar(&collectDir, "dir", "", "Output directory for the dir sink")
	collectCmd.Flags().StringVar(&collectPARURL, "par-url", "", "Pre-authenticated request URL prefix for the par sink")
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyCollectFlags(cfg, args)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := telemetry.SetupLogging(os.Stderr, cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	tp, err := telemetry.NewProvider(ctx, cfg.OTEL)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("telemetry shutdown")
		}
	}()

	provider, err := oci.NewConfigurationProvider(cfg.OCI)
	if err != nil {
		return err
	}
	tenancyID, err := oci.TenancyID(provider, cfg.OCI.Tenancy)
	if err != nil {
		return err
	}

	sweeper := oci.NewSweeper(
		oci.NewSDKClients(provider),
		pacer.New(cfg.Sweep.CallsPerSecond, cfg.Sweep.Burst),
		tp,
	)

	out, err := emitter.New(ctx, cfg.Output, nil)
	if err != nil {
		return fmt.Errorf("init %s sink: %w", cfg.Output.Sink, err)
	}
	defer func() { _ = out.Close() }()

	var history *ledger.Ledger
	if cfg.Ledger.Path != "" {
		history, err = ledger.Open(cfg.Ledger.Path)
		if err != nil {
			return err
		}
		defer func() { _ = history.Close() }()
	}

	r := runner.New(runner.Config{
		Indexer:     sweeper,
		Collectors:  plugin.NewRegistry().MustRegister(oci.DefaultCollectors(sweeper)...),
		Emitter:     out,
		Ledger:      history,
		Telemetry:   tp,
		Pushgateway: cfg.Metrics.Pushgateway,
		Job:         cfg.Metrics.Job,
	})
	reportRun := report.NewRun(time.Now(), cfg.Destination())

	var (
		g       run.Group
		summary *emitter.Summary
	)
	g.Add(func() error {
		var err error
		summary, err = r.Run(ctx, tenancyID, cfg.OCI.Regions, reportRun)
		return err
	}, func(error) {
		cancel()
	})
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	err = g.Run()
	if summary != nil {
		printSummary(cmd.OutOrStdout(), summary)
	}

	var sigErr run.SignalError
	if errors.As(err, &sigErr) {
		return fmt.Errorf("interrupted by %s", sigErr.Signal)
	}
	return err
}

func applyCollectFlags(cfg *config.Config, args []string) {
	if len(args) == 1 {
		cfg.OCI.Auth = args[0]
	}
	if len(collectRegions) > 0 {
		cfg.OCI.Regions = collectRegions
	}
	if collectSink != "" {
		cfg.Output.Sink = collectSink
	}
	if collectDir != "" {
		cfg.Output.Dir = collectDir
	}
	if collectPARURL != "" {
		cfg.Output.PARURL = collectPARURL
	}
}

func printSummary(w io.Writer, s *emitter.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "FAMILY\tRECORDS\tSTATUS\tDESTINATION\n")
	for _, o := range s.Outcomes {
		status := "ok"
		if !o.OK() {
			status = "FAILED"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", o.Family, o.Records, status, o.Destination)
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(w, "\nrun %s: %d families, %d records, %d failed\n",
		s.RunID, len(s.Outcomes), s.Records(), len(s.Failed()))
}
