// Command bls fetches BLS time series from the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/Sternrassler/bls-client/internal/config"
	"github.com/Sternrassler/bls-client/pkg/client"
	"github.com/Sternrassler/bls-client/pkg/credentials"
	"github.com/Sternrassler/bls-client/pkg/logging"
	"github.com/Sternrassler/bls-client/pkg/metrics"
	"github.com/Sternrassler/bls-client/pkg/series"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

// app carries state shared by every subcommand of one invocation.
type app struct {
	cfgFile string

	// Command flags
	startYear   int
	endYear     int
	key         string
	errorPolicy string
	format      string
	redisAddr   string
	baseURL     string
	dumpMetrics bool

	cfg    *config.Config
	logger zerolog.Logger
	redis  *redis.Client
	client *client.Client
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bls",
		Short: "Fetch time series from the BLS public data API",
		Long: `bls downloads one or more Bureau of Labor Statistics time series and prints
them as a table aligned on period. Ranges longer than a single request allows
are split into consecutive requests and merged.

A registration key (--key, api_key in bls.yaml or BLS_API_KEY) raises the
per-request limit from 10 to 20 years and the daily limit from 25 to 500
requests.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initialize,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./bls.yaml or ~/.config/bls/bls.yaml)")
	flags.IntVar(&a.startYear, "start", 0, "first year (default depends on --end and the key)")
	flags.IntVar(&a.endYear, "end", 0, "last year (default: current year)")
	flags.StringVar(&a.key, "key", "", "BLS registration key")
	flags.StringVar(&a.errorPolicy, "errors", "", "empty series handling: raise or ignore")
	flags.StringVar(&a.redisAddr, "redis-addr", "", "Redis address for the shared daily quota")
	flags.StringVar(&a.baseURL, "base-url", "", "BLS API endpoint")
	flags.BoolVar(&a.dumpMetrics, "metrics", false, "print client metrics to stderr on exit")

	rootCmd.AddCommand(newSeriesCmd(a))
	rootCmd.AddCommand(newRawCmd(a))

	return rootCmd
}

// initialize loads the configuration, applies flag overrides and builds the
// client.
func (a *app) initialize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	flags := cmd.Flags()
	if flags.Changed("start") {
		cfg.Query.StartYear = a.startYear
	}
	if flags.Changed("end") {
		cfg.Query.EndYear = a.endYear
	}
	if flags.Changed("key") {
		cfg.APIKey = a.key
	}
	if flags.Changed("errors") {
		if _, err := series.ParsePolicy(a.errorPolicy); err != nil {
			return err
		}
		cfg.Query.Errors = a.errorPolicy
	}
	if flags.Changed("redis-addr") {
		cfg.Redis.Addr = a.redisAddr
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = a.baseURL
	}

	lc := cfg.LoggingConfig()
	lc.Output = cmd.ErrOrStderr()
	logging.Setup(lc)
	a.logger = logging.NewLogger("cli")

	clientCfg := client.Config{
		BaseURL:     cfg.BaseURL,
		UserAgent:   cfg.UserAgent,
		Credentials: credentials.New(cfg.APIKey),
		Timeout:     cfg.Timeout,
	}

	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.redis.Ping(cmd.Context()).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Redis.Addr, err)
		}
		clientCfg.Redis = a.redis
		a.logger.Debug().Str("addr", cfg.Redis.Addr).Msg("Quota tracking enabled")
	}

	a.client, err = client.New(clientCfg)
	if err != nil {
		return fmt.Errorf("failed to create BLS client: %w", err)
	}

	return nil
}

// finish releases the clients and writes the --metrics dump to w.
func (a *app) finish(w io.Writer) error {
	if a.client != nil {
		a.client.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}

	if a.dumpMetrics {
		return metrics.WriteText(w, metrics.Gatherer)
	}
	return nil
}

// run executes one invocation. finish runs even when the command fails.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	a := &app{}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	defer func() {
		if ferr := a.finish(stderr); err == nil {
			err = ferr
		}
	}()

	return cmd.ExecuteContext(ctx)
}

// query builds the range for args from the effective configuration.
func (a *app) query(args []string) client.Query {
	return client.Query{
		SeriesIDs: args,
		Range: client.Range{
			StartYear: a.cfg.Query.StartYear,
			EndYear:   a.cfg.Query.EndYear,
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
