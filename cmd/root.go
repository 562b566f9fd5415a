package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bixoto/bigbuy-go/bigbuy"
	"github.com/bixoto/bigbuy-go/config"
	"github.com/bixoto/bigbuy-go/filter"
)

var (
	cfgFile       string
	cfg           *config.Config
	logger        zerolog.Logger
	client        *bigbuy.Client
	filters       *filter.Manager
	metricsServer *http.Server

	// Command flags
	production bool
	retry      bool
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bigbuy",
	Short: "A command line client for the BigBuy dropshipping API",
	Long: `bigbuy queries the BigBuy catalog, stock, shipping and tracking endpoints
and checks or creates orders. API errors are reported with their field-level
details, and rate limits can be waited out automatically.`,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&production, "production", false, "use the production API instead of the sandbox")
	rootCmd.PersistentFlags().BoolVar(&retry, "retry", false, "wait for the rate limit reset and retry once")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON output")
}

// initializeApp initializes the configuration and the BigBuy client
func initializeApp(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	if cmd.Flags().Changed("production") && production {
		cfg.BigBuy.Mode = string(bigbuy.ModeProduction)
	}
	if cmd.Flags().Changed("retry") {
		cfg.BigBuy.RetryOnRateLimit = retry
	}

	opts := []bigbuy.Option{
		bigbuy.WithMode(bigbuy.Mode(cfg.BigBuy.Mode)),
		bigbuy.WithBaseURL(cfg.BigBuy.BaseURL),
		bigbuy.WithTimeout(cfg.BigBuy.Timeout),
		bigbuy.WithRetryOnRateLimit(cfg.BigBuy.RetryOnRateLimit),
	}
	if cb := cfg.BigBuy.CircuitBreaker; cb.Enabled {
		opts = append(opts, bigbuy.WithCircuitBreaker(bigbuy.BreakerSettings{
			MaxRequests:         cb.MaxRequests,
			ConsecutiveFailures: cb.ConsecutiveFailures,
			Interval:            cb.Interval,
			Timeout:             cb.Timeout,
		}))
	}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		opts = append(opts, bigbuy.WithMetrics(reg))
		startMetricsServer(cfg.Metrics.Listen, reg)
	}

	client, err = bigbuy.NewClient(cfg.BigBuy.AppKey, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create BigBuy client: %w", err)
	}

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filters); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	logger.Debug().Str("client", client.String()).Msg("BigBuy client ready")
	return nil
}

func shutdownApp(cmd *cobra.Command, args []string) error {
	if metricsServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return metricsServer.Shutdown(ctx)
}

func startMetricsServer(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("listen", addr).Msg("Metrics server failed")
		}
	}()
	logger.Info().Str("listen", addr).Msg("Serving metrics")
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	fd := os.Stderr.Fd()
	terminal := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !terminal,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// printError writes err and, for API errors, the details BigBuy sent.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	var validationErr *bigbuy.ValidationError
	var productErr *bigbuy.ProductError
	var rateErr *bigbuy.RateLimitError
	switch {
	case errors.As(err, &validationErr):
		for _, field := range slices.Sorted(maps.Keys(validationErr.Fields)) {
			name := field
			if name == "" {
				name = "(order)"
			}
			fmt.Fprintf(w, "  %s: %s\n", name, strings.Join(validationErr.Fields[field], " "))
		}
	case errors.As(err, &productErr):
		for _, p := range productErr.Products {
			fmt.Fprintf(w, "  %s: %s\n", p.SKU, p.Message)
		}
	case errors.As(err, &rateErr):
		if wait, ok := rateErr.ResetTimedelta(time.Now()); ok {
			fmt.Fprintf(w, "  retry in %s, or pass --retry\n", wait.Round(time.Second))
		}
	}
}

// printJSON pretty-prints v to w
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
