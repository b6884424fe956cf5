package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("trellis")

var (
	logLevel    string
	logFormat   string
	metricsAddr string

	rootCmd = &cobra.Command{
		Use:   "trellis",
		Short: "Maximum-likelihood trellis decoding of binary linear block codes",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto", "Log format (auto, color, plain, json)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(sweepCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging applies --log-level and --log-format to every logger.
// The auto format colorizes only when stderr is a terminal.
func setupLogging() error {
	lvl, err := logging.LevelFromString(logLevel)
	if err != nil {
		return err
	}

	var format logging.LogFormat
	switch logFormat {
	case "auto":
		format = logging.PlaintextOutput
		if isatty.IsTerminal(os.Stderr.Fd()) {
			format = logging.ColorizedOutput
		}
	case "color":
		format = logging.ColorizedOutput
	case "plain":
		format = logging.PlaintextOutput
	case "json":
		format = logging.JSONOutput
	default:
		return fmt.Errorf("unknown log format %q", logFormat)
	}

	logging.SetupLogging(logging.Config{
		Format: format,
		Level:  lvl,
		Stderr: true,
	})
	return nil
}

// startMetrics serves a fresh registry on --metrics-addr, if set. The
// returned function shuts the server down.
func startMetrics() (prometheus.Registerer, func()) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	if metricsAddr == "" {
		return reg, func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: metricsAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server: %v", err)
		}
	}()
	log.Infof("serving metrics on %s/metrics", metricsAddr)

	return reg, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warnf("metrics server shutdown: %v", err)
		}
	}
}
