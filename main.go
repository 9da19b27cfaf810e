package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/docker/go-units"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go-proxylab/cacheproxy/internal/cache"
	"github.com/go-proxylab/cacheproxy/internal/diag"
	"github.com/go-proxylab/cacheproxy/internal/dispatcher"
	"github.com/go-proxylab/cacheproxy/internal/metrics"
	"github.com/go-proxylab/cacheproxy/internal/middleware"
	"github.com/go-proxylab/cacheproxy/internal/pipeline"
	"github.com/go-proxylab/cacheproxy/internal/routing"
)

var log = logrus.New()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the "proxycache <port>" command: one positional
// argument, the TCP port to listen on, per §6. Wrong arity is reported
// by cobra.ExactArgs, which prints usage and returns a non-nil error,
// causing main to exit 1.
func newRootCmd() *cobra.Command {
	var metricsAddr string
	var metricsOrigins []string
	var logLevel string
	var connectTimeout time.Duration

	c := &cobra.Command{
		Use:   "proxycache <port>",
		Short: "A concurrent HTTP/1.0 forward proxy with an in-memory response cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
			}
			log.SetLevel(level)

			port, err := strconv.Atoi(args[0])
			if err != nil || port <= 0 || port > 65535 {
				return fmt.Errorf("invalid port %q", args[0])
			}

			return run(port, metricsAddr, metricsOrigins, connectTimeout)
		},
	}

	c.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve /metrics on (disabled when empty)")
	c.Flags().StringSliceVar(&metricsOrigins, "metrics-cors-origin", nil, "origins allowed to fetch /metrics cross-origin (repeatable; defaults to CACHEPROXY_METRICS_ORIGINS)")
	c.Flags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	c.Flags().DurationVar(&connectTimeout, "connect-timeout", 10*time.Second, "timeout for opening the origin connection")
	return c
}

func run(port int, metricsAddr string, metricsOrigins []string, connectTimeout time.Duration) error {
	// A broken client pipe must never terminate the process (§6, P10).
	// The Go runtime already turns SIGPIPE on a socket fd into an EPIPE
	// write error rather than a process-killing signal, but we install
	// an explicit ignore so the installation itself is observable in
	// the log, matching the one-time broken-pipe handler install of §1.
	signal.Ignore(syscall.SIGPIPE)
	log.Info("SIGPIPE ignored")

	diag.LogHostInfo(log.WithField("component", "diag"))

	store := cache.New(cache.MaxObjectSize, cache.MaxCacheSize, log.WithField("component", "cache"))
	log.WithFields(logrus.Fields{
		"max_object_size": units.HumanSize(float64(cache.MaxObjectSize)),
		"max_cache_size":  units.HumanSize(float64(cache.MaxCacheSize)),
	}).Info("cache initialized")

	pl := pipeline.New(store, log.WithField("component", "pipeline"), pipeline.DialTimeout(connectTimeout))

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", port, err)
	}
	log.WithField("addr", ln.Addr().String()).Info("listening for client connections")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	disp := dispatcher.New(ln, pl.Handle, log.WithField("component", "dispatcher"))

	var metricsServer *http.Server
	metricsErrors := make(chan error, 1)
	if metricsAddr != "" {
		router := routing.NewNormalizedServeMux()
		router.Handle("/metrics", middleware.CORS(metricsOrigins, metrics.Handler(store)))
		metricsServer = &http.Server{Addr: metricsAddr, Handler: router}
		go func() {
			log.WithField("addr", metricsAddr).Info("metrics endpoint enabled")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				metricsErrors <- err
				return
			}
			metricsErrors <- nil
		}()
	} else {
		log.Info("metrics endpoint disabled")
	}

	dispatchErrors := make(chan error, 1)
	go func() {
		dispatchErrors <- disp.Run(ctx)
	}()

	select {
	case err := <-dispatchErrors:
		if err != nil {
			log.WithError(err).Error("dispatcher stopped")
		}
	case err := <-metricsErrors:
		if err != nil {
			log.WithError(err).Error("metrics listener stopped")
		}
		cancel()
		<-dispatchErrors
	case <-ctx.Done():
		log.Info("shutdown signal received")
		<-dispatchErrors
	}

	if metricsServer != nil {
		_ = metricsServer.Close()
	}
	log.Info("cacheproxy stopped")
	return nil
}
