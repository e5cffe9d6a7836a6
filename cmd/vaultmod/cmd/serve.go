package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/psantana5/vaultmod/pkg/api"
	"github.com/psantana5/vaultmod/pkg/auth"
	"github.com/psantana5/vaultmod/pkg/logging"
	"github.com/psantana5/vaultmod/pkg/ratelimit"
	"github.com/psantana5/vaultmod/pkg/shutdown"
	tlsutil "github.com/psantana5/vaultmod/pkg/tls"
	"github.com/psantana5/vaultmod/pkg/tracing"
)

// serveCmd runs the coercion HTTP service
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve literal coercion over HTTP",
	Long: `Expose coercion as a JSON API:
  POST /coerce           {"type": "<wrapper>", "literal": "..."}
  POST /coerce/example   {"like": "<kind|enum>", "literal": "..."}
  GET  /hash/{literal}
  GET  /failures?limit=N
  GET  /health
  GET  /metrics          (Prometheus format)`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	flags := serveCmd.Flags()
	flags.String("addr", ":8090", "listen address")
	flags.Float64("rps", 50, "requests per second allowed per client")
	flags.Int("burst", 100, "request burst allowed per client")
	flags.String("tls-cert", "", "TLS certificate file; enables HTTPS")
	flags.String("tls-key", "", "TLS private key file")
	flags.String("tls-client-ca", "", "CA bundle clients must present certificates from")
	flags.Bool("tls-self-signed", false, "generate the certificate and key when the files do not exist")
	flags.Bool("tracing", false, "export OpenTelemetry traces")
	flags.String("tracing-endpoint", "localhost:4318", "OTLP HTTP collector host:port")

	viper.BindPFlag("serve.addr", flags.Lookup("addr"))
	viper.BindPFlag("serve.rps", flags.Lookup("rps"))
	viper.BindPFlag("serve.burst", flags.Lookup("burst"))
	viper.BindPFlag("serve.tls.cert", flags.Lookup("tls-cert"))
	viper.BindPFlag("serve.tls.key", flags.Lookup("tls-key"))
	viper.BindPFlag("serve.tls.client_ca", flags.Lookup("tls-client-ca"))
	viper.BindPFlag("serve.tls.self_signed", flags.Lookup("tls-self-signed"))
	viper.BindPFlag("tracing.enabled", flags.Lookup("tracing"))
	viper.BindPFlag("tracing.endpoint", flags.Lookup("tracing-endpoint"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()
	ctx := cmd.Context()

	provider, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "vaultmod",
		ServiceVersion: Version,
		Environment:    viper.GetString("environment"),
		OTLPEndpoint:   viper.GetString("tracing.endpoint"),
		Enabled:        viper.GetBool("tracing.enabled"),
	}, rt.logger)
	if err != nil {
		return err
	}
	rt.applier.WithTracing(provider)

	limiter := ratelimit.NewLimiter(viper.GetFloat64("serve.rps"), viper.GetInt("serve.burst"))
	handler := api.NewHandler(rt.applier, rt.metrics, rt.failures, rt.logger)

	router := mux.NewRouter()
	router.Use(tracing.HTTPMiddleware(provider))
	router.Use(limiter.Middleware(ratelimit.IPKeyFunc))
	if hashes := viper.GetStringSlice("serve.api_keys"); len(hashes) > 0 {
		keys, err := auth.NewKeyStore(hashes)
		if err != nil {
			return err
		}
		router.Use(keys.Middleware("/health"))
		rt.logger.Info("API key authentication enabled", logging.Fields{"keys": keys.Len()})
	} else {
		rt.logger.Warn("API key authentication disabled")
	}
	handler.RegisterRoutes(router)

	addr := viper.GetString("serve.addr")
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	certFile, keyFile := viper.GetString("serve.tls.cert"), viper.GetString("serve.tls.key")
	if certFile != "" {
		if err := prepareTLS(srv, certFile, keyFile, rt.logger); err != nil {
			return err
		}
	}

	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	go sweepLimiter(cleanupCtx, limiter, rt.logger)

	mgr := shutdown.New(15*time.Second, rt.logger)
	mgr.Register("tracer", provider.Shutdown)
	mgr.Register("limiter sweep", func(context.Context) error { stopCleanup(); return nil })
	mgr.Register("http server", shutdown.StopHTTPServer(srv))

	serveErr := make(chan error, 1)
	go func() {
		rt.logger.Info("listening", logging.Fields{"addr": addr, "tls": srv.TLSConfig != nil})
		var err error
		if srv.TLSConfig != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err, ok := <-serveErr; ok {
			rt.logger.Error("server failed", logging.Fields{"error": err.Error()})
			cancel()
		}
	}()

	err = mgr.WaitWithContext(waitCtx)
	if errors.Is(err, context.Canceled) {
		return errors.New("server stopped unexpectedly")
	}
	return err
}

func prepareTLS(srv *http.Server, certFile, keyFile string, logger *logging.Logger) error {
	if keyFile == "" {
		return errors.New("--tls-key is required with --tls-cert")
	}
	if _, err := os.Stat(certFile); os.IsNotExist(err) && viper.GetBool("serve.tls.self_signed") {
		logger.Warn("generating self-signed certificate", logging.Fields{"cert": certFile})
		if err := tlsutil.GenerateSelfSigned(certFile, keyFile, "vaultmod"); err != nil {
			return err
		}
	}
	cfg, err := tlsutil.LoadServerConfig(certFile, keyFile, viper.GetString("serve.tls.client_ca"))
	if err != nil {
		return err
	}
	srv.TLSConfig = cfg
	return nil
}

// sweepLimiter forgets idle clients every minute
func sweepLimiter(ctx context.Context, limiter *ratelimit.Limiter, logger *logging.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.CleanupOldLimiters(10 * time.Minute); n > 0 {
				logger.Debug("rate limiter sweep", logging.Fields{"removed": n})
			}
		}
	}
}
