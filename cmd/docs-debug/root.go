package main

import (
	"context"
	"docs-debug/catalog"
	"docs-debug/client"
	"docs-debug/config"
	"docs-debug/header"
	"docs-debug/loadbalance"
	"docs-debug/logging"
	"docs-debug/middleware"
	"docs-debug/transport"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is what every subcommand works from, built once the flags are parsed.
type app struct {
	configPath string
	timeout    time.Duration
	logLevel   string

	cfg     *config.Config
	logger  *zap.Logger
	catalog catalog.Catalog
	etcd    *catalog.EtcdCatalog // nil with the file catalog
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "docs-debug",
		Short:        "Debug services described by a doc service specification",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to the TOML configuration file")
	root.PersistentFlags().DurationVarP(&a.timeout, "timeout", "t", 30*time.Second, "Timeout of one invocation")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override the configured log level")

	root.AddCommand(
		newInvokeCmd(a),
		newCurlCmd(a),
		newServicesCmd(a),
		newInstancesCmd(a),
		newPublishCmd(a),
		newRegisterCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	a.logger = logging.Setup(cfg.Log)

	switch cfg.Catalog.Source {
	case "etcd":
		etcd, err := catalog.NewEtcdCatalog(cfg.Catalog.EtcdEndpoints, a.logger)
		if err != nil {
			return fmt.Errorf("connect etcd: %w", err)
		}
		a.etcd = etcd
		a.catalog = etcd
	default:
		cat, err := catalog.LoadFile(cfg.Catalog.SpecFile, cfg.Instances)
		if err != nil {
			return err
		}
		a.catalog = cat
	}
	return nil
}

func (a *app) close() {
	if a.etcd != nil {
		if err := a.etcd.Close(); err != nil {
			a.logger.Warn("failed to close etcd client", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// registry returns the write side of the catalog, which only etcd has.
func (a *app) registry() (catalog.Registry, error) {
	if a.etcd == nil {
		return nil, errors.New("publishing needs catalog.source = \"etcd\"")
	}
	return a.etcd, nil
}

func (a *app) newClient() (*client.Client, error) {
	bal, err := loadbalance.New(a.cfg.Balancer)
	if err != nil {
		return nil, err
	}

	static := header.NewMap()
	for _, h := range a.cfg.Headers {
		static.Set(h.Name, h.Value)
	}
	providers := []header.Provider{header.Static(static)}
	if a.cfg.RequestID {
		providers = append(providers, header.RequestID())
	}

	opts := []transport.Option{
		transport.WithHTTPClient(&http.Client{Timeout: a.timeout}),
		transport.WithBaseURL(a.cfg.BaseURL),
		transport.WithHeaderProviders(providers...),
		transport.WithLogger(a.logger.Named("transport")),
	}
	if a.cfg.AnnotatedMode == "fixed" {
		opts = append(opts, transport.WithFixedAnnotatedMimeTypes())
	}

	middlewares := []middleware.Middleware{middleware.LoggingMiddleware(a.logger)}
	if a.cfg.RateLimit.Rate > 0 {
		middlewares = append(middlewares, middleware.RateLimitMiddleware(a.cfg.RateLimit.Rate, a.cfg.RateLimit.Burst))
	}

	return client.NewClient(a.catalog, bal, transport.New(opts...),
		client.WithBaseURL(a.cfg.BaseURL),
		client.WithLogger(a.logger.Named("client")),
		client.WithMiddlewares(middlewares...),
	), nil
}

func (a *app) context(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, a.timeout)
}

func readBody(body, bodyFile string) (string, error) {
	if bodyFile == "" {
		return body, nil
	}
	if body != "" {
		return "", errors.New("--body and --body-file are mutually exclusive")
	}
	var (
		data []byte
		err  error
	)
	if bodyFile == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(bodyFile)
	}
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}
