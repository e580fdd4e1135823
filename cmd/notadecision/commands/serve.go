package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/notadecision/internal/config"
	"github.com/jmylchreest/notadecision/internal/files"
	"github.com/jmylchreest/notadecision/internal/logger"
	"github.com/jmylchreest/notadecision/internal/server"
	"github.com/jmylchreest/notadecision/internal/service"
	"github.com/jmylchreest/notadecision/internal/sparql"
	"github.com/jmylchreest/notadecision/pkg/decision"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	Long: `Serve decision extraction over HTTP.

Routes:
  GET /health     liveness check
  GET /{notaID}   {"content": "..."} with the decision markup

Examples:
  notadecision serve
  MU_SPARQL_ENDPOINT=http://localhost:8890/sparql notadecision serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()
	flags.String("addr", "", "listen address (default :80)")
	flags.String("sparql-endpoint", "", "SPARQL endpoint URL")
	flags.String("share-root", "", "directory backing share:// data sources")
	flags.String("max-file-size", "", "max PDF size (e.g., 50MB, 0=unlimited)")
	flags.Duration("request-timeout", 0, "timeout for SPARQL requests")

	_ = viper.BindPFlag(config.KeyAddr, flags.Lookup("addr"))
	_ = viper.BindPFlag(config.KeySPARQLEndpoint, flags.Lookup("sparql-endpoint"))
	_ = viper.BindPFlag(config.KeyShareRoot, flags.Lookup("share-root"))
	_ = viper.BindPFlag(config.KeyMaxFileSize, flags.Lookup("max-file-size"))
	_ = viper.BindPFlag(config.KeyRequestTimeout, flags.Lookup("request-timeout"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting service",
		"addr", cfg.Addr,
		"sparql_endpoint", cfg.SPARQLEndpoint,
		"share_root", cfg.ShareRoot)
	return server.New(cfg.Addr, svc).ListenAndServe(ctx)
}

// newPipeline builds the decision pipeline from the rules file and mode.
func newPipeline(cfg *config.Config) (*decision.Pipeline, error) {
	pc, err := cfg.Pipeline()
	if err != nil {
		logger.Error("failed to load rules", "error", err)
		return nil, err
	}
	p, err := decision.New(pc)
	if err != nil {
		logger.Error("invalid rules", "error", err)
		return nil, err
	}
	logger.Debug("pipeline ready", "name", p.Name(), "rules", len(pc.NoiseRules))
	return p, nil
}

// newService wires the SPARQL-backed file lookup to the pipeline.
func newService(cfg *config.Config) (*service.Service, error) {
	pipeline, err := newPipeline(cfg)
	if err != nil {
		return nil, err
	}

	var opts []sparql.Option
	if cfg.RequestTimeout > 0 {
		opts = append(opts, sparql.WithTimeout(cfg.RequestTimeout))
	}
	db := sparql.NewClient(cfg.SPARQLEndpoint, opts...)

	return service.New(files.NewRepository(db), pipeline, service.Options{
		ShareRoot:   cfg.ShareRoot,
		MaxFileSize: cfg.MaxFileSize,
	}), nil
}
