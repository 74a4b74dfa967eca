package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flames/compat"
	"flames/config"
	"flames/db"
	qhttp "flames/http"
	"flames/ml"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the compatibility form",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "listen port (overrides http.port)")
}

type application struct {
	predictor *compat.Predictor
	history   *db.HistoryStore
	server    *qhttp.Server
}

// newApplication loads the classifier and wires the server. A missing or
// unreadable artifact is returned as *ml.ArtifactError before anything is
// served.
func newApplication(cfg *config.Config, log *zap.Logger) (*application, error) {
	model, err := ml.LoadModel(cfg.Model.Type, cfg.Model.Path)
	if err != nil {
		return nil, err
	}
	log.Info("model loaded",
		zap.String("path", cfg.Model.Path),
		zap.String("type", model.Type()),
		zap.Strings("features", compat.FeatureNames()))

	app := &application{}
	opts := []compat.Option{
		compat.WithCache(cfg.Predictor.CacheSize),
		compat.WithLogger(log),
	}
	if cfg.History.Enabled {
		if app.history, err = db.Open(cfg.History.Path); err != nil {
			return nil, err
		}
		opts = append(opts, compat.WithRecorder(app.history))
	}
	if app.predictor, err = compat.NewPredictor(model, opts...); err != nil {
		app.Close()
		return nil, err
	}

	var history qhttp.HistoryReader
	if app.history != nil {
		history = app.history
	}
	app.server = qhttp.NewServer(qhttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		MaxBodyBytes:   cfg.Http.MaxBodyBytes,
		AllowedOrigins: cfg.Http.AllowedOrigins,
	}, app.predictor, history, log)
	return app, nil
}

func (a *application) Close() {
	if a.history != nil {
		a.history.Close()
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Http.Port = port
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	app, err := newApplication(cfg, log)
	if err != nil {
		log.Error("startup failed", zap.Error(err))
		return err
	}
	defer app.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	if err := app.server.Stop(); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return err
	}
	return nil
}
