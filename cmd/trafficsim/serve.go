package main

import (
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"trafficsim/config"
	"trafficsim/engine"
	"trafficsim/graph"
	"trafficsim/metrics"
	"trafficsim/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		mapPath    string
		mapName    string
		addr       string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulation over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			applyLogLevel(log, cfg.LogLevel)

			store := config.NewStore(cfg, configPath, log)
			if stop, err := store.Watch(); err != nil {
				log.WithError(err).Warn("config: watch failed, continuing with static configuration")
			} else {
				defer stop()
			}

			f, err := os.Open(mapPath)
			if err != nil {
				return err
			}
			defer f.Close()
			g, err := graph.LoadFromReader(f)
			if err != nil {
				return err
			}

			var m *metrics.Metrics
			if cfg.MetricsAddr != "" {
				reg := prometheus.NewRegistry()
				m = metrics.New(reg)
				go func() {
					mux := http.NewServeMux()
					mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
					log.WithField("addr", cfg.MetricsAddr).Info("metrics: listening")
					if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
						log.WithError(err).Error("metrics: server stopped")
					}
				}()
			}

			eng := engine.New(g, mapName, store, log, m)
			srv := server.New(eng, cfg.Maps, log)

			log.WithField("addr", addr).Info("trafficsim: listening")
			return http.ListenAndServe(addr, srv.Mux())
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	cmd.Flags().StringVar(&mapPath, "map", "", "path to the initial map JSON file")
	cmd.Flags().StringVar(&mapName, "map-name", "default", "name under which the initial map is registered")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	_ = cmd.MarkFlagRequired("map")
	return cmd
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}

func applyLogLevel(log *logrus.Logger, level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
}
