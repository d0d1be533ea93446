package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trafficsim/config"
	"trafficsim/engine"
	"trafficsim/graph"
)

func newBatchCmd() *cobra.Command {
	var (
		mapPath    string
		mapName    string
		configPath string
		ticks      int
		spawn      int
		reportPath string
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run a fixed number of ticks without serving HTTP",
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
			store := config.NewStore(cfg, "", log)

			f, err := os.Open(mapPath)
			if err != nil {
				return err
			}
			defer f.Close()
			g, err := graph.LoadFromReader(f)
			if err != nil {
				return err
			}

			eng := engine.New(g, mapName, store, log, nil)
			if spawn > 0 {
				if _, err := eng.SpawnMultiple(spawn, nil); err != nil {
					return err
				}
			}
			for i := 0; i < ticks; i++ {
				eng.Tick()
			}

			eng.PrintConsoleReport(cmd.OutOrStdout())
			if reportPath != "" {
				path, err := eng.WriteCSVReport(reportPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mapPath, "map", "", "path to the map JSON file")
	cmd.Flags().StringVar(&mapName, "map-name", "default", "name under which the map is registered")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	cmd.Flags().IntVar(&ticks, "ticks", 100, "number of ticks to run")
	cmd.Flags().IntVar(&spawn, "spawn", 0, "vehicles to spawn before ticking (all cars)")
	cmd.Flags().StringVar(&reportPath, "report", "", "if set, write a congestion CSV report to this file or directory")
	_ = cmd.MarkFlagRequired("map")
	return cmd
}
