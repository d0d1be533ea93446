package engine

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"
)

// WriteCSVReport writes a per-edge congestion report to reportPath (adapted
// from the teacher's bus-cost CSV writer). If reportPath is a directory, a
// timestamped file is created inside it; if it is a file, a timestamp is
// suffixed before the extension.
func (e *Engine) WriteCSVReport(reportPath string) (string, error) {
	if reportPath == "" {
		return "", nil
	}
	ts := time.Now().Format("20060102-150405")
	outPath := reportPath
	if fi, err := os.Stat(outPath); err == nil && fi.IsDir() {
		outPath = filepath.Join(outPath, fmt.Sprintf("congestion-%s.csv", ts))
	} else {
		ext := filepath.Ext(outPath)
		base := outPath[:len(outPath)-len(ext)]
		outPath = fmt.Sprintf("%s-%s%s", base, ts, ext)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := e.writeCSV(f); err != nil {
		return "", err
	}
	if e.log != nil {
		e.log.WithField("path", outPath).Info("congestion report written")
	}
	return outPath, nil
}

func (e *Engine) writeCSV(w io.Writer) error {
	edges := e.GetEdgeTraffic()
	round2 := func(x float64) float64 { return math.Round(x*100) / 100 }
	fmt.Fprintln(w, "from,to,vehicle_count,density,level,multiplier,congestion_probability")
	for _, ed := range edges {
		fmt.Fprintf(w, "%s,%s,%d,%.2f,%s,%.2f,%.2f\n",
			ed.From, ed.To, ed.VehicleCount, round2(ed.Density), ed.Level, round2(ed.Multiplier), round2(ed.CongestionProbability))
	}
	return nil
}

// PrintConsoleReport prints a human-readable summary of the current
// simulation state to w (adapted from the teacher's console report).
func (e *Engine) PrintConsoleReport(w io.Writer) {
	info := e.GetSimulationInfo()
	fmt.Fprintln(w, "=== Simulation Report ===")
	fmt.Fprintf(w, "Map: %s\n", info.Map)
	fmt.Fprintf(w, "Tick: %d\n", info.Tick)
	fmt.Fprintf(w, "Active vehicles: %d (stuck: %d)\n", info.VehicleStats.Active, info.VehicleStats.Stuck)
	fmt.Fprintf(w, "Arrived: %d  Spawned: %d  Removed: %d\n", info.VehicleStats.Arrived, info.VehicleStats.Spawned, info.VehicleStats.Removed)
	fmt.Fprintf(w, "Congested edges: %d\n", info.TrafficStats.CongestedEdges)
	fmt.Fprintf(w, "Mean density: %.2f  Mean congestion probability: %.2f\n", info.TrafficStats.MeanDensity, info.TrafficStats.MeanProbability)
	fmt.Fprintf(w, "Active accidents: %d  Active blockages: %d\n", info.Accidents, info.Blockages)

	top := e.GetCongestionReport(5)
	if len(top) > 0 {
		fmt.Fprintln(w, "--- Top bottlenecks ---")
		for _, ed := range top {
			fmt.Fprintf(w, "%s -> %s: %s (p=%.2f, count=%d)\n", ed.From, ed.To, ed.Level, ed.CongestionProbability, ed.VehicleCount)
		}
	}
}
