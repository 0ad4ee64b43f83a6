// Package main tunes a body's initial tangential speed so its orbit around
// its centre stays as close to circular as possible.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orrery/config"
)

// evalRecord is one row of tune_log.csv.
type evalRecord struct {
	Eval     int     `csv:"eval"`
	Scale    float64 `csv:"scale"`
	Variance float64 `csv:"variance"`
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	bodyName := flag.String("body", "", "Name of the body to tune")
	horizon := flag.Int("horizon", 3600, "Ticks simulated per evaluation")
	maxEvals := flag.Int("max-evals", 60, "Maximum number of evaluations")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if *bodyName == "" {
		log.Fatal("--body is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	obj, err := NewObjective(cfg, *bodyName, *horizon)
	if err != nil {
		log.Fatal(err)
	}

	var (
		records   []evalRecord
		bestScale = 1.0
		bestVar   = math.Inf(1)
		startTime = time.Now()
	)
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			v := obj.Evaluate(x[0])
			records = append(records, evalRecord{Eval: len(records) + 1, Scale: x[0], Variance: v})
			if v < bestVar {
				bestVar, bestScale = v, x[0]
			}
			fmt.Printf("Eval %d/%d: scale=%.6f variance=%.6g (best=%.6g)\n",
				len(records), *maxEvals, x[0], v, bestVar)
			return v
		},
	}
	settings := &optimize.Settings{FuncEvaluations: *maxEvals}

	fmt.Printf("Tuning %q over %d ticks, max_evals=%d\n", *bodyName, *horizon, *maxEvals)
	if _, err := optimize.Minimize(problem, []float64{1.0}, settings, &optimize.NelderMead{}); err != nil {
		log.Printf("optimization ended: %v", err)
	}
	fmt.Printf("\nTuning complete after %d evaluations in %s\n", len(records), time.Since(startTime).Round(time.Millisecond))

	logPath := filepath.Join(*outputDir, "tune_log.csv")
	if f, err := os.Create(logPath); err != nil {
		log.Printf("failed to create log file: %v", err)
	} else {
		if err := gocsv.MarshalFile(&records, f); err != nil {
			log.Printf("failed to write log: %v", err)
		}
		f.Close()
	}

	v := obj.Velocity(bestScale)
	fmt.Printf("Best scale: %.6f (variance %.6g)\n", bestScale, bestVar)
	fmt.Printf("Velocity: [%.6f, %.6f, %.6f] (speed %.6f)\n", v.X, v.Y, v.Z, r3.Norm(v))

	obj.Apply(cfg, bestScale)
	configOutPath := filepath.Join(*outputDir, "tuned_config.yaml")
	if err := cfg.WriteYAML(configOutPath); err != nil {
		log.Fatalf("failed to write tuned config: %v", err)
	}
	fmt.Printf("Tuned config saved to: %s\n", configOutPath)
}
