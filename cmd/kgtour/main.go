// Command kgtour is a small CLI harness around pkg/planner: it reads a
// triplet file, runs the pipeline, and writes the resulting plan as JSON.
// It carries no core logic of its own.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"kgtour/pkg/community"
	"kgtour/pkg/graphmodel"
	"kgtour/pkg/persistence"
	"kgtour/pkg/planner"
)

type config struct {
	TripletsFile  string  `json:"tripletsFile"`
	Resolution    float64 `json:"resolution"`
	MaxIterations int     `json:"maxIterations"`
	Seed          int64   `json:"seed"`
	SaveToStore   bool    `json:"saveToStore"`
}

func main() {
	configPath := flag.String("config", "", "path to a JSON config file naming the triplet file and detector options")
	tripletsFlag := flag.String("triplets", "", "path to a JSON triplet file (overrides config)")
	seedFlag := flag.Int64("seed", 0, "community detection seed (overrides config)")
	flag.Parse()

	cfg := config{
		Resolution:    1.0,
		MaxIterations: 100,
	}
	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			log.Fatalf("kgtour: load config: %v", err)
		}
	}
	if *tripletsFlag != "" {
		cfg.TripletsFile = *tripletsFlag
	}
	if *seedFlag != 0 {
		cfg.Seed = *seedFlag
	}
	if cfg.TripletsFile == "" {
		log.Fatal("kgtour: -triplets or -config with tripletsFile is required")
	}

	triplets, err := loadTriplets(cfg.TripletsFile)
	if err != nil {
		log.Fatalf("kgtour: load triplets: %v", err)
	}

	svc := planner.NewService(planner.Config{
		Detector: community.DetectorConfig{
			Resolution:    cfg.Resolution,
			MaxIterations: cfg.MaxIterations,
			Seed:          cfg.Seed,
		},
	})

	ctx := context.Background()
	plan, warnings, err := svc.Plan(ctx, triplets)
	if err != nil {
		log.Fatalf("kgtour: plan: %v", err)
	}
	for _, w := range warnings {
		log.Printf("kgtour: warning: %s: %s", w.Kind, w.Message)
	}

	output, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		log.Fatalf("kgtour: marshal plan: %v", err)
	}

	if !cfg.SaveToStore {
		fmt.Println(string(output))
		return
	}

	store, err := persistence.NewPostgresStore()
	if err != nil {
		log.Fatalf("kgtour: persistence: %v", err)
	}
	defer store.Close()

	runID := persistence.NewRunID()
	if _, err := store.SavePlan(ctx, runID, "plan", output, 0); err != nil {
		log.Fatalf("kgtour: save plan: %v", err)
	}
	log.Printf("kgtour: saved plan under run %s", runID)
}

func loadConfig(path string, cfg *config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return json.Unmarshal(data, cfg)
}

func loadTriplets(path string) ([]graphmodel.Triplet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var triplets []graphmodel.Triplet
	if err := json.Unmarshal(data, &triplets); err != nil {
		return nil, fmt.Errorf("unmarshal triplets: %w", err)
	}
	return triplets, nil
}
