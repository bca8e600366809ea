package main

import (
	"context"
	"flag"
	"os"

	"github.com/okian/courtside/internal/synth"
	"github.com/okian/courtside/pkg/logger"
)

// Default generation constants.
const (
	defaultSeed      = 42
	defaultPlayers   = 200
	defaultMeanShots = 60
)

func main() {
	var (
		output    = flag.String("output", "data/outcomes.csv", "Output CSV file for generated outcomes")
		seed      = flag.Int64("seed", defaultSeed, "Random seed; identical seeds yield identical tables")
		players   = flag.Int("players", defaultPlayers, "Number of synthetic players")
		meanShots = flag.Int("mean-shots", defaultMeanShots, "Mean shots per player-zone")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()
	ctx := context.Background()

	gen := synth.New(
		synth.WithSeed(*seed),
		synth.WithPlayers(*players),
		synth.WithMeanShots(*meanShots),
		synth.WithLogger(log),
	)
	outcomes := gen.Generate(ctx)

	f, err := os.Create(*output)
	if err != nil {
		log.Error(ctx, "create output failed", logger.Error(err))
		os.Exit(1)
	}
	defer f.Close()

	if err := synth.WriteCSV(f, outcomes); err != nil {
		log.Error(ctx, "write outcomes failed", logger.Error(err))
		os.Exit(1)
	}

	log.Info(ctx, "wrote synthetic outcomes",
		logger.String("path", *output),
		logger.Int("outcomes", len(outcomes)),
	)
}
