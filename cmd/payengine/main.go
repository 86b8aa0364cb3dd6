package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/medlocum/locumpay/engine/internal/config"
	"github.com/medlocum/locumpay/engine/internal/domain"
	"github.com/medlocum/locumpay/engine/internal/engine"
	"github.com/medlocum/locumpay/engine/internal/history"
	"github.com/medlocum/locumpay/engine/internal/location"
	"github.com/medlocum/locumpay/engine/internal/storage"
	"github.com/medlocum/locumpay/engine/internal/storage/memory"
	"github.com/medlocum/locumpay/engine/internal/storage/sqlite"
	"github.com/medlocum/locumpay/engine/internal/tax"
)

func main() {
	mode := flag.String("mode", "contract", "calculation mode: contract, paycheck, or compare")
	input := flag.String("input", "-", "input JSON file (- for stdin)")
	save := flag.Bool("save", false, "save the result to calculation history")
	list := flag.Int("list", 0, "list the n most recent saved calculations and exit")
	flag.Parse()

	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	var provider tax.Provider
	if cfg.TaxTablePath != "" {
		provider, err = tax.LoadFile(cfg.TaxTablePath)
	} else {
		provider, err = tax.NewStaticProvider()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load tax tables")
	}

	store := openStore(cfg)
	defer store.Close()

	taxCalc := tax.NewCalculator(provider)
	contracts := engine.NewContractEngine(taxCalc)
	paychecks := engine.NewPaycheckEngine(taxCalc)
	comparisons := engine.NewComparisonEngine(contracts, location.NewStaticLookup())
	manager := history.NewManager(store, log.Logger)

	ctx := context.Background()

	if *list > 0 {
		recent, err := manager.Recent(ctx, *list)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list history")
		}
		printJSON(recent)
		return
	}

	data, err := readInput(*input)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read input")
	}

	var record *domain.HistoryItem
	switch *mode {
	case "contract":
		var in domain.ContractInput
		mustUnmarshal(data, &in)
		calc, err := contracts.Calculate(in)
		if err != nil {
			log.Fatal().Err(err).Msg("Contract calculation failed")
		}
		printJSON(calc)
		record = mustRecord(history.NewContractRecord(calc))
	case "paycheck":
		var in domain.PaycheckInput
		mustUnmarshal(data, &in)
		calc, err := paychecks.Calculate(in, time.Now().UTC())
		if err != nil {
			log.Fatal().Err(err).Msg("Paycheck calculation failed")
		}
		printJSON(calc)
		record = mustRecord(history.NewPaycheckRecord(calc))
	case "compare":
		var ins []domain.ContractInput
		mustUnmarshal(data, &ins)
		result, err := comparisons.Compare(ctx, ins)
		if err != nil {
			log.Fatal().Err(err).Msg("Comparison failed")
		}
		printJSON(result)
		record = mustRecord(history.NewComparisonRecord(ins, result))
	default:
		log.Fatal().Str("mode", *mode).Msg("Unknown mode")
	}

	if *save {
		saved, err := manager.Save(ctx, record)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to save calculation")
		}
		log.Info().Str("id", saved.ID).Msg("Saved calculation")
	}
}

// openStore selects the storage backend by availability: sqlite when its
// database can be opened, the in-process store otherwise.
func openStore(cfg *config.Config) storage.Store {
	if cfg.StorageBackend == config.BackendMemory {
		return memory.New(cfg.MaxHistoryItems)
	}

	store, err := sqlite.Open(cfg.SQLitePath, cfg.MaxHistoryItems)
	if err != nil {
		if cfg.StorageBackend == config.BackendSQLite {
			log.Fatal().Err(err).Msg("Failed to open sqlite storage")
		}
		log.Warn().Err(err).Msg("Sqlite unavailable, falling back to in-memory storage")
		return memory.New(cfg.MaxHistoryItems)
	}
	log.Info().Str("path", cfg.SQLitePath).Msg("Using sqlite storage")
	return store
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func mustUnmarshal(data []byte, v any) {
	if err := json.Unmarshal(data, v); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse input JSON")
	}
}

func mustRecord(item *domain.HistoryItem, err error) *domain.HistoryItem {
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build history record")
	}
	return item
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
