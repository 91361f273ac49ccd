// Command minecandles mines recurrent candle or zigzag patterns out of one
// or more broker-format CSV series and writes a report of the profitable
// ones.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"candleminer/config"
	"candleminer/internal/logging"
	"candleminer/internal/mineerrors"
	"candleminer/internal/miner"
	"candleminer/internal/orchestrator"
	"candleminer/internal/quotes"
	"candleminer/internal/report"
)

// inputFiles collects repeated -input-filename/-i occurrences.
type inputFiles []string

func (f *inputFiles) String() string { return strings.Join(*f, ",") }
func (f *inputFiles) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func main() {
	loadDotEnv()

	var inputs inputFiles
	var outputFilename, configPath, minerType, reportType string
	var debug bool

	flag.Var(&inputs, "input-filename", "input CSV file (repeatable)")
	flag.Var(&inputs, "i", "shorthand for -input-filename")
	flag.StringVar(&outputFilename, "output-filename", "", "report output path (required)")
	flag.StringVar(&configPath, "config", "", "JSON configuration file (required)")
	flag.StringVar(&minerType, "miner-type", "c", "c for candle, z for zigzag")
	flag.StringVar(&reportType, "report-type", "txt", "html or txt")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.Parse()

	if err := run(inputs, outputFilename, configPath, minerType, reportType, debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadDotEnv() {
	candidates := []string{".env", "../.env", "../../.env"}
	for _, c := range candidates {
		if err := godotenv.Load(c); err == nil {
			return
		}
	}
}

func run(inputs inputFiles, outputFilename, configPath, minerTypeFlag, reportTypeFlag string, debug bool) error {
	if len(inputs) == 0 {
		return mineerrors.NewArgumentError("at least one -input-filename/-i is required")
	}
	if outputFilename == "" {
		return mineerrors.NewArgumentError("-output-filename is required")
	}
	if configPath == "" {
		return mineerrors.NewArgumentError("-config is required")
	}

	level := "INFO"
	if debug {
		level = "DEBUG"
	}
	logging.SetDefault(logging.New(&logging.Config{Level: level, Output: "stderr"}))

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	var minerTypeSel orchestrator.MinerType
	switch minerTypeFlag {
	case "c", "candle":
		minerTypeSel = orchestrator.MinerTypeCandle
	case "z", "zigzag":
		minerTypeSel = orchestrator.MinerTypeZigzag
	default:
		return mineerrors.NewArgumentError("unknown -miner-type %q, want c or z", minerTypeFlag)
	}

	series := make([]*quotes.Series, 0, len(inputs))
	for _, path := range inputs {
		s, err := quotes.LoadCSV(path, "")
		if err != nil {
			return err
		}
		logging.QuotesContext(path, s.Name, s.Len()).Info("loaded series")
		series = append(series, s)
	}

	candleParams := miner.CandleParams{
		PatternLength: cfg.Candle.PatternLength,
		CandleTol:     cfg.Candle.CandleFitTolerance,
		VolumeTol:     cfg.Candle.VolumeFitTolerance,
		Limit:         cfg.Common.SamplePercentage,
		ExitAfter:     cfg.Common.ExitAfter,
		MomentumOrder: cfg.Common.MomentumOrder,
		FitSignatures: cfg.Candle.FitSignatures,
	}
	zigzagParams := miner.ZigzagParams{
		Zigzags:       cfg.Zigzag.Zigzags,
		Epsilon:       cfg.Zigzag.Epsilon,
		PriceTol:      cfg.Zigzag.PriceTolerance,
		VolumeTol:     cfg.Zigzag.VolumeTolerance,
		TimeTol:       cfg.Zigzag.TimeTolerance,
		Limit:         cfg.Common.SamplePercentage,
		ExitAfter:     cfg.Common.ExitAfter,
		MomentumOrder: cfg.Common.MomentumOrder,
	}
	filters := orchestrator.Filters{
		MinP:        cfg.Report.FilterP,
		MinMean:     cfg.Report.FilterMean,
		MinMeanP:    cfg.Report.FilterMeanP,
		MinCount:    cfg.Report.FilterCount,
		DropTrivial: cfg.Report.FilterTrivial,
	}

	destination := outputFilename
	if cfg.Report.OutputFilename != "" {
		destination = cfg.Report.OutputFilename
	}

	var sink report.Sink
	switch reportTypeFlag {
	case "html":
		sink = report.NewHTMLSink()
	case "txt", "":
		sink = report.NewTextSink()
	default:
		return mineerrors.NewArgumentError("unknown -report-type %q, want html or txt", reportTypeFlag)
	}

	progress := func(done, total int) {
		if debug && total > 0 {
			logging.Debug("mining progress", "done", done, "total", total)
		}
	}

	if err := orchestrator.Run(series, minerTypeSel, candleParams, zigzagParams, filters, sink, destination, progress); err != nil {
		return err
	}

	logging.ReportContext(reportTypeFlag, destination, 0).Info("report written")
	return nil
}
