package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/notadecision/internal/batch"
	"github.com/jmylchreest/notadecision/internal/config"
	"github.com/jmylchreest/notadecision/internal/logger"
	"github.com/jmylchreest/notadecision/internal/output"
)

var extractCmd = &cobra.Command{
	Use:   "extract <notaID>...",
	Short: "Extract the decision of Notas by id",
	Long: `Look up each Nota in the triplestore, read its PDF from the share and
write the extracted decision.

Examples:
  notadecision extract 5F2A1B3C
  notadecision extract 5F2A1B3C 6E4D2A1F --format yaml --stats
  notadecision extract $(cat ids.txt) --format jsonl -c 8`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	flags := extractCmd.Flags()
	flags.String("sparql-endpoint", "", "SPARQL endpoint URL")
	flags.String("share-root", "", "directory backing share:// data sources")
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("format", "json", "output format: html, text, json, jsonl, yaml")
	flags.Bool("stats", false, "include extraction statistics")
	flags.IntP("concurrency", "c", batch.DefaultConfig().Concurrency, "concurrent extractions")
	flags.Duration("delay", 0, "delay before each extraction")
}

func runExtract(cmd *cobra.Command, args []string) error {
	// Flags are bound here so serve and extract can share the keys.
	_ = viper.BindPFlag(config.KeySPARQLEndpoint, cmd.Flags().Lookup("sparql-endpoint"))
	_ = viper.BindPFlag(config.KeyShareRoot, cmd.Flags().Lookup("share-root"))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := newService(cfg)
	if err != nil {
		return err
	}

	formatStr, _ := cmd.Flags().GetString("format")
	withStats, _ := cmd.Flags().GetBool("stats")
	outputPath, _ := cmd.Flags().GetString("output")

	format, err := output.ParseFormat(formatStr)
	if err != nil {
		logError("%v", err)
		return err
	}

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			logError("failed to create output file: %v", err)
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	w, err := output.NewWriter(out, format)
	if err != nil {
		return err
	}

	concurrency, _ := cmd.Flags().GetInt("concurrency")
	delay, _ := cmd.Flags().GetDuration("delay")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runner := batch.New(svc, batch.Config{Concurrency: concurrency, Delay: delay})

	// Results arrive in completion order; write them in input order.
	var collected []batch.Result
	for res := range runner.Run(ctx, args) {
		logInfo("[%d/%d] %s (%s)", len(collected)+1, len(args), res.NotaID, res.Duration.Round(time.Millisecond))
		collected = append(collected, res)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].Index < collected[j].Index })

	var failed int
	for _, res := range collected {
		if res.Error != nil {
			failed++
			logger.Error("extraction failed", "nota", res.NotaID, "error", res.Error)
			logError("%s: %v", res.NotaID, res.Error)
			continue
		}
		for _, warning := range res.Result.Warnings {
			logger.Warn("extraction warning", "nota", res.NotaID, "warning", warning.String())
		}
		if err := w.Write(output.NewRecord(res.NotaID, res.Result, withStats)); err != nil {
			return err
		}
	}

	if err := w.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return errExtractFailed(failed, len(collected))
	}
	return nil
}

func errExtractFailed(failed, total int) error {
	return fmt.Errorf("%d of %d extractions failed", failed, total)
}
