package commands

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/notadecision/internal/config"
	"github.com/jmylchreest/notadecision/internal/logger"
	"github.com/jmylchreest/notadecision/internal/output"
	"github.com/jmylchreest/notadecision/internal/pdftext"
	"github.com/jmylchreest/notadecision/pkg/cleaner"
	"github.com/jmylchreest/notadecision/pkg/decision"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [file]...",
	Short: "Extract the decision from local files",
	Long: `Run the extraction pipeline on local PDF or text files, or on stdin
when no file is given. Useful for testing rules files.

Examples:
  notadecision clean nota.pdf
  pdftotext nota.pdf - | notadecision clean --format text
  notadecision clean nota.pdf --rules rules.yaml --stats
  notadecision clean nota.pdf --raw`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	flags := cleanCmd.Flags()
	flags.String("format", "html", "output format: html, text, json, jsonl, yaml")
	flags.Bool("stats", false, "print extraction statistics to stderr")
	flags.Bool("raw", false, "write the document text without cleaning")
	flags.String("max-file-size", "", "max input size (e.g., 50MB, 0=unlimited)")
}

// cleanInput is one document to clean.
type cleanInput struct {
	name string
	text string
}

func runClean(cmd *cobra.Command, args []string) error {
	_ = viper.BindPFlag(config.KeyMaxFileSize, cmd.Flags().Lookup("max-file-size"))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	formatStr, _ := cmd.Flags().GetString("format")
	showStats, _ := cmd.Flags().GetBool("stats")
	raw, _ := cmd.Flags().GetBool("raw")

	format, err := output.ParseFormat(formatStr)
	if err != nil {
		logError("%v", err)
		return err
	}

	var c cleaner.Cleaner = cleaner.NewNoop()
	var pipeline *decision.Pipeline
	if !raw {
		pipeline, err = newPipeline(cfg)
		if err != nil {
			return err
		}
		c = pipeline
	}
	logger.Debug("clean command starting", "cleaner", c.Name(), "format", format)

	inputs, err := readInputs(cmd.InOrStdin(), args, cfg.MaxFileSize)
	if err != nil {
		logError("%v", err)
		return err
	}

	w, err := output.NewWriter(cmd.OutOrStdout(), format)
	if err != nil {
		return err
	}

	for _, in := range inputs {
		var rec output.Record
		if pipeline != nil {
			res := pipeline.Extract(in.text)
			rec = output.NewRecord(in.name, res, showStats)
			if showStats {
				fmt.Fprintf(cmd.ErrOrStderr(), "--- %s\n%s", in.name, res.Stats.String())
			}
			for _, warning := range res.Warnings {
				logInfo("%s: %s", in.name, warning.String())
			}
		} else {
			content, err := c.Clean(in.text)
			if err != nil {
				return fmt.Errorf("%s: %w", c.Name(), err)
			}
			rec = output.Record{Source: in.name, Content: content}
		}

		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Flush()
}

// readInputs loads the named files, or stdin when there are none. PDFs are
// decoded to their text layer; anything else is read as text. Every input
// is held to maxBytes.
func readInputs(stdin io.Reader, paths []string, maxBytes int64) ([]cleanInput, error) {
	if len(paths) == 0 {
		data, err := pdftext.ReadAll(stdin, maxBytes)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		text, err := documentText(data)
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		return []cleanInput{{name: "-", text: text}}, nil
	}

	inputs := make([]cleanInput, 0, len(paths))
	for _, path := range paths {
		var (
			text string
			err  error
		)
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			text, err = pdftext.ReadFile(pdftext.PDFDecoder{}, path, maxBytes)
		} else {
			var data []byte
			data, err = pdftext.LoadFile(path, maxBytes)
			if err == nil {
				text, err = documentText(data)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		inputs = append(inputs, cleanInput{name: path, text: text})
	}
	return inputs, nil
}

var pdfMagic = []byte("%PDF-")

// documentText decodes data as a PDF when it carries the PDF header.
func documentText(data []byte) (string, error) {
	if bytes.HasPrefix(data, pdfMagic) {
		return pdftext.PDFDecoder{}.Decode(bytes.NewReader(data), int64(len(data)))
	}
	return string(data), nil
}
