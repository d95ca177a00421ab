// Command deckfill generates PowerPoint reports from parameterized Excel and
// PowerPoint master templates.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javajack/deckfill"
	"github.com/javajack/deckfill/store"
)

var (
	flagConfig  string
	flagParams  []string
	flagOutDir  string
	flagBackend string
	flagHistory string
	flagVerbose bool

	flagTemplate string
	flagLimit    int
)

func main() {
	root := &cobra.Command{
		Use:           "deckfill",
		Short:         "Generate PowerPoint reports from Excel-driven templates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&flagHistory, "history", "", "path to the run-history database")

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Run one report generation from a template config",
		RunE:  runGenerate,
	}
	generate.Flags().StringVarP(&flagConfig, "config", "c", "", "template config JSON file (required)")
	generate.Flags().StringArrayVarP(&flagParams, "param", "p", nil, "parameter value as name=value (repeatable)")
	generate.Flags().StringVarP(&flagOutDir, "out", "o", "", "output directory override")
	generate.Flags().StringVar(&flagBackend, "backend", "com", "spreadsheet backend: com or xlsx")
	_ = generate.MarkFlagRequired("config")
	root.AddCommand(generate)

	history := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		RunE:  runHistory,
	}
	history.Flags().StringVarP(&flagTemplate, "template", "t", "", "filter by template name")
	history.Flags().IntVarP(&flagLimit, "limit", "n", 20, "maximum runs to list")
	root.AddCommand(history)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := deckfill.LoadConfig(flagConfig)
	if err != nil {
		return err
	}
	if flagOutDir != "" {
		cfg.OutputDir = flagOutDir
	}

	params, err := parseParams(flagParams)
	if err != nil {
		return err
	}

	var openSP deckfill.SpreadsheetOpener
	switch flagBackend {
	case "com":
		openSP = deckfill.OpenExcelCOM
	case "xlsx":
		openSP = deckfill.OpenXLSX
	default:
		return fmt.Errorf("unknown backend %q, want com or xlsx", flagBackend)
	}

	runner := deckfill.NewRunner(cfg, openSP, deckfill.OpenPowerPointCOM,
		deckfill.WithLogger(log))
	result := runner.Run(params)

	if flagHistory != "" {
		if err := record(cfg.Name, params, result); err != nil {
			log.Warn("run history not recorded", "error", err)
		}
	}

	if !result.Success {
		return fmt.Errorf("generation failed: %s", result.Error)
	}
	fmt.Println("excel:", result.ExcelPath)
	fmt.Println("pptx: ", result.PPTXPath)
	return nil
}

func record(template string, params map[string]any, result *deckfill.Result) error {
	st, err := store.Open(flagHistory)
	if err != nil {
		return err
	}
	defer st.Close()
	_, err = st.RecordRun(context.Background(), store.Run{
		Template:         template,
		Parameters:       params,
		Success:          result.Success,
		ExcelPath:        result.ExcelPath,
		PPTXPath:         result.PPTXPath,
		Error:            result.Error,
		ExecutionSeconds: result.ExecutionSeconds,
	})
	return err
}

func runHistory(cmd *cobra.Command, args []string) error {
	if flagHistory == "" {
		return fmt.Errorf("--history is required")
	}
	st, err := store.Open(flagHistory)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(context.Background(), flagTemplate, flagLimit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		status := "ok"
		if !r.Success {
			status = "failed: " + r.Error
		}
		fmt.Printf("%s  %s  %-20s  %6.1fs  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.ID[:8], r.Template,
			r.ExecutionSeconds, status)
	}
	return nil
}

func parseParams(raw []string) (map[string]any, error) {
	params := make(map[string]any, len(raw))
	for _, kv := range raw {
		name, value, found := strings.Cut(kv, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("parameter %q is not name=value", kv)
		}
		params[name] = value
	}
	return params, nil
}
