package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	_ "github.com/joho/godotenv/autoload"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"contractapi/internal/config"
	"contractapi/internal/export"
	"contractapi/internal/llm"
	"contractapi/internal/logging"
	"contractapi/internal/model"
	"contractapi/internal/retry"
	"contractapi/internal/service"
	"contractapi/internal/storage"
	"contractapi/internal/textextract"
)

type options struct {
	file       string
	configPath string
	jsonOut    string
	xlsxOut    string
	upload     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.file, "file", "", "Path to the contract PDF")
	flag.StringVar(&opts.configPath, "config", os.Getenv("CONFIG_FILE"), "Path to a YAML config file")
	flag.StringVar(&opts.jsonOut, "json", "", "Write the pipeline result as JSON to this path")
	flag.StringVar(&opts.xlsxOut, "xlsx", "", "Write the structured result as an XLSX workbook to this path")
	flag.BoolVar(&opts.upload, "upload", false, "Store the contract in object storage when MinIO is configured")
	flag.Parse()

	if opts.file == "" && flag.NArg() > 0 {
		opts.file = flag.Arg(0)
	}
	if opts.file == "" {
		color.Red("Usage: extract -file contract.pdf [-json out.json] [-xlsx out.xlsx]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ok, err := run(ctx, opts)
	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		os.Exit(1)
	}
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(ctx context.Context, opts options) (bool, error) {
	cfg := config.Load()
	if opts.configPath != "" {
		if err := config.LoadFile(cfg, opts.configPath); err != nil {
			return false, err
		}
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Yellow("config: %s: %s\n", e.Field, e.Message)
		}
		return false, fmt.Errorf("invalid configuration")
	}

	// Keep the terminal for the spinner; only warnings and errors are logged.
	logger := logging.Must("warn", cfg.Location())
	defer func() { _ = logger.Sync() }()

	data, err := os.ReadFile(opts.file)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", opts.file, err)
	}
	req, err := service.Submit(data, filepath.Base(opts.file), int64(len(data)), cfg.Pipeline.MaxUploadBytes)
	if err != nil {
		return false, err
	}

	svc, err := newService(ctx, cfg, logger, opts.upload)
	if err != nil {
		return false, err
	}

	color.Blue("\nExtracting %s (%d bytes) with %s/%s\n", req.Filename, req.Size, cfg.LLM.Provider, cfg.LLM.Model)
	spinner := getSpinner("Analyzing contract...")
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = spinner.Add(1)
			}
		}
	}()

	res := svc.Process(ctx, req)
	close(done)
	_ = spinner.Finish()
	fmt.Println()

	printResult(res)

	if opts.jsonOut != "" {
		if err := writeJSON(opts.jsonOut, res); err != nil {
			return false, err
		}
		color.Green("✓ Wrote %s\n", opts.jsonOut)
	}
	if opts.xlsxOut != "" {
		if err := writeXLSX(opts.xlsxOut, res.StructuredData); err != nil {
			return false, err
		}
		color.Green("✓ Wrote %s\n", opts.xlsxOut)
	}
	return res.Success, nil
}

func newService(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger, upload bool) (service.ContractService, error) {
	client, err := llm.New(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize model client: %w", err)
	}

	o := service.Options{
		Extractor: textextract.NewPdftotext(cfg.TextExtract, logger),
		Model:     client,
		Retrier: retry.New(retry.Policy{
			MaxAttempts: cfg.Pipeline.MaxAttempts,
			BaseDelay:   cfg.Pipeline.BaseDelay,
			MaxJitter:   cfg.Pipeline.MaxJitter,
			Retryable:   llm.IsRetryable,
		}),
		Logger:  logger,
		Timeout: cfg.Pipeline.Timeout,
	}
	if upload && cfg.MinIO.Enabled() {
		store, err := storage.NewMinIO(cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
		o.Artifacts = storage.NewArtifactStore(store, cfg.Pipeline.PresignExpiry)
	}
	return service.NewContractService(o), nil
}

func printResult(res *model.PipelineResult) {
	if res.Error != nil {
		color.Red("✗ %s: %s\n", res.Error.Kind, res.Error.Message)
	} else {
		color.Green("✓ Extraction succeeded after %d attempt(s)\n", res.Attempts)
	}
	if res.URL != "" {
		color.Cyan("Stored at %s\n", res.URL)
	}

	d := res.StructuredData
	if d.Summary != "" {
		fmt.Printf("\n%s\n", d.Summary)
	}

	label := color.New(color.Bold).SprintFunc()
	fmt.Printf("\n%s %d  %s %d  %s %d  %s %d  %s %d  %s %d\n",
		label("Q&A:"), len(d.Accordion),
		label("Tables:"), len(d.Tables),
		label("Timeline:"), len(d.Timeline),
		label("Tasks:"), len(d.Tasks),
		label("Deadlines:"), len(d.Deadlines),
		label("Dates:"), len(d.PropertyDetails.DatesAndDeadlines),
	)

	for _, dl := range d.Deadlines {
		fmt.Printf("  • %s  %s\n", color.YellowString(dl.Deadline), dl.Name)
	}

	if res.Report == nil {
		return
	}
	r := res.Report
	color.Cyan("\nExtraction rate %d%% (%d/%d sections), complexity %s\n",
		r.ExtractionRate, r.SuccessfulSections, r.TotalSections, r.DocumentComplexity)
	for _, w := range r.Warnings {
		color.Yellow("  ! %s\n", w)
	}
	for _, c := range r.Challenges {
		color.Yellow("  - %s\n", c)
	}
	for _, rec := range r.Recommendations {
		fmt.Printf("  → %s\n", rec)
	}
}

func writeJSON(path string, res *model.PipelineResult) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func writeXLSX(path string, r model.StructuredResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteWorkbook(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
