package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"chillgrid/adapters/approvalui"
	"chillgrid/adapters/auditstore"
	"chillgrid/adapters/report"
	"chillgrid/adapters/sidecar"
	"chillgrid/adapters/statusapi"
	"chillgrid/adapters/tabular"
	"chillgrid/app"
	"chillgrid/domain/signal"
	domainrun "chillgrid/domain/run"
	"chillgrid/internal/config"
	internallog "chillgrid/internal"
	"chillgrid/ports"
)

func main() {
	_ = godotenv.Load() // .env is optional; real environments set vars directly

	rootCmd := &cobra.Command{
		Use:   "chillgrid",
		Short: "Telemetry assimilation pipeline for chiller-plant BMD exports",
	}

	rootCmd.AddCommand(newRunCmd(), newApproveCmd(), newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a run outcome to the CLI's exit code convention: 0 clean,
// 1 halted (data-fatal, partial output preserved), 2 unexpected/programmer
// error (spec.md §6).
func exitCodeFor(err error) int {
	if err == errHalted {
		return 1
	}
	return 2
}

var errHalted = fmt.Errorf("pipeline halted")

func newRunCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the five-stage pipeline over the configured input directory",
		Long: `Classifies input files, decodes and verifies each mandatory channel,
detects change-of-value-aware gaps, synchronises to a uniform grid, and
computes derived thermodynamic quantities.

Configuration is read from the environment (INPUT_DIR, OUTPUT_DIR,
EQUIPMENT_PROFILE, NOMINAL_STEP_SECONDS, NAMEPLATE_KW, TOLERATE_REVERSAL,
DATABASE_URL).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), verbose)
		},
	}
	cmd.Flags().BoolVar(&verbose, "verbose", false, "stream stage progress to stderr")
	return cmd
}

func runPipeline(ctx context.Context, verbose bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	reader := tabular.NewReader()
	approvalStore := sidecar.NewStore(cfg.Paths.OutputDir)

	var audit ports.AuditSink
	if cfg.Database.URL != "" {
		store, err := auditstore.Open(cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("opening audit database: %w", err)
		}
		defer store.Close()
		audit = store
	}

	var progress ports.ProgressSink
	if verbose {
		progress = stderrProgressSink{}
	}

	orch := app.New(reader, approvalStore, audit, progress)
	opts := domainrun.Options{
		InputDir:           cfg.Paths.InputDir,
		OutputDir:          cfg.Paths.OutputDir,
		EquipmentProfile:   signal.EquipmentProfile(cfg.Pipeline.EquipmentProfile),
		NameplateKW:        cfg.Pipeline.NameplateKW,
		NominalStepSeconds: cfg.Pipeline.NominalStepSeconds,
		TolerateReversal:   cfg.Pipeline.TolerateReversal,
	}

	result, err := orch.Run(ctx, opts)
	if err != nil {
		return fmt.Errorf("running pipeline: %w", err)
	}

	if err := writeManifest(cfg.Paths.OutputDir, result.Manifest); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	if result.Halted {
		fmt.Fprintf(os.Stderr, "HALT in stage %s: %s\n", result.Manifest.Halt.Stage, result.Manifest.Halt.Reason)
		return errHalted
	}

	renderer := report.Renderer{}
	doc, err := renderer.Render(ctx, result.Manifest, nil)
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	reportPath := cfg.Paths.OutputDir + "/" + string(result.Manifest.ID) + "_report.md"
	if err := os.WriteFile(reportPath, doc, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	fmt.Printf("run %s complete: %d rows, %d derived points, final confidence %.2f\n",
		result.Manifest.ID, len(result.Rows), len(result.Derived), result.Manifest.FinalConfidence)
	return nil
}

func writeManifest(outputDir string, m *domainrun.Manifest) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outputDir+"/"+string(m.ID)+"_manifest.json", data, 0o644)
}

type stderrProgressSink struct{}

func (stderrProgressSink) StageStarted(stage string) {
	internallog.DefaultLogger.Info("stage %s started", stage)
}
func (stderrProgressSink) StageFinished(stage string, success bool, confidence float64) {
	internallog.DefaultLogger.Info("stage %s finished success=%v confidence=%.2f", stage, success, confidence)
}
func (stderrProgressSink) Halted(stage string, reason string) {
	internallog.DefaultLogger.Warn("stage %s halted: %s", stage, reason)
}

func newApproveCmd() *cobra.Command {
	var runID, windowID, reason string
	var reject bool

	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Record an approval/rejection decision for a proposed exclusion window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			store := sidecar.NewStore(cfg.Paths.OutputDir)

			decisions, err := store.ReadApprovals(cmd.Context(), runID)
			if err != nil {
				return fmt.Errorf("reading existing approvals: %w", err)
			}
			decisions = upsertDecision(decisions, ports.ApprovalDecision{
				WindowID: windowID, Approved: !reject, Reason: reason,
			})
			return store.WriteApprovals(cmd.Context(), runID, decisions)
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "run ID the window belongs to")
	cmd.Flags().StringVar(&windowID, "window", "", "exclusion window ID")
	cmd.Flags().StringVar(&reason, "reason", "", "free-text justification")
	cmd.Flags().BoolVar(&reject, "reject", false, "reject instead of approve")
	cmd.MarkFlagRequired("run")
	cmd.MarkFlagRequired("window")
	return cmd
}

func upsertDecision(decisions []ports.ApprovalDecision, d ports.ApprovalDecision) []ports.ApprovalDecision {
	for i, existing := range decisions {
		if existing.WindowID == d.WindowID {
			decisions[i] = d
			return decisions
		}
	}
	return append(decisions, d)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Launch the approval UI and status API servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServers(cmd.Context())
		},
	}
	return cmd
}

func runServers(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	gin.SetMode(cfg.Server.GinMode)

	approvalStore := sidecar.NewStore(cfg.Paths.OutputDir)
	approvalSrv := approvalui.NewServer(approvalStore)
	statusSrv := statusapi.NewServer()

	errs := make(chan error, 2)
	go func() { errs <- approvalSrv.Run(ctx, ":"+cfg.Server.ApprovalPort) }()
	go func() { errs <- statusSrv.Run(ctx, ":"+cfg.Server.StatusPort) }()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
