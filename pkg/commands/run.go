package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"InferenceHarness/pkg/harness"
	"InferenceHarness/pkg/inference"
)

var (
	runPrompt   string
	runCategory string
)

// NewRunCmd creates the run subcommand.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one instrumented inference",
		Long: `Load a model, run a single prompt through the instrumented pipeline, and
persist the resulting run record.

Until a native inference backend is linked in, a deterministic stub backend
stands in for the model: the resolved artifact file must exist but its
content is ignored.

Example:
  infharness run -m tinyllama -p "Explain thermal throttling" --max-tokens 64
  infharness run -m tinyllama -p "..." --timeout 30s --gpu`,
		RunE: runRun,
	}

	Cfg.AddModelFlags(cmd)
	Cfg.AddSamplingFlags(cmd)
	Cfg.AddStoreFlags(cmd)

	cmd.Flags().StringVarP(&runPrompt, "prompt", "p", "", "Prompt text")
	cmd.Flags().StringVar(&runCategory, "category", "", "Prompt category label")

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	if runPrompt == "" {
		return fmt.Errorf("no prompt specified (use --prompt)")
	}

	h, err := harness.New(Cfg, stubFactory())
	if err != nil {
		return err
	}
	defer h.Close()

	if err := h.LoadModel(""); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	record, err := h.RunInference(ctx, runPrompt, runCategory)
	if record != nil {
		data, _ := json.MarshalIndent(record, "", "  ")
		fmt.Fprintln(os.Stdout, string(data))
	}
	if err != nil {
		log.Printf("run finished with error: %v", err)
		return err
	}
	return nil
}

// stubFactory builds the placeholder backend from configured delays. A real
// native backend slots in here once one is linked.
func stubFactory() inference.BackendFactory {
	return inference.StubFactory(Cfg.StubPrefillDelay, Cfg.StubDecodeDelay, 0)
}
