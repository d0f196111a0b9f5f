package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"InferenceHarness/pkg/harness"
)

var (
	batchCategory string
	batchCooldown time.Duration
)

// batchPrompt is one entry of a prompts file. Plain text lines carry only
// the prompt; JSON lines may attach a category.
type batchPrompt struct {
	Prompt   string `json:"prompt"`
	Category string `json:"category"`
}

// NewBatchCmd creates the batch subcommand.
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <prompts-file>",
		Short: "Run every prompt in a file",
		Long: `Run each prompt of a file through the instrumented pipeline, one run per
line, persisting a record per run. A failing prompt is logged and skipped;
the batch continues.

The file holds one prompt per line. Blank lines and lines starting with #
are skipped. A line starting with { is parsed as JSON:
  {"prompt": "Explain thermal throttling", "category": "reasoning"}

Example:
  infharness batch prompts.txt -m tinyllama --cooldown 5s`,
		Args: cobra.ExactArgs(1),
		RunE: runBatch,
	}

	Cfg.AddModelFlags(cmd)
	Cfg.AddSamplingFlags(cmd)
	Cfg.AddStoreFlags(cmd)

	cmd.Flags().StringVar(&batchCategory, "category", "", "Category label for plain-text prompts")
	cmd.Flags().DurationVar(&batchCooldown, "cooldown", 0, "Pause between runs (lets the device cool down)")

	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	prompts, err := readPrompts(args[0])
	if err != nil {
		return err
	}
	if len(prompts) == 0 {
		return fmt.Errorf("no prompts found in %s", args[0])
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

	var completed, failed int
	for i, p := range prompts {
		if ctx.Err() != nil {
			log.Printf("batch interrupted after %d/%d prompts", i, len(prompts))
			break
		}

		log.Printf("prompt %d/%d (%s)", i+1, len(prompts), truncate(p.Prompt, 60))
		record, err := h.RunInference(ctx, p.Prompt, p.Category)
		if err != nil {
			failed++
			log.Printf("prompt %d failed: %v", i+1, err)
		}
		if record != nil {
			completed++
		}

		if batchCooldown > 0 && i < len(prompts)-1 {
			select {
			case <-time.After(batchCooldown):
			case <-ctx.Done():
			}
		}
	}

	log.Printf("batch done: %d recorded, %d failed", completed, failed)
	if completed == 0 {
		return fmt.Errorf("batch produced no records")
	}
	return nil
}

// readPrompts parses the prompts file, accepting plain lines and JSON lines.
func readPrompts(path string) ([]batchPrompt, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open prompts file: %w", err)
	}
	defer f.Close()

	var prompts []batchPrompt
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p := batchPrompt{Category: batchCategory}
		if strings.HasPrefix(line, "{") {
			if err := json.Unmarshal([]byte(line), &p); err != nil {
				return nil, fmt.Errorf("bad JSON prompt at %s:%d: %w", path, lineNo, err)
			}
			if p.Category == "" {
				p.Category = batchCategory
			}
		} else {
			p.Prompt = line
		}
		if p.Prompt == "" {
			return nil, fmt.Errorf("empty prompt at %s:%d", path, lineNo)
		}
		prompts = append(prompts, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}
	return prompts, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
