// Package cli implements the switchctl command tree. Every subcommand is
// a thin call into the daemon's HTTP API followed by plain-text rendering.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"switchd/pkg/types"
)

// Config carries the CLI-wide settings filled from persistent flags.
type Config struct {
	Addr    string
	Timeout time.Duration
	Out     io.Writer
}

// buildRootCmd is a convenience for help-only fallbacks.
func buildRootCmd() *cobra.Command {
	return buildRootCmdWith(&Config{Addr: "http://localhost:8080", Timeout: 5 * time.Minute, Out: os.Stdout})
}

// buildRootCmdWith constructs the Cobra command tree wired to the API client.
func buildRootCmdWith(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "switchctl",
		Short:         "Control and inspect the model switch daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfg.Addr, "addr", cfg.Addr, "Daemon base URL (defaults SWITCHD_CTL_ADDR or http://localhost:8080)")
	root.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Request timeout; switches can take a while")

	client := func() *Client { return NewClient(cfg.Addr, cfg.Timeout) }

	modelsCmd := &cobra.Command{Use: "models", Short: "List installed models and the active one", RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client().Models(cmd.Context())
		if err != nil {
			return err
		}
		renderModels(cfg.Out, resp)
		return nil
	}}

	switchCmd := &cobra.Command{Use: "switch <model>", Short: "Make <model> the single active model", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		res, err := client().Switch(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cfg.Out, res.Message)
		if !res.Success {
			return fmt.Errorf("switch failed")
		}
		return nil
	}}

	healthCmd := &cobra.Command{Use: "health", Short: "Show accelerator health", RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client().Health(cmd.Context())
		if err != nil {
			return err
		}
		renderHealth(cfg.Out, resp)
		return nil
	}}

	metricsCmd := &cobra.Command{Use: "metrics", Short: "Show current telemetry and rolling averages", RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client().Metrics(cmd.Context())
		if err != nil {
			return err
		}
		renderMetrics(cfg.Out, resp)
		return nil
	}}

	recsCmd := &cobra.Command{Use: "recommendations", Aliases: []string{"recs"}, Short: "Show advisories derived from telemetry", RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client().Recommendations(cmd.Context())
		if err != nil {
			return err
		}
		for _, rec := range resp.Recommendations {
			fmt.Fprintf(cfg.Out, "- %s\n", rec)
		}
		return nil
	}}

	root.AddCommand(modelsCmd, switchCmd, healthCmd, metricsCmd, recsCmd)
	return root
}

// Run executes the CLI and returns its exit code.
func Run(args []string) int {
	cfg := &Config{
		Addr:    "http://localhost:8080",
		Timeout: 5 * time.Minute,
		Out:     os.Stdout,
	}
	if v := os.Getenv("SWITCHD_CTL_ADDR"); v != "" {
		cfg.Addr = v
	}
	root := buildRootCmdWith(cfg)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "switchctl: %v\n", err)
		return 1
	}
	return 0
}

func renderModels(w io.Writer, resp types.ModelsResponse) {
	for _, m := range resp.Available {
		marker := " "
		if m.Name == resp.Current {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-40s %8.1f GB\n", marker, m.Name, float64(m.SizeBytes)/(1<<30))
	}
	if resp.Current == "" {
		fmt.Fprintln(w, "no model active")
	}
}

func renderHealth(w io.Writer, resp types.HealthResponse) {
	if !resp.Sampled {
		fmt.Fprintln(w, "no telemetry sample yet")
		return
	}
	if !resp.AcceleratorAvailable {
		fmt.Fprintln(w, "accelerator: unavailable")
	} else {
		fmt.Fprintf(w, "accelerator: %s\n", resp.AcceleratorName)
		fmt.Fprintf(w, "utilization: %d%%\n", resp.UtilizationPct)
		fmt.Fprintf(w, "memory:      %s\n", resp.MemoryUsage)
		fmt.Fprintf(w, "temperature: %d C\n", resp.TemperatureC)
	}
	if resp.ActiveModel != "" {
		backing := "cpu"
		if resp.AcceleratorBacked {
			backing = "accelerator"
		}
		fmt.Fprintf(w, "model:       %s (%s)\n", resp.ActiveModel, backing)
	} else {
		fmt.Fprintln(w, "model:       none loaded")
	}
}

func renderMetrics(w io.Writer, resp types.MetricsResponse) {
	cur := resp.Current
	fmt.Fprintf(w, "current: util=%d%% mem=%d MB temp=%d C tps=%.1f\n",
		cur.UtilizationPct, cur.MemoryUsedBytes/(1024*1024), cur.TemperatureC, cur.TokensPerSec)
	avg := resp.Averages
	fmt.Fprintf(w, "average: util=%.1f%% mem=%.0f MB temp=%.1f C tps=%.1f (over %d samples)\n",
		avg.UtilizationPct, avg.MemoryUsedBytes/(1024*1024), avg.TemperatureC, avg.TokensPerSec, resp.Samples)
}
