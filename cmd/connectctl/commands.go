package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"connect-workers/internal/common/config"
	"connect-workers/internal/models"
	"connect-workers/internal/scoring"
	"connect-workers/internal/wizards"
	"connect-workers/pkg/registry"

	"github.com/spf13/cobra"
)

var errIncomplete = stderrors.New("form is incomplete")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "connectctl",
		Short:         "Inspect Connect wizards and score provider applications",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newWizardsCmd(), newValidateCmd(), newScoreCmd(), newWorkersCmd())
	return root
}

func newWizardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wizards",
		Short: "List the built-in wizards and their steps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := wizards.Default()
			out := cmd.OutOrStdout()
			for _, kind := range c.Kinds() {
				w, err := c.Lookup(kind)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s (%s)\n", w.Kind(), w.Title())
				for i, step := range w.Steps() {
					fmt.Fprintf(out, "  %d. %s\n", i+1, step)
				}
			}
			return nil
		},
	}
}

func newValidateCmd() *cobra.Command {
	var step int
	cmd := &cobra.Command{
		Use:   "validate <wizard> <file|->",
		Short: "Validate a form document against a wizard",
		Long: `Validate evaluates the wizard's rules against a JSON form document.
With --step only that step (zero based) is checked; otherwise every step is.
The command exits non-zero when the form is incomplete.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := wizards.Default().Lookup(args[0])
			if err != nil {
				return err
			}
			doc, err := readInput(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}
			report, err := w.Validate(doc, step)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.Valid {
				return errIncomplete
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&step, "step", -1, "validate a single step (zero based)")
	return cmd
}

func newScoreCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "score <file|->",
		Short: "Score a provider application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := engineFrom(configPath)
			if err != nil {
				return err
			}
			doc, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			var app models.ProviderApplication
			if err := json.Unmarshal(doc, &app); err != nil {
				return fmt.Errorf("decode application: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), engine.Score(&app))
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "config file with a scoring section")
	return cmd
}

func engineFrom(path string) (*scoring.Engine, error) {
	if path == "" {
		return scoring.NewEngine(scoring.DefaultConfig())
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := scoring.FromSettings(cfg.Scoring)
	if err != nil {
		return nil, err
	}
	return scoring.NewEngine(sc)
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if strings.TrimSpace(name) == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newWorkersCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "List the job workers and the task types they serve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := registry.Default()
			if path != "" {
				var err error
				if reg, err = registry.LoadRegistry(path); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			for _, a := range reg.Activities {
				fmt.Fprintf(out, "%-28s %-14s timeout=%s retries=%d\n", a.TaskType, a.Category, a.Timeout, a.Retries)
				if len(a.ErrorCodes) > 0 {
					fmt.Fprintf(out, "  errors: %s\n", strings.Join(a.ErrorCodes, ", "))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "registry", "", "activity registry JSON file")
	return cmd
}
