package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/spf13/cobra"

	"github.com/huitzo/packkit/internal/domain"
	"github.com/huitzo/packkit/internal/infra/logger"
	"github.com/huitzo/packkit/internal/runtime"
	"github.com/huitzo/packkit/pkg/huitzo"
	"github.com/huitzo/packkit/starters"
)

func invokeCmd() *cobra.Command {
	var rawArgs string
	var extract string
	var format string

	c := &cobra.Command{
		Use:   "invoke <namespace>/<command>",
		Short: "Run a starter command through the local dev runtime",
		Args:  usageArgs("<namespace>/<command>", 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qualified := args[0]
			if !strings.Contains(qualified, "/") {
				return &domain.OpError{
					Op:   "cli.invoke",
					Kind: domain.KindUsage,
					Err:  fmt.Errorf("command must be qualified as <namespace>/<name>, got %q", qualified),
				}
			}
			if !json.Valid([]byte(rawArgs)) {
				return &domain.OpError{
					Op:   "cli.invoke",
					Kind: domain.KindUsage,
					Err:  fmt.Errorf("--args is not valid JSON"),
				}
			}

			cfg, err := runtime.LoadConfig()
			if err != nil {
				return err
			}

			reg := huitzo.NewRegistry()
			if err := starters.Register(reg); err != nil {
				return err
			}

			rt, err := runtime.New(cmd.Context(), cfg, reg, logger.L())
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := rt.Executor.Invoke(cmd.Context(), qualified, json.RawMessage(rawArgs))
			if err != nil {
				return err
			}

			output := res.Output
			if extract != "" {
				output, err = extractPath(output, extract)
				if err != nil {
					return err
				}
			}

			return printInvoke(cmd.OutOrStdout(), qualified, res, output, format)
		},
	}

	c.Flags().StringVar(&rawArgs, "args", "{}", "Command arguments as a JSON object")
	c.Flags().StringVar(&extract, "extract", "", "JSONPath applied to the result (e.g. $.notes[0].title)")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	return c
}

// extractPath applies a JSONPath expression to the handler output. The output
// is round-tripped through JSON so typed results behave like generic maps.
func extractPath(output any, expr string) (any, error) {
	b, err := json.Marshal(output)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}

	val, err := jsonpath.Get(expr, doc)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "cli.extract",
			Kind: domain.KindUsage,
			Path: expr,
			Err:  err,
		}
	}
	return val, nil
}

func printInvoke(w io.Writer, qualified string, res runtime.InvokeResult, output any, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"command":     qualified,
			"attempts":    res.Attempts,
			"duration_ms": res.Duration.Milliseconds(),
			"output":      output,
		})
	case "pretty", "":
		fmt.Fprintf(w, "Command:  %s\n", qualified)
		fmt.Fprintf(w, "Attempts: %d\n", res.Attempts)
		fmt.Fprintf(w, "Duration: %s\n\n", res.Duration)

		b, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(b))
		return nil
	default:
		return &domain.OpError{
			Op:   "cli.invoke",
			Kind: domain.KindUsage,
			Err:  fmt.Errorf("unsupported format %q (expected pretty|json)", format),
		}
	}
}
