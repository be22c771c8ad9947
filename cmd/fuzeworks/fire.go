package main

import (
	"encoding/json"
	"fmt"

	"github.com/fuzeworks/fuzeworks/pkg/api"
	"github.com/spf13/cobra"
)

var fireCmd = &cobra.Command{
	Use:   "fire EVENT [ARG...]",
	Short: "Fire one event and print the outcome",
	Long: `Fire one event through a freshly started bus and print the result as JSON.

Modules listening to the event are loaded first. Arguments are passed to the
event's Init as strings; with --json each argument is decoded as JSON instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		fireArgs, err := parseArgs(args[1:], asJSON)
		if err != nil {
			return err
		}

		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.close()

		ev, err := rt.bus.Fire(args[0], fireArgs...)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(api.FireResponse{
			Event:     args[0],
			Type:      fmt.Sprintf("%T", ev),
			Cancelled: ev.IsCancelled(),
		})
	},
}

func init() {
	fireCmd.Flags().Bool("json", false, "Decode each argument as JSON")
}

func parseArgs(raw []string, asJSON bool) ([]any, error) {
	out := make([]any, 0, len(raw))
	for i, r := range raw {
		if !asJSON {
			out = append(out, r)
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(r), &v); err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out = append(out, v)
	}
	return out, nil
}
