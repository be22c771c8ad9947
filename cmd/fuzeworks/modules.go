package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "Inspect modules",
}

var modulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known modules and their load state",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.close()

		records := rt.manager.List()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSTATE\tEVENTS\tPROVIDES\tDESCRIPTION")
		for _, rec := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				rec.Name(),
				rec.State,
				joinOrDash(rec.Module.Events),
				joinOrDash(rec.Module.Provides),
				rec.Module.Description,
			)
		}
		return w.Flush()
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Print the event register: which modules each event activates",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.close()

		names := rt.bus.Register().Events()
		sort.Strings(names)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "EVENT\tMODULES")
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%s\n", name, joinOrDash(rt.bus.Register().ModulesInterestedIn(name)))
		}
		return w.Flush()
	},
}

func init() {
	modulesCmd.AddCommand(modulesListCmd)
	modulesListCmd.Flags().Bool("json", false, "Print records as JSON")
}

func joinOrDash(s []string) string {
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, ",")
}
