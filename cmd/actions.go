package cmd

import (
	"github.com/mj1618/desktop-agent/internal/output"
	"github.com/mj1618/desktop-agent/internal/registry"
	"github.com/spf13/cobra"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the actions a plan may use",
	RunE:  runActions,
}

func init() {
	rootCmd.AddCommand(actionsCmd)
}

// actionEntry is the output for one action kind.
type actionEntry struct {
	Name        string `yaml:"name"        json:"name"`
	Description string `yaml:"description" json:"description"`
}

func runActions(cmd *cobra.Command, args []string) error {
	entries := make([]actionEntry, 0, len(registry.Kinds))
	for _, k := range registry.Kinds {
		entries = append(entries, actionEntry{Name: string(k), Description: k.Description()})
	}
	return output.Print(entries)
}
