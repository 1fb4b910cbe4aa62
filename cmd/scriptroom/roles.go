package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/scriptroom/internal/config"
	"github.com/ShayCichocki/scriptroom/internal/roles"
	"github.com/ShayCichocki/scriptroom/internal/tui"
)

var rolesVerbose bool

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the production team and what each member may do",
	Long: `List the worker roles with their capabilities.

Profiles come from the built-in defaults, overridden by the file named
in roles.file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		set, err := roles.Load(cfg.Roles.File)
		if err != nil {
			return err
		}

		for _, p := range set.All() {
			caps := make([]string, len(p.Capabilities))
			for i, c := range p.Capabilities {
				caps[i] = string(c)
			}
			fmt.Printf("%s %s\n  %s\n", tui.Handle(p.ID), p.Name, strings.Join(caps, ", "))
			if rolesVerbose {
				fmt.Printf("\n%s\n\n", indent(strings.TrimSpace(p.Instructions), "    "))
			}
		}
		return nil
	},
}

func init() {
	rolesCmd.Flags().BoolVarP(&rolesVerbose, "verbose", "v", false, "Also print each role's instructions")
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}
