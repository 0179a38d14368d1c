package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/npc-engine/internal/roster"
)

func init() {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Inspect office rosters",
	}

	validate := &cobra.Command{
		Use:   "validate [file...]",
		Short: "Check roster files",
		Long:  "Parse each roster file and build its office. With no files the configured roster is checked.",
		Run:   runRosterValidate,
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "List the configured roster",
		Run:   runRosterShow,
	}

	cmd.AddCommand(validate, show)
	RootCmd.AddCommand(cmd)
}

func runRosterValidate(cmd *cobra.Command, args []string) {
	if len(args) == 0 {
		args = []string{loadConfig().RosterPath}
	}

	failed := 0
	for _, path := range args {
		name := path
		if name == "" {
			name = "(built-in office)"
		}
		r, err := roster.Load(path)
		if err == nil {
			_, err = r.Build(0)
		}
		if err != nil {
			failed++
			fmt.Printf("FAIL %s: %v\n", name, err)
			continue
		}
		fmt.Printf("ok   %s: %d locations, %d objects, %d characters\n", name, len(r.Locations), len(r.Objects), len(r.Characters))
	}
	if failed > 0 {
		exitErr("validate", fmt.Errorf("%d of %d rosters invalid", failed, len(args)))
	}
}

func runRosterShow(cmd *cobra.Command, args []string) {
	r, err := roster.Load(loadConfig().RosterPath)
	if err != nil {
		exitErr("load roster", err)
	}

	if formatFlag == "json" {
		printJSON(r)
		return
	}
	fmt.Println("locations:")
	for _, l := range r.Locations {
		fmt.Printf("  %-16s %s\n", l.ID, l.Name)
	}
	fmt.Println("characters:")
	for _, c := range r.Characters {
		fmt.Printf("  %-16s %-10s %s [%s]\n", c.ID, c.Name, c.Location, strings.Join(c.Personality, ", "))
	}
}
