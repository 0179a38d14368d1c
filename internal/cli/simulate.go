package cli

import (
	"fmt"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/jwebster45206/npc-engine/internal/app"
	"github.com/jwebster45206/npc-engine/internal/roster"
)

func init() {
	cmd := &cobra.Command{
		Use:   "simulate [first] [second]",
		Short: "Run a conversation between two characters offline",
		Long:  "Build the office in-process and let two characters talk. Nothing touches Redis.",
		Args:  cobra.ExactArgs(2),
		Run:   runSimulate,
	}

	cmd.Flags().IntP("turns", "n", 10, "Number of lines to generate")
	cmd.Flags().Int64("seed", 0, "Random seed (default: $RANDOM_SEED)")
	cmd.Flags().Int("width", 72, "Wrap width for text output")

	RootCmd.AddCommand(cmd)
}

func runSimulate(cmd *cobra.Command, args []string) {
	turns, _ := cmd.Flags().GetInt("turns")
	width, _ := cmd.Flags().GetInt("width")

	cfg := loadConfig()
	if cmd.Flags().Changed("seed") {
		cfg.RandomSeed, _ = cmd.Flags().GetInt64("seed")
	}

	r, err := roster.Load(cfg.RosterPath)
	if err != nil {
		exitErr("load roster", err)
	}
	engine, err := app.New(cfg, r, nil, newLogger(cfg))
	if err != nil {
		exitErr("build engine", err)
	}
	defer engine.Close()

	lines, err := engine.Converse(cmd.Context(), args[0], args[1], turns)
	if err != nil && len(lines) == 0 {
		exitErr("simulate", err)
	}

	if formatFlag == "json" {
		printJSON(map[string]any{
			"lines": lines,
			"stats": engine.Stats(),
		})
		return
	}

	for _, l := range lines {
		fmt.Printf("%s:\n%s\n", l.Speaker, indent.String(wordwrap.String(l.Text, width-2), 2))
	}
	if err != nil {
		fmt.Printf("(stopped early: %v)\n", err)
	}
}
