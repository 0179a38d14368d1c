package cli

import (
	"strings"
	"testing"
)

func TestRootCmd_Subcommands(t *testing.T) {
	want := []string{
		"enqueue say",
		"enqueue decide",
		"enqueue complete",
		"simulate",
		"stats",
		"dead-letters",
		"roster validate",
		"roster show",
		"watch",
	}
	for _, path := range want {
		t.Run(path, func(t *testing.T) {
			cmd, _, err := RootCmd.Find(strings.Fields(path))
			if err != nil {
				t.Fatalf("expected command %q: %v", path, err)
			}
			if cmd == RootCmd {
				t.Errorf("%q resolved to the root command", path)
			}
		})
	}
}

func TestEnqueueSay_RequiresSpeaker(t *testing.T) {
	cmd, _, err := RootCmd.Find([]string{"enqueue", "say"})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	flag := cmd.Flags().Lookup("from")
	if flag == nil {
		t.Fatal("expected a --from flag")
	}
	if _, ok := flag.Annotations["cobra_annotation_bash_completion_one_required_flag"]; !ok {
		t.Error("expected --from to be required")
	}
}
