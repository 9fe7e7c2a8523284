package main

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tsubalang/tsubac/internal/orchestrator"
)

var buildCmd = &cobra.Command{
	Use:           "build <entry-file>",
	Short:         "lower an entry file's whole reachable module graph into target source",
	Args:          cobra.ExactArgs(1),
	RunE:          runBuild,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	buildCmd.Flags().String("runtime", orchestrator.RuntimeNone, `runtime kind kernels are lowered against ("none" or a runtime name)`)
	buildCmd.Flags().String("out", "", "directory to write main.rs and main.rs.map into (prints main.rs to stdout when omitted)")
	buildCmd.Flags().Bool("verbose", false, "enable debug-level phase logging")
}

func runBuild(cmd *cobra.Command, args []string) error {
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		log.SetLevel(log.DebugLevel)
	}
	runtimeKind, _ := cmd.Flags().GetString("runtime")
	out, _ := cmd.Flags().GetString("out")

	result, err := orchestrator.Run(orchestrator.Config{EntryFile: args[0], RuntimeKind: runtimeKind})
	if err != nil {
		return err
	}

	if out == "" {
		fmt.Println(result.MainText)
	} else {
		if err := os.MkdirAll(out, 0o755); err != nil {
			return fmt.Errorf("tsubac: %w", err)
		}
		if err := os.WriteFile(filepath.Join(out, "main.rs"), []byte(result.MainText), 0o644); err != nil {
			return fmt.Errorf("tsubac: %w", err)
		}
		if err := result.SourceMap.Save(filepath.Join(out, "main.rs.map")); err != nil {
			return fmt.Errorf("tsubac: %w", err)
		}
		fmt.Printf("%s wrote %s\n", green("✓"), filepath.Join(out, "main.rs"))
	}

	for _, k := range result.Kernels {
		fmt.Printf("  %s kernel %s\n", yellow("→"), k.Name)
	}
	for _, c := range result.ExternalCrates {
		fmt.Printf("  %s crate %s\n", yellow("→"), c.Name)
	}
	return nil
}
