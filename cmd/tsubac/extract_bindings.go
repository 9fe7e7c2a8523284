package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tsubalang/tsubac/internal/bindgen"
	"github.com/tsubalang/tsubac/internal/resolve"
)

var extractBindingsCmd = &cobra.Command{
	Use:           "extract-bindings <native-source-dir>",
	Short:         "extract a declarations-only facade and bindings manifest from a native crate",
	Args:          cobra.ExactArgs(1),
	RunE:          runExtractBindings,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	extractBindingsCmd.Flags().String("out", "bindings", "directory to write the facade package, manifest, and skipped-report into")
	extractBindingsCmd.Flags().String("crate-name", "", "native crate name recorded in the bindings manifest (required)")
	extractBindingsCmd.Flags().String("crate-version", "", "registry version of the crate (mutually exclusive with --crate-path)")
	extractBindingsCmd.Flags().String("crate-path", "", "local filesystem path to the crate (mutually exclusive with --crate-version)")
	extractBindingsCmd.Flags().Bool("verbose", false, "enable debug-level phase logging")
	_ = extractBindingsCmd.MarkFlagRequired("crate-name")
}

func runExtractBindings(cmd *cobra.Command, args []string) error {
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		log.SetLevel(log.DebugLevel)
	}
	nativeDir := args[0]
	out, _ := cmd.Flags().GetString("out")
	crateName, _ := cmd.Flags().GetString("crate-name")
	crateVersion, _ := cmd.Flags().GetString("crate-version")
	cratePath, _ := cmd.Flags().GetString("crate-path")

	if (crateVersion == "") == (cratePath == "") {
		return fmt.Errorf("tsubac: exactly one of --crate-version or --crate-path is required")
	}

	manifest := bindgen.New(bindgen.CrateInfo{Name: crateName, Version: crateVersion, Path: cratePath})

	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("tsubac: %w", err)
	}

	modules, skipped, err := bindgen.ExtractCrate(nativeDir)
	if err != nil {
		return fmt.Errorf("tsubac: %w", err)
	}

	modulePaths := make([]string, 0, len(modules))
	for modulePath := range modules {
		modulePaths = append(modulePaths, modulePath)
	}
	sort.Strings(modulePaths)

	for _, modulePath := range modulePaths {
		mb := modules[modulePath]
		*manifest.Module(modulePath) = *mb
		log.WithFields(log.Fields{"phase": "bindgen", "module": modulePath}).Debugf(
			"extracted %d function(s), %d type(s)", len(mb.Functions), len(mb.Types))

		facadePath := filepath.Join(out, modulePath+resolve.SourceExt)
		if err := os.MkdirAll(filepath.Dir(facadePath), 0o755); err != nil {
			return fmt.Errorf("tsubac: %w", err)
		}
		if err := os.WriteFile(facadePath, []byte(bindgen.Facade(modulePath, mb)), 0o644); err != nil {
			return fmt.Errorf("tsubac: %w", err)
		}
	}

	if err := manifest.Save(filepath.Join(out, resolve.ManifestFileName)); err != nil {
		return fmt.Errorf("tsubac: %w", err)
	}
	report := bindgen.NewReport(crateName, skipped)
	if err := report.Save(filepath.Join(out, "skipped-report.json")); err != nil {
		return fmt.Errorf("tsubac: %w", err)
	}

	fmt.Printf("%s extracted %d module(s), %d skipped entries, into %s\n", green("✓"), len(manifest.Modules), len(skipped), out)
	return nil
}
