package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chainwatch/fleetbot/pkg/config"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Inspect a fleet's plugin directory",
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the shared libraries a fleet's plugin host would load",
	RunE:  runPluginsList,
}

func init() {
	pluginsListCmd.Flags().StringP("file", "f", "", "fleet manifest YAML file (required)")
	_ = pluginsListCmd.MarkFlagRequired("file")
	pluginsCmd.AddCommand(pluginsListCmd)
}

func runPluginsList(cmd *cobra.Command, args []string) error {
	manifestPath, _ := cmd.Flags().GetString("file")
	manifest, err := config.Load(manifestPath)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	entries, err := os.ReadDir(manifest.Spec.Plugins.Dir)
	if err != nil {
		return fmt.Errorf("read plugin dir %s: %w", manifest.Spec.Plugins.Dir, err)
	}

	found := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".so") {
			continue
		}
		fmt.Println(filepath.Join(manifest.Spec.Plugins.Dir, entry.Name()))
		found++
	}
	if found == 0 {
		fmt.Println("(no plugin libraries found)")
	}
	return nil
}
