package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainwatch/fleetbot/pkg/config"
	fleetstore "github.com/chainwatch/fleetbot/pkg/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect a fleet's versioned store",
}

var storeInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List raw keys under a prefix in the persistent store",
	RunE:  runStoreInspect,
}

func init() {
	storeInspectCmd.Flags().StringP("file", "f", "", "fleet manifest YAML file (required)")
	storeInspectCmd.Flags().String("prefix", "", "only list keys starting with this prefix")
	_ = storeInspectCmd.MarkFlagRequired("file")
	storeCmd.AddCommand(storeInspectCmd)
}

func runStoreInspect(cmd *cobra.Command, args []string) error {
	manifestPath, _ := cmd.Flags().GetString("file")
	prefix, _ := cmd.Flags().GetString("prefix")

	manifest, err := config.Load(manifestPath)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	kv, err := fleetstore.Open(manifest.Spec.Store.PersistentPath, "task_store_")
	if err != nil {
		return fmt.Errorf("open persistent store: %w", err)
	}
	defer kv.Close()

	count := 0
	err = kv.ScanPrefix([]byte(prefix), func(key, value []byte) error {
		fmt.Printf("%s\t%d bytes\n", key, len(value))
		count++
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if count == 0 {
		fmt.Println("(no keys found)")
	}
	return nil
}
