package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aretw0/gantry/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check workflow definitions for consistency",
	Long:  `Parses and validates workflow files, reporting malformed YAML, unknown needs references and dependency cycles.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Workflows are valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	var files []string

	if len(args) > 0 {
		files = args
	} else {
		dir, _ := cmd.Flags().GetString("dir")
		for _, pattern := range []string{"*.yml", "*.yaml"} {
			matches, err := filepath.Glob(filepath.Join(dir, pattern))
			if err != nil {
				return err
			}
			files = append(files, matches...)
		}
		sort.Strings(files)
	}

	if len(files) == 0 {
		return fmt.Errorf("no workflow files found")
	}

	for _, path := range files {
		pipeline, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := config.Validate(pipeline); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf("  %s: ok (%d jobs)\n", path, len(pipeline.Jobs))
	}
	return nil
}
