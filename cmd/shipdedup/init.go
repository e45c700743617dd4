package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/shipdedup.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = ".shipdedup"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new shipdedup configuration file",
		Long: `Initialize creates a new .shipdedup configuration file in the current directory.

The generated file includes:
- Default settings shared by all datasets
- Commented examples for dataset-specific profiles
- Documentation for the standardization rule overrides

Examples:
  # Create .shipdedup in current directory
  shipdedup init

  # Create config file at a specific path
  shipdedup init -o myconfig.yaml

  # Force overwrite existing file
  shipdedup init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := configTemplate.ReadFile("templates/shipdedup.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write configuration file
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Printf("Created configuration file: %s\n", outputPath)
	fmt.Println("\nEdit this file to configure dataset-specific settings such as:")
	fmt.Println("  - CSV column names per dataset")
	fmt.Println("  - Match thresholds per dataset")
	fmt.Println("  - Region and contact noise stripped during standardization")

	return nil
}
