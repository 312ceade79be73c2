package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/LeiShi1313/readrepeat/pkg/config"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default settings file",
		Long: `Write every setting with its default value as YAML.

Any value can also be set through the environment as READREPEAT_<SECTION>_<KEY>,
for example READREPEAT_DATABASE_DRIVER=postgres.`,
		RunE: runConfigInit,
	}
	initCmd.Flags().StringP("output", "o", config.DefaultConfigFile, "file to write, - for stdout")
	initCmd.Flags().Bool("force", false, "overwrite an existing file")

	configCmd.AddCommand(initCmd)
	return configCmd
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	data, err := config.DefaultsYAML()
	if err != nil {
		return fmt.Errorf("failed to render defaults: %w", err)
	}

	if output == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	if _, err := os.Stat(output); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", output)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default settings to %s\n", output)
	return nil
}
