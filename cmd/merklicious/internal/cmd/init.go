package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Creates a config file for merklicious.",
		Long: `Creates a file merklicious.toml in the given directory with the default
configuration, for example:

store_path = "merklicious.db"
log_level = "NOOP"
entropy_size = 32
context_timeout_seconds = 30
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := writeDefaultConfig(dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), file)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "directory for the generated config file")
	return cmd
}

func writeDefaultConfig(dir string) (string, error) {
	file := filepath.Join(dir, ConfigFileName)

	var confBuf bytes.Buffer
	enc := toml.NewEncoder(&confBuf)
	if err := enc.Encode(DefaultConfig()); err != nil {
		return "", fmt.Errorf("Couldn't encode config: %w", err)
	}

	// never overwrite an existing config
	f, err := os.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("Couldn't write config: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(confBuf.Bytes()); err != nil {
		return "", fmt.Errorf("Couldn't write config: %w", err)
	}
	return file, nil
}
