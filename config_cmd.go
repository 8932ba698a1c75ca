package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anthozoa/anthozoa/internal/config"
)

var printDefaults bool

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the anthozoa config file",
	Long:    paragraph(fmt.Sprintf("\n%s the anthozoa config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created with the default field and offline settings, and it is checked once the editor exits.", keyword("Edit"))),
	Example: paragraph("anthozoa config\nanthozoa config --config path/to/config.yml\nanthozoa config --defaults > anthozoa.yml"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if printDefaults {
			_, err := fmt.Fprint(cmd.OutOrStdout(), config.DefaultYAML)
			return err
		}
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Anthozoa", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		if err := checkConfigFile(configFile); err != nil {
			fmt.Fprintln(os.Stderr, faint("Warning: "+err.Error()))
		}
		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

// checkConfigFile loads path on its own and validates it.
func checkConfigFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("unable to parse %s: %w", path, err)
	}
	config.SetDefaults(v)
	_, err := config.LoadFromViper(v)
	return err
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if configFile == "" {
			return errors.New("no config file location; use --config")
		}
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(config.DefaultYAML); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}

func init() {
	configCmd.Flags().BoolVar(&printDefaults, "defaults", false, "print the default configuration and exit")
}
