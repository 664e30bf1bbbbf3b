package cmd

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jfmyers9/collagefm/internal/config"
	"github.com/spf13/cobra"
)

var setupAPIKey string

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure the Last.fm API key",
	Long: `Save a Last.fm API key to ~/.config/collagefm/config.yaml.

Chart lookups are read-only, so only an API key is needed. No login or
session is required.

You can get an API key from: https://www.last.fm/api/account/create`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().StringVar(&setupAPIKey, "api-key", "", "API key to save (prompts when omitted)")
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out := cmd.OutOrStdout()
	apiKey := strings.TrimSpace(setupAPIKey)
	if apiKey == "" {
		apiKey, err = promptAPIKey(cmd.InOrStdin(), out, cfg.LastFM.APIKey)
		if err != nil {
			return err
		}
	}
	if apiKey == "" {
		return fmt.Errorf("API key is required")
	}

	cfg.LastFM.APIKey = apiKey
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(out, "Saved API key to %s\n", filepath.Join(config.GetConfigDir(), "config.yaml"))
	return nil
}

// promptAPIKey asks for a key on in. An empty answer keeps existing.
func promptAPIKey(in io.Reader, out io.Writer, existing string) (string, error) {
	reader := bufio.NewReader(in)

	fmt.Fprintln(out, "Last.fm API Key")
	fmt.Fprintln(out, "===============")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "You can get an API key from: https://www.last.fm/api/account/create")
	fmt.Fprintln(out)

	if existing != "" {
		fmt.Fprintf(out, "Current API Key: %s\n", existing)
		fmt.Fprint(out, "Enter a new key or press Enter to keep it: ")
	} else {
		fmt.Fprint(out, "Enter your Last.fm API Key: ")
	}

	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return existing, nil
	}
	return line, nil
}
