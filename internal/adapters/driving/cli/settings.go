package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/geotech-hub/geoaudit/internal/core/services"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change settings stored in the config file.

Environment variables (GEOAUDIT_* and the legacy names) take precedence
over the file, so "settings show" prints the effective values.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set KEY [VALUE]",
	Short: "Store a setting in the config file",
	Long: `Stores KEY = VALUE in the config file. Keys are dotted, for example:

  audit.hourly_limit     audits per client per window
  audit.max_upload_mb    upload size limit
  storage.backend        memory or sqlite
  llm.base_url           OpenAI-compatible endpoint
  llm.api_key            endpoint credential (prompted when VALUE is omitted)
  directus.url           catalogue and history store

Values are stored as text and parsed when settings are loaded. Durations
accept Go syntax ("90s", "24h") or whole seconds.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsUnsetCmd = &cobra.Command{
	Use:   "unset KEY",
	Short: "Remove a setting from the config file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsUnset,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsUnsetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	store, err := openConfigStore()
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settings, err := services.NewSettingsService(store).Get()
	if err != nil {
		cmd.Printf("Warning: %v\n", err)
		defaults := services.NewSettingsService(nil).GetDefaults()
		settings = &defaults
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("Config file: %s\n", store.Path())
	if keys := store.Keys(); len(keys) > 0 {
		cmd.Printf("Stored keys: %s\n", strings.Join(keys, ", "))
	}
	cmd.Println()

	cmd.Println("[Audit]")
	cmd.Printf("  Max upload: %d MB\n", settings.MaxUploadMB)
	cmd.Printf("  Quota: %d per %s\n", settings.HourlyLimit, settings.QuotaWindow)
	cmd.Printf("  Cache TTL: %s\n", settings.CacheTTL)
	cmd.Printf("  Request timeout: %s\n", settings.RequestTimeout)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.HTTPAddr)
	cmd.Printf("  Storage: %s\n", settings.Storage.Description())
	if settings.DataDir != "" {
		cmd.Printf("  Data dir: %s\n", settings.DataDir)
	}
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	cmd.Printf("  Model: %s (gate: %s)\n", settings.LLM.Model, settings.LLM.CheapModel)
	if settings.LLM.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	cmd.Printf("  Status: %s\n", configuredLabel(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Directus]")
	if settings.Catalogue.IsConfigured() {
		cmd.Printf("  URL: %s\n", settings.Catalogue.URL)
		if settings.Catalogue.Token != "" {
			cmd.Printf("  Token: %s\n", maskAPIKey(settings.Catalogue.Token))
		}
	}
	cmd.Printf("  Status: %s\n", configuredLabel(settings.Catalogue.IsConfigured()))
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	key := strings.TrimSpace(args[0])
	if !strings.Contains(key, ".") {
		return fmt.Errorf("key %q must be dotted, e.g. llm.model", key)
	}

	var raw string
	if len(args) == 2 {
		raw = args[1]
	} else {
		cmd.Printf("%s: ", key)
		raw = readPassword()
		cmd.Println()
	}
	if raw == "" {
		return errors.New("value is empty")
	}

	store, err := openConfigStore()
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	if err := store.Set(key, raw); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}

	if _, err := services.NewSettingsService(store).Get(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	}
	cmd.Printf("Saved %s to %s\n", key, store.Path())
	return nil
}

func runSettingsUnset(cmd *cobra.Command, args []string) error {
	store, err := openConfigStore()
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	key := strings.TrimSpace(args[0])
	if err := store.Unset(key); err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	cmd.Printf("Removed %s from %s\n", key, store.Path())
	return nil
}

func configuredLabel(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
