package main

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/gsutil/config"
	"github.com/sagarc03/gsutil/gcs"
	"github.com/sagarc03/gsutil/oauth"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Manage profiles",
	Long: `Manage profiles in the profile file.

Profiles save credentials, project and endpoint settings under a name.
Select one with --profile or GSUTIL_PROFILE; otherwise the default profile
applies.

Profiles are stored in ~/.config/gsutil/config.yaml`,
	// Profiles are managed without applying them.
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		setupLogging(cmd.ErrOrStderr(), config.LogConfig{Level: "warn", Format: "text"})
		return nil
	},
}

var configureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	Long: `List all profiles in the profile file.

The default profile is marked with an asterisk (*).`,
	Args: cobra.NoArgs,
	RunE: runConfigureList,
}

var configureAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or update a profile",
	Long: `Add a profile interactively.

You will be prompted for:
  - Credentials file (empty for application default credentials)
  - Project
  - Endpoint URL
  - Whether to set as default

The credentials file is checked before saving. With --yes no prompts are
shown and values come from --credentials, --project, --endpoint and --default.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigureAdd,
}

var configureRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigureRemove,
}

var configureSetDefaultCmd = &cobra.Command{
	Use:   "set-default <name>",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigureSetDefault,
}

var configureShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show profile details",
	Long: `Show details for a profile.

If no name is provided, shows the default profile.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigureShow,
}

const (
	noProfilesMessage = "No profiles configured.\nRun 'gsutil configure add <name>' to create one.\n"
	cancelledLabel    = "Cancelled."
)

var (
	assumeYes     bool
	addEndpoint   string
	addSetDefault bool
)

func init() {
	configureCmd.AddCommand(configureListCmd)
	configureCmd.AddCommand(configureAddCmd)
	configureCmd.AddCommand(configureRemoveCmd)
	configureCmd.AddCommand(configureSetDefaultCmd)
	configureCmd.AddCommand(configureShowCmd)

	configureAddCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not prompt")
	configureAddCmd.Flags().StringVar(&addEndpoint, "endpoint", gcs.DefaultEndpoint, "API endpoint")
	configureAddCmd.Flags().BoolVar(&addSetDefault, "default", false, "make this the default profile")
	configureRemoveCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation")
}

// getConfigPath returns the profile file path from --config, GSUTIL_CONFIG
// or the default location.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if env := os.Getenv(config.EnvPrefix + "_CONFIG"); env != "" {
		return env
	}
	return config.DefaultConfigPath()
}

func runConfigureList(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.LoadOrEmpty(getConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if len(cfg.Profiles) == 0 && !jsonOutput {
		_, _ = fmt.Fprint(out, noProfilesMessage)
		return nil
	}

	return getFormatter().FormatProfileList(out, cfg.Profiles)
}

func runConfigureAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	out := cmd.OutOrStdout()
	configPath := getConfigPath()

	cfg, err := config.LoadOrEmpty(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	existing, _ := cfg.GetProfile(name)
	if existing != nil && !assumeYes {
		if !confirm(fmt.Sprintf("Profile '%s' already exists. Update it", name)) {
			_, _ = fmt.Fprintln(out, cancelledLabel)
			return nil
		}
	}

	profile := config.Profile{
		Name:        name,
		Credentials: credentials,
		Project:     project,
		Endpoint:    addEndpoint,
		Default:     addSetDefault || len(cfg.Profiles) == 0,
	}
	if existing != nil {
		profile = mergeProfile(*existing, profile, cmd)
	}

	if !assumeYes {
		ok, err := promptProfile(&profile, len(cfg.Profiles) == 0)
		if err != nil || !ok {
			if err == nil {
				_, _ = fmt.Fprintln(out, cancelledLabel)
			}
			return err
		}
	}
	profile.Endpoint = strings.TrimSuffix(profile.Endpoint, "/")
	if profile.Endpoint == gcs.DefaultEndpoint {
		profile.Endpoint = ""
	}

	if profile.Credentials != "" {
		_, _ = fmt.Fprint(out, "Checking credentials... ")
		if _, err := oauth.LoadCredentials(config.ExpandHome(profile.Credentials)); err != nil {
			_, _ = fmt.Fprintln(out, "FAILED")
			_, _ = fmt.Fprintf(out, "Warning: %v\n", err)
			if assumeYes || !confirm("Save profile anyway") {
				_, _ = fmt.Fprintln(out, cancelledLabel)
				return nil
			}
		} else {
			_, _ = fmt.Fprintln(out, "OK")
		}
	}

	if existing != nil {
		err = cfg.UpdateProfile(profile)
	} else {
		err = cfg.AddProfile(profile)
	}
	if err != nil {
		return fmt.Errorf("add profile: %w", err)
	}
	if profile.Default {
		if err := cfg.SetDefault(name); err != nil {
			return err
		}
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	if existing != nil {
		_, _ = fmt.Fprintf(out, "Profile '%s' updated.\n", name)
	} else {
		_, _ = fmt.Fprintf(out, "Profile '%s' added.\n", name)
	}
	if profile.Default {
		_, _ = fmt.Fprintln(out, "Set as default profile.")
	}
	return nil
}

// mergeProfile keeps the stored values of an existing profile for anything
// not given on the command line.
func mergeProfile(existing, given config.Profile, cmd *cobra.Command) config.Profile {
	if cmd.Flags().Changed("credentials") {
		existing.Credentials = given.Credentials
	}
	if cmd.Flags().Changed("project") {
		existing.Project = given.Project
	}
	if cmd.Flags().Changed("endpoint") || existing.Endpoint == "" {
		existing.Endpoint = given.Endpoint
	}
	if cmd.Flags().Changed("default") {
		existing.Default = given.Default
	}
	return existing
}

// promptProfile asks for each setting, using p's values as defaults. It
// returns false when the user aborts.
func promptProfile(p *config.Profile, first bool) (bool, error) {
	credentialsPrompt := promptui.Prompt{
		Label:   "Credentials file (empty for application default)",
		Default: p.Credentials,
		Validate: func(input string) error {
			if input == "" {
				return nil
			}
			if _, err := os.Stat(config.ExpandHome(input)); err != nil {
				return fmt.Errorf("cannot read %s", input)
			}
			return nil
		},
	}
	credentialsPath, err := credentialsPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	projectPrompt := promptui.Prompt{
		Label:   "Project",
		Default: p.Project,
	}
	projectID, err := projectPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	endpointPrompt := promptui.Prompt{
		Label:   "Endpoint URL",
		Default: p.Endpoint,
		Validate: func(input string) error {
			if input == "" {
				return errors.New("endpoint URL is required")
			}
			parsedURL, parseErr := url.Parse(input)
			if parseErr != nil {
				return fmt.Errorf("invalid URL: %w", parseErr)
			}
			if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
				return errors.New("URL must start with http:// or https://")
			}
			return nil
		},
	}
	endpointURL, err := endpointPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	p.Credentials = credentialsPath
	p.Project = projectID
	p.Endpoint = endpointURL
	if !first && !p.Default {
		p.Default = confirm("Set as default profile")
	}
	return true, nil
}

func runConfigureRemove(cmd *cobra.Command, args []string) error {
	name := args[0]
	out := cmd.OutOrStdout()
	configPath := getConfigPath()

	cfg, err := config.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if _, err := cfg.GetProfile(name); err != nil {
		return err
	}

	if !assumeYes && !confirm(fmt.Sprintf("Remove profile '%s'", name)) {
		_, _ = fmt.Fprintln(out, cancelledLabel)
		return nil
	}

	if err := cfg.RemoveProfile(name); err != nil {
		return fmt.Errorf("remove profile: %w", err)
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	_, _ = fmt.Fprintf(out, "Profile '%s' removed.\n", name)
	return nil
}

func runConfigureSetDefault(cmd *cobra.Command, args []string) error {
	name := args[0]
	configPath := getConfigPath()

	cfg, err := config.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.SetDefault(name); err != nil {
		return err
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Default profile set to '%s'.\n", name)
	return nil
}

func runConfigureShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigFile(getConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	p, err := cfg.GetProfile(name)
	if err != nil {
		return err
	}

	return getFormatter().FormatProfileShow(cmd.OutOrStdout(), *p)
}

// confirm asks a yes/no question. Anything but yes, including an
// interrupt, counts as no.
func confirm(label string) bool {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	return err == nil
}

// handlePromptError maps promptui errors to a cancelled result.
func handlePromptError(err error) (bool, error) {
	if errors.Is(err, promptui.ErrInterrupt) {
		_, _ = fmt.Fprintln(os.Stdout, "\n"+cancelledLabel)
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) || errors.Is(err, io.EOF) {
		return false, nil
	}
	return false, err
}
