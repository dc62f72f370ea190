package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/gsutil/config"
	"github.com/sagarc03/gsutil/output"
)

var (
	version = "dev"

	cfgFile     string
	profileName string
	credentials string
	project     string
	jsonOutput  bool
	quiet       bool
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:     "gsutil",
	Version: version,
	Short:   "Command line client for Google Cloud Storage",
	Long: `gsutil - Command line client for Google Cloud Storage

Objects are addressed as gs://bucket/object. Wildcards (*, **, ?, [..], {..})
are accepted wherever a command works on more than one object.

Credentials are resolved in this order:
  1. --credentials, GSUTIL_CREDENTIALS or GOOGLE_APPLICATION_CREDENTIALS
  2. the selected profile's credentials
  3. gcloud application default credentials
  4. the GCE metadata server`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "profile file (default: ~/.config/gsutil/config.yaml, env: GSUTIL_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "profile to use (env: GSUTIL_PROFILE)")
	rootCmd.PersistentFlags().StringVar(&credentials, "credentials", "", "credentials JSON file (env: GSUTIL_CREDENTIALS)")
	rootCmd.PersistentFlags().StringVar(&project, "project", "", "project used to list buckets (env: GSUTIL_PROJECT)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests at debug level")

	// Read only through config.Load.
	rootCmd.PersistentFlags().Int("parallel", 8, "maximum concurrent requests for multi-object commands")
	rootCmd.PersistentFlags().Float64("rate-limit", 0, "maximum requests per second (0 for no limit)")
	rootCmd.PersistentFlags().String("token-cache", "", `token cache database, or "none" (default: user cache dir)`)
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text or json)")

	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(cpCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(setmetaCmd)
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(signurlCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if !errors.As(err, &exitErr) {
			_ = getFormatter().FormatError(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// loadConfig resolves configuration for the invoked command and stores it in
// the command context.
func loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.Options{
		File:    cfgFile,
		Profile: profileName,
		Flags:   cmd.Flags(),
	})
	if err != nil {
		return err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	setupLogging(cmd.ErrOrStderr(), cfg.Log)
	cmd.SetContext(config.WithContext(cmd.Context(), cfg))
	return nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() output.Formatter {
	return output.NewFormatter(jsonOutput, quiet)
}

// exitError is returned when the command already reported its failures
// and only a non-zero exit is wanted.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return ""
}
