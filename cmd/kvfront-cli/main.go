package main

import (
	"errors"
	"os"

	"github.com/boldorider4/kvfront/clientcli"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	cfgFile    string
	profile    string
	endpoint   string
	token      string
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:     "kvfront-cli",
	Version: version,
	Short:   "Client for the kvfront KV front-end",
	Long: `kvfront-cli - Client for a kvfront server

Entries live in two collections, keys and files. Entries written with put are
recorded in the collection index; whether list shows the index or the
backend's native enumeration depends on the server's listing setting.

Settings are resolved in order: profile (~/.kvfront/config.yaml),
environment (KVFRONT_ENDPOINT, KVFRONT_TOKEN, KVFRONT_PROFILE), flags.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.kvfront/config.yaml, env: KVFRONT_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "profile name (env: KVFRONT_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "server URL (default: http://localhost:8787, env: KVFRONT_ENDPOINT)")
	rootCmd.PersistentFlags().StringVarP(&token, "token", "t", "", "bearer token sent with requests (env: KVFRONT_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// getConfigPath returns the config file path from the flag, the environment
// or the default location.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges the selected profile, env vars and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	profileName := profile
	if profileName == "" {
		profileName = clientcli.ProfileFromEnv()
	}
	explicit := cfgFile != "" || profileName != ""

	// 1. Profile from config file
	configPath := getConfigPath()
	if configPath != "" {
		file, err := clientcli.LoadConfigFile(configPath)
		switch {
		case err == nil:
			p, profileErr := file.GetProfile(profileName)
			if profileErr != nil && (profileName != "" || !errors.Is(profileErr, clientcli.ErrNoProfiles)) {
				return nil, profileErr
			}
			configs = append(configs, clientcli.ConfigFromProfile(p))
		case explicit:
			// Only error if the user asked for a config file or profile
			return nil, err
		}
	}

	// 2. Environment variables
	configs = append(configs, clientcli.ConfigFromEnv())

	// 3. Flags
	configs = append(configs, &clientcli.Config{
		Endpoint: endpoint,
		Token:    token,
	})

	return clientcli.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	return clientcli.New(cfg)
}

// fail prints err with the current formatter and returns it.
func fail(err error) error {
	_ = getFormatter().FormatError(os.Stderr, err)
	return err
}
