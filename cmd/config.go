package cmd

import (
	"fmt"
	"os"

	"sqctl/pkg/config"
	"sqctl/pkg/errors"

	"github.com/spf13/cobra"
)

var (
	configProfileName string
	configBaseURL     string
	configToken       string
	configTimeout     string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage sqctl configuration and profiles",
	Long:  `Manage sqctl configuration, including API profiles for switching between accounts or API endpoints.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the configuration file contents and the active profile. Tokens are never printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Read()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "Current Configuration:")
		fmt.Fprintln(out, "======================")
		fmt.Fprintf(out, "Active Profile: %s\n", orNone(cfg.ActiveProfile))
		fmt.Fprintln(out)
		fmt.Fprintf(out, "API URL: %s\n", orDefault(cfg.API.BaseURL, config.DefaultBaseURL))
		fmt.Fprintf(out, "Timeout: %s\n", cfg.API.RequestTimeout())
		fmt.Fprintf(out, "Token: %s\n", tokenState(cfg.API.AccessToken))
		fmt.Fprintln(out)
		if cfg.History.Disabled {
			fmt.Fprintln(out, "History: disabled")
		} else {
			fmt.Fprintf(out, "History: %s\n", historyPath(cfg))
		}

		if len(cfg.Profiles) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Available Profiles:")
			for _, p := range cfg.Profiles {
				active := ""
				if cfg.IsProfileActive(p.Name) {
					active = " (active)"
				}
				fmt.Fprintf(out, "  - %s%s\n", p.Name, active)
				fmt.Fprintf(out, "      API URL: %s, Token: %s\n", orDefault(p.API.BaseURL, "(inherited)"), tokenState(p.API.AccessToken))
			}
		}

		return nil
	},
}

var configProfilesCmd = &cobra.Command{
	Use:     "profiles",
	Aliases: []string{"profile"},
	Short:   "Manage configuration profiles",
	Long:    `List, add, remove, and switch between API configuration profiles.`,
}

var configProfilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Read()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		profiles := cfg.ListProfiles()
		if len(profiles) == 0 {
			fmt.Fprintln(out, "No profiles configured.")
			fmt.Fprintln(out, "Use 'sqctl config profiles add --name <name>' to create one.")
			return nil
		}

		fmt.Fprintln(out, "Profiles:")
		for _, name := range profiles {
			profile, _ := cfg.GetProfile(name)
			active := ""
			if cfg.IsProfileActive(name) {
				active = " *active*"
			}
			fmt.Fprintf(out, "  %s%s\n", name, active)
			fmt.Fprintf(out, "    API URL: %s\n", orDefault(profile.API.BaseURL, "(inherited)"))
			fmt.Fprintf(out, "    Token: %s\n", tokenState(profile.API.AccessToken))
		}

		return nil
	},
}

var configProfilesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new profile",
	Long:  `Add a new API configuration profile.`,
	Example: `  # Add a profile for a self-hosted API
  sqctl config profiles add --name staging --base-url https://api.staging.example.com

  # Add a profile with token (not recommended - use SUBQL_ACCESS_TOKEN instead)
  sqctl config profiles add --name work --token $SUBQL_ACCESS_TOKEN`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configProfileName == "" {
			return errors.ConfigError("profile name is required (--name)")
		}

		cfg, err := config.Read()
		if err != nil {
			cfg = &config.Config{}
		}

		profile := config.Profile{
			Name: configProfileName,
			API: config.APIConfig{
				BaseURL:     configBaseURL,
				AccessToken: configToken,
				Timeout:     configTimeout,
			},
		}

		if err := cfg.AddProfile(profile); err != nil {
			return errors.ConfigError(err.Error())
		}

		if err := config.Save(cfg); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' added successfully.\n", configProfileName)
		fmt.Fprintf(cmd.OutOrStdout(), "Use 'sqctl config profiles use --name %s' to activate it.\n", configProfileName)

		return nil
	},
}

var configProfilesRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configProfileName == "" {
			return errors.ConfigError("profile name is required (--name)")
		}

		cfg, err := config.Read()
		if err != nil {
			return err
		}

		if err := cfg.RemoveProfile(configProfileName); err != nil {
			return errors.ConfigError(err.Error())
		}

		if err := config.Save(cfg); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' removed successfully.\n", configProfileName)
		return nil
	},
}

var configProfilesUseCmd = &cobra.Command{
	Use:   "use",
	Short: "Switch to a profile",
	Long:  `Set the active profile for subsequent commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configProfileName == "" {
			return errors.ConfigError("profile name is required (--name)")
		}

		cfg, err := config.Read()
		if err != nil {
			return err
		}

		if err := cfg.SetProfile(configProfileName); err != nil {
			return errors.ConfigError(err.Error())
		}

		if err := config.Save(cfg); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Switched to profile '%s'.\n", configProfileName)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return errors.NewWithError(errors.ExitCodeConfig, "failed to get config path", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func orNone(s string) string {
	return orDefault(s, "(none)")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func tokenState(token string) string {
	if token != "" {
		return "(set)"
	}
	if os.Getenv("SUBQL_ACCESS_TOKEN") != "" {
		return "(from SUBQL_ACCESS_TOKEN)"
	}
	return "(not set)"
}

func init() {
	configProfilesAddCmd.Flags().StringVar(&configProfileName, "name", "", "Profile name (required)")
	configProfilesAddCmd.Flags().StringVar(&configBaseURL, "base-url", "", "API base URL (optional, defaults to the top-level setting)")
	configProfilesAddCmd.Flags().StringVar(&configToken, "token", "", "Access token (optional, prefer SUBQL_ACCESS_TOKEN)")
	configProfilesAddCmd.Flags().StringVar(&configTimeout, "request-timeout", "", "Request timeout, e.g. 45s (optional)")
	mustMarkRequired(configProfilesAddCmd, "name")

	configProfilesRemoveCmd.Flags().StringVar(&configProfileName, "name", "", "Profile name (required)")
	mustMarkRequired(configProfilesRemoveCmd, "name")

	configProfilesUseCmd.Flags().StringVar(&configProfileName, "name", "", "Profile name (required)")
	mustMarkRequired(configProfilesUseCmd, "name")

	configProfilesCmd.AddCommand(configProfilesListCmd)
	configProfilesCmd.AddCommand(configProfilesAddCmd)
	configProfilesCmd.AddCommand(configProfilesRemoveCmd)
	configProfilesCmd.AddCommand(configProfilesUseCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configProfilesCmd)
	configCmd.AddCommand(configPathCmd)
}
