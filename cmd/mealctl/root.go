package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var serverFlag string
	var sessionFlag string
	var timezoneFlag string
	var verboseFlag bool

	ctx := newCommandContext(&serverFlag, &sessionFlag, &timezoneFlag, &verboseFlag)

	rootCmd := &cobra.Command{
		Use:           "mealctl",
		Short:         "Log meals and review daily nutrition",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&serverFlag, "server", "s", envOr("MEALCTL_SERVER", "http://localhost:8080"), "calorie-tracker server URL")
	rootCmd.PersistentFlags().StringVar(&sessionFlag, "session", defaultSessionPath(), "File holding the login session")
	rootCmd.PersistentFlags().StringVar(&timezoneFlag, "timezone", envOr("MEALCTL_TIMEZONE", "Local"), "Time zone used for calendar days")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log requests and capture states")

	rootCmd.AddCommand(newLoginCommand(ctx))
	rootCmd.AddCommand(newLogoutCommand(ctx))
	rootCmd.AddCommand(newAddCommand(ctx))
	rootCmd.AddCommand(newAddImageCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newDeleteCommand(ctx))
	rootCmd.AddCommand(newSummaryCommand(ctx))

	return rootCmd
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
