package main

import (
	"calorie-tracker/client"
	"calorie-tracker/services/nutrition"
	"calorie-tracker/structs"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var username string
	var password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session cookie",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			if password == "" {
				password = os.Getenv("MEALCTL_PASSWORD")
			}
			if err := apiClient.Login(cmd.Context(), username, password); err != nil {
				return err
			}
			if err := ctx.saveSession(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged in")
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", os.Getenv("MEALCTL_USERNAME"), "Account name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (or MEALCTL_PASSWORD)")
	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			if err := apiClient.Logout(cmd.Context()); err != nil {
				return err
			}
			if err := os.Remove(*ctx.sessionPath); err != nil && !os.IsNotExist(err) {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Estimate a described meal and log it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return capture(cmd, ctx, date, client.CaptureInput{Description: strings.Join(args, " ")})
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "Day to log the meal on (YYYY-MM-DD, default today)")
	return cmd
}

func newAddImageCommand(ctx *commandContext) *cobra.Command {
	var date string
	var description string
	cmd := &cobra.Command{
		Use:   "add-image <file>",
		Short: "Estimate a meal from a photo and log it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			image, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			return capture(cmd, ctx, date, client.CaptureInput{
				Description: description,
				Image:       image,
				MimeType:    detectMime(path, image),
				Filename:    filepath.Base(path),
			})
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "Day to log the meal on (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&description, "description", "", "Extra details about the food")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the meals of a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := loadDay(cmd, ctx, date)
			if err != nil {
				return err
			}
			if len(session.Meals) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No meals logged on %s\n", session.Date)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderMeals(session.Meals))
			return nil
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "Day to list (YYYY-MM-DD, default today)")
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a meal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			if err := apiClient.DeleteMeal(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newSummaryCommand(ctx *commandContext) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the nutrition totals of a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := loadDay(cmd, ctx, date)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(session.Date, client.Summary(session)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "Day to summarise (YYYY-MM-DD, default today)")
	return cmd
}

func capture(cmd *cobra.Command, ctx *commandContext, date string, input client.CaptureInput) error {
	apiClient, err := ctx.ensureClient()
	if err != nil {
		return err
	}
	day, err := ctx.resolveDate(date)
	if err != nil {
		return err
	}
	if len(input.Image) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Uploading %s (%s)\n", input.Filename, humanize.Bytes(uint64(len(input.Image))))
	}

	session, err := apiClient.Capture(cmd.Context(), client.NewSession(day), input)
	if err != nil {
		return err
	}
	if session.Stale {
		fmt.Fprintln(cmd.ErrOrStderr(), "Meal saved, but the day could not be reloaded")
		return nil
	}

	out := cmd.OutOrStdout()
	if len(session.Meals) > 0 {
		fmt.Fprintln(out, renderMeals(session.Meals))
	}
	fmt.Fprintln(out, renderSummary(session.Date, client.Summary(session)))
	return nil
}

func loadDay(cmd *cobra.Command, ctx *commandContext, date string) (client.Session, error) {
	apiClient, err := ctx.ensureClient()
	if err != nil {
		return client.Session{}, err
	}
	day, err := ctx.resolveDate(date)
	if err != nil {
		return client.Session{}, err
	}
	return apiClient.SelectDate(cmd.Context(), client.NewSession(day), day)
}

func detectMime(path string, data []byte) string {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
		if mediaType, _, err := mime.ParseMediaType(byExt); err == nil {
			return mediaType
		}
	}
	return http.DetectContentType(data)
}

func formatMacro(value *float64, unit string) string {
	if value == nil {
		return "-"
	}
	rounded := nutrition.RoundTenth(*value)
	if unit == "g" {
		return nutrition.FormatGrams(rounded)
	}
	return humanize.FormatFloat("#,###.#", rounded)
}

func mealNutrition(meal structs.MealRecord) structs.Nutrition {
	if meal.Nutrition == nil {
		return structs.Nutrition{}
	}
	return *meal.Nutrition
}
