package caltrack

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/saadjs/caltrack/internal/model"
	"github.com/saadjs/caltrack/internal/onboarding"
	"github.com/saadjs/caltrack/internal/service"
	"github.com/spf13/cobra"
)

var goalsCmd = &cobra.Command{
	Use:     "goals",
	Aliases: []string{"goal"},
	Short:   "Generate and manage daily calorie and macro goals",
}

var (
	genGender        string
	genAge           int
	genBirthdate     string
	genHeightCm      float64
	genWeightKg      float64
	genDesiredKg     float64
	genGoal          string
	genActivity      string
	genCalorieTarget int
	genSave          bool
)

var goalsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate goals from your profile",
	Long: `Generate goals from your stored profile, overridden by any flags. The
remote goal service is used when credentials are configured; otherwise the
local calculation is used. Pass --save to store the result and mark
onboarding complete.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(sqldb *sql.DB, store *service.SettingsStore) error {
			settings, err := store.Load()
			if err != nil {
				return err
			}
			answers, err := generateAnswers(cmd, onboarding.FromSettings(settings))
			if err != nil {
				return err
			}

			session := &service.GenerationSession{
				Generator: &service.GoalGenerator{
					Remote:      goalsClient(),
					Credentials: credentials(),
					Logger:      logger,
					Timeout:     resourceTimeout(),
				},
				Store: store,
				DB:    sqldb,
			}
			session.Start(cmd.Context(), answers)
			goals, err := session.Wait(cmd.Context())
			if err != nil {
				return err
			}
			printGeneratedGoals(cmd, goals)
			if !genSave {
				return nil
			}
			if _, err := session.SaveAndContinue(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Saved goals")
			return nil
		})
	},
}

func generateAnswers(cmd *cobra.Command, answers onboarding.Answers) (onboarding.Answers, error) {
	flags := cmd.Flags()
	if flags.Changed("gender") {
		answers[onboarding.KeyGender] = onboarding.Text(genGender)
	}
	if flags.Changed("age") {
		answers[onboarding.KeyAge] = onboarding.Number(genAge)
	}
	if flags.Changed("birthdate") {
		t, err := time.ParseInLocation("2006-01-02", genBirthdate, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid --birthdate %q (expected YYYY-MM-DD)", genBirthdate)
		}
		answers[onboarding.KeyBirthdate] = onboarding.Date(t)
	}
	if flags.Changed("height-cm") {
		answers[onboarding.KeyHeight] = onboarding.Measurement{Value: genHeightCm, Unit: "cm"}
	}
	if flags.Changed("weight-kg") {
		answers[onboarding.KeyWeight] = onboarding.Measurement{Value: genWeightKg, Unit: "kg"}
	}
	if flags.Changed("desired-weight-kg") {
		answers[onboarding.KeyDesiredWeight] = onboarding.Measurement{Value: genDesiredKg, Unit: "kg"}
	}
	if flags.Changed("goal") {
		answers[onboarding.KeyGoal] = onboarding.Text(genGoal)
	}
	if flags.Changed("activity") {
		answers[onboarding.KeyActivityLevel] = onboarding.Text(genActivity)
	}
	if flags.Changed("calories") {
		answers[onboarding.KeyCalorieGoal] = onboarding.Number(genCalorieTarget)
	}
	return answers, nil
}

func printGeneratedGoals(cmd *cobra.Command, g model.GeneratedGoals) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Calories: %d\nProtein: %.1fg\nCarbs: %.1fg\nFat: %.1fg\n", g.Calories, g.ProteinG, g.CarbsG, g.FatG)
	if g.BMR != nil {
		fmt.Fprintf(out, "BMR: %.0f\n", *g.BMR)
	}
	if g.TDEE != nil {
		fmt.Fprintf(out, "TDEE: %.0f\n", *g.TDEE)
	}
	if g.TimeToGoalWeeks != nil {
		fmt.Fprintf(out, "Weeks to goal: %d\n", *g.TimeToGoalWeeks)
	}
	if g.Notes != "" {
		fmt.Fprintf(out, "Notes: %s\n", g.Notes)
	}
	fmt.Fprintf(out, "Source: %s\n", g.Source)
}

var (
	goalCalories int
	goalProtein  float64
	goalCarbs    float64
	goalFat      float64
	goalDate     string
)

var goalsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set daily goals with an effective date",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.SetGoalInput{
			Calories:      goalCalories,
			ProteinG:      goalProtein,
			CarbsG:        goalCarbs,
			FatG:          goalFat,
			Source:        model.GoalSourceManual,
			EffectiveDate: goalDate,
		}
		if err := validateGoalInput(in); err != nil {
			return err
		}
		return withStore(func(sqldb *sql.DB, store *service.SettingsStore) error {
			today := time.Now().Format("2006-01-02")
			if in.EffectiveDate == "" || in.EffectiveDate == today {
				goals := model.GeneratedGoals{Calories: in.Calories, ProteinG: in.ProteinG, CarbsG: in.CarbsG, FatG: in.FatG, Source: model.GoalSourceManual}
				if _, err := service.SaveGoals(store, sqldb, goals, time.Now()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Set goal effective %s\n", today)
				return nil
			}
			if err := service.SetGoal(sqldb, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set goal effective %s\n", in.EffectiveDate)
			return nil
		})
	},
}

func validateGoalInput(in service.SetGoalInput) error {
	if err := service.ValidateCalories(in.Calories); err != nil {
		return err
	}
	if err := service.ValidateMacro(service.MacroProtein, in.ProteinG); err != nil {
		return err
	}
	if err := service.ValidateMacro(service.MacroCarbs, in.CarbsG); err != nil {
		return err
	}
	return service.ValidateMacro(service.MacroFat, in.FatG)
}

var currentGoalDate string

var goalsCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the goal in effect",
	RunE: func(cmd *cobra.Command, args []string) error {
		date := currentGoalDate
		if date == "" {
			date = time.Now().Format("2006-01-02")
		}
		return withDB(func(sqldb *sql.DB) error {
			goal, err := service.CurrentGoal(sqldb, date)
			if err != nil {
				return err
			}
			if goal == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No goal configured")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Effective: %s\nCalories: %d\nProtein: %.1fg\nCarbs: %.1fg\nFat: %.1fg\nSource: %s\n", goal.EffectiveDate, goal.Calories, goal.ProteinG, goal.CarbsG, goal.FatG, goal.Source)
			return nil
		})
	},
}

var goalsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show goal history",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			goals, err := service.GoalHistory(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "DATE\tKCAL\tP\tC\tF\tSOURCE")
			for _, g := range goals {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%.1f\t%.1f\t%.1f\t%s\n", g.EffectiveDate, g.Calories, g.ProteinG, g.CarbsG, g.FatG, g.Source)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(goalsCmd)
	goalsCmd.AddCommand(goalsGenerateCmd, goalsSetCmd, goalsCurrentCmd, goalsHistoryCmd)

	goalsGenerateCmd.Flags().StringVar(&genGender, "gender", "", "male, female or other")
	goalsGenerateCmd.Flags().IntVar(&genAge, "age", 0, "Age in years")
	goalsGenerateCmd.Flags().StringVar(&genBirthdate, "birthdate", "", "Birthdate YYYY-MM-DD")
	goalsGenerateCmd.Flags().Float64Var(&genHeightCm, "height-cm", 0, "Height in cm")
	goalsGenerateCmd.Flags().Float64Var(&genWeightKg, "weight-kg", 0, "Current weight in kg")
	goalsGenerateCmd.Flags().Float64Var(&genDesiredKg, "desired-weight-kg", 0, "Desired weight in kg")
	goalsGenerateCmd.Flags().StringVar(&genGoal, "goal", "", "lose_weight, maintain or gain_weight")
	goalsGenerateCmd.Flags().StringVar(&genActivity, "activity", "", "sedentary, lightly_active, moderately_active, very_active or athlete")
	goalsGenerateCmd.Flags().IntVar(&genCalorieTarget, "calories", 0, "Scale the result to this calorie target")
	goalsGenerateCmd.Flags().BoolVar(&genSave, "save", false, "Save the generated goals")

	goalsSetCmd.Flags().IntVar(&goalCalories, "calories", 0, "Daily calorie target")
	goalsSetCmd.Flags().Float64Var(&goalProtein, "protein", 0, "Daily protein target grams")
	goalsSetCmd.Flags().Float64Var(&goalCarbs, "carbs", 0, "Daily carbs target grams")
	goalsSetCmd.Flags().Float64Var(&goalFat, "fat", 0, "Daily fat target grams")
	goalsSetCmd.Flags().StringVar(&goalDate, "effective-date", "", "Effective date YYYY-MM-DD (default today)")
	_ = goalsSetCmd.MarkFlagRequired("calories")
	_ = goalsSetCmd.MarkFlagRequired("protein")
	_ = goalsSetCmd.MarkFlagRequired("carbs")
	_ = goalsSetCmd.MarkFlagRequired("fat")

	goalsCurrentCmd.Flags().StringVar(&currentGoalDate, "date", "", "Resolve goal at date YYYY-MM-DD (default today)")
}
