package caltrack

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/saadjs/caltrack/internal/model"
	"github.com/saadjs/caltrack/internal/service"
	"github.com/spf13/cobra"
)

var mealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Log and manage meals",
}

var (
	mealName       string
	mealItems      []string
	mealCategory   string
	mealDate       string
	mealTime       string
	mealNotes      string
	mealPhotoURL   string
	mealConfidence float64
)

var mealAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a meal with one or more items",
	Example: `  caltrack meal add --name "Lunch" --item "Rice:200:4:44:0.4:150 g" --item "Chicken:165:31:0:3.6"
  caltrack meal add --name "Snack" --item "Apple:95" --date 2026-03-10 --time 16:00`,
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := parseDateTimeOrNow(mealDate, mealTime)
		if err != nil {
			return err
		}
		items, err := parseItemSpecs(mealItems)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			meal, err := service.SaveMeal(sqldb, service.MealInput{
				Name:       mealName,
				Timestamp:  at,
				PhotoURL:   mealPhotoURL,
				Confidence: mealConfidence,
				Notes:      mealNotes,
				Category:   mealCategory,
				Items:      items,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added meal %s (%d kcal)\n", meal.ID, meal.TotalCalories())
			return nil
		})
	},
}

var (
	mealListDate     string
	mealListFrom     string
	mealListTo       string
	mealListCategory string
	mealListLimit    int
)

var mealListCmd = &cobra.Command{
	Use:   "list",
	Short: "List meals",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := service.ListMealsFilter{
			Date:     mealListDate,
			FromDate: mealListFrom,
			ToDate:   mealListTo,
			Category: mealListCategory,
			Limit:    mealListLimit,
		}
		return withDB(func(sqldb *sql.DB) error {
			meals, err := service.ListMeals(sqldb, filter)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tDATE\tCATEGORY\tNAME\tITEMS\tKCAL\tP\tC\tF")
			for _, m := range meals {
				total := m.TotalMacros()
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%d\t%d\t%.1f\t%.1f\t%.1f\n", m.ID, m.Timestamp.Local().Format("2006-01-02 15:04"), m.Category, m.Name, len(m.Items), total.Calories, total.ProteinG, total.CarbsG, total.FatG)
			}
			return nil
		})
	},
}

var mealShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a meal and its items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseUUIDArg("meal id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			m, err := service.FetchMeal(sqldb, id)
			if err != nil {
				return err
			}
			printMeal(cmd.OutOrStdout(), m)
			return nil
		})
	},
}

var mealDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseUUIDArg("meal id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteMeal(sqldb, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted meal %s\n", id)
			return nil
		})
	},
}

var replaceItems []string

var mealReplaceItemsCmd = &cobra.Command{
	Use:   "replace-items <id>",
	Short: "Replace every item of a meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseUUIDArg("meal id", args[0])
		if err != nil {
			return err
		}
		items, err := parseItemSpecs(replaceItems)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			m, err := service.ReplaceMealItems(sqldb, id, items)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Replaced items of meal %s (%d kcal)\n", m.ID, m.TotalCalories())
			return nil
		})
	},
}

func printMeal(w io.Writer, m model.Meal) {
	total := m.TotalMacros()
	fmt.Fprintf(w, "ID: %s\n", m.ID)
	fmt.Fprintf(w, "Name: %s\n", m.Name)
	fmt.Fprintf(w, "Date: %s\n", m.Timestamp.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Category: %s\n", m.Category)
	fmt.Fprintf(w, "Calories: %d\n", total.Calories)
	fmt.Fprintf(w, "Protein: %.1f\nCarbs: %.1f\nFat: %.1f\n", total.ProteinG, total.CarbsG, total.FatG)
	if m.Confidence > 0 {
		fmt.Fprintf(w, "Confidence: %.2f\n", m.Confidence)
	}
	if m.PhotoURL != "" {
		fmt.Fprintf(w, "Photo: %s\n", m.PhotoURL)
	}
	fmt.Fprintf(w, "Notes: %s\n", m.Notes)
	fmt.Fprintln(w, "ITEM\tPORTION\tKCAL\tP\tC\tF")
	for _, it := range m.Items {
		portion := ""
		if it.Portion > 0 {
			portion = fmt.Sprintf("%g %s", it.Portion, it.Unit)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.1f\t%.1f\t%.1f\n", it.Name, portion, it.Calories, it.ProteinG, it.CarbsG, it.FatG)
	}
}

func init() {
	rootCmd.AddCommand(mealCmd)
	mealCmd.AddCommand(mealAddCmd, mealListCmd, mealShowCmd, mealDeleteCmd, mealReplaceItemsCmd)

	mealAddCmd.Flags().StringVar(&mealName, "name", "", "Meal name")
	mealAddCmd.Flags().StringArrayVar(&mealItems, "item", nil, "Item as name:calories[:protein:carbs:fat[:portion unit]] (repeatable)")
	mealAddCmd.Flags().StringVar(&mealCategory, "category", "", "breakfast, lunch, dinner or snack (default from time of day)")
	mealAddCmd.Flags().StringVar(&mealDate, "date", "", "Date YYYY-MM-DD")
	mealAddCmd.Flags().StringVar(&mealTime, "time", "", "Time HH:MM")
	mealAddCmd.Flags().StringVar(&mealNotes, "notes", "", "Optional notes")
	mealAddCmd.Flags().StringVar(&mealPhotoURL, "photo-url", "", "Optional photo URL")
	mealAddCmd.Flags().Float64Var(&mealConfidence, "confidence", 0, "Recognition confidence 0..1")
	_ = mealAddCmd.MarkFlagRequired("name")
	_ = mealAddCmd.MarkFlagRequired("item")

	mealListCmd.Flags().StringVar(&mealListDate, "date", "", "Filter by date YYYY-MM-DD")
	mealListCmd.Flags().StringVar(&mealListFrom, "from", "", "Filter from date YYYY-MM-DD")
	mealListCmd.Flags().StringVar(&mealListTo, "to", "", "Filter to date YYYY-MM-DD")
	mealListCmd.Flags().StringVar(&mealListCategory, "category", "", "Filter by category")
	mealListCmd.Flags().IntVar(&mealListLimit, "limit", 50, "Result limit")

	mealReplaceItemsCmd.Flags().StringArrayVar(&replaceItems, "item", nil, "Item as name:calories[:protein:carbs:fat[:portion unit]] (repeatable)")
	_ = mealReplaceItemsCmd.MarkFlagRequired("item")
}
