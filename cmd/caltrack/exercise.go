package caltrack

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/saadjs/caltrack/internal/model"
	"github.com/saadjs/caltrack/internal/provider/workoutapi"
	"github.com/saadjs/caltrack/internal/service"
	"github.com/spf13/cobra"
)

var exerciseCmd = &cobra.Command{
	Use:   "exercise",
	Short: "Manage exercise logs",
}

var (
	exerciseType         string
	exerciseCalories     int
	exerciseDurationMin  int
	exerciseIntensity    string
	exerciseDistance     float64
	exerciseDistanceUnit string
	exerciseSets         []string
	exerciseDescription  string
	exerciseDate         string
	exerciseNotes        string
	exerciseLocalOnly    bool
)

var exerciseAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add exercise log",
	Long: `Add an exercise log. Without --calories the burn is estimated: the workout
API is asked first when credentials are configured, and the local
estimators are used when it is unavailable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateOrToday(exerciseDate)
		if err != nil {
			return err
		}
		in, err := buildExerciseInput(cmd)
		if err != nil {
			return err
		}
		in.Date = date
		return withStore(func(sqldb *sql.DB, store *service.SettingsStore) error {
			if in.Calories <= 0 && !exerciseLocalOnly {
				if burned, ok := remoteExerciseCalories(cmd, store, in); ok {
					in.Calories = burned
				}
			}
			ex, err := service.SaveExercise(sqldb, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added exercise %s (%d kcal)\n", ex.ID, ex.Calories)
			return nil
		})
	},
}

// remoteExerciseCalories asks the workout API for a burn estimate. Any
// failure is logged and reported as not ok so the caller estimates locally.
func remoteExerciseCalories(cmd *cobra.Command, store *service.SettingsStore, in service.ExerciseInput) (int, bool) {
	if in.DurationMin <= 0 {
		return 0, false
	}
	typ := model.ExerciseType(strings.ToLower(strings.TrimSpace(in.Type)))
	if typ == model.ExerciseManual {
		return 0, false
	}
	calc := &service.WorkoutCalories{
		Remote:      workoutClient(),
		Credentials: credentials(),
		Store:       store,
		Timeout:     resourceTimeout(),
	}
	workout := service.WorkoutFromExercise(model.Exercise{
		Type:        typ,
		DurationMin: in.DurationMin,
		Intensity:   model.ExerciseIntensity(strings.ToLower(strings.TrimSpace(in.Intensity))),
		Description: strings.TrimSpace(in.Description),
	})
	result, err := calc.Calculate(cmd.Context(), []workoutapi.Workout{workout})
	if err != nil {
		logger.Warn("workout calories unavailable, using local estimate", "error", err)
		return 0, false
	}
	if result.TotalCalories <= 0 {
		return 0, false
	}
	return result.TotalCalories, true
}

var (
	exerciseListDate string
	exerciseFromDate string
	exerciseToDate   string
	exerciseListType string
	exerciseLimit    int
)

var exerciseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List exercise logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := service.ListExerciseFilter{
			Date:         exerciseListDate,
			FromDate:     exerciseFromDate,
			ToDate:       exerciseToDate,
			ExerciseType: strings.TrimSpace(exerciseListType),
			Limit:        exerciseLimit,
		}
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.ListExercises(sqldb, filter)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tDATE\tTYPE\tKCAL_BURNED\tDURATION_MIN\tINTENSITY\tDISTANCE\tUNIT\tNOTES")
			for _, item := range items {
				distance := ""
				if item.Distance != nil {
					distance = fmt.Sprintf("%.2f", *item.Distance)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\t%s\n", item.ID, item.Date.Format("2006-01-02"), item.Type, item.Calories, item.DurationMin, item.Intensity, distance, item.DistanceUnit, item.Notes)
			}
			return nil
		})
	},
}

var exerciseDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete exercise log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseUUIDArg("exercise id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteExercise(sqldb, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted exercise %s\n", id)
			return nil
		})
	},
}

func buildExerciseInput(cmd *cobra.Command) (service.ExerciseInput, error) {
	in := service.ExerciseInput{
		Type:         exerciseType,
		Calories:     exerciseCalories,
		DurationMin:  exerciseDurationMin,
		Intensity:    exerciseIntensity,
		Notes:        exerciseNotes,
		DistanceUnit: exerciseDistanceUnit,
		Description:  exerciseDescription,
	}
	if cmd.Flags().Changed("distance") {
		v := exerciseDistance
		in.Distance = &v
	}
	for _, spec := range exerciseSets {
		set, err := parseSetSpec(spec)
		if err != nil {
			return service.ExerciseInput{}, err
		}
		in.SetEntries = append(in.SetEntries, set)
	}
	return in, nil
}

// parseSetSpec reads "REPSxWEIGHT", e.g. "8x60".
func parseSetSpec(spec string) (model.ExerciseSet, error) {
	reps, weight, ok := strings.Cut(strings.ToLower(strings.TrimSpace(spec)), "x")
	if !ok {
		return model.ExerciseSet{}, fmt.Errorf("invalid --set %q (expected REPSxWEIGHT)", spec)
	}
	r, err := strconv.Atoi(strings.TrimSpace(reps))
	if err != nil {
		return model.ExerciseSet{}, fmt.Errorf("invalid reps in --set %q", spec)
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
	if err != nil {
		return model.ExerciseSet{}, fmt.Errorf("invalid weight in --set %q", spec)
	}
	return model.ExerciseSet{Reps: r, Weight: w}, nil
}

func init() {
	rootCmd.AddCommand(exerciseCmd)
	exerciseCmd.AddCommand(exerciseAddCmd, exerciseListCmd, exerciseDeleteCmd)

	exerciseAddCmd.Flags().StringVar(&exerciseType, "type", "", "Exercise type: run, weight_lifting, describe or manual")
	exerciseAddCmd.Flags().IntVar(&exerciseCalories, "calories", 0, "Calories burned (estimated when omitted)")
	exerciseAddCmd.Flags().IntVar(&exerciseDurationMin, "duration-min", 0, "Duration in minutes")
	exerciseAddCmd.Flags().StringVar(&exerciseIntensity, "intensity", "", "low, medium or high")
	exerciseAddCmd.Flags().Float64Var(&exerciseDistance, "distance", 0, "Run distance")
	exerciseAddCmd.Flags().StringVar(&exerciseDistanceUnit, "distance-unit", "km", "Distance unit: km or mi")
	exerciseAddCmd.Flags().StringArrayVar(&exerciseSets, "set", nil, "Lifting set as REPSxWEIGHT (repeatable)")
	exerciseAddCmd.Flags().StringVar(&exerciseDescription, "description", "", "Free-text workout description")
	exerciseAddCmd.Flags().StringVar(&exerciseDate, "date", "", "Date YYYY-MM-DD (default today)")
	exerciseAddCmd.Flags().StringVar(&exerciseNotes, "notes", "", "Optional notes")
	exerciseAddCmd.Flags().BoolVar(&exerciseLocalOnly, "local", false, "Skip the workout API and estimate locally")
	_ = exerciseAddCmd.MarkFlagRequired("type")

	exerciseListCmd.Flags().StringVar(&exerciseListDate, "date", "", "Filter by date YYYY-MM-DD")
	exerciseListCmd.Flags().StringVar(&exerciseFromDate, "from", "", "Filter from date YYYY-MM-DD")
	exerciseListCmd.Flags().StringVar(&exerciseToDate, "to", "", "Filter to date YYYY-MM-DD")
	exerciseListCmd.Flags().StringVar(&exerciseListType, "type", "", "Filter by exercise type")
	exerciseListCmd.Flags().IntVar(&exerciseLimit, "limit", 50, "Result limit")
}
