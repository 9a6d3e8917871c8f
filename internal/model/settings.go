package model

import "time"

// UserSettings is the persisted per-installation profile and goal state.
type UserSettings struct {
	HasCompletedOnboarding bool
	CalorieGoal            int
	ProteinGoal            float64
	CarbsGoal              float64
	FatGoal                float64
	UseMetricUnits         bool
	CurrentWeightKg        float64
	TargetWeightKg         float64
	HeightCm               float64
	LastWeightDate         time.Time
	Gender                 string
	Age                    int
	Birthdate              time.Time
	AddBurnedCalories      bool
	RolloverCalories       bool
	RolloverLastDate       time.Time
	RolloverAmount         int
}

func DefaultUserSettings() UserSettings {
	return UserSettings{
		CalorieGoal:     2000,
		ProteinGoal:     150,
		CarbsGoal:       250,
		FatGoal:         65,
		UseMetricUnits:  true,
		CurrentWeightKg: 70,
		TargetWeightKg:  70,
		HeightCm:        170,
	}
}

func (s UserSettings) MacroGoals() MacroData {
	return MacroData{Calories: s.CalorieGoal, ProteinG: s.ProteinGoal, CarbsG: s.CarbsGoal, FatG: s.FatGoal}
}

type GoalSource string

const (
	GoalSourceRemote       GoalSource = "remote"
	GoalSourceRemoteScaled GoalSource = "remote_scaled"
	GoalSourceLocal        GoalSource = "local"
	GoalSourceManual       GoalSource = "manual"
)

// GeneratedGoals is the transient result of goal generation. It only
// reaches storage through SaveGoals.
type GeneratedGoals struct {
	Calories        int        `json:"calories"`
	ProteinG        float64    `json:"protein_g"`
	CarbsG          float64    `json:"carbs_g"`
	FatG            float64    `json:"fat_g"`
	BMI             *float64   `json:"bmi,omitempty"`
	BMR             *float64   `json:"bmr,omitempty"`
	TDEE            *float64   `json:"tdee,omitempty"`
	TimeToGoalWeeks *int       `json:"time_to_goal_weeks,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Source          GoalSource `json:"source"`
}

func DefaultGeneratedGoals() GeneratedGoals {
	return GeneratedGoals{Calories: 2000, ProteinG: 150, CarbsG: 250, FatG: 65, Source: GoalSourceLocal}
}

// Equal compares calories and macros only.
func (g GeneratedGoals) Equal(o GeneratedGoals) bool {
	return g.Calories == o.Calories && g.ProteinG == o.ProteinG && g.CarbsG == o.CarbsG && g.FatG == o.FatG
}
