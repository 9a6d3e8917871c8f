package model

// MacroData is a calorie and macronutrient bundle. Values are expected to
// be non-negative but nothing here enforces it.
type MacroData struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

var MacroZero = MacroData{}

func (m MacroData) Add(o MacroData) MacroData {
	return MacroData{
		Calories: m.Calories + o.Calories,
		ProteinG: m.ProteinG + o.ProteinG,
		CarbsG:   m.CarbsG + o.CarbsG,
		FatG:     m.FatG + o.FatG,
	}
}

func (m MacroData) Sub(o MacroData) MacroData {
	return MacroData{
		Calories: m.Calories - o.Calories,
		ProteinG: m.ProteinG - o.ProteinG,
		CarbsG:   m.CarbsG - o.CarbsG,
		FatG:     m.FatG - o.FatG,
	}
}
