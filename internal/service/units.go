package service

import (
	"fmt"
	"strings"
)

type unitKind string

const (
	unitKindLength   unitKind = "length"
	unitKindMass     unitKind = "mass"
	unitKindDistance unitKind = "distance"
)

const (
	cmPerInch  = 2.54
	kgPerLb    = 0.453592
	lbsPerKg   = 2.20462
	kmPerMile  = 1.60934
	inchesFoot = 12
)

type unitDef struct {
	kind       unitKind
	toBaseUnit float64
}

// Base units are cm, kg and km.
var unitTable = map[string]unitDef{
	"cm": {kind: unitKindLength, toBaseUnit: 1},
	"m":  {kind: unitKindLength, toBaseUnit: 100},
	"in": {kind: unitKindLength, toBaseUnit: cmPerInch},
	"ft": {kind: unitKindLength, toBaseUnit: cmPerInch * inchesFoot},

	"g":  {kind: unitKindMass, toBaseUnit: 0.001},
	"kg": {kind: unitKindMass, toBaseUnit: 1},
	"lb": {kind: unitKindMass, toBaseUnit: kgPerLb},

	"km": {kind: unitKindDistance, toBaseUnit: 1},
	"mi": {kind: unitKindDistance, toBaseUnit: kmPerMile},
}

var unitAliases = map[string]string{
	"lbs":    "lb",
	"pound":  "lb",
	"pounds": "lb",
	"inch":   "in",
	"inches": "in",
	"feet":   "ft",
	"foot":   "ft",
	"miles":  "mi",
	"mile":   "mi",
}

func normalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if alias, ok := unitAliases[u]; ok {
		return alias
	}
	return u
}

// ToMetric converts value in unit to the metric base unit of its kind
// (cm, kg or km) and returns that base unit name.
func ToMetric(value float64, unit string) (float64, string, error) {
	def, ok := unitTable[normalizeUnit(unit)]
	if !ok {
		return 0, "", fmt.Errorf("unsupported unit %q", unit)
	}
	base := map[unitKind]string{unitKindLength: "cm", unitKindMass: "kg", unitKindDistance: "km"}[def.kind]
	return value * def.toBaseUnit, base, nil
}

// ConvertUnit converts between two units of the same kind.
func ConvertUnit(value float64, from, to string) (float64, error) {
	fromDef, ok := unitTable[normalizeUnit(from)]
	if !ok {
		return 0, fmt.Errorf("unsupported unit %q", from)
	}
	toDef, ok := unitTable[normalizeUnit(to)]
	if !ok {
		return 0, fmt.Errorf("unsupported unit %q", to)
	}
	if fromDef.kind != toDef.kind {
		return 0, fmt.Errorf("cannot convert %s (%s) to %s (%s)", from, fromDef.kind, to, toDef.kind)
	}
	return value * fromDef.toBaseUnit / toDef.toBaseUnit, nil
}

func FeetInchesToCm(feet, inches float64) float64 {
	return (feet*inchesFoot + inches) * cmPerInch
}

func CmToInches(cm float64) float64 {
	return cm / cmPerInch
}

func LbsToKg(lbs float64) float64 {
	return lbs * kgPerLb
}

func KgToLbs(kg float64) float64 {
	return kg * lbsPerKg
}

func MilesToKm(miles float64) float64 {
	return miles * kmPerMile
}

func KmToMiles(km float64) float64 {
	return km / kmPerMile
}
