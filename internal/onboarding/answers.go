package onboarding

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Value is one onboarding answer. The set of variants is closed; every
// consumer switches over all of them.
type Value interface {
	kind() string
}

type Text string

type Number float64

type Toggle bool

type Date time.Time

type List []Value

// Measurement carries a unit so conversion happens at the boundary that
// reads it rather than where the answer was captured.
type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

func (Text) kind() string        { return "text" }
func (Number) kind() string      { return "number" }
func (Toggle) kind() string      { return "toggle" }
func (Date) kind() string        { return "date" }
func (List) kind() string        { return "list" }
func (Measurement) kind() string { return "measurement" }

// Well-known answer keys.
const (
	KeyGender        = "gender"
	KeyAge           = "age"
	KeyBirthdate     = "birthdate"
	KeyHeight        = "height"
	KeyHeightFeet    = "height_feet"
	KeyHeightInches  = "height_inches"
	KeyWeight        = "current_weight"
	KeyDesiredWeight = "desired_weight"
	KeyGoal          = "goal"
	KeyActivityLevel = "activity_level"
	KeyCalorieGoal   = "calorie_goal"
)

type Answers map[string]Value

func (a Answers) Text(key string) (string, bool) {
	switch v := a[key].(type) {
	case Text:
		s := strings.TrimSpace(string(v))
		return s, s != ""
	case Number, Toggle, Date, List, Measurement, nil:
		return "", false
	}
	return "", false
}

func (a Answers) Number(key string) (float64, bool) {
	switch v := a[key].(type) {
	case Number:
		return float64(v), true
	case Measurement:
		return v.Value, true
	case Text, Toggle, Date, List, nil:
		return 0, false
	}
	return 0, false
}

// Int reads a whole-number answer, truncating any fraction.
func (a Answers) Int(key string) (int, bool) {
	n, ok := a.Number(key)
	return int(n), ok
}

func (a Answers) Date(key string) (time.Time, bool) {
	switch v := a[key].(type) {
	case Date:
		t := time.Time(v)
		return t, !t.IsZero()
	case Text:
		t, err := time.Parse("2006-01-02", strings.TrimSpace(string(v)))
		return t, err == nil
	case Number, Toggle, List, Measurement, nil:
		return time.Time{}, false
	}
	return time.Time{}, false
}

func (a Answers) Measurement(key string) (Measurement, bool) {
	switch v := a[key].(type) {
	case Measurement:
		return v, true
	case Text, Number, Toggle, Date, List, nil:
		return Measurement{}, false
	}
	return Measurement{}, false
}

type wireValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

func (a Answers) MarshalJSON() ([]byte, error) {
	out := make(map[string]wireValue, len(a))
	for key, v := range a {
		w, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("encode answer %q: %w", key, err)
		}
		out[key] = w
	}
	return json.Marshal(out)
}

func (a *Answers) UnmarshalJSON(data []byte) error {
	var raw map[string]wireValue
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode answers: %w", err)
	}
	out := make(Answers, len(raw))
	for key, w := range raw {
		v, err := decodeValue(w)
		if err != nil {
			return fmt.Errorf("decode answer %q: %w", key, err)
		}
		out[key] = v
	}
	*a = out
	return nil
}

func encodeValue(v Value) (wireValue, error) {
	var payload any
	switch tv := v.(type) {
	case Text:
		payload = string(tv)
	case Number:
		payload = float64(tv)
	case Toggle:
		payload = bool(tv)
	case Date:
		payload = time.Time(tv).Format(time.RFC3339)
	case Measurement:
		payload = tv
	case List:
		items := make([]wireValue, 0, len(tv))
		for _, item := range tv {
			w, err := encodeValue(item)
			if err != nil {
				return wireValue{}, err
			}
			items = append(items, w)
		}
		payload = items
	default:
		return wireValue{}, fmt.Errorf("unsupported answer type %T", v)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return wireValue{}, err
	}
	return wireValue{Type: v.kind(), Value: raw}, nil
}

func decodeValue(w wireValue) (Value, error) {
	switch w.Type {
	case "text":
		var s string
		err := json.Unmarshal(w.Value, &s)
		return Text(s), err
	case "number":
		var n float64
		err := json.Unmarshal(w.Value, &n)
		return Number(n), err
	case "toggle":
		var b bool
		err := json.Unmarshal(w.Value, &b)
		return Toggle(b), err
	case "date":
		var s string
		if err := json.Unmarshal(w.Value, &s); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q", s)
		}
		return Date(t), nil
	case "measurement":
		var m Measurement
		err := json.Unmarshal(w.Value, &m)
		return m, err
	case "list":
		var items []wireValue
		if err := json.Unmarshal(w.Value, &items); err != nil {
			return nil, err
		}
		list := make(List, 0, len(items))
		for _, item := range items {
			v, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	}
	return nil, fmt.Errorf("unknown answer type %q", w.Type)
}
