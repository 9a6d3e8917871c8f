package goalsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://app.caloriecount-ai.com"

var (
	ErrMissingCredentials = errors.New("goals api: missing user id or token")
	ErrInvalidResponse    = errors.New("goals api: invalid response")
)

type ValueField[T any] struct {
	Value T `json:"value"`
}

type HeightWeight struct {
	Height     float64 `json:"height,omitempty"`
	HeightUnit string  `json:"height__unit,omitempty"`
	Weight     float64 `json:"weight,omitempty"`
	WeightUnit string  `json:"weight__unit,omitempty"`
}

type Birthdate struct {
	Birthdate string `json:"birthdate"`
}

// Request is the profile payload. All measurements are metric.
type Request struct {
	Gender        *ValueField[string]  `json:"gender,omitempty"`
	HeightWeight  *HeightWeight        `json:"height_weight,omitempty"`
	DesiredWeight *ValueField[float64] `json:"desired_weight,omitempty"`
	Goal          *ValueField[string]  `json:"goal,omitempty"`
	ActivityLevel *ValueField[string]  `json:"activity_level,omitempty"`
	GoalSpeed     ValueField[float64]  `json:"goal_speed"`
	Birthdate     *Birthdate           `json:"birthdate,omitempty"`
	Notifications bool                 `json:"notifications"`
	Coach         ValueField[string]   `json:"coach"`
}

type Response struct {
	Calories        int      `json:"calories"`
	ProteinG        float64  `json:"protein_g"`
	CarbsG          float64  `json:"carbs_g"`
	FatG            float64  `json:"fat_g"`
	BMI             *float64 `json:"bmi,omitempty"`
	BMR             *float64 `json:"bmr,omitempty"`
	TDEE            *float64 `json:"tdee,omitempty"`
	TimeToGoalWeeks *int     `json:"time_to_goal_weeks,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	Error           string   `json:"error,omitempty"`
}

type Client struct {
	BaseURL    string
	UserID     string
	Token      string
	HTTPClient *http.Client
}

func (c *Client) GenerateGoals(ctx context.Context, in Request) (Response, error) {
	if strings.TrimSpace(c.UserID) == "" || strings.TrimSpace(c.Token) == "" {
		return Response{}, ErrMissingCredentials
	}
	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return Response{}, fmt.Errorf("marshal goals payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/goals/generate?user_id=%s", baseURL, url.QueryEscape(c.UserID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("create goals request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("execute goals request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read goals response: %w", err)
	}

	var parsed Response
	decodeErr := json.Unmarshal(body, &parsed)
	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && parsed.Error != "" {
			return Response{}, fmt.Errorf("goals request failed with status %d: %s", resp.StatusCode, parsed.Error)
		}
		return Response{}, fmt.Errorf("goals request failed with status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrInvalidResponse, decodeErr)
	}
	if parsed.Calories < 0 || parsed.ProteinG < 0 || parsed.CarbsG < 0 || parsed.FatG < 0 {
		return Response{}, fmt.Errorf("%w: negative goal values", ErrInvalidResponse)
	}
	return parsed, nil
}
