package workoutapi

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

const (
	defaultBaseURL = "https://app.caloriecount-ai.com"
	endpointPath   = "/calories/workout"
)

var (
	ErrMissingCredentials   = errors.New("workout api: missing user id or token")
	ErrBadRequest           = errors.New("workout api: bad request")
	ErrAuthenticationFailed = errors.New("workout api: authentication failed")
	ErrServer               = errors.New("workout api: server error")
	ErrUnexpectedStatus     = errors.New("workout api: unexpected status")
	ErrDecode               = errors.New("workout api: decode response")
)

type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type Workout struct {
	Type            string `json:"type"`
	DurationMinutes int    `json:"duration_minutes"`
	Intensity       string `json:"intensity"`
}

type Request struct {
	UserID   string      `json:"user_id"`
	Gender   string      `json:"gender"`
	Age      int         `json:"age"`
	Weight   Measurement `json:"weight"`
	Height   Measurement `json:"height"`
	Workouts []Workout   `json:"workouts"`
}

type WorkoutResult struct {
	Type            string  `json:"type"`
	DurationMinutes int     `json:"duration_minutes"`
	Intensity       string  `json:"intensity"`
	CaloriesBurned  int     `json:"calories_burned"`
	METValue        float64 `json:"met_value"`
}

type CaloriesBurned struct {
	TotalCalories int             `json:"total_calories"`
	Workouts      []WorkoutResult `json:"workouts"`
	Notes         string          `json:"notes"`
}

type Response struct {
	OK             bool            `json:"ok"`
	CaloriesBurned *CaloriesBurned `json:"calories_burned,omitempty"`
	Error          string          `json:"error,omitempty"`
}

type Client struct {
	BaseURL    string
	UserID     string
	Token      string
	HTTPClient *http.Client
}

// Estimate posts the workouts and returns the server's calorie breakdown.
// It never retries; callers decide whether to fall back to a local estimate.
func (c *Client) Estimate(ctx context.Context, in Request) (CaloriesBurned, error) {
	if strings.TrimSpace(c.UserID) == "" || strings.TrimSpace(c.Token) == "" {
		return CaloriesBurned{}, ErrMissingCredentials
	}
	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	in.UserID = c.UserID
	payload, err := json.Marshal(in)
	if err != nil {
		return CaloriesBurned{}, fmt.Errorf("marshal workout payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s%s?user_id=%s", baseURL, endpointPath, url.QueryEscape(c.UserID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return CaloriesBurned{}, fmt.Errorf("create workout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return CaloriesBurned{}, fmt.Errorf("execute workout request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return CaloriesBurned{}, fmt.Errorf("read workout response: %w", err)
	}
	if err := statusError(resp.StatusCode, body); err != nil {
		return CaloriesBurned{}, err
	}

	var parsed Response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return CaloriesBurned{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if !parsed.OK || parsed.CaloriesBurned == nil {
		msg := parsed.Error
		if msg == "" {
			msg = "request was not successful"
		}
		return CaloriesBurned{}, fmt.Errorf("%w: %s", ErrServer, msg)
	}
	return *parsed.CaloriesBurned, nil
}

func statusError(code int, body []byte) error {
	if code == http.StatusOK {
		return nil
	}
	var parsed Response
	_ = json.Unmarshal(body, &parsed)
	switch code {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, orDefault(parsed.Error, "Bad request"))
	case http.StatusLocked:
		return ErrAuthenticationFailed
	case http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrServer, orDefault(parsed.Error, "Server error"))
	default:
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, code)
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
