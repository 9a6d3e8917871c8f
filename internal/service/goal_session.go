package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/saadjs/caltrack/internal/model"
	"github.com/saadjs/caltrack/internal/onboarding"
)

type GenerationState string

const (
	GenerationIdle       GenerationState = "idle"
	GenerationGenerating GenerationState = "generating"
	GenerationCompleted  GenerationState = "completed"
	GenerationError      GenerationState = "error"
)

var ErrNoGeneratedGoals = errors.New("no generated goals to save")

// GenerationSession runs one goal generation at a time. Starting a new run
// cancels the previous one and its result is dropped.
type GenerationSession struct {
	Generator *GoalGenerator
	Store     *SettingsStore
	DB        *sql.DB
	Now       func() time.Time

	mu     sync.Mutex
	run    uint64
	cancel context.CancelFunc
	done   chan struct{}
	state  GenerationState
	goals  model.GeneratedGoals
	err    error
}

func (s *GenerationSession) Start(ctx context.Context, answers onboarding.Answers) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.run++
	run := s.run
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.state = GenerationGenerating
	s.goals = model.GeneratedGoals{}
	s.err = nil
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()
		goals := s.Generator.Generate(runCtx, answers)

		s.mu.Lock()
		defer s.mu.Unlock()
		if run != s.run {
			return
		}
		if err := runCtx.Err(); err != nil {
			s.state = GenerationError
			s.err = err
			return
		}
		s.state = GenerationCompleted
		s.goals = goals
	}()
}

// Cancel stops the current run, if any. Its result is discarded.
func (s *GenerationSession) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.state == GenerationGenerating {
		s.run++
		s.state = GenerationIdle
	}
}

func (s *GenerationSession) State() (GenerationState, model.GeneratedGoals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == "" {
		return GenerationIdle, model.GeneratedGoals{}, nil
	}
	return s.state, s.goals, s.err
}

// Wait blocks until the latest run finishes or ctx is done.
func (s *GenerationSession) Wait(ctx context.Context) (model.GeneratedGoals, error) {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return model.GeneratedGoals{}, ErrNoGeneratedGoals
	}
	select {
	case <-done:
	case <-ctx.Done():
		return model.GeneratedGoals{}, ctx.Err()
	}

	state, goals, err := s.State()
	switch state {
	case GenerationCompleted:
		return goals, nil
	case GenerationError:
		return model.GeneratedGoals{}, err
	case GenerationIdle, GenerationGenerating:
		// superseded by a newer Start or cancelled
	}
	return model.GeneratedGoals{}, ErrNoGeneratedGoals
}

// SaveAndContinue persists the completed goals and marks onboarding done.
func (s *GenerationSession) SaveAndContinue() (model.UserSettings, error) {
	state, goals, _ := s.State()
	if state != GenerationCompleted {
		return model.UserSettings{}, ErrNoGeneratedGoals
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	if _, err := SaveGoals(s.Store, s.DB, goals, now); err != nil {
		return model.UserSettings{}, err
	}
	return s.Store.CompleteOnboarding()
}
