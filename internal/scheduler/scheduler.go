// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// ErrTaskNotFound is returned for an unregistered task ID.
var ErrTaskNotFound = errors.New("task not found")

// TaskFunc is the function signature for scheduled tasks.
type TaskFunc func(ctx context.Context) error

// TaskConfig describes a scheduled task.
type TaskConfig struct {
	ID          string
	Name        string
	Description string
	Cron        string // standard five-field cron expression
	Func        TaskFunc
	RunOnStart  bool
}

// TaskInfo is the externally visible state of a task.
type TaskInfo struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Cron        string     `json:"cron"`
	LastRun     *time.Time `json:"lastRun,omitempty"`
	NextRun     *time.Time `json:"nextRun,omitempty"`
	Running     bool       `json:"running"`
}

type taskEntry struct {
	config  TaskConfig
	job     gocron.Job
	lastRun *time.Time
	running bool
}

// Scheduler manages background scheduled tasks.
type Scheduler struct {
	gocron gocron.Scheduler
	logger zerolog.Logger

	mu    sync.RWMutex
	tasks map[string]*taskEntry

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new scheduler.
func New(logger zerolog.Logger) (*Scheduler, error) {
	gs, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		gocron: gs,
		logger: logger.With().Str("component", "scheduler").Logger(),
		tasks:  make(map[string]*taskEntry),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// RegisterTask registers a new scheduled task.
func (s *Scheduler) RegisterTask(cfg TaskConfig) error {
	if cfg.Func == nil {
		return fmt.Errorf("task %q has no function", cfg.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[cfg.ID]; exists {
		return fmt.Errorf("task with ID %q already registered", cfg.ID)
	}

	job, err := s.gocron.NewJob(
		gocron.CronJob(cfg.Cron, false),
		gocron.NewTask(func() { s.executeTask(cfg.ID) }),
		gocron.WithName(cfg.Name),
		gocron.WithTags(cfg.ID),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job for task %q: %w", cfg.ID, err)
	}

	s.tasks[cfg.ID] = &taskEntry{config: cfg, job: job}

	s.logger.Info().
		Str("id", cfg.ID).
		Str("cron", cfg.Cron).
		Bool("runOnStart", cfg.RunOnStart).
		Msg("Registered task")

	return nil
}

func (s *Scheduler) executeTask(taskID string) {
	s.mu.Lock()
	entry, exists := s.tasks[taskID]
	if !exists || entry.running {
		s.mu.Unlock()
		return
	}
	entry.running = true
	s.mu.Unlock()

	start := time.Now()
	err := entry.config.Func(s.ctx)

	s.mu.Lock()
	entry.running = false
	entry.lastRun = &start
	s.mu.Unlock()

	log := s.logger.With().Str("id", taskID).Dur("duration", time.Since(start)).Logger()
	if err != nil {
		log.Error().Err(err).Msg("Task failed")
		return
	}
	log.Debug().Msg("Task completed")
}

// Start starts the scheduler and runs any tasks configured with RunOnStart.
func (s *Scheduler) Start() {
	s.logger.Info().Msg("Starting scheduler")
	s.gocron.Start()

	s.mu.RLock()
	var startup []string
	for id, entry := range s.tasks {
		if entry.config.RunOnStart {
			startup = append(startup, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range startup {
		go s.executeTask(id)
	}
}

// Stop cancels running tasks and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	s.logger.Info().Msg("Stopping scheduler")
	s.cancel()
	return s.gocron.Shutdown()
}

// RunNow runs a task synchronously.
func (s *Scheduler) RunNow(taskID string) error {
	s.mu.RLock()
	entry, exists := s.tasks[taskID]
	running := exists && entry.running
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if running {
		return fmt.Errorf("task %q is already running", taskID)
	}

	s.executeTask(taskID)
	return nil
}

// ListTasks returns every registered task, ordered by ID.
func (s *Scheduler) ListTasks() []TaskInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]TaskInfo, 0, len(s.tasks))
	for _, entry := range s.tasks {
		info := TaskInfo{
			ID:          entry.config.ID,
			Name:        entry.config.Name,
			Description: entry.config.Description,
			Cron:        entry.config.Cron,
			LastRun:     entry.lastRun,
			Running:     entry.running,
		}
		if nextRun, err := entry.job.NextRun(); err == nil && !nextRun.IsZero() {
			info.NextRun = &nextRun
		}
		tasks = append(tasks, info)
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}
