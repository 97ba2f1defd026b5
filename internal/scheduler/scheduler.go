package scheduler

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	sched    gocron.Scheduler
	initOnce sync.Once
	initErr  error
	stopOnce sync.Once
	stopErr  error
)

var (
	ErrNotInitialized = errors.New("scheduler not initialized")
	ErrEmptyJobName   = errors.New("job name is required")
	ErrEmptyCronExpr  = errors.New("cron expression is required")
)

// Init creates the process-wide scheduler. Safe to call more than once.
func Init() error {
	initOnce.Do(func() {
		s, err := gocron.NewScheduler(
			gocron.WithGlobalJobOptions(
				gocron.WithEventListeners(
					gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
						log.Error().
							Str("job_id", jobID.String()).
							Str("job_name", jobName).
							Interface("panic", recoverData).
							Msg("Scheduler job panicked")
					}),
				),
			),
		)
		if err != nil {
			initErr = err
			return
		}
		sched = s
		log.Info().Msg("Scheduler initialized")
	})
	return initErr
}

// Start begins running registered jobs.
func Start() error {
	if sched == nil {
		return ErrNotInitialized
	}
	log.Info().Msg("Scheduler starting")
	sched.Start()
	return nil
}

// Stop shuts the scheduler down and waits for running jobs to drain.
func Stop() error {
	if sched == nil {
		return ErrNotInitialized
	}
	stopOnce.Do(func() {
		log.Info().Msg("Scheduler stopping")
		stopErr = sched.Shutdown()
	})
	return stopErr
}

// AddJob registers a named cron job.
func AddJob(name, cronExpr string, task func()) (gocron.Job, error) {
	if sched == nil {
		return nil, ErrNotInitialized
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyJobName
	}
	if strings.TrimSpace(cronExpr) == "" {
		return nil, ErrEmptyCronExpr
	}

	jobLogger := log.With().Str("job_name", name).Str("cron", cronExpr).Logger()

	job, err := sched.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			jobLogger.Debug().Msg("Scheduler job started")
			task()
			jobLogger.Debug().Msg("Scheduler job completed")
		}),
		gocron.WithName(name),
	)
	if err != nil {
		jobLogger.Error().Err(err).Msg("Failed to register scheduler job")
		return nil, err
	}
	jobLogger.Info().Msg("Scheduler job registered")
	return job, nil
}
