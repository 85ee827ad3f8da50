// Package scheduler runs the periodic jobs of the server: scheduled SMS
// dispatch and housekeeping.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"fairway/app/services"
)

// Dispatcher sends the SMS drafts whose scheduled time has passed.
type Dispatcher interface {
	RunScheduled(ctx context.Context, dryRun bool) (*services.DispatchReport, error)
}

// Scheduler wraps a cron runner whose jobs never overlap themselves.
type Scheduler struct {
	cron   *cron.Cron
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func New(log *zap.Logger) *Scheduler {
	cl := cronLogger{log.Sugar()}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddDispatch registers the scheduled SMS run on spec.
func (s *Scheduler) AddDispatch(spec string, d Dispatcher, dryRun bool) error {
	job := &dispatchJob{ctx: s.ctx, dispatcher: d, dryRun: dryRun, log: s.log}
	if _, err := s.cron.AddJob(spec, job); err != nil {
		return fmt.Errorf("invalid dispatch schedule %q: %w", spec, err)
	}
	s.log.Info("scheduled dispatch registered", zap.String("schedule", spec), zap.Bool("dry_run", dryRun))
	return nil
}

// Every registers fn under name on spec.
func (s *Scheduler) Every(spec, name string, fn func(ctx context.Context)) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.log.Debug("job started", zap.String("job", name))
		fn(s.ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs, cancels running jobs and waits for them until ctx
// is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type dispatchJob struct {
	ctx        context.Context
	dispatcher Dispatcher
	dryRun     bool
	log        *zap.Logger
}

func (j *dispatchJob) Run() {
	start := time.Now()
	report, err := j.dispatcher.RunScheduled(j.ctx, j.dryRun)
	switch {
	case errors.Is(err, services.ErrNotConfigured):
		j.log.Warn("scheduled dispatch skipped", zap.Error(err))
	case err != nil:
		j.log.Error("scheduled dispatch failed", zap.Error(err))
	default:
		j.log.Info("scheduled dispatch finished",
			zap.Int("sent", report.Sent),
			zap.Int("processed", len(report.Results)),
			zap.Bool("dry_run", report.DryRun),
			zap.Duration("took", time.Since(start)))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
