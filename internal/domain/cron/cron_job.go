package cron

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arisefit-lab/backend/pkg/xcontext"
)

type CronJob interface {
	Do(context.Context)
	RunNow() bool
	Next() time.Time
}

type jobState struct {
	timer *time.Timer

	// running coalesces triggers. A trigger firing while the previous run
	// is still in flight is dropped, not queued.
	running atomic.Bool
}

type CronJobManager struct {
	mutex sync.Mutex
	wait  sync.WaitGroup
	jobs  map[CronJob]*jobState
}

func NewCronJobManager() *CronJobManager {
	return &CronJobManager{jobs: make(map[CronJob]*jobState)}
}

func (m *CronJobManager) Register(job CronJob) {
	m.jobs[job] = &jobState{}
}

func (m *CronJobManager) Start(ctx context.Context) {
	xcontext.Logger(ctx).Infof("Cron job manager started")

	for job := range m.jobs {
		if job.RunNow() {
			go m.run(ctx, job)
		} else {
			m.schedule(ctx, job)
		}

		m.wait.Add(1)
	}

	m.wait.Wait()
	xcontext.Logger(ctx).Infof("Cron job manager stopped")
}

func (m *CronJobManager) Cancel(ctx context.Context) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for job, state := range m.jobs {
		if state.timer == nil {
			xcontext.Logger(ctx).Warnf("Stop a job that hasn't started: %T", job)
			continue
		}

		state.timer.Stop()
		m.wait.Done()
	}

	// Clear all jobs to not schedule them again.
	m.jobs = make(map[CronJob]*jobState)
}

func (m *CronJobManager) run(ctx context.Context, job CronJob) {
	state := m.state(job)
	if state == nil {
		return
	}

	if !state.running.CompareAndSwap(false, true) {
		xcontext.Logger(ctx).Warnf("%T is still running, trigger ignored", job)
		m.schedule(ctx, job)
		return
	}

	xcontext.Logger(ctx).Infof("%T is running...", job)
	job.Do(ctx)
	xcontext.Logger(ctx).Infof("%T ok", job)
	state.running.Store(false)

	m.schedule(ctx, job)
}

func (m *CronJobManager) state(job CronJob) *jobState {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.jobs[job]
}

func (m *CronJobManager) schedule(ctx context.Context, job CronJob) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Only schedule jobs which existed in job list.
	if state, ok := m.jobs[job]; ok {
		state.timer = time.AfterFunc(time.Until(job.Next()), func() { m.run(ctx, job) })
	}
}
