package worker

import (
	"sync/atomic"

	"github.com/robfig/cron/v3"
)

// IJob job interface
type IJob interface {
	Start() error
	Run()
	Stop() error
}

type OnWork func() error

// BaseJob cron driven job, a tick is skipped while the previous one still runs
type BaseJob struct {
	Cron   *cron.Cron
	OnWork OnWork

	running int32
}

func (job *BaseJob) Start() error {
	job.Cron.Start()
	return nil
}

// Stop stop scheduling and wait for the running tick
func (job *BaseJob) Stop() error {
	<-job.Cron.Stop().Done()
	return nil
}

func (job *BaseJob) Run() {
	if !atomic.CompareAndSwapInt32(&job.running, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&job.running, 0)

	_ = job.OnWork()
}

// IsRunning a tick is in progress
func (job *BaseJob) IsRunning() bool {
	return atomic.LoadInt32(&job.running) == 1
}
