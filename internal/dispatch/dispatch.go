// SPDX-License-Identifier: GPL-3.0-or-later

// Package dispatch implements the admission-controlled scheduler that sits
// between [Call] and the interceptor chain (spec.md §4.K "Dispatcher").
//
// Synchronous calls run on the caller's own goroutine once admitted;
// asynchronous calls run on a goroutine-per-submission, matching OkHttp's
// "shared executor" without imposing an artificial second concurrency cap.
// Both pools are gated by the same two counters, MaxRequests and
// MaxRequestsPerHost; a call that does not fit waits on a FIFO ready queue
// until a running call releases its slot.
package dispatch

import (
	"container/list"
	"context"
	"sync"

	"github.com/bassosimone/httpcore/slogx"
)

// Config bounds dispatcher admission. The defaults match OkHttp's
// Dispatcher: 64 total concurrent calls, 5 per host.
type Config struct {
	MaxRequests        int
	MaxRequestsPerHost int
}

// NewConfig returns the default [Config].
func NewConfig() *Config {
	return &Config{MaxRequests: 64, MaxRequestsPerHost: 5}
}

// Job is one schedulable unit of work: a single [Call]'s network
// execution, type-erased so the [Dispatcher] need not know a call's
// result type.
type Job interface {
	// Host identifies the authority this job counts against for
	// MaxRequestsPerHost.
	Host() string

	// IsCanceled reports whether cancellation has been requested,
	// regardless of whether the job has started running.
	IsCanceled() bool

	// Execute runs the job's body. The Dispatcher calls this at most
	// once, after admission.
	Execute(ctx context.Context)
}

// Dispatcher schedules [Job]s under the two concurrency limits in its
// [Config] (spec.md §4.K).
type Dispatcher struct {
	cfg    *Config
	logger slogx.SLogger

	mu             sync.Mutex
	runningTotal   int
	runningPerHost map[string]int
	ready          *list.List // of *waitingJob, FIFO
}

// New builds a [*Dispatcher].
func New(cfg *Config, logger slogx.SLogger) *Dispatcher {
	return &Dispatcher{
		cfg:            cfg,
		logger:         logger,
		runningPerHost: make(map[string]int),
		ready:          list.New(),
	}
}

type waitingJob struct {
	job   Job
	admit chan struct{}
}

// ExecuteSync runs job on the calling goroutine, as spec.md §4.K requires
// for synchronous calls: "synchronous calls use the caller thread". It
// blocks until job is admitted and has finished, or until ctx is done
// while the job is still queued.
func (d *Dispatcher) ExecuteSync(ctx context.Context, job Job) {
	wj, admitted := d.tryAdmitOrEnqueue(job)
	if !admitted {
		select {
		case <-wj.admit:
		case <-ctx.Done():
			if d.abandonQueued(wj) {
				d.logger.Info("dispatch: sync call abandoned while queued", "host", job.Host())
				return
			}
			// Lost the race: promoteLocked already admitted this job
			// concurrently. Wait for the (already-closed) channel so we
			// still run it and release its slot.
			<-wj.admit
		}
	}
	d.runAndRelease(ctx, job)
}

// EnqueueAsync submits job to the shared asynchronous pool (spec.md §4.K:
// "asynchronous calls submit to a shared executor"): one goroutine per
// submission, admission-gated by the same counters ExecuteSync uses.
func (d *Dispatcher) EnqueueAsync(job Job) {
	go func() {
		wj, admitted := d.tryAdmitOrEnqueue(job)
		if !admitted {
			<-wj.admit
		}
		d.runAndRelease(context.Background(), job)
	}()
}

func (d *Dispatcher) tryAdmitOrEnqueue(job Job) (*waitingJob, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.eligibleLocked(job.Host()) {
		d.admitLocked(job.Host())
		return nil, true
	}
	wj := &waitingJob{job: job, admit: make(chan struct{})}
	d.ready.PushBack(wj)
	d.logger.Info("dispatch: call queued", "host", job.Host(), "ready_len", d.ready.Len())
	return wj, false
}

func (d *Dispatcher) eligibleLocked(host string) bool {
	return d.runningTotal < d.cfg.MaxRequests && d.runningPerHost[host] < d.cfg.MaxRequestsPerHost
}

func (d *Dispatcher) admitLocked(host string) {
	d.runningTotal++
	d.runningPerHost[host]++
}

func (d *Dispatcher) runAndRelease(ctx context.Context, job Job) {
	defer d.release(job.Host())
	if job.IsCanceled() {
		return
	}
	job.Execute(ctx)
}

// release frees one admission slot for host and promotes every now-eligible
// ready job (spec.md §4.K: "as running calls complete they pull the next
// eligible ready call").
func (d *Dispatcher) release(host string) {
	d.mu.Lock()
	d.runningTotal--
	d.runningPerHost[host]--
	if d.runningPerHost[host] <= 0 {
		delete(d.runningPerHost, host)
	}
	d.promoteLocked()
	d.mu.Unlock()
}

// promoteLocked scans the ready queue once, promoting every job that now
// fits within the limits and dropping any that were canceled while
// waiting. It does not stop at the first ineligible job: a later job for
// a different, non-saturated host must not starve behind one that is.
func (d *Dispatcher) promoteLocked() {
	for e := d.ready.Front(); e != nil; {
		next := e.Next()
		wj := e.Value.(*waitingJob)
		switch {
		case wj.job.IsCanceled():
			d.ready.Remove(e)
		case d.eligibleLocked(wj.job.Host()):
			d.admitLocked(wj.job.Host())
			d.ready.Remove(e)
			close(wj.admit)
		}
		e = next
	}
}

// abandonQueued removes wj from the ready queue if it is still pending,
// reporting whether it did so. A false return means promoteLocked already
// admitted wj concurrently, in which case the caller must still run (and
// release) the job rather than leak its slot.
func (d *Dispatcher) abandonQueued(wj *waitingJob) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for e := d.ready.Front(); e != nil; e = e.Next() {
		if e.Value.(*waitingJob) == wj {
			d.ready.Remove(e)
			return true
		}
	}
	return false
}
