package state

import (
	"sync"
	"time"
)

// Scheduler runs deferred work such as the network phase of a load.
type Scheduler interface {
	Schedule(task func())
}

// ImmediateScheduler runs tasks inline.
type ImmediateScheduler struct{}

func (ImmediateScheduler) Schedule(task func()) { task() }

// LaneScheduler is a low-priority lane: one worker goroutine runs queued
// tasks in order, each after a settle delay.
//
// Tasks scheduled after Close run inline.
type LaneScheduler struct {
	settle time.Duration

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	stop   chan struct{}
	done   chan struct{}
}

func NewLaneScheduler(settle time.Duration) *LaneScheduler {
	l := &LaneScheduler{settle: settle, stop: make(chan struct{}), done: make(chan struct{})}
	l.cond = sync.NewCond(&l.mu)
	go l.run()
	return l
}

func (l *LaneScheduler) Schedule(task func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		task()
		return
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()
	l.cond.Signal()
}

// Close stops the worker after running queued tasks without further delay.
func (l *LaneScheduler) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.done
		return
	}
	l.closed = true
	close(l.stop)
	l.mu.Unlock()
	l.cond.Broadcast()
	<-l.done
}

func (l *LaneScheduler) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		task := l.queue[0]
		l.queue = l.queue[1:]
		closed := l.closed
		l.mu.Unlock()

		if !closed && l.settle > 0 {
			timer := time.NewTimer(l.settle)
			select {
			case <-timer.C:
			case <-l.stop:
				timer.Stop()
			}
		}
		task()
	}
}
