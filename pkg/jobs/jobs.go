// Package jobs holds the scheduled maintenance jobs.
package jobs

import (
	"context"
	"sort"
	"sync"
)

// Job is a named job and its scheduler entry.
type Job struct {
	ID     int
	Name   string
	Runner Runner
}

// Runner is a job runner.
type Runner interface {
	// Spec returns the cron schedule of the job.
	Spec(context.Context) string
	Func(context.Context) func()
}

var (
	mtx  sync.Mutex
	jobs = map[string]*Job{}
)

// Register registers a job. Registering a name twice replaces the job.
func Register(name string, runner Runner) {
	mtx.Lock()
	defer mtx.Unlock()
	jobs[name] = &Job{Name: name, Runner: runner}
}

// Get returns the job registered under name.
func Get(name string) (*Job, bool) {
	mtx.Lock()
	defer mtx.Unlock()
	j, ok := jobs[name]
	return j, ok
}

// List returns the registered jobs ordered by name.
func List() []*Job {
	mtx.Lock()
	defer mtx.Unlock()
	list := make([]*Job, 0, len(jobs))
	for _, j := range jobs {
		list = append(list, j)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}
