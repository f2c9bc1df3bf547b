// Package cleanup collects shutdown jobs so that long-lived resources
// (connection pools, listeners) registered anywhere in the app can be
// released from one place on exit.
package cleanup

import "log/slog"

type Job struct {
	Name string
	F    func() error
}

var jobs []*Job

func Register(j *Job) {
	jobs = append(jobs, j)
}

// CleanUp runs registered jobs in reverse registration order, so resources
// opened last are closed first.
func CleanUp() {
	for i := len(jobs) - 1; i >= 0; i-- {
		j := jobs[i]
		if err := j.F(); err != nil {
			slog.Error("cleanup job failed", slog.String("job", j.Name), slog.String("error", err.Error()))
			continue
		}
		slog.Info("cleanup job finished", slog.String("job", j.Name))
	}
}
