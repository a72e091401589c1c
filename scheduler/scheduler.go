package scheduler

// Package scheduler runs the recurring sync jobs:
// - a daily incremental sync after US market close
// - a weekly full replace to repair any drift in stored history
//
// The jobs are implemented in jobs.go.
