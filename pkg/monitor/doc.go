// Package monitor runs violation scans on a cron schedule and records them
// in the scan history.
//
// Each run scans every policy, stores the result, prunes history down to
// the configured retention count and logs the policies whose violation
// counts changed since the previous run.
package monitor
