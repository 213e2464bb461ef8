// Package health provides liveness, readiness and version endpoints.
//
// Liveness only says the process is up. Readiness runs every registered
// check concurrently, each under its own timeout, and answers 503 when any
// of them fails.
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck("backend", health.BackendCheck(backend))
//	checker.RegisterCheck("history", health.PingCheck(store))
//
//	r.Get(cfg.Telemetry.Health.LivenessPath, checker.LivenessHandler())
//	r.Get(cfg.Telemetry.Health.ReadinessPath, checker.ReadinessHandler())
package health
