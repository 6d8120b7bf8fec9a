package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// CheckCBIR is the name of the retrieval engine check.
const CheckCBIR = "cbir"

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	cbir UpstreamChecker
}

// New creates a Service. cbir can be nil, in which case the process only reports itself alive.
func New(cbir UpstreamChecker) *Service {
	return &Service{cbir: cbir}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.cbir != nil {
		if err := s.cbir.HealthCheck(ctx); err != nil {
			checks[CheckCBIR] = CheckError
		} else {
			checks[CheckCBIR] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
