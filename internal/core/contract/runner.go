package contract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Octrafic/qakit/internal/config"
	"github.com/Octrafic/qakit/internal/core/auth"
	"github.com/Octrafic/qakit/internal/core/tester"
	"github.com/Octrafic/qakit/internal/infra/logger"
)

// ErrUnhealthy is returned when the health check fails
var ErrUnhealthy = errors.New("server is not available")

// Phase names one stage of a run
type Phase string

const (
	PhaseHealthCheck  Phase = "HEALTH_CHECK"
	PhaseSpecValidate Phase = "SPEC_VALIDATE"
	PhaseAuth         Phase = "AUTH"
	PhaseExecuteCases Phase = "EXECUTE_CASES"
	PhaseSummarize    Phase = "SUMMARIZE"
)

// Observer receives progress of a run. Every method is called from the
// goroutine running Run.
type Observer interface {
	PhaseStarted(p Phase)
	HealthChecked(status int, err error)
	SpecLoaded(spec *Spec, err error)
	AuthFinished(out *auth.Outcome)
	CaseStarted(c Case)
	CaseFinished(c Case, res *tester.TestResult, err error)
}

// NopObserver ignores every event
type NopObserver struct{}

func (NopObserver) PhaseStarted(Phase)                           {}
func (NopObserver) HealthChecked(int, error)                     {}
func (NopObserver) SpecLoaded(*Spec, error)                      {}
func (NopObserver) AuthFinished(*auth.Outcome)                   {}
func (NopObserver) CaseStarted(Case)                             {}
func (NopObserver) CaseFinished(Case, *tester.TestResult, error) {}

// RunSummary is the outcome of executing every case
type RunSummary struct {
	BaseURL    string    `json:"base_url"`
	SpecPath   string    `json:"spec_path"`
	SpecHash   string    `json:"spec_hash"`
	AuthMode   string    `json:"auth_mode"`
	Passed     int       `json:"passed"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	Errors     []string  `json:"errors"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Total counts executed cases
func (s *RunSummary) Total() int {
	return s.Passed + s.Failed
}

// OK reports whether no case failed
func (s *RunSummary) OK() bool {
	return s.Failed == 0
}

// ExitCode maps the summary onto the process exit status
func (s *RunSummary) ExitCode() int {
	if s.OK() {
		return 0
	}
	return 1
}

// Runner drives one contract run against a server
type Runner struct {
	cfg      config.ContractConfig
	executor *tester.Executor
	observer Observer
	now      func() time.Time
}

func NewRunner(cfg config.ContractConfig, observer Observer) *Runner {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Runner{
		cfg:      cfg,
		executor: tester.NewExecutor(cfg.BaseURL, &auth.NoAuth{}, cfg.RequestTimeout),
		observer: observer,
		now:      time.Now,
	}
}

// Run executes the phases in order. Health and spec failures abort with an
// error; auth failures degrade to unauthenticated requests; case failures are
// recorded in the returned summary.
func (r *Runner) Run(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{
		BaseURL:   r.executor.BaseURL(),
		SpecPath:  r.cfg.SpecPath,
		Errors:    []string{},
		StartedAt: r.now(),
	}

	r.observer.PhaseStarted(PhaseHealthCheck)
	status, err := r.executor.Health(ctx, r.cfg.HealthPath, r.cfg.HealthTimeout)
	r.observer.HealthChecked(status, err)
	if err != nil {
		logger.Error("Health check failed", logger.Int("status", status), logger.Err(err))
		return nil, fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}

	r.observer.PhaseStarted(PhaseSpecValidate)
	spec, err := LoadSpec(ctx, r.cfg.SpecPath)
	r.observer.SpecLoaded(spec, err)
	if err != nil {
		logger.Error("Spec validation failed", logger.String("path", r.cfg.SpecPath), logger.Err(err))
		return nil, err
	}
	summary.SpecHash = spec.Hash

	r.observer.PhaseStarted(PhaseAuth)
	session := auth.NewSession(r.executor.BaseURL(), r.cfg.LoginPath, r.cfg.RegisterPath, auth.Credentials{
		Email:    r.cfg.User.Email,
		Password: r.cfg.User.Password,
		Name:     r.cfg.User.Name,
	}, r.executor.Client())
	outcome := session.Acquire(ctx)
	r.observer.AuthFinished(outcome)
	r.executor.UpdateAuthProvider(outcome.Provider)
	summary.AuthMode = outcome.Provider.Type()

	r.observer.PhaseStarted(PhaseExecuteCases)
	for _, c := range spec.Cases() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if r.cfg.AuthSegment != "" && strings.Contains(c.PathTemplate, r.cfg.AuthSegment) {
			summary.Skipped++
			continue
		}
		r.runCase(ctx, c, summary)
	}

	r.observer.PhaseStarted(PhaseSummarize)
	summary.FinishedAt = r.now()
	logger.Info("Contract run finished",
		logger.Int("passed", summary.Passed),
		logger.Int("failed", summary.Failed),
		logger.Int("skipped", summary.Skipped),
		logger.Bool("ok", summary.OK()))
	return summary, nil
}

func (r *Runner) runCase(ctx context.Context, c Case, summary *RunSummary) {
	r.observer.CaseStarted(c)

	res, err := r.executor.ExecuteTest(ctx, tester.Request{
		Method:  c.Method,
		Path:    c.Target(),
		Headers: c.Headers,
		Body:    c.Body,
	})
	r.observer.CaseFinished(c, res, err)

	switch {
	case err != nil:
		summary.Failed++
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s %s: %v", c.Method, c.PathTemplate, err))
	case res.StatusCode >= http.StatusInternalServerError:
		summary.Failed++
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s %s: %d", c.Method, c.PathTemplate, res.StatusCode))
	default:
		summary.Passed++
	}
}
