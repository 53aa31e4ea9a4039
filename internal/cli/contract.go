package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/Octrafic/qakit/internal/core/auth"
	"github.com/Octrafic/qakit/internal/core/contract"
	"github.com/Octrafic/qakit/internal/core/tester"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/muesli/reflow/wordwrap"
)

const (
	// defaultWidth is used for wrapping when the terminal size is unknown
	defaultWidth = 80

	passBarWidth = 40
)

// ContractPrinter writes the progress of a contract run to a terminal
type ContractPrinter struct {
	out   io.Writer
	width int
}

var _ contract.Observer = (*ContractPrinter)(nil)

func NewContractPrinter(out io.Writer, width int) *ContractPrinter {
	if width <= 0 {
		width = defaultWidth
	}
	return &ContractPrinter{out: out, width: width}
}

func (p *ContractPrinter) println(s string) {
	_, _ = fmt.Fprintln(p.out, s)
}

// Header prints the banner line
func (p *ContractPrinter) Header() {
	p.println(Title("=== API Contract Testing ==="))
}

func (p *ContractPrinter) PhaseStarted(ph contract.Phase) {
	switch ph {
	case contract.PhaseSpecValidate:
		p.println("Validating OpenAPI specification...")
	case contract.PhaseAuth:
		p.println("Starting contract tests...")
	}
}

func (p *ContractPrinter) HealthChecked(status int, err error) {
	switch {
	case err == nil:
		p.println(Success("✓ Server is running and healthy"))
	case errors.Is(err, tester.ErrUnexpectedStatus):
		p.println(Error(fmt.Sprintf("✗ Server health check failed: %d", status)))
	default:
		p.println(Error(fmt.Sprintf("✗ Cannot connect to server: %v", err)))
	}
	if err != nil {
		p.println("Server is not available. Please start the server first.")
	}
}

func (p *ContractPrinter) SpecLoaded(spec *contract.Spec, err error) {
	if err != nil {
		p.println(p.wrap(Error(fmt.Sprintf("✗ OpenAPI specification is invalid: %v", err))))
		return
	}
	p.println(Success("✓ OpenAPI specification is valid"))
	p.println(Muted("Loading OpenAPI spec from: " + spec.Path))
}

func (p *ContractPrinter) AuthFinished(out *auth.Outcome) {
	if out.Registered {
		p.println(fmt.Sprintf("Registered user: %s", out.Email))
	}
	if out.Authenticated() {
		return
	}
	if out.Reason != "" {
		p.println(p.wrap(Warning(out.Reason)))
	}
	p.println(Warning("Failed to get authentication token, proceeding without auth"))
}

func (p *ContractPrinter) CaseStarted(c contract.Case) {
	p.println(fmt.Sprintf("Testing %s %s", c.Method, c.PathTemplate))
}

func (p *ContractPrinter) CaseFinished(_ contract.Case, res *tester.TestResult, err error) {
	switch {
	case err != nil:
		p.println(p.wrap(Error(fmt.Sprintf("  ✗ Error: %v", err))))
	case res.StatusCode >= 500:
		p.println(Error(fmt.Sprintf("  ✗ %d", res.StatusCode)))
	default:
		p.println(Success(fmt.Sprintf("  ✓ %d", res.StatusCode)))
	}
}

// Summary prints counts, the error list, the pass ratio and the verdict
func (p *ContractPrinter) Summary(s *contract.RunSummary) {
	p.println("")
	p.println(Title("Test Summary:"))
	p.println(Success(fmt.Sprintf("✓ Passed: %d", s.Passed)))
	p.println(Error(fmt.Sprintf("✗ Failed: %d", s.Failed)))

	if len(s.Errors) > 0 {
		p.println("")
		p.println("Errors:")
		for _, e := range s.Errors {
			p.println(p.wrap("  - " + e))
		}
	}

	if total := s.Total(); total > 0 {
		p.println("")
		p.println(PassBar(s.Passed, total) + Muted(fmt.Sprintf(" %d/%d", s.Passed, total)))
	}

	p.println("")
	if s.OK() {
		p.println(Success("✅ All contract tests passed"))
	} else {
		p.println(Error("❌ Contract tests failed"))
	}
}

// Failed prints the verdict for a run that aborted before executing cases
func (p *ContractPrinter) Failed() {
	p.println("")
	p.println(Error("❌ Contract tests failed"))
}

func (p *ContractPrinter) wrap(s string) string {
	return wordwrap.String(s, p.width)
}

// PassBar renders a static bar for passed/total
func PassBar(passed, total int) string {
	ratio := 0.0
	if total > 0 {
		ratio = float64(passed) / float64(total)
	}
	bar := progress.New(
		progress.WithGradient(Theme.BarStart, Theme.BarEnd),
		progress.WithWidth(passBarWidth),
		progress.WithoutPercentage(),
	)
	return bar.ViewAs(ratio)
}
