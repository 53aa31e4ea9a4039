package metrics

import (
	"fmt"
	"strings"
)

const (
	passRateTarget        = 90.0
	lowCoverageRatio      = 0.5
	allDevicesKey         = "All"
	allDevicesCoverageMin = 0.8
)

type rule func(a *Analysis) (string, bool)

var rules = []rule{
	criticalFailuresRule,
	executionBacklogRule,
	passRateRule,
	lowCoverageRule(func(a *Analysis) Breakdown { return a.Features }, "Improve test coverage for: %s"),
	allDevicesRule,
	lowCoverageRule(func(a *Analysis) Breakdown { return a.Roles }, "Improve role-based testing for: %s"),
}

// Recommendations evaluates every rule against a and returns the messages of
// the rules that fired, in rule order.
func Recommendations(a *Analysis) []string {
	var out []string
	for _, r := range rules {
		if msg, ok := r(a); ok {
			out = append(out, msg)
		}
	}
	return out
}

func criticalFailuresRule(a *Analysis) (string, bool) {
	p0, _ := a.Priorities.Get(CriticalPriority)
	if p0.Fail == 0 {
		return "", false
	}
	return fmt.Sprintf("URGENT: Address %d %s failures before proceeding with other tests", p0.Fail, CriticalPriority), true
}

func executionBacklogRule(a *Analysis) (string, bool) {
	if a.Overall.NotExecuted <= a.Overall.Executed {
		return "", false
	}
	return "Increase test execution - more tests pending than completed", true
}

func passRateRule(a *Analysis) (string, bool) {
	if a.Overall.PassRate >= passRateTarget {
		return "", false
	}
	return "Focus on improving pass rate - currently below 90%", true
}

// lowCoverageRule names every non-empty category executed below
// lowCoverageRatio, in encounter order, in one message.
func lowCoverageRule(pick func(*Analysis) Breakdown, format string) rule {
	return func(a *Analysis) (string, bool) {
		g := pick(a)
		var low []string
		for _, key := range g.Order {
			ratio, ok := g.Buckets[key].executedRatio()
			if ok && ratio < lowCoverageRatio {
				low = append(low, key)
			}
		}
		if len(low) == 0 {
			return "", false
		}
		return fmt.Sprintf(format, strings.Join(low, ", ")), true
	}
}

func allDevicesRule(a *Analysis) (string, bool) {
	b, ok := a.Devices.Get(allDevicesKey)
	if !ok {
		return "", false
	}
	ratio, ok := b.executedRatio()
	if !ok || ratio >= allDevicesCoverageMin {
		return "", false
	}
	return "Increase device-specific testing - many tests only cover 'All' devices", true
}
