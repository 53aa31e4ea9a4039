package metrics

import (
	"math"
	"slices"
)

// Status values with a meaning to the aggregator. Anything else, including
// the empty string, counts as not executed.
const (
	StatusPass       = "Pass"
	StatusFail       = "Fail"
	StatusBlocked    = "Blocked"
	StatusSkipped    = "Skipped"
	StatusInProgress = "In Progress"
)

// CriticalPriority is the priority whose failures are surfaced individually
const CriticalPriority = "P0"

// CriticalFailure is a failing record of CriticalPriority
type CriticalFailure struct {
	Feature     string `json:"feature"`
	Description string `json:"description"`
	Ticket      string `json:"ticket,omitempty"`
}

// Bucket holds the counters of one category value
type Bucket struct {
	Total       int     `json:"total"`
	Pass        int     `json:"pass"`
	Fail        int     `json:"fail"`
	Blocked     int     `json:"blocked"`
	Skipped     int     `json:"skipped"`
	InProgress  int     `json:"in_progress"`
	Executed    int     `json:"executed"`
	NotExecuted int     `json:"not_executed"`
	PassRate    float64 `json:"pass_rate"`

	CriticalFailures []CriticalFailure `json:"critical_failures,omitempty"`
}

func (b *Bucket) add(r Record) {
	b.Total++
	switch r.Status {
	case StatusPass:
		b.Pass++
		b.Executed++
	case StatusFail:
		b.Fail++
		b.Executed++
	case StatusBlocked:
		b.Blocked++
	case StatusSkipped:
		b.Skipped++
	case StatusInProgress:
		b.InProgress++
	}
}

func (b *Bucket) finish() {
	b.NotExecuted = b.Total - b.Executed - b.Blocked - b.Skipped - b.InProgress
	b.PassRate = 0
	if b.Executed > 0 {
		b.PassRate = round2(float64(b.Pass) / float64(b.Executed) * 100)
	}
}

// ExecutionRate is the executed share of Total in percent, 0 for an empty bucket
func (b Bucket) ExecutionRate() float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(b.Executed) / float64(b.Total) * 100
}

// executedRatio is Executed/Total and reports false for an empty bucket
func (b Bucket) executedRatio() (float64, bool) {
	if b.Total == 0 {
		return 0, false
	}
	return float64(b.Executed) / float64(b.Total), true
}

// Breakdown maps each observed category value to its bucket. Order keeps the
// first-encounter order of the values.
type Breakdown struct {
	Order   []string          `json:"order"`
	Buckets map[string]Bucket `json:"buckets"`
}

// Get returns the bucket for key
func (g Breakdown) Get(key string) (Bucket, bool) {
	b, ok := g.Buckets[key]
	return b, ok
}

// Sorted returns the category values in lexicographic order
func (g Breakdown) Sorted() []string {
	keys := slices.Clone(g.Order)
	slices.Sort(keys)
	return keys
}

func (g Breakdown) Len() int {
	return len(g.Order)
}

// Selector picks the category value of a record
type Selector func(Record) string

func SelectFeature(r Record) string  { return r.Feature }
func SelectRole(r Record) string     { return r.Role }
func SelectDevice(r Record) string   { return r.DeviceSize }
func SelectPriority(r Record) string { return r.Priority }

// GroupBy buckets records by the value sel returns
func GroupBy(records []Record, sel Selector) Breakdown {
	return group(records, sel, nil)
}

func group(records []Record, sel Selector, onFail func(key string, b *Bucket, r Record)) Breakdown {
	buckets := make(map[string]*Bucket)
	var order []string

	for _, r := range records {
		key := sel(r)
		b, ok := buckets[key]
		if !ok {
			b = &Bucket{}
			buckets[key] = b
			order = append(order, key)
		}
		b.add(r)
		if onFail != nil && r.Status == StatusFail {
			onFail(key, b, r)
		}
	}

	out := Breakdown{Order: order, Buckets: make(map[string]Bucket, len(buckets))}
	for key, b := range buckets {
		b.finish()
		out.Buckets[key] = *b
	}
	return out
}

// Overall aggregates every record into a single bucket
func Overall(records []Record) Bucket {
	var b Bucket
	for _, r := range records {
		b.add(r)
	}
	b.finish()
	return b
}

func ByFeature(records []Record) Breakdown { return GroupBy(records, SelectFeature) }

func ByRole(records []Record) Breakdown { return GroupBy(records, SelectRole) }

func ByDevice(records []Record) Breakdown { return GroupBy(records, SelectDevice) }

// ByPriority groups by priority and also collects every failing
// CriticalPriority record, in encounter order, on that priority's bucket.
func ByPriority(records []Record) Breakdown {
	return group(records, SelectPriority, func(key string, b *Bucket, r Record) {
		if key != CriticalPriority {
			return
		}
		b.CriticalFailures = append(b.CriticalFailures, CriticalFailure{
			Feature:     r.Feature,
			Description: r.Description,
			Ticket:      r.Ticket,
		})
	})
}

// PriorityCount is the number of records carrying one priority value
type PriorityCount struct {
	Priority string `json:"priority"`
	Count    int    `json:"count"`
}

// PriorityDistribution counts records per priority in encounter order
func PriorityDistribution(records []Record) []PriorityCount {
	var out []PriorityCount
	index := make(map[string]int)
	for _, r := range records {
		i, ok := index[r.Priority]
		if !ok {
			i = len(out)
			index[r.Priority] = i
			out = append(out, PriorityCount{Priority: r.Priority})
		}
		out[i].Count++
	}
	return out
}

// Analysis is the result of one analyzer run. It is built once by Analyze
// and not modified afterwards.
type Analysis struct {
	Source       string          `json:"source"`
	Overall      Bucket          `json:"overall"`
	Distribution []PriorityCount `json:"priority_distribution"`
	Features     Breakdown       `json:"features"`
	Roles        Breakdown       `json:"roles"`
	Devices      Breakdown       `json:"devices"`
	Priorities   Breakdown       `json:"priorities"`
}

// Analyze computes every aggregation over records
func Analyze(records []Record, source string) *Analysis {
	return &Analysis{
		Source:       source,
		Overall:      Overall(records),
		Distribution: PriorityDistribution(records),
		Features:     ByFeature(records),
		Roles:        ByRole(records),
		Devices:      ByDevice(records),
		Priorities:   ByPriority(records),
	}
}

// CriticalFailures returns the failing CriticalPriority records
func (a *Analysis) CriticalFailures() []CriticalFailure {
	b, _ := a.Priorities.Get(CriticalPriority)
	return b.CriticalFailures
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
