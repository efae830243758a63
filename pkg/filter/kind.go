package filter

import (
	"fmt"
	"strings"
)

// Kind names one of the built-in filters.
type Kind int

const (
	Red Kind = iota
	Green
	Violet
	WhiteToRed
)

var kinds = [...]struct {
	name   string
	apply  Func
	output string
}{
	Red:        {"red", RedFilter, "red.ppm"},
	Green:      {"green", GreenFilter, "green.ppm"},
	Violet:     {"violet", VioletFilter, "violet.ppm"},
	WhiteToRed: {"whiteToRed", WhiteToRedFilter, "whiteToRed.ppm"},
}

// Kinds lists every filter in output order.
func Kinds() []Kind {
	return []Kind{Red, Green, Violet, WhiteToRed}
}

func (k Kind) valid() bool { return k >= 0 && int(k) < len(kinds) }

func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kinds[k].name
}

// Func returns the pixel transform for k, or nil for an unknown kind.
func (k Kind) Func() Func {
	if !k.valid() {
		return nil
	}
	return kinds[k].apply
}

// Output returns the file name k writes to.
func (k Kind) Output() string {
	if !k.valid() {
		return ""
	}
	return kinds[k].output
}

// ParseKind accepts a filter name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if strings.EqualFold(s, kinds[k].name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown filter %q", s)
}

// Job binds a filter to the file it writes.
type Job struct {
	Kind   Kind
	Apply  Func
	Output string
}

// NewJob returns the job for k with its default output name.
func NewJob(k Kind) Job {
	return Job{Kind: k, Apply: k.Func(), Output: k.Output()}
}

// DefaultJobs returns one job per filter.
func DefaultJobs() []Job {
	jobs := make([]Job, 0, len(kinds))
	for _, k := range Kinds() {
		jobs = append(jobs, NewJob(k))
	}
	return jobs
}

// JobsFor returns the jobs for the named filters, in the order given.
// An empty list selects every filter; a repeated name is an error.
func JobsFor(names []string) ([]Job, error) {
	if len(names) == 0 {
		return DefaultJobs(), nil
	}
	seen := make(map[Kind]bool, len(names))
	jobs := make([]Job, 0, len(names))
	for _, name := range names {
		k, err := ParseKind(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		if seen[k] {
			return nil, fmt.Errorf("filter %q listed twice", name)
		}
		seen[k] = true
		jobs = append(jobs, NewJob(k))
	}
	return jobs, nil
}
