package registry

import "context"

// Decision is the outcome for one conflicting record. The zero value is Skip.
type Decision int

const (
	Skip Decision = iota
	Overwrite
)

func (d Decision) String() string {
	switch d {
	case Skip:
		return "skip"
	case Overwrite:
		return "overwrite"
	default:
		return "unknown"
	}
}

// ParseDecision parses "overwrite" or "skip".
func ParseDecision(s string) (Decision, bool) {
	switch s {
	case "overwrite":
		return Overwrite, true
	case "skip":
		return Skip, true
	default:
		return Skip, false
	}
}

// Resolver decides what to do when an imported record has the same ip as a
// record already in the registry. Resolve may block (e.g. on a prompt); it
// is never called concurrently by the merge engine.
type Resolver interface {
	Resolve(ctx context.Context, ip string) (Decision, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, ip string) (Decision, error)

func (f ResolverFunc) Resolve(ctx context.Context, ip string) (Decision, error) {
	return f(ctx, ip)
}

// Always returns a Resolver that answers d for every conflict.
func Always(d Decision) Resolver {
	return ResolverFunc(func(context.Context, string) (Decision, error) {
		return d, nil
	})
}

// Scripted answers from a per-ip table and falls back to fallback for ips
// not in the table.
func Scripted(decisions map[string]Decision, fallback Decision) Resolver {
	return ResolverFunc(func(_ context.Context, ip string) (Decision, error) {
		if d, ok := decisions[ip]; ok {
			return d, nil
		}
		return fallback, nil
	})
}
