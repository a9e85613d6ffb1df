package registry

import (
	"context"
	"log/slog"

	"github.com/zx06/minke/internal/log"
)

// ImportReport lists the ips affected by an import, per outcome.
type ImportReport struct {
	Added       []string `json:"added"`
	Overwritten []string `json:"overwritten"`
	Skipped     []string `json:"skipped"`
	Unchanged   []string `json:"unchanged"`
}

func newImportReport() ImportReport {
	return ImportReport{
		Added:       []string{},
		Overwritten: []string{},
		Skipped:     []string{},
		Unchanged:   []string{},
	}
}

// Merge reconciles imported into a copy of existing and returns the result.
//
// Records are processed in import order. A record whose ip is not yet in the
// result is appended. A record whose ip is present is a conflict: r decides,
// Overwrite replaces the record in place and Skip drops the incoming one.
// An incoming record identical to the present one is not a conflict and r is
// not consulted. A resolver error counts as Skip.
//
// If ctx is done between records, Merge returns ctx.Err() and existing is
// left untouched.
func Merge(ctx context.Context, existing, imported []Server, r Resolver, logger *slog.Logger) ([]Server, ImportReport, error) {
	if logger == nil {
		logger = log.Discard()
	}
	merged := cloneServers(existing)
	report := newImportReport()

	for _, incoming := range imported {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		incoming = incoming.normalized()

		idx := indexOf(merged, incoming.IP)
		if idx < 0 {
			merged = append(merged, incoming)
			report.Added = append(report.Added, incoming.IP)
			continue
		}
		if merged[idx].sameAs(incoming) {
			report.Unchanged = append(report.Unchanged, incoming.IP)
			continue
		}

		switch resolve(ctx, r, incoming.IP, logger) {
		case Overwrite:
			merged[idx] = incoming
			report.Overwritten = append(report.Overwritten, incoming.IP)
		default:
			report.Skipped = append(report.Skipped, incoming.IP)
		}
	}
	return merged, report, nil
}

func resolve(ctx context.Context, r Resolver, ip string, logger *slog.Logger) Decision {
	if r == nil {
		logger.Warn("no conflict resolver; skipping", "ip", ip)
		return Skip
	}
	d, err := r.Resolve(ctx, ip)
	if err != nil {
		logger.Warn("conflict resolver failed; skipping", "ip", ip, "err", err)
		return Skip
	}
	if d != Overwrite && d != Skip {
		logger.Warn("unknown conflict decision; skipping", "ip", ip, "decision", int(d))
		return Skip
	}
	logger.Debug("conflict resolved", "ip", ip, "decision", d.String())
	return d
}
