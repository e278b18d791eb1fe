package engine

import (
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/talgya/probably-a-wizard/internal/catalog"
	"github.com/talgya/probably-a-wizard/internal/economy"
)

// OfflineElapsed returns the time to credit for an absence: the gap between
// lastActive and now in whole milliseconds, clamped to [0, limit]. A zero
// lastActive means the save never recorded one and credits nothing.
func OfflineElapsed(lastActive, now time.Time, limit time.Duration) time.Duration {
	if lastActive.IsZero() {
		return 0
	}
	elapsed := time.Duration(now.UnixMilli()-lastActive.UnixMilli()) * time.Millisecond
	return min(max(elapsed, 0), limit)
}

// CatchUp credits each occupied production slot with pps·elapsed in one
// lump, rounded to inventory precision. It shares the per-slot formula with
// Gather but keeps no carry, so short absences still add their fractional
// output across sessions. When anything was gained it queues an
// offline_progress notification and returns its summary.
func CatchUp(st *economy.State, lastActive, now time.Time, limit time.Duration) (economy.OfflineSummary, bool) {
	elapsed := OfflineElapsed(lastActive, now, limit)
	if elapsed <= 0 {
		return economy.OfflineSummary{}, false
	}
	seconds := decimal.NewFromInt(elapsed.Milliseconds()).Div(decimal.NewFromInt(1000))

	gains := make(map[catalog.Resource]float64)
	for _, y := range yields(st, seconds) {
		amount := y.amount.Round(economy.Precision)
		if !amount.IsPositive() {
			continue
		}
		if st.AddResource(y.resource, amount.InexactFloat64()).OK {
			gains[y.resource] = decimal.NewFromFloat(gains[y.resource]).Add(amount).InexactFloat64()
		}
	}
	if len(gains) == 0 {
		return economy.OfflineSummary{}, false
	}

	summary := economy.OfflineSummary{ElapsedSeconds: elapsed.Seconds(), Gains: gains}
	st.NotifyOffline(summary)

	attrs := []any{"away", humanize.RelTime(lastActive, now, "", ""), "credited", elapsed}
	for _, r := range catalog.AllResources() {
		if q, ok := gains[r]; ok {
			attrs = append(attrs, r.String(), humanize.Commaf(q))
		}
	}
	slog.Info("offline progress", attrs...)
	return summary, true
}
