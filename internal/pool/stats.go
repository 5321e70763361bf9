package pool

import "time"

// recordSwapStats updates the append-only counters after a swap commits.
// Pure bookkeeping: it has no failure modes and no control-flow impact.
func (p *Pool) recordSwapStats(amountIn, totalFee uint64) {
	p.stats.TotalVolumeTraded += amountIn
	p.stats.TotalFeesCollected += totalFee
	p.stats.TotalTransactions++
	if amountIn > p.stats.LargestTrade {
		p.stats.LargestTrade = amountIn
	}
}

// recordProvision updates the per-account provider history. Append-only:
// removals never decrement these fields.
func (p *Pool) recordProvision(provider Account, shares uint64, now time.Time) {
	ps, ok := p.providers[provider]
	if !ok {
		ps = &ProviderStats{FirstProvisionTime: now}
		p.providers[provider] = ps
	}
	ps.ProvisionCount++
	ps.CumulativeLiquidityProvided += shares
}
