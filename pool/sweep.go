package pool

import (
	"sort"
	"time"
)

// Shrink removes idle nodes whose time since last activity exceeds the
// configured idle threshold, oldest first, never reducing the total node
// count below the configured minimum. A no-op for fixed pools. Normally run
// by the periodic sweep; safe to call directly.
func (p *Pool) Shrink() {
	if p.destroyed || p.cfg.Policy != Elastic {
		return
	}

	cutoff := p.now().Add(-p.cfg.IdleTTL)
	removable := p.Size() - p.cfg.Min
	if removable <= 0 {
		return
	}

	var expired, kept []*entry
	for _, e := range p.idle {
		if e.lastActive.Before(cutoff) {
			expired = append(expired, e)
		} else {
			kept = append(kept, e)
		}
	}
	if len(expired) == 0 {
		return
	}
	sort.Slice(expired, func(i, j int) bool {
		return expired[i].lastActive.Before(expired[j].lastActive)
	})
	if len(expired) > removable {
		kept = append(kept, expired[removable:]...)
		expired = expired[:removable]
	}

	p.idle = kept
	for _, e := range expired {
		p.stopNode(e, true)
	}
	if p.metrics != nil {
		p.metrics.PoolSize.WithLabelValues(p.name).Set(float64(p.Size()))
	}
	p.logger.Debug("shrink sweep", "removed", len(expired), "remaining", p.Size())
}

// OldestIdle reports how long the oldest idle node has been inactive. Zero
// when the pool has no idle nodes.
func (p *Pool) OldestIdle() time.Duration {
	if len(p.idle) == 0 {
		return 0
	}
	oldest := p.idle[0].lastActive
	for _, e := range p.idle[1:] {
		if e.lastActive.Before(oldest) {
			oldest = e.lastActive
		}
	}
	return p.now().Sub(oldest)
}
