package api

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type limiterEntry struct {
	l        *rate.Limiter
	lastSeen time.Time
}

// limiterPool keeps one token bucket per user. Buckets unused for ttl are
// dropped by a cleanup goroutine started on first use.
type limiterPool struct {
	mu            sync.Mutex
	m             map[int]*limiterEntry
	rps           rate.Limit
	burst         int
	startCleanup  sync.Once
	stopOnce      sync.Once
	ttl           time.Duration
	cleanupPeriod time.Duration
	stopCh        chan struct{}
}

func newLimiterPool(rps float64, burst int) *limiterPool {
	return &limiterPool{
		m:             make(map[int]*limiterEntry),
		rps:           rate.Limit(rps),
		burst:         burst,
		ttl:           10 * time.Minute,
		cleanupPeriod: time.Minute,
		stopCh:        make(chan struct{}),
	}
}

func (p *limiterPool) get(userId int) *rate.Limiter {
	p.startCleanup.Do(func() {
		go p.cleanupLoop()
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.m[userId]; ok {
		e.lastSeen = time.Now()
		return e.l
	}

	l := rate.NewLimiter(p.rps, p.burst)
	p.m[userId] = &limiterEntry{l: l, lastSeen: time.Now()}
	return l
}

func (p *limiterPool) Allow(userId int) bool {
	return p.get(userId).Allow()
}

func (p *limiterPool) Shutdown() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
}

func (p *limiterPool) cleanupLoop() {
	ticker := time.NewTicker(p.cleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.prune(time.Now().Add(-p.ttl))
		case <-p.stopCh:
			return
		}
	}
}

func (p *limiterPool) prune(cutoff time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for k, e := range p.m {
		if e.lastSeen.Before(cutoff) {
			delete(p.m, k)
		}
	}
}
