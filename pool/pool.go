/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package pool implements the bounded, per-endpoint connection pool of §4.3:
// at most maxConns live transports per Endpoint, idle transports reaped after
// idleTimeout, and cooperative waiting (not rejection) once the bound is hit.
package pool

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	liberr "fdfsclient/fdfserr"
	"fdfsclient/metrics"
	"fdfsclient/transport"
)

// idleEntry pairs a pooled transport with the time it was released, so the
// sweeper can evict without re-touching the transport itself.
type idleEntry struct {
	tr         *transport.Transport
	releasedAt time.Time
}

// endpointPool is the per-Endpoint state: a weighted semaphore bounding total
// live transports, a LIFO stack of idle ones (LIFO favors recently used
// sockets, which are least likely to have gone stale on the peer's side), and
// a count of transports currently borrowed, used only to report gauges.
type endpointPool struct {
	mu    sync.Mutex
	sem   *semaphore.Weighted
	idle  []idleEntry
	inUse int
}

// Pool owns one endpointPool per distinct transport.Endpoint and the dial/
// timeout parameters used to create new transports on demand.
type Pool struct {
	connectTimeout time.Duration
	networkTimeout time.Duration
	idleTimeout    time.Duration
	maxConns       int64
	enablePool     bool

	metrics *metrics.Collector

	mu        sync.Mutex
	endpoints map[transport.Endpoint]*endpointPool
	closed    bool
}

// Config bundles the pool's dial and lifecycle parameters (§6). EnablePool
// false disables idle reuse entirely: every Borrow dials fresh and every
// Release closes immediately, matching spec §6's "every operation creates
// and closes a fresh transport."
type Config struct {
	MaxConns       int
	ConnectTimeout time.Duration
	NetworkTimeout time.Duration
	IdleTimeout    time.Duration
	EnablePool     bool
}

// New builds a Pool reporting into mc (nil is a valid no-op collector).
// MaxConns <= 0 defaults to 10 per §6.
func New(cfg Config, mc *metrics.Collector) *Pool {
	max := cfg.MaxConns
	if max <= 0 {
		max = 10
	}

	return &Pool{
		connectTimeout: cfg.ConnectTimeout,
		networkTimeout: cfg.NetworkTimeout,
		idleTimeout:    cfg.IdleTimeout,
		maxConns:       int64(max),
		enablePool:     cfg.EnablePool,
		metrics:        mc,
		endpoints:      make(map[transport.Endpoint]*endpointPool),
	}
}

func (p *Pool) endpointFor(ep transport.Endpoint) *endpointPool {
	p.mu.Lock()
	defer p.mu.Unlock()

	ex, ok := p.endpoints[ep]
	if !ok {
		ex = &endpointPool{sem: semaphore.NewWeighted(p.maxConns)}
		p.endpoints[ep] = ex
	}
	return ex
}

// reportGauges pushes epl's current idle/in-use counts to p.metrics. Callers
// must hold epl.mu.
func (p *Pool) reportGauges(ep transport.Endpoint, epl *endpointPool) {
	p.metrics.SetPoolGauges(ep.String(), len(epl.idle), epl.inUse)
}

// Borrow returns a healthy transport to ep, reusing an idle one when
// available or dialing a new one once the endpoint's bound allows it.
// Borrow blocks cooperatively (not an immediate ResourceExhausted) while the
// bound is saturated, until ctx is cancelled or a slot frees (§4.3, §5).
func (p *Pool) Borrow(ctx context.Context, ep transport.Endpoint) (*transport.Transport, liberr.Error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, liberr.New(liberr.ClientClosed.Uint16(), "pool is closed")
	}

	epl := p.endpointFor(ep)

	waitStart := time.Now()
	err := epl.sem.Acquire(ctx, 1)
	p.metrics.ObserveBorrowWait(time.Since(waitStart).Seconds())
	if err != nil {
		return nil, liberr.New(liberr.Cancelled.Uint16(), "borrow cancelled waiting for a connection slot", err)
	}

	epl.mu.Lock()
	epl.inUse++
	p.reportGauges(ep, epl)
	epl.mu.Unlock()

	if p.enablePool {
		if tr := p.takeIdle(ep, epl); tr != nil {
			return tr, nil
		}
	}

	tr, derr := transport.Dial(ep, p.connectTimeout)
	if derr != nil {
		epl.sem.Release(1)
		epl.mu.Lock()
		epl.inUse--
		p.reportGauges(ep, epl)
		epl.mu.Unlock()
		return nil, derr
	}
	return tr, nil
}

// takeIdle pops the most recently released healthy transport for epl,
// discarding (and releasing their slot) any that have exceeded idleTimeout
// or were poisoned since release.
func (p *Pool) takeIdle(ep transport.Endpoint, epl *endpointPool) *transport.Transport {
	epl.mu.Lock()
	defer epl.mu.Unlock()

	for len(epl.idle) > 0 {
		n := len(epl.idle) - 1
		e := epl.idle[n]
		epl.idle = epl.idle[:n]

		if e.tr.Poisoned() {
			epl.sem.Release(1)
			p.reportGauges(ep, epl)
			continue
		}
		if p.idleTimeout > 0 && time.Since(e.releasedAt) > p.idleTimeout {
			_ = e.tr.Close(p.networkTimeout)
			epl.sem.Release(1)
			p.reportGauges(ep, epl)
			continue
		}
		p.reportGauges(ep, epl)
		return e.tr
	}
	return nil
}

// Release returns tr to the pool for ep. A poisoned transport is discarded
// and its slot freed rather than reused (§4.2, §5 poisoned-connection rule).
// With EnablePool false, tr is always closed rather than kept idle, so the
// next Borrow for ep dials fresh (§6 enable_pool). A poisoned transport is
// force-closed (it may be mid-write or otherwise unsafe to address again);
// a healthy one no longer wanted is closed gracefully, sending the quit
// command like any other healthy teardown (§4.2).
func (p *Pool) Release(ep transport.Endpoint, tr *transport.Transport) {
	epl := p.endpointFor(ep)

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()

	if poisoned := tr.Poisoned(); closed || poisoned || !p.enablePool {
		if poisoned {
			_ = tr.ForceClose()
		} else {
			_ = tr.Close(p.networkTimeout)
		}
		epl.mu.Lock()
		epl.inUse--
		epl.sem.Release(1)
		p.reportGauges(ep, epl)
		epl.mu.Unlock()
		return
	}

	epl.mu.Lock()
	epl.inUse--
	epl.idle = append(epl.idle, idleEntry{tr: tr, releasedAt: time.Now()})
	p.reportGauges(ep, epl)
	epl.mu.Unlock()
}

// Discard drops tr without returning it to the idle set, freeing its slot.
// Used by callers that poison a transport mid-operation and must not risk
// another goroutine observing it as idle before the poison flag is checked.
func (p *Pool) Discard(ep transport.Endpoint, tr *transport.Transport) {
	epl := p.endpointFor(ep)
	_ = tr.ForceClose()

	epl.mu.Lock()
	epl.inUse--
	epl.sem.Release(1)
	p.reportGauges(ep, epl)
	epl.mu.Unlock()
}

// Sweep evicts idle transports that exceeded idleTimeout across every known
// endpoint. The pool starts no goroutine of its own and nothing in this
// module calls Sweep; without it, expired idle transports are evicted only
// when Borrow meets them in takeIdle.
func (p *Pool) Sweep() {
	p.mu.Lock()
	pools := make(map[transport.Endpoint]*endpointPool, len(p.endpoints))
	for ep, epl := range p.endpoints {
		pools[ep] = epl
	}
	p.mu.Unlock()

	for ep, epl := range pools {
		epl.mu.Lock()
		kept := epl.idle[:0]
		for _, e := range epl.idle {
			if p.idleTimeout > 0 && time.Since(e.releasedAt) > p.idleTimeout {
				_ = e.tr.Close(p.networkTimeout)
				epl.sem.Release(1)
				continue
			}
			kept = append(kept, e)
		}
		epl.idle = kept
		p.reportGauges(ep, epl)
		epl.mu.Unlock()
	}
}

// Close drains and closes every idle transport and marks the pool closed;
// subsequent Borrow calls fail with ClientClosed (§5). In-flight borrowed
// transports are unaffected until their holder calls Release or Discard.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	pools := make(map[transport.Endpoint]*endpointPool, len(p.endpoints))
	for ep, epl := range p.endpoints {
		pools[ep] = epl
	}
	p.mu.Unlock()

	for ep, epl := range pools {
		epl.mu.Lock()
		for _, e := range epl.idle {
			_ = e.tr.Close(p.networkTimeout)
			epl.sem.Release(1)
		}
		epl.idle = nil
		p.reportGauges(ep, epl)
		epl.mu.Unlock()
	}
	return nil
}

// NetworkTimeout returns the deadline Borrow's caller should use for
// subsequent reads/writes on a borrowed transport (§6 network_timeout).
func (p *Pool) NetworkTimeout() time.Duration {
	return p.networkTimeout
}
