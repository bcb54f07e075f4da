package pool_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fdfsclient/fdfserr"
	"fdfsclient/metrics"
	"fdfsclient/pool"
	"fdfsclient/transport"
)

func echoServer(t *testing.T) (net.Listener, transport.Endpoint) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		for {
			c, err := l.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				buf := make([]byte, 4096)
				for {
					n, err := c.Read(buf)
					if n > 0 {
						c.Write(buf[:n])
					}
					if err != nil {
						return
					}
				}
			}(c)
		}
	}()

	ep, eerr := transport.NewEndpoint(l.Addr().String())
	require.Nil(t, eerr)
	return l, ep
}

func TestBorrowDialsWhenNoIdle(t *testing.T) {
	l, ep := echoServer(t)
	defer l.Close()

	p := pool.New(pool.Config{MaxConns: 2, ConnectTimeout: time.Second, EnablePool: true}, nil)
	tr, err := p.Borrow(context.Background(), ep)
	require.Nil(t, err)
	require.NotNil(t, tr)

	p.Release(ep, tr)
}

func TestBorrowReusesReleasedTransport(t *testing.T) {
	l, ep := echoServer(t)
	defer l.Close()

	p := pool.New(pool.Config{MaxConns: 2, ConnectTimeout: time.Second, EnablePool: true}, nil)
	tr1, err := p.Borrow(context.Background(), ep)
	require.Nil(t, err)
	p.Release(ep, tr1)

	tr2, err := p.Borrow(context.Background(), ep)
	require.Nil(t, err)
	assert.Same(t, tr1, tr2)
}

func TestBorrowBlocksAtMaxConnsUntilRelease(t *testing.T) {
	l, ep := echoServer(t)
	defer l.Close()

	p := pool.New(pool.Config{MaxConns: 1, ConnectTimeout: time.Second, EnablePool: true}, nil)
	tr1, err := p.Borrow(context.Background(), ep)
	require.Nil(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	borrowed := make(chan struct{})
	go func() {
		defer wg.Done()
		tr2, err := p.Borrow(context.Background(), ep)
		assert.Nil(t, err)
		close(borrowed)
		p.Release(ep, tr2)
	}()

	select {
	case <-borrowed:
		t.Fatal("second borrow should not have completed before release")
	case <-time.After(100 * time.Millisecond):
	}

	p.Release(ep, tr1)
	wg.Wait()
}

func TestBorrowCancelledContextReturnsCancelled(t *testing.T) {
	l, ep := echoServer(t)
	defer l.Close()

	p := pool.New(pool.Config{MaxConns: 1, ConnectTimeout: time.Second, EnablePool: true}, nil)
	tr1, err := p.Borrow(context.Background(), ep)
	require.Nil(t, err)
	defer p.Release(ep, tr1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, berr := p.Borrow(ctx, ep)
	require.NotNil(t, berr)
}

func TestReleasePoisonedIsDiscarded(t *testing.T) {
	l, ep := echoServer(t)
	defer l.Close()

	p := pool.New(pool.Config{MaxConns: 1, ConnectTimeout: time.Second, EnablePool: true}, nil)
	tr1, err := p.Borrow(context.Background(), ep)
	require.Nil(t, err)

	// Force poisoning by reading past what the peer sends.
	_ = tr1.ReadFull(make([]byte, 4096), 50*time.Millisecond)
	assert.True(t, tr1.Poisoned())

	p.Release(ep, tr1)

	tr2, err := p.Borrow(context.Background(), ep)
	require.Nil(t, err)
	assert.NotSame(t, tr1, tr2)
	p.Release(ep, tr2)
}

func TestReleaseWithPoolDisabledNeverReuses(t *testing.T) {
	l, ep := echoServer(t)
	defer l.Close()

	p := pool.New(pool.Config{MaxConns: 2, ConnectTimeout: time.Second, EnablePool: false}, nil)
	tr1, err := p.Borrow(context.Background(), ep)
	require.Nil(t, err)
	p.Release(ep, tr1)

	tr2, err := p.Borrow(context.Background(), ep)
	require.Nil(t, err)
	assert.NotSame(t, tr1, tr2, "a disabled pool must dial a fresh transport on every Borrow")
	p.Release(ep, tr2)
}

func TestBorrowReportsPoolGauges(t *testing.T) {
	l, ep := echoServer(t)
	defer l.Close()

	mc := metrics.NewCollector(nil)
	p := pool.New(pool.Config{MaxConns: 2, ConnectTimeout: time.Second, EnablePool: true}, mc)

	tr, err := p.Borrow(context.Background(), ep)
	require.Nil(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(mc.PoolInUseConnections.WithLabelValues(ep.String())))
	assert.Equal(t, float64(0), testutil.ToFloat64(mc.PoolIdleConnections.WithLabelValues(ep.String())))

	p.Release(ep, tr)
	assert.Equal(t, float64(0), testutil.ToFloat64(mc.PoolInUseConnections.WithLabelValues(ep.String())))
	assert.Equal(t, float64(1), testutil.ToFloat64(mc.PoolIdleConnections.WithLabelValues(ep.String())))
}

func TestCloseRejectsSubsequentBorrow(t *testing.T) {
	l, ep := echoServer(t)
	defer l.Close()

	p := pool.New(pool.Config{MaxConns: 1, ConnectTimeout: time.Second, EnablePool: true}, nil)
	require.NoError(t, p.Close())

	_, err := p.Borrow(context.Background(), ep)
	require.NotNil(t, err)
	assert.True(t, err.IsCode(fdfserr.ClientClosed))
}
