package main

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"
)

const maxTrackedClients = 10000

type rateWindow struct {
	start    time.Time
	attempts int
}

// rateLimiter is a fixed-window counter per client IP and action.
type rateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time
	// trusted lists the proxies whose X-Forwarded-For is believed.
	trusted []netip.Prefix

	mu      sync.Mutex
	windows map[string]*rateWindow
}

func newRateLimiter(limit int, window time.Duration, now func() time.Time) *rateLimiter {
	if now == nil {
		now = time.Now
	}
	return &rateLimiter{limit: limit, window: window, now: now, windows: map[string]*rateWindow{}}
}

// trustProxies makes the limiter key requests relayed by one of trusted on
// the forwarded client address instead of the proxy's.
func (l *rateLimiter) trustProxies(trusted []netip.Prefix) *rateLimiter {
	l.trusted = trusted
	return l
}

func (l *rateLimiter) clientIP(r *http.Request) string {
	if l == nil {
		return clientIP(r, nil)
	}
	return clientIP(r, l.trusted)
}

// allow records an attempt and reports whether it is within the limit. When
// it is not, retryAfter is the number of seconds until the window resets.
func (l *rateLimiter) allow(ip, action string) (ok bool, retryAfter int) {
	ip = strings.TrimSpace(ip)
	if l == nil || ip == "" || l.limit <= 0 || l.window <= 0 {
		return true, 0
	}
	now := l.now()
	key := action + "|" + ip

	l.mu.Lock()
	defer l.mu.Unlock()

	w, found := l.windows[key]
	if !found || now.Sub(w.start) >= l.window {
		if !found && len(l.windows) >= maxTrackedClients {
			l.dropExpired(now)
		}
		l.windows[key] = &rateWindow{start: now, attempts: 1}
		return true, 0
	}
	if w.attempts >= l.limit {
		remaining := l.window - now.Sub(w.start)
		return false, int(math.Ceil(remaining.Seconds()))
	}
	w.attempts++
	return true, 0
}

func (l *rateLimiter) dropExpired(now time.Time) {
	for k, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, k)
		}
	}
}

// clientIP is the peer address, unless the peer is a trusted proxy. Then
// X-Forwarded-For is walked from the right and the first hop that is not
// itself a trusted proxy wins, so hops a client prepends are never used.
func clientIP(r *http.Request, trusted []netip.Prefix) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !isTrusted(host, trusted) {
		return host
	}
	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !isTrusted(hop, trusted) {
			return hop
		}
	}
	return host
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	if len(trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// parseTrustedProxies accepts bare addresses and CIDR ranges.
func parseTrustedProxies(values []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.Contains(v, "/") {
			p, err := netip.ParsePrefix(v)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", v, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", v, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}
