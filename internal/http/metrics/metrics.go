package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
)

// Collector keeps cheap process-local counters, exposed as plain text on
// the metrics endpoint.
type Collector struct {
	requestsTotal atomic.Int64
	responses5xx  atomic.Int64
	responses4xx  atomic.Int64

	mu     sync.Mutex
	errors map[string]int64
}

func NewCollector() *Collector {
	return &Collector{errors: make(map[string]int64)}
}

func (c *Collector) ObserveRequest(status int) {
	c.requestsTotal.Add(1)
	switch {
	case status >= 500:
		c.responses5xx.Add(1)
	case status >= 400:
		c.responses4xx.Add(1)
	}
}

func (c *Collector) ObserveError(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors[code]++
}

func (c *Collector) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "http_requests_total %d\n", c.requestsTotal.Load())
		fmt.Fprintf(w, "http_responses_4xx_total %d\n", c.responses4xx.Load())
		fmt.Fprintf(w, "http_responses_5xx_total %d\n", c.responses5xx.Load())

		c.mu.Lock()
		codes := make([]string, 0, len(c.errors))
		for code := range c.errors {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			fmt.Fprintf(w, "app_errors_total{code=%q} %d\n", code, c.errors[code])
		}
		c.mu.Unlock()
	})
}
