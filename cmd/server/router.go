package main

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"coophttp/internal/http1"
	"coophttp/internal/task"
	"coophttp/internal/threadpool"
)

// demoRouter is the minimal example Router SPEC_FULL.md asks cmd/server to
// provide: plain string-prefix dispatch, not a path compiler. Grounded on
// original_source/http/src/server/mod.rs's Server<PARTS>, which consults a
// flat table of route handlers per connection; this is that table
// collapsed to a handful of if/else prefix checks.
type demoRouter struct {
	pool *threadpool.Pool
}

func newDemoRouter(pool *threadpool.Pool) *demoRouter {
	return &demoRouter{pool: pool}
}

// Handle implements http1.Router.
func (d *demoRouter) Handle(req *http1.Request) task.ValueFuture[http1.HandleResult] {
	switch {
	case req.URL.Path == "/health":
		return http1.Ready(http1.HandleResult{Response: okResponse("ok"), Matched: true})

	case strings.HasPrefix(req.URL.Path, "/isprime"):
		return d.handleIsPrime(req)

	default:
		return http1.Ready(http1.HandleResult{Matched: false})
	}
}

// handleIsPrime reads the "n" query parameter and answers whether it is
// prime, offloading the Miller-Rabin check to the worker pool so a slow
// check never stalls the single executor thread. The check carries no
// context-cancellation plumbing, since a worker-pool job runs to completion
// rather than being polled for cancellation mid-computation.
func (d *demoRouter) handleIsPrime(req *http1.Request) task.ValueFuture[http1.HandleResult] {
	raw, ok := req.URL.Query.Get("n")
	if !ok {
		return http1.Ready(http1.HandleResult{
			Response: http1.ErrorResponse(http1.StatusBadRequest, "missing query parameter: n"),
			Matched:  true,
		})
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return http1.Ready(http1.HandleResult{
			Response: http1.ErrorResponse(http1.StatusBadRequest, fmt.Sprintf("invalid n: %v", err)),
			Matched:  true,
		})
	}

	await := threadpool.ThreadAwait(d.pool, func() http1.HandleResult {
		body := fmt.Sprintf("%d is prime: %t\n", n, millerRabin64(n))
		return http1.HandleResult{Response: okResponse(body), Matched: true}
	})
	return &isPrimeFuture{await: await}
}

// isPrimeFuture adapts a threadpool.ThreadAwait future into
// task.ValueFuture[http1.HandleResult], substituting a 500 response for the
// disconnected-worker case the bare threadpool future only reports through
// Err.
type isPrimeFuture struct {
	await interface {
		task.ValueFuture[http1.HandleResult]
		Err() error
	}
	value http1.HandleResult
}

func (f *isPrimeFuture) Poll(cx task.Context) task.Poll {
	if f.await.Poll(cx) == task.Pending {
		return task.Pending
	}
	if err := f.await.Err(); err != nil {
		f.value = http1.HandleResult{
			Response: http1.ErrorResponse(http1.StatusInternalServerError, err.Error()),
			Matched:  true,
		}
		return task.Ready
	}
	f.value = f.await.Value()
	return task.Ready
}

func (f *isPrimeFuture) Value() http1.HandleResult { return f.value }

func okResponse(body string) *http1.Response {
	resp := http1.NewResponse(http1.StatusOK)
	resp.Headers.Set("Content-Type", "text/plain; charset=utf-8")
	resp.Write([]byte(body))
	return resp
}

// millerRabin64 is a deterministic Miller-Rabin primality check for 64-bit
// integers, using the fixed base set that guarantees exactness at this
// width.
func millerRabin64(n uint64) bool {
	if n < 2 {
		return false
	}
	small := [...]uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37}
	for _, p := range small {
		if n == p {
			return true
		}
		if n%p == 0 {
			return false
		}
	}

	r := 0
	d := n - 1
	for d&1 == 0 {
		d >>= 1
		r++
	}

	bases := [...]uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37}
	nBI := new(big.Int).SetUint64(n)
	dBI := new(big.Int).SetUint64(d)

	for _, a := range bases {
		if a%n == 0 {
			continue
		}
		x := new(big.Int).Exp(new(big.Int).SetUint64(a), dBI, nBI)
		if x.Sign() == 0 || x.Cmp(big.NewInt(1)) == 0 || x.Cmp(new(big.Int).Sub(nBI, big.NewInt(1))) == 0 {
			continue
		}
		composite := true
		for j := 1; j < r; j++ {
			x.Mul(x, x)
			x.Mod(x, nBI)
			if x.Cmp(new(big.Int).Sub(nBI, big.NewInt(1))) == 0 {
				composite = false
				break
			}
		}
		if composite {
			return false
		}
	}
	return true
}
