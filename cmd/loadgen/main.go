// loadgen fires nearby-search requests at a running server and reports
// latency and cache-hit numbers. Coordinates are jittered around a center
// point to exercise both the rounding grid and cache misses.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"
)

type meta struct {
	CacheHit    bool   `json:"cacheHit"`
	CacheSource string `json:"cacheSource"`
}

type envelope struct {
	Success bool `json:"success"`
	Meta    meta `json:"meta"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	n := flag.Int("n", 200, "total requests")
	workers := flag.Int("c", 8, "concurrent workers")
	lat := flag.Float64("lat", 37.7749, "center latitude")
	lng := flag.Float64("lng", -122.4194, "center longitude")
	jitter := flag.Float64("jitter", 0.02, "coordinate jitter in degrees")
	seed := flag.Int64("seed", 1, "rng seed")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	var mu sync.Mutex
	var durations []time.Duration
	hits, errs := 0, 0

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		rng := rand.New(rand.NewSource(*seed + int64(w)))
		go func() {
			defer wg.Done()
			for range jobs {
				qLat := *lat + (rng.Float64()-0.5)**jitter
				qLng := *lng + (rng.Float64()-0.5)**jitter
				url := fmt.Sprintf("%s/api/cafes/nearby?lat=%f&lng=%f", *baseURL, qLat, qLng)

				start := time.Now()
				resp, err := client.Get(url)
				dur := time.Since(start)

				if err != nil {
					mu.Lock()
					errs++
					mu.Unlock()
					continue
				}
				if resp.StatusCode != http.StatusOK {
					_, _ = io.Copy(io.Discard, resp.Body)
					_ = resp.Body.Close()
					mu.Lock()
					errs++
					mu.Unlock()
					continue
				}

				var env envelope
				_ = json.NewDecoder(resp.Body).Decode(&env)
				_ = resp.Body.Close()

				mu.Lock()
				durations = append(durations, dur)
				if env.Meta.CacheHit {
					hits++
				}
				mu.Unlock()
			}
		}()
	}

	for i := 0; i < *n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if len(durations) == 0 {
		fmt.Fprintln(os.Stderr, "no successful requests")
		os.Exit(1)
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	pct := func(p float64) time.Duration {
		idx := int(p * float64(len(durations)-1))
		return durations[idx]
	}

	fmt.Printf("requests: %d ok, %d failed\n", len(durations), errs)
	fmt.Printf("cache hits: %d (%.1f%%)\n", hits, 100*float64(hits)/float64(len(durations)))
	fmt.Printf("latency p50=%v p90=%v p99=%v max=%v\n",
		pct(0.50), pct(0.90), pct(0.99), durations[len(durations)-1])
}
