package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

const (
	baseURL      = "http://127.0.0.1:8080"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numUsers     = 1000
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

type button struct {
	Path string `json:"path"`
}

func main() {
	fmt.Println("=== Admission backend load test ===")
	fmt.Printf("Workers: %d | Duration: %s\n\n", numWorkers, testDuration)

	fmt.Print("Waiting for server... ")
	var paths []string
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/all/btns")
		if err == nil {
			var buttons []button
			_ = json.NewDecoder(resp.Body).Decode(&buttons)
			resp.Body.Close()
			for _, b := range buttons {
				paths = append(paths, b.Path)
			}
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	if len(paths) == 0 {
		fmt.Println("FAILED: content tree is empty")
		return
	}
	fmt.Printf("OK (%d buttons)\n", len(paths))

	// Phase 1: menu navigation, what the bots do most
	fmt.Println("\n--- Phase 1: Navigation (GET /btns, /repls) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		path := paths[rng.Intn(len(paths))]
		if rng.Float64() < 0.7 {
			return doGet("GET /btns/{path}", "/btns/"+path)
		}
		return doGet("GET /repls/{path}", "/repls/"+path)
	})

	// Phase 2: navigation with click telemetry
	fmt.Println("\n--- Phase 2: Mixed load (60% navigation, 30% telemetry, 10% full tree) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.60:
			return doGet("GET /btns/{path}", "/btns/"+paths[rng.Intn(len(paths))])
		case r < 0.90:
			return doTelemetry(rng, paths)
		case r < 0.95:
			return doGet("GET /all", "/all")
		default:
			return doGet("GET /all/btns", "/all/btns")
		}
	})

	// Phase 3: registration form checks
	fmt.Println("\n--- Phase 3: Field checks (GET /check/*) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		switch rng.Intn(3) {
		case 0:
			return doGet("GET /check/email", fmt.Sprintf("/check/email?email=user%d@gmail.com", rng.Intn(numUsers)))
		case 1:
			return doGet("GET /check/phone_number", fmt.Sprintf("/check/phone_number?phone_number=7%010d", rng.Intn(1e9)))
		default:
			return doGet("GET /check/city", "/check/city?city=Moscow")
		}
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		avg := avgDuration(s.latencies)
		p50 := percentile(s.latencies, 0.50)
		p95 := percentile(s.latencies, 0.95)
		p99 := percentile(s.latencies, 0.99)

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func doGet(endpoint, path string) result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + path)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func doTelemetry(rng *rand.Rand, paths []string) result {
	n := rng.Intn(5) + 1
	events := make([]map[string]interface{}, n)
	platforms := []string{"tg", "vk"}
	for i := range events {
		events[i] = map[string]interface{}{
			"button_id": paths[rng.Intn(len(paths))],
			"platform":  platforms[rng.Intn(len(platforms))],
			"user_id":   rng.Intn(numUsers) + 1,
			"timestamp": time.Now().Unix(),
		}
	}

	data, _ := json.Marshal(map[string]interface{}{"events": events})
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/telemetry", "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /telemetry", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /telemetry", resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
