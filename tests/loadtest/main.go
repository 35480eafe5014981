package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numSources   = 200
)

var sourceKinds = []string{"youtube", "soundcloud"}

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

func main() {
	fmt.Println("=== TunerDaemon Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Sources: %d\n\n", numWorkers, testDuration, numSources)

	// Wait for server
	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	// Phase 1: Lock frequencies and attach stars
	fmt.Println("\n--- Phase 1: Seeding collection (POST /lock, /star) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		if rng.Float64() < 0.4 {
			return doLock(rng)
		}
		return doStar(rng)
	})

	// Phase 2: Mixed behavioral events and reads
	fmt.Println("\n--- Phase 2: Mixed load (70% events, 30% reads) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.20:
			return doStar(rng)
		case r < 0.45:
			return doSession(rng)
		case r < 0.60:
			return doSkip(rng)
		case r < 0.70:
			return doComplete(rng)
		case r < 0.85:
			return doGetList()
		case r < 0.95:
			return doGetPeaks(rng)
		default:
			return doGetStars(rng)
		}
	})

	// Phase 3: Read-heavy load
	fmt.Println("\n--- Phase 3: Read-heavy load (10% events, 90% reads) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.10:
			return doSession(rng)
		case r < 0.45:
			return doGetList()
		case r < 0.70:
			return doGetPeaks(rng)
		case r < 0.85:
			return doGetStars(rng)
		default:
			return doGetFrequencies()
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

func sourceID(rng *rand.Rand) string {
	return fmt.Sprintf("src_%d", rng.Intn(numSources)+1)
}

func postJSON(endpoint string, body map[string]interface{}, wantStatus int) result {
	data, _ := json.Marshal(body)
	start := time.Now()
	resp, err := httpClient.Post(baseURL+endpoint, "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	label := "POST " + endpoint
	if err != nil {
		return result{label, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{label, resp.StatusCode, lat, resp.StatusCode != wantStatus}
}

func getURL(label, url string) result {
	start := time.Now()
	resp, err := httpClient.Get(url)
	lat := time.Since(start)
	if err != nil {
		return result{label, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{label, resp.StatusCode, lat, resp.StatusCode != 200}
}

func doLock(rng *rand.Rand) result {
	id := sourceID(rng)
	return postJSON("/lock", map[string]interface{}{
		"sourceId":   id,
		"title":      "Station " + id,
		"sourceKind": sourceKinds[rng.Intn(len(sourceKinds))],
	}, 201)
}

func doStar(rng *rand.Rand) result {
	r := postJSON("/star", map[string]interface{}{
		"sourceId":  sourceID(rng),
		"timestamp": rng.Float64() * 3600,
	}, 201)
	// stars on not-yet-locked sources answer 404, which is expected here
	if r.status == 404 {
		r.err = false
	}
	return r
}

func doSession(rng *rand.Rand) result {
	return postJSON("/session", map[string]interface{}{
		"sourceId":        sourceID(rng),
		"durationSeconds": rng.Float64() * 600,
	}, 202)
}

func doSkip(rng *rand.Rand) result {
	return postJSON("/skip", map[string]interface{}{
		"sourceId": sourceID(rng),
		"position": rng.Intn(10),
	}, 202)
}

func doComplete(rng *rand.Rand) result {
	return postJSON("/complete", map[string]interface{}{
		"sourceId": sourceID(rng),
	}, 202)
}

func doGetList() result {
	return getURL("GET /list", baseURL+"/list")
}

func doGetFrequencies() result {
	return getURL("GET /frequencies", baseURL+"/frequencies")
}

func doGetStars(rng *rand.Rand) result {
	r := getURL("GET /stars", fmt.Sprintf("%s/stars?id=%s", baseURL, sourceID(rng)))
	if r.status == 404 {
		r.err = false
	}
	return r
}

func doGetPeaks(rng *rand.Rand) result {
	r := getURL("GET /peaks", fmt.Sprintf("%s/peaks?id=%s&gap=30", baseURL, sourceID(rng)))
	if r.status == 404 {
		r.err = false
	}
	return r
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
		return fmt.Sprintf("%dµs", d.Microseconds())
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
