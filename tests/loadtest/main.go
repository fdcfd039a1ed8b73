// Command loadtest drives a running scoreboardd with polling displays and a
// burst of operator actions, then reports per-endpoint latency.
package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	flag "github.com/spf13/pflag"
)

var (
	baseURL      string
	numWorkers   int
	numDisplays  int
	testDuration time.Duration
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

type boardState struct {
	Teams []struct {
		ID           int  `json:"id"`
		OnIce        bool `json:"onIce"`
		IsGoalie     bool `json:"isGoalie"`
		IsChallenger bool `json:"isChallenger"`
	} `json:"teams"`
	Period int `json:"period"`
}

func main() {
	flag.StringVar(&baseURL, "url", "http://127.0.0.1:8090", "scoreboardd base URL")
	flag.IntVar(&numWorkers, "workers", 20, "concurrent HTTP workers")
	flag.IntVar(&numDisplays, "displays", 10, "websocket displays to attach")
	flag.DurationVar(&testDuration, "duration", 10*time.Second, "length of each phase")
	flag.Parse()

	fmt.Println("=== Scoreboard Load Test ===")
	fmt.Printf("Workers: %d | Displays: %d | Duration: %s\n\n", numWorkers, numDisplays, testDuration)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
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

	frames, stopDisplays := attachDisplays(numDisplays)
	defer stopDisplays()

	fmt.Println("\n--- Phase 1: Displays polling (GET /state) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doGet("/state")
	})

	fmt.Println("\n--- Phase 2: Operator burst (goals, timeouts, undo, clock) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.50:
			return doGet("/state")
		case r < 0.65:
			return doGoal(rng)
		case r < 0.80:
			return doPost("/timeout", "", http.StatusOK)
		case r < 0.90:
			return doPost("/undo", "", http.StatusOK, http.StatusConflict)
		default:
			return doPost("/timer/toggle", "", http.StatusOK, http.StatusConflict)
		}
	})

	fmt.Printf("\nWebsocket frames received by %d displays: %d\n", numDisplays, frames.Load())
	doPost("/game/new", "", http.StatusOK)
}

func attachDisplays(n int) (*atomic.Int64, func()) {
	var frames atomic.Int64
	var conns []*websocket.Conn
	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/ws"

	for i := 0; i < n; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			fmt.Printf("display %d failed to attach: %s\n", i, err)
			continue
		}
		conns = append(conns, conn)
		go func(c *websocket.Conn) {
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					return
				}
				frames.Add(1)
			}
		}(conn)
	}

	return &frames, func() {
		for _, c := range conns {
			_ = c.Close()
		}
	}
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
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
					results <- workFn(rng)
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
	var totalOps, totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		return
	}
	fmt.Println("  " + strings.Repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, float64(totalOps)/duration.Seconds())
}

// doGoal scores for a random on-ice skater, read from a fresh snapshot.
func doGoal(rng *rand.Rand) result {
	resp, err := httpClient.Get(baseURL + "/state")
	if err != nil {
		return result{"POST /goal", 0, 0, true}
	}
	var state boardState
	err = json.NewDecoder(resp.Body).Decode(&state)
	resp.Body.Close()
	if err != nil {
		return result{"POST /goal", 0, 0, true}
	}

	var skaters []int
	for _, t := range state.Teams {
		if t.OnIce && !t.IsGoalie {
			skaters = append(skaters, t.ID)
		}
	}
	if len(skaters) == 0 {
		return result{"POST /goal", 0, 0, true}
	}
	body := fmt.Sprintf(`{"teamId":%d}`, skaters[rng.Intn(len(skaters))])
	// A concurrent goal may have rotated the team off the ice.
	return doPost("/goal", body, http.StatusOK, http.StatusConflict)
}

func doGet(path string) result {
	endpoint := "GET " + path
	start := time.Now()
	resp, err := httpClient.Get(baseURL + path)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func doPost(path, body string, accepted ...int) result {
	endpoint := "POST " + path
	start := time.Now()
	resp, err := httpClient.Post(baseURL+path, "application/json", bytes.NewReader([]byte(body)))
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	ok := false
	for _, code := range accepted {
		if resp.StatusCode == code {
			ok = true
			break
		}
	}
	return result{endpoint, resp.StatusCode, lat, !ok}
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
