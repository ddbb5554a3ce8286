package main

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	json "github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"nltrack/internal/models"
)

const (
	baseURL        = "http://127.0.0.1:8080"
	numWorkers     = 50
	testDuration   = 10 * time.Second
	numSubjects    = 500
	numNewsletters = 5
	numArticles    = 40
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	// redirects from /track/click point at fake hosts
	CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
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

// tokenPool is minted up front with the server's secret so workers only measure HTTP.
type tokenPool struct {
	tokens []string
	claims []models.TrackingClaims
}

func mintTokens(secret []byte, f *gofakeit.Faker) (*tokenPool, error) {
	pool := &tokenPool{}
	now := time.Now()
	for i := 0; i < numSubjects; i++ {
		claims := models.TrackingClaims{
			NewsletterID: newsletterID(f.Number(0, numNewsletters-1)),
			ArticleID:    articleID(f.Number(0, numArticles-1)),
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   f.UUID(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
				ID:        uuid.NewString(),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
		if err != nil {
			return nil, err
		}
		pool.tokens = append(pool.tokens, token)
		pool.claims = append(pool.claims, claims)
	}
	return pool, nil
}

func newsletterID(i int) string { return fmt.Sprintf("nl-%d", i) }
func articleID(i int) string    { return fmt.Sprintf("art-%02d", i) }

func main() {
	_ = godotenv.Load()
	secret := os.Getenv("NLT_SIGNING_SECRET")
	if len(secret) < 32 {
		fmt.Println("NLT_SIGNING_SECRET must be set to the server's signing secret")
		os.Exit(1)
	}

	pool, err := mintTokens([]byte(secret), gofakeit.New(0))
	if err != nil {
		fmt.Printf("minting tokens: %s\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Newsletter Tracking Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s\n", numWorkers, testDuration)
	fmt.Printf("Subjects: %d | Newsletters: %d | Articles: %d\n\n", numSubjects, numNewsletters, numArticles)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Send day (opens and clicks) ---")
	runPhase(testDuration, func(f *gofakeit.Faker) result {
		if f.Float64Range(0, 1) < 0.75 {
			return doOpen(f, pool)
		}
		return doClick(f, pool)
	})

	fmt.Println("\n--- Phase 2: Reading view (page events, 20% stats reads) ---")
	runPhase(testDuration, func(f *gofakeit.Faker) result {
		r := f.Float64Range(0, 1)
		switch {
		case r < 0.45:
			return doPageEvent(f, pool, models.EventPageView)
		case r < 0.80:
			return doPageEvent(f, pool, models.EventSessionEnd)
		default:
			return doStats(f)
		}
	})

	fmt.Println("\n--- Phase 3: Dashboard (stats reads with duplicate opens) ---")
	runPhase(testDuration, func(f *gofakeit.Faker) result {
		if f.Float64Range(0, 1) < 0.2 {
			return doOpen(f, pool)
		}
		return doStats(f)
	})
}

func runPhase(duration time.Duration, workFn func(f *gofakeit.Faker) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			f := gofakeit.New(seed)
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(f)
					totalOps.Add(1)
					results <- r
				}
			}
		}(uint64(time.Now().UnixNano()) + uint64(i))
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

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func timedGet(endpoint, target string, f *gofakeit.Faker, want int) result {
	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return result{endpoint, 0, 0, true}
	}
	req.Header.Set("User-Agent", f.UserAgent())

	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != want}
}

func doOpen(f *gofakeit.Faker, pool *tokenPool) result {
	token := pool.tokens[f.Number(0, len(pool.tokens)-1)]
	return timedGet("GET /track/open", baseURL+"/track/open?t="+url.QueryEscape(token), f, http.StatusOK)
}

func doClick(f *gofakeit.Faker, pool *tokenPool) result {
	q := url.Values{
		"t":   {pool.tokens[f.Number(0, len(pool.tokens)-1)]},
		"url": {"https://" + f.DomainName() + "/" + f.Word()},
	}
	return timedGet("GET /track/click", baseURL+"/track/click?"+q.Encode(), f, http.StatusFound)
}

func doStats(f *gofakeit.Faker) result {
	target := baseURL + "/stats/articles?nwl=" + newsletterID(f.Number(0, numNewsletters-1))
	return timedGet("GET /stats/articles", target, f, http.StatusOK)
}

func doPageEvent(f *gofakeit.Faker, pool *tokenPool, eventType models.EventType) result {
	i := f.Number(0, len(pool.tokens)-1)
	body := map[string]any{
		"type": string(eventType),
		"nwl":  pool.claims[i].NewsletterID,
		"art":  pool.claims[i].ArticleID,
		"sid":  f.UUID(),
	}
	// a third of readers are anonymous
	if f.Number(0, 2) > 0 {
		body["t"] = pool.tokens[i]
	}
	if eventType == models.EventSessionEnd {
		body["timeSpentSeconds"] = f.Float64Range(0, 240)
	}

	data, _ := json.Marshal(body)
	endpoint := "POST /track/event"
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/track/event", "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusCreated}
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
