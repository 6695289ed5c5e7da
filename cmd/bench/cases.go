// README: Bench cases for /route, /health, /metrics, the geocode cache and the rates table.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
	StatusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg: cfg,
		// Degraded routes can take several seconds of backoff.
		httpc: &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency.Round(time.Millisecond))
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) validRoute() map[string]any {
	return map[string]any{"origin": r.cfg.Origin, "destination": r.cfg.Destination}
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: StatusSkip, Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: StatusSkip, Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name: "Migration: apply (optional)",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: StatusSkip, Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: StatusSkip, Note: "db not configured"}
				}
				sql, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				for _, s := range splitSQL(string(sql)) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: StatusFail, Note: err.Error()}
					}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name: "Migration: tables exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: StatusSkip, Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: StatusFail, Note: err.Error()}
					}
					if !exists {
						return Result{Status: StatusFail, Note: "missing table: " + t}
					}
				}
				return Result{Status: StatusPass}
			},
		},
		httpCase("API: health", http.MethodGet, base+"/health", nil, http.StatusOK),

		httpCase("Route: valid request", http.MethodPost, base+"/route", r.validRoute(), http.StatusOK),
		httpCase("Route: with cargo", http.MethodPost, base+"/route", map[string]any{
			"origin":      r.cfg.Origin,
			"destination": r.cfg.Destination,
			"totalWeight": 1800,
			"length":      120,
			"width":       80,
			"height":      100,
			"isFragile":   true,
		}, http.StatusOK),
		httpCase("Route: missing destination -> 400", http.MethodPost, base+"/route", map[string]any{
			"origin": r.cfg.Origin,
		}, http.StatusBadRequest),
		httpCase("Route: negative weight -> 400", http.MethodPost, base+"/route", map[string]any{
			"origin":      r.cfg.Origin,
			"destination": r.cfg.Destination,
			"totalWeight": -1,
		}, http.StatusBadRequest),
		httpCase("Route: ungeocodable -> 404", http.MethodPost, base+"/route", map[string]any{
			"origin":      "zzqx-nowhere-98431",
			"destination": r.cfg.Destination,
		}, http.StatusNotFound),
		{
			Name: "Route: response shape and cost invariant",
			Run: func(ctx context.Context, r *Runner) Result {
				return checkShape(ctx, r, base+"/route")
			},
		},
		{
			Name: "Cache: geocode keys written",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: StatusSkip, Note: "redis not configured"}
				}
				keys, err := r.redis.Keys(ctx, "routecost:geocode:*").Result()
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				if len(keys) == 0 {
					return Result{Status: StatusFail, Note: "no cached geocodes"}
				}
				return Result{Status: StatusPass, Note: fmt.Sprintf("keys=%d", len(keys))}
			},
		},
		{
			Name: "Metrics: route counters exported",
			Run: func(ctx context.Context, r *Runner) Result {
				body, status, err := r.do(ctx, http.MethodGet, base+"/metrics", nil)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				if status != http.StatusOK || !strings.Contains(string(body), "routecost_route_results_total") {
					return Result{Status: StatusFail, Note: fmt.Sprintf("status=%d", status)}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name: "Concurrency: identical requests agree",
			Run: func(ctx context.Context, r *Runner) Result {
				return concurrentAgree(ctx, r, base+"/route")
			},
		},
		{
			Name: "Perf: route throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/route", r.validRoute())
			},
		},
	}
}

func (r *Runner) do(ctx context.Context, method, url string, body any) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.httpc.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	return out, resp.StatusCode, err
}

func httpCase(name, method, url string, body any, want int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			start := time.Now()
			_, status, err := r.do(ctx, method, url, body)
			if err != nil {
				return Result{Status: StatusFail, Note: err.Error()}
			}
			latency := time.Since(start)
			if status == want {
				return Result{Status: StatusPass, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
			}
			return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("status=%d want=%d", status, want)}
		},
	}
}

type routeBody struct {
	Distance          string     `json:"distance"`
	Duration          string     `json:"duration"`
	FuelCost          string     `json:"fuelCost"`
	VehicleType       string     `json:"vehicleType"`
	Provider          string     `json:"provider"`
	OriginCoords      [2]float64 `json:"originCoords"`
	DestinationCoords [2]float64 `json:"destinationCoords"`
	CostBreakdown     struct {
		FuelCost        float64 `json:"fuelCost"`
		DriverCost      float64 `json:"driverCost"`
		TollCost        float64 `json:"tollCost"`
		MaintenanceCost float64 `json:"maintenanceCost"`
		InsuranceCost   float64 `json:"insuranceCost"`
		OverheadCost    float64 `json:"overheadCost"`
		TotalCost       float64 `json:"totalCost"`
	} `json:"costBreakdown"`
}

func checkShape(ctx context.Context, r *Runner, url string) Result {
	start := time.Now()
	raw, status, err := r.do(ctx, http.MethodPost, url, r.validRoute())
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	latency := time.Since(start)
	if status != http.StatusOK {
		return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
	}
	var body routeBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return Result{Status: StatusFail, Latency: latency, Note: err.Error()}
	}
	if !strings.HasSuffix(body.Distance, " km") || !strings.Contains(body.Duration, "hr") || body.VehicleType == "" {
		return Result{Status: StatusFail, Latency: latency, Note: "unexpected formatting: " + string(raw)}
	}
	b := body.CostBreakdown
	sum := b.FuelCost + b.DriverCost + b.TollCost + b.MaintenanceCost + b.InsuranceCost + b.OverheadCost
	if math.Abs(sum-b.TotalCost) > 0.01 {
		return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("total=%.2f sum=%.2f", b.TotalCost, sum)}
	}
	return Result{Status: StatusPass, Latency: latency, Note: fmt.Sprintf("provider=%s %s", body.Provider, body.Distance)}
}

func concurrentAgree(ctx context.Context, r *Runner, url string) Result {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		totals = map[float64]int{}
		errs   int
	)
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			raw, status, err := r.do(ctx, http.MethodPost, url, r.validRoute())
			mu.Lock()
			defer mu.Unlock()
			if err != nil || status != http.StatusOK {
				errs++
				return
			}
			var body routeBody
			if json.Unmarshal(raw, &body) != nil {
				errs++
				return
			}
			totals[body.CostBreakdown.TotalCost]++
		}()
	}
	wg.Wait()

	if errs > 0 {
		return Result{Status: StatusFail, Note: fmt.Sprintf("errors=%d", errs)}
	}
	// A provider flapping mid-run can legitimately yield primary and fallback totals.
	if len(totals) > 2 {
		return Result{Status: StatusFail, Note: fmt.Sprintf("distinct totals=%d", len(totals))}
	}
	return Result{Status: StatusPass, Note: fmt.Sprintf("distinct totals=%d", len(totals))}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	end := time.Now().Add(r.cfg.Duration)
	var (
		count, errCount int64
		mu              sync.Mutex
		wg              sync.WaitGroup
	)

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				_, status, err := r.do(ctx, http.MethodPost, url, payload)
				mu.Lock()
				if err != nil || status != http.StatusOK {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: StatusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: StatusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
