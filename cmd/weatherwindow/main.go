package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/jonboulle/clockwork"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/alikhn/weatherwindow/internal/analyzer"
	"github.com/alikhn/weatherwindow/internal/api"
	"github.com/alikhn/weatherwindow/internal/models"
	"github.com/alikhn/weatherwindow/internal/narrative"
	"github.com/alikhn/weatherwindow/internal/normalize"
	"github.com/alikhn/weatherwindow/internal/scanner"
	"github.com/alikhn/weatherwindow/internal/scoring"
	"github.com/alikhn/weatherwindow/internal/source"
	"github.com/alikhn/weatherwindow/internal/store"
)

type cli struct {
	Serve        serveCmd        `kong:"cmd,default='withargs',help='Run the HTTP server.'"`
	Analyze      analyzeCmd      `kong:"cmd,help='Run a single analysis and print JSON to stdout.'"`
	Alternatives alternativesCmd `kong:"cmd,help='Scan for alternative dates and print JSON to stdout.'"`
}

type serveCmd struct {
	DB       string        `kong:"default='data/weatherwindow.db',help='Path to SQLite database.'"`
	Port     string        `kong:"default='8080',help='HTTP server port.'"`
	CacheAge time.Duration `kong:"default='6h',help='Max age of cached observations; 0 keeps them forever.'"`
}

func (c *serveCmd) Run() error {
	db, err := sql.Open("sqlite", c.DB)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Println("database migrated")

	an := analyzer.New(source.NewNASAPowerClient(), source.NewSyntheticSource())
	an.SetCache(st, c.CacheAge)

	if gen, err := narrative.NewGenerator(); err != nil {
		log.Printf("Summaries disabled: %v", err)
	} else {
		an.SetSummarizer(gen)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := api.NewServer(an, st, c.Port)

	log.Printf("starting server on :%s", c.Port)
	return server.Run(ctx)
}

type analyzeCmd struct {
	Latitude  float64 `kong:"required,help='Latitude in decimal degrees.'"`
	Longitude float64 `kong:"required,help='Longitude in decimal degrees.'"`
	From      string  `kong:"required,help='Start date (YYYY-MM-DD).'"`
	To        string  `kong:"required,help='End date (YYYY-MM-DD).'"`
	Activity  string  `kong:"default='general',help='Activity type: wedding, hiking, farming, festival, general.'"`
	Location  string  `kong:"help='Display name for the location.'"`
	Server    string  `kong:"help='Base URL of a running server to query instead of analyzing locally.'"`
	Synthetic bool    `kong:"help='Use the synthetic data source instead of NASA POWER.'"`
}

func (c *analyzeCmd) request() (models.AnalysisRequest, error) {
	from, err := time.Parse("2006-01-02", c.From)
	if err != nil {
		return models.AnalysisRequest{}, fmt.Errorf("parse --from: %w", err)
	}
	to, err := time.Parse("2006-01-02", c.To)
	if err != nil {
		return models.AnalysisRequest{}, fmt.Errorf("parse --to: %w", err)
	}
	return models.AnalysisRequest{
		Location:  c.Location,
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		DateFrom:  from,
		DateTo:    to,
		Activity:  models.Activity(c.Activity),
	}, nil
}

func (c *analyzeCmd) analyzer() *analyzer.Analyzer {
	synthetic := source.NewSyntheticSource()
	if c.Synthetic {
		return analyzer.New(synthetic, synthetic)
	}
	return analyzer.New(source.NewNASAPowerClient(), synthetic)
}

func (c *analyzeCmd) Run() error {
	req, err := c.request()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if c.Server != "" {
		result, err := c.remote(ctx)
		if err != nil {
			return err
		}
		return printJSON(result)
	}

	result, err := c.analyzer().Analyze(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(result)
}

// remote queries a running server and normalizes whatever shape it returns.
func (c *analyzeCmd) remote(ctx context.Context) (models.AnalysisResult, error) {
	payload, err := json.Marshal(map[string]any{
		"location":      c.Location,
		"latitude":      c.Latitude,
		"longitude":     c.Longitude,
		"start_date":    c.From,
		"end_date":      c.To,
		"activity_type": c.Activity,
	})
	if err != nil {
		return models.AnalysisResult{}, err
	}

	url := strings.TrimRight(c.Server, "/") + "/api/weather-windows"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return models.AnalysisResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("query server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.AnalysisResult{}, fmt.Errorf("server returned %s: %s", resp.Status, body)
	}
	return normalize.Result(body), nil
}

type alternativesCmd struct {
	analyzeCmd
	SearchRangeDays int `kong:"default='60',help='Days ahead to include in the candidate pool.'"`
}

func (c *alternativesCmd) Run() error {
	req, err := c.request()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	an := c.analyzer()
	days, _, err := an.Observations(ctx, req)
	if err != nil {
		return err
	}

	cfg := scanner.DefaultConfig()
	if c.SearchRangeDays > 0 {
		cfg.SearchRangeDays = c.SearchRangeDays
	}

	band := scoring.BandFor(req.Activity, req.Custom)
	clock := clockwork.NewRealClock()
	sc := scanner.New(cfg, clock, scanner.FrameYield(clock))
	pool := sc.BuildPool(days, band, req.DateFrom)

	alternatives := sc.Run(ctx, pool, band, nil, func([]models.ScoredCandidate, bool) {})
	return printJSON(alternatives)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	var app cli
	ktx := kong.Parse(&app,
		kong.Name("weatherwindow"),
		kong.Description("Weather window analysis for outdoor planning, backed by NASA POWER."),
		kong.UsageOnError(),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)
	if err := ktx.Run(); err != nil {
		log.Fatalf("%s: %v", ktx.Command(), err)
	}
}
