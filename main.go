package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	analyticsapp "energywatch/internal/analytics/application"
	analyticshttp "energywatch/internal/analytics/interfaces/http"
	"energywatch/internal/audit"
	"energywatch/internal/auth"
	forecastapp "energywatch/internal/forecast/application"
	forecasthttp "energywatch/internal/forecast/interfaces/http"
	masterdatahttp "energywatch/internal/masterdata/interfaces/http"
	masterdatarepo "energywatch/internal/masterdata/infrastructure/postgres"
	"energywatch/internal/observability/metrics"
	recommendapp "energywatch/internal/recommend/application"
	recommendhttp "energywatch/internal/recommend/interfaces/http"
	recommendrepo "energywatch/internal/recommend/infrastructure/postgres"
	tariffhttp "energywatch/internal/tariff/interfaces/http"
	tariffrepo "energywatch/internal/tariff/infrastructure/postgres"
	telemetryhttp "energywatch/internal/telemetry/interfaces/http"
	telemetryrepo "energywatch/internal/telemetry/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	zone, err := time.LoadLocation(cfg.ReferenceTimezone)
	if err != nil {
		logger.Fatalf("reference timezone error: %v", err)
	}

	userRepo := masterdatarepo.NewUserRepository(db)
	deviceRepo := masterdatarepo.NewDeviceRepository(db)
	readingRepo := telemetryrepo.NewReadingRepository(db)
	tariffRepo := tariffrepo.NewTariffRepository(db)
	recommendationRepo := recommendrepo.NewRecommendationRepository(db)

	dashboardService, err := analyticsapp.NewDashboardService(readingRepo, tariffRepo, zone, cfg.DefaultPricePerKwh)
	if err != nil {
		logger.Fatalf("dashboard service error: %v", err)
	}
	baselineService, err := forecastapp.NewBaselineService(readingRepo, systemClock{}, zone)
	if err != nil {
		logger.Fatalf("baseline service error: %v", err)
	}

	agentCfg, err := recommendapp.LoadConfig()
	if err != nil {
		logger.Fatalf("agent config error: %v", err)
	}
	agent, err := recommendapp.NewAgent(
		userRepo,
		readingRepo,
		tariffRepo,
		baselineService,
		recommendationRepo,
		systemClock{},
		zone,
		agentCfg,
		logger,
	)
	if err != nil {
		logger.Fatalf("agent error: %v", err)
	}
	scheduler := recommendapp.NewScheduler(agent, agentCfg, logger)
	go scheduler.Start(context.Background())

	authHandler, err := masterdatahttp.NewAuthHandler(userRepo, []byte(cfg.JWTSecret), logger)
	if err != nil {
		logger.Fatalf("auth handler error: %v", err)
	}
	deviceHandler, err := masterdatahttp.NewDeviceHandler(deviceRepo, auditRepo, logger)
	if err != nil {
		logger.Fatalf("device handler error: %v", err)
	}
	readingHandler, err := telemetryhttp.NewReadingHandler(readingRepo, deviceRepo, systemClock{}, logger)
	if err != nil {
		logger.Fatalf("reading handler error: %v", err)
	}
	tariffHandler, err := tariffhttp.NewTariffHandler(tariffRepo, cfg.DefaultPricePerKwh, auditRepo, logger)
	if err != nil {
		logger.Fatalf("tariff handler error: %v", err)
	}
	dashboardHandler, err := analyticshttp.NewDashboardHandler(dashboardService, logger)
	if err != nil {
		logger.Fatalf("dashboard handler error: %v", err)
	}
	forecastHandler, err := forecasthttp.NewForecastHandler(baselineService, agentCfg.HistoryDays, logger)
	if err != nil {
		logger.Fatalf("forecast handler error: %v", err)
	}
	recommendationHandler, err := recommendhttp.NewRecommendationHandler(recommendationRepo, agent, auditRepo, logger)
	if err != nil {
		logger.Fatalf("recommendation handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, []string{"/api/auth/"})
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/auth/register", authHandler)
	mux.Handle("/api/auth/login", authHandler)
	mux.Handle("/api/readings", readingHandler)
	mux.Handle("/api/readings/bulk", readingHandler)
	mux.Handle("/api/devices", deviceHandler)
	mux.Handle("/api/devices/", deviceHandler)
	mux.Handle("/api/tariff", tariffHandler)
	mux.Handle("/api/dashboard/summary", dashboardHandler)
	mux.Handle("/api/forecast/hourly", forecastHandler)
	mux.Handle("/api/recommendations", recommendationHandler)
	mux.Handle("/api/recommendations/", recommendationHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL        string
	HTTPAddr           string
	JWTSecret          string
	ReferenceTimezone  string
	DefaultPricePerKwh float64
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:        getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:           getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:          getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		ReferenceTimezone:  getenvDefault("REFERENCE_TIMEZONE", "America/Bogota"),
		DefaultPricePerKwh: getenvFloatDefault("DEFAULT_PRICE_PER_KWH", 650.0),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		elapsed := time.Since(start)
		metrics.ObserveHTTP(statusClass(resp.status), elapsed)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, elapsed)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
