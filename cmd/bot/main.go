package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/kudoslab/kudos-bot/internal/archive"
	"github.com/kudoslab/kudos-bot/internal/config"
	"github.com/kudoslab/kudos-bot/internal/database"
	"github.com/kudoslab/kudos-bot/internal/digest"
	"github.com/kudoslab/kudos-bot/internal/hype"
	"github.com/kudoslab/kudos-bot/internal/models"
	"github.com/kudoslab/kudos-bot/internal/notifications"
	"github.com/kudoslab/kudos-bot/internal/scheduler"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting Kudos Bot")

	// Initialize database
	db, err := database.New(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize digest archive (optional)
	var digestArchive archive.ArchiveInterface
	if cfg.StorageAccount != "" {
		digestArchive, err = archive.NewAzureArchive(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Fatalf("Failed to initialize digest archive: %v", err)
		}
	}

	// Initialize notification service (optional channels resolved inside)
	var notificationService notifications.NotificationInterface
	if cfg.WebhookURL != "" || cfg.NotificationEmail != "" {
		notificationService = notifications.NewService(cfg)
	}

	// Initialize core services
	loc := cfg.Location()
	hypeEngine := hype.NewEngine(db, loc)
	aggregator := digest.NewAggregator(db, loc)
	runner := digest.NewRunner(aggregator, notificationService, digestArchive)

	// Initialize scheduler
	schedulerService := scheduler.NewService(cfg, runner)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	// Set up HTTP server
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.HandleFunc("/api/hype", hypeHandler(hypeEngine)).Methods("GET")
	router.HandleFunc("/api/topic", topicHandler(hypeEngine)).Methods("GET")
	router.HandleFunc("/api/feed", feedHandler(db)).Methods("GET")
	router.HandleFunc("/api/recognitions", createRecognitionHandler(db)).Methods("POST")
	router.HandleFunc("/api/users", listUsersHandler(db)).Methods("GET")
	router.HandleFunc("/api/badges", listBadgesHandler(db)).Methods("GET")
	router.HandleFunc("/api/digests", listDigestsHandler(db)).Methods("GET")
	// Archive routes must come before the {weekStart} wildcard.
	router.HandleFunc("/api/digests/archive", listArchivedDigestsHandler(digestArchive)).Methods("GET")
	router.HandleFunc("/api/digests/archive/{filename}", getArchivedDigestHandler(digestArchive)).Methods("GET")
	router.HandleFunc("/api/digests/archive/{filename}", deleteArchivedDigestHandler(digestArchive)).Methods("DELETE")
	router.HandleFunc("/api/digests/{weekStart}", getDigestHandler(db)).Methods("GET")
	router.HandleFunc("/api/digests/generate", generateDigestHandler(aggregator)).Methods("POST")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func hypeHandler(engine *hype.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		stats := engine.Stats(r.Context(), now)

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"today_count": stats.TodayCount,
			"streak_days": stats.StreakDays,
			"streak_text": hype.StreakText(stats.StreakDays),
			"stage":       hype.StageFor(stats.TodayCount),
			"topic":       engine.DailyTopic(now),
		})
	}
}

func topicHandler(engine *hype.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"topic": engine.DailyTopic(time.Now())})
	}
}

func feedHandler(db database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filters := models.FeedFilters{
			Period:     q.Get("period"),
			PersonMode: q.Get("person_mode"),
			PersonID:   q.Get("person_id"),
			Query:      q.Get("q"),
		}

		limit := queryInt(q.Get("limit"), 20)
		offset := queryInt(q.Get("offset"), 0)

		recs, err := db.ListFeed(r.Context(), filters, limit, offset)
		if err != nil {
			logrus.Errorf("Failed to list feed: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to list feed")
			return
		}
		if recs == nil {
			recs = []models.Recognition{}
		}

		writeJSON(w, http.StatusOK, recs)
	}
}

func createRecognitionHandler(db database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			FromUserID string `json:"from_user_id"`
			ToUserID   string `json:"to_user_id"`
			Message    string `json:"message"`
			EffectKey  string `json:"effect_key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if req.FromUserID == "" || req.ToUserID == "" {
			writeError(w, http.StatusBadRequest, "from_user_id and to_user_id are required")
			return
		}

		if req.EffectKey == "" {
			req.EffectKey = "none"
		}

		rec := &models.Recognition{
			ID:         uuid.NewString(),
			FromUserID: req.FromUserID,
			ToUserID:   req.ToUserID,
			Message:    req.Message,
			EffectKey:  req.EffectKey,
			CreatedAt:  time.Now().UTC(),
		}

		if err := db.CreateRecognition(r.Context(), rec); err != nil {
			logrus.Errorf("Failed to create recognition: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to create recognition")
			return
		}

		writeJSON(w, http.StatusCreated, rec)
	}
}

func listUsersHandler(db database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := db.ListUsers(r.Context())
		if err != nil {
			logrus.Errorf("Failed to list users: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to list users")
			return
		}
		if users == nil {
			users = []models.User{}
		}

		writeJSON(w, http.StatusOK, users)
	}
}

func listBadgesHandler(db database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		badges, err := db.ListBadges(r.Context())
		if err != nil {
			logrus.Errorf("Failed to list badges: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to list badges")
			return
		}
		if badges == nil {
			badges = []models.Badge{}
		}

		writeJSON(w, http.StatusOK, badges)
	}
}

func listDigestsHandler(db database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r.URL.Query().Get("limit"), 10)

		digests, err := db.ListWeeklyDigests(r.Context(), limit)
		if err != nil {
			logrus.Errorf("Failed to list digests: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to list digests")
			return
		}
		if digests == nil {
			digests = []models.WeeklyDigest{}
		}

		writeJSON(w, http.StatusOK, digests)
	}
}

func getDigestHandler(db database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		weekStart := mux.Vars(r)["weekStart"]

		d, err := db.GetWeeklyDigest(r.Context(), weekStart)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				writeError(w, http.StatusNotFound, "digest not found")
				return
			}
			logrus.Errorf("Failed to get digest: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to get digest")
			return
		}

		writeJSON(w, http.StatusOK, d)
	}
}

func listArchivedDigestsHandler(a archive.ArchiveInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a == nil {
			writeError(w, http.StatusServiceUnavailable, "digest archive not configured")
			return
		}

		snapshots, err := a.List("digest-")
		if err != nil {
			logrus.Errorf("Failed to list archived digests: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to list archived digests")
			return
		}
		if snapshots == nil {
			snapshots = []string{}
		}

		writeJSON(w, http.StatusOK, map[string][]string{"snapshots": snapshots})
	}
}

func getArchivedDigestHandler(a archive.ArchiveInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a == nil {
			writeError(w, http.StatusServiceUnavailable, "digest archive not configured")
			return
		}

		filename := mux.Vars(r)["filename"]

		data, err := a.Retrieve(filename)
		if err != nil {
			logrus.Errorf("Failed to retrieve archived digest %s: %v", filename, err)
			writeError(w, http.StatusNotFound, "archived digest not found")
			return
		}

		// Snapshots are stored as JSON, serve them as-is.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

func deleteArchivedDigestHandler(a archive.ArchiveInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a == nil {
			writeError(w, http.StatusServiceUnavailable, "digest archive not configured")
			return
		}

		filename := mux.Vars(r)["filename"]

		if err := a.Delete(filename); err != nil {
			logrus.Errorf("Failed to delete archived digest %s: %v", filename, err)
			writeError(w, http.StatusInternalServerError, "failed to delete archived digest")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func generateDigestHandler(aggregator *digest.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Default to the current week; an explicit reference date selects
		// another week (any day inside it).
		reference := time.Now()
		if ref := r.URL.Query().Get("reference"); ref != "" {
			parsed, err := time.Parse("2006-01-02", ref)
			if err != nil {
				writeError(w, http.StatusBadRequest, "reference must be YYYY-MM-DD")
				return
			}
			reference = parsed
		}

		weekStart, weekEnd := aggregator.WeekFor(reference)

		d, err := aggregator.Generate(r.Context(), weekStart, weekEnd)
		if err != nil {
			logrus.Errorf("Failed to generate digest: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to generate digest")
			return
		}

		writeJSON(w, http.StatusOK, d)
	}
}

func queryInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
		return parsed
	}
	return defaultValue
}
