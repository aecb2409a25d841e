package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"chartlab/adapters/plot"
	"chartlab/adapters/postgres"
	"chartlab/internal/config"
	"chartlab/internal/errors"
	"chartlab/internal/outlier"
	"chartlab/internal/recommend"
	"chartlab/internal/schema"
	"chartlab/internal/session"
	"chartlab/ports"
	"chartlab/ui"
)

// initSnapshotStore connects to PostgreSQL when a DATABASE_URL is configured.
// Without one the application runs with in-memory sessions only.
func initSnapshotStore(cfg *config.Config) (ports.SnapshotRepository, *sqlx.DB, error) {
	if !cfg.Database.Enabled() {
		return nil, nil, nil
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, errors.Wrap(err, "failed to ping database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, errors.Wrap(err, "failed to ensure snapshot schema")
	}

	return postgres.NewSnapshotRepository(db), db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	snapshots, db, err := initSnapshotStore(cfg)
	if err != nil {
		log.Fatal("Failed to initialize snapshot store:", err)
	}
	if db != nil {
		defer db.Close()
		log.Println("Snapshot storage: PostgreSQL")
	} else {
		log.Println("Snapshot storage: disabled (no DATABASE_URL)")
	}

	sess := session.New(
		session.WithInferencer(schema.New(cfg.Inference.SchemaConfig())),
		session.WithCleaner(outlier.New(cfg.Cleaning.Policy())),
		session.WithRecommender(recommend.NewDefault()),
	)

	plotter := plot.NewSpecWriter(cfg.Paths.ChartSpecDir)
	app := ui.NewApp(ui.Config{UploadDir: cfg.Paths.UploadDir}, sess, plotter, snapshots)

	addr := ":" + cfg.Server.Port
	log.Printf("Starting ChartLab on http://localhost%s", addr)
	log.Fatal(http.ListenAndServe(addr, app.Router()))
}
