// SensorHub - sensor metadata and telemetry fusion service
//
// This is the main entry point for the SensorHub application. SensorHub
// coordinates three stores behind one API:
//   - SQLite for sensor identity (authoritative IDs and names)
//   - MongoDB for sensor documents (location, hardware metadata)
//   - Redis for the latest telemetry sample per sensor
//
// Telemetry arrives over HTTP or MQTT and optionally flows on to InfluxDB
// for long-term archiving.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	_ "github.com/nerrad567/sensorhub-core/migrations"

	"github.com/nerrad567/sensorhub-core/internal/api"
	"github.com/nerrad567/sensorhub-core/internal/infrastructure/config"
	"github.com/nerrad567/sensorhub-core/internal/infrastructure/database"
	"github.com/nerrad567/sensorhub-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/sensorhub-core/internal/infrastructure/logging"
	"github.com/nerrad567/sensorhub-core/internal/infrastructure/mongodb"
	"github.com/nerrad567/sensorhub-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/sensorhub-core/internal/infrastructure/rediscache"
	"github.com/nerrad567/sensorhub-core/internal/ingest"
	"github.com/nerrad567/sensorhub-core/internal/sensor"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Load .env if present. Existing environment variables win, so this is
	// a development convenience only.
	_ = godotenv.Load() //nolint:errcheck // missing .env is the normal production case

	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting SensorHub",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the identity database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("identity database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Connect to MongoDB (document store)
	mongoClient, err := mongodb.Connect(cfg.MongoDB)
	if err != nil {
		return fmt.Errorf("connecting to MongoDB: %w", err)
	}
	defer func() {
		log.Info("closing MongoDB connection")
		if closeErr := mongoClient.Close(); closeErr != nil {
			log.Error("error closing MongoDB", "error", closeErr)
		}
	}()
	log.Info("MongoDB connected",
		"database", cfg.MongoDB.Database,
		"collection", cfg.MongoDB.Collection,
	)

	// Connect to Redis (telemetry cache)
	redisClient, err := rediscache.Connect(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connecting to Redis: %w", err)
	}
	defer func() {
		log.Info("closing Redis connection")
		if closeErr := redisClient.Close(); closeErr != nil {
			log.Error("error closing Redis", "error", closeErr)
		}
	}()
	log.Info("Redis connected", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)

	// Connect to InfluxDB (optional telemetry archive)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB archive disabled")
	}

	// Wire the three stores into the coordinator
	identities := sensor.NewSQLiteIdentityRepository(db.DB)
	documents := sensor.NewMongoDocumentRepository(mongoClient.Collection())
	telemetry := sensor.NewRedisTelemetryRepository(redisClient.Redis())

	coordinator := sensor.NewCoordinator(identities, documents, telemetry)
	coordinator.SetLogger(log)
	if influxClient != nil {
		coordinator.SetArchiver(influxClient)
	}
	log.Info("sensor coordinator initialised")

	// Connect to MQTT broker (optional telemetry ingest)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT ingest disabled")
	}

	// Per-store health checks surfaced by GET /api/v1/health
	health := map[string]api.HealthFunc{
		"database": db.HealthCheck,
		"mongodb":  mongoClient.HealthCheck,
		"redis":    redisClient.HealthCheck,
	}
	if influxClient != nil {
		health["influxdb"] = influxClient.HealthCheck
	}
	if mqttClient != nil {
		health["mqtt"] = mqttClient.HealthCheck
	}

	// Start API server
	apiServer, err := api.New(api.Deps{
		Config:  cfg.API,
		WS:      cfg.WebSocket,
		Logger:  log,
		Sensors: coordinator,
		MQTT:    mqttClient,
		Health:  health,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	// Fetch the hub before Start so the ingest pipeline can broadcast
	// MQTT samples to WebSocket subscribers.
	hub := apiServer.Hub()

	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Start MQTT ingest pipeline
	if mqttClient != nil {
		ingestService := ingest.NewService(mqttClient, coordinator)
		ingestService.SetLogger(log)
		ingestService.SetNotifier(hub)
		if startErr := ingestService.Start(); startErr != nil {
			return fmt.Errorf("starting telemetry ingest: %w", startErr)
		}
		defer func() {
			log.Info("stopping telemetry ingest")
			ingestService.Stop()
		}()
		log.Info("telemetry ingest started")
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mongoClient, redisClient, influxClient, mqttClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. Ingest (if enabled)
	// 2. API server
	// 3. MQTT (if enabled)
	// 4. InfluxDB (if enabled)
	// 5. Redis
	// 6. MongoDB
	// 7. Database

	log.Info("SensorHub stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SENSORHUB_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SENSORHUB_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// Optional clients may be nil when their subsystem is disabled.
func healthCheck(
	ctx context.Context,
	db *database.DB,
	mongoClient *mongodb.Client,
	redisClient *rediscache.Client,
	influxClient *influxdb.Client,
	mqttClient *mqtt.Client,
) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mongoClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}

	if err := redisClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	return nil
}
