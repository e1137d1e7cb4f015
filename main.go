package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	api "github.com/rpupo63/wholspace-backend/api"
	"github.com/rpupo63/wholspace-backend/auth"
	"github.com/rpupo63/wholspace-backend/config"
	"github.com/rpupo63/wholspace-backend/database"
	"github.com/rpupo63/wholspace-backend/database/memstore"
	"github.com/rpupo63/wholspace-backend/models"
	"github.com/rpupo63/wholspace-backend/services"
	"github.com/rpupo63/wholspace-backend/storage"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := config.New()
	region := config.GetString(c, "AWS_REGION", "us-east-1")

	if prefix := config.GetString(c, "SSM_PREFIX", ""); prefix != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			fmt.Printf("Error loading AWS config: %v\n", err)
			os.Exit(1)
		}
		if err := config.LoadSSM(ctx, awsCfg, prefix, c); err != nil {
			fmt.Printf("Error loading SSM parameters: %v\n", err)
			os.Exit(1)
		}
	}

	var store database.Store
	storeType := config.GetString(c, "STORE", "postgres")
	fmt.Printf("STORE: %s\n", storeType)
	switch storeType {
	case "memory":
		store = memstore.New()
	case "postgres":
		db, err := openPostgres(c)
		if err != nil {
			fmt.Printf("Error connecting to database: %v\n", err)
			os.Exit(1)
		}

		if config.GetBool(c, "MIGRATE", false) {
			fmt.Println("Migrating schema...")
			if err := models.Migrate(db); err != nil {
				fmt.Printf("Error migrating schema: %v\n", err)
				os.Exit(1)
			}
		}

		// If generating column mismatch report, run report and exit
		if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
			fmt.Println("Generating column mismatch report...")
			if mismatches := models.GenerateColumnMismatchReport(db); mismatches > 0 {
				os.Exit(2)
			}
			return
		}

		store = database.New(db)
	default:
		fmt.Println("Unsupported STORE. Exiting...")
		os.Exit(1)
	}

	var blob storage.Blob
	if bucket := config.GetString(c, "S3_BUCKET", ""); bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			fmt.Printf("Error loading AWS config: %v\n", err)
			os.Exit(1)
		}
		blob = storage.NewS3(awsCfg, bucket, config.GetString(c, "S3_PUBLIC_BASE_URL", ""))
	} else {
		fmt.Println("Warning: S3_BUCKET not set, media is kept in memory")
		blob = storage.NewMemory(config.GetString(c, "S3_PUBLIC_BASE_URL", "http://localhost/media"))
	}

	signingKey := config.GetString(c, "AUTH_SIGNING_KEY", "")
	if signingKey == "" {
		fmt.Println("AUTH_SIGNING_KEY is required. Exiting...")
		os.Exit(1)
	}
	verifier := auth.NewVerifier(signingKey, config.GetString(c, "AUTH_ISSUER", ""))

	service := services.New(store, blob)

	worker := service.NewCleanupWorker(config.GetDuration(c, "CLEANUP_INTERVAL_SECONDS", time.Minute))
	go worker.Run(ctx)

	errChannel := make(chan error, 2)

	server, err := api.NewServer(c, service, verifier)
	if err != nil {
		fmt.Printf("Error initializing server: %v\n", err)
		os.Exit(1)
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	fmt.Printf("Closing server: %v\n", fatalErr)

	cancel()
	server.ShutdownGracefully(30 * time.Second)
}

// openPostgres connects to the primary and, when DB_REPLICA_DSN is set, routes reads to the replica
func openPostgres(c map[string]string) (*gorm.DB, error) {
	connStr := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		config.GetString(c, "DB_HOST", "localhost"),
		config.GetString(c, "DB_USER", "postgres"),
		config.GetString(c, "DB_PASSWORD", ""),
		config.GetString(c, "DB_NAME", "wholspace"),
		config.GetString(c, "DB_PORT", "5432"),
		config.GetString(c, "DB_SSLMODE", "require"),
	)

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  connStr,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      newLogger,
	})
	if err != nil {
		return nil, err
	}

	if replica := config.GetString(c, "DB_REPLICA_DSN", ""); replica != "" {
		fmt.Println("Routing reads to replica...")
		err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.Open(replica)},
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("register replica: %w", err)
		}
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("test connection: %w", err)
	}
	return db, nil
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
