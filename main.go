package main

import (
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/vocalmail/voicestack/config"
	"github.com/vocalmail/voicestack/internal/database"
	"github.com/vocalmail/voicestack/internal/repository"
	"github.com/vocalmail/voicestack/server"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: voicestack <command>")
		fmt.Println("Commands:")
		fmt.Println("  migrate   Run database migrations")
		fmt.Println("  server    Start the application server")
		os.Exit(1)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Config initialization failed: %v", err)
	}
	if cfg == nil {
		log.Fatalf("config is empty")
	}

	// Postgres is optional, the stores fall back to local files without it
	var db *gorm.DB
	if cfg.DatabaseConfig.Host != "" {
		db, err = database.NewConnection(cfg.DatabaseConfig)
		if err != nil {
			log.Fatalf("Database initialization failed: %v", err)
		}
	}

	switch os.Args[1] {
	case "migrate":
		if db == nil {
			log.Fatalf("Database migration requires a configured Postgres host")
		}
		if err := repository.MigrateDB(db); err != nil {
			log.Fatalf("Database migration failed: %v", err)
		}
		log.Println("Database migration completed successfully")

	case "server":
		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
		log.Println("VoiceStack starting up...")

		srv, err := server.NewServer(cfg, db)
		if err != nil {
			log.Fatalf("Server setup failed: %v", err)
		}

		if err := srv.Run(); err != nil {
			log.Fatalf("Server startup failed: %v", err)
		}

		log.Println("Shutdown complete")

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		fmt.Println("Usage: voicestack <command>")
		fmt.Println("Commands:")
		fmt.Println("  migrate   Run database migrations")
		fmt.Println("  server    Start the application server")
		os.Exit(1)
	}
}
