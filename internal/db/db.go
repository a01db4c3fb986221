package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

// GetDSN reads the Postgres connection string from the environment.
func GetDSN() string {
	dsn := os.Getenv("STORE_DB_DSN")
	if dsn == "" {
		log.Fatal("STORE_DB_DSN not set")
	}
	return dsn
}

func MustOpen(dsn string) *sql.DB {
	db, err := openDB(dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	return db
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}
