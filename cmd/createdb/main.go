// Command createdb creates the application database on a PostgreSQL server
// when it does not exist yet. It connects with DB_ADMIN_URL and creates DB_NAME.
// The exit status is 0 when the database exists afterwards and 1 otherwise.
package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/homecloud/service/internal/config"
	"github.com/homecloud/service/internal/db"
)

func main() {
	cfg := config.Load()
	if err := run(cfg); err != nil {
		log.Printf("createdb failed: %v", err)
		os.Exit(1)
	}
	log.Println("createdb completed")
}

func run(cfg *config.Config) error {
	conn, err := sql.Open("postgres", cfg.DBAdminURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("connecting to PostgreSQL server...")
	if err := conn.PingContext(ctx); err != nil {
		log.Println("check that the server is reachable, the credentials are correct and the firewall allows this host")
		return err
	}

	_, err = db.EnsureDatabase(ctx, conn, cfg.DBName)
	return err
}
