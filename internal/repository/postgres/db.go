package postgres

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Connect opens a pool against Postgres and waits for it to come up.
// The retry loop covers docker-compose starts where the server accepts
// connections a few seconds after the container is listed as running.
func Connect(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	const attempts = 5
	for i := 1; ; i++ {
		err = db.Ping()
		if err == nil {
			return db, nil
		}
		if i == attempts {
			db.Close()
			return nil, fmt.Errorf("postgres ping after %d attempts: %w", attempts, err)
		}
		time.Sleep(time.Duration(i) * time.Second)
	}
}
