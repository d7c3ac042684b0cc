package config

import (
	"context"
	"fmt"
	"log"

	"railbook/internal/db"
)

// OpenStore opens the key-value store selected by STORE_DRIVER.
func OpenStore(ctx context.Context, env Env) (db.Store, error) {
	switch env.StoreDriver {
	case DriverMemory, "":
		log.Println("using in-memory store; data is lost on restart")
		return db.NewMemoryStore(), nil
	case DriverMySQL:
		return db.OpenMySQL(ctx, env.MySQLDSN)
	case DriverPostgres:
		if env.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
		s, err := db.OpenPostgres(ctx, env.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Println("connected to Postgres key-value store")
		return s, nil
	case DriverBadger:
		s, err := db.OpenBadger(env.BadgerDir)
		if err != nil {
			return nil, err
		}
		log.Printf("opened badger store at %s", env.BadgerDir)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", env.StoreDriver)
	}
}
