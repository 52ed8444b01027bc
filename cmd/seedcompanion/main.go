// Command seedcompanion inserts a companion account into the data store.
// Companions log in through the separate companion portal; this tool only
// provisions the record and password hash.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/23041450154/ruang-dengar-imadiksi/internal/config"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/store"
)

func main() {
	username := flag.String("username", "", "companion login username (required)")
	password := flag.String("password", "", "companion login password (required, min 8 chars)")
	name := flag.String("name", "", "display name (required)")
	description := flag.String("description", "", "short bio shown to users")
	specialty := flag.String("specialty", "", "area of focus, e.g. 'academic stress'")
	avatarURL := flag.String("avatar", "", "avatar image URL")
	flag.Parse()

	if *username == "" || *name == "" || len(*password) < 8 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	ctx := context.Background()

	var db store.DataStore
	if cfg.DatabaseURL != "" {
		if err := store.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
			fatal("migration failed: %v", err)
		}
		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			fatal("postgres connection failed: %v", err)
		}
		db = pgStore
	} else {
		sqliteStore, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			fatal("sqlite open failed: %v", err)
		}
		db = sqliteStore
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fatal("failed to hash password: %v", err)
	}

	companion, err := db.CreateCompanion(ctx, *username, string(hash), *name, *description, *specialty, *avatarURL)
	if err != nil {
		fatal("failed to create companion: %v", err)
	}

	fmt.Printf("created companion %s (%s)\n", companion.ID, companion.Name)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
