// Command tokengen registers an email in the user directory and prints a
// bearer token for it. It reads the same configuration layers as the
// server (-d, -s, ASSETVAULT_* and .env).
//
//	tokengen -email alice@example.com -ttl 24h
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/assetvault/internal/flagx"
	"github.com/dmitrijs2005/assetvault/internal/server/auth"
	"github.com/dmitrijs2005/assetvault/internal/server/config"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/repomanager"
	"golang.org/x/term"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tokengen:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadConfig()

	var (
		email string
		ttl   time.Duration
	)
	fs := flag.NewFlagSet("tokengen", flag.ContinueOnError)
	fs.StringVar(&email, "email", "", "user email")
	fs.DurationVar(&ttl, "ttl", time.Hour, "token validity")
	if err := fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-email", "-ttl"})); err != nil {
		return err
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("-email is required")
	}

	secret, err := readSecret(cfg.SecretKey)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	user, err := rm.Users(db).Upsert(ctx, email)
	if err != nil {
		return err
	}

	token, err := auth.GenerateToken(user.ID, []byte(secret), ttl)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "user %s (%s)\n", user.Email, user.ID)
	fmt.Println(token)
	return nil
}

// readSecret prompts for the signing secret on an interactive terminal
// unless ASSETVAULT_SECRET_KEY is set. Otherwise it falls back to the
// configured value.
func readSecret(configured string) (string, error) {
	if _, ok := os.LookupEnv("ASSETVAULT_SECRET_KEY"); ok {
		return configured, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return configured, nil
	}

	fmt.Fprint(os.Stderr, "Signing secret: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if s := strings.TrimSpace(string(b)); s != "" {
		return s, nil
	}
	return configured, nil
}
