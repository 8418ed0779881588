package service

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"simpleboard/app/repositories"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Config holds everything the commands need to reach the database and serve HTTP.
type Config struct {
	Addr     string
	DBDriver string
	DBDSN    string
	FlashDir string
	FlashTTL time.Duration
}

// ConfigFromEnv builds the default configuration, letting environment
// variables override the built-in values.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Addr:     ":8080",
		DBDriver: envOr("BOARD_DB_DRIVER", repositories.DriverSQLite),
		DBDSN:    envOr("BOARD_DB_DSN", "data/board.db"),
		FlashDir: envOr("BOARD_FLASH_DIR", "data/flash"),
		FlashTTL: 5 * time.Minute,
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	if addr := os.Getenv("BOARD_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if ttl := os.Getenv("BOARD_FLASH_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return cfg, errors.Wrap(err, "invalid BOARD_FLASH_TTL")
		}
		cfg.FlashTTL = d
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func openDB(cfg Config) (*sqlx.DB, error) {
	return repositories.Open(cfg.DBDriver, cfg.DBDSN)
}

// confirm asks a yes/no question and reports whether the answer was yes.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
