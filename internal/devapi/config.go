package devapi

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

const (
	defaultAddr = ":1009"
	defaultDB   = "devapi.db"
)

// Config holds the server settings, read from the environment.
type Config struct {
	Addr   string
	DBPath string
	JWTKey string
}

// LoadConfig reads DEVAPI_ADDR, DEVAPI_DB and DEVAPI_JWT_KEY, after loading
// a .env file from the working directory if there is one.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	jwtKey := os.Getenv("DEVAPI_JWT_KEY")
	if jwtKey == "" {
		return nil, errors.New("DEVAPI_JWT_KEY environment variable is required")
	}

	addr := os.Getenv("DEVAPI_ADDR")
	if addr == "" {
		addr = defaultAddr
	}
	dbPath := os.Getenv("DEVAPI_DB")
	if dbPath == "" {
		dbPath = defaultDB
	}

	return &Config{Addr: addr, DBPath: dbPath, JWTKey: jwtKey}, nil
}
