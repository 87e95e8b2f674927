package config

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultCatalogURL     = "https://fakestoreapi.com/products"
	defaultCatalogTimeout = 15 * time.Second
)

type Options struct {
	runAddr        string
	logLevel       string
	logFile        string
	catalogURL     string
	catalogTimeout string
	dataBaseDSN    string
	migrationsPath string
}

func NewOptions() *Options {
	return new(Options)
}

// ParseFlags handles command line arguments
// and stores their values in the corresponding variables.
func (o *Options) ParseFlags() {
	// Load environment variables from the .env file
	loadEnvFile()

	o.register(flag.CommandLine)

	// parse the arguments passed to the server into registered variables
	flag.Parse()
}

// Parse reads args into o using a private flag set. Environment variables
// still provide the defaults; the .env file is not consulted.
func (o *Options) Parse(args []string) error {
	fs := flag.NewFlagSet("shophub", flag.ContinueOnError)
	o.register(fs)
	return fs.Parse(args)
}

func (o *Options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.runAddr, "a", getEnvOrDefault("RUN_ADDRESS", ":8080"), "address and port to run server")
	fs.StringVar(&o.logLevel, "l", getEnvOrDefault("LOG_LEVEL", "info"), "log level")
	fs.StringVar(&o.logFile, "log-file", getEnvOrDefault("LOG_FILE", ""), "write logs to this file instead of stderr")
	fs.StringVar(&o.catalogURL, "c", getEnvOrDefault("CATALOG_URL", defaultCatalogURL), "product catalog endpoint")
	fs.StringVar(&o.catalogTimeout, "t", getEnvOrDefault("CATALOG_TIMEOUT", defaultCatalogTimeout.String()), "catalog fetch timeout")
	fs.StringVar(&o.dataBaseDSN, "d", getEnvOrDefault("DATABASE_URI", ""), "database connection string; when set the catalog is read from postgres")
	fs.StringVar(&o.migrationsPath, "m", getEnvOrDefault("MIGRATIONS_PATH", "migrations"), "directory with database migrations")
}

func (o *Options) RunAddr() string {
	return o.runAddr
}

func (o *Options) LogLevel() string {
	return o.logLevel
}

func (o *Options) LogFile() string {
	return o.logFile
}

func (o *Options) CatalogURL() string {
	return o.catalogURL
}

// CatalogTimeout returns the parsed fetch timeout. ok is false when the
// configured value was not a valid duration and the default was used.
func (o *Options) CatalogTimeout() (d time.Duration, ok bool) {
	d, err := time.ParseDuration(o.catalogTimeout)
	if err != nil || d < 0 {
		return defaultCatalogTimeout, false
	}
	return d, true
}

func (o *Options) DataBaseDSN() string {
	return o.dataBaseDSN
}

func (o *Options) MigrationsPath() string {
	return o.migrationsPath
}

// getEnvOrDefault reads an environment variable or returns a default value if the variable is not set or is empty.
func getEnvOrDefault(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// loadEnvFile loads environment variables from a .env file in the working directory
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	envPath := filepath.Join(cwd, ".env")

	if err := godotenv.Load(envPath); err == nil {
		log.Printf(".env file loaded from %s", envPath)
	}
}
