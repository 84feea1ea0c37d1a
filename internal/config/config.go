package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultFeedURL is the open-data export of the instantaneous fuel price feed.
const DefaultFeedURL = "https://data.economie.gouv.fr/api/explore/v2.1/catalog/datasets/prix-des-carburants-en-france-flux-instantane-v2/exports/json"

// Config holds all process configuration. It is built once at startup and
// passed by value into every component that needs it.
type Config struct {
	DB DBConfig

	ListenAddr   string
	FeedURL      string
	Department   string
	StationLimit int
	Schedule     string
	RetryDelay   time.Duration
}

// DBConfig names the store backend and how to reach it.
type DBConfig struct {
	Driver   string // postgrespool | postgres | sqlite | memory
	DSN      string // explicit DSN; overrides the DB_* variables when set
	Host     string
	User     string
	Password string
	Name     string
}

// Load reads configuration from a .env file (if present) and the
// environment. The DB_* variable names match the original deployment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment only")
	}

	v := viper.New()
	v.SetDefault("carbu_db_driver", "postgrespool")
	v.SetDefault("carbu_listen_addr", ":8000")
	v.SetDefault("carbu_feed_url", DefaultFeedURL)
	v.SetDefault("carbu_department", "69")
	v.SetDefault("carbu_station_limit", 100)
	v.SetDefault("carbu_schedule", "@daily")
	v.SetDefault("carbu_retry_delay", "5m")
	v.AutomaticEnv()

	// The original deployment uses mixed-case names (DB_host etc.). OS env
	// lookups are case-sensitive, so each DB variable is bound explicitly
	// to both the mixed-case name and the conventional uppercase one.
	for _, name := range []string{"host", "user", "password", "name"} {
		bindEnv(v, []string{"db_" + name, "DB_" + name, "DB_" + strings.ToUpper(name)})
	}
	for _, key := range []string{"carbu_db_driver", "carbu_db_dsn",
		"carbu_listen_addr", "carbu_feed_url", "carbu_department",
		"carbu_station_limit", "carbu_schedule", "carbu_retry_delay"} {
		bindEnv(v, []string{key})
	}

	retryDelay, err := time.ParseDuration(v.GetString("carbu_retry_delay"))
	if err != nil {
		return Config{}, fmt.Errorf("config: invalid CARBU_RETRY_DELAY: %w", err)
	}

	cfg := Config{
		DB: DBConfig{
			Driver:   v.GetString("carbu_db_driver"),
			DSN:      v.GetString("carbu_db_dsn"),
			Host:     v.GetString("db_host"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			Name:     v.GetString("db_name"),
		},
		ListenAddr:   v.GetString("carbu_listen_addr"),
		FeedURL:      v.GetString("carbu_feed_url"),
		Department:   v.GetString("carbu_department"),
		StationLimit: v.GetInt("carbu_station_limit"),
		Schedule:     v.GetString("carbu_schedule"),
		RetryDelay:   retryDelay,
	}

	if cfg.StationLimit <= 0 {
		cfg.StationLimit = 100
	}
	return cfg, nil
}

// PostgresDSN assembles a DSN from the DB_* variables unless an explicit
// CARBU_DB_DSN was provided.
func (d DBConfig) PostgresDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("postgres://%s:%s@%s:5432/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Name)
}

// bindEnv binds a viper key to one or more explicit environment variable
// names; with a single element the uppercased key itself is used.
func bindEnv(v *viper.Viper, input []string) {
	if err := v.BindEnv(input...); err != nil {
		log.Printf("config: could not bind env var for key %s: %v", input[0], err)
	}
}
