package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Seed     SeedConfig
	Export   ExportConfig
	GCP      GCPConfig
	BigQuery BigQueryConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if err := cfg.Seed.validateWindow(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FOODGEN_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"FOODGEN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FOODGEN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FOODGEN_DB_DSN"`
	Schema string `envconfig:"FOODGEN_DB_SCHEMA" default:"oltp"`

	Host     string `envconfig:"PG_HOST" default:"localhost"`
	Port     int    `envconfig:"PG_PORT" default:"5432"`
	User     string `envconfig:"PG_USER" default:"postgres"`
	Password string `envconfig:"PG_PASSWORD" default:"postgres"`
	Name     string `envconfig:"PG_DB" default:"food_delivery"`
	SSLMode  string `envconfig:"PG_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FOODGEN_DB_MAX_OPEN_CONNS" default:"4"`
	MaxIdleConns    int           `envconfig:"FOODGEN_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"FOODGEN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FOODGEN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// SeedConfig carries every knob of the generation run. A single base seed
// drives all derived generator streams, so identical config against a fresh
// schema reproduces the identical dataset.
type SeedConfig struct {
	Seed  int64 `envconfig:"FOODGEN_SEED" default:"123"`
	Reset bool  `envconfig:"FOODGEN_RESET" default:"false"`

	Customers          int `envconfig:"FOODGEN_CUSTOMERS" default:"10000" validate:"min=1"`
	Brands             int `envconfig:"FOODGEN_BRANDS" default:"60" validate:"min=1"`
	Outlets            int `envconfig:"FOODGEN_OUTLETS" default:"450" validate:"min=1"`
	MenuItemsPerOutlet int `envconfig:"FOODGEN_MENU_ITEMS_PER_OUTLET" default:"50" validate:"min=1"`
	Couriers           int `envconfig:"FOODGEN_COURIERS" default:"3000" validate:"min=1"`
	Orders             int `envconfig:"FOODGEN_ORDERS" default:"200000" validate:"min=1"`

	FXDays            int `envconfig:"FOODGEN_FX_DAYS" default:"120" validate:"min=1"`
	OrdersDays        int `envconfig:"FOODGEN_ORDERS_DAYS" default:"90" validate:"min=1"`
	SafetyBufferHours int `envconfig:"FOODGEN_SAFETY_BUFFER_HOURS" default:"8" validate:"min=1"`

	BatchSize int `envconfig:"FOODGEN_BATCH_SIZE" default:"50000" validate:"min=1"`
}

// OrdersWindow returns the [start, end] interval order placement timestamps
// are drawn from, relative to now.
func (s SeedConfig) OrdersWindow(now time.Time) (time.Time, time.Time) {
	start := now.Add(-time.Duration(s.OrdersDays) * 24 * time.Hour)
	end := now.Add(-time.Duration(s.SafetyBufferHours) * time.Hour)
	return start, end
}

func (s SeedConfig) validateWindow() error {
	if s.OrdersDays*24 <= s.SafetyBufferHours {
		return fmt.Errorf("invalid orders window: safety buffer (%dh) must be shorter than the orders window (%dd)",
			s.SafetyBufferHours, s.OrdersDays)
	}
	return nil
}

type ExportConfig struct {
	OutDir string `envconfig:"FOODGEN_EXPORT_DIR" default:"export/bronze"`
	Sink   string `envconfig:"FOODGEN_EXPORT_SINK" default:"parquet" validate:"oneof=parquet bigquery"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"FOODGEN_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"FOODGEN_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"FOODGEN_GOOGLE_APPLICATION_CREDENTIALS"`
}

type BigQueryConfig struct {
	Dataset     string `envconfig:"FOODGEN_BIGQUERY_DATASET" default:"food_delivery_bronze"`
	TablePrefix string `envconfig:"FOODGEN_BIGQUERY_TABLE_PREFIX"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	if db.Host == "" || db.User == "" || db.Name == "" {
		return fmt.Errorf("either %s or %s, %s, %s are required", EnvDBDSN, EnvDBHost, EnvDBUser, EnvDBName)
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
