package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
	Topic    TopicConfig    `mapstructure:"topic"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type DatabaseConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Driver   string         `mapstructure:"driver"` // "gorm" or "postgres"
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// GameConfig holds the phase timing and room lifecycle knobs.
type GameConfig struct {
	DescribeDuration time.Duration `mapstructure:"describe_duration"`
	DebateDuration   time.Duration `mapstructure:"debate_duration"`
	VoteDuration     time.Duration `mapstructure:"vote_duration"`
	ResultsDelay     time.Duration `mapstructure:"results_delay"`
	RoomTTL          time.Duration `mapstructure:"room_ttl"`
	SweepInterval    time.Duration `mapstructure:"sweep_interval"`
}

type TopicConfig struct {
	CatalogURL   string        `mapstructure:"catalog_url"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_address", ":3000")
	v.SetDefault("server.rpc_address", ":3001")
	v.SetDefault("server.metrics_address", ":9100")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.driver", "gorm")
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "impostor")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.dbname", "impostor")

	v.SetDefault("game.describe_duration", 45*time.Second)
	v.SetDefault("game.debate_duration", 90*time.Second)
	v.SetDefault("game.vote_duration", 45*time.Second)
	v.SetDefault("game.results_delay", 8*time.Second)
	v.SetDefault("game.room_ttl", 30*time.Minute)
	v.SetDefault("game.sweep_interval", 5*time.Minute)

	v.SetDefault("topic.catalog_url",
		"https://ddragon.leagueoflegends.com/cdn/14.17.1/data/en_US/champion.json")
	v.SetDefault("topic.fetch_timeout", 5*time.Second)
	v.SetDefault("topic.cache_ttl", 6*time.Hour)
}

// LoadConfig reads config.yaml from path, falling back to defaults when the
// file is absent. Environment variables override file values.
func LoadConfig(path string) (config *Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	setDefaults(v)
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	err = v.Unmarshal(&config)
	return
}
