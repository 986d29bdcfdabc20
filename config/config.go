package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "ECOM_ADMIN_CONFIG_FILE"

type api struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	CAFile  string        `mapstructure:"ca_file"`
}

type list struct {
	Debounce     time.Duration `mapstructure:"debounce"`
	DefaultLimit int           `mapstructure:"default_limit"`
	MaxLimit     int           `mapstructure:"max_limit"`
}

type session struct {
	KeyringService string `mapstructure:"keyring_service"`
	KeyringUser    string `mapstructure:"keyring_user"`
}

type cache struct {
	RedisAddr   string        `mapstructure:"redis_addr"`
	RedisDB     int           `mapstructure:"redis_db"`
	CategoryTTL time.Duration `mapstructure:"category_ttl"`
}

type consumers struct {
	ActivitySaverGroup   string `mapstructure:"activity_saver_group"`
	ActivityCounterGroup string `mapstructure:"activity_counter_group"`
}

type topics struct {
	AdminActivity string `mapstructure:"admin_activity"`
}

type tlsFiles struct {
	CAFile   string `mapstructure:"ca_file"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

type broker struct {
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	TLS                tlsFiles  `mapstructure:"tls"`
	Topics             topics    `mapstructure:"topics"`
	Consumers          consumers `mapstructure:"consumers"`
}

type Config struct {
	LogLevel    slog.Level `mapstructure:"log_level"`
	API         api        `mapstructure:"api"`
	List        list       `mapstructure:"list"`
	Session     session    `mapstructure:"session"`
	Cache       cache      `mapstructure:"cache"`
	MetricsAddr string     `mapstructure:"metrics_addr"`
	SQLDB       string     `mapstructure:"sql_db"`
	Broker      broker     `mapstructure:"broker"`
}

// ActivityEnabled reports whether mutations are published to the broker.
func (c Config) ActivityEnabled() bool {
	return len(c.Broker.SeedBrokers) != 0 && c.Broker.Topics.AdminActivity != ""
}

// Load reads the config file named by --config or the
// ECOM_ADMIN_CONFIG_FILE variable and exits on failure.
func Load() Config {
	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

// LoadFile reads path over the defaults.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("list.debounce", 300*time.Millisecond)
	v.SetDefault("list.default_limit", 20)
	v.SetDefault("list.max_limit", 100)
	v.SetDefault("session.keyring_service", "ecom-admin")
	v.SetDefault("session.keyring_user", "session")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.category_ttl", 5*time.Minute)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("broker.topics.admin_activity", "admin-activity")
	v.SetDefault("broker.consumers.activity_saver_group", "activity-saver")
	v.SetDefault("broker.consumers.activity_counter_group", "activity-counter")
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	cmdLine.ParseErrorsWhitelist.UnknownFlags = true
	cmdLine.Usage = func() {}
	arg := cmdLine.String("config", "./config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	MetricsAddr=%q
	SQLDB=%q

	API:
	BaseURL=%q
	Timeout=%s
	CAFile=%q

	List:
	Debounce=%s
	DefaultLimit=%d
	MaxLimit=%d

	Session:
	KeyringService=%q
	KeyringUser=%q

	Cache:
	RedisAddr=%q
	RedisDB=%d
	CategoryTTL=%s

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	Topics:
		AdminActivity=%q
	Consumers:
		ActivitySaverGroup=%q
		ActivityCounterGroup=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.MetricsAddr,
		c.SQLDB,
		c.API.BaseURL,
		c.API.Timeout,
		c.API.CAFile,
		c.List.Debounce,
		c.List.DefaultLimit,
		c.List.MaxLimit,
		c.Session.KeyringService,
		c.Session.KeyringUser,
		c.Cache.RedisAddr,
		c.Cache.RedisDB,
		c.Cache.CategoryTTL,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.Topics.AdminActivity,
		c.Broker.Consumers.ActivitySaverGroup,
		c.Broker.Consumers.ActivityCounterGroup,
	)
}
