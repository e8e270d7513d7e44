package config

import (
	"time"

	"github.com/lumina/lts/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Chain       ChainConfig       `mapstructure:"chain"`
	IPFS        IPFSConfig        `mapstructure:"ipfs"`
	Auction     AuctionConfig     `mapstructure:"auction"`
	Marketplace MarketplaceConfig `mapstructure:"marketplace"`
	Task        TaskConfig        `mapstructure:"task"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      int    `mapstructure:"ttl"` // seconds
}

// ChainConfig describes the ticketing contract connection.
type ChainConfig struct {
	RpcUrl        string `mapstructure:"rpc_url"`
	ChainId       int64  `mapstructure:"chain_id"`
	ContractAddr  string `mapstructure:"contract_addr"`
	PrivateKey    string `mapstructure:"private_key"` // empty for read-only deployments
	StartBlock    uint64 `mapstructure:"start_block"`
	Confirmations int    `mapstructure:"confirmations"`
	EventWindow   int    `mapstructure:"event_window"` // trailing window for event scans
}

type IPFSConfig struct {
	Gateways       []string `mapstructure:"gateways"`
	GatewayTimeout int      `mapstructure:"gateway_timeout"` // seconds, per gateway
	PinURL         string   `mapstructure:"pin_url"`
	PinToken       string   `mapstructure:"pin_token"`
}

type AuctionConfig struct {
	MinDuration time.Duration `mapstructure:"min_duration"`
}

// MarketplaceConfig points the auction coordinator at the marketplace API.
type MarketplaceConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type TaskConfig struct {
	Interval int `mapstructure:"interval"` // seconds
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // stdout, stderr, file
	File   string `mapstructure:"file"`
}

func (l LogConfig) GetLevel() string  { return l.Level }
func (l LogConfig) GetOutput() string { return l.Output }
func (l LogConfig) GetFile() string   { return l.File }

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/lts")

	viper.SetDefault("server.port", "3001")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "lumina")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttl", 30)
	viper.SetDefault("chain.chain_id", 11155111)
	viper.SetDefault("chain.start_block", 0)
	viper.SetDefault("chain.confirmations", 12)
	viper.SetDefault("chain.event_window", 10)
	viper.SetDefault("ipfs.gateways", []string{
		"https://w3s.link/ipfs/",
		"https://gateway.pinata.cloud/ipfs/",
		"https://ipfs.io/ipfs/",
		"https://dweb.link/ipfs/",
	})
	viper.SetDefault("ipfs.gateway_timeout", 10)
	viper.SetDefault("auction.min_duration", time.Hour)
	viper.SetDefault("marketplace.base_url", "http://localhost:3001")
	viper.SetDefault("task.interval", 60)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
