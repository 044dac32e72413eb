package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr        string
	JWTSecret       string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	MySQLDSN        string
	RoomLimit       int
	MaxPlayers      int
	ReconnectTTL    time.Duration
	RoomIdleTTL     time.Duration
	FinishedGrace   time.Duration
	SweepInterval   time.Duration
	LogLevel        string
	SendQueueSize   int
	ReadLimitBytes  int64
	MaxMsgPerSecond int
}

func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TUNEQUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("JWT_SECRET", "dev-secret")
	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MYSQL_DSN", "")
	v.SetDefault("ROOM_LIMIT", 1000)
	v.SetDefault("MAX_PLAYERS_PER_ROOM", 16)
	v.SetDefault("RECONNECT_TTL_SEC", 120)
	v.SetDefault("ROOM_IDLE_TTL_SEC", 1800)
	v.SetDefault("FINISHED_GRACE_SEC", 300)
	v.SetDefault("SWEEP_INTERVAL_SEC", 60)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SEND_QUEUE_SIZE", 256)
	v.SetDefault("READ_LIMIT_BYTES", 1048576)
	v.SetDefault("MAX_MSG_PER_SECOND", 30)

	cfg := Config{
		HTTPAddr:        v.GetString("HTTP_ADDR"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisDB:         v.GetInt("REDIS_DB"),
		MySQLDSN:        v.GetString("MYSQL_DSN"),
		RoomLimit:       v.GetInt("ROOM_LIMIT"),
		MaxPlayers:      v.GetInt("MAX_PLAYERS_PER_ROOM"),
		ReconnectTTL:    time.Duration(v.GetInt("RECONNECT_TTL_SEC")) * time.Second,
		RoomIdleTTL:     time.Duration(v.GetInt("ROOM_IDLE_TTL_SEC")) * time.Second,
		FinishedGrace:   time.Duration(v.GetInt("FINISHED_GRACE_SEC")) * time.Second,
		SweepInterval:   time.Duration(v.GetInt("SWEEP_INTERVAL_SEC")) * time.Second,
		LogLevel:        v.GetString("LOG_LEVEL"),
		SendQueueSize:   v.GetInt("SEND_QUEUE_SIZE"),
		ReadLimitBytes:  v.GetInt64("READ_LIMIT_BYTES"),
		MaxMsgPerSecond: v.GetInt("MAX_MSG_PER_SECOND"),
	}

	return cfg, nil
}
