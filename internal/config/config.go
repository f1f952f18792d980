package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Telegram TelegramConfig
	Game     GameConfig
}

// ServerConfig содержит настройки HTTP сервера (админ-панель/операционный API)
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single'.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`
}

// TelegramConfig содержит настройки клиента Bot API
type TelegramConfig struct {
	Token string `mapstructure:"token"`
	// APIURL: Базовый адрес Bot API. По умолчанию https://api.telegram.org.
	APIURL string `mapstructure:"api_url"`
	// PollTimeoutSec: Таймаут long poll запроса getUpdates в секундах
	PollTimeoutSec int `mapstructure:"poll_timeout_sec"`
}

// GameConfig содержит настройки игрового цикла
type GameConfig struct {
	// MinPlayers: Минимальное количество игроков, чтобы игра состоялась
	MinPlayers int `mapstructure:"min_players"`
	// RecruitWindowSec: Окно набора игроков в секундах
	RecruitWindowSec int `mapstructure:"recruit_window_sec"`
	// ThemeWindowSec: Окно выбора темы в секундах
	ThemeWindowSec int `mapstructure:"theme_window_sec"`
	// AnswerWindowSec: Окно приёма ответов в секундах
	AnswerWindowSec int `mapstructure:"answer_window_sec"`
	// Rounds: Количество вопросов за игру
	Rounds int `mapstructure:"rounds"`
	// ThemeRetryLimit: Предел попыток выбора темы внутри раунда
	ThemeRetryLimit int `mapstructure:"theme_retry_limit"`
}

// RecruitWindow возвращает окно набора игроков как Duration
func (g *GameConfig) RecruitWindow() time.Duration {
	return time.Duration(g.RecruitWindowSec) * time.Second
}

// ThemeWindow возвращает окно выбора темы как Duration
func (g *GameConfig) ThemeWindow() time.Duration {
	return time.Duration(g.ThemeWindowSec) * time.Second
}

// AnswerWindow возвращает окно приёма ответов как Duration
func (g *GameConfig) AnswerWindow() time.Duration {
	return time.Duration(g.AnswerWindowSec) * time.Second
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load загружает конфигурацию из файла
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	// Привязываем переменные окружения ЯВНО
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("telegram.token", "TELEGRAM_TOKEN")
	vip.BindEnv("telegram.api_url", "TELEGRAM_API_URL")
	vip.BindEnv("telegram.poll_timeout_sec", "TELEGRAM_POLL_TIMEOUT_SEC")

	vip.BindEnv("game.min_players", "GAME_MIN_PLAYERS")
	vip.BindEnv("game.recruit_window_sec", "GAME_RECRUIT_WINDOW_SEC")
	vip.BindEnv("game.theme_window_sec", "GAME_THEME_WINDOW_SEC")
	vip.BindEnv("game.answer_window_sec", "GAME_ANSWER_WINDOW_SEC")
	vip.BindEnv("game.rounds", "GAME_ROUNDS")
	vip.BindEnv("game.theme_retry_limit", "GAME_THEME_RETRY_LIMIT")

	vip.BindEnv("server.port", "SERVER_PORT")

	// Путь к файлу конфигурации; его отсутствие не фатально — есть BindEnv
	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Telegram.APIURL == "" {
		cfg.Telegram.APIURL = "https://api.telegram.org"
	}
	if cfg.Telegram.PollTimeoutSec == 0 {
		cfg.Telegram.PollTimeoutSec = 25
	}

	// Логирование конфигурации (только в debug режиме)
	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Port: %s", cfg.Database.Port)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Addr: %s", cfg.Redis.Addr)
		log.Printf("Telegram API URL: %s", cfg.Telegram.APIURL)
		log.Printf("Telegram Token Set: %t", cfg.Telegram.Token != "")
		log.Printf("Game Min Players: %d", cfg.Game.MinPlayers)
		log.Printf("Game Rounds: %d", cfg.Game.Rounds)
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("-----------------------------------------")
	}

	// Проверка обязательных параметров
	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("telegram token is required in config (check TELEGRAM_TOKEN env var)")
	}
	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		return nil, fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if cfg.Game.MinPlayers <= 0 || cfg.Game.Rounds <= 0 {
		return nil, fmt.Errorf("game configuration (min_players, rounds) must be positive (check GAME_MIN_PLAYERS, GAME_ROUNDS env vars)")
	}
	if cfg.Game.RecruitWindowSec <= 0 || cfg.Game.ThemeWindowSec <= 0 || cfg.Game.AnswerWindowSec <= 0 {
		return nil, fmt.Errorf("game windows (recruit, theme, answer) must be positive")
	}
	if cfg.Game.ThemeRetryLimit <= 0 {
		return nil, fmt.Errorf("game theme_retry_limit must be positive")
	}

	return &cfg, nil
}
