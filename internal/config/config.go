package config

import (
	"flag"
	"path/filepath"
	"regexp"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Адрес HTTP-сервера в виде host:port
	Addr string `env:"ADDR"`

	// DSN базы. Путь к файлу или file:-DSN выбирает встроенный SQLite,
	// postgres://-DSN или пары host=... — сетевой PostgreSQL.
	DatabaseDSN string `env:"DATABASE_URI"`

	// Каталог загруженных изображений инструментов
	UploadDir string `env:"UPLOAD_DIR"`

	// Секрет подписи JWT
	AuthSecret string `env:"AUTH_SECRET"`

	// bcrypt-хеш пароля администратора; пустое значение отключает
	// обязательную авторизацию на мутирующих маршрутах
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	flag.StringVar(&cfg.Addr, "a", cfg.Addr, "адрес сервера host:port")
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (путь SQLite или DSN PostgreSQL)")
	flag.StringVar(&cfg.UploadDir, "uploads", cfg.UploadDir, "каталог для загруженных изображений")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.StringVar(&cfg.AdminPasswordHash, "admin-hash", cfg.AdminPasswordHash, "bcrypt-хеш пароля администратора")
	flag.Parse()

	// Defaults
	// validate Addr: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.Addr) {
		cfg.Addr = "localhost:8080"
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = filepath.Join("data", "toolshed.db")
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}

	return cfg
}
