package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Dosada05/selective-league/models"
	"github.com/Dosada05/selective-league/storage"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	// DatabaseURL пустой: данные хранятся в памяти процесса.
	DatabaseURL       string
	JWTSecretKey      string
	AdminPasswordHash string
	TokenTTL          time.Duration
	ServerPort        int
	RankingMode       models.RankingMode
	LogLevel          slog.Level
	CORSOrigins       []string
	// EloExactUndo: отмена матча восстанавливает сохраненную дельту Elo.
	EloExactUndo      bool
	R2                storage.CloudflareR2Config
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (*Config, error) {
	jwtKey := getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	adminHash := getenv("ADMIN_PASSWORD_HASH")
	if adminHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH environment variable is not set")
	}

	portStr := getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080" // Порт по умолчанию
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	mode := models.RankingMode(strings.ToLower(getenv("RANKING_MODE")))
	if mode == "" {
		mode = models.RankingPoints
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("RANKING_MODE must be %q or %q, got %q", models.RankingPoints, models.RankingElo, mode)
	}

	var level slog.Level
	if lv := getenv("LOG_LEVEL"); lv != "" {
		if err := level.UnmarshalText([]byte(lv)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
		}
	}

	ttl := 24 * time.Hour
	if v := getenv("TOKEN_TTL"); v != "" {
		if ttl, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL environment variable: %w", err)
		}
	}

	origins := []string{"*"}
	if v := getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins = origins[:0]
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	exactUndo := false
	if v := getenv("ELO_EXACT_UNDO"); v != "" {
		if exactUndo, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid ELO_EXACT_UNDO environment variable: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:       getenv("DATABASE_URL"),
		JWTSecretKey:      jwtKey,
		AdminPasswordHash: adminHash,
		TokenTTL:          ttl,
		ServerPort:        port,
		RankingMode:       mode,
		LogLevel:          level,
		CORSOrigins:       origins,
		EloExactUndo:      exactUndo,
		R2: storage.CloudflareR2Config{
			AccountID:       getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   getenv("R2_PUBLIC_BASE_URL"),
		},
	}

	return cfg, nil
}
