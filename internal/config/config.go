package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Scheduling пороги алгоритма подбора времени, все значения в минутах
type Scheduling struct {
	MinOverlapMin    int           // минимальное общее пересечение окон
	ClusterRadiusMin int           // радиус кластера при голосовании большинством
	GranularityMin   int           // округление вычисленного окна
	MinSessionMin    int           // минимальная длительность сессии
	DefaultStartMin  int           // окно по умолчанию при пустом входе
	DefaultEndMin    int
	MaxJoinGapMin    int           // 0 - заявка того же предмета всегда присоединяется
	LockWait         time.Duration // ожидание ячейки (subject, date)
	EnforceWindows   bool          // требовать окно учителя до создания сессии
}

type Config struct {
	TelegramToken string
	DBDSN         string
	Environment   string
	MigrationsDir string

	// Настройки LLM-нормализатора предметов; пустой ключ - только правила
	GroqAPIKey  string
	GroqModel   string
	GroqBaseURL string

	Scheduling Scheduling
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		DBDSN:         os.Getenv("DB_DSN"),
		Environment:   getEnv("ENV", "development"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
		GroqAPIKey:    os.Getenv("GROQ_API_KEY"),
		GroqModel:     getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
		GroqBaseURL:   getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		Scheduling: Scheduling{
			MinOverlapMin:    getEnvInt("MIN_OVERLAP_MIN", 30),
			ClusterRadiusMin: getEnvInt("CLUSTER_RADIUS_MIN", 120),
			GranularityMin:   getEnvInt("GRANULARITY_MIN", 30),
			MinSessionMin:    getEnvInt("MIN_SESSION_MIN", 60),
			DefaultStartMin:  getEnvInt("DEFAULT_WINDOW_START_MIN", 9*60),
			DefaultEndMin:    getEnvInt("DEFAULT_WINDOW_END_MIN", 10*60),
			MaxJoinGapMin:    getEnvInt("MAX_JOIN_GAP_MIN", 0),
			LockWait:         getEnvDuration("CELL_LOCK_WAIT", 2*time.Second),
			EnforceWindows:   getEnvBool("ENFORCE_TEACHER_WINDOWS", false),
		},
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using default %v", key, v, def)
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using default %s", key, v, def)
		return def
	}
	return d
}
