// config.go - Configuration loaded from environment variables

package configs

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var (
	// Gemini AI Configuration
	GEMINI_API_KEYS  []string
	OCR_MODEL_NAME   string // multimodal model for prescription reading
	SPELL_MODEL_NAME string // text model for name verification

	// Pipeline behaviour
	ENABLE_SEARCH_GROUNDING bool
	VERIFY_CONCURRENCY      int
	PIPELINE_TIMEOUT        int // seconds, whole Process() call
	PROCESS_MAX_ATTEMPTS    int // caller-side retry around Process(); 1 disables it

	// Outbound Gemini rate limit
	GEMINI_RPM   int
	GEMINI_BURST int

	// Gemini Pricing Configuration (per 1M tokens in USD)
	OCR_INPUT_PRICE_PER_MILLION    float64
	OCR_OUTPUT_PRICE_PER_MILLION   float64
	SPELL_INPUT_PRICE_PER_MILLION  float64
	SPELL_OUTPUT_PRICE_PER_MILLION float64

	// Server Configuration
	PORT                string
	ALLOWED_ORIGINS     string
	MAX_UPLOAD_MB       int
	CLIENT_RATE_PER_SEC float64
	CLIENT_RATE_BURST   int64

	// Session storage. Empty MONGO_URI keeps sessions in memory.
	MONGO_URI           string
	MONGO_DB_NAME       string
	SESSION_TTL_MINUTES int

	// openFDA drug label lookups. FDA_BASE_URL "off" disables them.
	FDA_BASE_URL string
	FDA_API_KEY  string

	// Image preprocessing settings
	ENABLE_IMAGE_PREPROCESSING bool
	MAX_IMAGE_DIMENSION        int
)

// legacyKeyVars are read after GEMINI_API_KEYS, in this order.
var legacyKeyVars = []string{"GEMINI_API_KEY", "API_KEY", "API_KEY1", "API_KEY2", "API_KEY3", "API_KEY4"}

// LoadConfig loads configuration from environment variables.
// Missing API keys are not fatal here; the key rotator reports them.
func LoadConfig() {
	// Load .env file if exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	GEMINI_API_KEYS = collectAPIKeys()

	OCR_MODEL_NAME = getEnv("OCR_MODEL_NAME", "gemini-2.0-pro-exp-02-05")
	SPELL_MODEL_NAME = getEnv("SPELL_MODEL_NAME", "gemini-2.0-flash")

	ENABLE_SEARCH_GROUNDING = getEnvBool("ENABLE_SEARCH_GROUNDING", true)
	VERIFY_CONCURRENCY = getEnvInt("VERIFY_CONCURRENCY", 8)
	PIPELINE_TIMEOUT = getEnvInt("PIPELINE_TIMEOUT", 60)
	PROCESS_MAX_ATTEMPTS = getEnvInt("PROCESS_MAX_ATTEMPTS", 1)

	// gemini-2.0-flash free tier is 15 RPM per key
	GEMINI_RPM = getEnvInt("GEMINI_RPM", 15*max(len(GEMINI_API_KEYS), 1))
	GEMINI_BURST = getEnvInt("GEMINI_BURST", 10)

	OCR_INPUT_PRICE_PER_MILLION = getEnvFloat("OCR_INPUT_PRICE_PER_MILLION", 1.25)
	OCR_OUTPUT_PRICE_PER_MILLION = getEnvFloat("OCR_OUTPUT_PRICE_PER_MILLION", 10.0)
	SPELL_INPUT_PRICE_PER_MILLION = getEnvFloat("SPELL_INPUT_PRICE_PER_MILLION", 0.10)
	SPELL_OUTPUT_PRICE_PER_MILLION = getEnvFloat("SPELL_OUTPUT_PRICE_PER_MILLION", 0.40)

	PORT = getEnv("PORT", "8000")
	ALLOWED_ORIGINS = getEnv("ALLOWED_ORIGINS", "*")
	MAX_UPLOAD_MB = getEnvInt("MAX_UPLOAD_MB", 10)
	CLIENT_RATE_PER_SEC = getEnvFloat("CLIENT_RATE_PER_SEC", 0.5)
	CLIENT_RATE_BURST = int64(getEnvInt("CLIENT_RATE_BURST", 5))

	MONGO_URI = getEnv("MONGO_URI", "")
	MONGO_DB_NAME = getEnv("MONGO_DB_NAME", "pharmacist_assistant")
	SESSION_TTL_MINUTES = getEnvInt("SESSION_TTL_MINUTES", 120)

	FDA_BASE_URL = getEnv("FDA_BASE_URL", "https://api.fda.gov")
	FDA_API_KEY = getEnv("FDA_API_KEY", "")

	ENABLE_IMAGE_PREPROCESSING = getEnvBool("ENABLE_IMAGE_PREPROCESSING", false)
	MAX_IMAGE_DIMENSION = getEnvInt("MAX_IMAGE_DIMENSION", 2500)

	log.Printf("✓ Configuration loaded successfully (%d API key(s))", len(GEMINI_API_KEYS))
}

// collectAPIKeys merges GEMINI_API_KEYS with the single-key variables,
// dropping blanks and duplicates while keeping first-seen order.
func collectAPIKeys() []string {
	var raw []string
	raw = append(raw, strings.Split(os.Getenv("GEMINI_API_KEYS"), ",")...)
	for _, name := range legacyKeyVars {
		raw = append(raw, os.Getenv(name))
	}

	seen := make(map[string]bool)
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
