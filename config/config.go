package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort      string `mapstructure:"APP_PORT"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`
	Env          string `mapstructure:"ENV"`
	JWTSecret    string `mapstructure:"JWT_SECRET"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`

	// Rate limiting, expressed as requests per window.
	GlobalRateLimit int `mapstructure:"GLOBAL_RATE_LIMIT"`
	AuthRateLimit   int `mapstructure:"AUTH_RATE_LIMIT"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB   int    `mapstructure:"REDIS_AUTH_DB"`
	RedisOTPDB    int    `mapstructure:"REDIS_OTP_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Payments.
	StripeKey           string `mapstructure:"STRIPE_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	MPAccessToken       string `mapstructure:"MP_ACCESS_TOKEN"`
	MPWebhookSecret     string `mapstructure:"MP_WEBHOOK_SECRET"`
	MPNotificationURL   string `mapstructure:"MP_NOTIFICATION_URL"`

	// LLM providers.
	GroqAPIKey   string `mapstructure:"GROQ_API_KEY"`
	GroqBaseURL  string `mapstructure:"GROQ_BASE_URL"`
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`

	// Google / Firebase.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	FirebaseBucket          string `mapstructure:"FIREBASE_BUCKET"`

	// Cloudinary.
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`

	NewsFeedURL string `mapstructure:"NEWS_FEED_URL"`
	ExpoPushURL string `mapstructure:"EXPO_PUSH_URL"`
	// SocialWebhookURL receives published headlines for the marketing accounts; empty disables it.
	SocialWebhookURL string `mapstructure:"SOCIAL_MEDIA_WEBHOOK_URL"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "3000")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "aliado_laboral")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("GLOBAL_RATE_LIMIT", 100)
	viper.SetDefault("AUTH_RATE_LIMIT", 15)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_OTP_DB", 2)
	viper.SetDefault("REDIS_QUEUE_DB", 3)
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	viper.SetDefault("MP_ACCESS_TOKEN", "")
	viper.SetDefault("MP_WEBHOOK_SECRET", "")
	viper.SetDefault("MP_NOTIFICATION_URL", "")
	viper.SetDefault("GROQ_API_KEY", "")
	viper.SetDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "serviceAccountKey.json")
	viper.SetDefault("FIREBASE_BUCKET", "")
	viper.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	viper.SetDefault("CLOUDINARY_API_KEY", "")
	viper.SetDefault("CLOUDINARY_API_SECRET", "")
	viper.SetDefault("NEWS_FEED_URL", "https://news.google.com/rss/search?q=Ley+Federal+del+Trabajo+M%C3%A9xico&hl=es-419&gl=MX&ceid=MX:es-419")
	viper.SetDefault("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send")
	viper.SetDefault("SOCIAL_MEDIA_WEBHOOK_URL", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Window sizes for the per-IP limiters.
const (
	GlobalRateWindow = 15 * time.Minute
	AuthRateWindow   = time.Hour
)
