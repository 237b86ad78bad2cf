package config

import (
	"fmt"
	"strings"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion       string `mapstructure:"GENERAL_VERSION"`
	Environment          string `mapstructure:"ENVIRONMENT"`
	ServerPort           int    `mapstructure:"SERVER_PORT"`
	DatabaseHost         string `mapstructure:"DB_HOST"`
	DatabasePort         int    `mapstructure:"DB_PORT"`
	DatabaseName         string `mapstructure:"DB_NAME"`
	DatabaseUser         string `mapstructure:"DB_USER"`
	DatabasePassword     string `mapstructure:"DB_PASSWORD"`
	DatabaseCacheAddress string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort    int    `mapstructure:"DB_CACHE_PORT"`
	DatabaseCacheReset   int    `mapstructure:"DB_CACHE_RESET"`
	CorsAllowOrigins     string `mapstructure:"CORS_ALLOW_ORIGINS"`
	SchedulerEnabled     bool   `mapstructure:"SCHEDULER_ENABLED"`

	TelegramBotToken    string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramDebug       bool   `mapstructure:"TELEGRAM_DEBUG"`
	SpotifyClientID     string `mapstructure:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `mapstructure:"SPOTIFY_CLIENT_SECRET"`
	YouTubeAPIKey       string `mapstructure:"YOUTUBE_API_KEY"`
	GeniusAccessToken   string `mapstructure:"GENIUS_ACCESS_TOKEN"`

	YtDlpBinary        string `mapstructure:"YTDLP_BINARY"`
	FFmpegBinary       string `mapstructure:"FFMPEG_BINARY"`
	FFprobeBinary      string `mapstructure:"FFPROBE_BINARY"`
	WorkDir            string `mapstructure:"WORK_DIR"`
	PublicDir          string `mapstructure:"PUBLIC_DIR"`
	PreviewDurationSec int    `mapstructure:"PREVIEW_DURATION_SEC"`
	FileLinkSecret     string `mapstructure:"FILE_LINK_SECRET"`
	FileLinkTTLMin     int    `mapstructure:"FILE_LINK_TTL_MIN"`
	ProgressStep       int    `mapstructure:"PROGRESS_STEP"`
}

var ConfigInstance Config

var envVars = []string{
	"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
	"DB_CACHE_ADDRESS", "DB_CACHE_PORT", "DB_CACHE_RESET",
	"CORS_ALLOW_ORIGINS", "SCHEDULER_ENABLED",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_DEBUG",
	"SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET", "YOUTUBE_API_KEY", "GENIUS_ACCESS_TOKEN",
	"YTDLP_BINARY", "FFMPEG_BINARY", "FFPROBE_BINARY", "WORK_DIR", "PUBLIC_DIR",
	"PREVIEW_DURATION_SEC", "FILE_LINK_SECRET", "FILE_LINK_TTL_MIN",
	"PROGRESS_STEP",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("DB_CACHE_RESET", -1)
	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("YTDLP_BINARY", "yt-dlp")
	v.SetDefault("FFMPEG_BINARY", "ffmpeg")
	v.SetDefault("FFPROBE_BINARY", "ffprobe")
	v.SetDefault("WORK_DIR", "tmp/work")
	v.SetDefault("PUBLIC_DIR", "tmp/public")
	v.SetDefault("PREVIEW_DURATION_SEC", 30)
	v.SetDefault("FILE_LINK_TTL_MIN", 60)
	v.SetDefault("PROGRESS_STEP", 5)
}

func New() (Config, error) {
	return Load(viper.GetViper())
}

// Load reads configuration from the environment, falling back to .env and
// .env.local when the core variables are not exported.
func Load(v *viper.Viper) (Config, error) {
	log := logger.New("config").Function("Load")
	log.Info("Initializing config")

	setDefaults(v)
	v.AutomaticEnv()

	for _, env := range envVars {
		if err := v.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	envVarsSet := v.IsSet("SERVER_PORT") && v.IsSet("DB_HOST")

	if envVarsSet {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		v.SetConfigFile(".env")
		v.SetConfigType("env")

		if err := v.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		v.SetConfigFile(".env.local")
		if err := v.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}

	log.Info("Successfully initialized config",
		"environment", config.Environment,
		"serverPort", config.ServerPort,
		"telegramEnabled", config.TelegramBotToken != "",
	)
	return ConfigInstance, nil
}

func GetConfig() Config {
	return ConfigInstance
}

func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error(
			"Fatal error: invalid server port",
			"port", config.ServerPort,
		)
	}

	if config.PreviewDurationSec <= 0 {
		return log.Error(
			"Fatal error: preview duration must be positive",
			"previewDurationSec", config.PreviewDurationSec,
		)
	}

	if config.WorkDir == "" {
		return log.ErrMsg("Fatal error: WORK_DIR is empty")
	}

	if config.FileLinkSecret == "" && config.PublicDir != "" {
		log.Warn("FILE_LINK_SECRET not set, web downloads will be disabled")
	}

	if (config.SpotifyClientID == "") != (config.SpotifyClientSecret == "") {
		return log.Errorf(
			"Fatal error: incomplete Spotify credentials",
			fmt.Sprintf("client id set: %t", config.SpotifyClientID != ""),
		)
	}

	ConfigInstance = config
	return nil
}
