package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Media    MediaConfig    `mapstructure:"media"`
	Services ServicesConfig `mapstructure:"services"`
	Features FeaturesConfig `mapstructure:"features"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`

	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type LoggerConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// MediaConfig describes the shared storage layout. LocalRoot is this
// process's mount of the media volume; DownloaderRoots are the path prefixes
// the download collaborator reports its artifacts under.
type MediaConfig struct {
	LocalRoot       string   `mapstructure:"local_root"`
	DownloaderRoots []string `mapstructure:"downloader_roots"`
}

type ServicesConfig struct {
	VideoServiceURL string        `mapstructure:"video_service_url"`
	ASRServiceURL   string        `mapstructure:"asr_service_url"`
	CallbackBaseURL string        `mapstructure:"callback_base_url"`
	DetectTimeout   time.Duration `mapstructure:"detect_timeout"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
	ASRTimeout      time.Duration `mapstructure:"asr_timeout"`
	ConvertTimeout  time.Duration `mapstructure:"convert_timeout"`
	CallbackTimeout time.Duration `mapstructure:"callback_timeout"`
}

type FeaturesConfig struct {
	EnableRequestLogging bool   `mapstructure:"enable_request_logging"`
	RequestIDHeader      string `mapstructure:"request_id_header"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetEnvPrefix("COPYWRITER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("media.local_root", "/app/media")
	viper.SetDefault("media.downloader_roots", []string{"./downloads", "/app/downloads"})
	viper.SetDefault("services.video_service_url", "http://video-service:80")
	viper.SetDefault("services.asr_service_url", "http://asr-service:8000")
	viper.SetDefault("services.detect_timeout", time.Minute)
	viper.SetDefault("services.download_timeout", 10*time.Minute)
	viper.SetDefault("services.asr_timeout", 10*time.Minute)
	viper.SetDefault("services.convert_timeout", 5*time.Minute)
	viper.SetDefault("services.callback_timeout", 10*time.Second)
}
