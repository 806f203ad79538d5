package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	DevMode       bool          `yaml:"dev_mode"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	TokenDuration time.Duration `yaml:"token_duration"`
	BcryptCost    int           `yaml:"bcrypt_cost"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes"`
	Upload        UploadConfig  `yaml:"upload"`
	RateLimit     RateLimit     `yaml:"rate_limit"`
}

type UploadConfig struct {
	Dir          string `yaml:"dir"`
	MaxFileBytes int64  `yaml:"max_file_bytes"`
}

type RateLimit struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:          getEnv("DEVMATCH_ADDR", ":8080"),
		DevMode:       os.Getenv("DEVMATCH_DEV_MODE") == "true",
		JWTSecret:     getEnv("DEVMATCH_JWT_SECRET", "supersecretkey"),
		APITimeout:    15 * time.Second,
		DatabasePath:  getEnv("DEVMATCH_DATABASE_PATH", "devmatch.db"),
		TokenDuration: 7 * 24 * time.Hour,
		BcryptCost:    12,
		MaxBodyBytes:  10 << 20,
		Upload: UploadConfig{
			Dir:          getEnv("DEVMATCH_UPLOAD_DIR", "uploads"),
			MaxFileBytes: 5 << 20,
		},
		RateLimit: RateLimit{
			Requests: 100,
			Window:   15 * time.Minute,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
