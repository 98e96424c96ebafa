package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "networkiq"
)

type Config struct {
	User       string            `mapstructure:"user" validate:"required"`
	Store      *StoreConfig      `mapstructure:"store" validate:"required"`
	Extraction *ExtractionConfig `mapstructure:"extraction" validate:"required"`
	Matching   *MatchingConfig   `mapstructure:"matching" validate:"required"`
	AI         *AIConfig         `mapstructure:"ai"`
}

type StoreConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type ExtractionConfig struct {
	PreferStructured bool `mapstructure:"prefer-structured"`
}

type MatchingConfig struct {
	MaxParallel int           `mapstructure:"max-parallel" validate:"gte=1,lte=64"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	Gemini   *GeminiConfig `mapstructure:"gemini" validate:"required_if=Enabled true"`
}

type GeminiConfig struct {
	APIKey            string  `mapstructure:"api-key"`
	APIKeyFile        string  `mapstructure:"api-key-file"`
	Model             string  `mapstructure:"model" validate:"required"`
	MaxRetries        int     `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	MaxLogLength      int     `mapstructure:"max-log-length" validate:"gte=0"`
	RequestsPerSecond float64 `mapstructure:"requests-per-second" validate:"gte=0"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "networkiq scores profiles against your resume background and drafts outreach messages",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is networkiq.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("user", "u", "", "user whose background is read and written")
	rootCmd.PersistentFlags().String("store", "", "path to the json store file")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))
	viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("store"))
}

func setDefaults() {
	viper.SetDefault("user", "default")
	viper.SetDefault("store.path", app+"-store.json")
	viper.SetDefault("extraction.prefer-structured", true)
	viper.SetDefault("matching.max-parallel", 4)
	viper.SetDefault("matching.timeout", 30*time.Second)
	viper.SetDefault("ai.enabled", true)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.max-retries", 2)
	viper.SetDefault("ai.gemini.max-log-length", 200)
	viper.SetDefault("ai.gemini.requests-per-second", 2)
}

func initConfig() {
	// A missing .env is normal; the key may come from the environment or the config file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	// The version command works without any configuration.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional; defaults and flags cover everything. A broken one is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if err := validator.New().Struct(config); err != nil {
		return config, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}
