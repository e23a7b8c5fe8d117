package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Service   ServiceConfig   `mapstructure:"service"`
	Databases DatabasesConfig `mapstructure:"databases"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Quotes    QuotesConfig    `mapstructure:"quotes"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServiceConfig struct {
	Port string `mapstructure:"port"`
}

type DatabasesConfig struct {
	SQL SQLConfig `mapstructure:"sql"`
}

type SQLConfig struct {
	Host             string `mapstructure:"host"`
	Port             string `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Database         string `mapstructure:"database"`
	ConnectionString string `mapstructure:"connection_string"`
	// PasswordSecretID, when set, overrides Password with the value stored
	// in AWS Secrets Manager under that id.
	PasswordSecretID string `mapstructure:"passwordSecretId"`
	AWSRegion        string `mapstructure:"awsRegion"`
}

type AuthConfig struct {
	JWTSecret       string `mapstructure:"jwtSecret"`
	TokenTTLMinutes int    `mapstructure:"tokenTtlMinutes"`
	StartingCash    string `mapstructure:"startingCash"`
}

type QuotesConfig struct {
	BaseURL          string `mapstructure:"baseUrl"`
	CacheTTLSeconds  int    `mapstructure:"cacheTtlSeconds"`
	CacheSweepSpec   string `mapstructure:"cacheSweepSpec"`
	RequestTimeoutMS int    `mapstructure:"requestTimeoutMs"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

func LoadConfig(path string, env string) (*Config, error) {
	var cfg Config

	// Local .env overrides are optional.
	_ = godotenv.Load()

	viper.AddConfigPath(path)
	if env != "" {
		viper.SetConfigName(fmt.Sprintf("appsettings.%s", env))
	} else {
		viper.SetConfigName("appsettings")
	}
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
