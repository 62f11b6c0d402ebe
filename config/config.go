// Package config loads service configuration from environment variables,
// with an optional config.yaml next to the binary. Every key has a
// development-friendly default.
package config

import "github.com/spf13/viper"

type Config struct {
	Port   string `mapstructure:"PORT"`
	DBPath string `mapstructure:"DB_PATH"`
	Env    string `mapstructure:"APP_ENV"`
}

func Load() (*Config, error) {
	viper.SetEnvPrefix("ibank")
	viper.AutomaticEnv()
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DB_PATH", "ibank.db")
	viper.SetDefault("APP_ENV", "prod")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // optional file, env wins anyway

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
