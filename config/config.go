package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host     string `mapstructure:"host"`
			Password string `mapstructure:"password"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			DB       string `mapstructure:"db"`
			SSLMode  string `mapstructure:"sslmode"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Knowledge struct {
		PlacesEmbeddingsFile    string `mapstructure:"placesEmbeddingsFile"`
		EmergencyEmbeddingsFile string `mapstructure:"emergencyEmbeddingsFile"`
		CatalogFile             string `mapstructure:"catalogFile"`
		EmbeddingModel          string `mapstructure:"embeddingModel"`
		EmbeddingDimension      int    `mapstructure:"embeddingDimension"`
	} `mapstructure:"knowledge"`
	Itinerary struct {
		TransportMode          string  `mapstructure:"transportMode"`
		DayStartTime           string  `mapstructure:"dayStartTime"`
		DefaultDurationMinutes int     `mapstructure:"defaultDurationMinutes"`
		ResolverMinScore       float64 `mapstructure:"resolverMinScore"`
	} `mapstructure:"itinerary"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config, falling back to the embedded copy.
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	return config, nil
}
