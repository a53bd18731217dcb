// Package config loads the identification pipeline's tunables through
// viper: file, environment, and default-backed configuration bound into a
// single Config struct, mirroring the teacher's plain Config/DefaultConfig
// pattern but sourced from viper instead of hardcoded struct literals.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the pipeline's runtime tunables, the Go equivalent of the
// original's TrackingModeConsts trait plus this repo's HTTP/CLI surface
// settings.
type Config struct {
	// Host/Port/Debug are the cmd/server listen settings.
	Host  string
	Port  int
	Debug bool

	// AngleTolerance bounds how far an observed angular distance may be
	// from a catalog pair before it is no longer considered a candidate
	// match, in radians.
	AngleTolerance float64

	// PairsMax caps how many candidate database pairs StarTriangleIterator
	// retains per triangle side.
	PairsMax int

	// SpecularityMin is the minimum triangle area below which chirality is
	// considered unreliable and ignored rather than tested.
	SpecularityMin float64

	// LambdaPrecision is QUEST's Newton-iteration convergence tolerance.
	LambdaPrecision float64

	// NumBands is the number of fibonacci-lattice regions ChunkIteratorRegional
	// partitions the sky into.
	NumBands int

	// ChunkSizeMultiplier scales a chunk iterator's region radius relative
	// to the sensor field of view.
	ChunkSizeMultiplier float64
}

// DefaultConfig returns the pipeline's default tunables, matching the
// values spec.md's worked examples and internal/specularity.Default use.
func DefaultConfig() Config {
	return Config{
		Host:                "0.0.0.0",
		Port:                8080,
		Debug:               false,
		AngleTolerance:      0.0001,
		PairsMax:            10,
		SpecularityMin:      0.001,
		LambdaPrecision:     0.1,
		NumBands:            8,
		ChunkSizeMultiplier: 1.5,
	}
}

// Load builds a Config from defaults, an optional config file, and
// environment variables prefixed STARTRACKER_ (e.g. STARTRACKER_PORT),
// environment taking precedence over the file, which takes
// precedence over DefaultConfig.
func Load(configFile string) (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix("STARTRACKER")
	v.AutomaticEnv()

	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("debug", cfg.Debug)
	v.SetDefault("angle_tolerance", cfg.AngleTolerance)
	v.SetDefault("pairs_max", cfg.PairsMax)
	v.SetDefault("specularity_min", cfg.SpecularityMin)
	v.SetDefault("lambda_precision", cfg.LambdaPrecision)
	v.SetDefault("num_bands", cfg.NumBands)
	v.SetDefault("chunk_size_multiplier", cfg.ChunkSizeMultiplier)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", configFile, err)
		}
	}

	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.Debug = v.GetBool("debug")
	cfg.AngleTolerance = v.GetFloat64("angle_tolerance")
	cfg.PairsMax = v.GetInt("pairs_max")
	cfg.SpecularityMin = v.GetFloat64("specularity_min")
	cfg.LambdaPrecision = v.GetFloat64("lambda_precision")
	cfg.NumBands = v.GetInt("num_bands")
	cfg.ChunkSizeMultiplier = v.GetFloat64("chunk_size_multiplier")

	return cfg, nil
}
