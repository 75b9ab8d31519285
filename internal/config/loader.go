package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/hookfang/pkg/copyright"
	"github.com/Sumatoshi-tech/hookfang/pkg/importcheck"
	"github.com/Sumatoshi-tech/hookfang/pkg/versionbump"
)

// configName is the config file name without extension.
const configName = ".hookfang"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for hookfang settings.
const envPrefix = "HOOKFANG"

// ErrSchema indicates the config document failed JSON Schema validation.
var ErrSchema = errors.New("config schema violation")

// Load reads configuration from file, env vars, and defaults. A non-empty
// configPath selects an explicit file; otherwise .hookfang.yaml is searched
// in CWD then $HOME. Missing config file is not an error; defaults apply.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) && configPath == "" {
			return nil, fmt.Errorf("read config: %w", readErr)
		}

		if configPath != "" {
			return nil, fmt.Errorf("read config %s: %w", configPath, readErr)
		}
	}

	if schemaErr := validateSchema(viperCfg.AllSettings()); schemaErr != nil {
		return nil, schemaErr
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// validateSchema checks the merged settings document against the embedded
// JSON Schema, so unknown keys fail loudly instead of being ignored.
func validateSchema(settings map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaDocument),
		gojsonschema.NewGoLoader(settings),
	)
	if err != nil {
		return fmt.Errorf("validate config schema: %w", err)
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}

	return fmt.Errorf("%w: %s", ErrSchema, strings.Join(details, "; "))
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("hooks", KnownHooks())
	viperCfg.SetDefault("jobs", 0)
	viperCfg.SetDefault("cache_dir", "")
	viperCfg.SetDefault("no_color", false)

	viperCfg.SetDefault("imports.type_checking_sentinels", importcheck.DefaultTypeCheckingSentinels())
	viperCfg.SetDefault("imports.suppression_token", importcheck.DefaultSuppressionToken)
	viperCfg.SetDefault("imports.max_fallback_statements", importcheck.DefaultMaxFallbackStatements)
	viperCfg.SetDefault("imports.skip_modules", []string{})
	viperCfg.SetDefault("imports.include_globs", []string{})

	viperCfg.SetDefault("version_bump.version_files", versionbump.DefaultVersionFiles())
	viperCfg.SetDefault("version_bump.upstream_fallback", true)

	viperCfg.SetDefault("copyright.owner", "")
	viperCfg.SetDefault("copyright.update", false)
	viperCfg.SetDefault("copyright.head_bytes", copyright.DefaultHeadBytes)
}
