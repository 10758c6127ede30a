package publish

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ControlRegionName is the fixed well-known control region identifier.
const ControlRegionName = "osrm-region-registry"

// Config is the publication controller's runtime configuration, bound
// from an optional config file, $HOME/.osrm-datastore, /etc, and
// OSRM_-prefixed environment variables, the way
// deploymenttheory-go-apfs/internal/disk/dmg.go binds its own config.
type Config struct {
	DatasetRoot       string `mapstructure:"dataset_root"`
	ControlRegionName string `mapstructure:"control_region_name"`
	LockPath          string `mapstructure:"lock_path"`
	NoMlock           bool   `mapstructure:"no_mlock"`
}

// LoadConfig reads configuration from a named config file searched
// across a handful of conventional paths, environment overrides bound
// with an OSRM_ prefix, then explicit defaults for anything still unset.
func LoadConfig() (Config, error) {
	v := viper.New()
	v.SetConfigName("osrm-datastore")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.osrm-datastore")
	v.AddConfigPath("/etc/osrm-datastore")

	v.SetDefault("dataset_root", "")
	v.SetDefault("control_region_name", ControlRegionName)
	v.SetDefault("lock_path", defaultLockPath())
	v.SetDefault("no_mlock", false)

	v.SetEnvPrefix("OSRM")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaultLockPath() string {
	return filepath.Join(os.TempDir(), "osrm-datastore.lock")
}
