package env

import (
	"os"
)

const defaultConfigFile = "infra/configs/config.yaml"

// PodName example: k8ssta-gallery-api-6868d88fbd-bz8zv
func PodName() string {
	return os.Getenv("PODNAME")
}

// ConfigFile is the yaml read at startup, CONFIG_FILE overrides the default location
func ConfigFile() string {
	if f := os.Getenv("CONFIG_FILE"); f != "" {
		return f
	}
	return defaultConfigFile
}
