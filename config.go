package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds everything the binary needs at startup. Defaults are
// overridable by an optional JSON config file, and the file in turn by
// explicit command-line flags.
type Config struct {
	Listen         string   `json:"listen"`
	CaptureSource  string   `json:"capture_source"`
	WeightsPath    string   `json:"weights_path"`
	ModelConfig    string   `json:"model_config_path"`
	NamesPath      string   `json:"names_path"`
	ObstacleLabels []string `json:"obstacle_labels"`
}

// DefaultConfig returns the built-in defaults: default camera, local
// port, model files under models/.
func DefaultConfig() Config {
	return Config{
		Listen:        ":5000",
		CaptureSource: "0",
		WeightsPath:   "models/yolov4-tiny.weights",
		ModelConfig:   "models/yolov4-tiny.cfg",
		NamesPath:     "models/coco.names",
	}
}

// Load overlays the config with values from a JSON file.
func (c *Config) Load(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return nil
}
