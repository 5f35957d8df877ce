// Package config loads the handcalc configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/handcalc/internal/calculator"
	"github.com/ayusman/handcalc/internal/capture"
	"github.com/ayusman/handcalc/internal/detector"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// maxFileSize bounds the config file read.
const maxFileSize = 1 << 20

// Config is the root configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Camera     CameraConfig     `yaml:"camera"`
	Detector   DetectorConfig   `yaml:"detector"`
	Calculator CalculatorConfig `yaml:"calculator"`
	Store      StoreConfig      `yaml:"store"`
	Log        LogConfig        `yaml:"log"`
	Tray       TrayConfig       `yaml:"tray"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// CameraConfig configures frame capture.
type CameraConfig struct {
	DeviceID int  `yaml:"device_id"`
	FPS      int  `yaml:"fps"`
	Width    int  `yaml:"width"`
	Height   int  `yaml:"height"`
	Mirror   bool `yaml:"mirror"`
}

// DetectorConfig configures the hand landmark detector.
type DetectorConfig struct {
	MaxHands               int     `yaml:"max_hands"`
	MinDetectionConfidence float64 `yaml:"min_detection_confidence"`
	MinTrackingConfidence  float64 `yaml:"min_tracking_confidence"`
}

// CalculatorConfig configures the gesture calculator core.
type CalculatorConfig struct {
	BufferSize    int           `yaml:"buffer_size"`
	Cooldown      time.Duration `yaml:"cooldown"`
	ResultDisplay time.Duration `yaml:"result_display"`
	HistorySize   int           `yaml:"history_size"`
}

// StoreConfig configures the calculation database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TrayConfig configures the system tray icon.
type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cam := capture.DefaultConfig()
	det := detector.DefaultConfig()
	calc := calculator.DefaultConfig()

	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Camera: CameraConfig{
			DeviceID: cam.DeviceID,
			FPS:      cam.FPS,
			Width:    cam.Width,
			Height:   cam.Height,
			Mirror:   cam.Mirror,
		},
		Detector: DetectorConfig{
			MaxHands:               det.MaxHands,
			MinDetectionConfidence: det.MinConfidence,
			MinTrackingConfidence:  det.MinTrackingConf,
		},
		Calculator: CalculatorConfig{
			BufferSize:    calc.BufferSize,
			Cooldown:      calc.Cooldown,
			ResultDisplay: calc.ResultDisplay,
			HistorySize:   calc.HistorySize,
		},
		Store: StoreConfig{Path: filepath.Join("~", ".handcalc", "handcalc.db")},
		Log:   LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults. Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Addr == "" {
		problems = append(problems, "server.addr is required")
	}
	if c.Camera.FPS <= 0 {
		problems = append(problems, "camera.fps must be positive")
	}
	if c.Detector.MaxHands < 1 || c.Detector.MaxHands > 2 {
		problems = append(problems, "detector.max_hands must be 1 or 2")
	}
	if !inUnitRange(c.Detector.MinDetectionConfidence) {
		problems = append(problems, "detector.min_detection_confidence must be within [0, 1]")
	}
	if !inUnitRange(c.Detector.MinTrackingConfidence) {
		problems = append(problems, "detector.min_tracking_confidence must be within [0, 1]")
	}
	if c.Calculator.BufferSize < 1 {
		problems = append(problems, "calculator.buffer_size must be at least 1")
	}
	if c.Calculator.Cooldown < 0 {
		problems = append(problems, "calculator.cooldown must not be negative")
	}
	if c.Calculator.ResultDisplay < 0 {
		problems = append(problems, "calculator.result_display must not be negative")
	}
	if c.Calculator.HistorySize < 1 {
		problems = append(problems, "calculator.history_size must be at least 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}

// StorePath returns the database path with a leading "~" expanded.
func (c *Config) StorePath() (string, error) {
	return expandHome(c.Store.Path)
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// EngineConfig converts the calculator section into the engine Config.
func (c *Config) EngineConfig() calculator.Config {
	return calculator.Config{
		BufferSize:    c.Calculator.BufferSize,
		Cooldown:      c.Calculator.Cooldown,
		ResultDisplay: c.Calculator.ResultDisplay,
		HistorySize:   c.Calculator.HistorySize,
	}
}

// CaptureConfig converts the camera section into the capture Config.
func (c *Config) CaptureConfig() capture.Config {
	return capture.Config{
		DeviceID: c.Camera.DeviceID,
		Width:    c.Camera.Width,
		Height:   c.Camera.Height,
		FPS:      c.Camera.FPS,
		Mirror:   c.Camera.Mirror,
	}
}

// DetectionConfig converts the detector section into the detector Config.
func (c *Config) DetectionConfig() detector.Config {
	return detector.Config{
		MaxHands:        c.Detector.MaxHands,
		MinConfidence:   c.Detector.MinDetectionConfidence,
		MinTrackingConf: c.Detector.MinTrackingConfidence,
	}
}
