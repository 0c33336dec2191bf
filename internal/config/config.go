// Package config loads desktop-agent settings from a YAML file, environment
// variables and a .env file, on top of built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DESKTOP_AGENT_PLANNER_MODE.
const EnvPrefix = "DESKTOP_AGENT"

// Planner backends.
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// Input methods.
const (
	InputText  = "text"
	InputVoice = "voice"
)

// Config is the root configuration.
type Config struct {
	Planner     PlannerConfig     `mapstructure:"planner"     yaml:"planner"`
	Input       InputConfig       `mapstructure:"input"       yaml:"input"`
	OCR         OCRConfig         `mapstructure:"ocr"         yaml:"ocr"`
	Locator     LocatorConfig     `mapstructure:"locator"     yaml:"locator"`
	Interpreter InterpreterConfig `mapstructure:"interpreter" yaml:"interpreter"`
	Memory      MemoryConfig      `mapstructure:"memory"      yaml:"memory"`
	Actions     ActionsConfig     `mapstructure:"actions"     yaml:"actions"`
	Voice       VoiceConfig       `mapstructure:"voice"       yaml:"voice"`
	Server      ServerConfig      `mapstructure:"server"      yaml:"server"`
	Logger      LoggerConfig      `mapstructure:"logger"      yaml:"logger"`
}

// PlannerConfig selects and configures the language-model backend.
type PlannerConfig struct {
	Mode             string        `mapstructure:"mode"               yaml:"mode"`
	SystemPromptFile string        `mapstructure:"system_prompt_file" yaml:"system_prompt_file"`
	Timeout          time.Duration `mapstructure:"timeout"            yaml:"timeout"`
	Proxy            string        `mapstructure:"proxy"              yaml:"proxy"`
	Local            LocalConfig   `mapstructure:"local"              yaml:"local"`
	Remote           RemoteConfig  `mapstructure:"remote"             yaml:"remote"`
}

// LocalConfig points at an Ollama server.
type LocalConfig struct {
	URL   string `mapstructure:"url"   yaml:"url"`
	Model string `mapstructure:"model" yaml:"model"`
}

// RemoteConfig points at an OpenAI-compatible chat completions endpoint.
type RemoteConfig struct {
	URL       string `mapstructure:"url"         yaml:"url"`
	Model     string `mapstructure:"model"       yaml:"model"`
	APIKeyEnv string `mapstructure:"api_key_env" yaml:"api_key_env"`
	Referer   string `mapstructure:"referer"     yaml:"referer"`
	Title     string `mapstructure:"title"       yaml:"title"`
}

// APIKey reads the bearer token from the configured environment variable.
func (r RemoteConfig) APIKey() string {
	return os.Getenv(r.APIKeyEnv)
}

// InputConfig selects how commands are captured.
type InputConfig struct {
	Method string `mapstructure:"method" yaml:"method"`
	Prompt string `mapstructure:"prompt" yaml:"prompt"`
}

// OCRConfig configures the external OCR binary.
type OCRConfig struct {
	Binary   string `mapstructure:"binary"   yaml:"binary"`
	Language string `mapstructure:"language" yaml:"language"`
}

// ComponentConfig describes how to find one named UI component on screen.
// Coordinates and thresholds depend on screen resolution and locale.
type ComponentConfig struct {
	Strategy  string        `mapstructure:"strategy"  yaml:"strategy"` // "ocr" or "template"
	Anchor    []string      `mapstructure:"anchor"    yaml:"anchor,omitempty"`
	OffsetX   int           `mapstructure:"offset_x"  yaml:"offset_x,omitempty"`
	OffsetY   int           `mapstructure:"offset_y"  yaml:"offset_y,omitempty"`
	Templates []string      `mapstructure:"templates" yaml:"templates,omitempty"`
	Threshold float64       `mapstructure:"threshold" yaml:"threshold,omitempty"`
	Timeout   time.Duration `mapstructure:"timeout"   yaml:"timeout"`
}

// LocatorConfig configures the screen locator.
type LocatorConfig struct {
	Interval   time.Duration              `mapstructure:"interval"    yaml:"interval"`
	FrameTTL   time.Duration              `mapstructure:"frame_ttl"   yaml:"frame_ttl"`
	MatchScale float64                    `mapstructure:"match_scale" yaml:"match_scale"`
	Components map[string]ComponentConfig `mapstructure:"components"  yaml:"components"`
}

// InterpreterConfig tunes plan execution.
type InterpreterConfig struct {
	DefaultDelay time.Duration `mapstructure:"default_delay" yaml:"default_delay"`
	StepTimeout  time.Duration `mapstructure:"step_timeout"  yaml:"step_timeout"`
}

// MemoryConfig bounds the conversation history.
type MemoryConfig struct {
	MaxInteractions int `mapstructure:"max_interactions" yaml:"max_interactions"`
}

// ActionsConfig configures the action executor.
type ActionsConfig struct {
	TypeDelay        time.Duration `mapstructure:"type_delay"         yaml:"type_delay"`
	LaunchDelay      time.Duration `mapstructure:"launch_delay"       yaml:"launch_delay"`
	ConfirmToken     string        `mapstructure:"confirm_token"      yaml:"confirm_token"`
	ScreenshotDir    string        `mapstructure:"screenshot_dir"     yaml:"screenshot_dir"`
	SearchDirs       []string      `mapstructure:"search_dirs"        yaml:"search_dirs"`
	Extensions       []string      `mapstructure:"extensions"         yaml:"extensions"`
	SearchURL        string        `mapstructure:"search_url"         yaml:"search_url"`
	TodoURL          string        `mapstructure:"todo_url"           yaml:"todo_url"`
	SpotifySearchURL string        `mapstructure:"spotify_search_url" yaml:"spotify_search_url"`
	BrowserHome      string        `mapstructure:"browser_home"       yaml:"browser_home"`
	PageLoadWait     time.Duration `mapstructure:"page_load_wait"     yaml:"page_load_wait"`
	Browsers         []string      `mapstructure:"browsers"           yaml:"browsers"`
	Terminals        []string      `mapstructure:"terminals"          yaml:"terminals"`
}

// VoiceConfig configures microphone capture and speech-to-text.
type VoiceConfig struct {
	Model      string        `mapstructure:"model"       yaml:"model"`
	Language   string        `mapstructure:"language"    yaml:"language"`
	MaxSeconds int           `mapstructure:"max_seconds" yaml:"max_seconds"`
	Silence    time.Duration `mapstructure:"silence"     yaml:"silence"`
	Threshold  float64       `mapstructure:"threshold"   yaml:"threshold"`
	CueFile    string        `mapstructure:"cue_file"    yaml:"cue_file"`
	DumpDir    string        `mapstructure:"dump_dir"    yaml:"dump_dir"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
}

// LoggerConfig holds the logger settings.
type LoggerConfig struct {
	Level        string `mapstructure:"level"         yaml:"level"`
	ConsoleLevel string `mapstructure:"console_level" yaml:"console_level"`
	Format       string `mapstructure:"format"        yaml:"format"`
	ServiceName  string `mapstructure:"service_name"  yaml:"service_name"`
	Dir          string `mapstructure:"dir"           yaml:"dir"`
	MaxSize      int    `mapstructure:"max_size"      yaml:"max_size"`
	MaxBackups   int    `mapstructure:"max_backups"   yaml:"max_backups"`
	MaxAge       int    `mapstructure:"max_age"       yaml:"max_age"`
	Compress     bool   `mapstructure:"compress"      yaml:"compress"`
	AddSource    bool   `mapstructure:"add_source"    yaml:"add_source"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	// -- Planner --
	v.SetDefault("planner.mode", ModeRemote)
	v.SetDefault("planner.system_prompt_file", "systemprompt.txt")
	v.SetDefault("planner.timeout", 30*time.Second)
	v.SetDefault("planner.proxy", "")
	v.SetDefault("planner.local.url", "http://localhost:11434")
	v.SetDefault("planner.local.model", "gemma3:latest")
	v.SetDefault("planner.remote.url", "https://openrouter.ai/api/v1")
	v.SetDefault("planner.remote.model", "tngtech/deepseek-r1t2-chimera:free")
	v.SetDefault("planner.remote.api_key_env", "OPENROUTER_API_KEY")
	v.SetDefault("planner.remote.referer", "https://slimeydev.github.io/")
	v.SetDefault("planner.remote.title", "AI Computer Agent")

	// -- Input --
	v.SetDefault("input.method", InputText)
	v.SetDefault("input.prompt", "> ")

	// -- OCR --
	v.SetDefault("ocr.binary", "tesseract")
	v.SetDefault("ocr.language", "eng")

	// -- Locator --
	v.SetDefault("locator.interval", 500*time.Millisecond)
	v.SetDefault("locator.frame_ttl", 200*time.Millisecond)
	v.SetDefault("locator.match_scale", 0.5)
	v.SetDefault("locator.components", map[string]interface{}{
		"artistcard": map[string]interface{}{
			"strategy": "ocr",
			"anchor":   []string{"top", "result"},
			"offset_x": 100,
			"offset_y": 200,
			"timeout":  "15s",
		},
		"playbutton": map[string]interface{}{
			"strategy": "template",
			"templates": []string{
				"imgrec/ref1.png",
				"imgrec/ref2.png",
				"imgrec/ref3.png",
				"imgrec/ref4.png",
			},
			"threshold": 0.9,
			"timeout":   "20s",
		},
	})

	// -- Interpreter --
	v.SetDefault("interpreter.default_delay", 10*time.Second)
	v.SetDefault("interpreter.step_timeout", 60*time.Second)

	// -- Memory --
	v.SetDefault("memory.max_interactions", 10)

	// -- Actions --
	v.SetDefault("actions.type_delay", 20*time.Millisecond)
	v.SetDefault("actions.launch_delay", time.Second)
	v.SetDefault("actions.confirm_token", "now")
	v.SetDefault("actions.screenshot_dir", ".")
	v.SetDefault("actions.search_dirs", []string{
		"~", "~/Desktop", "~/Documents", "~/Downloads", "~/Pictures", "~/Music", "~/Videos",
	})
	v.SetDefault("actions.extensions", []string{
		"", ".txt", ".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
		".jpg", ".jpeg", ".png", ".gif", ".mp3", ".mp4", ".avi", ".mov", ".zip", ".rar", ".exe",
	})
	v.SetDefault("actions.search_url", "https://www.google.com/search?q=")
	v.SetDefault("actions.todo_url", "https://calendar.google.com/calendar/u/0/r/tasks")
	v.SetDefault("actions.spotify_search_url", "https://open.spotify.com/search/")
	v.SetDefault("actions.browser_home", "https://google.com")
	v.SetDefault("actions.page_load_wait", 2*time.Second)
	v.SetDefault("actions.browsers", []string{"brave", "chrome", "firefox", "msedge", "safari"})
	v.SetDefault("actions.terminals", []string{"cmd", "terminal", "powershell"})

	// -- Voice --
	v.SetDefault("voice.model", "models/ggml-base.en.bin")
	v.SetDefault("voice.language", "en")
	v.SetDefault("voice.max_seconds", 10)
	v.SetDefault("voice.silence", 600*time.Millisecond)
	v.SetDefault("voice.threshold", 0.015)
	v.SetDefault("voice.cue_file", "")
	v.SetDefault("voice.dump_dir", "")

	// -- Server --
	v.SetDefault("server.name", "desktop-agent")

	// -- Logger --
	v.SetDefault("logger.level", "debug")
	v.SetDefault("logger.console_level", "warn")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "desktop-agent")
	v.SetDefault("logger.dir", "logs")
	v.SetDefault("logger.max_size", 20)
	v.SetDefault("logger.max_backups", 7)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.add_source", false)
}

// NewDefaultConfig returns the configuration built from defaults alone.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := NewConfigFromViper(v)
	if err != nil {
		panic(fmt.Sprintf("failed to build default config: %v", err))
	}
	return cfg
}

// Load reads configuration from path, or from the first default location
// that exists when path is empty. A .env file in the working directory is
// loaded into the environment first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("desktop-agent")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "desktop-agent"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return NewConfigFromViper(v)
}

// NewConfigFromViper unmarshals and validates a populated viper instance.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// TESSERACT_PATH is honored for compatibility with existing setups.
	_ = v.BindEnv("ocr.binary", EnvPrefix+"_OCR_BINARY", "TESSERACT_PATH")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	switch c.Planner.Mode {
	case ModeLocal, ModeRemote:
	default:
		return fmt.Errorf("planner.mode must be %q or %q, got %q", ModeLocal, ModeRemote, c.Planner.Mode)
	}
	switch c.Input.Method {
	case InputText, InputVoice:
	default:
		return fmt.Errorf("input.method must be %q or %q, got %q", InputText, InputVoice, c.Input.Method)
	}
	if c.Memory.MaxInteractions <= 0 {
		return fmt.Errorf("memory.max_interactions must be a positive integer")
	}
	if c.Locator.Interval <= 0 {
		return fmt.Errorf("locator.interval must be positive")
	}
	if c.Locator.MatchScale <= 0 || c.Locator.MatchScale > 1 {
		return fmt.Errorf("locator.match_scale must be in (0, 1]")
	}
	if c.Interpreter.DefaultDelay < 0 {
		return fmt.Errorf("interpreter.default_delay must not be negative")
	}
	if c.Actions.ConfirmToken == "" {
		return fmt.Errorf("actions.confirm_token must not be empty")
	}
	for name, comp := range c.Locator.Components {
		if err := comp.Validate(); err != nil {
			return fmt.Errorf("locator.components.%s: %w", name, err)
		}
	}
	return nil
}

// Validate checks one component definition.
func (c ComponentConfig) Validate() error {
	switch c.Strategy {
	case "ocr":
		if len(c.Anchor) == 0 {
			return fmt.Errorf("ocr strategy needs at least one anchor token")
		}
	case "template":
		if len(c.Templates) == 0 {
			return fmt.Errorf("template strategy needs at least one reference image")
		}
		if c.Threshold <= 0 || c.Threshold > 1 {
			return fmt.Errorf("threshold must be in (0, 1]")
		}
	default:
		return fmt.Errorf("unknown strategy %q (expected ocr or template)", c.Strategy)
	}
	return nil
}

// ExpandPath resolves a leading "~" to the user's home directory.
func ExpandPath(p string) string {
	expanded, err := homedir.Expand(p)
	if err != nil {
		return p
	}
	return expanded
}
