package smoothlasso

import (
	"fmt"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"specinv/observe/staticLog"
)

// Settings 进程级求解默认值, yaml 加载。零值字段落回 DefaultSettings。
type Settings struct {
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
	NonNegative   bool    `yaml:"nonnegative"`
	Folds         int     `yaml:"folds"`
	Jobs          int     `yaml:"jobs"` // 0 = NumCPU
	LogPath       string  `yaml:"log_path"`
	LogLevel      string  `yaml:"log_level"`
}

// DefaultSettings 进程默认求解参数。
func DefaultSettings() Settings {
	return Settings{
		MaxIterations: 10000,
		Tolerance:     1e-5,
		NonNegative:   true,
		Folds:         10,
	}
}

// 用 atomic.Value 存当前配置, 热更新时无锁读取
var settingsValue atomic.Value // stores Settings

// LoadSettings 读取并校验 yaml 配置, 不落地。
func LoadSettings(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read yaml: %w", err)
	}

	c := DefaultSettings()
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Settings{}, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if c.MaxIterations <= 0 {
		return Settings{}, fmt.Errorf("invalid max_iterations: %d", c.MaxIterations)
	}
	if c.Tolerance <= 0 {
		return Settings{}, fmt.Errorf("invalid tolerance: %g", c.Tolerance)
	}
	if c.Folds < 2 {
		return Settings{}, fmt.Errorf("invalid folds: %d", c.Folds)
	}
	if c.Jobs < 0 {
		return Settings{}, fmt.Errorf("invalid jobs: %d", c.Jobs)
	}
	return c, nil
}

// InitSettings 加载配置并设为进程默认, 同时初始化日志输出。
func InitSettings(path string) error {
	c, err := LoadSettings(path)
	if err != nil {
		return err
	}
	settingsValue.Store(c)
	if c.LogPath != "" {
		staticLog.Init(c.LogPath, 0, 0)
	}
	if c.LogLevel != "" {
		staticLog.SetLevel(c.LogLevel)
	}
	return nil
}

// CurrentSettings 当前进程默认值, 未初始化时为 DefaultSettings。
func CurrentSettings() Settings {
	if v := settingsValue.Load(); v != nil {
		return v.(Settings)
	}
	return DefaultSettings()
}
