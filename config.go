package camfov

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/arksecurity/camfov/fov/frustum"
	"github.com/arksecurity/camfov/fov/projector"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultConfigYAML []byte

type Config struct {
	Debug     bool         `yaml:"debug"`
	LogPrefix string       `yaml:"log_prefix"`
	Perf      PerfConfig   `yaml:"perf"`
	Style     StyleConfig  `yaml:"style"`
	Indoor    IndoorConfig `yaml:"indoor"`
	Gating    GatingConfig `yaml:"gating"`
	Tags      TagRules     `yaml:"tags"`
}

type PerfConfig struct {
	IndoorGrid           projector.Grid `yaml:"indoor_grid"`
	OutdoorGrid          projector.Grid `yaml:"outdoor_grid"`
	ProjectorMinInterval time.Duration  `yaml:"projector_min_interval"`
	OutdoorMinInterval   time.Duration  `yaml:"outdoor_min_interval"`
	MinMove              float32        `yaml:"min_move"`
	MinYawDeg            float32        `yaml:"min_yaw_deg"`
	TagTimeout           time.Duration  `yaml:"tag_timeout"`
}

type StyleConfig struct {
	Color            Color   `yaml:"color"`
	FillOpacity      float32 `yaml:"fill_opacity"`
	EdgeRadius       float32 `yaml:"edge_radius"`
	BaseEdgeRadius   float32 `yaml:"base_edge_radius"`
	FootprintOpacity float32 `yaml:"footprint_opacity"`
}

func (s StyleConfig) Frustum() frustum.Style {
	return frustum.Style{
		Color:          uint32(s.Color),
		FillOpacity:    s.FillOpacity,
		EdgeRadius:     s.EdgeRadius,
		BaseEdgeRadius: s.BaseEdgeRadius,
	}
}

type IndoorConfig struct {
	Enabled    bool                 `yaml:"enabled"`
	ID         string               `yaml:"id"`
	Label      string               `yaml:"label"`
	Optics     OpticalConfig        `yaml:"optics"`
	FloorY     float32              `yaml:"floor_y"`
	BoundRoom  string               `yaml:"bound_room"`
	MissPolicy projector.MissPolicy `yaml:"miss_policy"`
}

// IndoorSpec is the rig spec of the configured indoor camera.
func (c Config) IndoorSpec() RigSpec {
	return RigSpec{
		ID:         c.Indoor.ID,
		Label:      c.Indoor.Label,
		Kind:       KindIndoor,
		Config:     c.Indoor.Optics,
		Style:      c.Style.Frustum(),
		Grid:       c.Perf.IndoorGrid,
		RoomID:     c.Indoor.BoundRoom,
		Confined:   true,
		FloorY:     c.Indoor.FloorY,
		MissPolicy: c.Indoor.MissPolicy,
	}
}

// GatingConfig returns the gating flags with the pose filter thresholds filled in.
func (c Config) GatingConfig() GatingConfig {
	g := c.Gating
	g.MinMove = c.Perf.MinMove
	g.MinYawDeg = c.Perf.MinYawDeg
	return g
}

func (c Config) ProjectorSettings() ProjectorSettings {
	return ProjectorSettings{
		IndoorMinInterval:  c.Perf.ProjectorMinInterval,
		OutdoorMinInterval: c.Perf.OutdoorMinInterval,
	}
}

// Color is a 0xRRGGBB value written in YAML as "#rrggbb", "0xrrggbb" or an integer.
type Color uint32

func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		s = s[1:]
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s = s[2:]
	default:
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("color %q: %w", s, err)
		}
		return Color(v & 0xffffff), nil
	}
	if len(s) != 6 {
		return 0, fmt.Errorf("color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	return Color(v), nil
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseColor(value.Value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Color) MarshalYAML() (any, error) {
	return c.String(), nil
}

func (c Color) String() string {
	return fmt.Sprintf("#%06x", uint32(c))
}

// RGB splits the color into 8-bit channels.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		panic(fmt.Sprintf("camfov: embedded defaults: %v", err))
	}
	return cfg
}

// LoadConfig reads path over the defaults. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every problem found, joined.
func (c Config) Validate() error {
	var errs []error
	if _, err := regexp.Compile(c.Tags.Match); err != nil {
		errs = append(errs, fmt.Errorf("tags.match: %w", err))
	}
	grids := []struct {
		name string
		grid projector.Grid
	}{
		{"perf.indoor_grid", c.Perf.IndoorGrid},
		{"perf.outdoor_grid", c.Perf.OutdoorGrid},
	}
	for _, g := range grids {
		if g.grid.U < 2 || g.grid.V < 2 {
			errs = append(errs, fmt.Errorf("%s: %dx%d is smaller than 2x2", g.name, g.grid.U, g.grid.V))
		}
	}
	if c.Perf.ProjectorMinInterval < 0 || c.Perf.OutdoorMinInterval < 0 {
		errs = append(errs, errors.New("perf: min intervals must not be negative"))
	}
	if c.Perf.TagTimeout <= 0 {
		errs = append(errs, errors.New("perf.tag_timeout must be positive"))
	}
	if c.Tags.GroundProbeDistance <= 0 {
		errs = append(errs, errors.New("tags.ground_probe_distance must be positive"))
	}
	if c.Indoor.Enabled && c.Indoor.ID == "" {
		errs = append(errs, errors.New("indoor.id is required when the indoor rig is enabled"))
	}
	return errors.Join(errs...)
}
