package camfov

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/arksecurity/camfov/fov/core"
	"github.com/arksecurity/camfov/fov/frustum"
	"github.com/arksecurity/camfov/fov/projector"
	"github.com/go-gl/mathgl/mgl32"
)

type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

func (p Point) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{p.X, p.Y, p.Z}
}

type roomRef struct {
	ID string `json:"id"`
}

// Tag is an annotation placed in the walkthrough. Camera tags become rigs.
type Tag struct {
	SID            string   `json:"sid"`
	Label          string   `json:"label"`
	Description    string   `json:"description"`
	AnchorPosition Point    `json:"anchorPosition"`
	RoomID         string   `json:"roomId,omitempty"`
	Room           string   `json:"room,omitempty"`
	AnchorRoom     string   `json:"anchorRoom,omitempty"`
	RoomInfo       *roomRef `json:"roomInfo,omitempty"`
}

// ResolvedRoom returns the first room id the tag carries, or "".
func (t Tag) ResolvedRoom() string {
	switch {
	case t.RoomID != "":
		return t.RoomID
	case t.Room != "":
		return t.Room
	case t.AnchorRoom != "":
		return t.AnchorRoom
	case t.RoomInfo != nil:
		return t.RoomInfo.ID
	}
	return ""
}

// NormalizeTags turns any tag payload a host may deliver into a list: a
// slice, a sequence, a map keyed by id, or the same shapes as raw JSON.
// Unknown shapes yield an empty list.
func NormalizeTags(payload any) []Tag {
	switch p := payload.(type) {
	case []Tag:
		return slices.Clone(p)
	case iter.Seq[Tag]:
		return slices.Collect(p)
	case map[string]Tag:
		out := make([]Tag, 0, len(p))
		for _, k := range slices.Sorted(maps.Keys(p)) {
			t := p[k]
			if t.SID == "" {
				t.SID = k
			}
			out = append(out, t)
		}
		return out
	case json.RawMessage:
		return decodeTags(p)
	case []byte:
		return decodeTags(p)
	}
	return nil
}

func decodeTags(data []byte) []Tag {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '[':
		var list []Tag
		if err := json.Unmarshal(data, &list); err != nil {
			return nil
		}
		return list
	case '{':
		var byID map[string]Tag
		if err := json.Unmarshal(data, &byID); err != nil {
			return nil
		}
		return NormalizeTags(byID)
	}
	return nil
}

// OpticalOverrides is a partial OpticalConfig; nil fields are left alone.
type OpticalOverrides struct {
	HFovDeg     *float32 `yaml:"hfov_deg,omitempty"`
	Near        *float32 `yaml:"near,omitempty"`
	Far         *float32 `yaml:"far,omitempty"`
	YawDeg      *float32 `yaml:"yaw_deg,omitempty"`
	TiltDeg     *float32 `yaml:"tilt_deg,omitempty"`
	SweepDeg    *float32 `yaml:"sweep_deg,omitempty"`
	YawSpeedDeg *float32 `yaml:"yaw_speed_deg,omitempty"`
}

// Merge returns o with every field set in over replacing it.
func (o OpticalOverrides) Merge(over OpticalOverrides) OpticalOverrides {
	pick := func(a, b *float32) *float32 {
		if b != nil {
			return b
		}
		return a
	}
	return OpticalOverrides{
		HFovDeg:     pick(o.HFovDeg, over.HFovDeg),
		Near:        pick(o.Near, over.Near),
		Far:         pick(o.Far, over.Far),
		YawDeg:      pick(o.YawDeg, over.YawDeg),
		TiltDeg:     pick(o.TiltDeg, over.TiltDeg),
		SweepDeg:    pick(o.SweepDeg, over.SweepDeg),
		YawSpeedDeg: pick(o.YawSpeedDeg, over.YawSpeedDeg),
	}
}

func (o OpticalOverrides) ApplyTo(c *OpticalConfig) {
	set := func(dst *float32, v *float32) {
		if v != nil {
			*dst = *v
		}
	}
	set(&c.HFovDeg, o.HFovDeg)
	set(&c.Near, o.Near)
	set(&c.Far, o.Far)
	set(&c.BaseYawDeg, o.YawDeg)
	set(&c.TiltDeg, o.TiltDeg)
	set(&c.SweepDeg, o.SweepDeg)
	set(&c.YawSpeedDeg, o.YawSpeedDeg)
}

var overrideKeys = map[string]*regexp.Regexp{
	"hfov": regexp.MustCompile(`(?i)\bhfov\s*[:=]\s*(-?\d+(?:\.\d+)?)`),
	"near": regexp.MustCompile(`(?i)\bnear\s*[:=]\s*(-?\d+(?:\.\d+)?)`),
	"far":  regexp.MustCompile(`(?i)\bfar\s*[:=]\s*(-?\d+(?:\.\d+)?)`),
	"yaw":  regexp.MustCompile(`(?i)\byaw\s*[:=]\s*(-?\d+(?:\.\d+)?)`),
	"tilt": regexp.MustCompile(`(?i)\btilt\s*[:=]\s*(-?\d+(?:\.\d+)?)`),
}

// ParseOverrides reads "key: value" or "key=value" settings (hfov, near, far,
// yaw, tilt) out of free text. The first occurrence of each key wins.
func ParseOverrides(text string) OpticalOverrides {
	num := func(key string) *float32 {
		m := overrideKeys[key].FindStringSubmatch(text)
		if m == nil {
			return nil
		}
		v, err := strconv.ParseFloat(m[1], 32)
		if err != nil {
			return nil
		}
		f := float32(v)
		return &f
	}
	return OpticalOverrides{
		HFovDeg: num("hfov"),
		Near:    num("near"),
		Far:     num("far"),
		YawDeg:  num("yaw"),
		TiltDeg: num("tilt"),
	}
}

type TagRules struct {
	Match               string                      `yaml:"match"`
	AdminLabel          string                      `yaml:"admin_label"`
	AdminDefaults       OpticalOverrides            `yaml:"admin_defaults"`
	DefaultOutdoor      OpticalOverrides            `yaml:"default_outdoor"`
	Presets             map[string]OpticalOverrides `yaml:"presets"`
	Aspect              float32                     `yaml:"aspect"`
	ApertureScale       float32                     `yaml:"aperture_scale"`
	GroundProbeDistance float32                     `yaml:"ground_probe_distance"`
	MissPolicy          projector.MissPolicy        `yaml:"miss_policy"`
}

// TagClassifier decides which tags are cameras and how to configure them.
type TagClassifier struct {
	rules TagRules
	match *regexp.Regexp
	style frustum.Style
	grid  projector.Grid
}

func NewTagClassifier(rules TagRules, style frustum.Style, grid projector.Grid) (*TagClassifier, error) {
	re, err := regexp.Compile(rules.Match)
	if err != nil {
		return nil, fmt.Errorf("tags: bad match pattern %q: %w", rules.Match, err)
	}
	return &TagClassifier{rules: rules, match: re, style: style, grid: grid}, nil
}

func (c *TagClassifier) IsCamera(t Tag) bool {
	return c.match.MatchString(t.Label)
}

func (c *TagClassifier) IsAdmin(t Tag) bool {
	return c.rules.AdminLabel != "" && t.Label == c.rules.AdminLabel
}

// Cameras filters tags down to camera tags, keeping order.
func (c *TagClassifier) Cameras(tags []Tag) []Tag {
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		if c.IsCamera(t) {
			out = append(out, t)
		}
	}
	return out
}

// Optics resolves a camera tag's configuration. Admin tags take the admin
// defaults over everything. Other tags take values written in the tag text,
// then the label preset, then the default outdoor preset.
func (c *TagClassifier) Optics(t Tag) OpticalConfig {
	cfg := OpticalConfig{
		Position:      t.AnchorPosition.Vec3(),
		Aspect:        c.rules.Aspect,
		ApertureScale: c.rules.ApertureScale,
	}
	text := ParseOverrides(t.Label + "\n" + t.Description)
	if c.IsAdmin(t) {
		text.Merge(c.rules.AdminDefaults).ApplyTo(&cfg)
		return cfg
	}
	base := c.rules.DefaultOutdoor
	if p, ok := c.rules.Presets[t.Label]; ok {
		base = base.Merge(p)
	}
	base.Merge(text).ApplyTo(&cfg)
	return cfg
}

// Spec builds the rig spec for the index-th camera tag.
func (c *TagClassifier) Spec(t Tag, index int) RigSpec {
	id := t.SID
	if id == "" {
		id = fmt.Sprintf("out-%d", index+1)
	}
	label := t.Label
	if label == "" {
		label = fmt.Sprintf("Outdoor %d", index+1)
	}
	kind := KindOutdoor
	if c.IsAdmin(t) {
		kind = KindAdminPan
	}
	return RigSpec{
		ID:         id,
		Label:      label,
		Kind:       kind,
		Config:     c.Optics(t),
		Style:      c.style,
		Grid:       c.grid,
		RoomID:     t.ResolvedRoom(),
		Confined:   kind == KindAdminPan,
		MissPolicy: c.rules.MissPolicy,
	}
}

// DiscoverTags waits up to timeout for the first pushed tag payload, then
// falls back to a pull. A failed pull yields no tags.
func DiscoverTags(ctx context.Context, src TagSource, timeout time.Duration, log Logger) []Tag {
	if log == nil {
		log = NewNopLogger()
	}
	pushed := make(chan any, 1)
	unsub, err := src.SubscribeTags(func(payload any) {
		select {
		case pushed <- payload:
		default:
		}
	})
	if err != nil {
		log.Debugf("tag subscription unavailable: %v", err)
	} else {
		timer := time.NewTimer(timeout)
		select {
		case p := <-pushed:
			timer.Stop()
			unsub()
			return NormalizeTags(p)
		case <-timer.C:
			log.Debugf("no pushed tags after %s, fetching", timeout)
		case <-ctx.Done():
			timer.Stop()
		}
		unsub()
	}

	payload, err := src.FetchTags(ctx)
	if err != nil {
		log.Warnf("tag fetch failed: %v", err)
		return nil
	}
	return NormalizeTags(payload)
}

// ProbeGround casts straight down from the rig root and caches the hit height
// as the rig's reference plane, or 0 when nothing is hit.
func ProbeGround(ctx context.Context, rc core.Raycaster, r *Rig, maxDist float32) float32 {
	ground := float32(0)
	hit, err := rc.Raycast(ctx, r.Root.WorldPosition(), mgl32.Vec3{0, -1, 0}, maxDist)
	if err == nil && hit.Hit {
		ground = hit.Position.Y()
	}
	r.GroundY = &ground
	return ground
}
