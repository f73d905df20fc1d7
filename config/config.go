// Package config gathers the demo settings from a .env file, the environment
// and the command line, in that order of precedence (last wins).
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/akmonengine/spine"
	"github.com/akmonengine/spine/chain"
	"github.com/joho/godotenv"
)

var ErrInvalid = errors.New("invalid config")

const (
	ModeWindow   = "window"
	ModeTerminal = "term"
	ModeHeadless = "headless"
)

type Config struct {
	// Assets
	MeshPath      string
	ColorMapPath  string
	NormalMapPath string
	// Synthetic builds a column of that many vertebrae instead of loading files
	Synthetic int

	// Simulation
	Gravity     float64
	FixedStep   float64
	MaxSubsteps int
	Substeps    int
	Workers     int
	AllowSleep  bool

	// Chain
	SegmentMass      float64
	RadiusDivisor    float64
	Pivot            string
	Joint            string
	JointDamping     float64
	CollideConnected bool
	SyncRotation     bool
	Ground           bool
	GroundHeight     float64

	// Controller defaults
	MouseForce float64
	Step       bool
	Raycast    bool
	Shadows    bool

	// Runtime
	Mode    string
	Hz      int
	Ticks   uint64
	Width   int
	Height  int
	Audio   bool
	Verbose bool
}

func Default() Config {
	return Config{
		MeshPath:      "spine.obj",
		ColorMapPath:  "spine_color.jpg",
		NormalMapPath: "spine_normal.jpg",

		Gravity:     -9.8,
		FixedStep:   1.0 / 60.0,
		MaxSubsteps: 1,
		Substeps:    spine.DEFAULT_SUBSTEPS,
		Workers:     spine.DEFAULT_WORKERS,
		AllowSleep:  true,

		SegmentMass:   0.3,
		RadiusDivisor: 2,
		Pivot:         chain.PivotOrigin.String(),
		GroundHeight:  -5,

		MouseForce: 30,
		Step:       false,
		Raycast:    true,
		Shadows:    true,

		Mode:   ModeWindow,
		Hz:     60,
		Width:  1280,
		Height: 720,
		Audio:  true,
	}
}

// Load starts from Default, reads envFile when it exists, then applies the
// SPINE_* environment variables
func Load(envFile string) (Config, error) {
	cfg := Default()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	env := envReader{}
	env.asString("SPINE_MESH", &cfg.MeshPath)
	env.asString("SPINE_COLOR_MAP", &cfg.ColorMapPath)
	env.asString("SPINE_NORMAL_MAP", &cfg.NormalMapPath)
	env.asInt("SPINE_SYNTHETIC", &cfg.Synthetic)
	env.asFloat("SPINE_GRAVITY", &cfg.Gravity)
	env.asInt("SPINE_SUBSTEPS", &cfg.Substeps)
	env.asInt("SPINE_WORKERS", &cfg.Workers)
	env.asBool("SPINE_SLEEP", &cfg.AllowSleep)
	env.asFloat("SPINE_SEGMENT_MASS", &cfg.SegmentMass)
	env.asFloat("SPINE_RADIUS_DIVISOR", &cfg.RadiusDivisor)
	env.asString("SPINE_PIVOT", &cfg.Pivot)
	env.asString("SPINE_JOINT", &cfg.Joint)
	env.asFloat("SPINE_JOINT_DAMPING", &cfg.JointDamping)
	env.asBool("SPINE_COLLIDE_CONNECTED", &cfg.CollideConnected)
	env.asBool("SPINE_GROUND", &cfg.Ground)
	env.asFloat("SPINE_MOUSE_FORCE", &cfg.MouseForce)
	env.asBool("SPINE_STEP", &cfg.Step)
	env.asString("SPINE_MODE", &cfg.Mode)
	env.asBool("SPINE_AUDIO", &cfg.Audio)

	if env.err != nil {
		return cfg, env.err
	}

	return cfg, nil
}

// RegisterFlags binds the command line flags, defaults being the current values
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.MeshPath, "mesh", c.MeshPath, "Segmented OBJ mesh.")
	fs.StringVar(&c.ColorMapPath, "color", c.ColorMapPath, "Color texture.")
	fs.StringVar(&c.NormalMapPath, "normal", c.NormalMapPath, "Normal map texture.")
	fs.IntVar(&c.Synthetic, "synthetic", c.Synthetic, "Build a column of N vertebrae instead of loading assets.")

	fs.IntVar(&c.Substeps, "substeps", c.Substeps, "Solver substeps per physics step.")
	fs.IntVar(&c.Workers, "workers", c.Workers, "Goroutines used by the solver.")
	fs.BoolVar(&c.AllowSleep, "sleep", c.AllowSleep, "Let resting bodies fall asleep.")

	fs.Float64Var(&c.SegmentMass, "mass", c.SegmentMass, "Mass of every segment but the anchor.")
	fs.Float64Var(&c.RadiusDivisor, "raddiv", c.RadiusDivisor, "Bounding sphere radius divisor for colliders.")
	fs.StringVar(&c.Pivot, "pivot", c.Pivot, "Joint pivots: origin or midpoint.")
	fs.StringVar(&c.Joint, "joint", c.Joint, "Joint compliance preset ("+strings.Join(spine.CompliancePresetNames(), ", ")+").")
	fs.Float64Var(&c.JointDamping, "joint-damping", c.JointDamping, "Joint damping in 1/s.")
	fs.BoolVar(&c.CollideConnected, "collide-connected", c.CollideConnected, "Let jointed segments collide.")
	fs.BoolVar(&c.SyncRotation, "sync-rotation", c.SyncRotation, "Copy body rotations onto the mesh.")
	fs.BoolVar(&c.Ground, "ground", c.Ground, "Add a static ground plane.")

	fs.Float64Var(&c.MouseForce, "force", c.MouseForce, "Initial mouse force.")
	fs.BoolVar(&c.Step, "step", c.Step, "Start with the simulation running.")
	fs.BoolVar(&c.Raycast, "raycast", c.Raycast, "Start with raycasting enabled.")
	fs.BoolVar(&c.Shadows, "shadows", c.Shadows, "Start with shadows enabled.")

	fs.StringVar(&c.Mode, "mode", c.Mode, "window, term or headless.")
	fs.IntVar(&c.Hz, "hz", c.Hz, "Tick rate in headless mode.")
	fs.Uint64Var(&c.Ticks, "ticks", c.Ticks, "Stop after N ticks in headless mode (0 = run forever).")
	fs.IntVar(&c.Width, "width", c.Width, "Window width.")
	fs.IntVar(&c.Height, "height", c.Height, "Window height.")
	fs.BoolVar(&c.Audio, "audio", c.Audio, "Play a cue when a segment is pushed.")
	fs.BoolVar(&c.Verbose, "v", c.Verbose, "Log physics events.")
}

func (c Config) Validate() error {
	var problems []string

	if c.Synthetic < 0 {
		problems = append(problems, "synthetic must not be negative")
	}
	if c.Synthetic == 0 && (c.MeshPath == "" || c.ColorMapPath == "" || c.NormalMapPath == "") {
		problems = append(problems, "asset paths must be set")
	}
	if c.FixedStep <= 0 {
		problems = append(problems, "fixed step must be positive")
	}
	if c.MaxSubsteps < 1 {
		problems = append(problems, "max substeps must be at least 1")
	}
	if c.Substeps < 1 {
		problems = append(problems, "substeps must be at least 1")
	}
	if c.SegmentMass <= 0 {
		problems = append(problems, "segment mass must be positive")
	}
	if c.RadiusDivisor <= 0 {
		problems = append(problems, "radius divisor must be positive")
	}
	if _, err := chain.ParsePivotMode(c.Pivot); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Joint != "" {
		if _, err := spine.CompliancePreset(c.Joint); err != nil {
			problems = append(problems, err.Error())
		}
	}
	switch c.Mode {
	case ModeWindow, ModeTerminal, ModeHeadless:
	default:
		problems = append(problems, fmt.Sprintf("unknown mode %q", c.Mode))
	}
	if c.Mode == ModeHeadless && c.Hz <= 0 {
		problems = append(problems, "hz must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}

	return nil
}

// ChainOptions maps the config onto the chain builder options
func (c Config) ChainOptions() (chain.Options, error) {
	opts := chain.DefaultOptions()
	opts.SegmentMass = c.SegmentMass
	opts.RadiusDivisor = c.RadiusDivisor
	opts.JointDamping = c.JointDamping
	opts.CollideConnected = c.CollideConnected

	pivot, err := chain.ParsePivotMode(c.Pivot)
	if err != nil {
		return opts, err
	}
	opts.Pivot = pivot

	if c.Joint != "" {
		compliance, err := spine.CompliancePreset(c.Joint)
		if err != nil {
			return opts, err
		}
		opts.JointCompliance = compliance
	}

	return opts, nil
}

// envReader keeps the first parse error so every lookup stays a one-liner
type envReader struct {
	err error
}

func (r *envReader) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
}

func (r *envReader) asString(key string, dst *string) {
	if v, ok := r.lookup(key); ok {
		*dst = v
	}
}

func (r *envReader) asInt(key string, dst *int) {
	if v, ok := r.lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			r.fail(key, err)
			return
		}
		*dst = n
	}
}

func (r *envReader) asFloat(key string, dst *float64) {
	if v, ok := r.lookup(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			r.fail(key, err)
			return
		}
		*dst = f
	}
}

func (r *envReader) asBool(key string, dst *bool) {
	if v, ok := r.lookup(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			r.fail(key, err)
			return
		}
		*dst = b
	}
}

func (r *envReader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
	}
}
