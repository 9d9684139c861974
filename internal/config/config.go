package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/hupe1980/hfcand"
	"github.com/hupe1980/hfcand/candidate"
	"github.com/hupe1980/hfcand/model"
	"github.com/hupe1980/hfcand/pdg"
	"github.com/hupe1980/hfcand/resource"
	"github.com/hupe1980/hfcand/vertex"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "HFCAND"

// Decay channels of the J/ψ.
const (
	ChannelEE   = "ee"
	ChannelMuMu = "mumu"
)

// Config is the full command-line configuration.
type Config struct {
	Fitter    vertex.Config `mapstructure:"fitter"`
	Candidate Candidate     `mapstructure:"candidate"`
	Truth     Truth         `mapstructure:"truth"`
	Resources Resources     `mapstructure:"resources"`
	Input     Input         `mapstructure:"input"`
	Output    Output        `mapstructure:"output"`
	Logging   Logging       `mapstructure:"logging"`
	Metrics   Metrics       `mapstructure:"metrics"`
}

// Candidate selects composites and second prongs.
type Candidate struct {
	Channel         string  `mapstructure:"channel" validate:"oneof=ee mumu"`
	SelectionFlag   int     `mapstructure:"selection_flag" validate:"gte=0"`
	YMax            float64 `mapstructure:"y_max"`
	SecondProngSign int     `mapstructure:"second_prong_sign" validate:"oneof=-1 0 1"`
	CompositeMass   float64 `mapstructure:"composite_mass" validate:"gte=0"`
	SecondProngMass float64 `mapstructure:"second_prong_mass" validate:"gte=0"`
}

// Truth controls Monte Carlo matching.
type Truth struct {
	Enabled             bool `mapstructure:"enabled"`
	OriginDepth         int  `mapstructure:"origin_depth"`
	AcceptAntiParticles bool `mapstructure:"accept_anti_particles"`
	RecDepth            int  `mapstructure:"rec_depth" validate:"gte=1"`
	GenDepth            int  `mapstructure:"gen_depth" validate:"gte=1"`
}

// Resources bounds concurrency, memory and output bandwidth.
type Resources struct {
	Workers           int   `mapstructure:"workers" validate:"gte=0"`
	BatchSize         int   `mapstructure:"batch_size" validate:"gte=0"`
	MemoryLimitBytes  int64 `mapstructure:"memory_limit_bytes" validate:"gte=0"`
	OutputBytesPerSec int64 `mapstructure:"output_bytes_per_sec" validate:"gte=0"`
}

// Store locates a blob store.
type Store struct {
	Backend     string `mapstructure:"backend" validate:"oneof=local memory s3 minio"`
	Dir         string `mapstructure:"dir" validate:"required_if=Backend local"`
	Bucket      string `mapstructure:"bucket" validate:"required_if=Backend s3,required_if=Backend minio"`
	Prefix      string `mapstructure:"prefix"`
	Region      string `mapstructure:"region"`
	Endpoint    string `mapstructure:"endpoint" validate:"required_if=Backend minio"`
	AccessKey   string `mapstructure:"access_key"`
	SecretKey   string `mapstructure:"secret_key"`
	Secure      bool   `mapstructure:"secure"`
	CommitTable string `mapstructure:"commit_table"`
}

// Input is the event stream.
type Input struct {
	Store `mapstructure:",squash"`
	Name  string `mapstructure:"name" validate:"required"`
}

// Output is where runs are published.
type Output struct {
	Store       `mapstructure:",squash"`
	Compression string `mapstructure:"compression" validate:"oneof=none zstd lz4"`
	Codec       string `mapstructure:"codec" validate:"oneof=go-json json"`
}

// Logging selects the log handler.
type Logging struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// Metrics configures the Prometheus endpoint. An empty Listen disables it.
type Metrics struct {
	Listen string `mapstructure:"listen" validate:"omitempty,hostname_port"`
}

// NewViper returns a Viper instance with defaults and environment
// overrides installed.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	f := vertex.DefaultConfig()
	v.SetDefault("fitter.bz", f.Bz)
	v.SetDefault("fitter.propagate_to_pca", f.PropagateToPCA)
	v.SetDefault("fitter.max_r", f.MaxR)
	v.SetDefault("fitter.max_dz_ini", f.MaxDZIni)
	v.SetDefault("fitter.min_param_change", f.MinParamChange)
	v.SetDefault("fitter.min_rel_chi2_change", f.MinRelChi2Change)
	v.SetDefault("fitter.use_abs_dca", f.UseAbsDCA)
	v.SetDefault("fitter.max_iterations", f.MaxIterations)

	c := candidate.DefaultConfig()
	v.SetDefault("candidate.channel", ChannelEE)
	v.SetDefault("candidate.selection_flag", c.SelectionFlag)
	v.SetDefault("candidate.y_max", c.YMax)
	v.SetDefault("candidate.second_prong_sign", c.SecondProngSign)
	v.SetDefault("candidate.composite_mass", c.CompositeMass)
	v.SetDefault("candidate.second_prong_mass", c.SecondProngMass)

	t := hfcand.DefaultConfig().Truth
	v.SetDefault("truth.enabled", false)
	v.SetDefault("truth.origin_depth", t.OriginDepth)
	v.SetDefault("truth.accept_anti_particles", t.AcceptAntiParticles)
	v.SetDefault("truth.rec_depth", t.Signature.RecDepth)
	v.SetDefault("truth.gen_depth", t.Signature.GenDepth)

	v.SetDefault("resources.workers", 0)
	v.SetDefault("resources.batch_size", 0)
	v.SetDefault("resources.memory_limit_bytes", 0)
	v.SetDefault("resources.output_bytes_per_sec", 0)

	for _, s := range []string{"input", "output"} {
		v.SetDefault(s+".backend", "local")
		v.SetDefault(s+".dir", ".")
		v.SetDefault(s+".bucket", "")
		v.SetDefault(s+".prefix", "")
		v.SetDefault(s+".region", "")
		v.SetDefault(s+".endpoint", "")
		v.SetDefault(s+".access_key", "")
		v.SetDefault(s+".secret_key", "")
		v.SetDefault(s+".secure", true)
		v.SetDefault(s+".commit_table", "")
	}
	v.SetDefault("input.name", "events.jsonl")
	v.SetDefault("output.compression", "zstd")
	v.SetDefault("output.codec", "go-json")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("metrics.listen", "")
}

var validate = validator.New()

// Load reads the optional YAML file at path into v, then decodes and
// validates the result. A nil v is replaced by NewViper().
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = NewViper()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags and that the result builds a valid
// hfcand.Config.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.ToCreatorConfig().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ToCreatorConfig maps c onto the library configuration.
func (c *Config) ToCreatorConfig() hfcand.Config {
	cfg := hfcand.DefaultConfig()

	cfg.Candidate.Fitter = c.Fitter
	cfg.Candidate.SelectionFlag = c.Candidate.SelectionFlag
	cfg.Candidate.YMax = c.Candidate.YMax
	cfg.Candidate.SecondProngSign = c.Candidate.SecondProngSign
	cfg.Candidate.CompositeMass = c.Candidate.CompositeMass
	cfg.Candidate.SecondProngMass = c.Candidate.SecondProngMass

	cfg.TruthEnabled = c.Truth.Enabled
	cfg.Truth.OriginDepth = c.Truth.OriginDepth
	cfg.Truth.AcceptAntiParticles = c.Truth.AcceptAntiParticles
	cfg.Truth.Signature.RecDepth = c.Truth.RecDepth
	cfg.Truth.Signature.GenDepth = c.Truth.GenDepth

	if c.Candidate.Channel == ChannelMuMu {
		cfg.Candidate.Hypothesis = model.JpsiToMuMu
		cfg.Candidate.CandidateFlag = model.ChicToJpsiToMuMuGamma
		cfg.Candidate.DaughterMass = candidate.MassMuon
		cfg.Truth.Flag = model.ChicToJpsiToMuMuGamma
		cfg.Truth.Channel = model.ChannelJpsiToMuMu
		cfg.Truth.Signature.ResonanceDaughters = []int{pdg.Muon, -pdg.Muon}
		cfg.Truth.Signature.RecDaughters = []int{pdg.PiPlus, pdg.Muon, -pdg.Muon}
		cfg.Jet.Hypothesis = model.JpsiToMuMu
	}
	return cfg
}

// ResourceConfig returns the resource limits.
func (c *Config) ResourceConfig() resource.Config {
	return resource.Config{
		Workers:           int64(c.Resources.Workers),
		MemoryLimitBytes:  c.Resources.MemoryLimitBytes,
		OutputBytesPerSec: c.Resources.OutputBytesPerSec,
	}
}

// LogLevel parses Logging.Level.
func (c *Config) LogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Logger builds the configured logger.
func (c *Config) Logger() *hfcand.Logger {
	if c.Logging.Format == "json" {
		return hfcand.NewJSONLogger(c.LogLevel())
	}
	return hfcand.NewTextLogger(c.LogLevel())
}

// FieldErrors lists the failing fields of a validation error as
// "Namespace: tag" strings.
func FieldErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]string, len(verrs))
	for i, fe := range verrs {
		out[i] = fe.Namespace() + ": " + fe.Tag()
	}
	return out
}
