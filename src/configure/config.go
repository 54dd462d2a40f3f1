package configure

import (
	"bytes"
	"os"

	"github.com/davecgh/go-spew/spew"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/seventv/BackgroundKeyer/src/job"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func checkErr(err error) {
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
}

func New() *Config {
	cfg, err := Load(pflag.CommandLine, os.Args[1:])
	checkErr(err)

	initLogging(cfg.LogLevel, cfg.NoLogs)

	logrus.Debug("config: ", spew.Sdump(cfg))

	return cfg
}

func defaults() Config {
	return Config{
		LogLevel:  "info",
		Config:    "config.yaml",
		Pattern:   "*.gif",
		Threshold: 240,
		Mode:      "brighter-than",
		Format:    "auto",
	}
}

// Load merges defaults, the config file, flags and the environment, in that
// order of precedence from low to high. args are parsed into flags, positional
// arguments become explicit files.
func Load(flags *pflag.FlagSet, args []string) (*Config, error) {
	config := viper.New()
	config.SetConfigType("yaml")

	b, err := json.Marshal(defaults())
	if err != nil {
		return nil, err
	}

	tmp := viper.New()
	tmp.SetConfigType("json")
	if err := tmp.ReadConfig(bytes.NewBuffer(b)); err != nil {
		return nil, err
	}
	if err := config.MergeConfigMap(tmp.AllSettings()); err != nil {
		return nil, err
	}

	registerFlags(flags)
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if err := config.BindPFlags(flags); err != nil {
		return nil, err
	}

	config.SetConfigFile(config.GetString("config"))
	if err := config.ReadInConfig(); err == nil {
		if err := config.MergeInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := Config{}

	config.SetEnvPrefix("BGKEY")
	config.AllowEmptyEnv(true)
	config.AutomaticEnv()

	if err := config.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Files = flags.Args()

	return &cfg, nil
}

func registerFlags(flags *pflag.FlagSet) {
	if flags.Lookup("config") != nil {
		return
	}

	flags.String("config", "config.yaml", "Config file location")
	flags.Bool("noheader", false, "Disable the startup header")
	flags.Bool("dryrun", false, "Process files without writing any output")
	flags.String("dir", "", "Directory to search for files")
	flags.String("pattern", "*.gif", "Glob pattern matched inside dir")
	flags.Int("threshold", 240, "Channel threshold in [0, 255]")
	flags.String("mode", "brighter-than", "Keying mode, brighter-than or darker-than")
	flags.String("format", "auto", "Output format, auto, gif or png")
	flags.String("outdir", "", "Write results here instead of overwriting the inputs")
	flags.Bool("flatten", false, "Drop source transparency before keying")
}

type Config struct {
	LogLevel string `json:"log_level,omitempty" mapstructure:"log_level,omitempty"`
	Config   string `json:"config,omitempty" mapstructure:"config,omitempty"`
	NoHeader bool   `json:"noheader,omitempty" mapstructure:"noheader,omitempty"`
	NoLogs   bool   `json:"nologs,omitempty" mapstructure:"nologs,omitempty"`
	DryRun   bool   `json:"dryrun,omitempty" mapstructure:"dryrun,omitempty"`

	// Aws
	Aws struct {
		AccessToken string `json:"access_token,omitempty" mapstructure:"access_token,omitempty"`
		SecretKey   string `json:"secret_key,omitempty" mapstructure:"secret_key,omitempty"`
		Region      string `json:"region,omitempty" mapstructure:"region,omitempty"`
		Endpoint    string `json:"endpoint,omitempty" mapstructure:"endpoint,omitempty"`
	} `json:"aws,omitempty" mapstructure:"aws,omitempty"`

	Jobs []job.Job `json:"jobs,omitempty" mapstructure:"jobs,omitempty"`

	// Command line job, used when Dir or Files are set.
	Dir       string   `json:"dir,omitempty" mapstructure:"dir,omitempty"`
	Pattern   string   `json:"pattern,omitempty" mapstructure:"pattern,omitempty"`
	Threshold int      `json:"threshold,omitempty" mapstructure:"threshold,omitempty"`
	Mode      string   `json:"mode,omitempty" mapstructure:"mode,omitempty"`
	Format    string   `json:"format,omitempty" mapstructure:"format,omitempty"`
	OutDir    string   `json:"outdir,omitempty" mapstructure:"outdir,omitempty"`
	Flatten   bool     `json:"flatten,omitempty" mapstructure:"flatten,omitempty"`
	Files     []string `json:"-" mapstructure:"-"`
}

// AllJobs returns the configured jobs followed by the command line job.
func (c *Config) AllJobs() []job.Job {
	jobs := append([]job.Job{}, c.Jobs...)

	if c.Dir == "" && len(c.Files) == 0 {
		return jobs
	}

	threshold := c.Threshold
	pattern := c.Pattern
	if c.Dir == "" {
		pattern = ""
	}

	return append(jobs, job.Job{
		Name:         "cli",
		Provider:     job.LocalProvider,
		Dir:          c.Dir,
		Files:        c.Files,
		Pattern:      pattern,
		OutputDir:    c.OutDir,
		OutputFormat: c.Format,
		Threshold:    &threshold,
		Mode:         c.Mode,
		FlattenAlpha: c.Flatten,
	})
}
