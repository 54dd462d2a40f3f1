package job

import (
	"fmt"

	"github.com/seventv/BackgroundKeyer/src/containers"
	"github.com/seventv/BackgroundKeyer/src/keying"
)

var (
	ErrBadThreshold    = fmt.Errorf("threshold must be within 0 and 255")
	ErrUnknownProvider = fmt.Errorf("unknown job provider")
)

// Job is one set of files keyed with the same rule.
type Job struct {
	Name     string   `json:"name,omitempty" mapstructure:"name,omitempty"`
	Provider Provider `json:"provider,omitempty" mapstructure:"provider,omitempty"`

	// Dir is the local directory, or the key prefix for the aws provider.
	Dir    string `json:"dir,omitempty" mapstructure:"dir,omitempty"`
	Bucket string `json:"bucket,omitempty" mapstructure:"bucket,omitempty"`

	// Files are processed first, in order, then every match of Pattern in Dir.
	Files   []string `json:"files,omitempty" mapstructure:"files,omitempty"`
	Pattern string   `json:"pattern,omitempty" mapstructure:"pattern,omitempty"`

	// OutputDir empty overwrites the inputs in place.
	OutputDir    string `json:"output_dir,omitempty" mapstructure:"output_dir,omitempty"`
	OutputFormat string `json:"output_format,omitempty" mapstructure:"output_format,omitempty"`

	// Threshold falls back to DefaultThreshold when unset.
	Threshold    *int   `json:"threshold,omitempty" mapstructure:"threshold,omitempty"`
	Mode         string `json:"mode,omitempty" mapstructure:"mode,omitempty"`
	FlattenAlpha bool   `json:"flatten_alpha,omitempty" mapstructure:"flatten_alpha,omitempty"`
}

type Provider string

const (
	AwsProvider   Provider = "aws"
	LocalProvider Provider = "local"
)

const DefaultThreshold = 240

func (j Job) Rule() (keying.Rule, error) {
	threshold := DefaultThreshold
	if j.Threshold != nil {
		threshold = *j.Threshold
	}

	if threshold < 0 || threshold > 255 {
		return keying.Rule{}, fmt.Errorf("%w: %d", ErrBadThreshold, threshold)
	}

	mode, err := keying.ParseMode(j.Mode)
	if err != nil {
		return keying.Rule{}, err
	}

	return keying.Rule{
		Threshold:    uint8(threshold),
		Mode:         mode,
		FlattenAlpha: j.FlattenAlpha,
	}, nil
}

func (j Job) Format() (containers.OutputFormat, error) {
	return containers.ParseOutputFormat(j.OutputFormat)
}

func (j Job) Validate() error {
	switch j.Provider {
	case "", LocalProvider, AwsProvider:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, j.Provider)
	}

	if _, err := j.Rule(); err != nil {
		return err
	}

	_, err := j.Format()
	return err
}

func (j Job) String() string {
	if j.Name != "" {
		return j.Name
	}

	if j.Dir != "" {
		return j.Dir
	}

	return "files"
}
