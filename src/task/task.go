package task

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	Aws "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	jsoniter "github.com/json-iterator/go"

	"github.com/seventv/BackgroundKeyer/src/containers"
	"github.com/seventv/BackgroundKeyer/src/global"
	"github.com/seventv/BackgroundKeyer/src/image"
	"github.com/seventv/BackgroundKeyer/src/job"
	"github.com/seventv/BackgroundKeyer/src/keying"
	"github.com/seventv/BackgroundKeyer/src/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrDecode   = fmt.Errorf("decode failed")
	ErrNoFrames = keying.ErrNoFrames
	ErrEncode   = fmt.Errorf("encode failed")
	ErrNotFound = fmt.Errorf("%w: file not found", ErrDecode)
	ErrNoAws    = fmt.Errorf("aws is not configured")
	ErrConflict = fmt.Errorf("%w: output would replace another file", ErrEncode)
)

// Task keys a single file. Everything up to the final write happens in
// memory, a failing task leaves its input untouched.
type Task struct {
	job    job.Job
	rule   keying.Rule
	format containers.OutputFormat
	name   string

	// claimed holds the inputs and outputs of the other files in the job.
	claimed map[string]bool

	events []TaskEvent
}

type Result struct {
	Job        string          `json:"job"`
	File       string          `json:"file"`
	Output     string          `json:"output,omitempty"`
	Type       image.ImageType `json:"type,omitempty"`
	OutputType image.ImageType `json:"output_type,omitempty"`
	Frames     int             `json:"frames"`
	Size       int             `json:"size"`
	Written    bool            `json:"written"`
	TimeTaken  time.Duration   `json:"time_taken"`
	Events     []TaskEvent     `json:"events"`
	Err        error           `json:"-"`
}

func (r Result) Success() bool {
	return r.Err == nil
}

func (r Result) MarshalEvents() string {
	b, _ := json.Marshal(r.Events)
	return string(b)
}

func New(j job.Job, rule keying.Rule, format containers.OutputFormat, name string) *Task {
	return &Task{
		job:    j,
		rule:   rule,
		format: format,
		name:   name,
	}
}

// Claim marks names as belonging to other files of the same run, the task
// fails instead of writing over any of them.
func (t *Task) Claim(names map[string]bool) *Task {
	t.claimed = names
	return t
}

func (t *Task) event(typ TaskEventType) {
	t.events = append(t.events, TaskEvent{
		File:      t.name,
		Type:      typ,
		Timestamp: time.Now(),
	})
}

func (t *Task) Run(ctx global.Context) (res Result) {
	done := ctx.Track()
	defer done()

	start := time.Now()
	res = Result{
		Job:  t.job.String(),
		File: t.name,
	}

	defer func() {
		if res.Err != nil {
			t.event(Failed)
		} else {
			t.event(Completed)
		}
		res.TimeTaken = time.Since(start)
		res.Events = t.events
	}()

	t.event(Started)

	data, err := t.read(ctx)
	if err != nil {
		res.Err = err
		return
	}

	t.event(Read)

	if res.Type, err = containers.ToType(data); err != nil {
		res.Err = fmt.Errorf("%w: %v", ErrDecode, err)
		return
	}

	anim, err := containers.Decode(data, res.Type)
	if err != nil {
		res.Err = fmt.Errorf("%w: %v", ErrDecode, err)
		return
	}

	t.event(Decoded)

	keyed, err := keying.Transform(anim, t.rule)
	if err != nil {
		res.Err = err
		return
	}

	res.Frames = len(keyed.Frames)
	t.event(Keyed)

	res.OutputType = t.format.Resolve(anim)
	buf := bytes.NewBuffer(nil)
	if err = containers.Encode(buf, keyed, res.OutputType); err != nil {
		res.Err = fmt.Errorf("%w: %v", ErrEncode, err)
		return
	}

	res.Size = buf.Len()
	res.Output = t.output(res.Type, res.OutputType)
	t.event(Encoded)

	if err = t.checkOutput(res.Output); err != nil {
		res.Err = err
		return
	}

	if ctx.Config().DryRun {
		t.event(Skipped)
		return
	}

	if err = t.write(ctx, res.Output, buf.Bytes(), res.OutputType); err != nil {
		res.Err = fmt.Errorf("%w: %v", ErrEncode, err)
		return
	}

	res.Written = true
	t.event(Written)

	return
}

func (t *Task) read(ctx global.Context) ([]byte, error) {
	switch t.job.Provider {
	case job.AwsProvider:
		s3Inst := ctx.Instances().AwsS3
		if s3Inst == nil {
			return nil, ErrNoAws
		}

		buf := Aws.NewWriteAtBuffer([]byte{})
		if err := s3Inst.DownloadFile(ctx, t.job.Bucket, t.name, buf); err != nil {
			var aerr awserr.Error
			if errors.As(err, &aerr) && (aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound") {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}

		return buf.Bytes(), nil
	case job.LocalProvider, "":
		data, err := os.ReadFile(t.name)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		} else if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}

		return data, nil
	}

	return nil, fmt.Errorf("%w: %q", job.ErrUnknownProvider, t.job.Provider)
}

func (t *Task) output(from, to image.ImageType) string {
	name := containers.OutputName(t.name, from, to)
	if t.job.OutputDir == "" {
		return name
	}

	if t.job.Provider == job.AwsProvider {
		return path.Join(t.job.OutputDir, path.Base(name))
	}

	return filepath.Join(t.job.OutputDir, filepath.Base(name))
}

// checkOutput refuses an output that differs from the input and is either
// claimed by another file of the run or, when writing next to the inputs, an
// existing file.
func (t *Task) checkOutput(name string) error {
	if name == t.name {
		return nil
	}

	if t.claimed[name] {
		return fmt.Errorf("%w: %s", ErrConflict, name)
	}

	if t.job.Provider == job.AwsProvider || t.job.OutputDir != "" {
		return nil
	}

	if _, err := os.Stat(name); err == nil {
		return fmt.Errorf("%w: %s", ErrConflict, name)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}

	return nil
}

func (t *Task) write(ctx global.Context, name string, data []byte, imgType image.ImageType) error {
	if t.job.Provider == job.AwsProvider {
		s3Inst := ctx.Instances().AwsS3
		if s3Inst == nil {
			return ErrNoAws
		}

		return s3Inst.UploadFile(ctx, t.job.Bucket, name, bytes.NewReader(data), Aws.String(imgType.ContentType()), nil, nil)
	}

	return utils.WriteFileAtomic(name, data, 0644)
}
