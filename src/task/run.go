package task

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/seventv/BackgroundKeyer/src/global"
	"github.com/seventv/BackgroundKeyer/src/job"
)

type Summary struct {
	Results []Result
	Success int
	Failed  int

	errs *multierror.Error
}

// Err returns every job and file failure of the run, nil when there were none.
func (s *Summary) Err() error {
	return s.errs.ErrorOrNil()
}

func (s *Summary) add(res Result) {
	s.Results = append(s.Results, res)
	if res.Success() {
		s.Success++
		return
	}

	s.Failed++
	s.errs = multierror.Append(s.errs, fmt.Errorf("%s: %w", res.File, res.Err))
}

// Run processes every file of every job in order. A failing file or job is
// reported and skipped, the run only stops early when ctx is cancelled.
func Run(ctx global.Context, jobs []job.Job) *Summary {
	s := &Summary{}

	for _, j := range jobs {
		l := logrus.WithField("job", j.String())

		if err := j.Validate(); err != nil {
			l.WithError(err).Error("bad job")
			s.errs = multierror.Append(s.errs, fmt.Errorf("job %s: %w", j, err))
			continue
		}

		rule, _ := j.Rule()
		format, _ := j.Format()

		files, err := Files(ctx, j)
		if err != nil {
			l.WithError(err).Error("failed to list files")
			s.errs = multierror.Append(s.errs, fmt.Errorf("job %s: %w", j, err))
			continue
		}

		l.Infof("found %d files to process, keying %s", len(files), rule)

		claimed := make(map[string]bool, len(files))
		for _, f := range files {
			claimed[f] = true
		}

		for _, f := range files {
			if err := ctx.Err(); err != nil {
				l.Warn("stopping before ", f)
				s.errs = multierror.Append(s.errs, err)
				s.log()
				return s
			}

			delete(claimed, f)
			res := New(j, rule, format, f).Claim(claimed).Run(ctx)
			claimed[f] = true
			if res.Success() {
				claimed[res.Output] = true
			}

			report(l, res)
			s.add(res)
		}
	}

	s.log()

	return s
}

func report(l *logrus.Entry, res Result) {
	l = l.WithField("file", res.File)
	l.Debug("events: ", res.MarshalEvents())

	if res.Err != nil {
		if errors.Is(res.Err, ErrNoFrames) {
			l.Warn("no frames found")
		} else if errors.Is(res.Err, ErrConflict) {
			l.WithError(res.Err).Warn("skipped, output is taken")
		} else {
			l.WithError(res.Err).Error("failed to process")
		}
		return
	}

	l = l.WithFields(logrus.Fields{
		"output": res.Output,
		"frames": res.Frames,
		"size":   res.Size,
		"took":   res.TimeTaken,
	})
	if !res.Written {
		l.Info("dry run, nothing written")
		return
	}

	l.Info("removed background")
}

func (s *Summary) log() {
	l := logrus.WithFields(logrus.Fields{
		"success": s.Success,
		"failed":  s.Failed,
	})

	if s.Err() != nil {
		l.Warn("processing complete with failures")
		return
	}

	l.Info("processing complete")
}
