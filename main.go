package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/bugsnag/panicwrap"
	"github.com/sirupsen/logrus"

	"github.com/seventv/BackgroundKeyer/src/aws"
	"github.com/seventv/BackgroundKeyer/src/configure"
	"github.com/seventv/BackgroundKeyer/src/global"
	"github.com/seventv/BackgroundKeyer/src/task"
)

var (
	Version = "development"
	Unix    = ""
	Time    = "unknown"
	User    = "unknown"
)

func init() {
	if i, err := strconv.Atoi(Unix); err == nil {
		Time = time.Unix(int64(i), 0).Format(time.RFC3339)
	}
}

func main() {
	config := configure.New()

	exitStatus, err := panicwrap.BasicWrap(func(s string) {
		logrus.Error(s)
	})
	if err != nil {
		logrus.Error("failed to setup panic handler: ", err)
		os.Exit(2)
	}

	if exitStatus >= 0 {
		os.Exit(exitStatus)
	}

	if !config.NoHeader {
		logrus.Info("7TV Background Keyer")
		logrus.Infof("Version: %s", Version)
		logrus.Infof("build.Time: %s", Time)
		logrus.Infof("build.User: %s", User)
	}

	jobs := config.AllJobs()
	if len(jobs) == 0 {
		logrus.Warn("nothing to do, configure jobs or pass --dir or files")
		os.Exit(0)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	c, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctx := global.New(c, config)

	if ctx.Config().Aws.Region != "" {
		ctx.Instances().AwsS3 = aws.NewS3(ctx)
	}

	if config.DryRun {
		logrus.Info("dry run, no files will be written")
	}

	var summary *task.Summary
	done := make(chan struct{})
	go func() {
		summary = task.Run(ctx, jobs)
		close(done)
	}()

	select {
	case <-done:
	case <-sig:
		cancel()
		go func() {
			select {
			case <-time.After(time.Minute):
			case <-sig:
			}
			logrus.Fatal("force shutdown")
		}()

		logrus.Info("shutting down, finishing the current file")

		ctx.Wait()
		<-done
	}

	if summary.Err() != nil {
		os.Exit(1)
	}

	os.Exit(0)
}
