package task

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/seventv/BackgroundKeyer/src/global"
	"github.com/seventv/BackgroundKeyer/src/job"
)

// Files lists the inputs of j, explicit files first, then the sorted matches
// of its pattern. Explicit files are returned even when they do not exist so
// the caller can report them.
func Files(ctx global.Context, j job.Job) ([]string, error) {
	files := []string{}
	seen := map[string]bool{}
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			files = append(files, name)
		}
	}

	switch j.Provider {
	case job.AwsProvider:
		s3Inst := ctx.Instances().AwsS3
		if s3Inst == nil {
			return nil, ErrNoAws
		}

		prefix := strings.Trim(j.Dir, "/")
		for _, f := range j.Files {
			add(path.Join(prefix, f))
		}

		if j.Pattern == "" {
			return files, nil
		}

		if _, err := path.Match(j.Pattern, ""); err != nil {
			return nil, err
		}

		if prefix != "" {
			prefix += "/"
		}

		keys, err := s3Inst.ListFiles(ctx, j.Bucket, prefix)
		if err != nil {
			return nil, err
		}
		sort.Strings(keys)

		for _, key := range keys {
			rest := strings.TrimPrefix(key, prefix)
			if rest == "" || strings.Contains(rest, "/") {
				continue
			}
			if ok, _ := path.Match(j.Pattern, rest); ok {
				add(key)
			}
		}
	default:
		for _, f := range j.Files {
			if j.Dir != "" && !filepath.IsAbs(f) {
				f = filepath.Join(j.Dir, f)
			}
			add(f)
		}

		if j.Pattern == "" {
			return files, nil
		}

		matches, err := filepath.Glob(filepath.Join(j.Dir, j.Pattern))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)

		for _, m := range matches {
			if info, err := os.Stat(m); err != nil || info.IsDir() {
				continue
			}
			add(m)
		}
	}

	return files, nil
}
