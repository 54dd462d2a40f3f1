package task

import (
	"bytes"
	"context"
	stdimage "image"
	"image/color"
	nGif "image/gif"
	nJpeg "image/jpeg"
	nPng "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	Aws "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seventv/BackgroundKeyer/src/configure"
	"github.com/seventv/BackgroundKeyer/src/containers"
	"github.com/seventv/BackgroundKeyer/src/global"
	"github.com/seventv/BackgroundKeyer/src/image"
	"github.com/seventv/BackgroundKeyer/src/job"
	"github.com/seventv/BackgroundKeyer/src/keying"
)

var (
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	black = color.RGBA{R: 0x05, G: 0x05, B: 0x05, A: 0xff}
	green = color.RGBA{G: 0xa0, A: 0xff}
)

// animated returns a 2x1 gif per background color, the second pixel is green.
func animated(t *testing.T, backgrounds ...color.RGBA) []byte {
	t.Helper()

	g := &nGif.GIF{}
	for i, bg := range backgrounds {
		pal := color.Palette{bg, green}
		pm := stdimage.NewPaletted(stdimage.Rect(0, 0, 2, 1), pal)
		pm.SetColorIndex(1, 0, 1)
		g.Image = append(g.Image, pm)
		g.Delay = append(g.Delay, 5*(i+1))
		g.Disposal = append(g.Disposal, nGif.DisposalNone)
	}

	buf := bytes.NewBuffer(nil)
	require.NoError(t, nGif.EncodeAll(buf, g))
	return buf.Bytes()
}

func newCtx(dryRun bool) global.Context {
	return global.New(context.Background(), &configure.Config{DryRun: dryRun})
}

func threshold(n int) *int {
	return &n
}

func write(t *testing.T, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(name, data, 0644))
}

func decodeGif(t *testing.T, name string) *nGif.GIF {
	t.Helper()
	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()

	g, err := nGif.DecodeAll(f)
	require.NoError(t, err)
	return g
}

func TestRunOverwritesInPlace(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "walker.gif"), animated(t, white, white, white))
	write(t, filepath.Join(dir, "run_forrest.gif"), animated(t, white))

	s := Run(newCtx(false), []job.Job{{
		Name:      "animations",
		Dir:       dir,
		Pattern:   "*.gif",
		Threshold: threshold(200),
		Mode:      "brighter-than",
	}})

	require.NoError(t, s.Err())
	assert.Equal(t, 2, s.Success)
	assert.Equal(t, 0, s.Failed)

	g := decodeGif(t, filepath.Join(dir, "walker.gif"))
	require.Len(t, g.Image, 3)
	assert.Equal(t, []int{5, 10, 15}, g.Delay)
	assert.Equal(t, 0, g.LoopCount)
	for _, pm := range g.Image {
		assert.Equal(t, uint8(0), pm.ColorIndexAt(0, 0))
		_, _, _, a := pm.At(0, 0).RGBA()
		assert.Equal(t, uint32(0), a)
		assert.Equal(t, color.RGBA{G: 0xa0, A: 0xff}, pm.At(1, 0))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRunDarkerThan(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "biking.gif")
	write(t, name, animated(t, black, black))

	s := Run(newCtx(false), []job.Job{{
		Files:     []string{name},
		Threshold: threshold(30),
		Mode:      "darker-than",
	}})
	require.NoError(t, s.Err())

	g := decodeGif(t, name)
	require.Len(t, g.Image, 2)
	for _, pm := range g.Image {
		_, _, _, a := pm.At(0, 0).RGBA()
		assert.Equal(t, uint32(0), a)
		_, _, _, a = pm.At(1, 0).RGBA()
		assert.Equal(t, uint32(0xffff), a)
	}
}

func TestRunSameRuleTwiceIsNoop(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "walker.gif")
	write(t, name, animated(t, white, white))

	j := job.Job{Files: []string{name}, Threshold: threshold(200), Mode: "brighter-than"}

	require.NoError(t, Run(newCtx(false), []job.Job{j}).Err())
	once, err := os.ReadFile(name)
	require.NoError(t, err)

	require.NoError(t, Run(newCtx(false), []job.Job{j}).Err())
	twice, err := os.ReadFile(name)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestRunFailuresDoNotStopBatch(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "a_corrupt.gif")
	good := filepath.Join(dir, "b_good.gif")
	missing := filepath.Join(dir, "missing.gif")

	corruptData := []byte("GIF89a this is not really a gif;")
	write(t, corrupt, corruptData)
	write(t, good, animated(t, white))

	s := Run(newCtx(false), []job.Job{{
		Dir:       dir,
		Files:     []string{"missing.gif"},
		Pattern:   "*.gif",
		Threshold: threshold(200),
		Mode:      "brighter-than",
	}})

	assert.Equal(t, 1, s.Success)
	assert.Equal(t, 2, s.Failed)
	require.Error(t, s.Err())

	require.Len(t, s.Results, 3)
	assert.Equal(t, missing, s.Results[0].File)
	assert.ErrorIs(t, s.Results[0].Err, ErrNotFound)
	assert.ErrorIs(t, s.Results[0].Err, ErrDecode)
	assert.Equal(t, corrupt, s.Results[1].File)
	assert.ErrorIs(t, s.Results[1].Err, ErrDecode)
	assert.True(t, s.Results[2].Success())

	data, err := os.ReadFile(corrupt)
	require.NoError(t, err)
	assert.Equal(t, corruptData, data, "failed input is untouched")

	_, err = os.Stat(missing)
	assert.True(t, os.IsNotExist(err))
}

func TestRunNoFrames(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "empty.gif")
	original := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
	write(t, name, original)

	s := Run(newCtx(false), []job.Job{{Files: []string{name}, Mode: "brighter-than"}})
	require.Len(t, s.Results, 1)
	assert.ErrorIs(t, s.Results[0].Err, ErrNoFrames)
	assert.False(t, s.Results[0].Written)

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, original, data)
}

func TestRunDryRun(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "walker.gif")
	original := animated(t, white)
	write(t, name, original)

	s := Run(newCtx(true), []job.Job{{Files: []string{name}, Mode: "brighter-than"}})
	require.NoError(t, s.Err())
	require.Len(t, s.Results, 1)
	assert.False(t, s.Results[0].Written)
	assert.Equal(t, 1, s.Results[0].Frames)

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, original, data)
}

func TestRunOutputDirAndFormat(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(t.TempDir(), "keyed")

	still := stdimage.NewNRGBA(stdimage.Rect(0, 0, 2, 1))
	still.SetNRGBA(0, 0, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	still.SetNRGBA(1, 0, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff})
	buf := bytes.NewBuffer(nil)
	require.NoError(t, nPng.Encode(buf, still))
	write(t, filepath.Join(dir, "logo.png"), buf.Bytes())

	s := Run(newCtx(false), []job.Job{
		{Name: "png", Dir: dir, Pattern: "*.png", OutputDir: out, Mode: "white"},
		{Name: "gif", Dir: dir, Pattern: "*.png", OutputDir: out, OutputFormat: "gif", Mode: "white"},
	})
	require.NoError(t, s.Err())
	require.Len(t, s.Results, 2)

	assert.Equal(t, filepath.Join(out, "logo.png"), s.Results[0].Output)
	assert.Equal(t, filepath.Join(out, "logo.gif"), s.Results[1].Output)

	f, err := os.Open(filepath.Join(out, "logo.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := nPng.Decode(f)
	require.NoError(t, err)

	nrgba := image.ToNRGBA(img)
	assert.Equal(t, keying.Placeholder, nrgba.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}, nrgba.NRGBAAt(1, 0))

	g := decodeGif(t, filepath.Join(out, "logo.gif"))
	require.Len(t, g.Image, 1)

	original, err := os.ReadFile(filepath.Join(dir, "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), original)
}

func jpegStill(t *testing.T) []byte {
	t.Helper()
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	buf := bytes.NewBuffer(nil)
	require.NoError(t, nJpeg.Encode(buf, img, nil))
	return buf.Bytes()
}

func TestRunRenameKeepsOtherInputs(t *testing.T) {
	dir := t.TempDir()
	anim := filepath.Join(dir, "a.gif")
	still := filepath.Join(dir, "a.jpg")
	write(t, anim, animated(t, white, white))
	write(t, still, jpegStill(t))

	s := Run(newCtx(false), []job.Job{{
		Dir:       dir,
		Pattern:   "*",
		Threshold: threshold(200),
		Mode:      "brighter-than",
	}})

	require.Len(t, s.Results, 2)
	assert.Equal(t, anim, s.Results[0].File)
	assert.True(t, s.Results[0].Success())
	assert.Equal(t, still, s.Results[1].File)
	assert.ErrorIs(t, s.Results[1].Err, ErrConflict)
	assert.False(t, s.Results[1].Written)
	assert.Equal(t, 1, s.Failed)

	g := decodeGif(t, anim)
	assert.Len(t, g.Image, 2)
	assert.Equal(t, 2, g.Config.Width)
	assert.Equal(t, 1, g.Config.Height)
}

func TestRunRenameKeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	other := filepath.Join(dir, "a.gif")
	still := filepath.Join(dir, "a.jpg")
	original := animated(t, white)
	write(t, other, original)
	write(t, still, jpegStill(t))

	s := Run(newCtx(true), []job.Job{{Files: []string{still}, Mode: "brighter-than"}})
	require.Len(t, s.Results, 1)
	assert.ErrorIs(t, s.Results[0].Err, ErrConflict)

	data, err := os.ReadFile(other)
	require.NoError(t, err)
	assert.Equal(t, original, data)
}

func TestRunRenameIntoOutputDir(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	write(t, filepath.Join(dir, "a.gif"), animated(t, white, white))
	write(t, filepath.Join(dir, "a.jpg"), jpegStill(t))
	write(t, filepath.Join(dir, "b.jpg"), jpegStill(t))

	s := Run(newCtx(false), []job.Job{{Dir: dir, Pattern: "*", OutputDir: out, Mode: "brighter-than"}})
	require.Len(t, s.Results, 3)
	assert.True(t, s.Results[0].Success())
	assert.ErrorIs(t, s.Results[1].Err, ErrConflict, "a.jpg would replace the keyed a.gif")
	assert.True(t, s.Results[2].Success())
	assert.Equal(t, filepath.Join(out, "b.gif"), s.Results[2].Output)

	g := decodeGif(t, filepath.Join(out, "a.gif"))
	assert.Len(t, g.Image, 2)
}

func TestRunBadJobIsSkipped(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "walker.gif")
	write(t, name, animated(t, white))

	s := Run(newCtx(false), []job.Job{
		{Files: []string{name}, Mode: "sideways"},
		{Files: []string{name}, Mode: "brighter-than"},
	})

	assert.Error(t, s.Err())
	assert.Equal(t, 1, s.Success)
	assert.Equal(t, 0, s.Failed)
}

func TestRunStopsWhenCancelled(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "walker.gif")
	original := animated(t, white)
	write(t, name, original)

	c, cancel := context.WithCancel(context.Background())
	cancel()

	s := Run(global.New(c, &configure.Config{}), []job.Job{{Files: []string{name}, Mode: "brighter-than"}})
	assert.ErrorIs(t, s.Err(), context.Canceled)
	assert.Empty(t, s.Results)

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, original, data)
}

func TestTaskEvents(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "walker.gif")
	write(t, name, animated(t, white))

	res := New(job.Job{}, keying.Rule{Threshold: 200, Mode: keying.BrighterThan}, containers.OutputAuto, name).Run(newCtx(false))
	require.NoError(t, res.Err)

	types := []TaskEventType{}
	for _, ev := range res.Events {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []TaskEventType{Started, Read, Decoded, Keyed, Encoded, Written, Completed}, types)
	assert.Contains(t, res.MarshalEvents(), `"type":"keyed"`)
}

type fakeS3 struct {
	mtx     sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType, acl, cacheControl *string) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}

	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.objects[bucket+"/"+key] = b
	f.types[bucket+"/"+key] = Aws.StringValue(contentType)
	return nil
}

func (f *fakeS3) DownloadFile(ctx context.Context, bucket, key string, file io.WriterAt) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	b, ok := f.objects[bucket+"/"+key]
	if !ok {
		return awserr.New(s3.ErrCodeNoSuchKey, "no such key", nil)
	}
	_, err := file.WriteAt(b, 0)
	return err
}

func (f *fakeS3) ListFiles(ctx context.Context, bucket, prefix string) ([]string, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	keys := []string{}
	for k := range f.objects {
		key := strings.TrimPrefix(k, bucket+"/")
		if key != k && strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func TestRunAws(t *testing.T) {
	store := newFakeS3()
	original := animated(t, white, white)
	store.objects["emotes/animations/walker.gif"] = original
	store.objects["emotes/animations/nested/skip.gif"] = original
	store.objects["emotes/animations/notes.txt"] = []byte("hello")

	ctx := newCtx(false)
	ctx.Instances().AwsS3 = store

	s := Run(ctx, []job.Job{{
		Provider:  job.AwsProvider,
		Bucket:    "emotes",
		Dir:       "animations",
		Files:     []string{"gone.gif"},
		Pattern:   "*.gif",
		Threshold: threshold(200),
		Mode:      "brighter-than",
	}})

	require.Len(t, s.Results, 2)
	assert.Equal(t, "animations/gone.gif", s.Results[0].File)
	assert.ErrorIs(t, s.Results[0].Err, ErrNotFound)
	assert.Equal(t, "animations/walker.gif", s.Results[1].File)
	require.NoError(t, s.Results[1].Err)

	keyed := store.objects["emotes/animations/walker.gif"]
	assert.NotEqual(t, original, keyed)
	assert.Equal(t, "image/gif", store.types["emotes/animations/walker.gif"])

	g, err := nGif.DecodeAll(bytes.NewReader(keyed))
	require.NoError(t, err)
	assert.Len(t, g.Image, 2)
	assert.Equal(t, original, store.objects["emotes/animations/nested/skip.gif"])
}

func TestAwsNotConfigured(t *testing.T) {
	s := Run(newCtx(false), []job.Job{{Provider: job.AwsProvider, Bucket: "emotes", Pattern: "*.gif", Mode: "white"}})
	assert.ErrorIs(t, s.Err(), ErrNoAws)
	assert.Empty(t, s.Results)
}
