package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"ornament-detect/internal/config"
	"ornament-detect/internal/logger"
	"ornament-detect/internal/model"
	"ornament-detect/internal/service/meaning"
	"ornament-detect/internal/service/storage"
)

type fakeDetector struct {
	detections []model.RawDetection
	err        error
	cropErr    error
	calls      int
	loaded     bool
	seen       []byte // content of the image file during the last Detect
}

func (f *fakeDetector) Detect(ctx context.Context, imagePath string) ([]model.RawDetection, error) {
	f.calls++
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, err
	}
	f.seen = data
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.RawDetection, len(f.detections))
	copy(out, f.detections)
	return out, nil
}

func (f *fakeDetector) Crop(imagePath string, box model.BoundingBox) ([]byte, error) {
	if f.cropErr != nil {
		return nil, f.cropErr
	}
	return []byte("crop"), nil
}

func (f *fakeDetector) Annotate(imagePath string, detections []model.Detection) ([]byte, error) {
	return []byte("annotated"), nil
}

func (f *fakeDetector) Loaded() bool      { return f.loaded }
func (f *fakeDetector) ModelPath() string { return "/models/best.onnx" }
func (f *fakeDetector) Classes() []string { return []string{"unity", "sun", "horns"} }

type failingArchiver struct{}

func (failingArchiver) Archive([]byte, string, string, model.ArchiveMeta) (*model.ArchiveResult, error) {
	return nil, errors.New("read-only file system")
}

func (failingArchiver) ArchiveFile(string, string, string, model.ArchiveMeta) (*model.ArchiveResult, error) {
	return nil, errors.New("read-only file system")
}

func (failingArchiver) Discard(*model.ArchiveResult) error { return nil }

// classFailingArchiver stores through the real archiver but fails one class.
type classFailingArchiver struct {
	*storage.ArchiverService
	failClass string
}

func (a classFailingArchiver) ArchiveFile(srcPath, className, ext string, meta model.ArchiveMeta) (*model.ArchiveResult, error) {
	if className == a.failClass {
		return nil, errors.New("no space left on device")
	}
	return a.ArchiverService.ArchiveFile(srcPath, className, ext, meta)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []any
}

func (n *recordingNotifier) Publish(event any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

const testMeanings = `name,kg,ru,en
unity,Биримдик,Единство,The Unity Ornament
sun,Күн,Солнце,Sun symbol
`

func newTestMeanings(t *testing.T) *meaning.Table {
	t.Helper()
	table, err := meaning.Parse(strings.NewReader(testMeanings))
	if err != nil {
		t.Fatalf("Failed to parse meanings: %v", err)
	}
	return table
}

type testEnv struct {
	cfg      *config.Config
	archiver *storage.ArchiverService
	detector *fakeDetector
	notifier *recordingNotifier
	service  *DetectionService
}

func newTestEnv(t *testing.T, detections ...model.RawDetection) *testEnv {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "detection_service_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	cfg := &config.Config{
		DatasetDirectory: tempDir + "/Dataset",
		UploadsDirectory: tempDir + "/uploads",
		TempDirectory:    tempDir + "/tmp",
		ArchiveEnabled:   true,
		ArchiveMode:      config.ArchiveModeSource,
		MaxUploadSize:    1 << 20,
	}
	if err := os.MkdirAll(cfg.TempDirectory, 0755); err != nil {
		t.Fatalf("Failed to create temp upload dir: %v", err)
	}

	log := logger.NewWithWriter(&bytes.Buffer{})
	archiver, err := storage.NewArchiverService(cfg, log, nil)
	if err != nil {
		t.Fatalf("Failed to create archiver: %v", err)
	}

	env := &testEnv{
		cfg:      cfg,
		archiver: archiver,
		detector: &fakeDetector{detections: detections, loaded: true},
		notifier: &recordingNotifier{},
	}
	env.service = NewDetectionService(cfg, log, env.detector, newTestMeanings(t), archiver, env.notifier)
	return env
}

func (e *testEnv) upload(body string) model.Upload {
	return model.Upload{Filename: "photo.jpg", ContentType: "image/jpeg", Body: strings.NewReader(body)}
}

func det(class string, conf float64) model.RawDetection {
	return model.RawDetection{ClassName: class, Confidence: conf, Box: model.BoundingBox{X1: 10, Y1: 20, X2: 110, Y2: 220}}
}

// dirListingDetector records the contents of dir while Detect runs.
type dirListingDetector struct {
	*fakeDetector
	dir     string
	entries *[]os.DirEntry
}

func (d *dirListingDetector) Detect(ctx context.Context, imagePath string) ([]model.RawDetection, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, err
	}
	*d.entries = entries
	return d.fakeDetector.Detect(ctx, imagePath)
}
