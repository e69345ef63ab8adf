package ai

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"sync"

	"ornament-detect/internal/config"
	"ornament-detect/internal/logger"
	"ornament-detect/internal/model"
	"ornament-detect/internal/service/detect"

	"gocv.io/x/gocv"
)

var errDetectorClosed = errors.New("detector is closed")

// DetectorService runs the YOLOv8 ornament model through OpenCV's DNN module.
// gocv.Net is not safe for concurrent use, so the service owns a fixed pool
// of independently loaded networks and every call borrows one.
type DetectorService struct {
	pool         chan *gocv.Net
	closed       chan struct{}
	closeOnce    sync.Once
	labels       detect.Labels
	inputSize    int
	nmsThreshold float32
	modelPath    string
	loadErr      error
	logger       *logger.Logger
}

// NewDetectorService loads cfg.InferenceWorkers copies of the model. A load
// failure is not returned: the service stays degraded and every Detect call
// reports model.ErrModelUnavailable.
func NewDetectorService(cfg *config.Config, logger *logger.Logger) *DetectorService {
	service := &DetectorService{
		closed:       make(chan struct{}),
		inputSize:    cfg.InputSize,
		nmsThreshold: float32(cfg.NMSThreshold),
		modelPath:    cfg.ModelPath,
		logger:       logger,
	}
	if service.inputSize <= 0 {
		service.inputSize = 640
	}

	labels, err := detect.LoadLabels(cfg.ClassesPath)
	if err != nil {
		logger.Warning("Could not load class labels, using class_<id> names: %v", err)
	}
	service.labels = labels

	workers := max(1, cfg.InferenceWorkers)
	if err := service.initializeNets(workers); err != nil {
		service.loadErr = err
		logger.Error("Could not initialize detection network: %v", err)
		return service
	}

	logger.Info("Detection network initialized (%d workers, %d labels)", workers, len(labels))
	return service
}

// initializeNets loads the ONNX model once per worker.
func (s *DetectorService) initializeNets(workers int) error {
	if _, err := os.Stat(s.modelPath); err != nil {
		return fmt.Errorf("model file not found: %s", s.modelPath)
	}

	pool := make(chan *gocv.Net, workers)
	release := func() {
		close(pool)
		for net := range pool {
			net.Close()
		}
	}

	for i := 0; i < workers; i++ {
		net := gocv.ReadNetFromONNX(s.modelPath)
		if net.Empty() {
			release()
			return fmt.Errorf("failed to load network from %s", s.modelPath)
		}

		errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
		errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
		if errBackend != nil || errTarget != nil {
			net.Close()
			release()
			return fmt.Errorf("failed to set preferable backend or target")
		}

		pool <- &net
	}

	s.pool = pool
	return nil
}

// Loaded reports whether the model is available. The pool is only assigned
// once, before the service is shared.
func (s *DetectorService) Loaded() bool {
	if s.loadErr != nil || s.pool == nil {
		return false
	}
	select {
	case <-s.closed:
		return false
	default:
		return true
	}
}

// ModelPath is the configured model file.
func (s *DetectorService) ModelPath() string {
	return s.modelPath
}

// Classes returns the class names in id order.
func (s *DetectorService) Classes() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// Detect runs the model over the image file and returns the detections
// above detect.ConfidenceThreshold after per-class non-maximum suppression.
// It blocks until a network is free or ctx is done.
func (s *DetectorService) Detect(ctx context.Context, imagePath string) ([]model.RawDetection, error) {
	if !s.Loaded() {
		return nil, model.ModelUnavailable(s.loadErr)
	}

	mat := gocv.IMRead(imagePath, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return nil, model.InvalidInput("Uploaded file is not a readable image")
	}
	defer mat.Close()

	var net *gocv.Net
	select {
	case net = <-s.pool:
	case <-s.closed:
		return nil, model.ModelUnavailable(errDetectorClosed)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { s.pool <- net }()

	blob := gocv.BlobFromImage(
		mat,
		1.0/255.0,
		image.Pt(s.inputSize, s.inputSize),
		gocv.NewScalar(0, 0, 0, 0),
		true,
		false,
	)
	defer blob.Close()

	net.SetInput(blob, "")
	output := net.Forward("")
	defer output.Close()

	layout, err := detect.LayoutFromDims(output.Size())
	if err != nil {
		return nil, err
	}
	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read network output: %w", err)
	}

	scaleX := float64(mat.Cols()) / float64(s.inputSize)
	scaleY := float64(mat.Rows()) / float64(s.inputSize)
	candidates, err := detect.DecodeYOLOv8(data, layout, scaleX, scaleY)
	if err != nil {
		return nil, err
	}

	detections := s.suppress(candidates)
	s.labels.Resolve(detections)
	return detections, nil
}

// suppress applies NMS separately for every class.
func (s *DetectorService) suppress(candidates []model.RawDetection) []model.RawDetection {
	kept := make([]model.RawDetection, 0, len(candidates))
	for _, group := range detect.GroupByClass(candidates) {
		boxes := make([]image.Rectangle, len(group))
		scores := make([]float32, len(group))
		for i, idx := range group {
			b := candidates[idx].Box
			boxes[i] = image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2))
			scores[i] = float32(candidates[idx].Confidence)
		}

		for _, i := range gocv.NMSBoxes(boxes, scores, float32(detect.ConfidenceThreshold), s.nmsThreshold) {
			kept = append(kept, candidates[group[i]])
		}
	}
	return kept
}

// Crop returns the JPEG encoded region of box, clamped to the image.
func (s *DetectorService) Crop(imagePath string, box model.BoundingBox) ([]byte, error) {
	mat := gocv.IMRead(imagePath, gocv.IMReadColor)
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("failed to read image %s", imagePath)
	}

	rect, ok := detect.ClampRect(box, mat.Cols(), mat.Rows())
	if !ok {
		return nil, errors.New("bounding box lies outside the image")
	}

	region := mat.Region(rect)
	defer region.Close()

	return encodeJPEG(region)
}

// Annotate draws the detections on the image and returns a re-encoded JPEG buffer.
func (s *DetectorService) Annotate(imagePath string, detections []model.Detection) ([]byte, error) {
	green := color.RGBA{R: 0, G: 200, B: 0, A: 0}

	mat := gocv.IMRead(imagePath, gocv.IMReadColor)
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("failed to read image %s", imagePath)
	}

	for _, detection := range detections {
		rect, ok := detect.ClampRect(detection.Box, mat.Cols(), mat.Rows())
		if !ok {
			continue
		}
		if err := gocv.Rectangle(&mat, rect, green, 2); err != nil {
			return nil, fmt.Errorf("failed to draw rectangle: %v", err)
		}

		label := fmt.Sprintf("%s (%.2f)", detection.ClassName, detection.Confidence)
		pt := image.Pt(rect.Min.X, max(rect.Min.Y-5, 12))
		if err := gocv.PutText(&mat, label, pt, gocv.FontHersheySimplex, 0.5, green, 1); err != nil {
			return nil, fmt.Errorf("failed to draw text: %v", err)
		}
	}

	return encodeJPEG(mat)
}

func encodeJPEG(mat gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// Close stops new Detect calls and releases every network. It waits for
// in-flight calls to hand their network back first.
func (s *DetectorService) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		if s.pool == nil {
			return
		}
		for i := 0; i < cap(s.pool); i++ {
			net := <-s.pool
			net.Close()
		}
	})
}
