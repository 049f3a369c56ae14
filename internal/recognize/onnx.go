package recognize

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/disintegration/imaging"
	onnxrt "github.com/yalue/onnxruntime_go"

	"github.com/motoforense/motoscan/internal/mempool"
)

// EnvModelPath overrides the default local recognition model location.
const EnvModelPath = "MOTOSCAN_REC_MODEL"

// LocalConfig configures the offline ONNX recognizer.
type LocalConfig struct {
	ModelPath   string // path to the ONNX recognition model
	ImageHeight int    // model input height
	MaxWidth    int    // optional width clamp (0 = none)
	NumThreads  int    // intra-op threads (0 = default)
}

// DefaultLocalConfig returns the default local recognizer configuration.
func DefaultLocalConfig() LocalConfig {
	path := "models/engrave_rec.onnx"
	if env := os.Getenv(EnvModelPath); env != "" {
		path = env
	}
	return LocalConfig{
		ModelPath:   path,
		ImageHeight: 48,
		MaxWidth:    960,
		NumThreads:  0,
	}
}

// Local is the primary recognizer: an ONNX CRNN over the engraving
// alphabet, run fully offline.
type Local struct {
	cfg     LocalConfig
	session *onnxrt.DynamicAdvancedSession
	mu      sync.Mutex
}

// NewLocal creates the local recognizer and loads the model session.
func NewLocal(cfg LocalConfig) (*Local, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("recognition model path cannot be empty")
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("recognition model not found: %s", cfg.ModelPath)
	}
	if cfg.ImageHeight <= 0 {
		cfg.ImageHeight = 48
	}

	if err := setONNXLibraryPath(); err != nil {
		return nil, fmt.Errorf("set onnxruntime library path: %w", err)
	}
	if !onnxrt.IsInitialized() {
		if err := onnxrt.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	inputs, outputs, err := onnxrt.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("inspect model: %w", err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, fmt.Errorf("expected 1 input and 1 output, got %d/%d", len(inputs), len(outputs))
	}

	opts, err := onnxrt.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer func() { _ = opts.Destroy() }()
	if cfg.NumThreads > 0 {
		if err := opts.SetIntraOpNumThreads(cfg.NumThreads); err != nil {
			return nil, fmt.Errorf("set thread count: %w", err)
		}
	}

	session, err := onnxrt.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{inputs[0].Name}, []string{outputs[0].Name}, opts)
	if err != nil {
		return nil, fmt.Errorf("create recognition session: %w", err)
	}

	slog.Debug("local recognizer ready", "model", cfg.ModelPath, "height", cfg.ImageHeight)
	return &Local{cfg: cfg, session: session}, nil
}

// Source implements Recognizer.
func (l *Local) Source() Source { return SourcePrimary }

// Recognize runs the model over the full image and greedily decodes the
// character sequence. The session is serialized; concurrent requests queue.
func (l *Local) Recognize(ctx context.Context, img image.Image) (RawRecognition, error) {
	if img == nil {
		return RawRecognition{}, errors.New("input image is nil")
	}
	if err := ctx.Err(); err != nil {
		return RawRecognition{}, err
	}

	data, w, h := l.preprocess(img)
	// The tensor references the pooled buffer; release only after Destroy.
	defer mempool.PutFloat32(data)
	tensor, err := onnxrt.NewTensor(onnxrt.NewShape(1, 1, int64(h), int64(w)), data)
	if err != nil {
		return RawRecognition{}, fmt.Errorf("create input tensor: %w", err)
	}
	defer func() { _ = tensor.Destroy() }()

	l.mu.Lock()
	outputs := []onnxrt.Value{nil}
	runErr := l.session.Run([]onnxrt.Value{tensor}, outputs)
	l.mu.Unlock()
	if runErr != nil {
		return RawRecognition{}, fmt.Errorf("recognition inference: %w", runErr)
	}
	out, ok := outputs[0].(*onnxrt.Tensor[float32])
	if !ok {
		return RawRecognition{}, errors.New("unexpected model output type")
	}
	defer func() { _ = out.Destroy() }()

	shape := out.GetShape()
	if len(shape) != 3 {
		return RawRecognition{}, fmt.Errorf("expected 3D model output, got %dD", len(shape))
	}
	steps, classes := int(shape[1]), int(shape[2])
	text, conf := decodeCTC(out.GetData(), steps, classes)

	slog.Debug("local recognition", "text", text, "confidence", conf)
	return RawRecognition{Text: text, Confidence: conf, Source: SourcePrimary}, nil
}

// preprocess scales the image to the model height, converts to grayscale
// and packs a normalized NCHW float32 buffer.
func (l *Local) preprocess(img image.Image) ([]float32, int, int) {
	h := l.cfg.ImageHeight
	bounds := img.Bounds()
	w := bounds.Dx() * h / max(bounds.Dy(), 1)
	if w < 8 {
		w = 8
	}
	if l.cfg.MaxWidth > 0 && w > l.cfg.MaxWidth {
		w = l.cfg.MaxWidth
	}
	gray := imaging.Grayscale(imaging.Resize(img, w, h, imaging.Lanczos))

	data := mempool.GetFloat32(w * h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, _, _, _ := gray.At(x, y).RGBA()
			// Scale to [-1, 1] as the model was trained.
			data[y*w+x] = (float32(r>>8)/127.5 - 1.0)
		}
	}
	return data, w, h
}

// Close releases the model session.
func (l *Local) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.session != nil {
		err := l.session.Destroy()
		l.session = nil
		return err
	}
	return nil
}

// setONNXLibraryPath points onnxruntime_go at the shared library. An
// explicit ONNXRUNTIME_LIB_PATH wins; otherwise the platform default
// library name is left for the loader to resolve.
func setONNXLibraryPath() error {
	if path := os.Getenv("ONNXRUNTIME_LIB_PATH"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("ONNXRUNTIME_LIB_PATH %s: %w", path, err)
		}
		onnxrt.SetSharedLibraryPath(path)
		return nil
	}
	switch runtime.GOOS {
	case "darwin":
		onnxrt.SetSharedLibraryPath("libonnxruntime.dylib")
	case "windows":
		onnxrt.SetSharedLibraryPath("onnxruntime.dll")
	default:
		onnxrt.SetSharedLibraryPath("libonnxruntime.so")
	}
	return nil
}
