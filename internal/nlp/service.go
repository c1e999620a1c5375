package nlp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/kagami-chat/kagami/internal/redact"
)

// Service owns the optional ONNX collaborators. The deterministic scorers in
// this package work without it; the service only adds the learned formality
// probability and the embedding similarity. Warm-up is idempotent and the
// service degrades to nil answers until it has run.
type Service struct {
	bundleDir  string
	seqLen     int
	hiddenSize int

	mu        sync.Mutex
	warmed    bool
	formality *FormalityModel
	embedding *EmbeddingModel
}

// NewService prepares a service rooted at bundleDir. No model I/O happens
// until WarmUp.
func NewService(bundleDir string, seqLen, hiddenSize int) *Service {
	return &Service{bundleDir: bundleDir, seqLen: seqLen, hiddenSize: hiddenSize}
}

// WarmUp loads both models. Safe to call from multiple goroutines; only the
// first call does work. A model that fails to load stays nil and its
// features stay unavailable, the rest of the service keeps working.
func (s *Service) WarmUp() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.warmed {
		return
	}
	s.warmed = true

	fm, err := LoadFormalityModel(s.bundleDir, s.seqLen)
	if err != nil {
		redact.Logf("nlp: formality model unavailable: %v", err)
	} else {
		s.formality = fm
		redact.Logf("nlp: formality model ready (seq_len=%d)", s.seqLen)
	}

	em, err := LoadEmbeddingModel(s.bundleDir, s.seqLen, s.hiddenSize)
	if err != nil {
		redact.Logf("nlp: embedding model unavailable: %v", err)
	} else {
		s.embedding = em
		redact.Logf("nlp: embedding model ready (seq_len=%d hidden=%d)", s.seqLen, s.hiddenSize)
	}
}

// Ready reports whether warm-up has run, regardless of how many models
// loaded successfully.
func (s *Service) Ready() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warmed
}

// Informality returns P(informal) for text, or nil when the classifier is
// unavailable or inference fails.
func (s *Service) Informality(text string) *float64 {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	model := s.formality
	s.mu.Unlock()
	if model == nil {
		return nil
	}
	p, err := model.Informality(text)
	if err != nil {
		redact.Logf("nlp: formality inference failed: %v", err)
		return nil
	}
	return &p
}

// StyleSimilarity returns the cosine similarity between the embeddings of
// two texts, or nil when the encoder is unavailable.
func (s *Service) StyleSimilarity(a, b string) *float64 {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	model := s.embedding
	s.mu.Unlock()
	if model == nil {
		return nil
	}
	va, err := model.Embed(a)
	if err != nil {
		redact.Logf("nlp: embedding inference failed: %v", err)
		return nil
	}
	vb, err := model.Embed(b)
	if err != nil {
		redact.Logf("nlp: embedding inference failed: %v", err)
		return nil
	}
	sim := Cosine(va, vb)
	return &sim
}

// Close releases any loaded model sessions.
func (s *Service) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.formality != nil {
		s.formality.Close()
		s.formality = nil
	}
	if s.embedding != nil {
		s.embedding.Close()
		s.embedding = nil
	}
}

// ensureRuntime points the ONNX binding at a shared library and initializes
// the environment once.
func ensureRuntime(bundleDir string) error {
	libPath := resolveSharedLibraryPath(bundleDir)
	if libPath == "" {
		return fmt.Errorf("onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH or install the runtime")
	}
	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}
	return nil
}

// resolveSharedLibraryPath attempts to locate a platform-specific onnxruntime shared library.
// If ONNXRUNTIME_SHARED_LIBRARY_PATH is set, it wins; otherwise we probe common names/locations.
func resolveSharedLibraryPath(bundleDir string) string {
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.dylib",
		"onnxruntime.dylib",
		"libonnxruntime.so",
		"onnxruntime.so",
		"onnxruntime.dll",
	}
	dirs := []string{
		bundleDir,
		filepath.Join(bundleDir, "lib"),
		".",
		"/opt/homebrew/lib",
		"/usr/local/lib",
		"/usr/lib",
	}

	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
