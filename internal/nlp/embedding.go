package nlp

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// EmbeddingModel wraps the sentence-encoder ONNX session. Token embeddings
// from the last hidden state are mean-pooled over the attention mask to
// give one vector per text.
type EmbeddingModel struct {
	session   *ort.AdvancedSession
	tokenizer *WordPieceTokenizer
	seqLen    int
	hidden    int

	inputIDs      *ort.Tensor[int64]
	attentionMask *ort.Tensor[int64]
	output        *ort.Tensor[float32]

	mu sync.Mutex
}

// LoadEmbeddingModel initializes the encoder session from the bundle
// directory (embedding.onnx plus tokenizer/vocab.txt).
func LoadEmbeddingModel(bundleDir string, seqLen, hiddenSize int) (*EmbeddingModel, error) {
	if bundleDir == "" {
		return nil, errors.New("bundleDir is empty")
	}
	if seqLen <= 0 {
		seqLen = 256
	}
	if hiddenSize <= 0 {
		hiddenSize = 384
	}
	if err := ensureRuntime(bundleDir); err != nil {
		return nil, err
	}

	modelPath := filepath.Join(bundleDir, "embedding.onnx")
	vocabPath := filepath.Join(bundleDir, "tokenizer", "vocab.txt")

	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", modelPath, err)
	}

	tokenizer, err := LoadWordPieceTokenizer(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	inputShape := ort.NewShape(1, int64(seqLen))
	inputIDs, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate input_ids tensor: %w", err)
	}
	attnMask, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate attention_mask tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(seqLen), int64(hiddenSize)))
	if err != nil {
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"last_hidden_state"},
		[]ort.Value{inputIDs, attnMask},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &EmbeddingModel{
		session:       session,
		tokenizer:     tokenizer,
		seqLen:        seqLen,
		hidden:        hiddenSize,
		inputIDs:      inputIDs,
		attentionMask: attnMask,
		output:        output,
	}, nil
}

// Embed returns the mean-pooled sentence vector for text.
func (m *EmbeddingModel) Embed(text string) ([]float32, error) {
	if m == nil || m.session == nil || m.tokenizer == nil {
		return nil, errors.New("embedding model not initialized")
	}

	inputIDs, attn := m.tokenizer.Encode(text, m.seqLen)

	m.mu.Lock()
	defer m.mu.Unlock()

	copy(m.inputIDs.GetData(), inputIDs)
	copy(m.attentionMask.GetData(), attn)

	if err := m.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}

	hidden := m.output.GetData()
	pooled := make([]float32, m.hidden)
	var count float32
	for i := 0; i < m.seqLen; i++ {
		if attn[i] == 0 {
			continue
		}
		count++
		base := i * m.hidden
		for j := 0; j < m.hidden; j++ {
			pooled[j] += hidden[base+j]
		}
	}
	if count == 0 {
		return nil, errors.New("empty attention mask")
	}
	for j := range pooled {
		pooled[j] /= count
	}
	return pooled, nil
}

// Close releases the ONNX session and its tensors.
func (m *EmbeddingModel) Close() {
	if m == nil {
		return
	}
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
	for _, t := range []*ort.Tensor[int64]{m.inputIDs, m.attentionMask} {
		if t != nil {
			t.Destroy()
		}
	}
	if m.output != nil {
		m.output.Destroy()
	}
}

// Cosine computes cosine similarity between two vectors, 0 when either is
// zero-length or all zeros.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
