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

// FormalityModel wraps the two-class formality ONNX session. Output index 0
// is the formal logit and index 1 the informal one; Informality returns the
// softmax probability of the informal class.
type FormalityModel struct {
	session   *ort.AdvancedSession
	tokenizer *WordPieceTokenizer
	seqLen    int

	inputIDs      *ort.Tensor[int64]
	attentionMask *ort.Tensor[int64]
	output        *ort.Tensor[float32]

	mu sync.Mutex
}

// LoadFormalityModel initializes the ONNX session and tokenizer from the
// bundle directory (formality.onnx plus tokenizer/vocab.txt).
func LoadFormalityModel(bundleDir string, seqLen int) (*FormalityModel, error) {
	if bundleDir == "" {
		return nil, errors.New("bundleDir is empty")
	}
	if seqLen <= 0 {
		seqLen = 256
	}
	if err := ensureRuntime(bundleDir); err != nil {
		return nil, err
	}

	modelPath := filepath.Join(bundleDir, "formality.onnx")
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
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 2))
	if err != nil {
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"logits"},
		[]ort.Value{inputIDs, attnMask},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &FormalityModel{
		session:       session,
		tokenizer:     tokenizer,
		seqLen:        seqLen,
		inputIDs:      inputIDs,
		attentionMask: attnMask,
		output:        output,
	}, nil
}

// Informality runs inference and returns P(informal) in [0,1].
func (m *FormalityModel) Informality(text string) (float64, error) {
	if m == nil || m.session == nil || m.tokenizer == nil {
		return 0, errors.New("formality model not initialized")
	}

	inputIDs, attn := m.tokenizer.Encode(text, m.seqLen)

	m.mu.Lock()
	defer m.mu.Unlock()

	copy(m.inputIDs.GetData(), inputIDs)
	copy(m.attentionMask.GetData(), attn)

	if err := m.session.Run(); err != nil {
		return 0, fmt.Errorf("onnx run: %w", err)
	}

	logits := m.output.GetData()
	if len(logits) < 2 {
		return 0, fmt.Errorf("unexpected logit count %d", len(logits))
	}

	formal := float64(logits[0])
	informal := float64(logits[1])
	maxL := math.Max(formal, informal)
	expFormal := math.Exp(formal - maxL)
	expInformal := math.Exp(informal - maxL)
	return expInformal / (expFormal + expInformal), nil
}

// Close releases the ONNX session and its tensors.
func (m *FormalityModel) Close() {
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
