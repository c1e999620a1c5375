package nlp

import (
	"os"
	"path/filepath"
	"testing"
)

func writeVocab(t *testing.T, tokens []string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.txt")
	content := ""
	for _, tok := range tokens {
		content += tok + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write vocab: %v", err)
	}
	return path
}

func TestWordPieceEncode(t *testing.T) {
	// ids: [PAD]=0 [UNK]=1 [CLS]=2 [SEP]=3 hello=4 world=5 play=6 ##ing=7
	path := writeVocab(t, []string{"[PAD]", "[UNK]", "[CLS]", "[SEP]", "hello", "world", "play", "##ing"})
	tok, err := LoadWordPieceTokenizer(path)
	if err != nil {
		t.Fatalf("load tokenizer: %v", err)
	}

	ids, attn := tok.Encode("Hello world", 8)
	want := []int64{2, 4, 5, 3, 0, 0, 0, 0}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids[%d] = %d, want %d (ids=%v)", i, ids[i], want[i], ids)
		}
	}
	for i, a := range attn {
		wantA := int64(0)
		if i < 4 {
			wantA = 1
		}
		if a != wantA {
			t.Fatalf("attn[%d] = %d, want %d", i, a, wantA)
		}
	}
}

func TestWordPieceContinuation(t *testing.T) {
	path := writeVocab(t, []string{"[PAD]", "[UNK]", "[CLS]", "[SEP]", "play", "##ing"})
	tok, err := LoadWordPieceTokenizer(path)
	if err != nil {
		t.Fatalf("load tokenizer: %v", err)
	}

	ids, _ := tok.Encode("playing", 6)
	if ids[1] != 4 || ids[2] != 5 {
		t.Fatalf("expected play + ##ing pieces, got %v", ids)
	}
}

func TestWordPieceUnknown(t *testing.T) {
	path := writeVocab(t, []string{"[PAD]", "[UNK]", "[CLS]", "[SEP]", "hello"})
	tok, err := LoadWordPieceTokenizer(path)
	if err != nil {
		t.Fatalf("load tokenizer: %v", err)
	}

	ids, _ := tok.Encode("zzzzz", 5)
	if ids[1] != 1 {
		t.Fatalf("unknown word should map to [UNK], got %v", ids)
	}
}

func TestServiceDegradesBeforeWarmUp(t *testing.T) {
	svc := NewService(t.TempDir(), 16, 8)
	if svc.Ready() {
		t.Fatalf("service should not be ready before warm-up")
	}
	if p := svc.Informality("hey"); p != nil {
		t.Fatalf("informality should be nil before warm-up, got %v", *p)
	}
	if s := svc.StyleSimilarity("a", "b"); s != nil {
		t.Fatalf("similarity should be nil before warm-up, got %v", *s)
	}
}

func TestCosine(t *testing.T) {
	if got := Cosine([]float32{1, 0}, []float32{1, 0}); got < 0.999 {
		t.Fatalf("identical vectors should score 1, got %v", got)
	}
	if got := Cosine([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Fatalf("orthogonal vectors should score 0, got %v", got)
	}
	if got := Cosine(nil, nil); got != 0 {
		t.Fatalf("empty vectors should score 0, got %v", got)
	}
	if got := Cosine([]float32{0, 0}, []float32{1, 1}); got != 0 {
		t.Fatalf("zero vector should score 0, got %v", got)
	}
}
