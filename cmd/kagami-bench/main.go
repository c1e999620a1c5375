// kagami-bench measures the style engine's per-turn cost: profile
// extraction plus LSM scoring over a corpus of text lines.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/kagami-chat/kagami/internal/config"
	"github.com/kagami-chat/kagami/internal/nlp"
	"github.com/kagami-chat/kagami/internal/style"
)

func main() {
	cfgPath := flag.String("config", "", "path to config yaml (optional; defaults apply)")
	corpusPath := flag.String("corpus", "", "text file, one message per line (required)")
	n := flag.Int("n", 200, "number of iterations over the corpus")
	warm := flag.Bool("warm", false, "warm up the ONNX models before timing")
	flag.Parse()

	if *corpusPath == "" {
		log.Fatalf("corpus flag is required")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lines, err := readCorpus(*corpusPath)
	if err != nil {
		log.Fatalf("read corpus: %v", err)
	}
	if len(lines) == 0 {
		log.Fatalf("corpus is empty")
	}

	var models *nlp.Service
	if *warm {
		models = nlp.NewService(cfg.Models.BundleDir, cfg.Models.SeqLen, cfg.Models.HiddenSize)
		models.WarmUp()
		defer models.Close()
	}

	// Cache capacity 1 so repeated iterations re-run the full extraction.
	extractor := style.NewExtractor(models, 1)

	// Warmup pass outside the timed loop.
	for _, line := range lines {
		extractor.Extract(line)
	}

	if *n <= 0 {
		*n = 1
	}

	durations := make([]time.Duration, 0, *n)
	for i := 0; i < *n; i++ {
		src := lines[i%len(lines)]
		tgt := lines[(i+1)%len(lines)]
		start := time.Now()
		p := extractor.Extract(src)
		_ = p.WordCount
		_ = style.LSM(src, tgt, cfg.Engine.MinTokensForLSM)
		durations = append(durations, time.Since(start))
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var total time.Duration
	for _, d := range durations {
		total += d
	}

	avg := float64(total.Microseconds()) / 1000.0 / float64(len(durations))
	p50 := float64(durations[len(durations)/2].Microseconds()) / 1000.0
	p95 := float64(durations[int(float64(len(durations))*0.95)].Microseconds()) / 1000.0

	fmt.Printf("bench: n=%d lines=%d avg_ms=%.3f p50_ms=%.3f p95_ms=%.3f models_warm=%t\n",
		len(durations), len(lines), avg, p50, p95, *warm)
}

func readCorpus(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}
