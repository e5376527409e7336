package mutate

import (
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanmh/activitybot/internal/domain"
)

const (
	indentUnit  = "    "
	stampLayout = "2006-01-02 15:04:05"
)

// Edit strategies. Each produces a syntactically harmless textual change.
const (
	strategyAnnotate = iota
	strategySpacer
	strategyReindent
	strategyTodoStamp
	strategyCount
)

// Engine produces randomized edits on files under a repository root.
// It is intentionally non-deterministic in production; tests inject a
// fixed-seed source to replay exact selections.
type Engine struct {
	root  string
	rng   *rand.Rand
	now   func() time.Time
	debug bool
}

// NewEngine creates an Engine rooted at the working copy
func NewEngine(root string, rng *rand.Rand, debug bool) *Engine {
	return &Engine{root: root, rng: rng, now: time.Now, debug: debug}
}

// SelectTargets picks a uniformly random count n in [lo, hi] (clamped to the
// candidate count) and returns n distinct candidates chosen without
// replacement. An empty candidate set returns nil; recovering from that is
// the caller's job.
func (e *Engine) SelectTargets(candidates []string, lo, hi int) []string {
	if len(candidates) == 0 {
		return nil
	}
	if hi > len(candidates) {
		hi = len(candidates)
	}
	if lo > hi {
		lo = hi
	}

	n := lo
	if hi > lo {
		n = lo + e.rng.Intn(hi-lo+1)
	}
	if n == 0 {
		return nil
	}

	picks := append([]string(nil), candidates...)
	e.rng.Shuffle(len(picks), func(i, j int) {
		picks[i], picks[j] = picks[j], picks[i]
	})
	return picks[:n]
}

// Mutate applies k random edits to the file at relPath, with k uniform in
// [lo, min(hi, lineCount)]. Edit indices are drawn against the line count
// before any edit is applied; the spacer strategy grows the sequence
// mid-loop, so later edits may land on shifted lines. The realized edit set
// is best-effort, approximately k, not exactly k.
//
// The rewrite preserves the file's line-ending style and trailing-newline
// state and is applied atomically.
func (e *Engine) Mutate(relPath string, lo, hi int) error {
	full := filepath.Join(e.root, filepath.FromSlash(relPath))

	data, err := os.ReadFile(full)
	if err != nil && !os.IsNotExist(err) {
		return &domain.FSError{Path: relPath, Err: err}
	}

	doc := parseDocument(data)
	original := len(doc.lines)

	if hi > original {
		hi = original
	}
	if lo > hi {
		lo = hi
	}
	k := lo
	if hi > lo {
		k = lo + e.rng.Intn(hi-lo+1)
	}

	if e.debug {
		log.Printf("mutate: %s: %d edits over %d lines", relPath, k, original)
	}

	leader, trailer := commentLeader(relPath)
	stamp := e.now().Format(stampLayout)

	for i := 0; i < k; i++ {
		idx := e.rng.Intn(original)
		switch e.rng.Intn(strategyCount) {
		case strategyAnnotate:
			line := doc.lines[idx]
			if strings.TrimSpace(line) == "" {
				doc.lines[idx] = marker(leader, trailer, "bot touch "+stamp)
			} else {
				doc.lines[idx] = line + " " + marker(leader, trailer, "bot touch "+stamp)
			}
		case strategySpacer:
			doc.lines = insertLine(doc.lines, idx+1, "")
		case strategyReindent:
			indent := strings.Repeat(indentUnit, e.rng.Intn(4))
			doc.lines[idx] = indent + strings.TrimLeft(doc.lines[idx], " \t")
		case strategyTodoStamp:
			doc.lines[idx] = marker(leader, trailer, "TODO: placeholder added "+stamp)
		}
	}

	if err := writeFileAtomic(full, doc.render()); err != nil {
		return &domain.FSError{Path: relPath, Err: err}
	}
	return nil
}

// document is an in-memory line-oriented view of a text file
type document struct {
	lines      []string
	crlf       bool
	trailingNL bool
}

// parseDocument splits file content into lines, recording the line-ending
// style and trailing-newline state so render can reproduce them. A missing
// or empty file becomes a single empty line so every strategy has a target.
func parseDocument(data []byte) *document {
	text := string(data)
	crlf := strings.Contains(text, "\r\n")
	if crlf {
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}

	trailingNL := strings.HasSuffix(text, "\n")
	if trailingNL {
		text = strings.TrimSuffix(text, "\n")
	}

	lines := strings.Split(text, "\n")
	if len(data) == 0 {
		lines = []string{""}
		trailingNL = true
	}

	return &document{lines: lines, crlf: crlf, trailingNL: trailingNL}
}

func (d *document) render() []byte {
	out := strings.Join(d.lines, "\n")
	if d.trailingNL {
		out += "\n"
	}
	if d.crlf {
		out = strings.ReplaceAll(out, "\n", "\r\n")
	}
	return []byte(out)
}

func insertLine(lines []string, at int, line string) []string {
	lines = append(lines, "")
	copy(lines[at+1:], lines[at:])
	lines[at] = line
	return lines
}

func marker(leader, trailer, text string) string {
	if trailer != "" {
		return leader + " " + text + " " + trailer
	}
	return leader + " " + text
}

// commentLeader picks a comment syntax by file extension. The default is a
// hash; the edits only need to look harmless, not to parse in every language.
func commentLeader(path string) (leader, trailer string) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "go", "rs", "js", "ts", "c", "h", "cpp", "java":
		return "//", ""
	case "md", "html", "xml":
		return "<!--", "-->"
	default:
		return "#", ""
	}
}

// writeFileAtomic rewrites path via a temp file and rename so readers never
// observe a partial write.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".bot-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
