package splitter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"policygen/entities"
)

// Meta keys written on every chunk.
const (
	MetaFilePath      = "file_path"
	MetaSourceID      = "source_id"
	MetaSplitID       = "split_id"
	MetaSplitIdxStart = "split_idx_start"
)

// a sentence ends at the first run of terminal punctuation
var sentenceRX = regexp.MustCompile(`[^.!?]*[.!?]+`)

// SentenceSplitter cuts documents into windows of Length sentences where
// consecutive windows share Overlap sentences.
type SentenceSplitter struct {
	Length  int
	Overlap int
}

func New(length, overlap int) (*SentenceSplitter, error) {
	if length <= 0 {
		return nil, fmt.Errorf("split length must be positive, got %d", length)
	}
	if overlap < 0 || overlap >= length {
		return nil, fmt.Errorf("split overlap must be in [0, %d), got %d", length, overlap)
	}
	return &SentenceSplitter{Length: length, Overlap: overlap}, nil
}

type sentence struct {
	text  string
	start int
}

// sentences keeps the original text of every sentence (whitespace included)
// so windows can be rebuilt by plain concatenation. start is the offset of the
// first non-space byte.
func sentences(text string) []sentence {
	var out []sentence
	last := 0
	for _, loc := range sentenceRX.FindAllStringIndex(text, -1) {
		m := text[loc[0]:loc[1]]
		out = append(out, sentence{text: m, start: loc[0] + leadingSpace(m)})
		last = loc[1]
	}
	if rest := text[last:]; strings.TrimSpace(rest) != "" {
		out = append(out, sentence{text: rest, start: last + leadingSpace(rest)})
	}
	return out
}

func leadingSpace(s string) int {
	return len(s) - len(strings.TrimLeftFunc(s, unicode.IsSpace))
}

// Split returns the chunks of doc in order. A document with no text yields none.
func (s *SentenceSplitter) Split(doc entities.Document) []entities.Document {
	sents := sentences(doc.Content)
	if len(sents) == 0 {
		return nil
	}

	step := s.Length - s.Overlap
	var out []entities.Document
	for i, splitID := 0, 0; ; i, splitID = i+step, splitID+1 {
		end := i + s.Length
		if end > len(sents) {
			end = len(sents)
		}
		var b strings.Builder
		for _, st := range sents[i:end] {
			b.WriteString(st.text)
		}
		content := strings.TrimSpace(b.String())

		meta := make(map[string]any, len(doc.Meta)+3)
		for k, v := range doc.Meta {
			meta[k] = v
		}
		meta[MetaSourceID] = doc.ID
		meta[MetaSplitID] = splitID
		meta[MetaSplitIdxStart] = sents[i].start

		out = append(out, entities.Document{
			ID:      ChunkID(doc.ID, splitID, content),
			Content: content,
			Meta:    meta,
		})
		if end == len(sents) {
			break
		}
	}
	return out
}

// SplitAll splits every document and concatenates the results.
func (s *SentenceSplitter) SplitAll(docs []entities.Document) []entities.Document {
	var out []entities.Document
	for _, d := range docs {
		out = append(out, s.Split(d)...)
	}
	return out
}

// ChunkID is stable for the same source, position and content.
func ChunkID(sourceID string, splitID int, content string) string {
	name := fmt.Sprintf("%s\x00%d\x00%s", sourceID, splitID, content)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// WindowCount is the number of chunks Split produces for m sentences.
func (s *SentenceSplitter) WindowCount(m int) int {
	if m <= 0 {
		return 0
	}
	if m <= s.Length {
		return 1
	}
	step := s.Length - s.Overlap
	return 1 + (m-s.Length+step-1)/step
}
