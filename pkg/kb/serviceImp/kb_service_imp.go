package serviceImp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"policygen/entities"
	"policygen/pkg/kb/converter"
	"policygen/pkg/kb/embedder"
	"policygen/pkg/kb/repository"
	"policygen/pkg/kb/service"
	"policygen/pkg/kb/splitter"
)

type Options struct {
	Extensions []string
	TopK       int
	Logger     logrus.FieldLogger
}

type Svc struct {
	r     repository.KBRepository
	emb   embedder.Embedder
	conv  *converter.Registry
	split *splitter.SentenceSplitter
	exts  []string
	topK  int
	log   logrus.FieldLogger
}

var _ service.KBService = (*Svc)(nil)

func New(r repository.KBRepository, emb embedder.Embedder, conv *converter.Registry, split *splitter.SentenceSplitter, opts Options) *Svc {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{".txt"}
	}
	k := opts.TopK
	if k <= 0 {
		k = 5
	}
	var log logrus.FieldLogger = opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Svc{
		r:     r,
		emb:   emb,
		conv:  conv,
		split: split,
		exts:  exts,
		topK:  k,
		log:   log.WithField("component", "kb"),
	}
}

// discover lists matching files directly under dir, sorted. A missing
// directory counts as empty.
func (s *Svc) discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, service.ErrNoInputFiles
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	want := make(map[string]bool, len(s.exts))
	for _, e := range s.exts {
		want[strings.ToLower(e)] = true
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if want[strings.ToLower(filepath.Ext(e.Name()))] {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	if len(out) == 0 {
		return nil, service.ErrNoInputFiles
	}
	sort.Strings(out)
	return out, nil
}

func (s *Svc) Index(ctx context.Context, dir string) (service.IndexReport, error) {
	files, err := s.discover(dir)
	if errors.Is(err, service.ErrNoInputFiles) {
		s.log.Warnf("no %s files found in %s; nothing indexed", strings.Join(s.exts, "/"), dir)
		return service.IndexReport{Skipped: true}, nil
	}
	if err != nil {
		return service.IndexReport{}, err
	}
	s.log.WithField("files", len(files)).Info("indexing started")

	sources, err := s.conv.ConvertAll(files)
	if err != nil {
		return service.IndexReport{}, err
	}
	chunks := s.split.SplitAll(sources)

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}
	vecs, err := s.emb.EmbedDocuments(ctx, texts)
	if err != nil {
		return service.IndexReport{}, fmt.Errorf("embed documents: %w", err)
	}
	if len(vecs) != len(chunks) {
		return service.IndexReport{}, fmt.Errorf("embed documents: got %d vectors for %d chunks", len(vecs), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = vecs[i]
		chunks[i].Dimension = len(vecs[i])
	}

	info := entities.StoreInfo{
		Embedder:  s.emb.Name(),
		Dimension: s.emb.Dimension(),
		IndexedAt: time.Now().UTC(),
	}
	if err := s.r.ReplaceAll(ctx, chunks, info); err != nil {
		return service.IndexReport{}, fmt.Errorf("write documents: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"files":    len(files),
		"chunks":   len(chunks),
		"embedder": info.Embedder,
	}).Info("indexing finished")
	return service.IndexReport{
		Files:     files,
		Chunks:    len(chunks),
		Embedder:  info.Embedder,
		Dimension: info.Dimension,
	}, nil
}

func (s *Svc) Search(ctx context.Context, query string, k int) ([]entities.Document, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []entities.Document{}, nil
	}
	if k <= 0 {
		k = s.topK
	}
	vec, err := s.emb.EmbedQuery(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vec) == 0 {
		return nil, embedder.ErrEmptyEmbedding
	}
	docs, err := s.r.Query(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("query store: %w", err)
	}
	return docs, nil
}

func (s *Svc) Stats(ctx context.Context) (service.Stats, error) {
	n, err := s.r.Count(ctx)
	if err != nil {
		return service.Stats{}, err
	}
	info, err := s.r.Info(ctx)
	if err != nil {
		return service.Stats{}, err
	}
	return service.Stats{Documents: n, Info: info}, nil
}
