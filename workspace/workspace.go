// Package workspace keeps the parsed state of open documents and answers
// editor queries (node lookup, outline, hover, completion, diagnostics)
// against it. LSPServer exposes it over the Language Server Protocol.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	adoc "github.com/dhamidi/quill/asciidoc/parser"
	"github.com/dhamidi/quill/config"
	"github.com/dhamidi/quill/position"
	qute "github.com/dhamidi/quill/qute/parser"
)

var (
	ErrUnsupported = errors.New("unsupported document type")
	ErrNotFound    = errors.New("document not open")
	ErrSuperseded  = errors.New("document changed during parse")
)

// Document is the latest successful parse of an open document. Exactly one
// of AsciiDoc and Qute is set.
type Document struct {
	URI      string
	Language string
	Version  int32
	Text     []rune
	Mapper   *position.Mapper

	AsciiDoc *adoc.Document
	Qute     *qute.Document

	seq uint64
	a   analysis
}

type pending struct {
	seq    uint64
	cancel context.CancelFunc
}

type Workspace struct {
	mu       sync.RWMutex
	cfg      *config.Config
	docs     map[string]*Document
	inflight map[string]*pending
	seq      uint64

	resolver Resolver
	timeout  time.Duration
	log      commonlog.Logger
	metrics  *metrics

	// called without the lock, after an Update registered its parse and
	// after the parse returned
	testHookStarted func(uri string)
	testHookParsed  func(uri string)
}

type Option func(*Workspace)

// WithResolver sets the type resolver used by template completion and
// hover. The default resolves nothing.
func WithResolver(r Resolver) Option {
	return func(w *Workspace) {
		w.resolver = r
	}
}

// WithParseTimeout bounds each parse by d instead of server.parse_timeout.
// Zero means no bound.
func WithParseTimeout(d time.Duration) Option {
	return func(w *Workspace) {
		w.timeout = d
	}
}

// WithMeter records parse metrics on m instead of the global meter provider.
func WithMeter(m metric.Meter) Option {
	return func(w *Workspace) {
		w.metrics = &metrics{meter: m}
	}
}

func New(cfg *config.Config, opts ...Option) (*Workspace, error) {
	w := &Workspace{
		cfg:      cfg,
		docs:     make(map[string]*Document),
		inflight: make(map[string]*pending),
		resolver: nopResolver{},
		timeout:  cfg.Server.ParseTimeout,
		log:      commonlog.GetLogger("quill.workspace"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.metrics == nil {
		w.metrics = &metrics{meter: otel.Meter("github.com/dhamidi/quill/workspace")}
	}
	if err := w.metrics.init(); err != nil {
		return nil, fmt.Errorf("create workspace metrics: %w", err)
	}
	return w, nil
}

// Language returns the language of the document at uri, or "" if no
// configured extension matches.
func (w *Workspace) Language(uri string) string {
	return w.cfg.Language(uriToPath(uri))
}

// Update parses text as the new content of uri. A parse of the same uri
// still running is canceled first. Results of a parse that was overtaken
// by a newer Update are discarded and reported as ErrSuperseded.
func (w *Workspace) Update(ctx context.Context, uri string, version int32, text string) (*Document, error) {
	lang := w.Language(uri)
	if lang == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, uri)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if d := w.timeout; d > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, d)
		defer cancelTimeout()
	}

	w.mu.Lock()
	if p := w.inflight[uri]; p != nil {
		p.cancel()
	}
	w.seq++
	seq := w.seq
	w.inflight[uri] = &pending{seq: seq, cancel: cancel}
	w.mu.Unlock()
	if w.testHookStarted != nil {
		w.testHookStarted(uri)
	}

	start := time.Now()
	doc, err := w.parse(ctx, uri, lang, text)
	w.metrics.record(ctx, lang, time.Since(start), err)
	if w.testHookParsed != nil {
		w.testHookParsed(uri)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if p := w.inflight[uri]; p != nil && p.seq == seq {
		delete(w.inflight, uri)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			w.log.Debugf("parse of %s canceled: %s", uri, err)
		}
		return nil, err
	}
	if old := w.docs[uri]; old != nil && old.seq > seq {
		return nil, fmt.Errorf("%w: %s", ErrSuperseded, uri)
	}
	if p := w.inflight[uri]; p != nil && p.seq > seq {
		return nil, fmt.Errorf("%w: %s", ErrSuperseded, uri)
	}
	doc.Version = version
	doc.seq = seq
	w.docs[uri] = doc
	w.log.Debugf("parsed %s (%s, %d runes) in %s", uri, lang, len(doc.Text), time.Since(start))
	return doc, nil
}

func (w *Workspace) parse(ctx context.Context, uri, lang, text string) (*Document, error) {
	doc := &Document{URI: uri, Language: lang}
	switch lang {
	case config.LanguageAsciiDoc:
		parsed, err := adoc.Parse(ctx, text, adoc.WithURI(uri))
		if err != nil {
			return nil, err
		}
		doc.AsciiDoc = parsed
		doc.Text = parsed.Runes()
		doc.a = &asciidocAnalysis{doc: parsed}
	case config.LanguageQute:
		parsed, err := qute.Parse(ctx, text, qute.WithURI(uri), qute.WithInfix(w.cfg.Qute.Infix))
		if err != nil {
			return nil, err
		}
		doc.Qute = parsed
		doc.Text = parsed.Runes()
		doc.a = &quteAnalysis{doc: parsed, resolver: w.resolver}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, lang)
	}
	doc.Mapper = position.NewMapper(doc.Text)
	return doc, nil
}

// Get returns the current document for uri, or nil.
func (w *Workspace) Get(uri string) *Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.docs[uri]
}

// Close forgets uri and cancels a parse of it still running.
func (w *Workspace) Close(uri string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p := w.inflight[uri]; p != nil {
		p.cancel()
		delete(w.inflight, uri)
	}
	delete(w.docs, uri)
}

// URIs lists the open documents.
func (w *Workspace) URIs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	uris := make([]string, 0, len(w.docs))
	for uri := range w.docs {
		uris = append(uris, uri)
	}
	return uris
}

func (w *Workspace) document(uri string) (*Document, error) {
	if doc := w.Get(uri); doc != nil {
		return doc, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
}

type metrics struct {
	meter    metric.Meter
	parses   metric.Int64Counter
	canceled metric.Int64Counter
	duration metric.Float64Histogram
}

func (m *metrics) init() error {
	var err error
	m.parses, err = m.meter.Int64Counter(
		"quill.parse.count",
		metric.WithDescription("Total number of document parses"),
	)
	if err != nil {
		return err
	}
	m.canceled, err = m.meter.Int64Counter(
		"quill.parse.canceled",
		metric.WithDescription("Number of document parses canceled before finishing"),
	)
	if err != nil {
		return err
	}
	m.duration, err = m.meter.Float64Histogram(
		"quill.parse.duration",
		metric.WithDescription("Document parse duration in seconds"),
		metric.WithUnit("s"),
	)
	return err
}

func (m *metrics) record(ctx context.Context, lang string, d time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("language", lang),
		attribute.Bool("success", err == nil),
	)
	// ctx may already be canceled; recording must not depend on it
	ctx = context.WithoutCancel(ctx)
	m.parses.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
	if err != nil {
		m.canceled.Add(ctx, 1, metric.WithAttributes(attribute.String("language", lang)))
	}
}

func uriToPath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return uri
		}
		return filepath.Clean(parsed.Path)
	}
	return uri
}
