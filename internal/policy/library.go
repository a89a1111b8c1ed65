// Package policy resolves HR policy questions to documents kept in an
// external store and caches their content.
package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bgdnvk/hrassist/internal/agent/model"
)

var ErrNoDocument = errors.New("no policy document")

// DefaultCacheTTL is how long fetched documents are reused.
const DefaultCacheTTL = time.Hour

const defaultTopic = "default"

const fetchTimeout = 30 * time.Second

// Source fetches a document body and a link a user can open.
type Source interface {
	Fetch(ctx context.Context, path string) (content string, link string, err error)
}

// Lister is implemented by sources that can enumerate a directory.
type Lister interface {
	ListDocuments(ctx context.Context, dir string) ([]string, error)
}

// PathStatus reports whether a mapped document exists in the source.
// Checked is false when the source cannot list directories.
type PathStatus struct {
	Topic   string
	Path    string
	Checked bool
	Found   bool
}

var topicRules = []struct {
	topic    string
	keywords []string
}{
	{"leave", []string{"leave", "vacation", "time off"}},
	{"attendance", []string{"attendance", "late", "punch", "check in", "working hours"}},
	{"remote_work", []string{"work from home", "wfh", "remote"}},
	{"travel", []string{"travel", "reimburse", "expense"}},
	{"conduct", []string{"conduct", "harassment", "dress code"}},
	{"exit", []string{"notice period", "resign", "resignation", "exit"}},
}

// DefaultPaths maps topics to document paths inside the policy store.
func DefaultPaths() map[string]string {
	return map[string]string{
		"leave":       "policies/leave-policy.md",
		"attendance":  "policies/attendance-policy.md",
		"remote_work": "policies/remote-work-policy.md",
		"travel":      "policies/travel-reimbursement-policy.md",
		"conduct":     "policies/code-of-conduct.md",
		"exit":        "policies/separation-policy.md",
		defaultTopic:  "policies/employee-handbook.md",
	}
}

type cached struct {
	doc       model.PolicyDocument
	fetchedAt time.Time
}

// Library maps a question to a policy document and caches fetched content.
// Concurrent misses for the same path share one fetch.
type Library struct {
	source Source
	paths  map[string]string
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu    sync.RWMutex
	cache map[string]cached
	group singleflight.Group
}

func NewLibrary(source Source, paths map[string]string, ttl time.Duration, logger *slog.Logger) *Library {
	merged := DefaultPaths()
	for topic, p := range paths {
		merged[topic] = p
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{
		source: source,
		paths:  merged,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		cache:  make(map[string]cached),
	}
}

// Topic picks the policy topic for a subtype or, failing that, the question text.
func (l *Library) Topic(subtype, question string) string {
	if _, ok := l.paths[subtype]; ok && subtype != "" {
		return subtype
	}
	q := strings.ToLower(question)
	for _, rule := range topicRules {
		for _, kw := range rule.keywords {
			if strings.Contains(q, kw) {
				return rule.topic
			}
		}
	}
	return defaultTopic
}

// Lookup returns the document for the question's topic.
func (l *Library) Lookup(ctx context.Context, subtype, question string) (model.PolicyDocument, error) {
	topic := l.Topic(subtype, question)
	docPath, ok := l.paths[topic]
	if !ok || docPath == "" {
		return model.PolicyDocument{}, fmt.Errorf("%w for topic %s", ErrNoDocument, topic)
	}

	if doc, ok := l.cached(docPath); ok {
		doc.Topic = topic
		return doc, nil
	}

	// The fetch is shared by every waiter, so it is detached from the
	// cancellation of the caller that started it.
	v, err, _ := l.group.Do(docPath, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		content, link, err := l.source.Fetch(fetchCtx, docPath)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(content) == "" {
			return nil, fmt.Errorf("%w: %s is empty", ErrNoDocument, docPath)
		}
		doc := model.PolicyDocument{
			Path:    docPath,
			Title:   titleFromPath(docPath),
			Content: content,
			Link:    link,
		}
		l.mu.Lock()
		l.cache[docPath] = cached{doc: doc, fetchedAt: l.now()}
		l.mu.Unlock()
		l.logger.Debug("policy document fetched", "path", docPath, "bytes", len(content))
		return doc, nil
	})
	if err != nil {
		return model.PolicyDocument{}, fmt.Errorf("fetch policy %s: %w", docPath, err)
	}

	doc := v.(model.PolicyDocument)
	doc.Topic = topic
	return doc, nil
}

// Check lists every mapped topic in order and, when the source supports it,
// whether its document is present. Each directory is listed once.
func (l *Library) Check(ctx context.Context) ([]PathStatus, error) {
	topics := make([]string, 0, len(l.paths))
	for topic := range l.paths {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	lister, canList := l.source.(Lister)
	listed := make(map[string]map[string]bool)

	statuses := make([]PathStatus, 0, len(topics))
	for _, topic := range topics {
		st := PathStatus{Topic: topic, Path: l.paths[topic]}
		if canList && st.Path != "" {
			dir := path.Dir(st.Path)
			files, ok := listed[dir]
			if !ok {
				names, err := lister.ListDocuments(ctx, dir)
				if err != nil {
					return nil, fmt.Errorf("list %s: %w", dir, err)
				}
				files = make(map[string]bool, len(names))
				for _, name := range names {
					files[name] = true
				}
				listed[dir] = files
			}
			st.Checked = true
			st.Found = files[st.Path]
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

func (l *Library) cached(docPath string) (model.PolicyDocument, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.cache[docPath]
	if !ok || l.now().Sub(entry.fetchedAt) >= l.ttl {
		return model.PolicyDocument{}, false
	}
	return entry.doc, true
}

func titleFromPath(p string) string {
	base := strings.TrimSuffix(path.Base(p), path.Ext(p))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return cases.Title(language.English).String(base)
}
