// Package keyindex implements the Key Index & Document Cache: the
// (key-name, document) -> (use-value -> node-list) index xsl:key/key()
// draws on, and the process-wide document cache document()/doc() draws
// on. Both caches are lazily populated, concurrent-safe, and immutable
// once a given entry is written — a concurrent transformation never
// rebuilds work another goroutine already did, and never observes a
// partially-built entry.
package keyindex

import (
	"sync"

	"github.com/google/uuid"

	"github.com/CognitoIQ/xslt-runtime/internal/ordered"
	"github.com/CognitoIQ/xslt-runtime/xpath/node"
	"github.com/CognitoIQ/xslt-runtime/xpath/value"
	"github.com/CognitoIQ/xslt-runtime/xpath/xerr"
	"github.com/CognitoIQ/xslt-runtime/xslt/context"
)

// Matcher reports whether n is selected by a key's `match` pattern. The
// stylesheet compiler is responsible for turning a pattern string into
// one of these; this package only ever walks a tree testing candidates
// against it.
type Matcher func(n node.Node) bool

// UseFunc evaluates a key's `use` expression with the given candidate
// node as the context item, current node, and focus — returning the
// sequence of values that candidate indexes under.
type UseFunc func(ctx *context.Context, candidate node.Node) (value.Sequence, error)

// Declaration is one compiled xsl:key declaration: all xsl:key elements
// sharing a name contribute independent (match, use) pairs to the same
// logical key, so Declaration is a slice of clauses.
type Declaration struct {
	Name    string
	Clauses []Clause
}

// Clause is one (match, use) pair of an xsl:key declaration.
type Clause struct {
	Match Matcher
	Use   UseFunc
}

// keyOf derives the lookup string for a use-value: key() compares by
// string-value equality (atomized, then fn:string), so the index is
// keyed on the string form.
func keyOf(it value.Item) string {
	return value.StringValueOf(it)
}

// docIndex is the built key index for one document: keyName -> useValue
// -> node set, built once and never mutated again.
type docIndex struct {
	once sync.Once
	byKey map[string]map[string]node.Set
	err   error
}

// Index is the process-wide key index, keyed by document root identity.
// Index is safe for concurrent use: distinct documents build
// concurrently without contention, and a given document's index is
// built exactly once even if two goroutines race to request it first.
type Index struct {
	mu    sync.Mutex
	byDoc map[node.Node]*docIndex
}

// NewIndex builds an empty, ready-to-use Index.
func NewIndex() *Index {
	return &Index{byDoc: make(map[node.Node]*docIndex)}
}

func (ix *Index) entryFor(root node.Node) *docIndex {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	e, ok := ix.byDoc[root]
	if !ok {
		e = &docIndex{}
		ix.byDoc[root] = e
	}
	return e
}

// Lookup returns the node-set a key-name/use-value pair indexes, for
// root's document. ctx is used as the template for evaluating each
// clause's `use` expression against the candidate nodes encountered
// while walking the document; cycle detection (a key's use expression
// transitively calling key() on the same name) is the caller's
// responsibility via xslt/context.PushKeyInProgress before calling
// Lookup, raising XTDE0640 if it returns an error.
func (ix *Index) Lookup(ctx *context.Context, decl Declaration, root node.Node, useValue string) (node.Set, error) {
	e := ix.entryFor(root)
	e.once.Do(func() {
		e.byKey, e.err = build(ctx, decl, root)
	})
	if e.err != nil {
		return nil, e.err
	}
	return e.byKey[decl.Name][useValue], nil
}

// build walks every element and attribute in root's document once,
// testing each against every clause's match pattern, and files it under
// every value its use expression produces.
func build(ctx *context.Context, decl Declaration, root node.Node) (map[string]map[string]node.Set, error) {
	result := map[string]map[string]node.Set{decl.Name: {}}
	byValue := result[decl.Name]

	var walkErr error
	var walk func(n node.Node)
	walk = func(n node.Node) {
		if walkErr != nil {
			return
		}
		switch n.Kind() {
		case node.Element, node.Attribute:
			for _, cl := range decl.Clauses {
				if !cl.Match(n) {
					continue
				}
				values, err := cl.Use(ctx, n)
				if err != nil {
					walkErr = err
					return
				}
				for _, v := range values {
					atomic, ok := v.(value.Atomic)
					if !ok {
						continue
					}
					k := keyOf(atomic)
					byValue[k] = append(byValue[k], n)
				}
			}
		}
		if n.Kind() == node.Element {
			it := n.Axis(node.AttributeAxis)
			for it.Next() {
				walk(it.Node())
			}
		}
		if n.Kind() == node.Element || n.Kind() == node.Document {
			children := n.Axis(node.Child)
			for children.Next() {
				walk(children.Node())
			}
		}
	}
	walk(root)
	if walkErr != nil {
		return nil, walkErr
	}
	for k, set := range byValue {
		byValue[k] = node.Dedup(set)
	}
	return result, nil
}

// DocumentLoader is the host collaborator that retrieves and parses a
// document by absolute URI — the external "Document loader" interface.
type DocumentLoader interface {
	Load(uri, baseURI string, stripSpace, preserveSpace func(node.Node) bool) (node.Node, error)
}

// docCacheEntry is one resolved-URI cache slot, built at most once. slotID
// is a synthetic identifier distinct from the URI key itself: it has no
// bearing on document identity or generate-id() (which stays node-
// derived), but gives diagnostics and cache-invalidation callers a stable
// handle that survives a slot being keyed under more than one alias URI.
type docCacheEntry struct {
	once   sync.Once
	slotID string
	doc    node.Node
	err    error
}

// DocumentCache is the process-wide document cache keyed by absolute
// URI, populated lazily and never evicted or re-fetched for the
// lifetime of the process: two transformations loading the same URI
// share one parse.
type DocumentCache struct {
	mu      sync.Mutex
	loader  DocumentLoader
	entries map[string]*docCacheEntry
}

// NewDocumentCache builds an empty cache backed by loader.
func NewDocumentCache(loader DocumentLoader) *DocumentCache {
	return &DocumentCache{loader: loader, entries: make(map[string]*docCacheEntry)}
}

func (dc *DocumentCache) entryFor(absURI string) *docCacheEntry {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	e, ok := dc.entries[absURI]
	if !ok {
		e = &docCacheEntry{slotID: uuid.NewString()}
		dc.entries[absURI] = e
	}
	return e
}

// SlotID returns the synthetic cache-slot identifier for absURI, creating
// the slot if it does not exist yet. It never blocks on the slot's
// document actually loading.
func (dc *DocumentCache) SlotID(absURI string) string {
	return dc.entryFor(absURI).slotID
}

// Doc implements fn:doc()'s retrieval semantics: failure to retrieve or
// parse the resource is always a dynamic error (FODC0002), never
// swallowed — that is doc-available()'s job, not doc()'s.
func (dc *DocumentCache) Doc(absURI, baseURI string, stripSpace, preserveSpace func(node.Node) bool) (node.Node, error) {
	e := dc.entryFor(absURI)
	e.once.Do(func() {
		if dc.loader == nil {
			e.err = xerr.New(xerr.FODC0002, "no document loader to retrieve %q", absURI)
			return
		}
		e.doc, e.err = dc.loader.Load(absURI, baseURI, stripSpace, preserveSpace)
		if e.err == nil && e.doc == nil {
			e.err = xerr.New(xerr.FODC0002, "document %q not found", absURI)
		}
	})
	return e.doc, e.err
}

// DocAvailable implements fn:doc-available(): any retrieval or parse
// failure is swallowed to false rather than propagated.
func (dc *DocumentCache) DocAvailable(absURI, baseURI string, stripSpace, preserveSpace func(node.Node) bool) bool {
	_, err := dc.Doc(absURI, baseURI, stripSpace, preserveSpace)
	return err == nil
}

// KeysForDocument returns the key names currently indexed for root, in
// a stable order — a diagnostic/introspection helper, not used by
// key()/doc() themselves.
func (ix *Index) KeysForDocument(root node.Node) []string {
	ix.mu.Lock()
	e, ok := ix.byDoc[root]
	ix.mu.Unlock()
	if !ok {
		return nil
	}
	names := make([]string, 0, len(e.byKey))
	ordered.RangeStrings(e.byKey, func(k string) { names = append(names, k) })
	return names
}
