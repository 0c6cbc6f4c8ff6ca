package termindex

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/geoprefix/query"
)

var (
	// ErrEmptyID is returned when a document id is empty.
	ErrEmptyID = errors.New("termindex: empty document id")

	// ErrUnknownQuery is returned for query nodes the executor does not understand.
	ErrUnknownQuery = errors.New("termindex: unknown query node")
)

// Stats summarizes the index.
type Stats struct {
	Docs     int    `json:"docs"`
	Terms    int    `json:"terms"`
	Postings uint64 `json:"postings"`
	Bytes    uint64 `json:"bytes"`
}

// Index maps terms to documents. It is safe for concurrent use.
type Index struct {
	mu sync.RWMutex

	ids   map[string]uint32 // external id -> doc number
	names []string          // doc number -> external id, "" once deleted
	live  *roaring.Bitmap

	postings map[string]*roaring.Bitmap
	dict     []string // sorted keys of postings
	docTerms map[uint32][]string
}

// New creates an empty index.
func New() *Index {
	return &Index{
		ids:      make(map[string]uint32),
		live:     roaring.New(),
		postings: make(map[string]*roaring.Bitmap),
		docTerms: make(map[uint32][]string),
	}
}

// Add indexes a document under terms, replacing any previous version of id.
func (ix *Index) Add(id string, terms []string) error {
	if id == "" {
		return ErrEmptyID
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if doc, ok := ix.ids[id]; ok {
		ix.removeLocked(doc)
	}

	doc := uint32(len(ix.names))
	ix.names = append(ix.names, id)
	ix.ids[id] = doc
	ix.live.Add(doc)

	terms = slices.Clone(terms)
	slices.Sort(terms)
	terms = slices.Compact(terms)
	for _, t := range terms {
		ix.postingLocked(t).Add(doc)
	}
	ix.docTerms[doc] = terms
	return nil
}

// Delete removes a document. It reports whether the document existed.
func (ix *Index) Delete(id string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	doc, ok := ix.ids[id]
	if !ok {
		return false
	}
	ix.removeLocked(doc)
	return true
}

func (ix *Index) removeLocked(doc uint32) {
	for _, t := range ix.docTerms[doc] {
		bm, ok := ix.postings[t]
		if !ok {
			continue
		}
		bm.Remove(doc)
		if bm.IsEmpty() {
			delete(ix.postings, t)
			if i, found := slices.BinarySearch(ix.dict, t); found {
				ix.dict = slices.Delete(ix.dict, i, i+1)
			}
		}
	}
	delete(ix.docTerms, doc)
	delete(ix.ids, ix.names[doc])
	ix.names[doc] = ""
	ix.live.Remove(doc)
}

func (ix *Index) postingLocked(term string) *roaring.Bitmap {
	bm, ok := ix.postings[term]
	if !ok {
		bm = roaring.New()
		ix.postings[term] = bm
		i, _ := slices.BinarySearch(ix.dict, term)
		ix.dict = slices.Insert(ix.dict, i, term)
	}
	return bm
}

// Has reports whether id is indexed.
func (ix *Index) Has(id string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.ids[id]
	return ok
}

// Len returns the number of live documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.ids)
}

// DocTerms returns the sorted terms of a document.
func (ix *Index) DocTerms(id string) ([]string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	doc, ok := ix.ids[id]
	if !ok {
		return nil, false
	}
	return slices.Clone(ix.docTerms[doc]), true
}

// IDs iterates over live document ids in insertion order.
func (ix *Index) IDs() iter.Seq[string] {
	ix.mu.RLock()
	ids := make([]string, 0, ix.live.GetCardinality())
	it := ix.live.Iterator()
	for it.HasNext() {
		ids = append(ids, ix.names[it.Next()])
	}
	ix.mu.RUnlock()

	return slices.Values(ids)
}

// TermsWithPrefix returns the dictionary terms starting with prefix.
func (ix *Index) TermsWithPrefix(prefix string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	lo, hi := ix.prefixRangeLocked(prefix)
	return slices.Clone(ix.dict[lo:hi])
}

func (ix *Index) prefixRangeLocked(prefix string) (int, int) {
	lo := sort.SearchStrings(ix.dict, prefix)
	hi := lo
	for hi < len(ix.dict) && strings.HasPrefix(ix.dict[hi], prefix) {
		hi++
	}
	return lo, hi
}

// Stats returns index statistics.
func (ix *Index) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	st := Stats{Docs: len(ix.ids), Terms: len(ix.dict)}
	for _, bm := range ix.postings {
		st.Postings += bm.GetCardinality()
		st.Bytes += bm.GetSizeInBytes()
	}
	return st
}

// Search returns the ids of documents matching q, sorted.
func (ix *Index) Search(q query.Query) ([]string, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	bm, err := ix.evalLocked(q)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, ix.names[it.Next()])
	}
	slices.Sort(out)
	return out, nil
}

// Count returns the number of documents matching q.
func (ix *Index) Count(q query.Query) (int, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	bm, err := ix.evalLocked(q)
	if err != nil {
		return 0, err
	}
	return int(bm.GetCardinality()), nil
}

func (ix *Index) evalLocked(q query.Query) (*roaring.Bitmap, error) {
	switch q := q.(type) {
	case query.Term:
		if bm, ok := ix.postings[q.Term]; ok {
			return bm.Clone(), nil
		}
		return roaring.New(), nil
	case query.Terms:
		bms := make([]*roaring.Bitmap, 0, len(q.Terms))
		for _, t := range q.Terms {
			if bm, ok := ix.postings[t]; ok {
				bms = append(bms, bm)
			}
		}
		return roaring.FastOr(bms...), nil
	case query.Prefix:
		lo, hi := ix.prefixRangeLocked(q.Prefix)
		bms := make([]*roaring.Bitmap, 0, hi-lo)
		for _, t := range ix.dict[lo:hi] {
			bms = append(bms, ix.postings[t])
		}
		return roaring.FastOr(bms...), nil
	case query.Or:
		bms := make([]*roaring.Bitmap, 0, len(q.Clauses))
		for _, c := range q.Clauses {
			bm, err := ix.evalLocked(c)
			if err != nil {
				return nil, err
			}
			bms = append(bms, bm)
		}
		return roaring.FastOr(bms...), nil
	case query.And:
		if len(q.Clauses) == 0 {
			return ix.live.Clone(), nil
		}
		var acc *roaring.Bitmap
		for _, c := range q.Clauses {
			bm, err := ix.evalLocked(c)
			if err != nil {
				return nil, err
			}
			if acc == nil {
				acc = bm
			} else {
				acc.And(bm)
			}
			if acc.IsEmpty() {
				break
			}
		}
		return acc, nil
	case query.AndNot:
		must, err := ix.evalLocked(q.Must)
		if err != nil {
			return nil, err
		}
		if must.IsEmpty() {
			return must, nil
		}
		not, err := ix.evalLocked(q.Not)
		if err != nil {
			return nil, err
		}
		must.AndNot(not)
		return must, nil
	case query.MatchAll:
		return ix.live.Clone(), nil
	case query.MatchNone:
		return roaring.New(), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownQuery, q)
	}
}
