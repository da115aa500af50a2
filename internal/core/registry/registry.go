package registry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

// Registry owns cases, hearings and documents in memory. All reads return copies.
type Registry struct {
	mu sync.RWMutex

	docs     map[string]*domain.Document
	docOrder []string

	cases      map[string]*domain.Case
	caseOrder  []string
	caseByNumb map[string]string

	hearings     map[string]*domain.Hearing
	hearingOrder []string

	hookMu   sync.RWMutex
	onChange func()

	newID func() string
}

func New() *Registry {
	return &Registry{
		docs:       make(map[string]*domain.Document),
		cases:      make(map[string]*domain.Case),
		caseByNumb: make(map[string]string),
		hearings:   make(map[string]*domain.Hearing),
		newID:      uuid.NewString,
	}
}

// SetOnChange installs the hook fired after every mutation of the document collection.
// The hook runs without registry locks held.
func (r *Registry) SetOnChange(fn func()) {
	r.hookMu.Lock()
	r.onChange = fn
	r.hookMu.Unlock()
}

func (r *Registry) notify() {
	r.hookMu.RLock()
	fn := r.onChange
	r.hookMu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (r *Registry) AddDocument(doc domain.Document) (domain.Document, error) {
	if doc.ID == "" {
		doc.ID = r.newID()
	}
	if doc.Status == "" {
		doc.Status = domain.StatusPending
	}

	r.mu.Lock()
	if _, exists := r.docs[doc.ID]; exists {
		r.mu.Unlock()
		return domain.Document{}, domain.WrapError(domain.ErrConflict, "add document", fmt.Errorf("document %s already exists", doc.ID))
	}
	stored := cloneDocument(doc)
	r.docs[doc.ID] = &stored
	r.docOrder = append(r.docOrder, doc.ID)
	r.mu.Unlock()

	r.notify()
	return cloneDocument(stored), nil
}

func (r *Registry) GetDocument(id string) (domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[id]
	if !ok {
		return domain.Document{}, domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New(id))
	}
	return cloneDocument(*doc), nil
}

// ListDocuments returns documents in insertion order, filtered by case when caseID is set.
func (r *Registry) ListDocuments(caseID string) []domain.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Document, 0, len(r.docOrder))
	for _, id := range r.docOrder {
		doc := r.docs[id]
		if caseID != "" && doc.CaseID != caseID {
			continue
		}
		out = append(out, cloneDocument(*doc))
	}
	return out
}

// UpdateDocument applies fn to a copy of the document and stores the result when fn succeeds.
func (r *Registry) UpdateDocument(id string, fn func(*domain.Document) error) (domain.Document, error) {
	r.mu.Lock()
	current, ok := r.docs[id]
	if !ok {
		r.mu.Unlock()
		return domain.Document{}, domain.WrapError(domain.ErrDocumentNotFound, "update document", errors.New(id))
	}
	next := cloneDocument(*current)
	if err := fn(&next); err != nil {
		r.mu.Unlock()
		return domain.Document{}, err
	}
	next.ID = id
	r.docs[id] = &next
	r.mu.Unlock()

	r.notify()
	return cloneDocument(next), nil
}

func (r *Registry) DeleteDocument(id string) (domain.Document, error) {
	r.mu.Lock()
	doc, ok := r.docs[id]
	if !ok {
		r.mu.Unlock()
		return domain.Document{}, domain.WrapError(domain.ErrDocumentNotFound, "delete document", errors.New(id))
	}
	delete(r.docs, id)
	for i, candidate := range r.docOrder {
		if candidate == id {
			r.docOrder = append(r.docOrder[:i], r.docOrder[i+1:]...)
			break
		}
	}
	removed := cloneDocument(*doc)
	r.mu.Unlock()

	r.notify()
	return removed, nil
}

// FirstPending returns the earliest inserted document still waiting for the pipeline.
func (r *Registry) FirstPending() (domain.Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.docOrder {
		if doc := r.docs[id]; doc.Status == domain.StatusPending {
			return cloneDocument(*doc), true
		}
	}
	return domain.Document{}, false
}

func (r *Registry) Stats() domain.ProcessingStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := domain.ProcessingStats{Total: len(r.docOrder)}
	for _, id := range r.docOrder {
		switch status := r.docs[id].Status; {
		case status == domain.StatusPending:
			stats.Pending++
		case status.InFlight():
			stats.InFlight++
		case status == domain.StatusCompleted:
			stats.Processed++
		case status == domain.StatusFailed:
			stats.Failed++
		}
	}
	return stats
}

func (r *Registry) CreateCase(c domain.Case) (domain.Case, error) {
	c.CaseNumber = domain.NormalizeCaseNumber(c.CaseNumber)
	if err := c.Validate(); err != nil {
		return domain.Case{}, err
	}
	if c.ID == "" {
		c.ID = r.newID()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cases[c.ID]; exists {
		return domain.Case{}, domain.WrapError(domain.ErrConflict, "create case", fmt.Errorf("case id %s already exists", c.ID))
	}
	if owner, exists := r.caseByNumb[c.CaseNumber]; exists {
		return domain.Case{}, domain.WrapError(domain.ErrConflict, "create case", fmt.Errorf("case number %q already registered as %s", c.CaseNumber, owner))
	}
	r.insertCaseLocked(c)
	return cloneCase(c), nil
}

// UpdateCase replaces the editable fields of a case by identity.
func (r *Registry) UpdateCase(id string, c domain.Case) (domain.Case, error) {
	c.ID = id
	c.CaseNumber = domain.NormalizeCaseNumber(c.CaseNumber)
	if err := c.Validate(); err != nil {
		return domain.Case{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.cases[id]
	if !ok {
		return domain.Case{}, domain.WrapError(domain.ErrCaseNotFound, "update case", errors.New(id))
	}
	if owner, exists := r.caseByNumb[c.CaseNumber]; exists && owner != id {
		return domain.Case{}, domain.WrapError(domain.ErrConflict, "update case", fmt.Errorf("case number %q already registered as %s", c.CaseNumber, owner))
	}
	if c.ECourts == nil {
		c.ECourts = current.ECourts
	}
	if c.LastSyncedAt == nil {
		c.LastSyncedAt = current.LastSyncedAt
	}

	delete(r.caseByNumb, current.CaseNumber)
	stored := cloneCase(c)
	r.cases[id] = &stored
	r.caseByNumb[stored.CaseNumber] = id
	return cloneCase(stored), nil
}

func (r *Registry) GetCase(id string) (domain.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cases[id]
	if !ok {
		return domain.Case{}, domain.WrapError(domain.ErrCaseNotFound, "get case", errors.New(id))
	}
	return cloneCase(*c), nil
}

func (r *Registry) FindCaseByNumber(caseNumber string) (domain.Case, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.caseByNumb[domain.NormalizeCaseNumber(caseNumber)]
	if !ok {
		return domain.Case{}, false
	}
	return cloneCase(*r.cases[id]), true
}

func (r *Registry) ListCases() []domain.Case {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Case, 0, len(r.caseOrder))
	for _, id := range r.caseOrder {
		out = append(out, cloneCase(*r.cases[id]))
	}
	return out
}

// EnsureCase finds the case registered under caseNumber or creates it with build in the same
// critical section. The boolean reports whether a new case was created.
func (r *Registry) EnsureCase(caseNumber string, build func(id string) domain.Case) (domain.Case, bool, error) {
	number := domain.NormalizeCaseNumber(caseNumber)
	if number == "" {
		return domain.Case{}, false, domain.WrapError(domain.ErrInvalidInput, "ensure case", errors.New("case number is empty"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.caseByNumb[number]; ok {
		return cloneCase(*r.cases[id]), false, nil
	}

	c := build(r.newID())
	c.CaseNumber = number
	if c.ID == "" {
		c.ID = r.newID()
	}
	if err := c.Validate(); err != nil {
		return domain.Case{}, false, err
	}
	if _, exists := r.cases[c.ID]; exists {
		return domain.Case{}, false, domain.WrapError(domain.ErrConflict, "ensure case", fmt.Errorf("case id %s already exists", c.ID))
	}
	r.insertCaseLocked(c)
	return cloneCase(c), true, nil
}

// MergeCaseSync applies a confirmed remote sync and always refreshes the sync timestamp.
func (r *Registry) MergeCaseSync(id string, patch domain.CaseSyncPatch, now time.Time) (domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.cases[id]
	if !ok {
		return domain.Case{}, domain.WrapError(domain.ErrCaseNotFound, "merge case sync", errors.New(id))
	}
	next := cloneCase(*current)
	next.ApplySync(patch, now)
	r.cases[id] = &next
	return cloneCase(next), nil
}

// AdvanceHearingDate moves the next hearing date forward, never backward.
func (r *Registry) AdvanceHearingDate(id, hearingDate string) (domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.cases[id]
	if !ok {
		return domain.Case{}, domain.WrapError(domain.ErrCaseNotFound, "advance hearing date", errors.New(id))
	}
	if hearingDate > current.NextHearingDate {
		current.NextHearingDate = hearingDate
	}
	return cloneCase(*current), nil
}

// AddHearings appends hearings after checking every case reference. Either all are added or none.
func (r *Registry) AddHearings(hearings []domain.Hearing) ([]domain.Hearing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, h := range hearings {
		if _, ok := r.cases[h.CaseID]; !ok {
			return nil, domain.WrapError(domain.ErrCaseNotFound, "add hearings", errors.New(h.CaseID))
		}
		if _, err := time.Parse(domain.HearingDateLayout, h.HearingDate); err != nil {
			return nil, domain.WrapError(domain.ErrInvalidInput, "add hearings", err)
		}
	}

	out := make([]domain.Hearing, 0, len(hearings))
	for _, h := range hearings {
		if h.ID == "" || r.hearings[h.ID] != nil {
			h.ID = r.newID()
		}
		stored := h
		r.hearings[h.ID] = &stored
		r.hearingOrder = append(r.hearingOrder, h.ID)
		out = append(out, h)
	}
	return out, nil
}

func (r *Registry) GetHearing(id string) (domain.Hearing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.hearings[id]
	if !ok {
		return domain.Hearing{}, domain.WrapError(domain.ErrHearingNotFound, "get hearing", errors.New(id))
	}
	return *h, nil
}

func (r *Registry) ListHearings(caseID string) []domain.Hearing {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Hearing, 0)
	for _, id := range r.hearingOrder {
		h := r.hearings[id]
		if caseID != "" && h.CaseID != caseID {
			continue
		}
		out = append(out, *h)
	}
	return out
}

func (r *Registry) Snapshot(now time.Time) domain.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := domain.Snapshot{
		Timestamp: now.UTC(),
		Cases:     make([]domain.Case, 0, len(r.caseOrder)),
		Hearings:  make([]domain.Hearing, 0, len(r.hearingOrder)),
		Documents: make([]domain.Document, 0, len(r.docOrder)),
	}
	for _, id := range r.caseOrder {
		snap.Cases = append(snap.Cases, cloneCase(*r.cases[id]))
	}
	for _, id := range r.hearingOrder {
		snap.Hearings = append(snap.Hearings, *r.hearings[id])
	}
	for _, id := range r.docOrder {
		snap.Documents = append(snap.Documents, cloneDocument(*r.docs[id]))
	}
	return snap
}

// Restore replaces all three collections. Documents captured mid-pipeline come back as PENDING.
func (r *Registry) Restore(snap domain.Snapshot) error {
	cases := make(map[string]*domain.Case, len(snap.Cases))
	caseOrder := make([]string, 0, len(snap.Cases))
	byNumber := make(map[string]string, len(snap.Cases))
	for _, c := range snap.Cases {
		c.CaseNumber = domain.NormalizeCaseNumber(c.CaseNumber)
		if c.ID == "" {
			return domain.WrapError(domain.ErrInvalidInput, "restore snapshot", errors.New("case without id"))
		}
		if _, dup := cases[c.ID]; dup {
			return domain.WrapError(domain.ErrInvalidInput, "restore snapshot", fmt.Errorf("duplicate case id %s", c.ID))
		}
		if owner, dup := byNumber[c.CaseNumber]; dup {
			return domain.WrapError(domain.ErrInvalidInput, "restore snapshot", fmt.Errorf("case number %q shared by %s and %s", c.CaseNumber, owner, c.ID))
		}
		stored := cloneCase(c)
		cases[c.ID] = &stored
		caseOrder = append(caseOrder, c.ID)
		byNumber[c.CaseNumber] = c.ID
	}

	hearings := make(map[string]*domain.Hearing, len(snap.Hearings))
	hearingOrder := make([]string, 0, len(snap.Hearings))
	for _, h := range snap.Hearings {
		if _, ok := cases[h.CaseID]; !ok {
			return domain.WrapError(domain.ErrInvalidInput, "restore snapshot", fmt.Errorf("hearing %s references unknown case %s", h.ID, h.CaseID))
		}
		if _, dup := hearings[h.ID]; dup || h.ID == "" {
			return domain.WrapError(domain.ErrInvalidInput, "restore snapshot", fmt.Errorf("invalid hearing id %q", h.ID))
		}
		stored := h
		hearings[h.ID] = &stored
		hearingOrder = append(hearingOrder, h.ID)
	}

	docs := make(map[string]*domain.Document, len(snap.Documents))
	docOrder := make([]string, 0, len(snap.Documents))
	for _, d := range snap.Documents {
		if _, dup := docs[d.ID]; dup || d.ID == "" {
			return domain.WrapError(domain.ErrInvalidInput, "restore snapshot", fmt.Errorf("invalid document id %q", d.ID))
		}
		if d.Status.InFlight() || d.Status == "" {
			d.Status = domain.StatusPending
		}
		if d.CaseID != "" {
			if _, ok := cases[d.CaseID]; !ok {
				d.CaseID = ""
			}
		}
		stored := cloneDocument(d)
		docs[d.ID] = &stored
		docOrder = append(docOrder, d.ID)
	}

	r.mu.Lock()
	r.cases, r.caseOrder, r.caseByNumb = cases, caseOrder, byNumber
	r.hearings, r.hearingOrder = hearings, hearingOrder
	r.docs, r.docOrder = docs, docOrder
	r.mu.Unlock()

	r.notify()
	return nil
}

func (r *Registry) insertCaseLocked(c domain.Case) {
	stored := cloneCase(c)
	r.cases[c.ID] = &stored
	r.caseOrder = append(r.caseOrder, c.ID)
	r.caseByNumb[c.CaseNumber] = c.ID
}

func cloneDocument(d domain.Document) domain.Document {
	if d.Metadata != nil {
		md := *d.Metadata
		d.Metadata = &md
	}
	return d
}

func cloneCase(c domain.Case) domain.Case {
	if c.ECourts != nil {
		ec := *c.ECourts
		ec.Orders = append([]domain.CaseOrder(nil), c.ECourts.Orders...)
		c.ECourts = &ec
	}
	if c.LastSyncedAt != nil {
		ts := *c.LastSyncedAt
		c.LastSyncedAt = &ts
	}
	return c
}
