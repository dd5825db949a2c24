// Package store holds the application state: every entity collection plus
// the layout configuration, behind named transition functions (one per
// lifecycle operation). Mutations are functional (the next collection is
// computed and the reference replaced whole) and a mutex preserves the
// single-logical-writer model when the HTTP surface is attached.
package store

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/assetdesk/assetdesk/internal/event"
	"github.com/assetdesk/assetdesk/internal/layout"
	"github.com/assetdesk/assetdesk/internal/lifecycle"
	"github.com/assetdesk/assetdesk/internal/types"
)

// ErrNotFound is returned by transitions that name a missing record.
var ErrNotFound = errors.New("store: not found")

// Publisher receives domain events after a transition commits. Nil is
// allowed; events are then dropped.
type Publisher func(evt event.DomainEvent)

// Store is the application state tree.
type Store struct {
	mu     sync.RWMutex
	engine *lifecycle.Engine

	users    []types.User
	families []types.AssetFamily
	assets   []types.Asset
	requests []types.Request
	tasks    []types.Task
	vendors  []types.Vendor
	layouts  layout.Config

	publish Publisher
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithPublisher attaches an event sink.
func WithPublisher(p Publisher) Option {
	return func(s *Store) { s.publish = p }
}

// WithClock overrides the transition timestamp source. Tests use this to
// pin time.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty store with the default layout configuration.
func New(engine *lifecycle.Engine, opts ...Option) *Store {
	s := &Store{
		engine:  engine,
		layouts: layout.Default(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) emit(evt event.DomainEvent) {
	if s.publish != nil {
		s.publish(evt)
	}
}

// Load replaces every collection wholesale. Used by the startup data load;
// slices the loader could not fetch arrive empty and stay empty.
func (s *Store) Load(users []types.User, families []types.AssetFamily, assets []types.Asset, requests []types.Request, vendors []types.Vendor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = users
	s.families = families
	s.assets = assets
	s.requests = requests
	s.vendors = vendors
}

// ── Read surface ─────────────────────────────────────────────────────────────

// Users returns a copy of the user collection.
func (s *Store) Users() []types.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.User(nil), s.users...)
}

// Families returns a copy of the family collection.
func (s *Store) Families() []types.AssetFamily {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.AssetFamily(nil), s.families...)
}

// Assets returns a copy of the asset collection.
func (s *Store) Assets() []types.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Asset(nil), s.assets...)
}

// Requests returns a copy of the request collection.
func (s *Store) Requests() []types.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Request(nil), s.requests...)
}

// Tasks returns a copy of the task collection.
func (s *Store) Tasks() []types.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Task(nil), s.tasks...)
}

// Vendors returns a copy of the vendor collection.
func (s *Store) Vendors() []types.Vendor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Vendor(nil), s.vendors...)
}

// FindUser looks a user up by id.
func (s *Store) FindUser(id string) (types.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return types.User{}, false
}

// FindFamily looks a family up by id.
func (s *Store) FindFamily(id string) (types.AssetFamily, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findFamilyLocked(id)
}

func (s *Store) findFamilyLocked(id string) (types.AssetFamily, bool) {
	for _, f := range s.families {
		if f.ID() == id {
			return f, true
		}
	}
	return types.AssetFamily{}, false
}

// FindAsset looks an asset up by its business identifier.
func (s *Store) FindAsset(id string) (types.Asset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.assets {
		if a.ID == id {
			return a, true
		}
	}
	return types.Asset{}, false
}

// FindRequest looks a request up by id.
func (s *Store) FindRequest(id string) (types.Request, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.requests {
		if r.ID == id {
			return r, true
		}
	}
	return types.Request{}, false
}

// FindTask looks a task up by id.
func (s *Store) FindTask(id string) (types.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return types.Task{}, false
}

// Admins returns the admin-role users, in collection order. The first entry
// is the default task assignee.
func (s *Store) Admins() []types.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.User
	for _, u := range s.users {
		if u.Role == types.RoleAdmin {
			out = append(out, u)
		}
	}
	return out
}

// ── Transitions ──────────────────────────────────────────────────────────────

// SaveFamily creates or updates a family. A family without an id receives
// one; updates match on id and replace in place.
func (s *Store) SaveFamily(f types.AssetFamily) (types.AssetFamily, error) {
	core := f.Core()
	if core == nil {
		return types.AssetFamily{}, fmt.Errorf("store: family has no variant set")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	created := core.ID == ""
	if created {
		core.ID = uuid.New().String()
		core.CreatedAt = now
	}
	core.UpdatedAt = now

	next := make([]types.AssetFamily, 0, len(s.families)+1)
	replaced := false
	for _, existing := range s.families {
		if existing.ID() == core.ID {
			next = append(next, f)
			replaced = true
		} else {
			next = append(next, existing)
		}
	}
	if !replaced {
		next = append(next, f)
	}
	s.families = next
	s.emit(event.NewFamilySaved(f, created))
	return f, nil
}

// SaveAsset runs the lifecycle save for a form draft: create when no asset
// with the draft's id exists, edit otherwise. History derivation and
// identifier generation happen inside the lifecycle engine.
func (s *Store) SaveAsset(draft types.Asset) (types.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	family, ok := s.findFamilyLocked(draft.FamilyID)
	if !ok {
		return types.Asset{}, fmt.Errorf("%w: family %s", ErrNotFound, draft.FamilyID)
	}

	var prev *types.Asset
	for i := range s.assets {
		if s.assets[i].ID == draft.ID && draft.ID != "" {
			prev = &s.assets[i]
			break
		}
	}

	name := lifecycle.UserIndex(s.users)
	saved, err := s.engine.SaveAsset(prev, draft, &family, s.assets, name, s.now())
	if err != nil {
		return types.Asset{}, err
	}

	next := make([]types.Asset, 0, len(s.assets)+1)
	replaced := false
	for _, a := range s.assets {
		if a.ID == saved.ID {
			next = append(next, saved)
			replaced = true
		} else {
			next = append(next, a)
		}
	}
	if !replaced {
		next = append(next, saved)
	}
	s.assets = next

	if prev == nil {
		s.emit(event.NewAssetCreated(saved))
	} else {
		s.emit(event.NewAssetUpdated(saved, len(saved.AssignmentHistory)-len(prev.AssignmentHistory)))
	}
	return saved, nil
}

// BulkCreateAssets generates quantity units under a family with shared
// common fields. IDs continue from the current per-family count.
func (s *Store) BulkCreateAssets(familyID, variantName string, quantity int, common lifecycle.CommonFields) ([]types.Asset, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("store: quantity must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	family, ok := s.findFamilyLocked(familyID)
	if !ok {
		return nil, fmt.Errorf("%w: family %s", ErrNotFound, familyID)
	}
	created, err := s.engine.BulkCreate(&family, variantName, quantity, common, s.assets, s.now())
	if err != nil {
		return nil, err
	}
	s.assets = append(append([]types.Asset(nil), s.assets...), created...)
	s.emit(event.NewAssetsBulkCreated(familyID, variantName, created))
	return created, nil
}

// SaveUser creates or updates a user record.
func (s *Store) SaveUser(u types.User) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	created := u.ID == ""
	if created {
		u.ID = uuid.New().String()
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.Role == "" {
		u.Role = types.RoleUser
	}

	next := make([]types.User, 0, len(s.users)+1)
	replaced := false
	for _, existing := range s.users {
		if existing.ID == u.ID {
			next = append(next, u)
			replaced = true
		} else {
			next = append(next, existing)
		}
	}
	if !replaced {
		next = append(next, u)
	}
	s.users = next
	s.emit(event.NewUserSaved(u, created))
	return u, nil
}

// SubmitRequest creates a pending request for a family on behalf of a user.
// An unresolvable family or user aborts the operation with a diagnostic and
// no state change.
func (s *Store) SubmitRequest(familyID, userID, notes string) (types.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var familyPtr *types.AssetFamily
	if f, ok := s.findFamilyLocked(familyID); ok {
		familyPtr = &f
	}
	var userPtr *types.User
	for _, u := range s.users {
		if u.ID == userID {
			userPtr = &u
			break
		}
	}

	req, err := lifecycle.SubmitRequest(familyPtr, userPtr, notes, s.now())
	if err != nil {
		log.Printf("store: request submission aborted: family=%s user=%s: %v", familyID, userID, err)
		return types.Request{}, err
	}
	s.requests = append(append([]types.Request(nil), s.requests...), req)
	s.emit(event.NewRequestSubmitted(req))
	return req, nil
}

// DefaultTaskForm pre-populates the approval dialog from the current admin
// set.
func (s *Store) DefaultTaskForm() lifecycle.TaskForm {
	return lifecycle.DefaultTaskForm(s.Admins(), s.now())
}

// ApproveRequest completes an approval: task created, request In Progress
// with the task linked, both in one transition.
func (s *Store) ApproveRequest(requestID string, form lifecycle.TaskForm) (types.Request, types.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, r := range s.requests {
		if r.ID == requestID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return types.Request{}, types.Task{}, fmt.Errorf("%w: request %s", ErrNotFound, requestID)
	}

	var admins []types.User
	for _, u := range s.users {
		if u.Role == types.RoleAdmin {
			admins = append(admins, u)
		}
	}

	req, task, err := lifecycle.ApproveRequest(s.requests[idx], form, admins, s.now())
	if err != nil {
		return types.Request{}, types.Task{}, err
	}

	next := append([]types.Request(nil), s.requests...)
	next[idx] = req
	s.requests = next
	s.tasks = append(append([]types.Task(nil), s.tasks...), task)
	s.emit(event.NewTaskCreated(task, req))
	return req, task, nil
}

// RejectRequest is the direct Pending → Rejected mutation.
func (s *Store) RejectRequest(requestID string) (types.Request, error) {
	return s.transitionRequest(requestID, lifecycle.RejectRequest, event.NewRequestRejected)
}

// FulfillRequest moves an in-progress request to Fulfilled.
func (s *Store) FulfillRequest(requestID string) (types.Request, error) {
	return s.transitionRequest(requestID, lifecycle.FulfillRequest, event.NewRequestFulfilled)
}

func (s *Store) transitionRequest(requestID string, apply func(types.Request) (types.Request, error), evt func(types.Request) event.DomainEvent) (types.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.requests {
		if r.ID != requestID {
			continue
		}
		updated, err := apply(r)
		if err != nil {
			return types.Request{}, err
		}
		next := append([]types.Request(nil), s.requests...)
		next[i] = updated
		s.requests = next
		s.emit(evt(updated))
		return updated, nil
	}
	return types.Request{}, fmt.Errorf("%w: request %s", ErrNotFound, requestID)
}

// ── Layout configuration ─────────────────────────────────────────────────────

// LayoutConfig returns a deep copy of the committed layout configuration.
func (s *Store) LayoutConfig() layout.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layouts.Clone()
}

// Layout returns a clone of one context's committed layout.
func (s *Store) Layout(ctx layout.ContextKey) (*layout.Layout, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.layouts[ctx]
	if !ok {
		return nil, false
	}
	return l.Clone(), true
}

// CommitLayout validates and installs a layout for its context. This is the
// explicit save that ends a layout-editor session.
func (s *Store) CommitLayout(l *layout.Layout) error {
	if err := layout.Check(l); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layouts[l.Context] = l.Clone()
	s.emit(event.NewLayoutCommitted(string(l.Context)))
	return nil
}

// ReplaceLayoutConfig installs a whole configuration, as when loading
// persisted configuration at startup.
func (s *Store) ReplaceLayoutConfig(cfg layout.Config) error {
	for _, l := range cfg {
		if err := layout.Check(l); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layouts = cfg.Clone()
	return nil
}

// ── Snapshot ─────────────────────────────────────────────────────────────────

// Snapshot is the full exportable state: every collection plus the layout
// configuration.
type Snapshot struct {
	ExportedAt time.Time           `json:"exported_at"`
	Users      []types.User        `json:"users"`
	Families   []types.AssetFamily `json:"families"`
	Assets     []types.Asset       `json:"assets"`
	Requests   []types.Request     `json:"requests"`
	Tasks      []types.Task        `json:"tasks"`
	Vendors    []types.Vendor      `json:"vendors"`
	Layouts    layout.Config       `json:"layouts"`
}

// Snapshot captures the current state for export.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		ExportedAt: s.now(),
		Users:      append([]types.User(nil), s.users...),
		Families:   append([]types.AssetFamily(nil), s.families...),
		Assets:     append([]types.Asset(nil), s.assets...),
		Requests:   append([]types.Request(nil), s.requests...),
		Tasks:      append([]types.Task(nil), s.tasks...),
		Vendors:    append([]types.Vendor(nil), s.vendors...),
		Layouts:    s.layouts.Clone(),
	}
}
