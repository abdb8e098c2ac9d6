package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dompetkeluarga/backend/internal/model"
	"github.com/dompetkeluarga/backend/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Allocation is one line of a salary plan: a category receiving a slice
// of the salary, tracked both as an absolute amount and a percentage.
type Allocation struct {
	ID         string  `json:"id"`
	Category   string  `json:"category"`
	Amount     int64   `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// AllocatorState is a user's current salary plan. It lives on the
// server host as a local JSON file, not in the entity store: plans are
// scratch work, per device, and losing them costs nothing but typing.
type AllocatorState struct {
	Salary      int64        `json:"salary"`
	WalletID    string       `json:"walletId"`
	Allocations []Allocation `json:"allocations"`
}

// TotalAllocated sums the allocation amounts.
func (s AllocatorState) TotalAllocated() int64 {
	var total int64
	for _, a := range s.Allocations {
		total += a.Amount
	}
	return total
}

// Remaining is the unallocated part of the salary, possibly negative
// when the plan over-commits.
func (s AllocatorState) Remaining() int64 {
	return s.Salary - s.TotalAllocated()
}

// AllocatorTemplate is a named, saved copy of a plan.
type AllocatorTemplate struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Salary      int64        `json:"salary"`
	WalletID    string       `json:"walletId"`
	Allocations []Allocation `json:"allocations"`
	SavedAt     time.Time    `json:"savedAt"`
}

// Allocator persists salary plans and templates as per-user JSON files
// under a state directory, and can push a plan into category budgets.
type Allocator struct {
	dir   string
	store store.Store
	log   zerolog.Logger

	mu sync.Mutex
}

// NewAllocator creates an allocator rooted at dir, creating it if
// needed.
func NewAllocator(dir string, s store.Store, log zerolog.Logger) (*Allocator, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create allocator state dir: %w", err)
	}
	return &Allocator{dir: dir, store: s, log: log}, nil
}

// State loads the user's current plan. A user with no saved plan gets
// an empty one, not an error.
func (a *Allocator) State(userID string) (AllocatorState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var st AllocatorState
	if err := a.readJSON(a.statePath(userID), &st); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return AllocatorState{}, nil
		}
		return AllocatorState{}, fmt.Errorf("load allocator state: %w", err)
	}
	return st, nil
}

// SaveState normalizes and persists the user's plan. Percentages are
// recomputed from amounts against the salary so the two never drift;
// allocations without an id get one.
func (a *Allocator) SaveState(userID string, st AllocatorState) (AllocatorState, error) {
	if st.Salary < 0 {
		return AllocatorState{}, fmt.Errorf("salary must be non-negative")
	}
	for i := range st.Allocations {
		if st.Allocations[i].Amount < 0 {
			return AllocatorState{}, fmt.Errorf("allocation amount must be non-negative")
		}
		if st.Allocations[i].ID == "" {
			st.Allocations[i].ID = uuid.New().String()
		}
		st.Allocations[i].Percentage = percentOf(st.Allocations[i].Amount, st.Salary)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.writeJSON(a.statePath(userID), st); err != nil {
		return AllocatorState{}, fmt.Errorf("save allocator state: %w", err)
	}
	return st, nil
}

// ResetState discards the user's plan. Templates are untouched.
func (a *Allocator) ResetState(userID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := os.Remove(a.statePath(userID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reset allocator state: %w", err)
	}
	return nil
}

// Templates lists the user's saved templates.
func (a *Allocator) Templates(userID string) ([]AllocatorTemplate, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadTemplates(userID)
}

// SaveTemplate snapshots the current plan under a name. The plan must
// have a salary and at least one allocation.
func (a *Allocator) SaveTemplate(userID, name string) (AllocatorTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return AllocatorTemplate{}, fmt.Errorf("template name is required")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var st AllocatorState
	if err := a.readJSON(a.statePath(userID), &st); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return AllocatorTemplate{}, fmt.Errorf("no allocator state to save")
		}
		return AllocatorTemplate{}, fmt.Errorf("load allocator state: %w", err)
	}
	if st.Salary <= 0 || len(st.Allocations) == 0 {
		return AllocatorTemplate{}, fmt.Errorf("plan needs a salary and at least one allocation")
	}

	templates, err := a.loadTemplates(userID)
	if err != nil {
		return AllocatorTemplate{}, err
	}

	tpl := AllocatorTemplate{
		ID:          uuid.New().String(),
		Name:        name,
		Salary:      st.Salary,
		WalletID:    st.WalletID,
		Allocations: st.Allocations,
		SavedAt:     time.Now(),
	}
	templates = append(templates, tpl)
	if err := a.writeJSON(a.templatesPath(userID), templates); err != nil {
		return AllocatorTemplate{}, fmt.Errorf("save templates: %w", err)
	}
	return tpl, nil
}

// DeleteTemplate removes one template by id.
func (a *Allocator) DeleteTemplate(userID, templateID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	templates, err := a.loadTemplates(userID)
	if err != nil {
		return err
	}
	kept := templates[:0]
	for _, t := range templates {
		if t.ID != templateID {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(templates) {
		return store.ErrNotFound
	}
	if err := a.writeJSON(a.templatesPath(userID), kept); err != nil {
		return fmt.Errorf("save templates: %w", err)
	}
	return nil
}

// LoadTemplate replaces the current plan with a saved template. The
// restored allocations get fresh ids so later edits do not alias the
// template's copies.
func (a *Allocator) LoadTemplate(userID, templateID string) (AllocatorState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	templates, err := a.loadTemplates(userID)
	if err != nil {
		return AllocatorState{}, err
	}
	for _, t := range templates {
		if t.ID != templateID {
			continue
		}
		st := AllocatorState{
			Salary:      t.Salary,
			WalletID:    t.WalletID,
			Allocations: make([]Allocation, len(t.Allocations)),
		}
		for i, al := range t.Allocations {
			al.ID = uuid.New().String()
			st.Allocations[i] = al
		}
		if err := a.writeJSON(a.statePath(userID), st); err != nil {
			return AllocatorState{}, fmt.Errorf("save allocator state: %w", err)
		}
		return st, nil
	}
	return AllocatorState{}, store.ErrNotFound
}

// ApplyToBudget writes each allocation amount as the budget ceiling of
// the expense category with the matching name. Allocations naming no
// existing expense category are skipped, not errors. Returns how many
// categories were updated.
func (a *Allocator) ApplyToBudget(ctx context.Context, userID string) (int, error) {
	st, err := a.State(userID)
	if err != nil {
		return 0, err
	}
	if len(st.Allocations) == 0 {
		return 0, fmt.Errorf("no allocations to apply")
	}

	categories, err := a.store.ListCategories(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list categories: %w", err)
	}
	byName := make(map[string]*model.Category, len(categories))
	for _, c := range categories {
		if c.Kind == model.CategoryExpense {
			byName[c.Name] = c
		}
	}

	applied := 0
	for _, alloc := range st.Allocations {
		if alloc.Category == "" || alloc.Amount <= 0 {
			continue
		}
		cat, ok := byName[alloc.Category]
		if !ok {
			continue
		}
		cat.Budget = alloc.Amount
		if err := a.store.UpdateCategory(ctx, userID, cat); err != nil {
			return applied, fmt.Errorf("update budget for %q: %w", cat.Name, err)
		}
		applied++
		a.log.Info().
			Str("user", userID).
			Str("category", cat.Name).
			Int64("budget", alloc.Amount).
			Msg("applied allocation to category budget")
	}
	return applied, nil
}

func (a *Allocator) loadTemplates(userID string) ([]AllocatorTemplate, error) {
	var templates []AllocatorTemplate
	if err := a.readJSON(a.templatesPath(userID), &templates); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("load templates: %w", err)
	}
	return templates, nil
}

func (a *Allocator) statePath(userID string) string {
	return filepath.Join(a.dir, fileKey(userID)+".state.json")
}

func (a *Allocator) templatesPath(userID string) string {
	return filepath.Join(a.dir, fileKey(userID)+".templates.json")
}

// fileKey flattens a user id into a safe file name component.
func fileKey(userID string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, userID)
}

func (a *Allocator) readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// writeJSON writes via a temp file and rename so a crash mid-write
// cannot leave a truncated state file.
func (a *Allocator) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func percentOf(amount, salary int64) float64 {
	if salary <= 0 {
		return 0
	}
	pct, _ := decimal.NewFromInt(amount).
		Div(decimal.NewFromInt(salary)).
		Mul(decimal.NewFromInt(100)).
		Float64()
	return pct
}
