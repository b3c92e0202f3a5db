package world

import (
	"sort"

	"github.com/sourceplane/simkernel/internal/ecs"
	"github.com/sourceplane/simkernel/internal/jobengine"
	"github.com/sourceplane/simkernel/internal/simerr"
)

// stockpileAdapter implements jobengine.StockpileSource over the live
// Stockpile components, where each Stockpile component holds
// {"resources": {kind -> amount}}.
type stockpileAdapter struct {
	components func(e ecs.EntityID) (any, error)
	entities   func() []ecs.EntityID
	setAmount  func(e ecs.EntityID, kind string, amount float64) error
}

func (w *World) stockpileSource() jobengine.StockpileSource {
	return &stockpileAdapter{
		components: func(e ecs.EntityID) (any, error) { return w.components.Get(e, "Stockpile") },
		entities:   func() []ecs.EntityID { return w.components.EntitiesWith("Stockpile") },
		setAmount:  w.setStockpileAmount,
	}
}

func (s *stockpileAdapter) Available(kind string) []jobengine.StockpileAmount {
	var out []jobengine.StockpileAmount
	ids := s.entities()
	sort.Slice(ids, func(i, k int) bool { return ids[i] < ids[k] })
	for _, id := range ids {
		v, err := s.components(id)
		if err != nil {
			continue
		}
		amount := resourceAmount(v, kind)
		if amount > 0 {
			out = append(out, jobengine.StockpileAmount{Entity: id, Kind: kind, Amount: amount})
		}
	}
	return out
}

func (s *stockpileAdapter) Debit(e ecs.EntityID, kind string, amount float64) error {
	v, err := s.components(e)
	if err != nil {
		return err
	}
	current := resourceAmount(v, kind)
	return s.setAmount(e, kind, current-amount)
}

func (s *stockpileAdapter) Credit(e ecs.EntityID, kind string, amount float64) error {
	v, err := s.components(e)
	if err != nil {
		return err
	}
	current := resourceAmount(v, kind)
	return s.setAmount(e, kind, current+amount)
}

func resourceAmount(value any, kind string) float64 {
	m, ok := value.(map[string]any)
	if !ok {
		return 0
	}
	resources, ok := m["resources"].(map[string]any)
	if !ok {
		return 0
	}
	f, _ := resources[kind].(float64)
	return f
}

func (w *World) setStockpileAmount(e ecs.EntityID, kind string, amount float64) error {
	v, err := w.components.Get(e, "Stockpile")
	if err != nil {
		return simerr.Wrap(simerr.NotFound, err, "stockpile entity %d not found", e)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return simerr.New(simerr.InvariantViolation, "stockpile component has unexpected shape")
	}
	resources, ok := m["resources"].(map[string]any)
	if !ok {
		resources = make(map[string]any)
	}
	resources[kind] = amount
	m["resources"] = resources
	return w.components.Set(e, "Stockpile", m)
}
