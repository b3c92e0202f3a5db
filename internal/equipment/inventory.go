// Package equipment implements the thin component-mutation helpers the
// original test suite (test_equipment.py, test_inventory.py,
// test_body.py) exercises beyond bare component schemas: inventory item
// add/remove, equip/unequip slot management, and body-part tree
// mutation. No physics or damage propagation — these are pure data
// operations over the Component Store.
package equipment

import (
	"github.com/sourceplane/simkernel/internal/ecs"
	"github.com/sourceplane/simkernel/internal/simerr"
)

const inventoryKind = "Inventory"

// Item is one inventory line: an item id and a quantity.
type Item struct {
	ItemID   string  `json:"item_id"`
	Quantity float64 `json:"quantity"`
}

// GetInventory returns the decoded item list for e's Inventory component.
func GetInventory(store *ecs.Store, e ecs.EntityID) ([]Item, error) {
	v, err := store.Get(e, inventoryKind)
	if err != nil {
		return nil, err
	}
	return decodeItems(v)
}

// SetInventory replaces e's Inventory component wholesale.
func SetInventory(store *ecs.Store, e ecs.EntityID, items []Item) error {
	return store.Set(e, inventoryKind, encodeItems(items))
}

// AddItemToInventory increments itemID's quantity in e's inventory
// (creating a new line if it is not already present), and persists the
// result.
func AddItemToInventory(store *ecs.Store, e ecs.EntityID, itemID string, quantity float64) error {
	items, err := GetInventory(store, e)
	if err != nil && !isNotFound(err) {
		return err
	}
	found := false
	for i := range items {
		if items[i].ItemID == itemID {
			items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		items = append(items, Item{ItemID: itemID, Quantity: quantity})
	}
	return SetInventory(store, e, items)
}

// RemoveItemFromInventory decrements itemID's quantity, removing the line
// entirely once it reaches zero or below. Removing more than is held, or
// an item not present, is an InvariantViolation ("not in inventory").
func RemoveItemFromInventory(store *ecs.Store, e ecs.EntityID, itemID string, quantity float64) error {
	items, err := GetInventory(store, e)
	if err != nil && !isNotFound(err) {
		return err
	}
	idx := -1
	for i := range items {
		if items[i].ItemID == itemID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return simerr.New(simerr.InvariantViolation, "item %q not in inventory", itemID)
	}
	if items[idx].Quantity < quantity {
		return simerr.New(simerr.InvariantViolation, "item %q not in inventory in sufficient quantity", itemID)
	}
	items[idx].Quantity -= quantity
	if items[idx].Quantity <= 0 {
		items = append(items[:idx], items[idx+1:]...)
	}
	return SetInventory(store, e, items)
}

func decodeItems(v any) ([]Item, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, simerr.New(simerr.InvariantViolation, "inventory component has unexpected shape")
	}
	raw, _ := m["items"].([]any)
	items := make([]Item, 0, len(raw))
	for _, r := range raw {
		rm, ok := r.(map[string]any)
		if !ok {
			continue
		}
		id, _ := rm["item_id"].(string)
		qty, _ := rm["quantity"].(float64)
		items = append(items, Item{ItemID: id, Quantity: qty})
	}
	return items, nil
}

func encodeItems(items []Item) map[string]any {
	raw := make([]any, 0, len(items))
	for _, it := range items {
		raw = append(raw, map[string]any{"item_id": it.ItemID, "quantity": it.Quantity})
	}
	return map[string]any{"items": raw}
}

func isNotFound(err error) bool {
	se, ok := err.(*simerr.Error)
	return ok && se.Kind == simerr.NotFound
}
