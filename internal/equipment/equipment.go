package equipment

import (
	"sort"

	"github.com/sourceplane/simkernel/internal/ecs"
	"github.com/sourceplane/simkernel/internal/simerr"
)

const equipmentKind = "Equipment"

// validSlots are the only slot names EquipItem accepts.
var validSlots = map[string]bool{
	"head": true, "torso": true, "hands": true, "legs": true, "feet": true,
}

// GetEquipment returns e's current slot -> item-id mapping.
func GetEquipment(store *ecs.Store, e ecs.EntityID) (map[string]string, error) {
	v, err := store.Get(e, equipmentKind)
	if err != nil {
		if isNotFound(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, simerr.New(simerr.InvariantViolation, "equipment component has unexpected shape")
	}
	slots, _ := m["slots"].(map[string]any)
	out := make(map[string]string)
	for slot, v := range slots {
		if id, ok := v.(string); ok && id != "" {
			out[slot] = id
		}
	}
	return out, nil
}

// EquipItem equips itemID into slot, requiring that itemID currently be in
// e's inventory and that slot be empty. Removes the item from inventory on
// success. Rejects an invalid slot name, an item not held, or an already
// occupied slot, each as an InvariantViolation.
func EquipItem(store *ecs.Store, e ecs.EntityID, slot, itemID string) error {
	if !validSlots[slot] {
		return simerr.New(simerr.InvariantViolation, "invalid slot %q", slot)
	}

	current, err := GetEquipment(store, e)
	if err != nil {
		return err
	}
	if existing, occupied := current[slot]; occupied && existing != "" {
		return simerr.New(simerr.InvariantViolation, "slot %q is already equipped", slot)
	}

	items, err := GetInventory(store, e)
	if err != nil && !isNotFound(err) {
		return err
	}
	held := false
	for _, it := range items {
		if it.ItemID == itemID && it.Quantity > 0 {
			held = true
			break
		}
	}
	if !held {
		return simerr.New(simerr.InvariantViolation, "item %q not in inventory", itemID)
	}

	if err := RemoveItemFromInventory(store, e, itemID, 1); err != nil {
		return err
	}
	current[slot] = itemID
	return setEquipment(store, e, current)
}

// UnequipItem removes whatever is in slot, if anything, and returns it to
// e's inventory.
func UnequipItem(store *ecs.Store, e ecs.EntityID, slot string) error {
	if !validSlots[slot] {
		return simerr.New(simerr.InvariantViolation, "invalid slot %q", slot)
	}
	current, err := GetEquipment(store, e)
	if err != nil {
		return err
	}
	itemID, occupied := current[slot]
	if !occupied {
		return nil
	}
	delete(current, slot)
	if err := setEquipment(store, e, current); err != nil {
		return err
	}
	return AddItemToInventory(store, e, itemID, 1)
}

func setEquipment(store *ecs.Store, e ecs.EntityID, slots map[string]string) error {
	names := make([]string, 0, len(slots))
	for s := range slots {
		names = append(names, s)
	}
	sort.Strings(names)
	raw := make(map[string]any, len(names))
	for _, s := range names {
		raw[s] = slots[s]
	}
	return store.Set(e, equipmentKind, map[string]any{"slots": raw})
}
