package world

import (
	"github.com/sourceplane/simkernel/internal/ecs"
	"github.com/sourceplane/simkernel/internal/equipment"
)

func (w *World) GetInventory(e ecs.EntityID) ([]equipment.Item, error) {
	return equipment.GetInventory(w.components, e)
}

func (w *World) SetInventory(e ecs.EntityID, items []equipment.Item) error {
	return equipment.SetInventory(w.components, e, items)
}

func (w *World) AddItemToInventory(e ecs.EntityID, itemID string, quantity float64) error {
	return equipment.AddItemToInventory(w.components, e, itemID, quantity)
}

func (w *World) RemoveItemFromInventory(e ecs.EntityID, itemID string, quantity float64) error {
	return equipment.RemoveItemFromInventory(w.components, e, itemID, quantity)
}

func (w *World) EquipItem(e ecs.EntityID, slot, itemID string) error {
	return equipment.EquipItem(w.components, e, slot, itemID)
}

func (w *World) UnequipItem(e ecs.EntityID, slot string) error {
	return equipment.UnequipItem(w.components, e, slot)
}

func (w *World) GetEquipment(e ecs.EntityID) (map[string]string, error) {
	return equipment.GetEquipment(w.components, e)
}

func (w *World) GetBody(e ecs.EntityID) ([]equipment.Part, error) {
	return equipment.GetBody(w.components, e)
}

func (w *World) SetBody(e ecs.EntityID, parts []equipment.Part) error {
	return equipment.SetBody(w.components, e, parts)
}

func (w *World) AddBodyPart(e ecs.EntityID, parentPath []string, name string) error {
	return equipment.AddBodyPart(w.components, e, parentPath, name)
}

func (w *World) RemoveBodyPart(e ecs.EntityID, path []string) error {
	return equipment.RemoveBodyPart(w.components, e, path)
}

func (w *World) GetBodyPart(e ecs.EntityID, path []string) (*equipment.Part, error) {
	return equipment.GetBodyPart(w.components, e, path)
}
