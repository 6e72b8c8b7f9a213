package service

// Change events published after successful mutations. Connected POS screens
// refetch the affected collection on receipt.
const (
	EventProductsReordered   = "productsReordered"
	EventCategoriesReordered = "categoriesReordered"
	EventCategoryUpdated     = "categoryUpdated"
	EventCategoryDeleted     = "categoryDeleted"
)

// Notifier is a fire-and-forget publish channel for change events.
// Satisfied by *ws.Hub. Delivery is best-effort: no acknowledgment, no replay.
type Notifier interface {
	Publish(eventType string, payload any)
}

// NopNotifier discards every event. Used where no hub is wired (seed, tests).
type NopNotifier struct{}

func (NopNotifier) Publish(string, any) {}
