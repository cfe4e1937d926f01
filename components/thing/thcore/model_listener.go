package thcore

// ModelListener is notified when a thing model changes.
type ModelListener interface {
	// OnModelChanged is called synchronously after a property or action was added.
	OnModelChanged(thing *Thing)
}

// FuncModelListener is a function type that implements the ModelListener interface.
type FuncModelListener func(thing *Thing)

// OnModelChanged calls the function itself.
func (f FuncModelListener) OnModelChanged(thing *Thing) {
	f(thing)
}
