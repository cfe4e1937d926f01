package svcore

import (
	"context"

	"github.com/open-control-systems/thingweb/components/thing/thcore"
)

// Interaction describes a remote property read or write.
type Interaction struct {
	Thing    string
	Property string
	Content  thcore.Content
}

// InteractionListener is notified about each successful remote property interaction.
type InteractionListener interface {
	// OnReadProperty is called once after the property was read.
	OnReadProperty(ctx context.Context, i Interaction)

	// OnWriteProperty is called once after the property was written.
	OnWriteProperty(ctx context.Context, i Interaction)
}

// UpdateHandler is called after the property was changed remotely.
type UpdateHandler func(ctx context.Context, value thcore.Content)
