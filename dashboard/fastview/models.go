// Package fastview is generic server-push view plumbing: given a stream
// of data-model values, convert each to a view-model and multiplex the
// conversions out to one or more ViewComponents, each of which renders
// its own fragment of the page and streams incremental element updates
// back to it over a websocket.
package fastview

import "html/template"

// EleUpdate names an element and the attribute/content operations to
// apply to it client-side.
type EleUpdate struct {
	EleId string
	// Op keys are HTML attribute names, or the reserved key "textContent".
	Ops []Op
}

// Op is a single attribute-or-content assignment within an EleUpdate.
type Op struct {
	Key   string
	Value string
}

// ViewComponent is one renderable, independently-updating fragment of
// the dashboard page.
type ViewComponent interface {
	// Updates returns the channel of incremental element updates this
	// view pushes as its underlying data changes.
	Updates() <-chan []EleUpdate
	// Parse adds this component's template definition to the parent
	// template, returning the name by which it can be invoked.
	Parse(*template.Template) (string, error)
}
