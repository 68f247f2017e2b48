package dashboard

import (
	"context"
	"html/template"
	"log"
	"time"

	"busybeaver/dashboard/fastview"
	"busybeaver/dashboard/statsview"
	"busybeaver/pipeline"

	channerics "github.com/niceyeti/channerics/channels"
)

// rootView is the dashboard's single page: the container for the stats
// grid view and the wiring of its update channel.
type rootView struct {
	views   []fastview.ViewComponent
	updates <-chan []fastview.EleUpdate
}

// newRootView builds the page and the views it contains from a stream of
// pipeline.Stats snapshots.
func newRootView(ctx context.Context, snapshots <-chan pipeline.Stats) *rootView {
	views, err := fastview.NewViewBuilder[pipeline.Stats, []statsview.StatCell]().
		WithContext(ctx).
		WithModel(snapshots, statsview.Convert).
		WithView(func(done <-chan struct{}, cells <-chan []statsview.StatCell) fastview.ViewComponent {
			return statsview.NewGrid(done, cells)
		}).
		Build()
	if err != nil {
		log.Fatal(err)
	}

	return &rootView{
		views:   views,
		updates: fanIn(ctx.Done(), views),
	}
}

// Updates returns the page's single, merged ele-update channel.
func (rv *rootView) Updates() <-chan []fastview.EleUpdate {
	return rv.updates
}

// initialCellProvider is implemented by views (statsview.Grid today) that
// can render a zeroed first pass before any websocket update arrives.
type initialCellProvider interface {
	InitialCells() []statsview.StatCell
}

// InitialData returns the data the page's template should render on the
// first GET /, before the websocket delivers a live snapshot: the first
// view's zeroed cells, or nil if no view in rv supports it.
func (rv *rootView) InitialData() interface{} {
	for _, vc := range rv.views {
		if p, ok := vc.(initialCellProvider); ok {
			return p.InitialCells()
		}
	}
	return nil
}

// Parse builds the page's template: a websocket bootstrap script plus each
// view's rendered fragment.
func (rv *rootView) Parse(parent *template.Template) (name string, err error) {
	viewTemplates := make([]string, 0, len(rv.views))
	for _, vc := range rv.views {
		tname, parseErr := vc.Parse(parent)
		if parseErr != nil {
			return "", parseErr
		}
		viewTemplates = append(viewTemplates, tname)
	}

	var bodySpec string
	for _, tname := range viewTemplates {
		bodySpec += `{{ template "` + tname + `" . }}`
	}

	name = "mainpage"
	indexTemplate := `
	{{ define "` + name + `" }}
	<!DOCTYPE html>
	<html>
		<head>
			<title>busybeaver</title>
			<link rel="icon" href="data:,">
			<script>
				const ws = new WebSocket("ws://" + location.host + "/ws");
				ws.onerror = function (event) {
					console.log('WebSocket error: ', event);
				};
				ws.onmessage = function (event) {
					const items = JSON.parse(event.data)
					for (const update of items) {
						const ele = document.getElementById(update.EleId)
						if (!ele) { continue }
						for (const op of update.Ops) {
							if (op.Key === "textContent") {
								ele.textContent = op.Value;
							} else {
								ele.setAttribute(op.Key, op.Value)
							}
						}
					}
				}
			</script>
		</head>
		<body>
		` + bodySpec + `
		</body></html>
	{{ end }}
	`

	_, err = parent.Parse(indexTemplate)
	return
}

// fanIn merges every view's update channel and throttles the merged
// output, overwriting redundant per-element updates within each window.
func fanIn(done <-chan struct{}, views []fastview.ViewComponent) <-chan []fastview.EleUpdate {
	inputs := make([]<-chan []fastview.EleUpdate, len(views))
	for i, view := range views {
		inputs[i] = view.Updates()
	}
	return batchify(done, channerics.Merge(done, inputs...), 20*time.Millisecond)
}

func batchify(
	done <-chan struct{},
	source <-chan []fastview.EleUpdate,
	rate time.Duration,
) <-chan []fastview.EleUpdate {
	output := make(chan []fastview.EleUpdate)

	go func() {
		defer close(output)

		data := map[string]fastview.EleUpdate{}
		last := time.Now()
		for updates := range channerics.OrDone(done, source) {
			for _, update := range updates {
				data[update.EleId] = update
			}

			if time.Since(last) > rate && len(updates) > 0 {
				select {
				case output <- valuesOf(data):
					data = map[string]fastview.EleUpdate{}
					last = time.Now()
				case <-done:
					return
				}
			}
		}
	}()

	return output
}

func valuesOf[K comparable, V any](m map[K]V) (vals []V) {
	for _, v := range m {
		vals = append(vals, v)
	}
	return
}
