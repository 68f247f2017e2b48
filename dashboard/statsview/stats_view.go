package statsview

import (
	"html/template"

	"busybeaver/dashboard/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// Grid renders the pipeline's running counters as a simple label/value
// table, one row per StatCell, updated in place as new snapshots arrive.
type Grid struct {
	id      string
	labels  []StatCell // fixed at construction, for Parse's initial render
	updates <-chan []fastview.EleUpdate
}

// NewGrid builds the stats grid view from a stream of StatCell slices.
// The grid's row labels are fixed at construction from
// Convert(zeroStats()); Convert always emits the same fixed set of cells in
// the same order, so later slices only change the cells' values.
func NewGrid(done <-chan struct{}, cells <-chan []StatCell) *Grid {
	g := &Grid{
		id:     "statsgrid",
		labels: Convert(zeroStats()),
	}
	g.updates = channerics.Convert(done, cells, g.onUpdate)
	return g
}

func (g *Grid) Updates() <-chan []fastview.EleUpdate {
	return g.updates
}

func (g *Grid) onUpdate(cells []StatCell) (ops []fastview.EleUpdate) {
	for _, cell := range cells {
		ops = append(ops, fastview.EleUpdate{
			EleId: cell.EleId,
			Ops: []fastview.Op{
				{Key: "textContent", Value: cell.Value},
			},
		})
	}
	return
}

// Parse adds the grid's table definition to the parent template.
func (g *Grid) Parse(t *template.Template) (name string, err error) {
	name = g.id
	_, err = t.Parse(
		`{{ define "` + name + `" }}
		<table id="` + g.id + `" style="font-family: monospace; border-collapse: collapse;">
			<tbody>
			{{ range . }}
				<tr>
					<td style="padding:4px 12px;">{{ .Label }}</td>
					<td id="{{ .EleId }}" style="padding:4px 12px; text-align:right;">{{ .Value }}</td>
				</tr>
			{{ end }}
			</tbody>
		</table>
		{{ end }}`)
	return
}

// InitialCells returns the grid's fixed row labels with zeroed values, for
// the page's first server-rendered response before any websocket update
// arrives.
func (g *Grid) InitialCells() []StatCell {
	return g.labels
}
