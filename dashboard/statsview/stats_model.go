// Package statsview contains views derived from the pipeline.Stats
// view-model.
package statsview

import (
	"fmt"

	"busybeaver/pipeline"
	"busybeaver/turing"
)

// StatCell is one labelled counter in the dashboard's stats grid, oriented
// for direct consumption by the stats view: EleId is the html element this
// cell updates, Label is its fixed caption, and Value is the current
// formatted reading.
type StatCell struct {
	EleId string
	Label string
	Value string
}

// Convert transforms a pipeline.Stats snapshot into the fixed-size grid of
// StatCells the stats view renders. The cells are a fixed small set known
// at compile time; only their Value fields change between snapshots.
func Convert(stats pipeline.Stats) []StatCell {
	cells := []StatCell{
		{EleId: "stat-enumerated", Label: "Enumerated", Value: formatUint(stats.Enumerated)},
		{EleId: "stat-simulated", Label: "Simulated", Value: formatUint(stats.Simulated)},
		{EleId: "stat-halted", Label: "Halted", Value: formatUint(stats.Halted)},
		{EleId: "stat-holdouts", Label: "Holdouts", Value: formatUint(stats.Holdouts)},
		{EleId: "stat-champion", Label: "Champion score", Value: formatChampion(stats)},
		{EleId: "stat-start-loopers", Label: "Rejected: start self-loop", Value: formatUint(stats.StaticRejected.StartLoopers)},
		{EleId: "stat-neighbour-loopers", Label: "Rejected: neighbour loop", Value: formatUint(stats.StaticRejected.NeighbourLoopers)},
		{EleId: "stat-immediate-halters", Label: "Rejected: immediate halt", Value: formatUint(stats.StaticRejected.ImmediateHalters)},
		{EleId: "stat-halting-skippers", Label: "Skipped by Halt canonicalization", Value: formatUint(stats.StaticRejected.HaltingSkippers)},
		{EleId: "stat-symmetry-duplicates", Label: "Rejected: symmetry duplicate", Value: formatUint(stats.StaticRejected.SymmetryDuplicates)},
	}
	for _, verdict := range []turing.FilterVerdict{
		turing.VerdictCycler,
		turing.VerdictTranslatedCycler,
		turing.VerdictLongEscapee,
		turing.VerdictShortEscapee,
	} {
		cells = append(cells, StatCell{
			EleId: "stat-dynamic-" + verdict.String(),
			Label: "Rejected: " + verdict.String(),
			Value: formatUint(stats.DynamicRejected[verdict]),
		})
	}
	return cells
}

func formatUint(n uint64) string {
	return fmt.Sprintf("%d", n)
}

func formatChampion(stats pipeline.Stats) string {
	if !stats.ChampionFound {
		return "none yet"
	}
	return fmt.Sprintf("%d", stats.ChampionScore)
}

// zeroStats returns an empty snapshot, for deriving the grid's fixed row
// labels before a pipeline has produced its first real Stats value.
func zeroStats() pipeline.Stats {
	return pipeline.Stats{DynamicRejected: map[turing.FilterVerdict]uint64{}}
}
