package turing

// Batch is a group of complete TransitionFunctions handed from the
// Enumerator to the StaticFilter stage as a unit.
type Batch []*TransitionFunction

// DefaultBatchSize is used when no configuration overrides it.
const DefaultBatchSize = 100
