package importer

import (
	"fmt"

	"github.com/turnstone-io/turnstone/pkg/types"
)

// Transition table: from -> allowed tos. An archive moves strictly
// forward through the pipeline; a failure freezes it at the stage it
// reached.
var validTransitions = map[types.ImportStage][]types.ImportStage{
	types.StageDiscovered: {types.StageRead},
	types.StageRead:       {types.StageExtracted},
	types.StageExtracted:  {types.StageLoaded},
	types.StageLoaded:     {},
}

// CanAdvance checks if advancing from one import stage to another is valid.
func CanAdvance(from, to types.ImportStage) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Advance validates a stage transition, returning an error if invalid.
func Advance(from, to types.ImportStage) error {
	if !CanAdvance(from, to) {
		return fmt.Errorf("invalid stage transition from %s to %s", from, to)
	}
	return nil
}

// IsTerminal returns true if the stage is the final pipeline stage.
func IsTerminal(stage types.ImportStage) bool {
	return stage == types.StageLoaded
}
