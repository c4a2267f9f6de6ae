package joinplan

import "fmt"

// JoinError reports that the requested models do not form a single
// connected component in the entity graph: ModelSets lists each
// disconnected group so the caller can split the SMQ per component.
type JoinError struct {
	ModelSets [][]string
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("models do not form a single connected join graph: %v", e.ModelSets)
}
