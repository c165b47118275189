package models

// Edge is a directed connection between two nodes. Condition nodes emit
// multiple edges from the same node through distinct source handles
// (true/false branches), so handles participate in edge identity.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source" validate:"required"`
	Target       string `json:"target" validate:"required"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
	Label        string `json:"label,omitempty"`
}

// EdgeKey is the uniqueness key for an edge. Two edges with the same
// source and target but different handles are distinct connections.
type EdgeKey struct {
	Source       string
	SourceHandle string
	Target       string
	TargetHandle string
}

// Key returns the edge's uniqueness key.
func (e Edge) Key() EdgeKey {
	return EdgeKey{
		Source:       e.Source,
		SourceHandle: e.SourceHandle,
		Target:       e.Target,
		TargetHandle: e.TargetHandle,
	}
}

// EdgeID builds the conventional "{source}-{target}" edge identifier.
func EdgeID(source, target string) string {
	return source + "-" + target
}
