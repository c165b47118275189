package editor

import "github.com/cascadehq/cascade/pkg/models"

// Action is one editor input. The set is closed; Reduce dispatches with an
// exhaustive type switch.
type Action interface {
	isAction()
}

// LoadData replaces the whole graph and resets history, used when opening
// a persisted workflow in the editor.
type LoadData struct {
	Elements []models.Node
	Edges    []models.Edge
}

// AddNode appends a node and selects it.
type AddNode struct {
	Node models.Node
}

// UpdateNode replaces a node by id, refreshing the selection if the node
// was selected.
type UpdateNode struct {
	Node models.Node
}

// DeleteNode removes a node together with every edge touching it.
type DeleteNode struct {
	ID string
}

// SelectNode changes the selection only; it is not undoable.
type SelectNode struct {
	Node *models.Node
}

// UpdateEdges replaces the edge list wholesale.
type UpdateEdges struct {
	Edges []models.Edge
}

// AddEdge appends an edge unless an identical connection already exists
// or the edge is a self-loop.
type AddEdge struct {
	Edge models.Edge
}

// DeleteEdge removes an edge by id.
type DeleteEdge struct {
	ID string
}

// Undo restores the previous snapshot.
type Undo struct{}

// Redo restores the next snapshot.
type Redo struct{}

// Clear resets the present graph to empty.
type Clear struct{}

func (LoadData) isAction()    {}
func (AddNode) isAction()     {}
func (UpdateNode) isAction()  {}
func (DeleteNode) isAction()  {}
func (SelectNode) isAction()  {}
func (UpdateEdges) isAction() {}
func (AddEdge) isAction()     {}
func (DeleteEdge) isAction()  {}
func (Undo) isAction()        {}
func (Redo) isAction()        {}
func (Clear) isAction()       {}
