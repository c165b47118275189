package editor

import "github.com/cascadehq/cascade/pkg/models"

// Reduce applies one action to the history state and returns the next
// state. It is a pure function: inputs are never mutated, snapshots are
// value copies.
//
// Every structural mutation pushes the old present onto the past stack and
// discards the future (standard undo-branch-discard semantics). Selection
// and undo/redo themselves leave the future intact. Undo/redo on an empty
// stack are guarded no-ops.
func Reduce(state HistoryState, action Action) HistoryState {
	switch action := action.(type) {
	case LoadData:
		elements := action.Elements
		if elements == nil {
			elements = []models.Node{}
		}

		edges := action.Edges
		if edges == nil {
			edges = []models.Edge{}
		}

		return HistoryState{
			Past: []EditorState{},
			Present: EditorState{
				Elements: elements,
				Edges:    edges,
			},
			Future: []EditorState{},
		}

	case AddNode:
		next := state.Present.clone()
		next.Elements = append(next.Elements, action.Node)
		node := action.Node
		next.SelectedNode = &node

		return commit(state, next)

	case UpdateNode:
		next := state.Present.clone()

		for i, node := range next.Elements {
			if node.ID == action.Node.ID {
				next.Elements[i] = action.Node
			}
		}

		if next.SelectedNode != nil && next.SelectedNode.ID == action.Node.ID {
			node := action.Node
			next.SelectedNode = &node
		}

		return commit(state, next)

	case DeleteNode:
		next := state.Present.clone()

		elements := next.Elements[:0]
		for _, node := range next.Elements {
			if node.ID != action.ID {
				elements = append(elements, node)
			}
		}

		next.Elements = elements

		edges := next.Edges[:0]
		for _, edge := range next.Edges {
			if edge.Source != action.ID && edge.Target != action.ID {
				edges = append(edges, edge)
			}
		}

		next.Edges = edges

		if next.SelectedNode != nil && next.SelectedNode.ID == action.ID {
			next.SelectedNode = nil
		}

		return commit(state, next)

	case SelectNode:
		next := state.Present.clone()
		next.SelectedNode = action.Node

		return HistoryState{
			Past:    state.Past,
			Present: next,
			Future:  state.Future,
		}

	case UpdateEdges:
		next := state.Present.clone()

		edges := action.Edges
		if edges == nil {
			edges = []models.Edge{}
		}

		next.Edges = edges

		return commit(state, next)

	case AddEdge:
		if action.Edge.Source == action.Edge.Target {
			return state
		}

		key := action.Edge.Key()
		for _, edge := range state.Present.Edges {
			if edge.Key() == key {
				return state
			}
		}

		next := state.Present.clone()
		next.Edges = append(next.Edges, action.Edge)

		return commit(state, next)

	case DeleteEdge:
		next := state.Present.clone()

		edges := next.Edges[:0]
		for _, edge := range next.Edges {
			if edge.ID != action.ID {
				edges = append(edges, edge)
			}
		}

		next.Edges = edges

		return commit(state, next)

	case Undo:
		if len(state.Past) == 0 {
			return state
		}

		previous := state.Past[len(state.Past)-1]
		past := make([]EditorState, len(state.Past)-1)
		copy(past, state.Past[:len(state.Past)-1])

		future := make([]EditorState, 0, len(state.Future)+1)
		future = append(future, state.Present)
		future = append(future, state.Future...)

		return HistoryState{
			Past:    past,
			Present: previous,
			Future:  future,
		}

	case Redo:
		if len(state.Future) == 0 {
			return state
		}

		next := state.Future[0]
		future := make([]EditorState, len(state.Future)-1)
		copy(future, state.Future[1:])

		past := make([]EditorState, 0, len(state.Past)+1)
		past = append(past, state.Past...)
		past = append(past, state.Present)

		return HistoryState{
			Past:    past,
			Present: next,
			Future:  future,
		}

	case Clear:
		return commit(state, EditorState{
			Elements: []models.Node{},
			Edges:    []models.Edge{},
		})

	default:
		return state
	}
}

// commit pushes the old present onto the bounded past stack, installs the
// new present, and discards any redo branch.
func commit(state HistoryState, next EditorState) HistoryState {
	past := state.Past
	if len(past) >= MaxHistory {
		past = past[len(past)-MaxHistory+1:]
	}

	newPast := make([]EditorState, 0, len(past)+1)
	newPast = append(newPast, past...)
	newPast = append(newPast, state.Present.clone())

	return HistoryState{
		Past:    newPast,
		Present: next,
		Future:  []EditorState{},
	}
}
