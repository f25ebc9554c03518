package network

// NodeCount returns the number of nodes.
func (nw *Network) NodeCount() int { return nw.nodes.RowCount() }

// EdgeCount returns the number of edges.
func (nw *Network) EdgeCount() int { return nw.edges.RowCount() }

// Nodes returns every node in row order.
func (nw *Network) Nodes() []Node {
	rows := nw.nodes.RowIDs()
	out := make([]Node, len(rows))
	for i, row := range rows {
		out[i] = nw.node(row)
	}
	return out
}

// Edges returns every edge in row order.
func (nw *Network) Edges() []Edge {
	rows := nw.edges.RowIDs()
	out := make([]Edge, len(rows))
	for i, row := range rows {
		out[i] = nw.edge(row)
	}
	return out
}

// EdgeType returns the recorded type of e.
func (nw *Network) EdgeType(e Edge) (EdgeType, bool) {
	if !nw.containsEdge(e) {
		return Directed, false
	}
	t, ok := nw.edgeTypes[e.Row()]
	return t, ok
}

// IncidentEdges returns the edges touching n, by ascending row. A self-loop
// appears once.
func (nw *Network) IncidentEdges(n Node) []Edge {
	if !nw.contains(n) {
		return nil
	}
	return nw.edgesOf(nw.incident(n.Row()))
}

// InEdges returns the edges arriving at n. Undirected edges count as
// arriving at both endpoints.
func (nw *Network) InEdges(n Node) []Edge {
	if !nw.contains(n) {
		return nil
	}
	return nw.edgesOf(nw.filterIncident(n.Row(), func(ends [2]int, undirected bool) bool {
		return undirected || ends[1] == n.Row()
	}))
}

// OutEdges returns the edges leaving n. Undirected edges count as leaving
// both endpoints.
func (nw *Network) OutEdges(n Node) []Edge {
	if !nw.contains(n) {
		return nil
	}
	return nw.edgesOf(nw.filterIncident(n.Row(), func(ends [2]int, undirected bool) bool {
		return undirected || ends[0] == n.Row()
	}))
}

// Neighbors returns the nodes sharing an edge with n, each once, in the
// order of the edges that reach them.
func (nw *Network) Neighbors(n Node) []Node {
	return nw.opposites(n, nw.IncidentEdges(n))
}

// Predecessors returns the nodes with an edge into n.
func (nw *Network) Predecessors(n Node) []Node {
	return nw.opposites(n, nw.InEdges(n))
}

// Successors returns the nodes n has an edge into.
func (nw *Network) Successors(n Node) []Node {
	return nw.opposites(n, nw.OutEdges(n))
}

// IncidentNodes returns the source and target of e. Both are the same node
// for a self-loop.
func (nw *Network) IncidentNodes(e Edge) []Node {
	ends, ok := nw.endsOf(e)
	if !ok {
		return nil
	}
	return []Node{nw.node(ends[0]), nw.node(ends[1])}
}

// Source returns the source node of a directed edge. It returns false for
// undirected edges.
func (nw *Network) Source(e Edge) (Node, bool) {
	ends, ok := nw.endsOf(e)
	if !ok || nw.edgeTypes[e.Row()] == Undirected {
		return Node{}, false
	}
	return nw.node(ends[0]), true
}

// Target returns the target node of a directed edge. It returns false for
// undirected edges.
func (nw *Network) Target(e Edge) (Node, bool) {
	ends, ok := nw.endsOf(e)
	if !ok || nw.edgeTypes[e.Row()] == Undirected {
		return Node{}, false
	}
	return nw.node(ends[1]), true
}

// Opposite returns the endpoint of e that is not n (n itself for a
// self-loop). It returns false when n is not an endpoint of e.
func (nw *Network) Opposite(n Node, e Edge) (Node, bool) {
	ends, ok := nw.endsOf(e)
	if !ok || !nw.contains(n) {
		return Node{}, false
	}
	switch n.Row() {
	case ends[0]:
		return nw.node(ends[1]), true
	case ends[1]:
		return nw.node(ends[0]), true
	}
	return Node{}, false
}

// ConnectingEdge returns the edge from a to b with the lowest row id.
// Directed edges only connect from source to target; undirected edges
// connect both ways.
func (nw *Network) ConnectingEdge(a, b Node) (Edge, bool) {
	edges := nw.connecting(a, b, true)
	if len(edges) == 0 {
		return Edge{}, false
	}
	return edges[0], true
}

// ConnectingEdges returns every edge from a to b by ascending row id.
func (nw *Network) ConnectingEdges(a, b Node) []Edge {
	return nw.connecting(a, b, false)
}

// Degree returns the number of edges incident to n.
func (nw *Network) Degree(n Node) int {
	if !nw.contains(n) {
		return 0
	}
	return len(nw.incident(n.Row()))
}

// InDegree returns len(InEdges(n)).
func (nw *Network) InDegree(n Node) int { return len(nw.InEdges(n)) }

// OutDegree returns len(OutEdges(n)).
func (nw *Network) OutDegree(n Node) int { return len(nw.OutEdges(n)) }

func (nw *Network) connecting(a, b Node, first bool) []Edge {
	if !nw.contains(a) || !nw.contains(b) {
		return nil
	}
	var out []Edge
	for _, row := range nw.incident(a.Row()) {
		ends := nw.ends[row]
		match := ends[0] == a.Row() && ends[1] == b.Row()
		if !match && nw.edgeTypes[row] == Undirected {
			match = ends[0] == b.Row() && ends[1] == a.Row()
		}
		if match {
			out = append(out, nw.edge(row))
			if first {
				break
			}
		}
	}
	return out
}

func (nw *Network) filterIncident(node int, keep func(ends [2]int, undirected bool) bool) []int {
	var rows []int
	for _, row := range nw.incident(node) {
		if keep(nw.ends[row], nw.edgeTypes[row] == Undirected) {
			rows = append(rows, row)
		}
	}
	return rows
}

func (nw *Network) opposites(n Node, edges []Edge) []Node {
	seen := make(map[int]bool, len(edges))
	var out []Node
	for _, e := range edges {
		o, ok := nw.Opposite(n, e)
		if !ok || seen[o.Row()] {
			continue
		}
		seen[o.Row()] = true
		out = append(out, o)
	}
	return out
}

func (nw *Network) endsOf(e Edge) ([2]int, bool) {
	if !nw.containsEdge(e) {
		return [2]int{}, false
	}
	ends, ok := nw.ends[e.Row()]
	return ends, ok
}

func (nw *Network) edgesOf(rows []int) []Edge {
	out := make([]Edge, len(rows))
	for i, row := range rows {
		out[i] = nw.edge(row)
	}
	return out
}
