package neighbours

// Graph is the minimal adjacency view the graph utilities operate on. Nodes
// are dense integer indices.
type Graph interface {
	NumNodes() int
	Neighbors(node int) []int
}

// StronglyConnectedComponents returns the strongly connected components of g
// using an iterative Tarjan traversal (no recursion, explicit frame stack).
// Components are emitted in reverse topological order of the condensation.
func StronglyConnectedComponents(g Graph) [][]int {
	n := g.NumNodes()
	index := make([]int, n) // 0 means unvisited
	low := make([]int, n)
	onStack := make([]bool, n)
	stack := make([]int, 0, n)
	var comps [][]int
	counter := 0

	type frame struct {
		node int
		adj  []int
		next int
	}
	var frames []frame

	for root := 0; root < n; root++ {
		if index[root] != 0 {
			continue
		}
		counter++
		index[root], low[root] = counter, counter
		stack = append(stack, root)
		onStack[root] = true
		frames = append(frames[:0], frame{node: root, adj: g.Neighbors(root)})

		for len(frames) > 0 {
			f := &frames[len(frames)-1]
			if f.next < len(f.adj) {
				w := f.adj[f.next]
				f.next++
				if index[w] == 0 {
					counter++
					index[w], low[w] = counter, counter
					stack = append(stack, w)
					onStack[w] = true
					// Appending may reallocate frames; f is not used again
					// in this iteration.
					frames = append(frames, frame{node: w, adj: g.Neighbors(w)})
				} else if onStack[w] && index[w] < low[f.node] {
					low[f.node] = index[w]
				}
				continue
			}

			v := f.node
			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				p := &frames[len(frames)-1]
				if low[v] < low[p.node] {
					low[p.node] = low[v]
				}
			}
			if low[v] == index[v] {
				var comp []int
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					comp = append(comp, w)
					if w == v {
						break
					}
				}
				comps = append(comps, comp)
			}
		}
	}
	return comps
}
