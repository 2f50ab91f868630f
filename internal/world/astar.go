package world

import "container/heap"

// frontierEntry is an open-set entry. seq breaks priority ties in
// insertion order so the search is deterministic.
type frontierEntry struct {
	cell     Cell
	priority int
	seq      int
}

type frontier []frontierEntry

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].priority != f[j].priority {
		return f[i].priority < f[j].priority
	}
	return f[i].seq < f[j].seq
}

func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x any) { *f = append(*f, x.(frontierEntry)) }

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	e := old[n-1]
	*f = old[:n-1]
	return e
}

// AStar finds a shortest walkable path from start to goal using unit step
// costs and the Manhattan heuristic. The returned path excludes start and
// ends at goal; it is empty when start == goal. ok is false when goal
// cannot be reached.
func (m *Map) AStar(start, goal Cell) (path Path, ok bool) {
	if !m.InBounds(start) || !m.InBounds(goal) {
		return nil, false
	}

	n := m.Width * m.Height
	index := func(c Cell) int { return c.Y*m.Width + c.X }
	cost := make([]int, n)
	for i := range cost {
		cost[i] = -1
	}
	cameFrom := make([]int, n)

	open := &frontier{}
	seq := 0
	heap.Push(open, frontierEntry{cell: start, priority: 0, seq: seq})
	cost[index(start)] = 0
	cameFrom[index(start)] = -1

	for open.Len() > 0 {
		curr := heap.Pop(open).(frontierEntry).cell
		if curr == goal {
			break
		}
		ci := index(curr)
		for _, next := range m.WalkableNeighbors(curr) {
			ni := index(next)
			newCost := cost[ci] + 1
			if cost[ni] < 0 || newCost < cost[ni] {
				cost[ni] = newCost
				cameFrom[ni] = ci
				seq++
				heap.Push(open, frontierEntry{
					cell:     next,
					priority: newCost + next.Distance(goal),
					seq:      seq,
				})
			}
		}
	}

	gi := index(goal)
	if cost[gi] < 0 {
		return nil, false
	}

	path = make(Path, 0, cost[gi])
	for at := gi; cameFrom[at] >= 0; at = cameFrom[at] {
		path = append(path, Cell{X: at % m.Width, Y: at / m.Width})
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, true
}
