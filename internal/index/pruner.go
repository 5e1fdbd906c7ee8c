package index

// QuickPruner counts, for one call, how many input posting lists contain
// each article id, without ever zeroing its scratch between calls. The
// scratch array is stamped with the current iteration value; bumping the
// iteration after each call invalidates every stale mark at once. When the
// iteration would reach maxIteration the scratch is zeroed for real and
// the counter restarts at 1.
//
// The pruner is single-threaded scratch state: each worker owns one.
type QuickPruner struct {
	mem          []int32
	iteration    int32
	maxIteration int32
}

// NewQuickPruner allocates the scratch. memorySize must exceed the largest
// id appearing in any posting list (article ids, term ids, category ids).
func NewQuickPruner(memorySize, maxIteration int) *QuickPruner {
	p := &QuickPruner{
		mem:          make([]int32, memorySize),
		maxIteration: int32(maxIteration),
	}
	p.clear()
	return p
}

// Prune returns the map of article ids that occur in at least two of the
// given lists, each mapped to its occurrence count. Callers apply their
// own >= k filter on the counts.
func (p *QuickPruner) Prune(lists [][]Posting) map[int32]int {
	results := make(map[int32]int)

	for _, list := range lists {
		for _, entry := range list {
			id := entry.ArticleID
			if p.mem[id] == p.iteration {
				if _, ok := results[id]; !ok {
					results[id] = 1
				}
				results[id]++
			} else {
				p.mem[id] = p.iteration
			}
		}
	}

	p.iteration++
	if p.iteration == p.maxIteration {
		p.clear()
	}

	return results
}

func (p *QuickPruner) clear() {
	for i := range p.mem {
		p.mem[i] = 0
	}
	p.iteration = 1
}
