package crawler

// Entry is a unit of crawl work: a URL and the depth it was discovered at.
type Entry struct {
	Depth int
	URL   string

	// seq is the insertion sequence number; it orders equal-depth entries
	// first-in first-out.
	seq uint64
}

// Frontier is a depth-ordered work queue bounded by a maximum depth.
// It is a binary min-heap keyed by (Depth, insertion order), so pops return
// entries in non-decreasing depth and equal-depth entries in the order they
// were pushed.
//
// Frontier is not safe for concurrent use; the crawl loop owns it.
type Frontier struct {
	maxDepth int
	heap     []Entry
	nextSeq  uint64
}

// NewFrontier returns an empty frontier that accepts depths up to maxDepth.
func NewFrontier(maxDepth int) *Frontier {
	return &Frontier{maxDepth: maxDepth}
}

// MaxDepth returns the frontier's depth bound.
func (f *Frontier) MaxDepth() int {
	return f.maxDepth
}

// Push inserts url at depth. Entries deeper than the bound are dropped and
// Push reports false.
func (f *Frontier) Push(depth int, url string) bool {
	if depth < 0 || depth > f.maxDepth {
		return false
	}

	f.heap = append(f.heap, Entry{Depth: depth, URL: url, seq: f.nextSeq})
	f.nextSeq++
	f.up(len(f.heap) - 1)
	return true
}

// Pop removes and returns the lowest-depth entry.
// It returns false when the frontier is empty.
func (f *Frontier) Pop() (Entry, bool) {
	n := len(f.heap)
	if n == 0 {
		return Entry{}, false
	}

	top := f.heap[0]
	last := n - 1
	f.heap[0] = f.heap[last]
	f.heap[last] = Entry{}
	f.heap = f.heap[:last]
	if last > 0 {
		f.down(0)
	}
	return top, true
}

// Len returns the number of pending entries.
func (f *Frontier) Len() int {
	return len(f.heap)
}

// IsEmpty reports whether no entries are pending.
func (f *Frontier) IsEmpty() bool {
	return len(f.heap) == 0
}

func (f *Frontier) less(i, j int) bool {
	a, b := f.heap[i], f.heap[j]
	if a.Depth != b.Depth {
		return a.Depth < b.Depth
	}
	return a.seq < b.seq
}

func (f *Frontier) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !f.less(i, parent) {
			return
		}
		f.heap[i], f.heap[parent] = f.heap[parent], f.heap[i]
		i = parent
	}
}

func (f *Frontier) down(i int) {
	n := len(f.heap)
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2
		if left < n && f.less(left, smallest) {
			smallest = left
		}
		if right < n && f.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			return
		}
		f.heap[i], f.heap[smallest] = f.heap[smallest], f.heap[i]
		i = smallest
	}
}
