package crawler

// Frontier is the FIFO queue of URLs waiting to be crawled.
// It remembers every URL ever pushed, so a URL is queued at most once per
// run even after it has been popped. URLs must already be normalized.
type Frontier struct {
	queue []string
	head  int
	seen  map[string]struct{}
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{seen: make(map[string]struct{})}
}

// Push appends url unless it was pushed before. It reports whether the URL
// was queued.
func (f *Frontier) Push(url string) bool {
	if _, ok := f.seen[url]; ok {
		return false
	}
	f.seen[url] = struct{}{}
	f.queue = append(f.queue, url)
	return true
}

// Pop removes and returns the oldest URL.
func (f *Frontier) Pop() (string, bool) {
	if f.head >= len(f.queue) {
		return "", false
	}
	url := f.queue[f.head]
	f.queue[f.head] = ""
	f.head++

	// Reclaim the consumed prefix once it dominates the slice.
	if f.head > 1024 && f.head*2 > len(f.queue) {
		f.queue = append([]string(nil), f.queue[f.head:]...)
		f.head = 0
	}
	return url, true
}

// Len returns the number of queued URLs.
func (f *Frontier) Len() int {
	return len(f.queue) - f.head
}

// Seen reports whether url was ever pushed.
func (f *Frontier) Seen(url string) bool {
	_, ok := f.seen[url]
	return ok
}
