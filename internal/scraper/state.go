package scraper

// CrawlState owns the mutable bookkeeping of one crawl invocation: the FIFO
// frontier queue, the visited set, the ordered product-URL set, and the
// processed-page counter. It lives for a single crawl and is discarded once
// the frontier finishes; its only durable output is ProductURLs. It is not
// safe for concurrent use, which the sequential crawl phase never needs.
type CrawlState struct {
	queue       []string
	visited     map[string]struct{}
	productSeen map[string]struct{}
	productURLs []string
	processed   int
}

// NewCrawlState seeds the frontier with the (already normalized) seed URL,
// which is marked visited at enqueue time like every later URL.
func NewCrawlState(seed string) *CrawlState {
	return &CrawlState{
		queue:       []string{seed},
		visited:     map[string]struct{}{seed: {}},
		productSeen: make(map[string]struct{}),
	}
}

// Enqueue adds a URL to the frontier unless it was already visited. The URL
// is marked visited immediately so later discoveries of the same link are
// no-ops. Returns true when the URL was actually queued.
func (s *CrawlState) Enqueue(u string) bool {
	if !s.MarkVisited(u) {
		return false
	}
	s.queue = append(s.queue, u)
	return true
}

// MarkVisited records a URL as seen without queueing it, used for asset URLs
// that must not be re-checked. Returns false if it was already visited.
func (s *CrawlState) MarkVisited(u string) bool {
	if _, ok := s.visited[u]; ok {
		return false
	}
	s.visited[u] = struct{}{}
	return true
}

// Dequeue pops the head of the frontier and bumps the processed counter.
func (s *CrawlState) Dequeue() (string, bool) {
	if len(s.queue) == 0 {
		return "", false
	}
	u := s.queue[0]
	s.queue = s.queue[1:]
	s.processed++
	return u, true
}

// AddProduct records a product-candidate URL, deduplicated by exact string.
// The discovery order of first occurrences is preserved.
func (s *CrawlState) AddProduct(u string) bool {
	if _, ok := s.productSeen[u]; ok {
		return false
	}
	s.productSeen[u] = struct{}{}
	s.productURLs = append(s.productURLs, u)
	return true
}

// Processed returns how many URLs have been dequeued so far.
func (s *CrawlState) Processed() int {
	return s.processed
}

// QueueLen returns the number of URLs waiting in the frontier.
func (s *CrawlState) QueueLen() int {
	return len(s.queue)
}

// ProductURLs returns the product candidates in discovery order.
func (s *CrawlState) ProductURLs() []string {
	return s.productURLs
}
