package model

// InterstitialMarker is the synthetic chain entry recorded when a warning
// interstitial was bypassed by extracting its destination.
const InterstitialMarker = "LinkedIn Interstitial (bypassed)"

// Chain is an ordered, append-only list of distinct URLs.
type Chain struct {
	urls []string
	seen map[string]struct{}
}

// NewChain starts a chain with the input URL.
func NewChain(first string) *Chain {
	c := &Chain{}
	c.Add(first)
	return c
}

// Add appends u unless it is already present. It reports whether u was added.
func (c *Chain) Add(u string) bool {
	if u == "" {
		return false
	}
	if c.seen == nil {
		c.seen = make(map[string]struct{})
	}
	if _, ok := c.seen[u]; ok {
		return false
	}
	c.seen[u] = struct{}{}
	c.urls = append(c.urls, u)
	return true
}

// Contains reports whether u was recorded.
func (c *Chain) Contains(u string) bool {
	_, ok := c.seen[u]
	return ok
}

// Len returns the number of entries.
func (c *Chain) Len() int { return len(c.urls) }

// URLs returns a copy of the entries in encounter order.
func (c *Chain) URLs() []string {
	return append([]string(nil), c.urls...)
}
