package email

import (
	"regexp"
	"sort"
	"strings"
)

var (
	// exact validates a whole candidate string.
	exact = regexp.MustCompile(`(?i)^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	// loose finds email-shaped substrings inside free text.
	loose = regexp.MustCompile(`(?i)[^@\s]+@[^@\s]+\.[^@\s]+`)
)

// structured collection keys scanned before falling back to a deep walk.
var participantKeys = []string{"signers", "recipients", "participants"}

// Extract derives signer email addresses from a signature's summary payload
// and its optional detail payload. Strategies are tried in order and the
// first one that yields anything wins:
//
//  1. structured participant fields in detail
//  2. structured participant fields in summary
//  3. every string leaf of detail
//  4. every string leaf of summary
//
// The result is distinct and keeps insertion order. It may be empty, and the
// deep-scan fallback may pick up unrelated email-like strings; both are
// accepted behavior for this best-effort heuristic.
func Extract(summary, detail map[string]any) []string {
	strategies := []func() []string{
		func() []string { return structured(detail) },
		func() []string { return structured(summary) },
		func() []string { return deepScan(detail) },
		func() []string { return deepScan(summary) },
	}
	for _, strategy := range strategies {
		if found := strategy(); len(found) > 0 {
			return found
		}
	}
	return nil
}

// collector accumulates validated, deduplicated emails in insertion order.
type collector struct {
	seen map[string]bool
	out  []string
}

func newCollector() *collector {
	return &collector{seen: make(map[string]bool)}
}

func (c *collector) add(candidate string) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || !exact.MatchString(candidate) {
		return
	}
	if c.seen[candidate] {
		return
	}
	c.seen[candidate] = true
	c.out = append(c.out, candidate)
}

// structured scans the known participant collections for direct email fields
// and embedded user objects.
func structured(payload map[string]any) []string {
	if payload == nil {
		return nil
	}
	c := newCollector()
	for _, key := range participantKeys {
		items, _ := payload[key].([]any)
		for _, item := range items {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if email, ok := entry["email"].(string); ok {
				c.add(email)
			}
			if user, ok := entry["user"].(map[string]any); ok {
				if email, ok := user["email"].(string); ok {
					c.add(email)
				}
			}
		}
	}
	return c.out
}

// deepScan walks every string leaf of a generic JSON value and collects all
// email-shaped substrings.
func deepScan(payload map[string]any) []string {
	if payload == nil {
		return nil
	}
	c := newCollector()
	walk(payload, c)
	return c.out
}

func walk(value any, c *collector) {
	switch v := value.(type) {
	case map[string]any:
		// Keys are visited in sorted order so scan results are stable.
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walk(v[k], c)
		}
	case []any:
		for _, child := range v {
			walk(child, c)
		}
	case string:
		for _, match := range loose.FindAllString(v, -1) {
			c.add(match)
		}
	}
}
