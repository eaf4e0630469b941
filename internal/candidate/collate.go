package candidate

import (
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CollatorLess returns a locale-aware Less for the BCP 47 tag. Unknown or
// empty tags fall back to language.Und. The returned func is safe for
// concurrent use.
func CollatorLess(tag string) Less {
	lang := language.Und
	if tag != "" {
		if parsed, err := language.Parse(tag); err == nil {
			lang = parsed
		}
	}
	c := collate.New(lang)

	// collate.Collator keeps internal buffers.
	var mu sync.Mutex
	return func(a, b string) bool {
		mu.Lock()
		defer mu.Unlock()
		if r := c.CompareString(a, b); r != 0 {
			return r < 0
		}
		return a < b
	}
}
