package domain

import (
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const fallbackSlug = "business"

// Slugify lower-cases name, collapses every run of non-alphanumeric
// characters into one hyphen and trims hyphens from both ends. Accented
// letters lose their marks ("Café" becomes "cafe"); letters with no ASCII
// base, such as ß or ø, count as separators.
func Slugify(name string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range norm.NFD.String(strings.ToLower(name)) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	if b.Len() == 0 {
		return fallbackSlug
	}
	return b.String()
}

// SlugGenerator derives tenant slugs with a base-36 millisecond suffix.
// Suffixes from one generator are strictly increasing, so identical names
// never collide even when requested within the same millisecond.
type SlugGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewSlugGenerator returns a generator reading time from now.
// A nil now uses time.Now.
func NewSlugGenerator(now func() time.Time) *SlugGenerator {
	if now == nil {
		now = time.Now
	}
	return &SlugGenerator{now: now}
}

// Next returns the slug for name.
func (g *SlugGenerator) Next(name string) string {
	g.mu.Lock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	g.mu.Unlock()

	return Slugify(name) + "-" + strconv.FormatInt(ms, 36)
}
