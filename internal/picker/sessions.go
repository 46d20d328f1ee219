package picker

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// FacadeFactory binds a facade to the chat that owns a form.
type FacadeFactory func(owner string) Facade

// Sessions keeps one Form per chat. Idle forms expire after ttl.
type Sessions struct {
	forms   *cache.Cache
	factory FacadeFactory
	now     func() time.Time
}

// NewSessions creates a session store. A nil clock defaults to time.Now.
func NewSessions(factory FacadeFactory, ttl time.Duration, now func() time.Time) *Sessions {
	s := &Sessions{
		forms:   cache.New(ttl, 2*ttl),
		factory: factory,
		now:     now,
	}
	s.forms.OnEvicted(func(key string, _ interface{}) {
		zap.S().Debugf("picker session expired: %s", key)
	})
	return s
}

// ZonedClock returns a clock that reports now in loc, so forms reset dates
// on the same calendar the chat's dates are parsed in. A nil now defaults
// to time.Now.
func ZonedClock(now func() time.Time, loc *time.Location) func() time.Time {
	if now == nil {
		now = time.Now
	}
	return func() time.Time { return now().In(loc) }
}

// Get returns the chat's form, creating it on first use. Each access
// extends the form's lifetime.
func (s *Sessions) Get(chatID int64) *Form {
	key := strconv.FormatInt(chatID, 10)
	if v, ok := s.forms.Get(key); ok {
		f := v.(*Form)
		s.forms.SetDefault(key, f)
		return f
	}
	f := NewForm(s.factory(key), s.now)
	s.forms.SetDefault(key, f)
	return f
}

// Reset tears down the chat's form.
func (s *Sessions) Reset(chatID int64) {
	s.forms.Delete(strconv.FormatInt(chatID, 10))
}

// Len returns the number of live forms.
func (s *Sessions) Len() int {
	return s.forms.ItemCount()
}
