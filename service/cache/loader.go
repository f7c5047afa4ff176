package cache

import (
	"context"
	"errors"
	"reflect"

	"golang.org/x/sync/singleflight"

	"github.com/x-xyz/nftgallery/base/ctx"
)

// Loader runs one getter per key at a time, concurrent misses of the same key
// wait for it and share the value
type Loader struct {
	group singleflight.Group
}

func (l *Loader) Load(c ctx.Ctx, key string, getter OneTimeGetter) (interface{}, error) {
	ran := false
	val, err, shared := l.group.Do(key, func() (interface{}, error) {
		ran = true
		return getter()
	})
	if err != nil && shared && !ran && canceled(err) && c.Err() == nil {
		// the caller that ran the getter was canceled, ours is still alive
		c.WithField("key", key).Debug("shared load canceled, load again")
		return getter()
	}
	return val, err
}

func canceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Fill copies *val into container, both must be pointers of the same type
func Fill(container interface{}, val interface{}) {
	reflect.ValueOf(container).Elem().Set(reflect.ValueOf(val).Elem())
}
