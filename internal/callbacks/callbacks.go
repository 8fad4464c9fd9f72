// Package callbacks fans messages out to named subscribers. A subscriber
// returning false is dropped, so dead websocket listeners unsubscribe
// themselves on the next message.
package callbacks

import (
	"sync"
)

type Callback[V any] struct {
	subs sync.Map
}

func New[V any]() *Callback[V] {
	return &Callback[V]{}
}

func (c *Callback[V]) Subscribe(name string, fn func(msg V) bool) {
	c.subs.Store(name, fn)
}

func (c *Callback[V]) Unsubscribe(name string) bool {
	_, found := c.subs.LoadAndDelete(name)

	return found
}

func (c *Callback[V]) AddMessage(msg V) {
	c.subs.Range(func(key, value any) bool {
		if fn, ok := value.(func(msg V) bool); ok {
			go func() {
				if !fn(msg) {
					c.subs.Delete(key)
				}
			}()
		}

		return true
	})
}
