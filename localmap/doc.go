// Package localmap provides heterogeneous storage keyed by typed keys,
// used for values that live exactly as long as one request.
//
// A Key carries its value type, so lookups need no assertions at the call
// site and two packages can never collide, even when they pick the same key
// name: identity is the key pointer, the name only labels diagnostics.
//
//	var startedAt = localmap.NewKey[time.Time]("started-at")
//
//	localmap.Set(m, startedAt, time.Now())
//	t, ok := localmap.Get(m, startedAt)
//
// The zero Map is empty and ready for use. A Map is not safe for concurrent
// mutation; request-local use is single-goroutine by construction.
package localmap
