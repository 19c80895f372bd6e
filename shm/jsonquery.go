package shm

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/match"
)

// JSONPath is an advisory convenience query for slots whose type_flag
// carries JSON. It reads the slot's arena bytes directly, as GetRawPtr
// does, copies them, re-validates the epoch after the copy, exactly like
// the reader protocol, and then parses the copy; it introduces no new
// locking mode.
func JSONPath(r *Region, key []byte, path string) (gjson.Result, error) {
	hash := fnv1a(key)
	_, s, found := findSlot(r, key, hash)
	if !found {
		return gjson.Result{}, fmt.Errorf("json_path %q: %w", key, ErrNotFound)
	}
	if s.typeFlag.Load()&TypeJSON == 0 {
		return gjson.Result{}, fmt.Errorf("json_path %q: %w", key, ErrInvalid)
	}

	before := s.epoch.Load()
	if before&1 != 0 {
		return gjson.Result{}, fmt.Errorf("json_path %q: %w", key, ErrRetry)
	}
	n := s.valLen.Load()
	raw := append([]byte(nil), r.arena()[s.valOff:s.valOff+uint64(n)]...)
	after := s.epoch.Load()
	if after != before {
		return gjson.Result{}, fmt.Errorf("json_path %q: %w", key, ErrRetry)
	}

	return gjson.GetBytes(raw, path), nil
}

// ListMatch implements list() filtered by a shell-glob pattern
// over the key, layered strictly on top of the unlocked linear scan —
// it changes nothing about list's best-effort semantics.
func ListMatch(r *Region, pattern string) []string {
	out := make([]string, 0, 16)
	for _, k := range List(r) {
		if match.Match(k, pattern) {
			out = append(out, k)
		}
	}
	return out
}
