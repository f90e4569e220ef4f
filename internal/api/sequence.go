// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "sync/atomic"

// Sequence tags requests so that only the response to the most recent one
// is applied. Issue a tag with Next before sending; check Latest before
// applying the result.
type Sequence struct {
	n atomic.Uint64
}

// Next returns a new tag, invalidating every earlier one.
func (s *Sequence) Next() uint64 {
	return s.n.Add(1)
}

// Latest reports whether tag is still the most recent.
func (s *Sequence) Latest(tag uint64) bool {
	return s.n.Load() == tag
}

// Current returns the most recently issued tag (0 if none).
func (s *Sequence) Current() uint64 {
	return s.n.Load()
}
