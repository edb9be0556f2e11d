/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package smartlist

import (
	"time"

	"github.com/friendsincode/huginn_podcast/internal/models"
)

// Resolver maps an episode id to its episode, reporting whether it exists.
type Resolver func(id string) (models.Episode, bool)

// TotalDuration sums the known durations of the resolved episodes. The
// second return distinguishes "no data" from "zero length": it is false when
// the id list is empty or no resolvable episode carries a known duration.
// Episodes with unknown duration are skipped, never counted as zero.
func TotalDuration(ids []string, resolve Resolver) (time.Duration, bool) {
	var total time.Duration
	known := false

	for _, id := range ids {
		ep, ok := resolve(id)
		if !ok || ep.Duration == nil {
			continue
		}
		total += *ep.Duration
		known = true
	}

	return total, known
}
