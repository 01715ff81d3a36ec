// Package merge reconciles two divergent copies of a rule set against
// their common ancestor. It never drops information silently: every
// conflicting resolution produces a Warning the caller must surface.
package merge

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/tjirsch/polyrc/internal/models"
)

// Warning reports one conflicting resolution. The discarded version stays
// recoverable from history; the hash identifies which content lost.
type Warning struct {
	RuleID        string
	RuleName      string
	Kept          string // "local" or "remote"
	LocalUpdated  time.Time
	RemoteUpdated time.Time
	DiscardedHash string
}

func (w Warning) String() string {
	name := w.RuleName
	if name == "" {
		name = w.RuleID
	}
	return fmt.Sprintf("conflict on %s: kept %s version (local %s vs remote %s), discarded content %s",
		name, w.Kept,
		w.LocalUpdated.Format(time.RFC3339), w.RemoteUpdated.Format(time.RFC3339),
		w.DiscardedHash)
}

// ContentHash returns the short content fingerprint used in warnings.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:12]
}

// Merge computes the three-way union of rules by id. One-sided changes win
// silently. Double-sided changes keep the later updated_at, ties keep
// local. A rule deleted on one side and modified on the other keeps the
// modification. Output order is local order, then remote-only additions.
func Merge(ancestor, local, remote models.RuleSet) (models.RuleSet, []Warning) {
	var out models.RuleSet
	var warnings []Warning

	seen := map[string]bool{}
	for _, l := range local {
		seen[l.ID] = true
		a := ancestor.ByID(l.ID)
		r := remote.ByID(l.ID)
		switch {
		case r != nil:
			merged, w := mergePair(a, l, *r)
			out = append(out, merged)
			if w != nil {
				warnings = append(warnings, *w)
			}
		case a == nil:
			// Added locally.
			out = append(out, l)
		case !l.Equivalent(*a):
			// Deleted remotely but modified locally: modification wins.
			out = append(out, l)
			warnings = append(warnings, Warning{
				RuleID:        l.ID,
				RuleName:      l.Name,
				Kept:          "local",
				LocalUpdated:  l.UpdatedAt,
				DiscardedHash: ContentHash(a.Content),
			})
		default:
			// Deleted remotely, untouched locally: deletion stands.
		}
	}

	for _, r := range remote {
		if seen[r.ID] {
			continue
		}
		a := ancestor.ByID(r.ID)
		switch {
		case a == nil:
			// Added remotely.
			out = append(out, r)
		case !r.Equivalent(*a):
			// Deleted locally but modified remotely: modification wins.
			out = append(out, r)
			warnings = append(warnings, Warning{
				RuleID:        r.ID,
				RuleName:      r.Name,
				Kept:          "remote",
				RemoteUpdated: r.UpdatedAt,
				DiscardedHash: ContentHash(a.Content),
			})
		default:
			// Deleted locally, untouched remotely: deletion stands.
		}
	}

	return out, warnings
}

// mergePair resolves one id present on both sides.
func mergePair(a *models.Rule, local, remote models.Rule) (models.Rule, *Warning) {
	if local.Equivalent(remote) {
		// Same content either way; keep the earlier updated_at so equal
		// trees converge regardless of merge direction.
		if !remote.UpdatedAt.IsZero() && remote.UpdatedAt.Before(local.UpdatedAt) {
			return remote, nil
		}
		return local, nil
	}
	if a != nil {
		localChanged := !local.Equivalent(*a)
		remoteChanged := !remote.Equivalent(*a)
		if localChanged && !remoteChanged {
			return local, nil
		}
		if remoteChanged && !localChanged {
			return remote, nil
		}
	}

	// Both sides changed (or no ancestor to arbitrate): later wins,
	// ties keep local.
	w := Warning{RuleID: local.ID, RuleName: local.Name, LocalUpdated: local.UpdatedAt, RemoteUpdated: remote.UpdatedAt}
	if remote.UpdatedAt.After(local.UpdatedAt) {
		w.Kept = "remote"
		w.DiscardedHash = ContentHash(local.Content)
		return remote, &w
	}
	w.Kept = "local"
	w.DiscardedHash = ContentHash(remote.Content)
	return local, &w
}
