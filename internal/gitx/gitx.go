// Package gitx abstracts the version-control collaborator behind a narrow
// interface so the store and merge engine can be tested against an
// in-memory fake without invoking a real git process.
package gitx

import (
	"context"
	"fmt"
)

// Client is the complete surface polyrc needs from a version-control
// implementation. Any conforming implementation is interchangeable.
type Client interface {
	// Init creates an empty repository at dir.
	Init(ctx context.Context, dir string) error

	// Clone clones url into dir. Cloning over an existing repository
	// re-points its remote instead of failing.
	Clone(ctx context.Context, url, dir string) error

	// SetRemote points the default remote at url.
	SetRemote(ctx context.Context, dir, url string) error

	// Stage stages every change in the working copy.
	Stage(ctx context.Context, dir string) error

	// Commit records staged changes as one checkpoint. Returns false
	// without error when nothing is staged.
	Commit(ctx context.Context, dir, message string) (bool, error)

	// Head returns the current head revision.
	Head(ctx context.Context, dir string) (string, error)

	// Fetch updates remote tracking state without touching the working copy.
	Fetch(ctx context.Context, dir string) error

	// Push publishes local history to the remote.
	Push(ctx context.Context, dir string) error

	// Divergence reports how many commits local has that remoteRef lacks
	// (ahead) and vice versa (behind).
	Divergence(ctx context.Context, dir, remoteRef string) (ahead, behind int, err error)

	// MergeBase returns the common ancestor revision of two refs.
	MergeBase(ctx context.Context, dir, a, b string) (string, error)

	// BeginMerge starts a merge of ref that keeps the local tree, leaving
	// the merge uncommitted so the caller can install reconciled content
	// before committing.
	BeginMerge(ctx context.Context, dir, ref string) error

	// FastForward advances the working copy to ref when local has no
	// commits of its own.
	FastForward(ctx context.Context, dir, ref string) error

	// ListFiles lists the paths under prefix in the tree at rev.
	ListFiles(ctx context.Context, dir, rev, prefix string) ([]string, error)

	// ReadFile reads one file from the tree at rev.
	ReadFile(ctx context.Context, dir, rev, path string) ([]byte, error)
}

// LockError reports working-copy lock contention from a concurrent
// invocation. It is retryable and must surface to the user, never crash.
type LockError struct {
	Dir string
	Err error
}

func (e *LockError) Error() string {
	return fmt.Sprintf("repository %s is locked by another process (retry shortly): %v", e.Dir, e.Err)
}

func (e *LockError) Unwrap() error { return e.Err }
