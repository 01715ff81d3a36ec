package gitx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// MemClient is an in-memory Client for tests. The "working copy" is the
// real directory on disk; history is a map of revision name to tree
// snapshot. Revisions are named c1, c2, ... in commit order.
type MemClient struct {
	mu sync.Mutex

	// Revisions maps revision name to tree (relative path -> content).
	Revisions map[string]map[string]string

	// Remotes maps repo dir to its configured remote URL.
	Remotes map[string]string

	// RemoteRefs maps ref name (e.g. "origin/main") to a revision name,
	// simulating fetched remote tracking state.
	RemoteRefs map[string]string

	// Bases maps "a..b" to the merge-base revision for that pair.
	Bases map[string]string

	// Log records commit messages in order.
	Log []string

	// FailWith, when set, is returned by every mutating call. Use to
	// simulate lock contention.
	FailWith error

	head    string
	staged  bool
	counter int
	inited  bool
}

// NewMemClient returns an empty fake repository.
func NewMemClient() *MemClient {
	return &MemClient{
		Revisions:  map[string]map[string]string{},
		Remotes:    map[string]string{},
		RemoteRefs: map[string]string{},
		Bases:      map[string]string{},
	}
}

func (m *MemClient) Init(ctx context.Context, dir string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inited = true
	return os.MkdirAll(dir, 0o755)
}

func (m *MemClient) Clone(ctx context.Context, url, dir string) error {
	if err := m.Init(ctx, dir); err != nil {
		return err
	}
	return m.SetRemote(ctx, dir, url)
}

func (m *MemClient) SetRemote(ctx context.Context, dir, url string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Remotes[dir] = url
	return nil
}

func (m *MemClient) Stage(ctx context.Context, dir string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staged = true
	return nil
}

func (m *MemClient) Commit(ctx context.Context, dir, message string) (bool, error) {
	if m.FailWith != nil {
		return false, m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tree, err := snapshotDir(dir)
	if err != nil {
		return false, err
	}
	if m.head != "" && sameTree(m.Revisions[m.head], tree) {
		m.staged = false
		return false, nil
	}
	m.counter++
	rev := fmt.Sprintf("c%d", m.counter)
	m.Revisions[rev] = tree
	m.head = rev
	m.staged = false
	m.Log = append(m.Log, message)
	return true, nil
}

func (m *MemClient) Head(ctx context.Context, dir string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.head == "" {
		return "", fmt.Errorf("no commits in %s", dir)
	}
	return m.head, nil
}

func (m *MemClient) Fetch(ctx context.Context, dir string) error {
	return m.FailWith
}

func (m *MemClient) Push(ctx context.Context, dir string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Remotes[dir]; !ok {
		return fmt.Errorf("no remote configured for %s", dir)
	}
	return nil
}

func (m *MemClient) Divergence(ctx context.Context, dir, remoteRef string) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	remote, ok := m.RemoteRefs[remoteRef]
	if !ok || remote == m.head {
		return 0, 0, nil
	}
	base := m.Bases[m.head+".."+remote]
	switch base {
	case m.head:
		return 0, 1, nil
	case remote:
		return 1, 0, nil
	default:
		return 1, 1, nil
	}
}

func (m *MemClient) MergeBase(ctx context.Context, dir, a, b string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ra, rb := m.refRev(a), m.refRev(b)
	if base, ok := m.Bases[ra+".."+rb]; ok {
		return base, nil
	}
	if base, ok := m.Bases[rb+".."+ra]; ok {
		return base, nil
	}
	return "", fmt.Errorf("no merge base recorded for %s and %s", a, b)
}

// refRev maps a remote ref name to its revision; revisions pass through.
func (m *MemClient) refRev(ref string) string {
	if rev, ok := m.RemoteRefs[ref]; ok {
		return rev
	}
	return ref
}

func (m *MemClient) BeginMerge(ctx context.Context, dir, ref string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	return nil
}

func (m *MemClient) FastForward(ctx context.Context, dir, ref string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	rev, ok := m.RemoteRefs[ref]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("unknown ref %s", ref)
	}
	tree := m.Revisions[rev]
	m.head = rev
	m.mu.Unlock()
	return restoreTree(dir, tree)
}

func (m *MemClient) ListFiles(ctx context.Context, dir, rev, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tree, ok := m.resolve(rev)
	if !ok {
		return nil, fmt.Errorf("unknown revision %s", rev)
	}
	var paths []string
	for p := range tree {
		if prefix == "" || strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (m *MemClient) ReadFile(ctx context.Context, dir, rev, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tree, ok := m.resolve(rev)
	if !ok {
		return nil, fmt.Errorf("unknown revision %s", rev)
	}
	content, ok := tree[path]
	if !ok {
		return nil, fmt.Errorf("%s not in revision %s", path, rev)
	}
	return []byte(content), nil
}

// SetRemoteState installs a fetched remote ref pointing at a tree, for
// driving pull and divergence scenarios.
func (m *MemClient) SetRemoteState(ref string, tree map[string]string, mergeBaseWithHead string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	rev := fmt.Sprintf("r%d", m.counter)
	m.Revisions[rev] = tree
	m.RemoteRefs[ref] = rev
	if mergeBaseWithHead != "" {
		m.Bases[m.head+".."+rev] = mergeBaseWithHead
	}
}

// resolve treats a ref name as either a revision or a remote ref.
func (m *MemClient) resolve(rev string) (map[string]string, bool) {
	if tree, ok := m.Revisions[rev]; ok {
		return tree, true
	}
	if r, ok := m.RemoteRefs[rev]; ok {
		tree, ok := m.Revisions[r]
		return tree, ok
	}
	return nil, false
}

func snapshotDir(dir string) (map[string]string, error) {
	tree := map[string]string{}
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		tree[filepath.ToSlash(rel)] = string(content)
		return nil
	})
	if os.IsNotExist(err) {
		return tree, nil
	}
	return tree, err
}

func restoreTree(dir string, tree map[string]string) error {
	for rel, content := range tree {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func sameTree(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
