package gitx

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ExecClient drives the system git binary. All network and locking behavior
// is git's own; polyrc only orchestrates.
type ExecClient struct {
	// Remote is the remote name used for fetch/push. Defaults to origin.
	Remote string
}

// NewExecClient returns a Client backed by the git binary.
func NewExecClient() *ExecClient {
	return &ExecClient{Remote: "origin"}
}

func (c *ExecClient) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	text := strings.TrimSpace(string(out))
	if err != nil {
		if strings.Contains(text, "index.lock") || (strings.Contains(text, "Unable to create") && strings.Contains(text, ".lock")) {
			return "", &LockError{Dir: dir, Err: fmt.Errorf("git %s: %s", args[0], text)}
		}
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), text)
	}
	return text, nil
}

func (c *ExecClient) Init(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	_, err := c.run(ctx, dir, "init")
	return err
}

func (c *ExecClient) Clone(ctx context.Context, url, dir string) error {
	// Already a repo: just re-point the remote (idempotent re-init).
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return c.SetRemote(ctx, dir, url)
	}
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", parent, err)
	}
	_, err := c.run(ctx, parent, "clone", url, dir)
	return err
}

func (c *ExecClient) SetRemote(ctx context.Context, dir, url string) error {
	if _, err := c.run(ctx, dir, "remote", "set-url", c.Remote, url); err != nil {
		_, err = c.run(ctx, dir, "remote", "add", c.Remote, url)
		return err
	}
	return nil
}

func (c *ExecClient) Stage(ctx context.Context, dir string) error {
	_, err := c.run(ctx, dir, "add", "-A")
	return err
}

func (c *ExecClient) Commit(ctx context.Context, dir, message string) (bool, error) {
	status, err := c.run(ctx, dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	merging := c.mergeInProgress(dir)
	if status == "" && !merging {
		return false, nil
	}
	args := []string{"commit", "-m", message}
	if status == "" {
		// An in-progress merge must be concluded even when the reconciled
		// tree came out identical to HEAD, or MERGE_HEAD dangles.
		args = append(args, "--allow-empty")
	}
	if _, err := c.run(ctx, dir, args...); err != nil {
		return false, err
	}
	return true, nil
}

func (c *ExecClient) mergeInProgress(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git", "MERGE_HEAD"))
	return err == nil
}

func (c *ExecClient) Head(ctx context.Context, dir string) (string, error) {
	return c.run(ctx, dir, "rev-parse", "HEAD")
}

func (c *ExecClient) Fetch(ctx context.Context, dir string) error {
	_, err := c.run(ctx, dir, "fetch", c.Remote)
	return err
}

func (c *ExecClient) Push(ctx context.Context, dir string) error {
	// --set-upstream works both for the first push to an empty remote and
	// for every push after.
	_, err := c.run(ctx, dir, "push", "--set-upstream", c.Remote, "HEAD")
	return err
}

func (c *ExecClient) Divergence(ctx context.Context, dir, remoteRef string) (int, int, error) {
	// Remote branch may not exist yet (empty remote); that is zero both ways.
	if _, err := c.run(ctx, dir, "rev-parse", "--verify", remoteRef); err != nil {
		return 0, 0, nil
	}
	out, err := c.run(ctx, dir, "rev-list", "--left-right", "--count", "HEAD..."+remoteRef)
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q", out)
	}
	ahead, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, err
	}
	behind, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, err
	}
	return ahead, behind, nil
}

func (c *ExecClient) MergeBase(ctx context.Context, dir, a, b string) (string, error) {
	return c.run(ctx, dir, "merge-base", a, b)
}

func (c *ExecClient) BeginMerge(ctx context.Context, dir, ref string) error {
	_, err := c.run(ctx, dir, "merge", "--no-commit", "--no-ff", "-s", "ours", ref)
	return err
}

func (c *ExecClient) FastForward(ctx context.Context, dir, ref string) error {
	_, err := c.run(ctx, dir, "merge", "--ff-only", ref)
	return err
}

func (c *ExecClient) ListFiles(ctx context.Context, dir, rev, prefix string) ([]string, error) {
	args := []string{"ls-tree", "-r", "--name-only", rev}
	if prefix != "" {
		args = append(args, "--", prefix)
	}
	out, err := c.run(ctx, dir, args...)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

func (c *ExecClient) ReadFile(ctx context.Context, dir, rev, path string) ([]byte, error) {
	// Bypass run so file bytes come through untrimmed.
	cmd := exec.CommandContext(ctx, "git", "show", rev+":"+path)
	cmd.Dir = dir
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git show %s:%s: %s", rev, path, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}
