// Package gitrepo drives a single local git working copy via the git CLI.
package gitrepo

import (
	"log"
	"os/exec"

	"github.com/evanmh/activitybot/internal/domain"
)

// Client runs git commands against one working copy. The caller owns the
// working-tree state for the duration of a run; Client does no locking.
type Client struct {
	dir   string
	debug bool
}

// New creates a Client for the repository at dir
func New(dir string, debug bool) *Client {
	return &Client{dir: dir, debug: debug}
}

// Dir returns the working copy path
func (c *Client) Dir() string { return c.dir }

func (c *Client) run(args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = c.dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		if c.debug {
			log.Printf("git %v failed: %s", args, out)
		}
		return &domain.VCSError{Args: args, Output: string(out), Err: err}
	}
	return nil
}

// Checkout switches to an existing branch
func (c *Client) Checkout(branch string) error {
	return c.run("checkout", branch)
}

// Pull updates a branch from its remote counterpart
func (c *Client) Pull(remote, branch string) error {
	return c.run("pull", remote, branch)
}

// CreateBranch creates a new branch and switches to it
func (c *Client) CreateBranch(name string) error {
	return c.run("checkout", "-b", name)
}

// AddAll stages every working-tree change
func (c *Client) AddAll() error {
	return c.run("add", ".")
}

// Commit records the staged changes. Committing with nothing staged fails;
// that failure is surfaced, not swallowed.
func (c *Client) Commit(message string) error {
	return c.run("commit", "-m", message)
}

// Push publishes a branch to origin, optionally establishing tracking
func (c *Client) Push(branch string, setUpstream bool) error {
	if setUpstream {
		return c.run("push", "--set-upstream", "origin", branch)
	}
	return c.run("push", "origin", branch)
}

// DeleteBranch removes a local branch. Force delete: after a squash merge
// upstream, the branch never shows as merged to the local primary branch.
func (c *Client) DeleteBranch(name string) error {
	return c.run("branch", "-D", name)
}

// DeleteRemoteBranch removes a branch on origin
func (c *Client) DeleteRemoteBranch(name string) error {
	return c.run("push", "origin", "--delete", name)
}
