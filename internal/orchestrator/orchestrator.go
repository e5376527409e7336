// Package orchestrator drives a single bot run end to end: branch, mutate,
// commit, push, open a pull request, wait, merge, clean up.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/evanmh/activitybot/internal/config"
	"github.com/evanmh/activitybot/internal/domain"
	"github.com/evanmh/activitybot/internal/mutate"
)

const preMergeDelay = 30 * time.Second

// VCS is the local version-control collaborator
type VCS interface {
	Checkout(branch string) error
	Pull(remote, branch string) error
	CreateBranch(name string) error
	AddAll() error
	Commit(message string) error
	Push(branch string, setUpstream bool) error
	DeleteBranch(name string) error
	DeleteRemoteBranch(name string) error
}

// Host is the hosting-API collaborator
type Host interface {
	CreatePullRequest(ctx context.Context, title, head, base, body string) (*domain.PullRequest, error)
	MergePullRequest(ctx context.Context, number int, title string) error
}

// Orchestrator owns the working copy for the duration of each run and
// executes the stage sequence with fail-fast propagation. There is no retry
// inside a run; the next scheduled invocation is the retry mechanism.
type Orchestrator struct {
	cfg  *config.Config
	vcs  VCS
	host Host

	// Rand feeds every random decision of a run (file count, file choice,
	// line edits, wait duration) so tests can replay exact selections.
	Rand *rand.Rand
	// Sleep is the suspension primitive for the waiting stage and the
	// pre-merge delay. Tests replace it to avoid real sleeps.
	Sleep func(time.Duration)
	// Now supplies timestamps for branch names, commit text and outcomes
	Now func() time.Time
	// OnEvent, when set, receives stage transitions for the status surface
	OnEvent func(stage domain.Stage, message string)
}

// New creates an Orchestrator with production defaults
func New(cfg *config.Config, vcs VCS, host Host) *Orchestrator {
	return &Orchestrator{
		cfg:   cfg,
		vcs:   vcs,
		host:  host,
		Rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
		Sleep: time.Sleep,
		Now:   time.Now,
	}
}

// RunOnce executes the full pipeline once. Any stage failure aborts the
// remaining stages; the outcome carries the stage that failed. No partial-run
// compensation happens on failure: an orphaned branch or open PR is left for
// the operator.
func (o *Orchestrator) RunOnce(ctx context.Context) domain.RunOutcome {
	out := domain.RunOutcome{
		ID:        uuid.NewString(),
		StartedAt: o.Now(),
	}
	log.Printf("run %s: starting at %s", out.ID, out.StartedAt.Format(time.RFC3339))

	// BRANCHING
	o.enter(&out, domain.StageBranching, "resolving primary branch")
	primary, err := o.resolvePrimaryBranch()
	if err != nil {
		return o.fail(out, err)
	}
	if err := o.vcs.Pull("origin", primary); err != nil {
		return o.fail(out, err)
	}
	branch := fmt.Sprintf("bot-update-%d", o.Now().Unix())
	if err := o.vcs.CreateBranch(branch); err != nil {
		return o.fail(out, err)
	}
	out.Branch = branch

	// MUTATING
	o.enter(&out, domain.StageMutating, "selecting and editing files")
	changed, err := o.mutateWorkingTree(branch)
	if err != nil {
		return o.fail(out, err)
	}
	out.FilesChanged = changed

	// COMMITTING
	o.enter(&out, domain.StageCommitting, fmt.Sprintf("committing %d files", changed))
	if err := o.vcs.AddAll(); err != nil {
		return o.fail(out, err)
	}
	if err := o.vcs.Commit(fmt.Sprintf("Update %d files", changed)); err != nil {
		return o.fail(out, err)
	}

	// PUSHING
	o.enter(&out, domain.StagePushing, "publishing branch "+branch)
	if err := o.vcs.Push(branch, true); err != nil {
		return o.fail(out, err)
	}

	// REQUESTING
	o.enter(&out, domain.StageRequesting, "opening pull request")
	title := "Bot update " + o.Now().Format("2006-01-02 15:04:05")
	body := fmt.Sprintf("Automated update created by the activity bot.\n\nTimestamp: %s",
		o.Now().Format(time.RFC3339))
	pr, err := o.host.CreatePullRequest(ctx, title, branch, primary, body)
	if err != nil {
		return o.fail(out, err)
	}
	if pr == nil || pr.Number == 0 {
		return o.fail(out, fmt.Errorf("host returned an empty pull request handle"))
	}
	out.PRNumber = pr.Number
	out.PRURL = pr.URL
	log.Printf("run %s: opened PR #%d (%s)", out.ID, pr.Number, pr.URL)

	// WAITING: a pure scheduling delay simulating review latency, not a poll
	wait := time.Duration(60+o.Rand.Intn(120)) * time.Second
	o.enter(&out, domain.StageWaiting, fmt.Sprintf("waiting %s before merge", wait))
	o.Sleep(wait)

	// MERGING. Review approval is an explicit no-op: the reviewer-identity
	// API path is unreliable in this operating environment, so no approval
	// record ever exists.
	o.enter(&out, domain.StageMerging, fmt.Sprintf("merging PR #%d", pr.Number))
	log.Printf("run %s: skipping review approval for PR #%d", out.ID, pr.Number)
	o.Sleep(preMergeDelay)
	if err := o.host.MergePullRequest(ctx, pr.Number, fmt.Sprintf("Merge bot update #%d", pr.Number)); err != nil {
		return o.fail(out, err)
	}

	// CLEANING_UP. A deletion failure is reported, but the merge is already
	// durable upstream and is never reverted.
	o.enter(&out, domain.StageCleaningUp, "deleting branch "+branch)
	if err := o.vcs.Checkout(primary); err != nil {
		return o.fail(out, err)
	}
	if err := o.vcs.DeleteBranch(branch); err != nil {
		return o.fail(out, err)
	}
	if err := o.vcs.DeleteRemoteBranch(branch); err != nil {
		return o.fail(out, err)
	}

	out.FinishedAt = o.Now()
	log.Printf("run %s: completed at %s", out.ID, out.FinishedAt.Format(time.RFC3339))
	return out
}

// resolvePrimaryBranch prefers main, falls back to master, and fails if
// neither exists. Every code path shares this one rule.
func (o *Orchestrator) resolvePrimaryBranch() (string, error) {
	if err := o.vcs.Checkout("main"); err == nil {
		return "main", nil
	}
	if err := o.vcs.Checkout("master"); err != nil {
		return "", fmt.Errorf("neither main nor master exists: %w", err)
	}
	return "master", nil
}

// mutateWorkingTree discovers candidates, seeds defaults when the repository
// has no eligible files, and applies randomized edits to the chosen targets.
// Returns the number of files touched.
func (o *Orchestrator) mutateWorkingTree(branch string) (int, error) {
	globs, err := mutate.CompileIgnore(o.cfg.Ignore)
	if err != nil {
		return 0, err
	}
	opts := mutate.WalkOptions{Extensions: o.cfg.ExtensionList(), Ignore: globs}

	candidates, err := mutate.Candidates(o.cfg.RepoPath, opts)
	if err != nil {
		return 0, err
	}

	if len(candidates) == 0 {
		// Recovery path, not silent success: seed a default file set and
		// persist it with its own commit and push so the repository is never
		// left without trackable files.
		log.Printf("no candidate files found, seeding defaults")
		seeded, err := mutate.SeedDefaults(o.cfg.RepoPath)
		if err != nil {
			return 0, err
		}
		if err := o.vcs.AddAll(); err != nil {
			return 0, err
		}
		if err := o.vcs.Commit("Add initial files"); err != nil {
			return 0, err
		}
		if err := o.vcs.Push(branch, true); err != nil {
			return 0, err
		}
		log.Printf("seeded %d default files", len(seeded))

		candidates, err = mutate.Candidates(o.cfg.RepoPath, opts)
		if err != nil {
			return 0, err
		}
	}

	engine := mutate.NewEngine(o.cfg.RepoPath, o.Rand, o.cfg.Debug)
	targets := engine.SelectTargets(candidates, o.cfg.MinFiles, o.cfg.MaxFiles)
	for _, target := range targets {
		if err := engine.Mutate(target, o.cfg.MinLines, o.cfg.MaxLines); err != nil {
			return 0, err
		}
		if o.cfg.Debug {
			log.Printf("mutated %s", target)
		}
	}

	return len(targets), nil
}

func (o *Orchestrator) enter(out *domain.RunOutcome, stage domain.Stage, message string) {
	out.Stage = stage
	if o.cfg.Debug {
		log.Printf("run %s: %s: %s", out.ID, stage, message)
	}
	if o.OnEvent != nil {
		o.OnEvent(stage, message)
	}
}

func (o *Orchestrator) fail(out domain.RunOutcome, err error) domain.RunOutcome {
	out.Err = &domain.StageError{Stage: out.Stage, Err: err}
	out.FinishedAt = o.Now()
	log.Printf("run %s: %v", out.ID, out.Err)
	return out
}
