// Package gitsource obtains a working copy of the Salt source tree at a
// requested revision for source-control installs. An existing checkout
// is updated in place; a missing one is cloned, shallow when the
// revision looks like a release tag and the transport allows it.
package gitsource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultUpstreamURL is the canonical Salt repository. Tags fetched
	// from here resolve version-derived revisions even when the clone
	// came from a fork.
	DefaultUpstreamURL = "https://github.com/saltstack/salt.git"

	// DefaultRev is the revision checked out when none is requested.
	DefaultRev = "master"

	upstreamRemote = "upstream"
	originRemote   = "origin"
)

// Options configures source retrieval.
type Options struct {
	// URL is the repository to clone from. Defaults to DefaultUpstreamURL.
	URL string

	// UpstreamURL is the canonical repository whose tags must resolve.
	// Defaults to DefaultUpstreamURL.
	UpstreamURL string

	// Rev is the tag, branch, or commit to check out. Defaults to DefaultRev.
	Rev string

	// Dir is the checkout directory. Required.
	Dir string

	// Depth is the history depth for shallow clones. Zero means 1.
	Depth int

	// ForceShallow attempts the shallow path even when the revision
	// does not look like a release tag.
	ForceShallow bool
}

func (o *Options) applyDefaults() {
	if o.URL == "" {
		o.URL = DefaultUpstreamURL
	}
	if o.UpstreamURL == "" {
		o.UpstreamURL = DefaultUpstreamURL
	}
	if o.Rev == "" {
		o.Rev = DefaultRev
	}
	if o.Depth == 0 {
		o.Depth = 1
	}
}

// State describes the working copy after retrieval.
type State struct {
	// Dir is the checkout directory.
	Dir string

	// Rev is the requested revision.
	Rev string

	// Hash is the commit the working copy ended up on.
	Hash string

	// Cloned is true when the checkout was created by this run, false
	// when an existing one was updated.
	Cloned bool

	// Shallow is true when the checkout holds single-revision history.
	Shallow bool
}

// Ensure brings the checkout directory to the requested revision,
// cloning or updating as needed.
func Ensure(ctx context.Context, opts Options) (*State, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("checkout directory is required")
	}
	opts.applyDefaults()

	if _, err := os.Stat(filepath.Join(opts.Dir, ".git")); err == nil {
		return update(ctx, opts)
	}
	return clone(ctx, opts)
}

// update refreshes an existing checkout. Any failure here is fatal; the
// working copy is left in place for inspection.
func update(ctx context.Context, opts Options) (*State, error) {
	log.Info().Str("dir", opts.Dir).Str("rev", opts.Rev).Msg("Updating existing source checkout")

	repo, err := git.PlainOpen(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkout %s: %w", opts.Dir, err)
	}

	// Step 1: fetch changes and tags from the clone remote.
	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: originRemote,
		Tags:       git.AllTags,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil, fmt.Errorf("failed to fetch %s: %w", originRemote, err)
	}

	// Step 2: make sure the canonical repository's tags are present.
	if err := ensureUpstreamTags(ctx, repo, opts); err != nil {
		return nil, err
	}

	// Step 3: hard-reset the working copy to the requested revision.
	hash, err := resolveRev(repo, opts.Rev)
	if err != nil {
		return nil, err
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := worktree.Reset(&git.ResetOptions{Commit: *hash, Mode: git.HardReset}); err != nil {
		return nil, fmt.Errorf("failed to reset to %s: %w", opts.Rev, err)
	}

	// Step 4: a reset does not advance a branch to its upstream tip, so
	// branch revisions additionally need a fast-forward pull.
	if remoteBranchExists(repo, opts.Rev) {
		if err := checkoutBranch(repo, worktree, opts.Rev); err != nil {
			return nil, err
		}
		err = worktree.PullContext(ctx, &git.PullOptions{
			RemoteName:    originRemote,
			ReferenceName: plumbing.NewBranchReferenceName(opts.Rev),
		})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil, fmt.Errorf("failed to pull branch %s: %w", opts.Rev, err)
		}
	}

	return headState(repo, opts, false, false)
}

// clone creates a fresh checkout. Release tags on shallow-capable
// transports get a single-revision clone first; if that fails (the tag
// may be missing from the remote, or the server may refuse depth
// requests) the partial directory is discarded and a full clone runs.
func clone(ctx context.Context, opts Options) (*State, error) {
	if (opts.ForceShallow || IsReleaseTag(opts.Rev)) && SupportsShallow(opts.URL) {
		log.Info().Str("rev", opts.Rev).Int("depth", opts.Depth).Msg("Revision looks like a release tag, attempting shallow clone")
		repo, err := git.PlainCloneContext(ctx, opts.Dir, false, &git.CloneOptions{
			URL:           opts.URL,
			Depth:         opts.Depth,
			ReferenceName: plumbing.NewTagReferenceName(opts.Rev),
			SingleBranch:  true,
			Tags:          git.NoTags,
		})
		if err == nil {
			return headState(repo, opts, true, true)
		}

		log.Warn().Err(err).Msg("Shallow clone failed, falling back to full clone")
		if err := os.RemoveAll(opts.Dir); err != nil {
			return nil, fmt.Errorf("failed to remove partial checkout: %w", err)
		}
	}

	log.Info().Str("url", opts.URL).Str("rev", opts.Rev).Msg("Cloning source repository")
	repo, err := git.PlainCloneContext(ctx, opts.Dir, false, &git.CloneOptions{
		URL:  opts.URL,
		Tags: git.AllTags,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone %s: %w", opts.URL, err)
	}

	if err := ensureUpstreamTags(ctx, repo, opts); err != nil {
		return nil, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	if remoteBranchExists(repo, opts.Rev) {
		if err := checkoutBranch(repo, worktree, opts.Rev); err != nil {
			return nil, err
		}
	} else {
		hash, err := resolveRev(repo, opts.Rev)
		if err != nil {
			return nil, err
		}
		if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash}); err != nil {
			return nil, fmt.Errorf("failed to check out %s: %w", opts.Rev, err)
		}
	}

	return headState(repo, opts, true, false)
}

// ensureUpstreamTags registers the canonical repository as a secondary
// remote and fetches its tags, unless the clone already came from the
// canonical URL.
func ensureUpstreamTags(ctx context.Context, repo *git.Repository, opts Options) error {
	if opts.URL == opts.UpstreamURL {
		return nil
	}

	_, err := repo.Remote(upstreamRemote)
	if errors.Is(err, git.ErrRemoteNotFound) {
		log.Info().Str("url", opts.UpstreamURL).Msg("Adding canonical repository as upstream remote")
		_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
			Name: upstreamRemote,
			URLs: []string{opts.UpstreamURL},
		})
	}
	if err != nil {
		return fmt.Errorf("failed to configure upstream remote: %w", err)
	}

	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: upstreamRemote,
		Tags:       git.AllTags,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to fetch upstream tags: %w", err)
	}
	return nil
}

// resolveRev resolves a revision string against local refs first, then
// against the clone remote's refs.
func resolveRev(repo *git.Repository, rev string) (*plumbing.Hash, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err == nil {
		return hash, nil
	}
	hash, remoteErr := repo.ResolveRevision(plumbing.Revision(originRemote + "/" + rev))
	if remoteErr == nil {
		return hash, nil
	}
	return nil, fmt.Errorf("failed to resolve revision %s: %w", rev, err)
}

func remoteBranchExists(repo *git.Repository, rev string) bool {
	_, err := repo.Reference(plumbing.NewRemoteReferenceName(originRemote, rev), true)
	return err == nil
}

// checkoutBranch puts the worktree on a local branch of the given name,
// creating it from the remote branch when it does not exist yet.
func checkoutBranch(repo *git.Repository, worktree *git.Worktree, rev string) error {
	branch := plumbing.NewBranchReferenceName(rev)
	err := worktree.Checkout(&git.CheckoutOptions{Branch: branch})
	if err == nil {
		return nil
	}

	remoteRef, refErr := repo.Reference(plumbing.NewRemoteReferenceName(originRemote, rev), true)
	if refErr != nil {
		return fmt.Errorf("failed to check out branch %s: %w", rev, err)
	}
	err = worktree.Checkout(&git.CheckoutOptions{
		Branch: branch,
		Hash:   remoteRef.Hash(),
		Create: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create branch %s: %w", rev, err)
	}
	return nil
}

func headState(repo *git.Repository, opts Options, cloned, shallow bool) (*State, error) {
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to read HEAD: %w", err)
	}
	log.Info().Str("rev", opts.Rev).Str("commit", head.Hash().String()).Msg("Source checkout ready")
	return &State{
		Dir:     opts.Dir,
		Rev:     opts.Rev,
		Hash:    head.Hash().String(),
		Cloned:  cloned,
		Shallow: shallow,
	}, nil
}
