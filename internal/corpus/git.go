package corpus

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/storage/memory"
)

// GitSource loads corpus files from a git repository: a local path opened in
// place, or a remote URL cloned into memory. The HEAD short hash becomes the
// corpus version.
type GitSource struct {
	location string
	version  string
}

// NewGitSource creates a source over a local repository path or remote URL.
func NewGitSource(location string) *GitSource {
	return &GitSource{location: location}
}

// Fetch opens or clones the repository and walks the HEAD tree for corpus
// files.
func (s *GitSource) Fetch(ctx context.Context) ([]Document, error) {
	repo, err := git.PlainOpen(s.location)
	if err != nil {
		// Not a local repository: clone from the remote URL into memory.
		repo, err = git.Clone(memory.NewStorage(), nil, &git.CloneOptions{
			URL: s.location,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open or clone corpus repository %s: %w", s.location, err)
		}
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	s.version = head.Hash().String()[:8]

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to load HEAD commit: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load HEAD tree: %w", err)
	}

	var docs []Document
	err = tree.Files().ForEach(func(file *object.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !isCorpusFile(file.Name) {
			return nil
		}

		contents, err := file.Contents()
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file.Name, err)
		}

		doc, err := ParseDocument(file.Name, []byte(contents))
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk corpus tree: %w", err)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w in repository %s", ErrNoDocuments, s.location)
	}
	return docs, nil
}

// Version returns the HEAD short hash resolved by the last Fetch.
func (s *GitSource) Version() string {
	return s.version
}
