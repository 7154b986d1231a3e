package corpus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/go-github/v77/github"
)

// ReleaseSource loads corpus files from the latest GitHub release of a
// corpus repository. Release assets that look like corpus files (.json,
// .txt, .md) are downloaded and parsed; the release tag becomes the corpus
// version.
type ReleaseSource struct {
	client  *github.Client
	http    *http.Client
	owner   string
	repo    string
	version string
}

// NewReleaseSource creates a source over a GitHub repository's releases.
// Token may be empty for public repositories.
func NewReleaseSource(owner, repo, token string) *ReleaseSource {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &ReleaseSource{
		client: client,
		http:   http.DefaultClient,
		owner:  owner,
		repo:   repo,
	}
}

// Fetch resolves the latest release and downloads its corpus assets.
func (s *ReleaseSource) Fetch(ctx context.Context) ([]Document, error) {
	release, _, err := s.client.Repositories.GetLatestRelease(ctx, s.owner, s.repo)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve latest release of %s/%s: %w", s.owner, s.repo, err)
	}
	s.version = release.GetTagName()

	var docs []Document
	for _, asset := range release.Assets {
		name := asset.GetName()
		if !isCorpusFile(name) {
			continue
		}

		data, err := s.downloadAsset(ctx, asset.GetBrowserDownloadURL())
		if err != nil {
			return nil, fmt.Errorf("failed to download asset %s: %w", name, err)
		}

		doc, err := ParseDocument(name, data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w in release %s of %s/%s", ErrNoDocuments, s.version, s.owner, s.repo)
	}
	return docs, nil
}

// Version returns the release tag resolved by the last Fetch.
func (s *ReleaseSource) Version() string {
	return s.version
}

func (s *ReleaseSource) downloadAsset(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// ParseOwnerRepo splits "owner/repo" into its parts.
func ParseOwnerRepo(s string) (owner, repo string, err error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("expected owner/repo, got %q", s)
	}
	return parts[0], parts[1], nil
}
