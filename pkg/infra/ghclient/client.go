package ghclient

import (
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v53/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repogov/pkg/domain/interfaces"
	"github.com/secmon-lab/repogov/pkg/domain/types"
)

// Client fetches repository facts for one GitHub organization using
// GitHub App installation credentials.
type Client struct {
	org       string
	appID     types.GitHubAppID
	installID types.GitHubAppInstallID
	pem       types.GitHubAppPrivateKey

	github      *github.Client
	cache       interfaces.Cache
	concurrency int
	ignoreTeams map[string]struct{}
}

var _ interfaces.GitHubClient = (*Client)(nil)

type Option func(*Client)

// WithCache sets the TTL cache for expensive listings. Without it, every
// sync hits the API directly.
func WithCache(c interfaces.Cache) Option {
	return func(x *Client) {
		x.cache = c
	}
}

// WithConcurrency bounds the per-repository fact-fetching worker pool.
func WithConcurrency(n int) Option {
	return func(x *Client) {
		if n > 0 {
			x.concurrency = n
		}
	}
}

// WithIgnoreTeams excludes the named teams from access classification,
// e.g. org-wide audit teams that hold access everywhere.
func WithIgnoreTeams(teams []string) Option {
	return func(x *Client) {
		for _, team := range teams {
			x.ignoreTeams[team] = struct{}{}
		}
	}
}

func New(org string, appID types.GitHubAppID, installID types.GitHubAppInstallID, pem types.GitHubAppPrivateKey, options ...Option) (*Client, error) {
	if org == "" {
		return nil, goerr.Wrap(types.ErrInvalidOption, "org is empty")
	}
	if appID == 0 {
		return nil, goerr.Wrap(types.ErrInvalidOption, "appID is empty")
	}
	if installID == 0 {
		return nil, goerr.Wrap(types.ErrInvalidOption, "installID is empty")
	}
	if pem == "" {
		return nil, goerr.Wrap(types.ErrInvalidOption, "pem is empty")
	}

	itr, err := ghinstallation.New(http.DefaultTransport, int64(appID), int64(installID), []byte(pem))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create installation transport")
	}

	client := &Client{
		org:         org,
		appID:       appID,
		installID:   installID,
		pem:         pem,
		github:      github.NewClient(&http.Client{Transport: itr}),
		concurrency: 8,
		ignoreTeams: map[string]struct{}{},
	}

	for _, opt := range options {
		opt(client)
	}

	return client, nil
}
