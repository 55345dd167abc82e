package ghclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/google/go-github/v53/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repogov/pkg/domain/model"
	"github.com/secmon-lab/repogov/pkg/infra/cache"
	"github.com/secmon-lab/repogov/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

const (
	cacheKeyRepositories = "github/repositories"
	cacheKeyTeamParents  = "github/team-parents/"
)

// ListRepositoryFacts snapshots every active public repository of the
// organization. Archived repositories and forks are excluded. A repository
// whose detail calls fail is logged and skipped so one broken repository
// does not abort the whole sweep.
func (x *Client) ListRepositoryFacts(ctx context.Context) ([]*model.RepositoryFacts, error) {
	repos, err := x.listRepositories(ctx)
	if err != nil {
		return nil, err
	}

	facts := make([]*model.RepositoryFacts, len(repos))

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(x.concurrency)
	for i, repo := range repos {
		grp.Go(func() error {
			got, err := x.buildRepositoryFacts(grpCtx, repo)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				logging.From(grpCtx).Warn("failed to fetch repository detail, skipping",
					"repo", repo.Basic.Name,
					"error", err,
				)
				return nil
			}
			facts[i] = got
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	results := make([]*model.RepositoryFacts, 0, len(facts))
	for _, f := range facts {
		if f != nil {
			results = append(results, f)
		}
	}

	return results, nil
}

// repoListing is the cacheable subset of the organization repository list.
// Everything here comes from the bulk listing call; detail endpoints fill
// in the rest per repository.
type repoListing struct {
	Basic    model.BasicFacts    `json:"basic"`
	Security model.SecurityFacts `json:"security"`
}

func (x *Client) listRepositories(ctx context.Context) ([]*repoListing, error) {
	if data, ok := x.cacheGet(ctx, cacheKeyRepositories); ok {
		var cached []*repoListing
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		logging.From(ctx).Warn("broken repository listing cache, refetching")
	}

	var listings []*repoListing
	opts := &github.RepositoryListByOrgOptions{
		Type:        "public",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		var repos []*github.Repository
		var resp *github.Response
		err := withRateLimitRetry(ctx, func() error {
			var err error
			repos, resp, err = x.github.Repositories.ListByOrg(ctx, x.org, opts)
			return err
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list organization repositories", goerr.V("org", x.org))
		}

		for _, repo := range repos {
			if repo.GetArchived() || repo.GetFork() {
				continue
			}
			listings = append(listings, newRepoListing(repo))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	x.cachePut(ctx, cacheKeyRepositories, listings, cache.TTLBulkListing)

	return listings, nil
}

func newRepoListing(repo *github.Repository) *repoListing {
	listing := &repoListing{
		Basic: model.BasicFacts{
			Name:              repo.GetName(),
			Visibility:        repo.GetVisibility(),
			Description:       repo.Description,
			DefaultBranchName: repo.GetDefaultBranch(),
		},
	}
	if repo.License != nil {
		listing.Basic.License = repo.License.Key
	}
	if repo.DeleteBranchOnMerge != nil {
		listing.Basic.DeleteBranchOnMerge = repo.DeleteBranchOnMerge
	}

	if sec := repo.SecurityAndAnalysis; sec != nil {
		if s := sec.SecretScanning; s != nil {
			listing.Security.SecretScanningStatus = s.Status
		}
		if s := sec.SecretScanningPushProtection; s != nil {
			listing.Security.PushProtectionStatus = s.Status
		}
		if s := sec.AdvancedSecurity; s != nil {
			listing.Security.AdvancedSecurity = s.Status
		}
	}

	return listing
}

func (x *Client) buildRepositoryFacts(ctx context.Context, listing *repoListing) (*model.RepositoryFacts, error) {
	access, err := x.getAccessFacts(ctx, listing.Basic.Name)
	if err != nil {
		return nil, err
	}

	protection, err := x.getBranchProtection(ctx, listing.Basic.Name, listing.Basic.DefaultBranchName)
	if err != nil {
		return nil, err
	}

	ruleset, err := x.getBranchRuleset(ctx, listing.Basic.Name, listing.Basic.DefaultBranchName)
	if err != nil {
		return nil, err
	}

	return &model.RepositoryFacts{
		Basic:                   listing.Basic,
		Access:                  *access,
		SecurityAndAnalysis:     listing.Security,
		DefaultBranchProtection: *protection,
		DefaultBranchRuleset:    *ruleset,
	}, nil
}

func (x *Client) getAccessFacts(ctx context.Context, repoName string) (*model.AccessFacts, error) {
	var teams []*github.Team
	opts := &github.ListOptions{PerPage: 100}
	for {
		var page []*github.Team
		var resp *github.Response
		err := withRateLimitRetry(ctx, func() error {
			var err error
			page, resp, err = x.github.Repositories.ListTeams(ctx, x.org, repoName, opts)
			return err
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list repository teams", goerr.V("repo", repoName))
		}

		teams = append(teams, page...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	access := &model.AccessFacts{}
	for _, team := range teams {
		name := team.GetName()
		if _, ignored := x.ignoreTeams[name]; ignored {
			continue
		}

		parents, err := x.getTeamAncestors(ctx, team.GetSlug())
		if err != nil {
			return nil, err
		}

		access.Teams = append(access.Teams, name)
		access.TeamsParents = append(access.TeamsParents, parents...)
		if team.GetPermissions()["admin"] {
			access.TeamsWithAdmin = append(access.TeamsWithAdmin, name)
			access.TeamsWithAdminParents = append(access.TeamsWithAdminParents, parents...)
		}
	}

	access.TeamsParents = uniqueSorted(access.TeamsParents)
	access.TeamsWithAdminParents = uniqueSorted(access.TeamsWithAdminParents)

	return access, nil
}

// getTeamAncestors walks the parent chain of a team and returns ancestor
// team names, nearest first. Results are cached per team since parent
// chains are shared across many repositories.
func (x *Client) getTeamAncestors(ctx context.Context, slug string) ([]string, error) {
	cacheKey := cacheKeyTeamParents + slug
	if data, ok := x.cacheGet(ctx, cacheKey); ok {
		var cached []string
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	var ancestors []string
	current := slug
	for {
		var team *github.Team
		err := withRateLimitRetry(ctx, func() error {
			var err error
			team, _, err = x.github.Teams.GetTeamBySlug(ctx, x.org, current)
			return err
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get team", goerr.V("team", current))
		}

		parent := team.GetParent()
		if parent == nil {
			break
		}
		ancestors = append(ancestors, parent.GetName())
		current = parent.GetSlug()
	}

	x.cachePut(ctx, cacheKey, ancestors, cache.TTLTeamData)

	return ancestors, nil
}

func (x *Client) getBranchProtection(ctx context.Context, repoName, branch string) (*model.BranchProtectionInfo, error) {
	var protection *github.Protection
	err := withRateLimitRetry(ctx, func() error {
		var err error
		protection, _, err = x.github.Repositories.GetBranchProtection(ctx, x.org, repoName, branch)
		return err
	})
	if err != nil {
		if isNotProtected(err) {
			return &model.BranchProtectionInfo{Enabled: github.Bool(false)}, nil
		}
		return nil, goerr.Wrap(err, "failed to get branch protection",
			goerr.V("repo", repoName), goerr.V("branch", branch),
		)
	}

	info := &model.BranchProtectionInfo{Enabled: github.Bool(true)}
	if v := protection.EnforceAdmins; v != nil {
		info.EnforceAdmins = github.Bool(v.Enabled)
	}
	if v := protection.AllowForcePushes; v != nil {
		info.AllowForcePushes = github.Bool(v.Enabled)
	}
	if v := protection.RequiredSignatures; v != nil {
		info.RequiredSignatures = v.Enabled
	}
	if v := protection.RequiredPullRequestReviews; v != nil {
		info.DismissStaleReviews = github.Bool(v.DismissStaleReviews)
		info.RequireCodeOwnerReviews = github.Bool(v.RequireCodeOwnerReviews)
		info.RequireLastPushApproval = github.Bool(v.RequireLastPushApproval)
		info.RequiredApprovingReviewCount = github.Int(v.RequiredApprovingReviewCount)
	}

	return info, nil
}

func isNotProtected(err error) bool {
	if errors.Is(err, github.ErrBranchNotProtected) {
		return true
	}
	var errResp *github.ErrorResponse
	return errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound
}

const (
	ruleTypePullRequest        = "pull_request"
	ruleTypeRequiredSignatures = "required_signatures"
)

// getBranchRuleset reads the rules applied to the default branch and joins
// them with the rulesets they come from, since enforcement mode and bypass
// actors live on the ruleset rather than the rule.
func (x *Client) getBranchRuleset(ctx context.Context, repoName, branch string) (*model.BranchRulesetInfo, error) {
	var rules []*github.RepositoryRule
	err := withRateLimitRetry(ctx, func() error {
		var err error
		rules, _, err = x.github.Repositories.GetRulesForBranch(ctx, x.org, repoName, branch)
		return err
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get branch rules",
			goerr.V("repo", repoName), goerr.V("branch", branch),
		)
	}
	if len(rules) == 0 {
		return &model.BranchRulesetInfo{Enabled: github.Bool(false)}, nil
	}

	info := &model.BranchRulesetInfo{Enabled: github.Bool(true)}
	for _, rule := range rules {
		if rule.Type != ruleTypePullRequest || rule.Parameters == nil {
			continue
		}
		var params github.PullRequestRuleParameters
		if err := json.Unmarshal(*rule.Parameters, &params); err != nil {
			return nil, goerr.Wrap(err, "failed to decode pull_request rule parameters", goerr.V("repo", repoName))
		}
		info.PullRequestRequiredApprovingReviewCount = github.Int(params.RequiredApprovingReviewCount)
		info.PullRequestRequireCodeOwnerReview = github.Bool(params.RequireCodeOwnerReview)
		info.PullRequestDismissStaleReviews = github.Bool(params.DismissStaleReviewsOnPush)
	}

	if err := x.fillRulesetSources(ctx, repoName, info); err != nil {
		return nil, err
	}

	return info, nil
}

// fillRulesetSources looks up which rulesets define the pull_request and
// required_signatures rules and records their enforcement and bypass actor
// counts.
func (x *Client) fillRulesetSources(ctx context.Context, repoName string, info *model.BranchRulesetInfo) error {
	var rulesets []*github.Ruleset
	err := withRateLimitRetry(ctx, func() error {
		var err error
		rulesets, _, err = x.github.Repositories.GetAllRulesets(ctx, x.org, repoName, true)
		return err
	})
	if err != nil {
		return goerr.Wrap(err, "failed to list rulesets", goerr.V("repo", repoName))
	}

	for _, summary := range rulesets {
		var ruleset *github.Ruleset
		err := withRateLimitRetry(ctx, func() error {
			var err error
			ruleset, _, err = x.github.Repositories.GetRuleset(ctx, x.org, repoName, summary.ID, true)
			return err
		})
		if err != nil {
			return goerr.Wrap(err, "failed to get ruleset",
				goerr.V("repo", repoName), goerr.V("ruleset_id", summary.ID),
			)
		}

		for _, rule := range ruleset.Rules {
			switch rule.Type {
			case ruleTypePullRequest:
				info.PullRequestEnforcement = github.String(ruleset.Enforcement)
				info.PullRequestBypassActorsLength = github.Int(len(ruleset.BypassActors))
			case ruleTypeRequiredSignatures:
				info.RequiredSignaturesEnforcement = github.String(ruleset.Enforcement)
				info.RequiredSignaturesBypassActorsLength = github.Int(len(ruleset.BypassActors))
			}
		}
	}

	return nil
}

func (x *Client) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if x.cache == nil {
		return nil, false
	}
	return x.cache.Get(ctx, key)
}

func (x *Client) cachePut(ctx context.Context, key string, value any, ttl time.Duration) {
	if x.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		logging.From(ctx).Warn("failed to encode cache entry", "key", key, "error", err)
		return
	}
	if err := x.cache.Put(ctx, key, data, ttl); err != nil {
		logging.From(ctx).Warn("failed to store cache entry", "key", key, "error", err)
	}
}

func uniqueSorted(values []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
