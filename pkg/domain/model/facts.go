package model

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// RepositoryFacts is an immutable snapshot of one repository's observable
// GitHub state, captured once per sync. Protection, ruleset and security
// fields are pointers: nil means the data was absent or the feature is
// unused, which is a first-class value for rule evaluation, not an error.
type RepositoryFacts struct {
	Basic                   BasicFacts           `json:"basic"`
	Access                  AccessFacts          `json:"access"`
	SecurityAndAnalysis     SecurityFacts        `json:"security_and_analysis"`
	DefaultBranchProtection BranchProtectionInfo `json:"default_branch_protection"`
	DefaultBranchRuleset    BranchRulesetInfo    `json:"default_branch_ruleset"`
}

type BasicFacts struct {
	Name                string  `json:"name"`
	Visibility          string  `json:"visibility"`
	Description         *string `json:"description"`
	License             *string `json:"license"`
	DefaultBranchName   string  `json:"default_branch_name"`
	DeleteBranchOnMerge *bool   `json:"delete_branch_on_merge"`
}

// AccessFacts holds the team names observed on the repository. Parent
// lists contain ancestor teams of the teams in the sibling list.
type AccessFacts struct {
	TeamsWithAdmin        []string `json:"teams_with_admin"`
	TeamsWithAdminParents []string `json:"teams_with_admin_parents"`
	Teams                 []string `json:"teams"`
	TeamsParents          []string `json:"teams_parents"`
}

// SecurityFacts carries the security_and_analysis statuses. Each status is
// "enabled", "disabled", or nil when GitHub did not report it.
type SecurityFacts struct {
	SecretScanningStatus   *string `json:"secret_scanning_status"`
	SecretScanningValidity *string `json:"secret_scanning_validity_checks"`
	PushProtectionStatus   *string `json:"push_protection_status"`
	AdvancedSecurity       *string `json:"advanced_security"`
	NonProviderPatterns    *string `json:"non_provider_patterns"`
}

// BranchProtectionInfo is the classic branch protection state of the
// default branch.
type BranchProtectionInfo struct {
	Enabled                      *bool `json:"enabled"`
	AllowForcePushes             *bool `json:"allow_force_pushes"`
	EnforceAdmins                *bool `json:"enforce_admins"`
	RequiredSignatures           *bool `json:"required_signatures"`
	DismissStaleReviews          *bool `json:"dismiss_stale_reviews"`
	RequireCodeOwnerReviews      *bool `json:"require_code_owner_reviews"`
	RequireLastPushApproval      *bool `json:"require_last_push_approval"`
	RequiredApprovingReviewCount *int  `json:"required_approving_review_count"`
}

// BranchRulesetInfo is the repository-ruleset state of the default branch.
// Rulesets are an independent mechanism from classic protection; a
// compliance check passes if either mechanism satisfies it. A ruleset rule
// only counts when the ruleset is enabled and no bypass actors are
// configured, since bypass actors can circumvent the rule.
type BranchRulesetInfo struct {
	Enabled                                 *bool   `json:"enabled"`
	PullRequestEnforcement                  *string `json:"pull_request_enforcement"`
	PullRequestBypassActorsLength           *int    `json:"pull_request_bypass_actors_length"`
	PullRequestRequiredApprovingReviewCount *int    `json:"pull_request_required_approving_review_count"`
	PullRequestRequireCodeOwnerReview       *bool   `json:"pull_request_require_code_owner_review"`
	PullRequestDismissStaleReviews          *bool   `json:"pull_request_dismiss_stale_reviews_on_push"`
	RequiredSignaturesEnforcement           *string `json:"required_signatures_enforcement"`
	RequiredSignaturesBypassActorsLength    *int    `json:"required_signatures_bypass_actors_length"`
}

// Encode serializes the facts to the opaque payload stored in the asset
// row.
func (x *RepositoryFacts) Encode() ([]byte, error) {
	raw, err := json.Marshal(x)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode repository facts", goerr.V("repo", x.Basic.Name))
	}
	return raw, nil
}

// DecodeFacts restores facts from a stored asset payload. Optional fields
// absent in the payload stay nil.
func DecodeFacts(raw []byte) (*RepositoryFacts, error) {
	var facts RepositoryFacts
	if err := json.Unmarshal(raw, &facts); err != nil {
		return nil, goerr.Wrap(err, "failed to decode repository facts")
	}
	return &facts, nil
}

func boolValue(v *bool) bool {
	return v != nil && *v
}

func intValue(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func strValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
