package model

import (
	"github.com/secmon-lab/repogov/pkg/domain/types"
)

// ComplianceCheck is one evaluated rule. Required checks decide the
// aggregate status; maturity tiers decide the maturity level.
type ComplianceCheck struct {
	Name          string                 `json:"name"`
	Status        types.ComplianceStatus `json:"status"`
	Required      bool                   `json:"required"`
	MaturityLevel types.MaturityLevel    `json:"maturity_level"`
	Description   string                 `json:"description"`
	GuidanceLink  string                 `json:"link_to_guidance"`
}

// ComplianceReport is the evaluated state of one repository. It is derived
// on read and never persisted. The business-unit and team authoritative
// owners are independent slots, resolved per tier.
type ComplianceReport struct {
	Name                           types.RepoName         `json:"name"`
	Status                         types.ComplianceStatus `json:"compliance_status"`
	AuthoritativeBusinessUnitOwner *types.OwnerName       `json:"authoritative_business_unit_owner"`
	AuthoritativeTeamOwner         *types.OwnerName       `json:"authoritative_team_owner"`
	MaturityLevel                  types.MaturityLevel    `json:"maturity_level"`
	Checks                         []ComplianceCheck      `json:"checks"`
	Description                    *string                `json:"description"`
}

type checkFunc func(view *RepositoryView, authoritativeOwner *types.OwnerName) ComplianceCheck

func passIf(ok bool) types.ComplianceStatus {
	if ok {
		return types.StatusPass
	}
	return types.StatusFail
}

// The canonical check list. Order is significant for display only; every
// check is evaluated independently.
var complianceChecks = []checkFunc{
	secretScanningEnabled,
	secretScanningPushProtectionEnabled,
	branchProtectionEnforcedForAdmins,
	requiresSignedCommits,
	requiresCodeOwnerReviews,
	dismissesStaleReviews,
	requiresAtLeastOneReview,
	hasAuthoritativeOwner,
	licenseIsMIT,
	defaultBranchIsMain,
}

func secretScanningEnabled(view *RepositoryView, _ *types.OwnerName) ComplianceCheck {
	return ComplianceCheck{
		Name:          "Secret Scanning Enabled",
		Status:        passIf(strValue(view.Facts.SecurityAndAnalysis.SecretScanningStatus) == "enabled"),
		Required:      true,
		MaturityLevel: types.MaturityBaseline,
		Description:   "Improves organisational security by scanning and reporting secrets.",
		GuidanceLink:  "/repository-standards/guidance#secret-scanning-enabled",
	}
}

func secretScanningPushProtectionEnabled(view *RepositoryView, _ *types.OwnerName) ComplianceCheck {
	return ComplianceCheck{
		Name:          "Secret Scanning Push Protection Enabled",
		Status:        passIf(strValue(view.Facts.SecurityAndAnalysis.PushProtectionStatus) == "enabled"),
		Required:      true,
		MaturityLevel: types.MaturityBaseline,
		Description:   "Prevents secrets from being pushed to the repository.",
		GuidanceLink:  "/repository-standards/guidance#secret-scanning-push-protection-enabled",
	}
}

func branchProtectionEnforcedForAdmins(view *RepositoryView, _ *types.OwnerName) ComplianceCheck {
	ruleset := view.Facts.DefaultBranchRuleset
	rulesetOK := boolValue(ruleset.Enabled) &&
		intValue(ruleset.PullRequestBypassActorsLength) == 0 &&
		intValue(ruleset.RequiredSignaturesBypassActorsLength) == 0

	return ComplianceCheck{
		Name:          "Default Branch Protection Enforced For Admins",
		Status:        passIf(boolValue(view.Facts.DefaultBranchProtection.EnforceAdmins) || rulesetOK),
		Required:      false,
		MaturityLevel: types.MaturityStandard,
		Description:   "Prevents admins from bypassing branch protection.",
		GuidanceLink:  "/repository-standards/guidance#default-branch-protection-enforced-for-admins",
	}
}

func requiresSignedCommits(view *RepositoryView, _ *types.OwnerName) ComplianceCheck {
	ruleset := view.Facts.DefaultBranchRuleset
	rulesetOK := boolValue(ruleset.Enabled) &&
		strValue(ruleset.RequiredSignaturesEnforcement) == "active" &&
		intValue(ruleset.RequiredSignaturesBypassActorsLength) == 0

	return ComplianceCheck{
		Name:          "Default Branch Protection Requires Signed Commits",
		Status:        passIf(boolValue(view.Facts.DefaultBranchProtection.RequiredSignatures) || rulesetOK),
		Required:      false,
		MaturityLevel: types.MaturityExemplar,
		Description:   "Signed commits ensure that the commit author is verified, preventing impersonations.",
		GuidanceLink:  "/repository-standards/guidance#default-branch-protection-requires-signed-commits",
	}
}

func requiresCodeOwnerReviews(view *RepositoryView, _ *types.OwnerName) ComplianceCheck {
	ruleset := view.Facts.DefaultBranchRuleset
	rulesetOK := boolValue(ruleset.Enabled) &&
		strValue(ruleset.PullRequestEnforcement) == "active" &&
		intValue(ruleset.RequiredSignaturesBypassActorsLength) == 0 &&
		boolValue(ruleset.PullRequestRequireCodeOwnerReview)

	return ComplianceCheck{
		Name:          "Default Branch Protection Requires Code Owner Reviews",
		Status:        passIf(boolValue(view.Facts.DefaultBranchProtection.RequireCodeOwnerReviews) || rulesetOK),
		Required:      false,
		MaturityLevel: types.MaturityExemplar,
		Description:   "Useful for delegating reviews of parts of the codebase to specific people.",
		GuidanceLink:  "/repository-standards/guidance#default-branch-protection-requires-code-owner-reviews",
	}
}

func dismissesStaleReviews(view *RepositoryView, _ *types.OwnerName) ComplianceCheck {
	ruleset := view.Facts.DefaultBranchRuleset
	rulesetOK := boolValue(ruleset.Enabled) &&
		strValue(ruleset.PullRequestEnforcement) == "active" &&
		intValue(ruleset.RequiredSignaturesBypassActorsLength) == 0 &&
		boolValue(ruleset.PullRequestDismissStaleReviews)

	return ComplianceCheck{
		Name:          "Default Branch Pull Request Dismiss Stale Reviews",
		Status:        passIf(boolValue(view.Facts.DefaultBranchProtection.DismissStaleReviews) || rulesetOK),
		Required:      false,
		MaturityLevel: types.MaturityStandard,
		Description:   "Ensures that the latest changes are reviewed before merging.",
		GuidanceLink:  "/repository-standards/guidance#default-branch-pull-request-dismiss-stale-reviews",
	}
}

func requiresAtLeastOneReview(view *RepositoryView, _ *types.OwnerName) ComplianceCheck {
	ruleset := view.Facts.DefaultBranchRuleset
	rulesetOK := boolValue(ruleset.Enabled) &&
		strValue(ruleset.PullRequestEnforcement) == "active" &&
		intValue(ruleset.PullRequestBypassActorsLength) == 0 &&
		intValue(ruleset.PullRequestRequiredApprovingReviewCount) >= 1

	classicOK := intValue(view.Facts.DefaultBranchProtection.RequiredApprovingReviewCount) >= 1

	return ComplianceCheck{
		Name:          "Default Branch Pull Request Requires Atleast One Review",
		Status:        passIf(classicOK || rulesetOK),
		Required:      false,
		MaturityLevel: types.MaturityStandard,
		Description:   "Ensures that at least one person has reviewed the changes before merging.",
		GuidanceLink:  "/repository-standards/guidance#default-branch-pull-request-requires-atleast-one-review",
	}
}

func hasAuthoritativeOwner(_ *RepositoryView, authoritativeOwner *types.OwnerName) ComplianceCheck {
	return ComplianceCheck{
		Name:          "Has an Authorative Owner",
		Status:        passIf(authoritativeOwner != nil),
		Required:      false,
		MaturityLevel: types.MaturityStandard,
		Description:   "Prevents orphaned repositories by having an easily identifiable owner.",
		GuidanceLink:  "/repository-standards/guidance#has-an-authoritative-owner",
	}
}

func licenseIsMIT(view *RepositoryView, _ *types.OwnerName) ComplianceCheck {
	return ComplianceCheck{
		Name:          "License is MIT",
		Status:        passIf(strValue(view.Facts.Basic.License) == "mit"),
		Required:      false,
		MaturityLevel: types.MaturityStandard,
		Description:   "MIT License is a permissive license that allows for reuse of the codebase.",
		GuidanceLink:  "/repository-standards/guidance#license-is-mit",
	}
}

func defaultBranchIsMain(view *RepositoryView, _ *types.OwnerName) ComplianceCheck {
	return ComplianceCheck{
		Name:          "Default Branch is main",
		Status:        passIf(view.Facts.Basic.DefaultBranchName == "main"),
		Required:      false,
		MaturityLevel: types.MaturityStandard,
		Description:   "main is a more inclusive and modern term for the default branch.",
		GuidanceLink:  "/repository-standards/guidance#default-branch-is-main",
	}
}

// EvaluateCompliance runs every check against the repository view and
// aggregates the result. Pure: no network or store access happens here.
//
// The aggregate status passes iff every required check passes. The
// maturity level is the highest tier T such that all checks with tier <= T
// pass; a tier-1 failure forces level 0 regardless of higher tiers.
func EvaluateCompliance(view *RepositoryView) *ComplianceReport {
	buOwner := AuthoritativeOwner(view, view.BusinessUnitOwnerNames)
	teamOwner := AuthoritativeOwner(view, view.TeamOwnerNames)

	authoritativeOwner := buOwner
	if authoritativeOwner == nil {
		authoritativeOwner = teamOwner
	}

	checks := make([]ComplianceCheck, 0, len(complianceChecks))
	for _, check := range complianceChecks {
		checks = append(checks, check(view, authoritativeOwner))
	}

	status := types.StatusPass
	for _, check := range checks {
		if check.Required && check.Status != types.StatusPass {
			status = types.StatusFail
			break
		}
	}

	return &ComplianceReport{
		Name:                           view.Name,
		Status:                         status,
		AuthoritativeBusinessUnitOwner: buOwner,
		AuthoritativeTeamOwner:         teamOwner,
		MaturityLevel:                  maturityLevel(checks),
		Checks:                         checks,
		Description:                    view.Facts.Basic.Description,
	}
}

func maturityLevel(checks []ComplianceCheck) types.MaturityLevel {
	for _, tier := range []types.MaturityLevel{types.MaturityExemplar, types.MaturityStandard, types.MaturityBaseline} {
		allPass := true
		for _, check := range checks {
			if check.MaturityLevel <= tier && check.Status != types.StatusPass {
				allPass = false
				break
			}
		}
		if allPass {
			return tier
		}
	}
	return types.MaturityNone
}
