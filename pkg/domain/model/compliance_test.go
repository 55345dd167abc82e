package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/repogov/pkg/domain/model"
	"github.com/secmon-lab/repogov/pkg/domain/types"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(n int) *int       { return &n }

func compliantView(name types.RepoName) *model.RepositoryView {
	return &model.RepositoryView{
		Name:                   name,
		OwnerNames:             []types.OwnerName{"ops"},
		AdminOwnerNames:        []types.OwnerName{"ops"},
		BusinessUnitOwnerNames: []types.OwnerName{"ops"},
		Facts: &model.RepositoryFacts{
			Basic: model.BasicFacts{
				Name:              string(name),
				License:           strPtr("mit"),
				DefaultBranchName: "main",
			},
			SecurityAndAnalysis: model.SecurityFacts{
				SecretScanningStatus: strPtr("enabled"),
				PushProtectionStatus: strPtr("enabled"),
			},
			DefaultBranchProtection: model.BranchProtectionInfo{
				Enabled:                      boolPtr(true),
				EnforceAdmins:                boolPtr(true),
				RequiredSignatures:           boolPtr(true),
				DismissStaleReviews:          boolPtr(true),
				RequireCodeOwnerReviews:      boolPtr(true),
				RequiredApprovingReviewCount: intPtr(2),
			},
		},
	}
}

func findCheck(t *testing.T, report *model.ComplianceReport, name string) model.ComplianceCheck {
	t.Helper()
	for _, check := range report.Checks {
		if check.Name == name {
			return check
		}
	}
	t.Fatalf("check not found: %s", name)
	return model.ComplianceCheck{}
}

func TestEvaluateCompliance(t *testing.T) {
	t.Run("fully compliant view passes everything", func(t *testing.T) {
		report := model.EvaluateCompliance(compliantView("golden"))

		gt.V(t, report.Status).Equal(types.StatusPass)
		gt.V(t, report.MaturityLevel).Equal(types.MaturityExemplar)
		gt.A(t, report.Checks).Length(10)
		for _, check := range report.Checks {
			gt.V(t, check.Status).Equal(types.StatusPass)
		}
	})

	t.Run("required check failure fails the aggregate only", func(t *testing.T) {
		view := compliantView("leaky")
		view.Facts.SecurityAndAnalysis.PushProtectionStatus = nil

		report := model.EvaluateCompliance(view)

		gt.V(t, report.Status).Equal(types.StatusFail)
		gt.V(t, findCheck(t, report, "Secret Scanning Push Protection Enabled").Status).Equal(types.StatusFail)
		gt.V(t, findCheck(t, report, "Secret Scanning Enabled").Status).Equal(types.StatusPass)
	})

	t.Run("optional check failure does not fail the aggregate", func(t *testing.T) {
		view := compliantView("gpl-service")
		view.Facts.Basic.License = strPtr("gpl-3.0")

		report := model.EvaluateCompliance(view)

		gt.V(t, report.Status).Equal(types.StatusPass)
		gt.V(t, findCheck(t, report, "License is MIT").Status).Equal(types.StatusFail)
	})

	t.Run("both authoritative slots are resolved independently", func(t *testing.T) {
		view := compliantView("dual")
		view.OwnerNames = []types.OwnerName{"ops", "team-a"}
		view.AdminOwnerNames = []types.OwnerName{"ops", "team-a"}
		view.BusinessUnitOwnerNames = []types.OwnerName{"ops"}
		view.TeamOwnerNames = []types.OwnerName{"team-a"}

		report := model.EvaluateCompliance(view)

		gt.V(t, *report.AuthoritativeBusinessUnitOwner).Equal("ops")
		gt.V(t, *report.AuthoritativeTeamOwner).Equal("team-a")
	})

	t.Run("team owner fills the ownership check when no business unit qualifies", func(t *testing.T) {
		view := compliantView("team-only")
		view.OwnerNames = []types.OwnerName{"team-a"}
		view.AdminOwnerNames = []types.OwnerName{"team-a"}
		view.BusinessUnitOwnerNames = nil
		view.TeamOwnerNames = []types.OwnerName{"team-a"}

		report := model.EvaluateCompliance(view)

		gt.V(t, report.AuthoritativeBusinessUnitOwner).Equal(nil)
		gt.V(t, *report.AuthoritativeTeamOwner).Equal("team-a")
		gt.V(t, findCheck(t, report, "Has an Authorative Owner").Status).Equal(types.StatusPass)
	})

	t.Run("no owner fails the ownership check", func(t *testing.T) {
		view := compliantView("orphan")
		view.OwnerNames = nil
		view.AdminOwnerNames = nil
		view.BusinessUnitOwnerNames = nil
		view.TeamOwnerNames = nil

		report := model.EvaluateCompliance(view)

		gt.V(t, report.Status).Equal(types.StatusPass)
		gt.V(t, findCheck(t, report, "Has an Authorative Owner").Status).Equal(types.StatusFail)
		gt.V(t, report.MaturityLevel).Equal(types.MaturityBaseline)
	})
}

func TestRulesetMechanism(t *testing.T) {
	baseView := func() *model.RepositoryView {
		view := compliantView("ruleset-only")
		// No classic protection at all; everything must come from rulesets.
		view.Facts.DefaultBranchProtection = model.BranchProtectionInfo{
			Enabled: boolPtr(false),
		}
		view.Facts.DefaultBranchRuleset = model.BranchRulesetInfo{
			Enabled:                                 boolPtr(true),
			PullRequestEnforcement:                  strPtr("active"),
			PullRequestBypassActorsLength:           intPtr(0),
			PullRequestRequiredApprovingReviewCount: intPtr(1),
			PullRequestRequireCodeOwnerReview:       boolPtr(true),
			PullRequestDismissStaleReviews:          boolPtr(true),
			RequiredSignaturesEnforcement:           strPtr("active"),
			RequiredSignaturesBypassActorsLength:    intPtr(0),
		}
		return view
	}

	t.Run("active ruleset with no bypass satisfies the review checks", func(t *testing.T) {
		report := model.EvaluateCompliance(baseView())

		gt.V(t, findCheck(t, report, "Default Branch Pull Request Requires Atleast One Review").Status).Equal(types.StatusPass)
		gt.V(t, findCheck(t, report, "Default Branch Pull Request Dismiss Stale Reviews").Status).Equal(types.StatusPass)
		gt.V(t, findCheck(t, report, "Default Branch Protection Requires Code Owner Reviews").Status).Equal(types.StatusPass)
		gt.V(t, findCheck(t, report, "Default Branch Protection Requires Signed Commits").Status).Equal(types.StatusPass)
	})

	t.Run("bypass actors defeat the ruleset review requirement", func(t *testing.T) {
		view := baseView()
		view.Facts.DefaultBranchRuleset.PullRequestBypassActorsLength = intPtr(2)

		report := model.EvaluateCompliance(view)

		gt.V(t, findCheck(t, report, "Default Branch Pull Request Requires Atleast One Review").Status).Equal(types.StatusFail)
	})

	t.Run("evaluate-mode enforcement does not count", func(t *testing.T) {
		view := baseView()
		view.Facts.DefaultBranchRuleset.PullRequestEnforcement = strPtr("evaluate")

		report := model.EvaluateCompliance(view)

		gt.V(t, findCheck(t, report, "Default Branch Pull Request Dismiss Stale Reviews").Status).Equal(types.StatusFail)
	})

	t.Run("signature bypass actors defeat the signature requirement", func(t *testing.T) {
		view := baseView()
		view.Facts.DefaultBranchRuleset.RequiredSignaturesBypassActorsLength = intPtr(1)

		report := model.EvaluateCompliance(view)

		gt.V(t, findCheck(t, report, "Default Branch Protection Requires Signed Commits").Status).Equal(types.StatusFail)
	})
}

func TestMaturityLevel(t *testing.T) {
	t.Run("tier one failure forces level zero", func(t *testing.T) {
		view := compliantView("x")
		view.Facts.SecurityAndAnalysis.SecretScanningStatus = strPtr("disabled")

		report := model.EvaluateCompliance(view)
		gt.V(t, report.MaturityLevel).Equal(types.MaturityNone)
	})

	t.Run("tier two failure caps at baseline", func(t *testing.T) {
		view := compliantView("x")
		view.Facts.Basic.DefaultBranchName = "master"

		report := model.EvaluateCompliance(view)
		gt.V(t, report.MaturityLevel).Equal(types.MaturityBaseline)
	})

	t.Run("tier three failure caps at standard", func(t *testing.T) {
		view := compliantView("x")
		view.Facts.DefaultBranchProtection.RequiredSignatures = boolPtr(false)

		report := model.EvaluateCompliance(view)
		gt.V(t, report.MaturityLevel).Equal(types.MaturityStandard)
	})

	t.Run("everything passing reaches exemplar", func(t *testing.T) {
		report := model.EvaluateCompliance(compliantView("x"))
		gt.V(t, report.MaturityLevel).Equal(types.MaturityExemplar)
	})
}
