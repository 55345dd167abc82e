package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/repogov/pkg/domain/model"
)

func TestFactsRoundTrip(t *testing.T) {
	t.Run("absent optional fields stay nil", func(t *testing.T) {
		facts := &model.RepositoryFacts{
			Basic: model.BasicFacts{
				Name:              "bare-repo",
				Visibility:        "public",
				DefaultBranchName: "main",
			},
		}

		raw := gt.R1(facts.Encode()).NoError(t)
		decoded := gt.R1(model.DecodeFacts(raw)).NoError(t)

		gt.V(t, decoded.Basic.Name).Equal("bare-repo")
		gt.V(t, decoded.Basic.License).Equal(nil)
		gt.V(t, decoded.SecurityAndAnalysis.SecretScanningStatus).Equal(nil)
		gt.V(t, decoded.DefaultBranchProtection.Enabled).Equal(nil)
		gt.V(t, decoded.DefaultBranchRuleset.Enabled).Equal(nil)
	})

	t.Run("false and zero survive as values, not as nil", func(t *testing.T) {
		facts := &model.RepositoryFacts{
			Basic: model.BasicFacts{Name: "strict-repo"},
			DefaultBranchProtection: model.BranchProtectionInfo{
				Enabled:                      boolPtr(false),
				RequiredApprovingReviewCount: intPtr(0),
			},
		}

		raw := gt.R1(facts.Encode()).NoError(t)
		decoded := gt.R1(model.DecodeFacts(raw)).NoError(t)

		gt.V(t, decoded.DefaultBranchProtection.Enabled != nil).Equal(true)
		gt.V(t, *decoded.DefaultBranchProtection.Enabled).Equal(false)
		gt.V(t, decoded.DefaultBranchProtection.RequiredApprovingReviewCount != nil).Equal(true)
		gt.V(t, *decoded.DefaultBranchProtection.RequiredApprovingReviewCount).Equal(0)
	})

	t.Run("broken payload is rejected", func(t *testing.T) {
		_, err := model.DecodeFacts([]byte("{not json"))
		gt.Error(t, err)
	})
}
