package model

import (
	"fmt"
	"net/url"

	"github.com/secmon-lab/repogov/pkg/domain/types"
)

const badgeLabel = "Repo Compliant"

type badgeStyle struct {
	color   string
	message string
}

var badgeStyles = map[types.MaturityLevel]badgeStyle{
	types.MaturityBaseline: {color: "b1b4b6", message: "BASELINE"},
	types.MaturityStandard: {color: "005ea5", message: "STANDARD"},
	types.MaturityExemplar: {color: "4c2c92", message: "EXEMPLAR"},
}

var (
	badgeFail     = badgeStyle{color: "d4351c", message: "FAIL"}
	badgeNotFound = badgeStyle{color: "b1b4b6", message: "NOT FOUND"}
)

// BadgeShieldURL builds the shields.io URL for a repository's compliance
// badge. A nil report renders the not-found variant; maturity level 0
// renders the fail variant.
func BadgeShieldURL(report *ComplianceReport) string {
	style := badgeNotFound
	if report != nil {
		var ok bool
		style, ok = badgeStyles[report.MaturityLevel]
		if !ok {
			style = badgeFail
		}
	}

	return fmt.Sprintf(
		"https://img.shields.io/badge/%s-%s-%s?style=for-the-badge&labelColor=0b0c0c",
		url.PathEscape(badgeLabel),
		url.PathEscape(style.message),
		style.color,
	)
}
