package types

import (
	"log/slog"

	"github.com/google/uuid"
)

type (
	GitHubAppID         int64
	GitHubAppInstallID  int64
	GitHubAppPrivateKey string

	RepoName  string
	OwnerName string

	RequestID string

	GoogleProjectID string
	BQDatasetID     string
	BQTableID       string
)

func (x RepoName) String() string  { return string(x) }
func (x OwnerName) String() string { return string(x) }

func (x GoogleProjectID) String() string { return string(x) }
func (x BQDatasetID) String() string     { return string(x) }
func (x BQTableID) String() string       { return string(x) }

func NewRequestID() RequestID {
	return RequestID(uuid.NewString())
}

// OwnerKind classifies a configured owner as a business unit or a team.
// The two kinds hold independent authoritative slots for a repository.
type OwnerKind string

const (
	OwnerKindBusinessUnit OwnerKind = "BUSINESS_UNIT"
	OwnerKindTeam         OwnerKind = "TEAM"
)

func (x OwnerKind) Validate() bool {
	return x == OwnerKindBusinessUnit || x == OwnerKindTeam
}

// RelationType is the persisted edge type between an asset and an owner.
type RelationType string

const (
	RelationAdminAccess RelationType = "ADMIN_ACCESS"
	RelationOther       RelationType = "OTHER"
)

// AssetType tags a persisted asset row. Repositories are the only asset
// type today.
type AssetType string

const AssetTypeRepository AssetType = "REPOSITORY"

// ComplianceStatus is the pass/fail result of a single check or of the
// aggregate report.
type ComplianceStatus string

const (
	StatusPass ComplianceStatus = "pass"
	StatusFail ComplianceStatus = "fail"
)

// MaturityLevel is the tiered compliance score. Zero means even baseline
// checks fail.
type MaturityLevel int

const (
	MaturityNone     MaturityLevel = 0
	MaturityBaseline MaturityLevel = 1
	MaturityStandard MaturityLevel = 2
	MaturityExemplar MaturityLevel = 3
)

func (x GitHubAppPrivateKey) LogValue() slog.Value {
	return slog.StringValue("***********")
}

func (x GitHubAppPrivateKey) String() string {
	return "***********"
}
