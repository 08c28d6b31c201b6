// Package secrets detects and redacts exposed credentials in code
// snippets before they are returned to a caller. Fetched third-party
// code routinely contains leaked keys; nothing leaves the tool layer
// without passing through the redactor.
package secrets

// SecretType identifies the kind of secret detected.
type SecretType string

const (
	SecretTypeAWSAccessKey  SecretType = "aws_access_key"
	SecretTypeAWSSecretKey  SecretType = "aws_secret_key"
	SecretTypeGitHubToken   SecretType = "github_token"
	SecretTypeStripeLiveKey SecretType = "stripe_live_key"
	SecretTypeStripeTestKey SecretType = "stripe_test_key"
	SecretTypeSlackToken    SecretType = "slack_token"
	SecretTypeSlackWebhook  SecretType = "slack_webhook"
	SecretTypePrivateKey    SecretType = "private_key"
	SecretTypeJWT           SecretType = "jwt"
	SecretTypeGoogleAPIKey  SecretType = "google_api_key"
	SecretTypeNPMToken      SecretType = "npm_token"
	SecretTypePyPIToken     SecretType = "pypi_token"
	SecretTypeGenericAPIKey SecretType = "generic_api_key"
	SecretTypeGenericSecret SecretType = "generic_secret"
	SecretTypePasswordInURL SecretType = "password_in_url"
)

// Severity indicates the risk level of a finding.
type Severity string

const (
	SeverityCritical Severity = "critical" // Active production credentials, private keys
	SeverityHigh     Severity = "high"     // API keys, tokens with significant access
	SeverityMedium   Severity = "medium"   // Possible secrets, need verification
	SeverityLow      Severity = "low"      // Test keys, example values
)

// Weight returns a numeric weight for sorting.
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Finding is a single detected secret within a scanned snippet.
type Finding struct {
	Line     int        `json:"line"`
	Type     SecretType `json:"type"`
	Severity Severity   `json:"severity"`
	Rule     string     `json:"rule"`
	Match    string     `json:"-"` // Raw matched text, never serialized
}
