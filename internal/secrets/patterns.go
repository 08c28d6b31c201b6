package secrets

import "regexp"

// Pattern defines a secret detection pattern.
type Pattern struct {
	Name        string
	Type        SecretType
	Severity    Severity
	Regex       *regexp.Regexp
	MinEntropy  float64 // Minimum entropy (0 = disabled)
	Description string
}

// BuiltinPatterns contains the builtin secret detection patterns,
// based on well-known credential formats from major providers.
var BuiltinPatterns = []Pattern{
	{
		Name:        "aws_access_key_id",
		Type:        SecretTypeAWSAccessKey,
		Severity:    SeverityCritical,
		Regex:       regexp.MustCompile(`(?:A3T[A-Z0-9]|AKIA|ABIA|ACCA|AGPA|AIDA|AIPA|ANPA|ANVA|APKA|AROA|ASCA|ASIA)[A-Z0-9]{16}`),
		Description: "AWS Access Key ID",
	},
	{
		Name:        "aws_secret_key",
		Type:        SecretTypeAWSSecretKey,
		Severity:    SeverityCritical,
		Regex:       regexp.MustCompile(`(?i)(?:aws[_-]?)?secret[_-]?(?:access[_-]?)?key['":\s=]+['"]?([A-Za-z0-9/+=]{40})['"]?`),
		MinEntropy:  3.5,
		Description: "AWS Secret Access Key",
	},
	{
		Name:        "github_token",
		Type:        SecretTypeGitHubToken,
		Severity:    SeverityCritical,
		Regex:       regexp.MustCompile(`(?:ghp|gho|ghu|ghs|ghr)_[A-Za-z0-9]{36,}`),
		Description: "GitHub Token",
	},
	{
		Name:        "github_fine_grained",
		Type:        SecretTypeGitHubToken,
		Severity:    SeverityCritical,
		Regex:       regexp.MustCompile(`github_pat_[A-Za-z0-9]{22}_[A-Za-z0-9]{59}`),
		Description: "GitHub Fine-Grained Personal Access Token",
	},
	{
		Name:        "stripe_live_secret",
		Type:        SecretTypeStripeLiveKey,
		Severity:    SeverityCritical,
		Regex:       regexp.MustCompile(`(?:sk|rk)_live_[A-Za-z0-9]{24,}`),
		Description: "Stripe Live Key",
	},
	{
		Name:        "stripe_test_secret",
		Type:        SecretTypeStripeTestKey,
		Severity:    SeverityLow,
		Regex:       regexp.MustCompile(`sk_test_[A-Za-z0-9]{24,}`),
		Description: "Stripe Test Secret Key",
	},
	{
		Name:        "slack_token",
		Type:        SecretTypeSlackToken,
		Severity:    SeverityHigh,
		Regex:       regexp.MustCompile(`xox[bp]-[0-9]{10,13}-[0-9]{10,13}-[A-Za-z0-9-]{24,}`),
		Description: "Slack Token",
	},
	{
		Name:        "slack_webhook",
		Type:        SecretTypeSlackWebhook,
		Severity:    SeverityMedium,
		Regex:       regexp.MustCompile(`https://hooks\.slack\.com/services/T[A-Z0-9]{8,}/B[A-Z0-9]{8,}/[A-Za-z0-9]{24}`),
		Description: "Slack Webhook URL",
	},
	{
		Name:        "private_key",
		Type:        SecretTypePrivateKey,
		Severity:    SeverityCritical,
		Regex:       regexp.MustCompile(`-----BEGIN (?:RSA |EC |DSA |OPENSSH |PGP )?PRIVATE KEY(?: BLOCK)?-----`),
		Description: "Private Key Material",
	},
	{
		Name:        "jwt_token",
		Type:        SecretTypeJWT,
		Severity:    SeverityMedium,
		Regex:       regexp.MustCompile(`eyJ[A-Za-z0-9_-]{8,}\.eyJ[A-Za-z0-9_-]{8,}\.[A-Za-z0-9_-]+`),
		MinEntropy:  3.0,
		Description: "JSON Web Token",
	},
	{
		Name:        "google_api_key",
		Type:        SecretTypeGoogleAPIKey,
		Severity:    SeverityHigh,
		Regex:       regexp.MustCompile(`AIza[A-Za-z0-9_-]{35}`),
		Description: "Google API Key",
	},
	{
		Name:        "npm_token",
		Type:        SecretTypeNPMToken,
		Severity:    SeverityHigh,
		Regex:       regexp.MustCompile(`npm_[A-Za-z0-9]{36}`),
		Description: "NPM Access Token",
	},
	{
		Name:        "pypi_token",
		Type:        SecretTypePyPIToken,
		Severity:    SeverityHigh,
		Regex:       regexp.MustCompile(`pypi-[A-Za-z0-9_-]{100,}`),
		Description: "PyPI API Token",
	},
	{
		Name:        "generic_api_key",
		Type:        SecretTypeGenericAPIKey,
		Severity:    SeverityMedium,
		Regex:       regexp.MustCompile(`(?i)(?:api[_-]?key|apikey)['":\s=]+['"]?([A-Za-z0-9_-]{20,64})['"]?`),
		MinEntropy:  3.5,
		Description: "Generic API Key",
	},
	{
		Name:        "password_in_url",
		Type:        SecretTypePasswordInURL,
		Severity:    SeverityHigh,
		Regex:       regexp.MustCompile(`://[^:/\s]+:([^@/\s]{3,})@[^/\s]+`),
		MinEntropy:  2.5,
		Description: "Password in URL",
	},
}

// GetPatternByName returns a pattern by name, or nil.
func GetPatternByName(name string) *Pattern {
	for i := range BuiltinPatterns {
		if BuiltinPatterns[i].Name == name {
			return &BuiltinPatterns[i]
		}
	}
	return nil
}
