package constant

type VideoStatus string

const (
	VideoStatusPending    VideoStatus = "PENDING"
	VideoStatusGenerating VideoStatus = "GENERATING"
	VideoStatusFailed     VideoStatus = "FAILED"
	VideoStatusCompleted  VideoStatus = "COMPLETED"
)

func (s VideoStatus) String() string {
	return string(s)
}

type AuthErrorKind string

const (
	AuthErrorEmailTaken         AuthErrorKind = "email-already-registered"
	AuthErrorInvalidEmail       AuthErrorKind = "invalid-email"
	AuthErrorWeakPassword       AuthErrorKind = "weak-password"
	AuthErrorInvalidCredentials AuthErrorKind = "invalid-credentials"
	AuthErrorUnexpected         AuthErrorKind = "unexpected"
)

func (k AuthErrorKind) String() string {
	return string(k)
}

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}
