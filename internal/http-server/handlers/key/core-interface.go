package key

// Core mints API keys for the authoring endpoints.
type Core interface {
	GenerateApiKey(username, companyID string) (string, error)
}
