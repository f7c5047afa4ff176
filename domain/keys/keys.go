package keys

import "strings"

const (
	// PfxHealthCheck is used for prefixing health check redis key
	PfxHealthCheck = "healthcheck"
	// PfxEns is used for prefixing ens resolution cache
	PfxEns = "ensPfx"
	// PfxOwnerPage is used for prefixing cached upstream pages of an owner
	PfxOwnerPage = "ownerPage"
)

// CustomKey is used to join the customized key by componets with specified delimiter
func CustomKey(delimiter string, components ...string) string {
	return strings.Join(components, delimiter)
}

// RedisKey is used to join the redis key by componets
func RedisKey(components ...string) string {
	return CustomKey(":", components...)
}

// FavoriteKey is the composite key identifying a token inside a favorite set
func FavoriteKey(contract, tokenId string) string {
	return CustomKey("-", contract, tokenId)
}
