package nft

import "strings"

// Normalize maps one upstream record to an Nft. Missing fields fall back to
// documented defaults, so Name, Collection and Image are never empty.
func Normalize(raw RawAsset) Nft {
	n := Nft{
		Name:            firstNonBlank(raw.Name, raw.Contract.Name, UnnamedNft),
		Collection:      firstNonBlank(raw.Contract.Name, UnknownCollection),
		Image:           imageUrl(raw),
		TokenId:         raw.TokenId,
		ContractAddress: raw.Contract.Address,
		Description:     firstNonBlank(raw.Description, raw.Contract.OpenSeaMetadata.Description),
	}
	if raw.Rarity.Value != nil && strings.TrimSpace(*raw.Rarity.Value) != "" {
		v := *raw.Rarity.Value
		n.Rarity = &v
	}
	return n
}

// NormalizeAll keeps the input order
func NormalizeAll(raws []RawAsset) []Nft {
	res := make([]Nft, 0, len(raws))
	for _, raw := range raws {
		res = append(res, Normalize(raw))
	}
	return res
}

// imageUrl picks cached, thumbnail, original, marketplace image, then the placeholder
func imageUrl(raw RawAsset) string {
	return firstNonBlank(
		raw.Image.CachedUrl,
		raw.Image.ThumbnailUrl,
		raw.Image.OriginalUrl,
		raw.Contract.OpenSeaMetadata.ImageUrl,
		PlaceholderImage,
	)
}
