package anthropic

// BuildCachedSystemBlocks constructs a single system block marked for
// prompt caching with the given TTL ("5m" or "1h"). Enrichment sends the
// same instructions for every article, so the prefix is reused across calls.
func BuildCachedSystemBlocks(text, ttl string) []SystemBlock {
	return []SystemBlock{
		{
			Text:         text,
			CacheControl: &CacheControl{TTL: ttl},
		},
	}
}
