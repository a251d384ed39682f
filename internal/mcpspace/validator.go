package mcpspace

import "context"

// ValidateKey reports whether the candidate API key is currently usable.
// Validity is operationally defined: the key is accepted iff it can list the
// feed right now. Any failure, whether an authorization error, a network
// error or a malformed response, is a rejection signal; the caller does not
// need to distinguish them. The probe is read-only and has no effect on
// remote state.
func ValidateKey(ctx context.Context, apiKey string, opts ...ClientOption) error {
	client := NewClient(apiKey, opts...)
	_, err := client.GetFeed(ctx)
	return err
}
