package credentials

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	// Register the keeper drivers accepted by CREDENTIALS_KEEPER_URI.
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// OpenKeeper opens the keeper used to decrypt "enc:" values.
// Supports hashivault:// and base64key:// URIs.
func OpenKeeper(ctx context.Context, keyURI string) (*secrets.Keeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open credentials keeper: %w", err)
	}
	return keeper, nil
}
