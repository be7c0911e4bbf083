package artifactory

import "context"

const (
	publicKeyPath  = "gpg/key/public"
	privateKeyPath = "gpg/key/private"
)

// AddPublicKey uploads the GPG public key stored at filePath.
func (c *Client) AddPublicKey(ctx context.Context, filePath string) error {
	return c.putFile(ctx, publicKeyPath, filePath, nil)
}

// AddPrivateKey uploads the GPG private key stored at filePath together with its passphrase.
func (c *Client) AddPrivateKey(ctx context.Context, filePath, passphrase string) error {
	return c.putFile(ctx, privateKeyPath, filePath, map[string]string{headerPassphrase: passphrase})
}
