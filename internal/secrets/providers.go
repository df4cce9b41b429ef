package secrets

// providerKeys maps each known provider to the vault keys that must all be
// present before any action targeting that provider may run.
var providerKeys = map[string][]string{
	"odoo":       {"ODOO_HOST", "ODOO_DB", "ODOO_USERNAME", "ODOO_PASSWORD"},
	"cloudflare": {"CF_API_TOKEN", "CF_ACCOUNT_ID", "CF_ZONE_ID"},
	"n8n":        {"N8N_API_KEY", "N8N_HOST"},
}

// ProviderKeys returns the full set of vault keys across all known
// providers, for seeding an EnvLoader.
func ProviderKeys() []string {
	var keys []string
	for _, ks := range providerKeys {
		keys = append(keys, ks...)
	}
	return keys
}

// Gate answers whether a provider's required credentials are present.
type Gate struct {
	vault *Vault
}

// NewGate creates a Gate backed by the given vault.
func NewGate(vault *Vault) *Gate {
	return &Gate{vault: vault}
}

// HasSecrets reports whether every required credential for the named
// provider is present and non-empty. Unknown providers are denied.
func (g *Gate) HasSecrets(provider string) bool {
	keys, ok := providerKeys[provider]
	if !ok {
		return false
	}
	for _, k := range keys {
		if !g.vault.Has(k) {
			return false
		}
	}
	return true
}
