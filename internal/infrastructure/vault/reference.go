// Package vault stores and resolves deployment secrets.
//
// Secrets are addressed by references of the form scheme://vault/name, where
// scheme is keyvault for Azure Key Vault or secretscope for a Databricks
// secret scope. A reference string is the only form in which a secret may
// appear in a sanitized flow definition or a generated config.
package vault

import (
	"strings"
)

// Reference schemes.
const (
	SchemeKeyVault    = "keyvault"
	SchemeSecretScope = "secretscope"
)

// Reference is a parsed secret reference.
type Reference struct {
	Scheme string
	Vault  string
	Name   string
}

// String renders the reference as scheme://vault/name.
func (r Reference) String() string {
	return ComposeURI(r.Scheme, r.Vault, r.Name)
}

// ComposeURI renders a reference for the given scheme, vault and secret name.
func ComposeURI(scheme, vaultName, secretName string) string {
	return scheme + "://" + vaultName + "/" + secretName
}

// ParseReference parses s as a secret reference. It reports false when s
// does not use a known scheme or lacks a vault or secret name.
func ParseReference(s string) (Reference, bool) {
	scheme, rest, ok := strings.Cut(strings.TrimSpace(s), "://")
	if !ok {
		return Reference{}, false
	}
	scheme = strings.ToLower(scheme)
	if scheme != SchemeKeyVault && scheme != SchemeSecretScope {
		return Reference{}, false
	}

	vaultName, name, ok := strings.Cut(rest, "/")
	if !ok || vaultName == "" || name == "" || strings.Contains(name, "/") {
		return Reference{}, false
	}

	return Reference{Scheme: scheme, Vault: vaultName, Name: name}, true
}

// IsSecretRef reports whether s is a secret reference.
func IsSecretRef(s string) bool {
	_, ok := ParseReference(s)
	return ok
}
