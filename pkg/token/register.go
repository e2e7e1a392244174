package token

import "sync"

var (
	registryMu sync.RWMutex

	// nextTokenID tracks the next available dynamic token ID.
	// Dynamic tokens start after maxBuiltin (999).
	nextTokenID = maxBuiltin

	// dynamicTokens maps registered dynamic tokens to their names.
	dynamicTokens = make(map[TokenType]string)

	// dynamicKeywords maps registered dynamic names to their token types.
	dynamicKeywords = make(map[string]TokenType)
)

// Register registers a new dynamic token with the given name and returns
// its type. Registering the same name again returns the existing type.
// Dialects call this from package-level vars for tokens the core catalog
// does not know about (e.g. RLIKE).
func Register(name string) TokenType {
	registryMu.Lock()
	defer registryMu.Unlock()

	if t, ok := dynamicKeywords[name]; ok {
		return t
	}
	nextTokenID++
	t := nextTokenID
	dynamicTokens[t] = name
	dynamicKeywords[name] = t
	return t
}

// getDynamicName returns the name of a dynamic token.
func getDynamicName(t TokenType) (string, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	name, ok := dynamicTokens[t]
	return name, ok
}

// LookupDynamicKeyword returns the token type for a dynamic token name.
// Returns IDENT and false if the name is not registered.
func LookupDynamicKeyword(name string) (TokenType, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if tok, ok := dynamicKeywords[name]; ok {
		return tok, true
	}
	return IDENT, false
}

// IsDynamic returns true if the token type is a dynamically registered token.
func IsDynamic(t TokenType) bool {
	return t > maxBuiltin
}

// RegisteredTokens returns a copy of all registered dynamic tokens.
func RegisteredTokens() map[TokenType]string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make(map[TokenType]string, len(dynamicTokens))
	for k, v := range dynamicTokens {
		result[k] = v
	}
	return result
}
