package logging

import "strings"

// Field names that are treated as secrets. Any payload field whose
// lowercased name matches one of these is stripped before the payload is
// attached to an event or written to a log.
var secretFieldNames = map[string]struct{}{
	"password":      {},
	"passwd":        {},
	"secret":        {},
	"token":         {},
	"api_key":       {},
	"apikey":        {},
	"authorization": {},
}

// IsSecretField reports whether a field name is treated as a credential.
func IsSecretField(name string) bool {
	_, ok := secretFieldNames[strings.ToLower(name)]
	return ok
}

// StripSecrets returns a copy of the payload with all secret fields
// removed, recursing into nested maps. The input map is never modified.
// A nil input yields nil.
func StripSecrets(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}

	sanitized := make(map[string]any, len(payload))
	for key, value := range payload {
		if IsSecretField(key) {
			continue
		}
		if nested, ok := value.(map[string]any); ok {
			sanitized[key] = StripSecrets(nested)
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}
