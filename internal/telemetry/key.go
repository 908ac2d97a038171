// Package telemetry names converted telemetry items and joins longitude/latitude item values
// into position samples.
package telemetry

import (
	"errors"
	"fmt"
	"strings"
)

const (
	keyPrefix = "DECOM__TLM"
	keySuffix = "CONVERTED"
	keySep    = "__"
)

// ErrInvalidKey is returned by ParseKey for strings not produced by BuildKey
var ErrInvalidKey = errors.New("invalid telemetry key")

// BuildKey names a converted telemetry item: DECOM__TLM__{target}__{packet}__{item}__CONVERTED
func BuildKey(target, packet, item string) string {
	return strings.Join([]string{keyPrefix, target, packet, item, keySuffix}, keySep)
}

// ParseKey splits a key built by BuildKey back into its parts
func ParseKey(key string) (target, packet, item string, err error) {
	parts := strings.Split(key, keySep)
	if len(parts) != 6 || parts[0]+keySep+parts[1] != keyPrefix || parts[5] != keySuffix {
		return "", "", "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if parts[2] == "" || parts[3] == "" || parts[4] == "" {
		return "", "", "", fmt.Errorf("%w: empty component in %q", ErrInvalidKey, key)
	}
	return parts[2], parts[3], parts[4], nil
}
