package policy

import (
	"strings"

	clierr "github.com/ggonzalez94/sushi-wallet/internal/errors"
)

// alwaysAllowed commands carry no chain access and stay usable under any allowlist.
var alwaysAllowed = []string{"version", "schema"}

// CheckCommandAllowed enforces the --enable-commands allowlist. An entry
// allows the command itself and every subcommand under it, so "wallet"
// enables "wallet deposit".
func CheckCommandAllowed(allowlist []string, commandPath string) error {
	if len(allowlist) == 0 {
		return nil
	}
	normPath := normalize(commandPath)
	for _, allowed := range append(append([]string(nil), alwaysAllowed...), allowlist...) {
		norm := normalize(allowed)
		if norm == "" {
			continue
		}
		if normPath == norm || strings.HasPrefix(normPath, norm+" ") {
			return nil
		}
	}
	return clierr.New(clierr.CodeBlocked, "command blocked by --enable-commands policy")
}

func normalize(v string) string {
	parts := strings.Fields(strings.ToLower(strings.TrimSpace(v)))
	return strings.Join(parts, " ")
}
