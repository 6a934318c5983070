package engine

import (
	"sort"
	"strings"

	"github.com/codeready-toolchain/orchestratord/pkg/config"
	"github.com/codeready-toolchain/orchestratord/pkg/slot"
)

// otherNames returns every enabled slot's name except self, in declaration
// order — the "peers" list for the Phase-1 prompt.
func otherNames(slots []config.SlotConfig, self string) []string {
	out := make([]string, 0, len(slots)-1)
	for _, s := range slots {
		if s.Name != self {
			out = append(out, s.Name)
		}
	}
	return out
}

// assemblePeerContext concatenates every other slot's Phase-1 ok text, each
// prefixed with the peer's name and role.
func assemblePeerContext(slots []config.SlotConfig, proposals map[string]string, self string) string {
	roles := make(map[string]string, len(slots))
	for _, s := range slots {
		roles[s.Name] = s.Role
	}

	names := make([]string, 0, len(proposals))
	for name := range proposals {
		if name != self {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, slot.PeerLabel(name, roles[name], proposals[name]))
	}
	return strings.Join(parts, " | ")
}

// assembleBallot labels every refined (or, absent that, proposed) answer for
// the Phase-3 vote prompt.
func assembleBallot(slots []config.SlotConfig, texts map[string]string) string {
	roles := make(map[string]string, len(slots))
	for _, s := range slots {
		roles[s.Name] = s.Role
	}

	names := make([]string, 0, len(texts))
	for name := range texts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, slot.PeerLabel(name, roles[name], texts[name]))
	}
	return strings.Join(parts, " | ")
}
