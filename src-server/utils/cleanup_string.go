package utils

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// strips spaces, collapses inner whitespace runs into one space
func CleanupString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// strips spaces, upper-cases with Polish rules ("zakupy" -> "ZAKUPY")
func NormalizeKeyword(s string) string {
	return cases.Upper(language.Polish).String(strings.TrimSpace(s))
}

// Server nick first, then the global display name, then the username.
func DisplayName(m *discordgo.Member) string {
	switch {
	case m == nil || m.User == nil:
		return "unknown"
	case m.Nick != "":
		return m.Nick
	case m.User.GlobalName != "":
		return m.User.GlobalName
	default:
		return m.User.Username
	}
}

// Clamp s to at most n runes, Discord rejects longer embed values.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
