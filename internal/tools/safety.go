package tools

import "strings"

// safePrefixes are commands considered read-only when they lead the
// command line. A command matching one of these may auto-execute
// without confirmation when the execution config allows it.
var safePrefixes = map[string]struct{}{
	"ls": {}, "pwd": {}, "cat": {}, "head": {}, "tail": {},
	"less": {}, "more": {}, "echo": {}, "which": {}, "whoami": {},
	"date": {}, "wc": {}, "file": {}, "tree": {},
	"grep": {}, "rg": {}, "ag": {},
}

// safeGitPrefixes are read-only git subcommands.
var safeGitPrefixes = []string{
	"git status", "git log", "git diff", "git branch", "git show",
	"git remote -v",
}

// metaChars disqualify a command from the safe classification since
// they can chain arbitrary follow-on commands.
const metaChars = ";|&><$`"

// IsSafeCommand reports whether a shell command is on the read-only
// whitelist. extra lists additional whitelisted commands from config,
// matched exactly.
func IsSafeCommand(command string, extra []string) bool {
	cmd := strings.ToLower(strings.TrimSpace(command))
	if cmd == "" {
		return false
	}

	if strings.ContainsAny(cmd, metaChars) {
		return false
	}

	for _, e := range extra {
		if cmd == strings.ToLower(strings.TrimSpace(e)) {
			return true
		}
	}

	first := strings.Fields(cmd)[0]
	if _, ok := safePrefixes[first]; ok {
		return true
	}

	for _, p := range safeGitPrefixes {
		if cmd == p || strings.HasPrefix(cmd, p+" ") {
			return true
		}
	}

	// Version checks
	if strings.Contains(cmd, "--version") {
		return true
	}
	fields := strings.Fields(cmd)
	if len(fields) == 2 && fields[1] == "version" {
		return true
	}

	return false
}
