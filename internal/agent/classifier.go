// Package agent orchestrates one conversational turn end to end: it
// classifies input, scores complexity, talks to the model driver and
// dispatches proposed tool calls.
package agent

import (
	"regexp"
	"strings"
)

// InputType categorizes raw user input.
type InputType string

const (
	// InputCommand is a slash command such as /plan or /undo.
	InputCommand InputType = "command"
	// InputShell looks like a shell command typed directly.
	InputShell InputType = "shell"
	// InputChat is natural language for the model.
	InputChat InputType = "chat"
)

// shellBinaries are commands recognized as direct shell input.
var shellBinaries = map[string]struct{}{
	"ls": {}, "cd": {}, "pwd": {}, "cat": {}, "head": {}, "tail": {},
	"less": {}, "more": {}, "cp": {}, "mv": {}, "rm": {}, "mkdir": {},
	"rmdir": {}, "touch": {}, "chmod": {}, "find": {}, "tree": {},
	"stat": {}, "du": {}, "df": {},
	"grep": {}, "rg": {}, "awk": {}, "sed": {}, "cut": {}, "sort": {},
	"uniq": {}, "wc": {}, "diff": {}, "tr": {},
	"tar": {}, "zip": {}, "unzip": {}, "gzip": {},
	"curl": {}, "wget": {}, "ssh": {}, "scp": {}, "rsync": {}, "ping": {},
	"git": {}, "svn": {}, "hg": {},
	"npm": {}, "yarn": {}, "pip": {}, "pip3": {}, "cargo": {}, "go": {},
	"apt": {}, "brew": {},
	"python": {}, "python3": {}, "node": {}, "ruby": {},
	"make": {}, "cmake": {}, "gcc": {}, "clang": {},
	"docker": {}, "kubectl": {},
	"echo": {}, "printf": {}, "date": {}, "which": {}, "whoami": {},
	"env": {}, "man": {}, "xargs": {},
}

// naturalLanguageMarkers disqualify shell classification when they
// appear after a binary name, e.g. "make a calculator".
var naturalLanguageMarkers = map[string]struct{}{
	"a": {}, "an": {}, "the": {},
	"for": {}, "with": {}, "to": {}, "from": {}, "in": {}, "on": {},
	"at": {}, "by": {}, "about": {},
	"i": {}, "me": {}, "my": {}, "we": {}, "us": {}, "our": {},
	"you": {}, "your": {},
	"please": {}, "can": {}, "could": {}, "would": {}, "should": {},
	"want": {}, "need": {}, "help": {}, "show": {}, "explain": {},
	"tell": {}, "give": {}, "create": {}, "build": {},
	"what": {}, "how": {}, "why": {}, "where": {}, "when": {},
	"which": {}, "who": {},
}

var (
	shellOperators = regexp.MustCompile("[|><;&`$()]")
	shellPatterns  = []*regexp.Regexp{
		regexp.MustCompile(`^\s*\./`),
		regexp.MustCompile(`^\s*~/`),
		regexp.MustCompile(`^\s*/`),
		regexp.MustCompile(`\s+--?\w`),
		regexp.MustCompile(`^\s*\w+=`),
	}
)

// Classify categorizes raw user input into command, shell or chat.
func Classify(input string) InputType {
	text := strings.TrimSpace(input)
	if text == "" {
		return InputChat
	}
	if strings.HasPrefix(text, "/") {
		return InputCommand
	}
	if looksLikeShell(text) {
		return InputShell
	}
	return InputChat
}

// ExtractCommand splits a slash command into name and arguments.
func ExtractCommand(input string) (string, string) {
	text := strings.TrimSpace(input)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	parts := strings.SplitN(text[1:], " ", 2)
	name := strings.ToLower(parts[0])
	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}
	return name, args
}

func looksLikeShell(text string) bool {
	if shellOperators.MatchString(text) {
		return true
	}
	for _, p := range shellPatterns {
		if p.MatchString(text) {
			return true
		}
	}

	words := strings.Fields(text)
	first := strings.ToLower(words[0])
	if idx := strings.LastIndex(first, "/"); idx >= 0 {
		first = first[idx+1:]
	}
	if _, ok := shellBinaries[first]; !ok {
		return false
	}

	// A known binary followed by natural language is a request, not a
	// command: "make a calculator" vs "make build".
	for _, w := range words[1:] {
		if _, ok := naturalLanguageMarkers[strings.ToLower(w)]; ok {
			return false
		}
	}
	return true
}
