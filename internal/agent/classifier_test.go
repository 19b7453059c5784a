package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyCommand(t *testing.T) {
	assert.Equal(t, InputCommand, Classify("/help"))
	assert.Equal(t, InputCommand, Classify("  /plan now"))
}

func TestClassifyShell(t *testing.T) {
	assert.Equal(t, InputShell, Classify("ls -la"))
	assert.Equal(t, InputShell, Classify("git status"))
	assert.Equal(t, InputShell, Classify("cat a.txt | grep x"))
	assert.Equal(t, InputShell, Classify("./run.sh"))
	assert.Equal(t, InputShell, Classify("FOO=1 make"))
}

func TestClassifyChat(t *testing.T) {
	assert.Equal(t, InputChat, Classify("explain this function"))
	assert.Equal(t, InputChat, Classify(""))
	// Binary name followed by natural language is a request.
	assert.Equal(t, InputChat, Classify("make a calculator"))
	assert.Equal(t, InputChat, Classify("go through the tests"))
}

func TestExtractCommand(t *testing.T) {
	name, args := ExtractCommand("/sessions load abc")
	assert.Equal(t, "sessions", name)
	assert.Equal(t, "load abc", args)

	name, args = ExtractCommand("/HELP")
	assert.Equal(t, "help", name)
	assert.Empty(t, args)
}
