package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPromptEmbedsInputsVerbatim(t *testing.T) {
	problem := "Given an array a of n integers, return their sum."
	solution := "for i in range(n): sum+=a[i]"

	prompt := BuildPrompt(problem, solution)

	require.Contains(t, prompt, problem)
	require.Contains(t, prompt, solution)
	require.Less(t, strings.Index(prompt, problem), strings.Index(prompt, solution))
}

func TestBuildPromptDescribesRubricAndShape(t *testing.T) {
	prompt := BuildPrompt("p", "s")

	require.Contains(t, prompt, "set rating = 1")
	require.Contains(t, prompt, "5 = a clear, structured and mostly correct algorithm")
	require.Contains(t, prompt, `"No major issues found"`)
	require.Contains(t, prompt, `"rating":`)
	require.Contains(t, prompt, `"issue":`)
	require.Contains(t, prompt, `"feedback":`)
}

func TestBuildPromptIsDeterministic(t *testing.T) {
	require.Equal(t, BuildPrompt("a", "b"), BuildPrompt("a", "b"))
}

func TestBuildPromptKeepsFormatVerbs(t *testing.T) {
	prompt := BuildPrompt("print 100%s", "x %d y")

	require.Contains(t, prompt, "print 100%s")
	require.Contains(t, prompt, "x %d y")
}
