package review

import (
	"strings"

	"github.com/dshills/forgereview/internal/forge"
)

const systemPrompt = `You are an expert senior software engineer reviewing a pull request. Follow the output format requested in the user message exactly and always end your answer with a line of the form "SCORE: NN/100".`

const promptHeader = `ACT like an expert senior software engineer performing a code review on a Pull Request.

TASK: Review the following code changes and provide constructive, actionable feedback.

GUIDELINES:
1.  Focus on code structure, readability, and adherence to the conventions of the languages involved.
2.  Identify potential bugs, logical errors, or edge cases the author may have missed.
3.  Suggest improvements for performance, security, or scalability if applicable.
4.  Be professional and helpful. Frame feedback as suggestions, not commands.

`

const promptFooter = `
OUTPUT FORMAT:

Provide inline review comments in this format:
FILE: path/to/file
LINE: 42
COMMENT: What you noticed
SUGGESTION: What to change

Also provide an overall summary:

- **Overall Summary:** [1-2 sentence summary of the changes and overall quality]
- **Potential Issues:** [Bullet list of bugs, anti-patterns, or concerns]
- **Suggestions for Improvement:** [Bullet list of specific, actionable suggestions]
- **Positive Feedback:** [What was done well?]

Finally, give a quality score from 0-100 based on:
- Code quality (40%)
- Testing (20%)
- Documentation (15%)
- Security (15%)
- Performance (10%)

End your review with the score on its own line, formatted exactly as:
SCORE: NN/100

Now, provide the review:
`

// BuildPrompt renders the review prompt for d. Title, body and diff are
// embedded verbatim.
func BuildPrompt(d forge.Details) string {
	var b strings.Builder
	b.Grow(len(promptHeader) + len(promptFooter) + len(d.Title) + len(d.Body) + len(d.Diff) + 128)

	b.WriteString(promptHeader)
	b.WriteString("PULL REQUEST TITLE: ")
	b.WriteString(d.Title)
	b.WriteString("\nPULL REQUEST DESCRIPTION: ")
	b.WriteString(d.Body)
	b.WriteString("\n\nCODE DIFF (UNIFIED FORMAT):\n```diff\n")
	b.WriteString(d.Diff)
	b.WriteString("\n```\n")
	b.WriteString(promptFooter)
	return b.String()
}

// SystemPrompt returns the system instruction sent to automated reviewers.
func SystemPrompt() string {
	return systemPrompt
}
