package ai

import "fmt"

const reviewTemplate = `You are reviewing pseudocode written for a coding interview problem.

Problem:
%s

Submitted pseudocode:
%s

Relevance check (do this first):
- Decide whether the submission is pseudocode at all and whether it addresses the problem above.
- If it is unrelated text, a question, a request or a statement that does not try to solve the problem,
  set rating = 1 and say that no pseudocode was provided.

Rating rubric:
1 = vague, a single statement (for example "sort the array" or "use a hash map"), or no step-by-step logic or control flow.
2, 3 or 4 = an attempt at structured logic with control flow or conditions, but important steps or details are missing.
5 = a clear, structured and mostly correct algorithm.
Keywords alone never earn a higher rating; the steps must form a logical flow.

Feedback tone:
- rating 1: encourage the user and explain how to start by writing concrete steps instead of ideas.
- rating 2 to 4: name the specific logical gaps or unclear parts of the flow.
- rating 5: praise briefly and suggest one small improvement.
- When there is no major issue, use "issue": ["No major issues found"].

Answer with JSON only, exactly in this shape:
{
  "rating": <integer from 1 to 5>,
  "issue": ["<one or two short points>"],
  "feedback": ["<one or two concise suggestions>"]
}
`

// BuildPrompt renders the grading instructions for a problem and a pseudocode submission.
func BuildPrompt(problemText, solutionText string) string {
	return fmt.Sprintf(reviewTemplate, problemText, solutionText)
}
