// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package generator

import (
	"fmt"
	"strings"
)

// systemPrompt frames every generation call.
const systemPrompt = `You are a professional job interviewer. You ask one concise, relevant question at a time and never add commentary around it.`

// maxHistoryTurns bounds how much transcript goes into a follow-up prompt so
// prompt size stays flat no matter how long the interview runs.
const maxHistoryTurns = 6

func firstQuestionPrompt(name, topic string) string {
	return fmt.Sprintf(`Start an interview with a candidate named %q on the topic %q.
KEEP IT BRIEF, just provide the first question. DO NOT add explanations.
The question should be relevant to the field of %q.`, name, topic, topic)
}

func nextQuestionPrompt(topic string, questions, answers []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Below is the history of an interview on the topic %q.
Please provide the next question ONLY based on the candidate's previous answer.
KEEP IT BRIEF, just provide the next question. DO NOT add explanations.
If the candidate wants to end the interview, provide a conclusion and mark the interview as completed.

Interview history:
`, topic)
	b.WriteString(historyTail(questions, answers))
	return b.String()
}

// historyTail renders the most recent turns as an interviewer/candidate
// transcript. Questions lead answers by one, so the window takes up to
// maxHistoryTurns questions and their paired answers from the end.
func historyTail(questions, answers []string) string {
	turns := len(questions)
	if max := len(answers) + 1; turns > max {
		turns = max
	}
	if turns > maxHistoryTurns {
		turns = maxHistoryTurns
	}

	var b strings.Builder
	for i := 0; i < turns; i++ {
		qi := len(questions) - turns + i
		if qi >= 0 && qi < len(questions) {
			fmt.Fprintf(&b, "Interviewer: %s\n\n", questions[qi])
		}
		ai := len(answers) - turns + i
		if ai >= 0 && ai < len(answers) {
			fmt.Fprintf(&b, "Candidate: %s\n\n", answers[ai])
		}
	}
	return b.String()
}
