package agent

import (
	"fmt"
	"io"
)

// Thought is one step of the engine's reasoning for a turn.
type Thought struct {
	Step    int    `json:"step"`
	Thought string `json:"thought"`
	Action  string `json:"action"`
	Outcome string `json:"outcome,omitempty"`
}

// addThought appends a reasoning step to the result.
func addThought(res *Result, thought, action, outcome string) {
	res.Thoughts = append(res.Thoughts, Thought{
		Step:    len(res.Thoughts) + 1,
		Thought: thought,
		Action:  action,
		Outcome: outcome,
	})
}

// DisplayChainOfThought prints the reasoning steps for verbose CLI output.
func DisplayChainOfThought(w io.Writer, res Result) {
	if len(res.Thoughts) == 0 {
		return
	}

	fmt.Fprintf(w, "💭 Reasoning Chain:\n")
	for _, thought := range res.Thoughts {
		fmt.Fprintf(w, "   [%d] %s: %s\n", thought.Step, thought.Action, thought.Thought)
		if thought.Outcome != "" {
			fmt.Fprintf(w, "   → %s\n", thought.Outcome)
		}
	}
	fmt.Fprintf(w, "\n")
}
