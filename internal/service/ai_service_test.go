package service

import "testing"

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"caption": "x"}`, `{"caption": "x"}`},
		{"json fence", "```json\n{\"caption\": \"x\"}\n```", `{"caption": "x"}`},
		{"plain fence", "```\n{\"caption\": \"x\"}\n```", `{"caption": "x"}`},
		{"fence with preamble", "Voici le contenu:\n```json\n{\"caption\": \"x\"}\n```", `{"caption": "x"}`},
		{"whitespace", "  {\"caption\": \"x\"}  \n", `{"caption": "x"}`},
		{"unterminated fence", "```json\n{\"caption\": \"x\"}", "```json\n{\"caption\": \"x\"}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
