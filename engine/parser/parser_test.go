package parser

import (
	"testing"

	"github.com/nathoo/bravecore/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.Intent
	}{
		// Empty / whitespace
		{
			name:  "empty string",
			input: "",
			want:  types.Intent{},
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  types.Intent{},
		},

		// Basic verbs (no object)
		{
			name:  "skills",
			input: "skills",
			want:  types.Intent{Verb: "skills"},
		},
		{
			name:  "flee",
			input: "flee",
			want:  types.Intent{Verb: "flee"},
		},

		// Verb aliases
		{
			name:  "z → wait",
			input: "z",
			want:  types.Intent{Verb: "wait"},
		},
		{
			name:  "run → flee",
			input: "run",
			want:  types.Intent{Verb: "flee"},
		},
		{
			name:  "a goblin → attack goblin",
			input: "a goblin",
			want:  types.Intent{Verb: "attack", Object: "goblin"},
		},
		{
			name:  "st knight → status knight",
			input: "st knight",
			want:  types.Intent{Verb: "status", Object: "knight"},
		},
		{
			name:  "cast fire at goblin",
			input: "cast fire at goblin",
			want:  types.Intent{Verb: "use", Object: "fire", Target: "goblin"},
		},
		{
			name:  "g → again",
			input: "g",
			want:  types.Intent{Verb: "again"},
		},

		// Use with targets
		{
			name:  "use slash on goblin",
			input: "use slash on goblin",
			want:  types.Intent{Verb: "use", Object: "slash", Target: "goblin"},
		},
		{
			name:  "articles stripped",
			input: "use the slash on the goblin",
			want:  types.Intent{Verb: "use", Object: "slash", Target: "goblin"},
		},
		{
			name:  "multi-word target",
			input: "use cure on dark knight",
			want:  types.Intent{Verb: "use", Object: "cure", Target: "dark knight"},
		},
		{
			name:  "use without target",
			input: "use haste",
			want:  types.Intent{Verb: "use", Object: "haste"},
		},
		{
			name:  "case folded",
			input: "USE Slash ON Goblin",
			want:  types.Intent{Verb: "use", Object: "slash", Target: "goblin"},
		},

		// Bare skill names
		{
			name:  "bare skill",
			input: "slash",
			want:  types.Intent{Verb: "use", Object: "slash"},
		},
		{
			name:  "bare skill with preposition",
			input: "slash -> goblin",
			want:  types.Intent{Verb: "use", Object: "slash", Target: "goblin"},
		},
		{
			name:  "bare skill and target words",
			input: "slash goblin",
			want:  types.Intent{Verb: "use", Object: "slash goblin"},
		},

		// Korean
		{
			name:  "korean verb alias",
			input: "도망",
			want:  types.Intent{Verb: "flee"},
		},
		{
			name:  "korean dative target",
			input: "베기 고블린에게",
			want:  types.Intent{Verb: "use", Object: "베기", Target: "고블린"},
		},
		{
			name:  "korean target first",
			input: "고블린에게 파이어 볼",
			want:  types.Intent{Verb: "use", Object: "파이어 볼", Target: "고블린"},
		},
		{
			name:  "korean trailing verb",
			input: "케알 기사한테 사용",
			want:  types.Intent{Verb: "use", Object: "케알", Target: "기사"},
		},
		{
			name:  "korean leading verb",
			input: "사용 베기",
			want:  types.Intent{Verb: "use", Object: "베기"},
		},
		{
			name:  "korean status",
			input: "상태 전사",
			want:  types.Intent{Verb: "status", Object: "전사"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitOnSuffix_BareSuffix(t *testing.T) {
	// A word that is only the suffix is not a target.
	object, target := splitOnSuffix("에게")
	if object != "에게" || target != "" {
		t.Errorf("got (%q, %q)", object, target)
	}
}
