package scoring

import (
	"strings"
	"testing"
)

func TestSentenceCoherenceTwoSentences(t *testing.T) {
	// Below the three-sentence threshold the score is a fixed floor,
	// regardless of content.
	texts := []string{
		"Rick was born on Earth. He grew up fast.",
		"Then suddenly later eventually. However meanwhile after next.",
	}

	for _, text := range texts {
		if got := SentenceCoherence(text); got != 0.2 {
			t.Errorf("SentenceCoherence(%q) = %v, want 0.2", text, got)
		}
	}
}

func TestSentenceCoherenceBaseline(t *testing.T) {
	// Three plain sentences with no structure markers hit the baseline.
	text := "Cats sleep. Dogs bark. Fish swim."
	if got := SentenceCoherence(text); got != 0.4 {
		t.Errorf("SentenceCoherence() = %v, want baseline 0.4", got)
	}
}

func TestSentenceCoherenceStructureBonuses(t *testing.T) {
	// Beginning indicator up front, ending indicator at the end, two
	// transition words: 0.4 + 0.15 + 0.15 + 0.15 = 0.85.
	text := "Rick was born on Earth. Then he left for space. After many years he wandered. He currently lives in the garage."
	if got := SentenceCoherence(text); !almostEqual(got, 0.85) {
		t.Errorf("SentenceCoherence() = %v, want 0.85", got)
	}
}

func TestSentenceCoherenceChoppyPenalty(t *testing.T) {
	// More than 30% of sentences opening with a conjunction costs 0.1.
	choppy := "Rick left home. And he ran. But he fell. So he cried. And he stopped."
	smooth := "Rick left home. He ran for days. He fell once. He cried quietly. He stopped at dawn."

	if SentenceCoherence(choppy) >= SentenceCoherence(smooth) {
		t.Error("choppy text should score below smooth text")
	}
}

func TestSentenceCoherenceNonSequiturPenalty(t *testing.T) {
	base := "Rick built a machine. He tested it twice. He sold it for cash."
	withNS := "Rick built a machine. He tested it twice. Out of nowhere he sold it."

	if SentenceCoherence(withNS) >= SentenceCoherence(base) {
		t.Error("non-sequitur phrase should lower the score")
	}
}

func TestSentenceCoherenceRange(t *testing.T) {
	texts := []string{
		"",
		"one.",
		strings.Repeat("And then suddenly. ", 50),
		"Rick was born on Earth. Then he left. Eventually he came back. He currently lives at home.",
	}

	for _, text := range texts {
		got := SentenceCoherence(text)
		if got < 0 || got > 1 {
			t.Errorf("SentenceCoherence(%q) = %v, out of [0,1]", text, got)
		}
	}
}

func TestStoryCoherenceShortText(t *testing.T) {
	if got := StoryCoherence("too short"); got != 0.1 {
		t.Errorf("StoryCoherence(short) = %v, want 0.1", got)
	}
	if got := StoryCoherence("   "); got != 0.1 {
		t.Errorf("StoryCoherence(blank) = %v, want 0.1", got)
	}
}

func TestStoryCoherenceTwoSentences(t *testing.T) {
	text := "They explored the whole citadel together. They fought bravely there."
	if got := StoryCoherence(text); got != 0.2 {
		t.Errorf("StoryCoherence() = %v, want 0.2", got)
	}
}

func TestStoryCoherenceActionBonus(t *testing.T) {
	// Three transitions (0.25) and three action verbs (0.20) on the baseline.
	text := "Then they ran into the swamp. After that they fought the beast. Later they escaped through a portal."
	if got := StoryCoherence(text); !almostEqual(got, 0.85) {
		t.Errorf("StoryCoherence() = %v, want 0.85", got)
	}
}

func TestStoryCoherenceRange(t *testing.T) {
	texts := []string{
		"",
		"short",
		"Then they ran. After that they fought. But they hid. And they fled. So it ended for no reason.",
		strings.Repeat("They explored and battled onward. ", 30),
	}

	for _, text := range texts {
		got := StoryCoherence(text)
		if got < 0 || got > 1 {
			t.Errorf("StoryCoherence(%q) = %v, out of [0,1]", text, got)
		}
	}
}
