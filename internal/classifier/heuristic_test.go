package classifier

import "testing"

func TestLooksFactualClaim(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"too short", "hi all", false},
		{"subjective opener i think", "I think this movie is fantastic", false},
		{"subjective opener we believe", "We believe things will improve", false},
		{"numeric claim", "The Eiffel Tower is 330 m tall", true},
		{"measurement word without digit", "the bridge is a hundred meters long", true},
		{"copula claim", "Paris is the capital of Sweden", true},
		{"plain exclamation", "wow amazing stuff!!", false},
		{"percentage", "unemployment rose 5% last month", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksFactualClaim(tt.text); got != tt.want {
				t.Errorf("LooksFactualClaim(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
