package openai

import "testing"

func TestNewClientValidatesInputs(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		model  string
		wantOK bool
	}{
		{name: "both present", apiKey: "sk-test", model: "gpt-4o-mini", wantOK: true},
		{name: "missing key", apiKey: "", model: "gpt-4o-mini", wantOK: false},
		{name: "missing model", apiKey: "sk-test", model: "", wantOK: false},
		{name: "blank model", apiKey: "sk-test", model: "   ", wantOK: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.apiKey, tt.model)
			if tt.wantOK && (err != nil || c == nil) {
				t.Fatalf("NewClient(%q, %q) = %v, %v", tt.apiKey, tt.model, c, err)
			}
			if !tt.wantOK && err == nil {
				t.Fatalf("NewClient(%q, %q) should fail", tt.apiKey, tt.model)
			}
		})
	}
}
