package configs

import (
	"reflect"
	"testing"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEYS", "")
	for _, name := range legacyKeyVars {
		t.Setenv(name, "")
	}
}

func TestCollectAPIKeys(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want []string
	}{
		{
			name: "none configured",
			env:  map[string]string{},
			want: []string{},
		},
		{
			name: "comma list with blanks",
			env:  map[string]string{"GEMINI_API_KEYS": "a, b,,c "},
			want: []string{"a", "b", "c"},
		},
		{
			name: "legacy variables appended in order",
			env:  map[string]string{"API_KEY": "k0", "API_KEY2": "k2", "API_KEY1": "k1"},
			want: []string{"k0", "k1", "k2"},
		},
		{
			name: "duplicates dropped",
			env:  map[string]string{"GEMINI_API_KEYS": "a,b", "GEMINI_API_KEY": "a", "API_KEY4": "d"},
			want: []string{"a", "b", "d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearKeyEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			got := collectAPIKeys()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("collectAPIKeys() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("GEMINI_API_KEYS", "one,two")
	t.Setenv("VERIFY_CONCURRENCY", "")
	t.Setenv("GEMINI_RPM", "")
	t.Setenv("PIPELINE_TIMEOUT", "not-a-number")
	t.Setenv("ENABLE_SEARCH_GROUNDING", "false")
	t.Setenv("FDA_BASE_URL", "")
	t.Setenv("FDA_API_KEY", "fda-key")

	LoadConfig()

	if len(GEMINI_API_KEYS) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(GEMINI_API_KEYS))
	}
	if VERIFY_CONCURRENCY != 8 {
		t.Errorf("VERIFY_CONCURRENCY = %d, want 8", VERIFY_CONCURRENCY)
	}
	if GEMINI_RPM != 30 {
		t.Errorf("GEMINI_RPM = %d, want 30 (15 per key)", GEMINI_RPM)
	}
	if PIPELINE_TIMEOUT != 60 {
		t.Errorf("PIPELINE_TIMEOUT = %d, want default 60 on bad input", PIPELINE_TIMEOUT)
	}
	if ENABLE_SEARCH_GROUNDING {
		t.Error("ENABLE_SEARCH_GROUNDING should honour false")
	}
	if FDA_BASE_URL != "https://api.fda.gov" || FDA_API_KEY != "fda-key" {
		t.Errorf("FDA settings = %q / %q", FDA_BASE_URL, FDA_API_KEY)
	}
}
