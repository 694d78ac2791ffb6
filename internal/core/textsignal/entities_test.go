package textsignal

import "testing"

func TestExtractEntities(t *testing.T) {
	text := "I was shocked to hear President Raymond is retiring. president raymond did so much for Haverford College."

	entities := ExtractEntities(text)

	want := map[string]bool{"President Raymond": false, "Haverford College": false}
	for _, e := range entities {
		if _, ok := want[e]; ok {
			want[e] = true
		}
	}
	for entity, found := range want {
		if !found {
			t.Fatalf("expected entity %q in %v", entity, entities)
		}
	}
}

func TestExtractEntitiesDeduplicates(t *testing.T) {
	entities := ExtractEntities("Dean Walker met Dean Walker.")
	count := 0
	for _, e := range entities {
		if e == "Dean Walker" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected one Dean Walker entry, got %v", entities)
	}
}

func TestNormalizeEntity(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"President Raymonds", "President Raymond"},
		{"President Raymond's", "President Raymond"},
		{"See President", ""},
		{"To President", ""},
		{"Campus Safety Committee", "Campus Safety Committee"},
	}

	for _, tc := range cases {
		if got := NormalizeEntity(tc.in); got != tc.want {
			t.Fatalf("NormalizeEntity(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
