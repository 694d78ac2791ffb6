package textsignal

import "testing"

func TestIsEmailChain(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "forwarded header block",
			text: "From: John Smith\nSent: Tuesday\nTo: Team\n\nGreat points everyone!",
			want: true,
		},
		{
			name: "begin forwarded message",
			text: "Begin forwarded message\nCheck this out",
			want: true,
		},
		{
			name: "reply marker",
			text: "On Mon, Jan 5, 2026 Jane wrote:\n> original text",
			want: true,
		},
		{
			name: "multiple from lines",
			text: "From: a@example.com\nhello\nFrom: b@example.com\nworld",
			want: true,
		},
		{
			name: "plain feedback",
			text: "I am concerned about the new tuition policy and want it reconsidered.",
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsEmailChain(tc.text); got != tc.want {
				t.Fatalf("IsEmailChain() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsLinkOnly(t *testing.T) {
	if !IsLinkOnly("https://news.site.com/article-12345\n\nSent from my iPhone") {
		t.Fatalf("expected link-plus-signature body to be link-only")
	}
	if IsLinkOnly("I read this article and it raises serious concerns about campus safety that I want to discuss: https://news.site.com/a") {
		t.Fatalf("substantive text around a link must not be link-only")
	}
}

func TestIsEmptyOrMinimal(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{name: "empty string", text: "", want: true},
		{name: "whitespace only", text: "  \n\t  ", want: true},
		{name: "short ack with signature", text: "Ok\nSent from my iPhone", want: true},
		{name: "real content", text: "I'm very upset about the new scholarship requirements and want them reconsidered.", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsEmptyOrMinimal(tc.text); got != tc.want {
				t.Fatalf("IsEmptyOrMinimal(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}
