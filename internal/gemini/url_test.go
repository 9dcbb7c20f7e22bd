package gemini

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "gemini://example.org", want: "gemini://example.org/"},
		{in: "gemini://example.org/", want: "gemini://example.org/"},
		{in: "gemini://example.org/docs/", want: "gemini://example.org/docs"},
		{in: "gemini://example.org/docs//", want: "gemini://example.org/docs"},
		{in: "GEMINI://Example.ORG/Path", want: "gemini://example.org/Path"},
		{in: "gemini://example.org:1965/a", want: "gemini://example.org/a"},
		{in: "gemini://example.org:1966/a", want: "gemini://example.org:1966/a"},
		{in: "gemini://example.org/a#section", want: "gemini://example.org/a"},
		{in: "gemini://example.org/search?q=fox", want: "gemini://example.org/search?q=fox"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := Normalize(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base string
		ref  string
		want string
	}{
		{base: "gemini://host/old", ref: "/new", want: "gemini://host/new"},
		{base: "gemini://a/b/", ref: "/c", want: "gemini://a/c"},
		{base: "gemini://a/b/", ref: "c.gmi", want: "gemini://a/b/c.gmi"},
		{base: "gemini://a/b/c.gmi", ref: "../d.gmi", want: "gemini://a/d.gmi"},
		{base: "gemini://a/", ref: "gemini://other/x", want: "gemini://other/x"},
		{base: "gemini://a/", ref: "https://web.example/", want: "https://web.example/"},
	}

	for _, tt := range tests {
		t.Run(tt.base+" "+tt.ref, func(t *testing.T) {
			t.Parallel()

			got, err := Resolve(tt.base, tt.ref)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
			}
		})
	}
}

func TestIsGeminiURL(t *testing.T) {
	t.Parallel()

	valid := []string{"gemini://example.org/", "GEMINI://example.org", "gemini://127.0.0.1:1965/x"}
	invalid := []string{"", "example.org", "https://example.org/", "gemini:///path", "/relative", "gemini://%zz"}

	for _, raw := range valid {
		if !IsGeminiURL(raw) {
			t.Errorf("expected %q to be a gemini URL", raw)
		}
	}
	for _, raw := range invalid {
		if IsGeminiURL(raw) {
			t.Errorf("expected %q not to be a gemini URL", raw)
		}
	}
}

func TestStatusClass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   StatusClass
	}{
		{status: StatusInput, want: ClassInput},
		{status: StatusSuccess, want: ClassSuccess},
		{status: StatusRedirectTemporary, want: ClassRedirect},
		{status: StatusTemporaryFailure, want: ClassTemporaryFailure},
		{status: StatusNotFound, want: ClassPermanentFailure},
		{status: StatusCertificateNotValid, want: ClassClientCertificate},
		{status: 7, want: ClassUnknown},
		{status: 99, want: ClassUnknown},
	}

	for _, tt := range tests {
		if got := ClassOf(tt.status); got != tt.want {
			t.Errorf("ClassOf(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}

	if !IsRedirect(30) || !IsRedirect(31) || IsRedirect(32) || IsRedirect(20) {
		t.Error("IsRedirect should accept exactly 30 and 31")
	}
}
