package backend

import (
	"testing"
)

func TestParseBranchPointsAt(t *testing.T) {
	t.Parallel()

	const commit1 = "1111111111111111111111111111111111111111"

	in := commit1 + "\trefs/heads/main\n" +
		commit1 + "\trefs/heads/feature\n" +
		commit1 + "\trefs/remotes/origin/main\n" +
		commit1 + "\trefs/remotes/origin/HEAD\n" +
		commit1 + "\t(no branch, rebasing feature)\n" +
		"\n"

	got, err := parseBranchPointsAt(in)
	if err != nil {
		t.Fatalf("parseBranchPointsAt() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("unexpected ref count: got %d want 4 (%+v)", len(got), got)
	}
	assertHasRef(t, got, Ref{Hash: commit1, Kind: RefKindBranch, Name: "main"})
	assertHasRef(t, got, Ref{Hash: commit1, Kind: RefKindBranch, Name: "feature"})
	assertHasRef(t, got, Ref{Hash: commit1, Kind: RefKindRemoteBranch, Name: "origin/main"})
	assertHasRef(t, got, Ref{Hash: commit1, Kind: RefKindBranch, Name: "(no branch, rebasing feature)"})
}

func TestParseBranchPointsAt_InvalidLine(t *testing.T) {
	t.Parallel()

	_, err := parseBranchPointsAt("refs/heads/main\n")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestParseTagPointsAt(t *testing.T) {
	t.Parallel()

	const (
		commit1 = "1111111111111111111111111111111111111111"
		tagObj  = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	)

	in := commit1 + "\t\trefs/tags/v1.0\n" +
		tagObj + "\t" + commit1 + "\trefs/tags/v2.0\n"

	got, err := parseTagPointsAt(in)
	if err != nil {
		t.Fatalf("parseTagPointsAt() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected ref count: got %d want 2", len(got))
	}
	assertHasRef(t, got, Ref{Hash: commit1, Kind: RefKindTag, Name: "v1.0"})
	// v2.0 should use the peeled hash.
	assertHasRef(t, got, Ref{Hash: commit1, Kind: RefKindTag, Name: "v2.0"})
}

func TestParseTagPointsAt_InvalidLine(t *testing.T) {
	t.Parallel()

	_, err := parseTagPointsAt("1111 refs/tags/v1\n")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRefFromName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Ref
		ok   bool
	}{
		{in: "refs/heads/main", want: Ref{Hash: "h", Kind: RefKindBranch, Name: "main"}, ok: true},
		{in: "refs/remotes/origin/dev", want: Ref{Hash: "h", Kind: RefKindRemoteBranch, Name: "origin/dev"}, ok: true},
		{in: "refs/tags/v1", want: Ref{Hash: "h", Kind: RefKindTag, Name: "v1"}, ok: true},
		{in: "refs/heads/", ok: false},
		{in: "refs/notes/commits", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, ok := refFromName("h", tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func assertHasRef(t *testing.T, refs []Ref, want Ref) {
	t.Helper()
	for _, got := range refs {
		if got.Hash == want.Hash && got.Kind == want.Kind && got.Name == want.Name {
			return
		}
	}
	t.Fatalf("missing ref: %+v (got=%+v)", want, refs)
}
