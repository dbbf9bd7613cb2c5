package photosite

import (
	"strings"
	"testing"
)

func TestUsersMissingFile(t *testing.T) {
	site := setupSite(t)
	users, err := site.Users()
	if err != nil {
		t.Fatalf("Users failed: %v", err)
	}
	if users != nil {
		t.Errorf("users = %v, want nil for a missing file", users)
	}
}

func TestAddUserExplicitName(t *testing.T) {
	site := setupSite(t)

	display, err := site.AddUser("a@example.com", "Alice", nil)
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}
	if display != "Alice" {
		t.Errorf("display = %q, want %q", display, "Alice")
	}

	if _, err := site.AddUser("a@example.com", "Someone", nil); err == nil {
		t.Error("AddUser accepted a duplicate email")
	}
	if _, err := site.AddUser("b@example.com", "Alice", nil); err == nil {
		t.Error("AddUser accepted a taken display name")
	}

	users, err := site.Users()
	if err != nil {
		t.Fatalf("Users failed: %v", err)
	}
	if users["a@example.com"] != "Alice" {
		t.Errorf("users = %v", users)
	}
}

func TestAddUserProposedName(t *testing.T) {
	site := setupSite(t)

	// Reject the first proposal, accept the second.
	rejected := 0
	ask := AskFunc(func(question string) (bool, error) {
		if !strings.HasPrefix(question, "name: ") {
			t.Errorf("unexpected question: %s", question)
		}
		if rejected == 0 {
			rejected++
			return false, nil
		}
		return true, nil
	})

	display, err := site.AddUser("c@example.com", "", ask)
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}
	// Proposals are adjective-bird pairs.
	if parts := strings.Split(display, " "); len(parts) != 2 {
		t.Errorf("display = %q, want two words", display)
	}
	if rejected != 1 {
		t.Error("first proposal should have been rejected")
	}

	users, err := site.Users()
	if err != nil {
		t.Fatalf("Users failed: %v", err)
	}
	if users["c@example.com"] != display {
		t.Errorf("users = %v, want %q recorded", users, display)
	}
}

func TestWordLists(t *testing.T) {
	for _, name := range []string{"embedded/adjectives.txt", "embedded/birds.txt"} {
		words, err := wordList(name)
		if err != nil {
			t.Fatalf("wordList(%s) failed: %v", name, err)
		}
		if len(words) == 0 {
			t.Errorf("wordList(%s) is empty", name)
		}
		for _, w := range words {
			if strings.TrimSpace(w) != w || w == "" {
				t.Errorf("word %q not trimmed", w)
			}
		}
	}
}
