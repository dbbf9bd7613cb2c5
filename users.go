package photosite

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"strings"
)

// Users reads the user directory: a mapping of user identity (email) to the
// display name shown on comments. A missing user file yields nil, which also
// disables the commenting help page at build time.
func (s *Site) Users() (map[string]string, error) {
	var users map[string]string
	err := readJSON(s.usersPath(), &users)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("photosite: read users: %w", err)
	}
	return users, nil
}

// AddUser registers a user in the directory. An explicit display name must
// not already be taken; when none is given, random adjective-bird names are
// proposed through the Asker until one is accepted. Returns the display name
// that was recorded.
func (s *Site) AddUser(email, display string, ask Asker) (string, error) {
	users, err := s.Users()
	if err != nil {
		return "", err
	}
	if users == nil {
		users = make(map[string]string)
	}
	if _, ok := users[email]; ok {
		return "", fmt.Errorf("photosite: user %s already exists", email)
	}

	taken := make(map[string]bool, len(users))
	for _, name := range users {
		taken[name] = true
	}

	if display == "" {
		display, err = proposeName(taken, ask)
		if err != nil {
			return "", err
		}
	} else if taken[display] {
		return "", fmt.Errorf("photosite: display name %q already taken", display)
	}

	users[email] = display
	if err := writeJSON(s.usersPath(), users); err != nil {
		return "", err
	}
	return display, nil
}

// proposeName draws adjective-bird combinations from the embedded word lists
// until the Asker accepts one that isn't already taken.
func proposeName(taken map[string]bool, ask Asker) (string, error) {
	adjectives, err := wordList("embedded/adjectives.txt")
	if err != nil {
		return "", err
	}
	birds, err := wordList("embedded/birds.txt")
	if err != nil {
		return "", err
	}
	for {
		name := adjectives[rand.Intn(len(adjectives))] + " " + birds[rand.Intn(len(birds))]
		if taken[name] {
			continue
		}
		ok, err := ask.Ask(fmt.Sprintf("name: %s?", name))
		if err != nil {
			return "", err
		}
		if ok {
			return name, nil
		}
	}
}

func wordList(name string) ([]string, error) {
	data, err := embeddedAssets.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("photosite: word list %s: %w", name, err)
	}
	words := FilterEmpty(strings.Split(string(data), "\n"))
	if len(words) == 0 {
		return nil, fmt.Errorf("photosite: word list %s is empty", name)
	}
	return words, nil
}
