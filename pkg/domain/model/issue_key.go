package model

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// IssueKey is a Jira ticket identifier such as APP-1467
type IssueKey string

// ProjectKey is the project prefix of an IssueKey such as APP
type ProjectKey string

func (x IssueKey) String() string   { return string(x) }
func (x ProjectKey) String() string { return string(x) }

// ProjectKey returns everything before the first hyphen
func (x IssueKey) ProjectKey() ProjectKey {
	key, _, _ := strings.Cut(string(x), "-")
	return ProjectKey(key)
}

// IssueMatcher finds issue key tokens in free text
type IssueMatcher interface {
	// FindAll returns every match in order of appearance, duplicates included
	FindAll(text string) []string
}

// issueKeyPattern rejects a candidate whose remaining input is a short alphanumeric run
// (optionally ending with a hyphen), so tails of longer identifiers are not reported.
const issueKeyPattern = `((?!([A-Z0-9a-z]{1,10})-?$)[A-Z]{1}[A-Z0-9]+-\d+)`

type regexpIssueMatcher struct {
	re *regexp2.Regexp
}

// NewIssueMatcher returns the default matcher. The pattern needs a negative lookahead, which
// RE2 does not support, so it is evaluated with ECMAScript semantics.
func NewIssueMatcher() IssueMatcher {
	return &regexpIssueMatcher{
		re: regexp2.MustCompile(issueKeyPattern, regexp2.ECMAScript),
	}
}

func (m *regexpIssueMatcher) FindAll(text string) []string {
	var found []string

	match, err := m.re.FindStringMatch(text)
	for err == nil && match != nil {
		found = append(found, match.String())
		match, err = m.re.FindNextMatch(match)
	}

	return found
}

var defaultIssueMatcher = NewIssueMatcher()

// ExtractIssueKeys returns unique issue keys in order of first appearance. Lowercase project
// keys never match.
func ExtractIssueKeys(text string) []IssueKey {
	return extractIssueKeys(defaultIssueMatcher, text)
}

func extractIssueKeys(matcher IssueMatcher, texts ...string) []IssueKey {
	seen := make(map[IssueKey]struct{})
	keys := []IssueKey{}

	for _, text := range texts {
		for _, m := range matcher.FindAll(text) {
			key := IssueKey(m)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}

	return keys
}

// ExtractIssueKeysFromCommits applies ExtractIssueKeys to every commit message and removes
// duplicates across the whole sequence.
func ExtractIssueKeysFromCommits(commits []*Commit) []IssueKey {
	messages := make([]string, 0, len(commits))
	for _, c := range commits {
		if c == nil {
			continue
		}
		messages = append(messages, c.Message)
	}
	return extractIssueKeys(defaultIssueMatcher, messages...)
}

// UniqueProjectKeys returns the distinct project keys of keys in order of first appearance
func UniqueProjectKeys(keys []IssueKey) []ProjectKey {
	seen := make(map[ProjectKey]struct{})
	var projects []ProjectKey

	for _, key := range keys {
		p := key.ProjectKey()
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		projects = append(projects, p)
	}

	return projects
}
