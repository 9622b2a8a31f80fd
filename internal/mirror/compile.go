// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

package mirror

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const changelogMarker = ":cl:"

var (
	// referencePattern matches a "(#1234)" pull request token.
	referencePattern = regexp.MustCompile(`\(#([0-9]+)\)`)

	// mirrorTokenPattern matches any bracketed title token mentioning a mirror.
	mirrorTokenPattern = regexp.MustCompile(`(?i)\[[^\[\]]*mirror[^\[\]]*\]`)

	// pullURLPattern matches a pull request URL and captures its number.
	pullURLPattern = regexp.MustCompile(`https?://[^\s*)\]>]+/pull/([0-9]+)`)

	spaces = regexp.MustCompile(`\s{2,}`)
)

// CompileOptions controls how titles and bodies are rewritten.
type CompileOptions struct {
	// UpstreamName names the primary upstream in markers, e.g. "Skyrat".
	UpstreamName string
	// OriginName names the origin repository in markers, e.g. "TG".
	OriginName string
	// NoiseTokens are stripped from titles.
	NoiseTokens []string
	// ConfigMarker flags a body as a configuration update.
	ConfigMarker string
}

// ExtractReference returns the pull request number from the last "(#N)" token
// in a commit message.
func ExtractReference(message string) (int, bool) {
	matches := referencePattern.FindAllStringSubmatch(message, -1)
	if len(matches) == 0 {
		return 0, false
	}
	id, err := strconv.Atoi(matches[len(matches)-1][1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// ParseOriginURL reads the first line of a cross-mirror body and returns the
// origin pull request URL and number.
func ParseOriginURL(body string) (string, int, bool) {
	firstLine, _, _ := strings.Cut(body, "\n")
	m := pullURLPattern.FindStringSubmatch(firstLine)
	if m == nil {
		return "", 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return "", 0, false
	}
	return m[0], id, true
}

// InjectAuthor credits author on the changelog line. A line longer than one
// character already names someone and is left alone, which makes injection
// idempotent. A body without a changelog marker is returned unchanged.
func InjectAuthor(body, author string) string {
	segments := strings.Split(body, changelogMarker)
	if len(segments) < 2 || author == "" {
		return body
	}

	authors, _, _ := strings.Cut(segments[1], "\n")
	if utf8.RuneCountInString(authors) > 1 {
		return body
	}

	rest := strings.TrimLeft(segments[1], " \t")
	if rest != "" && !strings.HasPrefix(rest, "\n") {
		rest = " " + rest
	}
	segments[1] = " " + author + rest
	return strings.Join(segments, changelogMarker)
}

// MirrorMarker returns the title token for the given origin.
func (o CompileOptions) MirrorMarker(origin Origin) string {
	switch origin.(type) {
	case CrossMirror:
		return "[" + strings.TrimSpace(o.OriginName+" Mirror") + "]"
	default:
		return "[" + strings.TrimSpace(o.UpstreamName+" Mirror") + "]"
	}
}

// NormalizeTitle strips every mirror and noise token and prefixes exactly one
// mirror marker for the origin.
func (o CompileOptions) NormalizeTitle(title string, origin Origin) string {
	stripped := mirrorTokenPattern.ReplaceAllString(title, " ")
	for _, token := range o.NoiseTokens {
		if token == "" {
			continue
		}
		stripped = strings.ReplaceAll(stripped, token, " ")
	}
	stripped = strings.TrimSpace(spaces.ReplaceAllString(stripped, " "))

	return strings.TrimSpace(o.MirrorMarker(origin) + " " + stripped)
}

// BodyPrefix returns the link line prepended to the mirrored body.
func (o CompileOptions) BodyPrefix(pr *PullRequest) string {
	switch origin := pr.Origin.(type) {
	case CrossMirror:
		return fmt.Sprintf("## **Original PR: %s**\nMirrored on %s: %s\n", origin.URL, o.UpstreamName, pr.URL)
	default:
		return fmt.Sprintf("## **Original PR: %s**\n", pr.URL)
	}
}

// Compile returns the mirror-ready form of a resolved pull request. The input is not modified.
func (o CompileOptions) Compile(pr PullRequest) PullRequest {
	if pr.Origin == nil {
		pr.Origin = DirectMirror{}
	}

	body := InjectAuthor(pr.Body, pr.Author)
	pr.IsConfigUpdate = o.ConfigMarker != "" && strings.Contains(body, o.ConfigMarker)
	pr.Title = o.NormalizeTitle(pr.Title, pr.Origin)
	pr.Body = o.BodyPrefix(&pr) + body
	return pr
}

// LabelSet names the labels a mirror can carry.
type LabelSet struct {
	Configs        string
	Conflict       string
	UpstreamMirror string
	OriginMirror   string
}

// Labels computes the labels for a mirrored pull request.
func (l LabelSet) Labels(pr *PullRequest, conflicted bool) []string {
	var labels []string
	if pr.IsConfigUpdate {
		labels = append(labels, l.Configs)
	}
	if pr.IsCrossMirror() {
		labels = append(labels, l.OriginMirror)
	} else {
		labels = append(labels, l.UpstreamMirror)
	}
	if conflicted {
		labels = append(labels, l.Conflict)
	}
	return labels
}

// BranchName derives the mirror branch for a pull request id.
func BranchName(prefix string, id int) string {
	return prefix + strconv.Itoa(id)
}
