// Package readme rewrites the machine-owned sections of a profile README.
//
// Two sentinel comment pairs delimit the sections. The content between a
// pair is fully owned by the updater and regenerated on every run; content
// outside the markers is preserved verbatim. Missing pairs are appended,
// existing pairs are never duplicated.
package readme

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/profilekit/profilekit/internal/domain"
)

const (
	languagesStart = "<!--LANGUAGES_START-->"
	languagesEnd   = "<!--LANGUAGES_END-->"
	statsStart     = "<!--STATS_START-->"
	statsEnd       = "<!--STATS_END-->"
)

// timeLayout renders the "last updated" line. Go carries no locale tables,
// so the layout is fixed English.
const timeLayout = "January 2, 2006 at 3:04 PM MST"

// maxBadges caps the badge row at the top languages by byte rank.
const maxBadges = 6

// badgeColors maps a language name to its shields.io badge color. Unknown
// languages fall back to defaultBadgeColor.
var badgeColors = map[string]string{
	"C":          "555555",
	"C#":         "178600",
	"C++":        "F34B7D",
	"CSS":        "563D7C",
	"Dart":       "00B4AB",
	"Go":         "00ADD8",
	"HTML":       "E34C26",
	"Java":       "B07219",
	"JavaScript": "F1E05A",
	"Kotlin":     "A97BFF",
	"PHP":        "4F5D95",
	"Python":     "3572A5",
	"Ruby":       "701516",
	"Rust":       "DEA584",
	"Shell":      "89E051",
	"Swift":      "F05138",
	"TypeScript": "3178C6",
	"Vue":        "41B883",
}

const defaultBadgeColor = "lightgrey"

// section binds one marker pair to its body generator. The span pattern is
// non-greedy so a pair never swallows the content past its own end marker.
type section struct {
	start  string
	end    string
	span   *regexp.Regexp
	render func(*domain.Snapshot) string
}

func newSection(start, end string, render func(*domain.Snapshot) string) section {
	return section{
		start:  start,
		end:    end,
		span:   regexp.MustCompile(`(?s)` + regexp.QuoteMeta(start) + `.*?` + regexp.QuoteMeta(end)),
		render: render,
	}
}

var sections = []section{
	newSection(languagesStart, languagesEnd, languagesBody),
	newSection(statsStart, statsEnd, statsBody),
}

// Updater rewrites the marker-delimited sections of a README file.
type Updater struct {
	logger *log.Logger
}

// NewUpdater creates a new Updater instance.
func NewUpdater(logger *log.Logger) *Updater {
	return &Updater{logger: logger}
}

// Update regenerates both sections of the README at path from the snapshot.
// A missing file is seeded with the default document and then updated like
// any other; all other I/O failures are returned to the caller. Updating
// twice with the same snapshot leaves the file byte-identical.
func (u *Updater) Update(path string, snap *domain.Snapshot) error {
	var content string
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		content = string(raw)
	case errors.Is(err, fs.ErrNotExist):
		u.logger.Printf("  %s does not exist; starting from the default document\n", path)
		content = defaultDocument(snap.Username)
	default:
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	for _, s := range sections {
		content = ensureMarkers(content, s.start, s.end)
		content, err = replaceSection(content, s, snap)
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// defaultDocument seeds a README that does not exist yet: the stock profile
// greeting plus both marker pairs with empty bodies.
func defaultDocument(username string) string {
	return fmt.Sprintf(`### Hi there 👋, I'm %s

%s
%s

%s
%s
`, username, languagesStart, languagesEnd, statsStart, statsEnd)
}

// ensureMarkers appends an empty marker pair to the end of the document when
// the start marker is absent. A pair that is already present is left alone.
func ensureMarkers(content, start, end string) string {
	if strings.Contains(content, start) {
		return content
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + start + "\n" + end + "\n"
}

// replaceSection swaps the first marker-delimited span for the freshly
// rendered body, markers included.
func replaceSection(content string, s section, snap *domain.Snapshot) (string, error) {
	loc := s.span.FindStringIndex(content)
	if loc == nil {
		return "", fmt.Errorf("marker pair %s...%s not found", s.start, s.end)
	}
	replacement := s.start + "\n" + s.render(snap) + "\n" + s.end
	return content[:loc[0]] + replacement + content[loc[1]:], nil
}

// languagesBody renders the language table in byte-rank order. Sizes are
// floor-divided into whole kilobytes.
func languagesBody(snap *domain.Snapshot) string {
	rows := []string{
		"| Language | Size |",
		"| --- | --- |",
	}
	if len(snap.Languages) == 0 {
		rows = append(rows, "| No languages detected | 0KB |")
	}
	for _, language := range snap.Languages {
		rows = append(rows, fmt.Sprintf("| %s | %dKB |", language.Name, language.Bytes/1024))
	}
	return strings.Join(rows, "\n")
}

// statsBody renders the stats heading, the labeled totals, the badge row for
// the top languages, and the last-updated line.
func statsBody(snap *domain.Snapshot) string {
	lines := []string{
		"### ⚡ GitHub Stats",
		"",
		fmt.Sprintf("- **Public Repositories:** %d", snap.PublicRepos),
		fmt.Sprintf("- **Followers:** %d", snap.Followers),
		fmt.Sprintf("- **Following:** %d", snap.Following),
		fmt.Sprintf("- **Total Stars:** %d", snap.TotalStars),
		fmt.Sprintf("- **Total Commits:** %d", snap.TotalCommits),
		fmt.Sprintf("- **Pull Requests:** %d", snap.TotalPRs),
		fmt.Sprintf("- **Issues:** %d", snap.TotalIssues),
		fmt.Sprintf("- **Contributed To:** %d", snap.ContributedTo),
		fmt.Sprintf("- **Contributions (last year):** %d", snap.TotalContributions),
	}
	if badges := badgeRow(snap.Languages); badges != "" {
		lines = append(lines, "", badges)
	}
	lines = append(lines, "", fmt.Sprintf("_Last updated: %s_", snap.UpdatedAt.Format(timeLayout)))
	return strings.Join(lines, "\n")
}

// badgeRow renders one shields.io badge per language for the first maxBadges
// languages by byte rank.
func badgeRow(languages []domain.LanguageStat) string {
	n := min(len(languages), maxBadges)
	badges := make([]string, 0, n)
	for _, language := range languages[:n] {
		badges = append(badges, fmt.Sprintf("![%s](%s)", language.Name, badgeURL(language.Name)))
	}
	return strings.Join(badges, " ")
}

// badgeURL builds a flat-square shields.io badge for a language, colored via
// the fixed lookup table.
func badgeURL(language string) string {
	color, ok := badgeColors[language]
	if !ok {
		color = defaultBadgeColor
	}
	return fmt.Sprintf("https://img.shields.io/badge/-%s-%s?style=flat-square", badgeLabel(language), color)
}

// shieldsEscaper applies the shields.io path-segment rules before the usual
// URL escaping: literal dashes and underscores are doubled, spaces become
// underscores.
var shieldsEscaper = strings.NewReplacer("-", "--", "_", "__", " ", "_")

func badgeLabel(language string) string {
	return url.PathEscape(shieldsEscaper.Replace(language))
}
