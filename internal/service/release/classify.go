package release

import "strings"

// Candidate is one signed artifact considered for the update feed.
// Candidates exist only while the release manifest is being generated.
type Candidate struct {
	// FileName is the artifact's base name, used for classification and URLs.
	FileName string
	// Path is the artifact's location under the assets directory.
	Path string
	// Signature is the content of the artifact's detached signature file.
	Signature string
	// Targets are the {os}-{arch} keys this artifact serves.
	Targets []string
	// Score ranks the artifact against others mapping to the same target.
	Score int
}

// Platform target architecture keys.
const (
	archX8664   = "x86_64"
	archAarch64 = "aarch64"
	archI686    = "i686"
)

// osRule classifies a lowercased filename into an operating system.
// Rules are evaluated in table order; the first match wins.
type osRule struct {
	// match reports whether the lowercased filename belongs to this rule.
	match func(lower string) bool
	// os is the operating-system half of the emitted target keys.
	os string
	// score is the base preference weight for this artifact shape.
	score int
	// dualArch emits both darwin architectures when no arch token is found.
	// Universal app archives serve Intel and Apple Silicon from one file.
	dualArch bool
}

// osRules is the ordered classification table. New artifact shapes are added
// as rows, never as nested branches.
var osRules = []osRule{
	{
		match:    func(s string) bool { return strings.HasSuffix(s, ".app.tar.gz") },
		os:       "darwin",
		score:    300,
		dualArch: true,
	},
	{
		match: func(s string) bool {
			return strings.HasSuffix(s, ".exe") && strings.Contains(s, "setup")
		},
		os:    "windows",
		score: 300,
	},
	{
		match: func(s string) bool { return strings.HasSuffix(s, ".msi") },
		os:    "windows",
		score: 260,
	},
	{
		match: func(s string) bool { return strings.HasSuffix(s, ".nsis.zip") },
		os:    "windows",
		score: 220,
	},
	{
		match: func(s string) bool { return strings.HasSuffix(s, ".msi.zip") },
		os:    "windows",
		score: 210,
	},
	{
		match: func(s string) bool { return strings.HasSuffix(s, ".deb") },
		os:    "linux",
		score: 240,
	},
	{
		match: func(s string) bool { return strings.HasSuffix(s, ".rpm") },
		os:    "linux",
		score: 230,
	},
	{
		match: func(s string) bool { return strings.HasSuffix(s, ".appimage.tar.gz") },
		os:    "linux",
		score: 300,
	},
	{
		match: func(s string) bool { return strings.HasSuffix(s, ".appimage") },
		os:    "linux",
		score: 300,
	},
}

// archTokenGroups maps filename tokens to architectures. Groups are checked
// in order so that "x86_64" is recognized before its "x86" prefix can match
// the i686 group.
var archTokenGroups = []struct {
	tokens []string
	arch   string
}{
	{tokens: []string{"aarch64", "arm64"}, arch: archAarch64},
	{tokens: []string{"x86_64", "x64", "amd64"}, arch: archX8664},
	{tokens: []string{"i686", "x86"}, arch: archI686},
}

// portablePenalty demotes portable builds; they are not auto-update targets.
const portablePenalty = -100

// explicitArchBonus prefers architecture-specific artifacts over generic ones.
const explicitArchBonus = 20

// Classify maps a filename to its platform targets and score.
// Classification is a pure function of the lowercased name; filenames
// matching no rule return ok=false and are ignored by the scanner.
func Classify(fileName string) (targets []string, score int, ok bool) {
	lower := strings.ToLower(fileName)

	var rule *osRule

	for i := range osRules {
		if osRules[i].match(lower) {
			rule = &osRules[i]
			break
		}
	}

	if rule == nil {
		return nil, 0, false
	}

	arch, archFound := detectArch(lower)

	score = rule.score
	if strings.Contains(lower, "portable") {
		score += portablePenalty
	}

	if archFound {
		score += explicitArchBonus
	}

	switch {
	case archFound:
		targets = []string{rule.os + "-" + arch}
	case rule.dualArch:
		targets = []string{rule.os + "-" + archX8664, rule.os + "-" + archAarch64}
	default:
		targets = []string{rule.os + "-" + archX8664}
	}

	return targets, score, true
}

// detectArch scans for a bounded architecture token in the lowercased name.
func detectArch(lower string) (string, bool) {
	for _, group := range archTokenGroups {
		for _, token := range group.tokens {
			if containsToken(lower, token) {
				return group.arch, true
			}
		}
	}

	return "", false
}

// containsToken reports whether token occurs in s bounded by non-alphanumeric
// characters or the string edges, so "x64" inside an unrelated word does not
// count.
func containsToken(s, token string) bool {
	for start := 0; ; {
		idx := strings.Index(s[start:], token)
		if idx < 0 {
			return false
		}

		idx += start
		end := idx + len(token)

		leftOK := idx == 0 || !isAlphanumeric(s[idx-1])
		rightOK := end == len(s) || !isAlphanumeric(s[end])

		if leftOK && rightOK {
			return true
		}

		start = idx + 1
	}
}

func isAlphanumeric(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
