package release

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ManifestFilename is the update feed file written into the assets directory.
const ManifestFilename = "latest.json"

// PlatformEntry is one platform's installer in the update feed.
type PlatformEntry struct {
	// Signature is the detached signature content verified by the updater.
	Signature string `json:"signature"`
	// URL is the download location of the installer.
	URL string `json:"url"`
}

// Manifest is the versioned update feed polled by the running application.
type Manifest struct {
	// Version is the release version without a leading "v".
	Version string `json:"version"`
	// Notes is the human-readable release note line.
	Notes string `json:"notes"`
	// PubDate is the ISO-8601 publication timestamp.
	PubDate string `json:"pub_date"`
	// Platforms maps target keys to their installer entries.
	Platforms map[string]PlatformEntry `json:"platforms"`
}

// errNoArtifacts distinguishes "nothing to publish" from a broken build.
var errNoArtifacts = errors.New("no signed artifacts classified in assets directory")

// downloadURLTemplate is the release-download location, parameterized by the
// repository identifier, the release tag and the artifact file name.
const downloadURLTemplate = "https://github.com/%s/releases/download/%s/%s"

// buildManifest assembles the update feed from the winning candidates.
// An empty winner set is fatal: a feed naming no platforms is worse than no
// feed at all.
func buildManifest(repo, tag string, winners map[string]Candidate, now time.Time) (*Manifest, error) {
	if len(winners) == 0 {
		return nil, errNoArtifacts
	}

	platforms := make(map[string]PlatformEntry, len(winners))
	for target, candidate := range winners {
		platforms[target] = PlatformEntry{
			Signature: candidate.Signature,
			URL: fmt.Sprintf(downloadURLTemplate,
				repo, url.PathEscape(tag), url.PathEscape(candidate.FileName)),
		}
	}

	return &Manifest{
		Version:   strings.TrimPrefix(tag, "v"),
		Notes:     "See the assets to download this version and install.",
		PubDate:   now.UTC().Format(time.RFC3339),
		Platforms: platforms,
	}, nil
}
