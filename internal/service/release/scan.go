package release

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/daxiondi/openclaw-desktop/internal/logger"
)

// SignatureSuffix is appended to an artifact's file name by the signing step
// to produce its detached signature sidecar.
const SignatureSuffix = ".sig"

// scanArtifacts walks the assets directory and returns classified candidates
// for every signature sidecar whose artifact exists and whose signature is
// non-empty. Walk order is the deterministic lexical order of WalkDir, which
// fixes first-seen tie-breaking for equal scores.
func scanArtifacts(ctx context.Context, assetsDir string) ([]Candidate, error) {
	var candidates []Candidate

	err := filepath.WalkDir(assetsDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), SignatureSuffix) {
			return nil
		}

		candidate, ok, err := candidateFromSignature(ctx, path)
		if err != nil {
			return err
		}

		if ok {
			candidates = append(candidates, candidate)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", assetsDir, err)
	}

	return candidates, nil
}

// candidateFromSignature builds a candidate from one signature sidecar.
// Sidecars without a matching artifact, with empty signatures, or whose
// artifact matches no classification rule contribute nothing.
func candidateFromSignature(ctx context.Context, sigPath string) (Candidate, bool, error) {
	artifactPath := sigPath[:len(sigPath)-len(SignatureSuffix)]
	artifactName := filepath.Base(artifactPath)

	info, err := os.Stat(artifactPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.DebugKV(ctx, "Signature without artifact, skipping", "signature", sigPath)
			return Candidate{}, false, nil
		}

		return Candidate{}, false, fmt.Errorf("stat %s: %w", artifactPath, err)
	}

	if !info.Mode().IsRegular() {
		return Candidate{}, false, nil
	}

	raw, err := os.ReadFile(filepath.Clean(sigPath))
	if err != nil {
		return Candidate{}, false, fmt.Errorf("read signature %s: %w", sigPath, err)
	}

	signature := strings.TrimSpace(string(raw))
	if signature == "" {
		logger.DebugKV(ctx, "Empty signature, skipping", "signature", sigPath)
		return Candidate{}, false, nil
	}

	targets, score, ok := Classify(artifactName)
	if !ok {
		// Not every build output is updater-relevant.
		logger.DebugKV(ctx, "Unclassified artifact, skipping", "artifact", artifactName)
		return Candidate{}, false, nil
	}

	return Candidate{
		FileName:  artifactName,
		Path:      artifactPath,
		Signature: signature,
		Targets:   targets,
		Score:     score,
	}, true, nil
}

// selectWinners keeps at most one candidate per target. A strictly higher
// score displaces the current holder; equal scores keep the first seen.
func selectWinners(candidates []Candidate) map[string]Candidate {
	winners := make(map[string]Candidate, len(candidates))

	for _, candidate := range candidates {
		for _, target := range candidate.Targets {
			current, taken := winners[target]
			if !taken || candidate.Score > current.Score {
				winners[target] = candidate
			}
		}
	}

	return winners
}
