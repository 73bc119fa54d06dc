// Package mediapath translates artifact paths between the download
// collaborator's storage namespace and this process's mount of the shared
// media volume. Both sides mount the same volume under different roots, so
// translation is a prefix substitution.
package mediapath

import (
	"fmt"
	"os"
	"path"
	"strings"
)

// Translator rewrites collaborator-reported paths onto the local root.
type Translator struct {
	localRoot       string
	downloaderRoots []string
}

func NewTranslator(localRoot string, downloaderRoots []string) *Translator {
	return &Translator{
		localRoot:       strings.TrimRight(localRoot, "/"),
		downloaderRoots: downloaderRoots,
	}
}

// Rewrite maps a collaborator path into the local namespace. Known
// collaborator roots are substituted; anything else is re-rooted under the
// local root with leading "./" stripped.
func (t *Translator) Rewrite(collabPath string) string {
	if collabPath == "" {
		return ""
	}
	for _, root := range t.downloaderRoots {
		if strings.HasPrefix(collabPath, root) {
			return t.localRoot + strings.TrimPrefix(collabPath, root)
		}
	}
	return t.localRoot + "/" + strings.TrimLeft(collabPath, "./")
}

// Resolve rewrites a collaborator path and verifies the artifact actually
// exists locally. A collaborator may report success while the shared volume
// is out of sync; that surfaces here as an error.
func (t *Translator) Resolve(collabPath string) (string, error) {
	local := t.Rewrite(collabPath)
	if local == "" {
		return "", fmt.Errorf("empty artifact path from collaborator")
	}
	if _, err := os.Stat(local); err != nil {
		return "", fmt.Errorf("artifact missing from shared storage: %s", local)
	}
	return local, nil
}

// ResolveAll rewrites a list of collaborator paths, dropping entries whose
// artifacts are missing locally. Used for image sets where a partial album
// is still useful.
func (t *Translator) ResolveAll(collabPaths []string) []string {
	resolved := make([]string, 0, len(collabPaths))
	for _, p := range collabPaths {
		if p == "" {
			continue
		}
		local := t.Rewrite(p)
		if _, err := os.Stat(local); err == nil {
			resolved = append(resolved, local)
		}
	}
	return resolved
}

// AudioPath returns the conversion output path for a task.
func (t *Translator) AudioPath(taskID string) string {
	return path.Join(t.localRoot, "audio", taskID+".mp3")
}

// TextPath returns the transcription output path for a task.
func (t *Translator) TextPath(taskID string) string {
	return path.Join(t.localRoot, "text", taskID+".txt")
}

// LocalRoot exposes the configured local media root.
func (t *Translator) LocalRoot() string {
	return t.localRoot
}
