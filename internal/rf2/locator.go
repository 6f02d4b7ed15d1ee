package rf2

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// FileSet is the result of locating the four RF2 families within a
// Snapshot directory. LanguageRefsetPath is empty when no language refset
// file is present (preferred-term resolution is then disabled, but the run
// still proceeds).
type FileSet struct {
	ConceptPath        string
	DescriptionPath    string
	RelationshipPath   string
	LanguageRefsetPath string
}

// MissingInputError is returned when a required RF2 file cannot be found.
type MissingInputError struct {
	Family string
	Dir    string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("rf2: no %s file found under %s", e.Family, e.Dir)
}

// Locate searches snapshotDir/Terminology for the three terminology files
// and snapshotDir/Refset/Language for the optional language refset file,
// returning the first basename match per family (sorted lexically so the
// choice is deterministic across runs).
func Locate(snapshotDir string) (FileSet, error) {
	terminologyDir := filepath.Join(snapshotDir, "Terminology")
	languageDir := filepath.Join(snapshotDir, "Refset", "Language")

	conceptPath, err := firstMatch(terminologyDir, "sct2_Concept_Snapshot")
	if err != nil {
		return FileSet{}, &MissingInputError{Family: "Concept Snapshot", Dir: terminologyDir}
	}
	descriptionPath, err := firstMatch(terminologyDir, "sct2_Description_Snapshot")
	if err != nil {
		return FileSet{}, &MissingInputError{Family: "Description Snapshot", Dir: terminologyDir}
	}
	relationshipPath, err := firstMatch(terminologyDir, "sct2_Relationship_Snapshot")
	if err != nil {
		return FileSet{}, &MissingInputError{Family: "Relationship Snapshot", Dir: terminologyDir}
	}

	languagePath, _ := firstMatch(languageDir, "der2_cRefset_LanguageSnapshot")

	return FileSet{
		ConceptPath:        conceptPath,
		DescriptionPath:    descriptionPath,
		RelationshipPath:   relationshipPath,
		LanguageRefsetPath: languagePath,
	}, nil
}

func firstMatch(dir, prefix string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return "", err
	}
	var candidates []string
	for _, m := range matches {
		if strings.HasPrefix(filepath.Base(m), prefix) {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no match for prefix %q in %s", prefix, dir)
	}
	sort.Strings(candidates)
	return candidates[0], nil
}
