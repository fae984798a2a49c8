package core

import (
	"fmt"
	"strings"
)

// normalizeDocumentName lower-cases s and drops spaces so "National ID" and
// "nationalid" compare equal.
func normalizeDocumentName(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "")
}

// matchDocument returns the first key of m, in lexicographic order, whose
// normalised form contains the normalised requested name.
func matchDocument(m map[string]bool, requested string) (string, bool) {
	want := normalizeDocumentName(requested)
	for _, key := range sortedKeys(m) {
		if strings.Contains(normalizeDocumentName(key), want) {
			return key, true
		}
	}
	return "", false
}

// CheckDocument reports the status of the document named requested on rec.
// A pending resubmission always wins over an earlier approval.
func CheckDocument(rec *UserRecord, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return "", missingParameter("Please specify which document you'd like to check.")
	}

	name := rec.DisplayName("the user")

	if key, ok := matchDocument(rec.ResubmissionRequested, requested); ok && rec.ResubmissionRequested[key] {
		return fmt.Sprintf("Action required for %s: They need to resubmit their '%s'.", name, key), nil
	}

	if key, ok := matchDocument(rec.UploadedDocuments, requested); ok && rec.UploadedDocuments[key] {
		return fmt.Sprintf("Yes, the '%s' for %s has been successfully submitted and approved.", key, name), nil
	}

	return "", documentNotFound(requested, name)
}
