package engine

import (
	"errors"
	"io"
)

// DetectDuplicateKeys drains src and reports every duplicated object key with
// its JSON Pointer. maxIssues < 0 means unlimited; 0 disables collection; > 0
// stops after that many issues and appends a truncated marker.
func DetectDuplicateKeys(src TokenSource, maxIssues int) ([]SimpleIssue, error) {
	if maxIssues == 0 {
		return nil, nil
	}
	var issues []SimpleIssue
	full := false
	enforced := WrapWithEnforcement(src, EnforceOptions{
		OnDuplicate: DupWarn,
		IssueSink: func(si SimpleIssue) {
			if full {
				return
			}
			issues = append(issues, si)
			if maxIssues > 0 && len(issues) >= maxIssues {
				issues = append(issues, SimpleIssue{Code: CodeTruncated, Path: "/", Message: "max issues reached"})
				full = true
			}
		},
	})
	for !full {
		if _, err := enforced.NextToken(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return issues, err
		}
	}
	return issues, nil
}
