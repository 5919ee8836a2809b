package keysync

import (
	"io"

	eng "github.com/reoring/keysync/internal/engine"
)

// DetectJSONDuplicateKeysBytes reports every duplicated object key in a JSON
// byte slice. maxIssues < 0 means unlimited; 0 disables; > 0 sets a limit.
func DetectJSONDuplicateKeysBytes(data []byte, maxIssues int) (Issues, error) {
	si, err := eng.DetectDuplicateKeys(JSONBytes(data), maxIssues)
	return fromEngineIssues(si), wrapEngineError(err)
}

// DetectJSONDuplicateKeysReader is DetectJSONDuplicateKeysBytes over an
// io.Reader. The reader is consumed fully.
func DetectJSONDuplicateKeysReader(r io.Reader, maxIssues int) (Issues, error) {
	si, err := eng.DetectDuplicateKeys(JSONReader(r), maxIssues)
	return fromEngineIssues(si), wrapEngineError(err)
}

func fromEngineIssues(si []eng.SimpleIssue) Issues {
	var iss Issues
	for _, s := range si {
		iss = AppendIssues(iss, Issue{Code: s.Code, Pointer: s.Path, Message: s.Message, Offset: -1})
	}
	return iss
}
