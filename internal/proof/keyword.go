package proof

import (
	"context"
	"strings"
)

// KeywordVerifier matches extracted proof text against a set of required
// phrases. All phrases must be present for the proof to pass. This is a
// substring heuristic, not a guarantee of anything about the image.
type KeywordVerifier struct {
	extractor Extractor
	phrases   []string
}

// NewKeywordVerifier constructs the heuristic verifier.
func NewKeywordVerifier(extractor Extractor, phrases []string) *KeywordVerifier {
	return &KeywordVerifier{extractor: extractor, phrases: phrases}
}

// Verify extracts text from the image and checks every required phrase is
// present. Returns (false, nil) for a readable image that simply does not
// match; the error return is reserved for extraction failures, which leave
// the purchase request untouched.
func (v *KeywordVerifier) Verify(ctx context.Context, image []byte) (bool, error) {
	text, err := v.extractor.ExtractText(ctx, image)
	if err != nil {
		return false, err
	}
	text = strings.TrimSpace(text)
	for _, phrase := range v.phrases {
		if !strings.Contains(text, phrase) {
			return false, nil
		}
	}
	return len(v.phrases) > 0, nil
}
