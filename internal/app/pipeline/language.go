package pipeline

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// NormalizeLanguage turns a caller supplied language sign such as "AR" or
// "en-US" into the base language code the recognisers expect. An empty sign
// yields an empty code, letting the recogniser detect the language.
func NormalizeLanguage(sign string) (string, error) {
	sign = strings.TrimSpace(sign)
	if sign == "" {
		return "", nil
	}
	tag, err := language.Parse(sign)
	if err != nil {
		return "", fmt.Errorf("invalid language_sign %q", sign)
	}
	if tag == language.Und {
		return "", nil
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return "", fmt.Errorf("invalid language_sign %q", sign)
	}
	return base.String(), nil
}
