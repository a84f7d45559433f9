package validators

import (
	"errors"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrURLEmpty   = errors.New("no URL provided")
	ErrURLInvalid = errors.New("invalid URL provided")
)

var validate = validator.New()

// URLValidator accepts absolute http(s) URLs only
func URLValidator(u string) error {
	if u == "" {
		return ErrURLEmpty
	}

	if err := validate.Var(u, "url"); err != nil {
		return ErrURLInvalid
	}

	parsed, err := url.Parse(u)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return ErrURLInvalid
	}

	return nil
}

// LinkValidator accepts any reference url.Parse understands, relative paths
// and app schemes included. Script schemes are refused since the link is
// rendered into an e-mail.
func LinkValidator(u string) error {
	if strings.TrimSpace(u) == "" {
		return ErrURLEmpty
	}

	parsed, err := url.Parse(u)
	if err != nil {
		return ErrURLInvalid
	}

	switch strings.ToLower(parsed.Scheme) {
	case "javascript", "vbscript", "data":
		return ErrURLInvalid
	}

	return nil
}
